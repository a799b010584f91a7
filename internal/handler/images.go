package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"gallery/internal/assets"
	"gallery/internal/db/sqlc"
	"gallery/internal/middleware"
	"gallery/internal/pipeline"
	"gallery/internal/storage"
)

// ImageResponse is an image record with its history length.
type ImageResponse struct {
	sqlc.Image
	HistoryCount int64 `json:"history_count"`
}

// multipart parts beyond the file itself: form fields and headers
const uploadOverhead = 1 << 20

// UploadImage handles POST /images with a multipart body holding owner_id,
// folder_id and file.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// Set per-request timeout to avoid hung uploads
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	maxBytes := h.assets.Config().MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+uploadOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	ownerID, err1 := strconv.ParseInt(r.FormValue("owner_id"), 10, 64)
	folderID, err2 := strconv.ParseInt(r.FormValue("folder_id"), 10, 64)
	if err1 != nil || err2 != nil {
		middleware.WriteError(w, http.StatusBadRequest, "owner_id and folder_id are required integers")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	res, err := h.assets.Ingest(ctx, assets.Upload{
		OwnerID:  ownerID,
		FolderID: folderID,
		Name:     header.Filename,
		Body:     file,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondResult(w, http.StatusCreated, res)
}

// ListImages handles GET /images?owner_id=&folder_id=
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	ownerID, err1 := strconv.ParseInt(r.URL.Query().Get("owner_id"), 10, 64)
	folderID, err2 := strconv.ParseInt(r.URL.Query().Get("folder_id"), 10, 64)
	if err1 != nil || err2 != nil {
		middleware.WriteError(w, http.StatusBadRequest, "owner_id and folder_id are required integers")
		return
	}

	images, err := h.repo.ListFolder(r.Context(), ownerID, folderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if images == nil {
		images = []sqlc.Image{}
	}
	middleware.WriteJSON(w, http.StatusOK, images)
}

// GetImage handles GET /images/{id}
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := imageIDParam(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	img, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := ImageResponse{Image: img}
	if h.history != nil {
		if n, err := h.history.Count(r.Context(), id); err == nil {
			resp.HistoryCount = n
		} else {
			log.Printf("Handler: failed to count history for image %d: %v", id, err)
		}
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// ServeVariant handles GET /images/{id}/{variant} for original and thumbnail.
func (h *Handler) ServeVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := imageIDParam(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	img, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	paths := h.repo.Paths(img)

	var path string
	switch chi.URLParam(r, "variant") {
	case storage.TierOriginal:
		path = paths.Original()
	case storage.TierThumbnail:
		path = paths.Thumbnail()
	default:
		middleware.WriteError(w, http.StatusNotFound, "unknown variant")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			middleware.WriteError(w, http.StatusNotFound, "file not found")
			return
		}
		h.fail(w, r, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		middleware.WriteError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Type", pipeline.FormatFromPath(path).ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, img.Filename, info.ModTime(), f)
}

// DeleteImage handles DELETE /images/{id}
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := imageIDParam(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	unlock := h.locks.Lock(id)
	defer unlock()

	if err := h.assets.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"gallery/internal/assets"
	"gallery/internal/history"
	"gallery/internal/middleware"
)

const maxOperationBody = 64 << 10

// ResultResponse reports a committed change. Warnings list the secondary
// steps that failed after the original was written.
type ResultResponse struct {
	assets.Result
	Warnings []string `json:"warnings,omitempty"`
}

// ApplyOperation handles POST /images/{id}/operations. The body is a JSON
// object whose "operation" member names the operation and whose remaining
// members are its parameters.
func (h *Handler) ApplyOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := imageIDParam(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	var body map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOperationBody))
	if err := dec.Decode(&body); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}
	name, _ := body["operation"].(string)
	if strings.TrimSpace(name) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "missing operation")
		return
	}
	delete(body, "operation")

	unlock := h.locks.Lock(id)
	res, err := h.assets.Dispatch(r.Context(), id, name, body)
	unlock()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondResult(w, http.StatusOK, res)
}

// RevertImage handles POST /images/{id}/revert
func (h *Handler) RevertImage(w http.ResponseWriter, r *http.Request) {
	id, ok := imageIDParam(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	unlock := h.locks.Lock(id)
	res, err := h.assets.Revert(r.Context(), id)
	unlock()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondResult(w, http.StatusOK, res)
}

// ImageHistory handles GET /images/{id}/history, newest entry first.
func (h *Handler) ImageHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := imageIDParam(r)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, "invalid image id")
		return
	}
	if _, err := h.repo.Get(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	entries, err := h.history.List(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	middleware.WriteJSON(w, http.StatusOK, entries)
}

// respondResult writes res and hands a stale thumbnail to the repair queue.
func (h *Handler) respondResult(w http.ResponseWriter, status int, res assets.Result) {
	resp := ResultResponse{Result: res}
	if res.ThumbnailErr != nil {
		resp.Warnings = append(resp.Warnings, "thumbnail is stale")
		if h.repairs != nil {
			h.repairs.Enqueue(res.ImageID)
			resp.Warnings[len(resp.Warnings)-1] += ", repair scheduled"
		}
	}
	if res.HistoryErr != nil {
		resp.Warnings = append(resp.Warnings, "history entry was not recorded")
	}
	middleware.WriteJSON(w, status, resp)
}

package assets

import (
	"context"
	"fmt"
	"io"
	"log"

	"gallery/internal/pipeline"
	"gallery/internal/storage"

	"github.com/google/uuid"
)

// OpUpload is the history name recorded for a new image.
const OpUpload = "upload"

// Upload is an incoming image file.
type Upload struct {
	OwnerID  int64
	FolderID int64
	// Name is the client-side filename, kept for display only.
	Name string
	Body io.Reader
}

// Ingest validates an upload and creates its record and asset triple. The
// upload bytes are stored unchanged as both original and pristine. If the
// pristine backup cannot be written the whole ingest is undone, so every
// accepted image can be reverted. A thumbnail failure is only reported.
func (m *Manager) Ingest(ctx context.Context, up Upload) (Result, error) {
	img, format, raw, err := pipeline.ValidateAndDecode(up.Body, m.cfg.MaxUploadBytes)
	if err != nil {
		return Result{}, fmt.Errorf("validate upload: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Result{}, fmt.Errorf("generate filename: %w", err)
	}
	filename := id.String() + "." + format.Extension()

	b := img.Bounds()
	imageID, err := m.catalog.Create(ctx, NewImage{
		OwnerID:      up.OwnerID,
		FolderID:     up.FolderID,
		Filename:     filename,
		OriginalName: up.Name,
		Format:       format,
		Width:        b.Dx(),
		Height:       b.Dy(),
		SizeBytes:    int64(len(raw)),
	})
	if err != nil {
		return Result{}, fmt.Errorf("create image record: %w", err)
	}

	paths, err := m.catalog.Resolve(ctx, imageID)
	if err != nil {
		m.abandon(ctx, imageID, nil)
		return Result{}, err
	}

	var cleanup storage.Cleanup
	if err := paths.EnsureDirs(); err != nil {
		m.abandon(ctx, imageID, &cleanup)
		return Result{}, fmt.Errorf("prepare directories: %w", err)
	}
	if err := storage.AtomicWriteBytes(paths.Original(), raw); err != nil {
		m.abandon(ctx, imageID, &cleanup)
		return Result{}, fmt.Errorf("write original: %w", err)
	}
	cleanup.Add(paths.Original())

	if err := createPristine(paths, ""); err != nil {
		m.abandon(ctx, imageID, &cleanup)
		return Result{}, err
	}
	cleanup.Discard()

	res := Result{
		ImageID:    imageID,
		Operation:  OpUpload,
		Parameters: map[string]any{"name": up.Name, "format": string(format)},
		Width:      b.Dx(),
		Height:     b.Dy(),
	}

	// Reopen so the thumbnail and stored dimensions reflect EXIF orientation.
	manip, err := pipeline.Open(paths.Original(), m.cfg.Quality)
	if err != nil {
		res.ThumbnailErr = err
		log.Printf("Assets: cannot reopen upload %d for thumbnail: %v", imageID, err)
	} else {
		res.Width, res.Height = manip.Width(), manip.Height()
		res.ThumbnailErr = m.writeThumbnail(manip, paths)
		if res.Width != b.Dx() || res.Height != b.Dy() {
			m.syncRecord(ctx, imageID, paths, res.Width, res.Height)
		}
	}
	res.HistoryErr = m.record(ctx, imageID, OpUpload, res.Parameters)
	log.Printf("Assets: ingested image %d (%s %dx%d, %d bytes)", imageID, format, res.Width, res.Height, len(raw))
	return res, nil
}

// abandon rolls back a partially ingested image.
func (m *Manager) abandon(ctx context.Context, imageID int64, cleanup *storage.Cleanup) {
	if cleanup != nil {
		if err := cleanup.Execute(); err != nil {
			log.Printf("Assets: cleanup of image %d failed: %v", imageID, err)
		}
	}
	if err := m.catalog.Remove(ctx, imageID); err != nil {
		log.Printf("Assets: failed to remove record of abandoned image %d: %v", imageID, err)
	}
}

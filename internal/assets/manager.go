package assets

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gallery/internal/pipeline"
	"gallery/internal/storage"
)

// OpRevert is the history name recorded for a revert.
const OpRevert = "revert"

// NewImage describes a record to be created by Catalog.Create.
type NewImage struct {
	OwnerID      int64
	FolderID     int64
	Filename     string
	OriginalName string
	Format       pipeline.Format
	Width        int
	Height       int
	SizeBytes    int64
}

// Catalog is the image metadata store. Resolve must wrap ErrImageNotFound
// when no record exists.
type Catalog interface {
	Create(ctx context.Context, img NewImage) (int64, error)
	Resolve(ctx context.Context, imageID int64) (storage.AssetPaths, error)
	UpdateFile(ctx context.Context, imageID int64, width, height int, sizeBytes int64) error
	Remove(ctx context.Context, imageID int64) error
}

// HistoryRecorder appends to an image's audit trail.
type HistoryRecorder interface {
	Record(ctx context.Context, imageID int64, operation string, params map[string]any) error
}

// Config holds the derived-asset settings.
type Config struct {
	ThumbWidth     int
	ThumbHeight    int
	Quality        int
	MaxUploadBytes int64
}

// Result reports what an operation did. ThumbnailErr and HistoryErr carry
// failures that happened after the original was committed; they leave the
// image usable but stale or unaudited.
type Result struct {
	ImageID      int64          `json:"image_id"`
	Operation    string         `json:"operation"`
	Parameters   map[string]any `json:"parameters"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	ThumbnailErr error          `json:"-"`
	HistoryErr   error          `json:"-"`
}

// Degraded reports whether a secondary step failed.
func (r Result) Degraded() bool {
	return r.ThumbnailErr != nil || r.HistoryErr != nil
}

// Manager keeps the pristine, original and thumbnail tiers of each image
// consistent. It holds no locks: callers serialize work per image.
type Manager struct {
	catalog Catalog
	history HistoryRecorder
	cfg     Config
}

// New creates a Manager. Zero config values fall back to defaults.
func New(catalog Catalog, history HistoryRecorder, cfg Config) *Manager {
	if cfg.ThumbWidth <= 0 {
		cfg.ThumbWidth = 300
	}
	if cfg.ThumbHeight <= 0 {
		cfg.ThumbHeight = 300
	}
	if cfg.Quality <= 0 {
		cfg.Quality = pipeline.DefaultQuality
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}
	return &Manager{catalog: catalog, history: history, cfg: cfg}
}

// Config returns the effective configuration.
func (m *Manager) Config() Config { return m.cfg }

// resolve locates an image whose original is present on disk.
func (m *Manager) resolve(ctx context.Context, imageID int64) (storage.AssetPaths, error) {
	paths, err := m.catalog.Resolve(ctx, imageID)
	if err != nil {
		return storage.AssetPaths{}, err
	}
	if !storage.Exists(paths.Original()) {
		return storage.AssetPaths{}, fmt.Errorf("%w: original of image %d missing", ErrImageNotFound, imageID)
	}
	return paths, nil
}

// ApplyOperation runs op against the image's original and commits the
// result. If anything fails before the original is replaced, the original
// is unchanged and the error wraps ErrOperationFailed. Thumbnail and
// history failures after that point are logged and reported in Result.
func (m *Manager) ApplyOperation(ctx context.Context, imageID int64, op pipeline.Operation) (Result, error) {
	name := op.Kind().String()
	paths, err := m.resolve(ctx, imageID)
	if err != nil {
		return Result{}, err
	}

	manip, err := pipeline.Open(paths.Original(), m.cfg.Quality)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s on image %d: %w", ErrOperationFailed, name, imageID, err)
	}
	if err := manip.Apply(op); err != nil {
		return Result{}, fmt.Errorf("%w: %s on image %d: %w", ErrOperationFailed, name, imageID, err)
	}
	if _, err := manip.Save(paths.Original()); err != nil {
		return Result{}, fmt.Errorf("%w: %s on image %d: %w", ErrOperationFailed, name, imageID, err)
	}

	res := Result{
		ImageID:    imageID,
		Operation:  name,
		Parameters: op.Params(),
		Width:      manip.Width(),
		Height:     manip.Height(),
	}
	res.ThumbnailErr = m.writeThumbnail(manip, paths)
	m.syncRecord(ctx, imageID, paths, res.Width, res.Height)
	res.HistoryErr = m.record(ctx, imageID, name, res.Parameters)
	return res, nil
}

// Revert restores the original from the pristine backup byte for byte.
func (m *Manager) Revert(ctx context.Context, imageID int64) (Result, error) {
	paths, err := m.catalog.Resolve(ctx, imageID)
	if err != nil {
		return Result{}, err
	}
	if !storage.Exists(paths.Pristine()) {
		return Result{}, fmt.Errorf("%w: image %d", ErrPristineMissing, imageID)
	}
	if err := storage.EnsureDir(filepath.Dir(paths.Original())); err != nil {
		return Result{}, fmt.Errorf("%w: revert image %d: %w", ErrOperationFailed, imageID, err)
	}
	if err := storage.CopyFileAtomic(paths.Pristine(), paths.Original()); err != nil {
		return Result{}, fmt.Errorf("%w: revert image %d: %w", ErrOperationFailed, imageID, err)
	}

	res := Result{ImageID: imageID, Operation: OpRevert, Parameters: map[string]any{}}
	manip, err := pipeline.Open(paths.Original(), m.cfg.Quality)
	if err != nil {
		res.ThumbnailErr = err
		log.Printf("Assets: thumbnail for image %d is stale, cannot reopen reverted original: %v", imageID, err)
	} else {
		res.Width, res.Height = manip.Width(), manip.Height()
		res.ThumbnailErr = m.writeThumbnail(manip, paths)
		m.syncRecord(ctx, imageID, paths, res.Width, res.Height)
	}
	res.HistoryErr = m.record(ctx, imageID, OpRevert, res.Parameters)
	return res, nil
}

// CreatePristine stores the write-once backup for an image. It copies
// uploadedFilePath, or the current original when the path is empty.
func (m *Manager) CreatePristine(ctx context.Context, imageID int64, uploadedFilePath string) error {
	paths, err := m.catalog.Resolve(ctx, imageID)
	if err != nil {
		return err
	}
	return createPristine(paths, uploadedFilePath)
}

func createPristine(paths storage.AssetPaths, src string) error {
	if storage.Exists(paths.Pristine()) {
		return fmt.Errorf("%w: %s", ErrPristineExists, paths.Pristine())
	}
	if src == "" {
		src = paths.Original()
	}
	if err := storage.EnsureDir(filepath.Dir(paths.Pristine())); err != nil {
		return fmt.Errorf("create pristine dir: %w", err)
	}
	if err := storage.CopyFileAtomic(src, paths.Pristine()); err != nil {
		return fmt.Errorf("create pristine: %w", err)
	}
	return nil
}

// Dispatch routes a named request. "revert" reverts; any other name must
// be a known operation or ErrUnknownOperation is returned before any file
// is touched.
func (m *Manager) Dispatch(ctx context.Context, imageID int64, name string, params map[string]any) (Result, error) {
	if strings.EqualFold(strings.TrimSpace(name), OpRevert) {
		return m.Revert(ctx, imageID)
	}
	op, err := pipeline.ParseOperation(name, params)
	if err != nil {
		return Result{}, err
	}
	return m.ApplyOperation(ctx, imageID, op)
}

// RefreshThumbnail rebuilds the thumbnail of imageID.
func (m *Manager) RefreshThumbnail(ctx context.Context, imageID int64) error {
	paths, err := m.resolve(ctx, imageID)
	if err != nil {
		return err
	}
	return m.RegenerateThumbnail(paths)
}

// RegenerateThumbnail rebuilds the thumbnail from the current original.
func (m *Manager) RegenerateThumbnail(paths storage.AssetPaths) error {
	manip, err := pipeline.Open(paths.Original(), m.cfg.Quality)
	if err != nil {
		return fmt.Errorf("open original: %w", err)
	}
	return m.writeThumbnail(manip, paths)
}

// writeThumbnail renders the thumbnail from an already loaded buffer. The
// session is not modified. Failures are logged here.
func (m *Manager) writeThumbnail(src *pipeline.Manipulator, paths storage.AssetPaths) error {
	err := func() error {
		b := src.Buffer()
		thumb, err := pipeline.FromImage(b.Image(), b.Format(), m.cfg.Quality)
		if err != nil {
			return err
		}
		_, err = thumb.Thumbnail(m.cfg.ThumbWidth, m.cfg.ThumbHeight).Save(paths.Thumbnail())
		return err
	}()
	if err != nil {
		log.Printf("Assets: thumbnail %s is stale: %v", paths.Thumbnail(), err)
	}
	return err
}

// syncRecord refreshes the stored dimensions and size. The files are the
// source of truth, so a failure here is only logged.
func (m *Manager) syncRecord(ctx context.Context, imageID int64, paths storage.AssetPaths, width, height int) {
	var size int64
	if info, err := os.Stat(paths.Original()); err == nil {
		size = info.Size()
	}
	if err := m.catalog.UpdateFile(ctx, imageID, width, height, size); err != nil {
		log.Printf("Assets: failed to update record for image %d: %v", imageID, err)
	}
}

func (m *Manager) record(ctx context.Context, imageID int64, name string, params map[string]any) error {
	if m.history == nil {
		return nil
	}
	return m.history.Record(ctx, imageID, name, params)
}

// Delete removes the image record (history goes with it) and then every
// tier on disk. Files that cannot be removed are logged, not returned.
func (m *Manager) Delete(ctx context.Context, imageID int64) error {
	paths, err := m.catalog.Resolve(ctx, imageID)
	if err != nil {
		return err
	}
	if err := m.catalog.Remove(ctx, imageID); err != nil {
		return fmt.Errorf("remove record of image %d: %w", imageID, err)
	}
	var c storage.Cleanup
	c.Add(paths.Original())
	c.Add(paths.Thumbnail())
	c.Add(paths.Pristine())
	if err := c.Execute(); err != nil {
		log.Printf("Assets: image %d deleted, leftover files: %v", imageID, err)
	}
	log.Printf("Assets: deleted image %d", imageID)
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gallery/internal/assets"
	"gallery/internal/db/sqlc"
	"gallery/internal/storage"
)

// pageSize bounds how many rows Each holds in memory at once.
const pageSize = 100

// Repository is the image catalog: sqlc-backed records plus the storage
// layout that maps them to files.
type Repository struct {
	db    *sql.DB
	q     sqlc.Querier
	store *storage.Storage
	now   func() time.Time
}

var _ assets.Catalog = (*Repository)(nil)

// NewWithQuerier creates a repository from an existing sqlc Querier (for testing).
func NewWithQuerier(q sqlc.Querier, db *sql.DB, store *storage.Storage) *Repository {
	return &Repository{q: q, db: db, store: store, now: time.Now}
}

// New creates a repository by instantiating the generated sqlc Queries.
func New(db *sql.DB, store *storage.Storage) *Repository {
	return NewWithQuerier(sqlc.New(db), db, store)
}

// Ping checks DB connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

// Create inserts a new image record and returns its id.
func (r *Repository) Create(ctx context.Context, img assets.NewImage) (int64, error) {
	now := r.now().UnixMilli()
	row, err := r.q.CreateImage(ctx, sqlc.CreateImageParams{
		OwnerID:      img.OwnerID,
		FolderID:     img.FolderID,
		Filename:     img.Filename,
		OriginalName: img.OriginalName,
		Format:       string(img.Format),
		Width:        int64(img.Width),
		Height:       int64(img.Height),
		SizeBytes:    img.SizeBytes,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return 0, fmt.Errorf("create image: %w", err)
	}
	return row.ID, nil
}

// Get returns the record for id, wrapping assets.ErrImageNotFound when
// there is none.
func (r *Repository) Get(ctx context.Context, id int64) (sqlc.Image, error) {
	img, err := r.q.GetImage(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return sqlc.Image{}, fmt.Errorf("%w: %d", assets.ErrImageNotFound, id)
	}
	if err != nil {
		return sqlc.Image{}, fmt.Errorf("get image %d: %w", id, err)
	}
	return img, nil
}

// Resolve maps an image id to its asset triple.
func (r *Repository) Resolve(ctx context.Context, id int64) (storage.AssetPaths, error) {
	img, err := r.Get(ctx, id)
	if err != nil {
		return storage.AssetPaths{}, err
	}
	return r.Paths(img), nil
}

// Paths returns the asset triple for a record.
func (r *Repository) Paths(img sqlc.Image) storage.AssetPaths {
	return r.store.Paths(img.OwnerID, img.FolderID, img.Filename)
}

// UpdateFile stores the current dimensions and size of the original.
func (r *Repository) UpdateFile(ctx context.Context, id int64, width, height int, sizeBytes int64) error {
	return r.q.UpdateImageFile(ctx, sqlc.UpdateImageFileParams{
		Width:     int64(width),
		Height:    int64(height),
		SizeBytes: sizeBytes,
		UpdatedAt: r.now().UnixMilli(),
		ID:        id,
	})
}

// Remove deletes the record; its history goes with it.
func (r *Repository) Remove(ctx context.Context, id int64) error {
	return r.q.DeleteImage(ctx, id)
}

// ListFolder returns the images in one owner's folder, oldest first.
func (r *Repository) ListFolder(ctx context.Context, ownerID, folderID int64) ([]sqlc.Image, error) {
	return r.q.ListImagesInFolder(ctx, sqlc.ListImagesInFolderParams{OwnerID: ownerID, FolderID: folderID})
}

// Each calls fn for every image in id order, a page at a time. It stops at
// the first error from fn or when ctx is done.
func (r *Repository) Each(ctx context.Context, fn func(sqlc.Image) error) error {
	var after int64
	for {
		page, err := r.q.ListAllImages(ctx, sqlc.ListAllImagesParams{ID: after, Limit: pageSize})
		if err != nil {
			return fmt.Errorf("list images after %d: %w", after, err)
		}
		for _, img := range page {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(img); err != nil {
				return err
			}
			after = img.ID
		}
		if len(page) < pageSize {
			return nil
		}
	}
}

package janitor

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gallery/internal/db/sqlc"
	"gallery/internal/imagelock"
	"gallery/internal/storage"
)

const (
	tempFileMaxAge = 15 * time.Minute
	emptyDirMinAge = time.Hour
)

// Catalog enumerates stored images and maps them to their files.
type Catalog interface {
	Each(ctx context.Context, fn func(sqlc.Image) error) error
	Paths(img sqlc.Image) storage.AssetPaths
}

// ThumbnailRenderer rebuilds a thumbnail from the current original.
type ThumbnailRenderer interface {
	RegenerateThumbnail(paths storage.AssetPaths) error
}

// Janitor repairs stale thumbnails and removes leftover files
type Janitor struct {
	catalog  Catalog
	renderer ThumbnailRenderer
	locks    *imagelock.Locker
	dataDir  string
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// Config holds janitor configuration
type Config struct {
	Catalog  Catalog
	Renderer ThumbnailRenderer
	Locks    *imagelock.Locker
	DataDir  string
	Interval time.Duration
}

// Stats summarizes one cleanup cycle.
type Stats struct {
	ThumbnailsRebuilt int
	ThumbnailsFailed  int
	Busy              int
	TempFilesRemoved  int
	DirsRemoved       int
}

// New creates a new Janitor instance
func New(cfg Config) *Janitor {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Locks == nil {
		cfg.Locks = imagelock.New()
	}

	return &Janitor{
		catalog:  cfg.Catalog,
		renderer: cfg.Renderer,
		locks:    cfg.Locks,
		dataDir:  cfg.DataDir,
		interval: cfg.Interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the cleanup scheduler in a goroutine
func (j *Janitor) Start(ctx context.Context) {
	go j.run(ctx)
}

// Stop gracefully stops the janitor
func (j *Janitor) Stop() {
	close(j.stopChan)
	<-j.doneChan // wait for cleanup to finish
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.doneChan)

	// Run cleanup immediately on startup
	j.RunOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce(ctx)
		case <-j.stopChan:
			log.Println("Janitor: received stop signal, shutting down...")
			return
		case <-ctx.Done():
			log.Println("Janitor: context cancelled, shutting down...")
			return
		}
	}
}

// RunOnce executes all cleanup tasks
func (j *Janitor) RunOnce(ctx context.Context) Stats {
	log.Println("Janitor: starting cleanup cycle...")
	start := time.Now().UTC()

	var st Stats
	j.repairThumbnails(ctx, &st)
	j.cleanupTempFiles(&st)
	j.cleanupEmptyDirs(&st)

	log.Printf("Janitor: cleanup cycle completed in %v (rebuilt=%d failed=%d busy=%d temp=%d dirs=%d)",
		time.Since(start), st.ThumbnailsRebuilt, st.ThumbnailsFailed, st.Busy, st.TempFilesRemoved, st.DirsRemoved)
	return st
}

// repairThumbnails rebuilds thumbnails that are missing or older than their
// original. Images locked by a request are skipped until the next cycle.
func (j *Janitor) repairThumbnails(ctx context.Context, st *Stats) {
	if j.catalog == nil || j.renderer == nil {
		return
	}
	err := j.catalog.Each(ctx, func(img sqlc.Image) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		paths := j.catalog.Paths(img)
		if !thumbnailStale(paths) {
			return nil
		}

		unlock, ok := j.locks.TryLock(img.ID)
		if !ok {
			st.Busy++
			return nil
		}
		defer unlock()

		// recheck under the lock, a request may have just rendered it
		if !thumbnailStale(paths) {
			return nil
		}
		if err := j.renderer.RegenerateThumbnail(paths); err != nil {
			log.Printf("Janitor: failed to rebuild thumbnail for image %d: %v", img.ID, err)
			st.ThumbnailsFailed++
			return nil
		}
		st.ThumbnailsRebuilt++
		return nil
	})
	if err != nil {
		log.Printf("Janitor: thumbnail scan aborted: %v", err)
	}
}

// thumbnailStale is false when the original is missing, since there is
// nothing to render from.
func thumbnailStale(paths storage.AssetPaths) bool {
	orig, err := os.Stat(paths.Original())
	if err != nil || !orig.Mode().IsRegular() {
		return false
	}
	thumb, err := os.Stat(paths.Thumbnail())
	if err != nil {
		return true
	}
	return thumb.ModTime().Before(orig.ModTime())
}

// cleanupTempFiles removes orphaned atomic-write temp files older than 15 minutes
func (j *Janitor) cleanupTempFiles(st *Stats) {
	n, err := storage.CleanOrphanedTempFiles(j.dataDir, tempFileMaxAge)
	if err != nil {
		log.Printf("Janitor: failed to cleanup temp files: %v", err)
	}
	if n > 0 {
		log.Printf("Janitor: removed %d orphaned temp files", n)
	}
	st.TempFilesRemoved = n
}

// cleanupEmptyDirs removes empty directories below {dataDir}/users, deepest
// first. Recently touched directories are kept so an in-flight upload does
// not lose its tier directories.
func (j *Janitor) cleanupEmptyDirs(st *Stats) {
	usersDir := filepath.Join(j.dataDir, "users")
	cutoff := time.Now().Add(-emptyDirMinAge)

	// mtimes are taken before any removal touches the parents
	var dirs []string
	filepath.WalkDir(usersDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip on error
		}
		if !d.IsDir() || path == usersDir {
			return nil
		}
		if info, err := d.Info(); err == nil && info.ModTime().Before(cutoff) {
			dirs = append(dirs, path)
		}
		return nil
	})

	sort.Slice(dirs, func(a, b int) bool { return len(dirs[a]) > len(dirs[b]) })
	for _, dir := range dirs {
		// Remove fails on non-empty directories
		if err := os.Remove(dir); err == nil {
			st.DirsRemoved++
		}
	}
}

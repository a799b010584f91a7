package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TempPrefix marks in-flight atomic writes. Files carrying it that outlive
// a crash are swept by CleanOrphanedTempFiles.
const TempPrefix = ".tmp-"

// Cleanup is a simple helper to track temporary paths and remove them.
type Cleanup struct {
	paths []string
}

// Add registers a path for later cleanup.
func (c *Cleanup) Add(path string) {
	c.paths = append(c.paths, path)
}

// Execute removes all registered paths. It is safe to call multiple times.
// Returns the first non-ignorable error encountered, or nil.
func (c *Cleanup) Execute() error {
	var firstErr error
	for _, p := range c.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	c.paths = nil
	return firstErr
}

// Discard forgets all registered paths without removing them.
func (c *Cleanup) Discard() {
	c.paths = nil
}

// CleanOrphanedTempFiles removes atomic-write temp files older than maxAge
// anywhere below root. It returns the number of files removed.
func CleanOrphanedTempFiles(root string, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip unreadable subtrees
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), TempPrefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	return removed, err
}

package storage

import (
	"path/filepath"
	"strconv"
)

// Tier names double as the subdirectory names under an image root.
const (
	TierOriginal  = "original"
	TierThumbnail = "thumbnail"
	TierPristine  = "pristine"
)

// ImageRoot returns the per-owner, per-folder root using layout:
// {baseDir}/users/{owner_id}/folders/{folder_id}
func ImageRoot(baseDir string, ownerID, folderID int64) string {
	return filepath.Join(baseDir, "users", strconv.FormatInt(ownerID, 10), "folders", strconv.FormatInt(folderID, 10))
}

// AssetPaths locates the three files that make up one stored image. The
// filename is shared by all tiers.
type AssetPaths struct {
	Root     string
	Filename string
}

// NewAssetPaths builds the asset triple for filename under the owner/folder root.
func NewAssetPaths(baseDir string, ownerID, folderID int64, filename string) AssetPaths {
	return AssetPaths{Root: ImageRoot(baseDir, ownerID, folderID), Filename: filepath.Base(filename)}
}

// Original is the mutable working copy.
func (p AssetPaths) Original() string { return p.tier(TierOriginal) }

// Thumbnail is the derived, disposable rendition of Original.
func (p AssetPaths) Thumbnail() string { return p.tier(TierThumbnail) }

// Pristine is the write-once upload backup used by revert.
func (p AssetPaths) Pristine() string { return p.tier(TierPristine) }

// Dirs returns the tier directories in original, thumbnail, pristine order.
func (p AssetPaths) Dirs() []string {
	return []string{
		filepath.Join(p.Root, TierOriginal),
		filepath.Join(p.Root, TierThumbnail),
		filepath.Join(p.Root, TierPristine),
	}
}

// EnsureDirs creates the tier directories. This is an upload-time
// responsibility; manipulation assumes they already exist.
func (p AssetPaths) EnsureDirs() error {
	for _, d := range p.Dirs() {
		if err := EnsureDir(d); err != nil {
			return err
		}
	}
	return nil
}

func (p AssetPaths) tier(name string) string {
	return filepath.Join(p.Root, name, p.Filename)
}

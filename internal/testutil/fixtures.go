package testutil

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gallery/internal/db/sqlc"

	"golang.org/x/crypto/bcrypt"
)

// CreateTestImage inserts an image record. No files are written.
func CreateTestImage(t *testing.T, q *sqlc.Queries, ownerID, folderID int64, filename string, width, height int) *sqlc.Image {
	t.Helper()

	now := time.Now().UnixMilli()
	img, err := q.CreateImage(context.Background(), sqlc.CreateImageParams{
		OwnerID:      ownerID,
		FolderID:     folderID,
		Filename:     filename,
		OriginalName: filename,
		Format:       formatOf(filename),
		Width:        int64(width),
		Height:       int64(height),
		SizeBytes:    0,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	return &img
}

func formatOf(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "jpg" {
		return "jpeg"
	}
	return ext
}

// HashAPIKey creates a cheap bcrypt hash for testing API key authentication.
func HashAPIKey(t *testing.T, key string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash api key: %v", err)
	}
	return string(hash)
}

// GenerateTestImage creates a gradient image in the given format ("jpeg" or
// "png") and returns it as an io.ReadSeeker.
func GenerateTestImage(t *testing.T, format string, width, height int) io.ReadSeeker {
	t.Helper()
	return bytes.NewReader(EncodeImage(t, GradientImage(width, height), format))
}

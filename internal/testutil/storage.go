package testutil

import (
	"testing"

	"gallery/internal/storage"
)

// SetupTestStorage returns a Storage rooted in a per-test temporary directory.
func SetupTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	return storage.New(t.TempDir())
}

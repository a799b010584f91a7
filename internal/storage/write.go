package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrChecksumMismatch is returned when a copied file does not hash to the
// same value as its source.
var ErrChecksumMismatch = errors.New("checksum mismatch after copy")

// EnsureDir creates directory structure with proper permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// AtomicWrite writes data to path atomically using a temp file in the same directory.
func AtomicWrite(path string, data io.Reader) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	return writeViaTemp(dir, path, data, nil)
}

// AtomicWriteBytes is AtomicWrite for an in-memory payload.
func AtomicWriteBytes(path string, data []byte) error {
	return AtomicWrite(path, bytes.NewReader(data))
}

// CopyFileAtomic copies src over dst byte-for-byte. The destination is only
// replaced once the full copy is on disk and its checksum matches the
// source; a failure to read src leaves dst untouched. The destination
// directory must already exist.
func CopyFileAtomic(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	want, err := ChecksumReader(in)
	if err != nil {
		return fmt.Errorf("hash source: %w", err)
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind source: %w", err)
	}

	verify := func(tmpName string) error {
		got, err := Checksum(tmpName)
		if err != nil {
			return fmt.Errorf("hash copy: %w", err)
		}
		if got != want {
			return ErrChecksumMismatch
		}
		return nil
	}
	return writeViaTemp(filepath.Dir(dst), dst, in, verify)
}

// writeViaTemp streams data into a temp file in dir, runs the optional
// verify hook against the closed temp file, then renames it onto path.
func writeViaTemp(dir, path string, data io.Reader, verify func(tmpName string) error) error {
	tmp, err := os.CreateTemp(dir, TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	// ensure cleanup of tmp on error
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if verify != nil {
		if err := verify(tmpName); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp to final: %w", err)
	}

	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

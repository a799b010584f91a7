package storage

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Checksum returns the xxHash64 of the file at path.
func Checksum(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ChecksumReader(f)
}

// ChecksumReader computes xxHash64 from a reader, streaming.
func ChecksumReader(r io.Reader) (uint64, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAssetPaths(t *testing.T) {
	p := NewAssetPaths("/data", 42, 7, "photo.jpg")
	if !strings.HasSuffix(p.Root, filepath.Join("users", "42", "folders", "7")) {
		t.Fatalf("unexpected root: %s", p.Root)
	}
	if p.Original() != filepath.Join(p.Root, "original", "photo.jpg") {
		t.Fatalf("unexpected original path: %s", p.Original())
	}
	if p.Thumbnail() != filepath.Join(p.Root, "thumbnail", "photo.jpg") {
		t.Fatalf("unexpected thumbnail path: %s", p.Thumbnail())
	}
	if p.Pristine() != filepath.Join(p.Root, "pristine", "photo.jpg") {
		t.Fatalf("unexpected pristine path: %s", p.Pristine())
	}
}

func TestAssetPaths_StripsDirectoryFromFilename(t *testing.T) {
	p := NewAssetPaths("/data", 1, 1, "../../etc/passwd")
	if p.Filename != "passwd" {
		t.Fatalf("expected filename to be reduced to its base, got %q", p.Filename)
	}
}

func TestEnsureDirs(t *testing.T) {
	p := NewAssetPaths(t.TempDir(), 1, 2, "a.png")
	if err := p.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, d := range p.Dirs() {
		info, err := os.Stat(d)
		if err != nil {
			t.Fatalf("stat %s: %v", d, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %s to be a directory", d)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "users", "1", "folders", "42")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected dir, got file")
	}
}

func TestAtomicWriteSuccess(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "file.bin")
	data := bytes.NewReader([]byte("hello world"))
	if err := AtomicWrite(path, data); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(b) != "hello world" {
		t.Fatalf("unexpected contents: %s", string(b))
	}
}

type failReader struct{ n int }

func (f *failReader) Read(p []byte) (int, error) {
	if f.n <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	// write one byte then fail
	p[0] = 'x'
	f.n--
	return 1, nil
}

func TestAtomicWritePartialFailure(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "partial.bin")
	fr := &failReader{n: 0}
	if err := AtomicWrite(path, fr); err == nil {
		t.Fatalf("expected error from AtomicWrite with failing reader")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no final file on failure, got: %v", err)
	}
}

func TestAtomicWriteFailureKeepsExistingFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "keep.bin")
	if err := os.WriteFile(path, []byte("before"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := AtomicWrite(path, &failReader{n: 3}); err == nil {
		t.Fatalf("expected error")
	}
	b, _ := os.ReadFile(path)
	if string(b) != "before" {
		t.Fatalf("existing file modified: %q", b)
	}
	entries, _ := os.ReadDir(tmp)
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be removed, found %d entries", len(entries))
	}
}

func TestCopyFileAtomic(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.bin")
	dst := filepath.Join(tmp, "dst.bin")
	payload := bytes.Repeat([]byte{0, 1, 2, 3, 254, 255}, 4096)
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := os.WriteFile(dst, []byte("stale"), 0o644); err != nil {
		t.Fatalf("write dst: %v", err)
	}

	if err := CopyFileAtomic(src, dst); err != nil {
		t.Fatalf("CopyFileAtomic: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("copy is not byte-identical")
	}
}

func TestCopyFileAtomic_MissingSourceLeavesDestination(t *testing.T) {
	tmp := t.TempDir()
	dst := filepath.Join(tmp, "dst.bin")
	if err := os.WriteFile(dst, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("write dst: %v", err)
	}
	if err := CopyFileAtomic(filepath.Join(tmp, "missing.bin"), dst); err == nil {
		t.Fatalf("expected error for missing source")
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "keep me" {
		t.Fatalf("destination modified: %q", b)
	}
}

func TestChecksum(t *testing.T) {
	tmp := t.TempDir()
	a := filepath.Join(tmp, "a")
	b := filepath.Join(tmp, "b")
	os.WriteFile(a, []byte("same"), 0o644)
	os.WriteFile(b, []byte("same"), 0o644)

	ha, err := Checksum(a)
	if err != nil {
		t.Fatalf("checksum a: %v", err)
	}
	hb, _ := Checksum(b)
	if ha != hb {
		t.Fatalf("expected equal checksums for equal content")
	}

	os.WriteFile(b, []byte("diff"), 0o644)
	hb, _ = Checksum(b)
	if ha == hb {
		t.Fatalf("expected different checksums for different content")
	}
}

func TestExists(t *testing.T) {
	tmp := t.TempDir()
	f := filepath.Join(tmp, "f")
	if Exists(f) {
		t.Fatalf("missing file reported as existing")
	}
	os.WriteFile(f, nil, 0o644)
	if !Exists(f) {
		t.Fatalf("file not reported as existing")
	}
	if Exists(tmp) {
		t.Fatalf("directory reported as regular file")
	}
}

func TestCleanupExecute(t *testing.T) {
	tmp := t.TempDir()
	f1 := filepath.Join(tmp, "a.tmp")
	f2 := filepath.Join(tmp, "b.tmp")
	if err := os.WriteFile(f1, []byte("x"), 0o600); err != nil {
		t.Fatalf("write f1: %v", err)
	}
	if err := os.WriteFile(f2, []byte("y"), 0o600); err != nil {
		t.Fatalf("write f2: %v", err)
	}
	var c Cleanup
	c.Add(f1)
	c.Add(f2)
	if err := c.Execute(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if _, err := os.Stat(f1); !os.IsNotExist(err) {
		t.Fatalf("f1 should be removed")
	}
	if _, err := os.Stat(f2); !os.IsNotExist(err) {
		t.Fatalf("f2 should be removed")
	}
}

func TestCleanupDiscard(t *testing.T) {
	tmp := t.TempDir()
	f := filepath.Join(tmp, "keep")
	os.WriteFile(f, []byte("x"), 0o600)
	var c Cleanup
	c.Add(f)
	c.Discard()
	if err := c.Execute(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if _, err := os.Stat(f); err != nil {
		t.Fatalf("discarded path should remain: %v", err)
	}
}

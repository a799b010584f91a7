package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gallery/internal/testutil"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"CONFIG_FILE", "DATABASE_PATH", "DATA_DIR", "THUMBNAIL_WIDTH", "THUMBNAIL_HEIGHT"} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	cfg := "database_path: " + filepath.Join(dir, "gallery.db") + "\n" +
		"data_dir: " + filepath.Join(dir, "data") + "\n" +
		"thumbnail_width: 32\nthumbnail_height: 32\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"width=200", "height = 100", "maintain_aspect=true"})
	if err != nil {
		t.Fatalf("parseParams: %v", err)
	}
	if params["width"] != "200" || params["height"] != "100" || params["maintain_aspect"] != "true" {
		t.Errorf("unexpected params %v", params)
	}

	for _, bad := range []string{"width", "=5"} {
		if _, err := parseParams([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFormatParams(t *testing.T) {
	got := formatParams(map[string]any{"width": 10, "height": 20, "name": "a.png"})
	if got != `height=20 name="a.png" width=10` {
		t.Errorf("formatParams = %q", got)
	}
}

func TestImportApplyHistoryRevert(t *testing.T) {
	configPath := writeConfig(t)
	src := filepath.Join(t.TempDir(), "photo.png")
	testutil.WriteTestImage(t, src, "png", 120, 80)

	out, err := run(t, configPath, "import", "--owner", "3", "--folder", "4", src)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "image 1: upload -> 120x80") {
		t.Fatalf("unexpected import output: %q", out)
	}

	out, err = run(t, configPath, "apply", "1", "crop", "width=50", "height=40", "x=0", "y=0")
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, out)
	}
	if !strings.Contains(out, "crop -> 50x40") {
		t.Fatalf("unexpected apply output: %q", out)
	}

	if _, err := run(t, configPath, "revert", "1"); err != nil {
		t.Fatalf("revert: %v", err)
	}

	out, err = run(t, configPath, "history", "1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	revertAt := strings.Index(out, "revert")
	cropAt := strings.Index(out, "crop")
	uploadAt := strings.Index(out, "upload")
	if revertAt < 0 || cropAt < 0 || uploadAt < 0 || !(revertAt < cropAt && cropAt < uploadAt) {
		t.Fatalf("history should list revert, crop, upload newest first:\n%s", out)
	}

	out, err = run(t, configPath, "list", "--owner", "3", "--folder", "4")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "photo.png") || !strings.Contains(out, "120x80") {
		t.Fatalf("list should show the reverted image:\n%s", out)
	}
}

func TestApplyUnknownOperation(t *testing.T) {
	configPath := writeConfig(t)
	src := filepath.Join(t.TempDir(), "photo.png")
	testutil.WriteTestImage(t, src, "png", 20, 20)

	if _, err := run(t, configPath, "import", src); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := run(t, configPath, "apply", "1", "posterize"); err == nil || !strings.Contains(err.Error(), "unknown operation") {
		t.Fatalf("expected unknown operation error, got %v", err)
	}
	if _, err := run(t, configPath, "apply", "x", "grayscale"); err == nil {
		t.Fatal("expected error for invalid id")
	}
}

func TestDeleteAndRepair(t *testing.T) {
	configPath := writeConfig(t)
	src := filepath.Join(t.TempDir(), "photo.png")
	testutil.WriteTestImage(t, src, "png", 20, 20)

	if _, err := run(t, configPath, "import", src); err != nil {
		t.Fatalf("import: %v", err)
	}
	out, err := run(t, configPath, "repair")
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if !strings.Contains(out, "rebuilt 0 thumbnails") {
		t.Errorf("fresh import needs no repair: %q", out)
	}

	if _, err := run(t, configPath, "delete", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := run(t, configPath, "history", "1"); err == nil {
		t.Fatal("history of a deleted image should fail")
	}
}

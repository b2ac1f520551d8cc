package source

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestImageSourceSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "art.png")
	writeTestImage(t, path, 40, 30)

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", src.PageCount())
	}

	w, h, err := src.GetPageDimensions(0)
	if err != nil {
		t.Fatalf("GetPageDimensions failed: %v", err)
	}
	if w != 40 || h != 30 {
		t.Errorf("dimensions = %fx%f, want 40x30", w, h)
	}

	img, err := src.RenderPage(0, 150)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if img.Bounds().Dx() != 40 {
		t.Errorf("rendered width = %d", img.Bounds().Dx())
	}
}

func TestImageSourceDirectorySorted(t *testing.T) {
	dir := t.TempDir()
	// Written out of order; pages must come back sorted by name.
	writeTestImage(t, filepath.Join(dir, "02_mid.png"), 20, 20)
	writeTestImage(t, filepath.Join(dir, "01_first.png"), 10, 10)
	writeTestImage(t, filepath.Join(dir, "03_last.png"), 30, 30)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := NewImageSource(dir)
	if err != nil {
		t.Fatalf("NewImageSource failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 3 {
		t.Fatalf("PageCount = %d, want 3 (non-images skipped)", src.PageCount())
	}

	w, _, err := src.GetPageDimensions(0)
	if err != nil {
		t.Fatal(err)
	}
	if w != 10 {
		t.Errorf("first page width = %f, want 10", w)
	}
}

func TestOpenMissingPath(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

package discover

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = filepath.Base(it.Path)
	}
	return out
}

func TestImagesFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.jpg")
	touch(t, dir, "b.JPEG")
	touch(t, dir, "c.png")
	touch(t, dir, "d.bmp")
	touch(t, dir, "e.tiff")
	touch(t, dir, "f.gif")
	touch(t, dir, "notes.txt")
	touch(t, dir, "archive.zip")
	touch(t, dir, "noext")
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	items, err := Images(dir)
	if err != nil {
		t.Fatalf("Images() error = %v", err)
	}
	want := []string{"a.jpg", "b.JPEG", "c.png", "d.bmp", "e.tiff", "f.gif"}
	if !reflect.DeepEqual(names(items), want) {
		t.Fatalf("unexpected items: %v, want %v", names(items), want)
	}
	for i, it := range items {
		if it.Index != i {
			t.Fatalf("item %d has index %d", i, it.Index)
		}
	}
}

func TestImagesIgnoresNestedImages(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	touch(t, sub, "deep.png")

	items, err := Images(dir)
	if err != nil {
		t.Fatalf("Images() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %v", names(items))
	}
}

func TestImagesEmptyDirIsNotAnError(t *testing.T) {
	items, err := Images(t.TempDir())
	if err != nil {
		t.Fatalf("Images() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result, got %v", names(items))
	}
}

func TestImagesMissingDir(t *testing.T) {
	_, err := Images(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

func TestImagesPathIsFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "plain.jpg")
	_, err := Images(filepath.Join(dir, "plain.jpg"))
	if !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

func TestImagesIdempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "one.png")
	touch(t, dir, "two.jpg")

	first, err := Images(dir)
	if err != nil {
		t.Fatalf("Images() error = %v", err)
	}
	second, err := Images(dir)
	if err != nil {
		t.Fatalf("Images() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("discovery not idempotent: %v vs %v", first, second)
	}
}

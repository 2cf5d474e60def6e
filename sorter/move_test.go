package sorter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestMove(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	path := filepath.Join(src, "pic.png")
	writeFile(t, path, "payload")

	if err := move(path, dst, CollisionOverwrite); err != nil {
		t.Fatalf("move() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("source still present after move")
	}
	if got := readFile(t, filepath.Join(dst, "pic.png")); got != "payload" {
		t.Fatalf("destination content = %q", got)
	}
}

func TestMoveOverwriteReplacesDestination(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	path := filepath.Join(src, "pic.png")
	writeFile(t, path, "new")
	writeFile(t, filepath.Join(dst, "pic.png"), "old")

	if err := move(path, dst, CollisionOverwrite); err != nil {
		t.Fatalf("move() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dst, "pic.png")); got != "new" {
		t.Fatalf("destination content = %q, want %q", got, "new")
	}
}

func TestMoveCollisionErrorLeavesSource(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	path := filepath.Join(src, "pic.png")
	writeFile(t, path, "new")
	writeFile(t, filepath.Join(dst, "pic.png"), "old")

	err := move(path, dst, CollisionError)
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	if got := readFile(t, path); got != "new" {
		t.Fatalf("source was modified: %q", got)
	}
	if got := readFile(t, filepath.Join(dst, "pic.png")); got != "old" {
		t.Fatalf("destination was modified: %q", got)
	}
}

func TestMoveCollisionErrorWithoutCollision(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	path := filepath.Join(src, "pic.png")
	writeFile(t, path, "payload")

	if err := move(path, dst, CollisionError); err != nil {
		t.Fatalf("move() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dst, "pic.png")); got != "payload" {
		t.Fatalf("destination content = %q", got)
	}
}

func TestCopyThenRemove(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	path := filepath.Join(src, "pic.png")
	writeFile(t, path, "payload")
	dest := filepath.Join(dst, "pic.png")

	if err := copyThenRemove(path, dest); err != nil {
		t.Fatalf("copyThenRemove() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("source still present")
	}
	if got := readFile(t, dest); got != "payload" {
		t.Fatalf("destination content = %q", got)
	}
}

func TestCopyThenRemoveMissingSource(t *testing.T) {
	dst := t.TempDir()
	err := copyThenRemove(filepath.Join(t.TempDir(), "absent"), filepath.Join(dst, "out"))
	if err == nil {
		t.Fatalf("expected error for missing source")
	}
}

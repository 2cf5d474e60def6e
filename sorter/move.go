package sorter

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// CollisionPolicy selects the behavior when a moved file's base name already
// exists in the output directory.
type CollisionPolicy string

const (
	// CollisionOverwrite silently replaces the existing destination file.
	// This mirrors the historical behavior and is the default.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionError refuses the move and leaves the source in place.
	CollisionError CollisionPolicy = "error"
)

// ErrDestinationExists reports a refused move under CollisionError.
var ErrDestinationExists = errors.New("destination already exists")

// move relocates path into outputDir keeping its base name. Callers serialize
// invocations, which makes the collision check and the rename atomic within a
// run. The move either fully succeeds or leaves the source file intact.
func move(path, outputDir string, policy CollisionPolicy) error {
	dest := filepath.Join(outputDir, filepath.Base(path))
	if policy == CollisionError {
		if _, err := os.Lstat(dest); err == nil {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("check destination: %w", err)
		}
	}
	if err := os.Rename(path, dest); err == nil {
		return nil
	} else if !isCrossDevice(err) {
		return fmt.Errorf("rename: %w", err)
	}
	return copyThenRemove(path, dest)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// copyThenRemove handles moves across filesystems. The source is removed only
// after the destination has been fully written and synced; a failed copy
// removes the partial destination.
func copyThenRemove(path, dest string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dest)
		return fmt.Errorf("copy: %w", err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		os.Remove(dest)
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close destination: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove source: %w", err)
	}
	return nil
}

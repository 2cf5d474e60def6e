// Package discover enumerates candidate image files in an input directory.
package discover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDirectory reports that the discovery path is missing or not a
// directory.
var ErrNotDirectory = errors.New("not a directory")

// Item is one discovered image file. Index reflects the position in
// directory-listing order and is stable within a single call.
type Item struct {
	Path  string
	Index int
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".gif":  true,
}

// Images lists the image files directly inside dir, matched by extension
// (case-insensitive). Subdirectories are not entered. An empty result is a
// valid outcome.
func Images(dir string) ([]Item, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrNotDirectory, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrNotDirectory, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", dir, err)
	}
	var items []Item
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !imageExtensions[ext] {
			continue
		}
		items = append(items, Item{
			Path:  filepath.Join(dir, entry.Name()),
			Index: len(items),
		})
	}
	return items, nil
}

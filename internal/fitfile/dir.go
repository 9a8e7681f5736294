package fitfile

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"
)

// Directory is a folder of FIT exports, searched recursively. Decoded files
// are cached by path and modification time.
type Directory struct {
	root string

	mu    sync.Mutex
	cache map[string]*Activity
}

// NewDirectory creates a reader for the FIT files under root
func NewDirectory(root string) *Directory {
	return &Directory{root: root, cache: make(map[string]*Activity)}
}

// Root returns the directory path
func (d *Directory) Root() string {
	return d.root
}

// SkippedFile is a file that could not be decoded
type SkippedFile struct {
	Path string
	Err  error
}

// Activities decodes every FIT file modified after modifiedAfter (all files
// when zero). Files that fail to decode are reported in skipped rather than
// failing the scan.
func (d *Directory) Activities(ctx context.Context, modifiedAfter time.Time) (activities []*Activity, skipped []SkippedFile, err error) {
	err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !IsFITFile(entry.Name()) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			skipped = append(skipped, SkippedFile{Path: path, Err: err})
			return nil
		}
		if !modifiedAfter.IsZero() && !info.ModTime().After(modifiedAfter) {
			return nil
		}

		a, err := d.decode(path, info.ModTime())
		if err != nil {
			skipped = append(skipped, SkippedFile{Path: path, Err: err})
			return nil
		}
		activities = append(activities, a)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", d.root, err)
	}
	return activities, skipped, nil
}

func (d *Directory) decode(path string, modTime time.Time) (*Activity, error) {
	d.mu.Lock()
	cached, ok := d.cache[path]
	d.mu.Unlock()
	if ok && cached.ModTime.Equal(modTime) {
		return cached, nil
	}

	a, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.cache[path] = a
	d.mu.Unlock()
	return a, nil
}

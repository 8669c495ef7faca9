package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/yndnr/projsnap/internal/core/domain"
	"github.com/yndnr/projsnap/pkg/digest"
)

// walker accumulates file records in discovery order.
type walker struct {
	root     string
	excluder *Excluder

	files     []domain.FileRecord
	totalSize int
}

func newWalker(root string, excluder *Excluder) *walker {
	return &walker{
		root:     root,
		excluder: excluder,
		files:    make([]domain.FileRecord, 0),
	}
}

// walk visits dir recursively. Directory read failures abort the walk.
func (w *walker) walk(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			rel = name
		}
		if w.excluder.Skip(filepath.ToSlash(rel), name) {
			continue
		}

		// Symlinked directories are not followed; a link cycle would never end.
		if entry.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			w.addFile(path)
			continue
		}

		switch {
		case entry.IsDir():
			if err := w.walk(path); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			w.addFile(path)
		}
	}

	return nil
}

func (w *walker) addFile(path string) {
	content, ok := readText(path)
	if !ok {
		return
	}

	w.totalSize += len(content)
	w.files = append(w.files, domain.FileRecord{
		Path:    path,
		Content: content,
		Digest:  digest.String(content),
	})
}

// readText returns the file content if it can be read and is valid UTF-8.
func readText(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

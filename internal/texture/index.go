package texture

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IndexEntry is one texture file found on disk.
type IndexEntry struct {
	Stem string // file name without extension, original case
	Path string
}

// Index maps lowercase file stems to image paths.
// PNG files take priority over other formats for the same stem.
type Index struct {
	entries map[string]IndexEntry
}

// BuildIndex scans dir (not recursively) for decodable image files.
func BuildIndex(dir string) (*Index, error) {
	idx := &Index{entries: make(map[string]IndexEntry)}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.IsDir() || !IsSourceExt(f.Name()) {
			continue
		}
		path := filepath.Join(dir, f.Name())
		stem := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		key := strings.ToLower(stem)

		existing, exists := idx.entries[key]
		if !exists || (isPNG(path) && !isPNG(existing.Path)) {
			idx.entries[key] = IndexEntry{Stem: stem, Path: path}
		}
	}
	return idx, nil
}

// ResolvePath returns the path for a stem or file name, or ("", false).
func (idx *Index) ResolvePath(name string) (string, bool) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	key := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	e, ok := idx.entries[key]
	return e.Path, ok
}

// Entries returns all indexed files sorted by stem.
func (idx *Index) Entries() []IndexEntry {
	out := make([]IndexEntry, 0, len(idx.entries))
	for _, e := range idx.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Stem) < strings.ToLower(out[j].Stem)
	})
	return out
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func isPNG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".png")
}

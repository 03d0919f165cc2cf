package texture

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	png := solidPNG(t, 64, 64, color.NRGBA{A: 255})
	for _, name := range []string{"Alex.png", "alex.tga", "steve.webp", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), png, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	idx, err := BuildIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())

	path, ok := idx.ResolvePath("ALEX")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "Alex.png"), path)

	_, ok = idx.ResolvePath("notes")
	assert.False(t, ok)

	entries := idx.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Alex", entries[0].Stem)
	assert.Equal(t, "steve", entries[1].Stem)
}

func TestBuildIndex_MissingDir(t *testing.T) {
	_, err := BuildIndex(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

package skin

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinpack-studio/internal/texture"
)

func newTestStore() *Store {
	return NewStore(texture.NewPlaceholderGenerator(rand.NewPCG(1, 1)))
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestStore_AddDefaults(t *testing.T) {
	s := newTestStore()

	e, err := s.Add("")
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Regexp(t, `^Skin-[0-9a-f]{4}$`, e.Name)
	assert.Equal(t, SafeName(e.Name), e.SafeName)
	assert.Equal(t, TypeFree, e.Type)
	assert.Equal(t, GeometrySlim, e.Geometry)
	assert.NotEmpty(t, e.Placeholder)
	assert.Equal(t, e.Placeholder, e.Source())
}

func TestStore_RenameRecomputesSafeName(t *testing.T) {
	s := newTestStore()
	e, err := s.Add("Alex")
	require.NoError(t, err)

	got, err := s.Rename(e.ID, "Steve The Great")
	require.NoError(t, err)
	assert.Equal(t, "steve-the-great", got.SafeName)

	got, err = s.Rename(e.ID, "   ")
	require.NoError(t, err)
	assert.Equal(t, "-", got.SafeName)

	got, err = s.Rename(e.ID, "")
	require.NoError(t, err)
	assert.Equal(t, FallbackName, got.SafeName)

	_, err = s.Rename("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UploadWinsOverPlaceholder(t *testing.T) {
	s := newTestStore()
	e, err := s.Add("Alex")
	require.NoError(t, err)

	got, err := s.SetUpload(e.ID, "alex.png", []byte("upload"))
	require.NoError(t, err)
	assert.Equal(t, []byte("upload"), got.Source())
	assert.True(t, got.HasUpload())

	got, err = s.ClearUpload(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Placeholder, got.Source())

	_, err = s.SetUpload(e.ID, "x.png", nil)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestStore_EntriesAreCopies(t *testing.T) {
	s := newTestStore()
	e, err := s.Add("Alex")
	require.NoError(t, err)

	list := s.Entries()
	list[0].Name = "mutated"
	list[0].Placeholder[0] ^= 0xff

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", got.Name)
	assert.Equal(t, e.Placeholder, got.Placeholder)
}

func TestStore_RemoveAndMove(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add("A")
	b, _ := s.Add("B")
	c, _ := s.Add("C")

	require.NoError(t, s.Move(c.ID, 0))
	assert.Equal(t, []string{"C", "A", "B"}, names(s.Entries()))

	require.NoError(t, s.Move(c.ID, 2))
	assert.Equal(t, []string{"A", "B", "C"}, names(s.Entries()))

	assert.ErrorIs(t, s.Move(a.ID, 3), ErrBadPosition)
	assert.ErrorIs(t, s.Move("missing", 0), ErrNotFound)

	require.NoError(t, s.Remove(b.ID))
	assert.Equal(t, []string{"A", "C"}, names(s.Entries()))
	assert.ErrorIs(t, s.Remove(b.ID), ErrNotFound)
}

func TestStore_RegenerateSkipsUploads(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add("A")
	b, _ := s.Add("B")
	_, err := s.SetUpload(b.ID, "b.png", []byte("upload"))
	require.NoError(t, err)

	n, err := s.RegeneratePlaceholders()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	gotA, _ := s.Get(a.ID)
	assert.NotEqual(t, a.Placeholder, gotA.Placeholder)
	gotB, _ := s.Get(b.ID)
	assert.Equal(t, b.Placeholder, gotB.Placeholder)
	assert.Equal(t, []byte("upload"), gotB.Source())
}

func TestStore_RegenerateWithoutGenerator(t *testing.T) {
	s := NewStore(nil)
	_, err := s.Add("Alex")
	require.NoError(t, err)

	n, err := s.RegeneratePlaceholders()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_Reset(t *testing.T) {
	s := newTestStore()
	_, _ = s.Add("A")

	require.NoError(t, s.Reset(2))
	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	for _, e := range entries {
		assert.NotEmpty(t, e.Placeholder)
	}
}

func TestStore_ReplaceEnforcesInvariants(t *testing.T) {
	s := newTestStore()

	err := s.Replace([]Entry{{Name: "no id"}})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	require.NoError(t, s.Replace([]Entry{{ID: "x", Name: "Hello World", Geometry: "bogus"}}))
	got, err := s.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got.SafeName)
	assert.Equal(t, TypeFree, got.Type)
	assert.Equal(t, GeometrySlim, got.Geometry)
}

func TestStore_SetGeometry(t *testing.T) {
	s := newTestStore()
	e, _ := s.Add("A")

	got, err := s.SetGeometry(e.ID, "classic")
	require.NoError(t, err)
	assert.Equal(t, GeometryClassic, got.Geometry)

	_, err = s.SetGeometry(e.ID, "huge")
	assert.Error(t, err)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := s.Add("")
			assert.NoError(t, err)
			_, err = s.Rename(e.ID, "renamed")
			assert.NoError(t, err)
			_ = s.Entries()
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, s.Len())
}

func TestLanguagesAndTags(t *testing.T) {
	assert.Len(t, Languages, 27)
	assert.True(t, IsLanguage(DefaultLanguage))
	assert.False(t, IsLanguage("xx_XX"))
	assert.True(t, IsSlim(GeometrySlim))
	assert.False(t, IsSlim(GeometryClassic))
	assert.Regexp(t, `^Pack [0-9a-f]{4}$`, DefaultPackName())
	assert.Regexp(t, `^Automatically generated skin pack [0-9a-f]{5}$`, DefaultDescription())
}

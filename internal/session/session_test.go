package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinpack-studio/internal/pack"
	"skinpack-studio/internal/skin"
)

func sampleState() (pack.Descriptor, []skin.Entry) {
	d := pack.Descriptor{DisplayName: "My Pack", Description: "desc", Language: "de_DE"}
	entries := []skin.Entry{
		{ID: "a", Name: "Steve Alt", Upload: []byte{1, 2, 3}, UploadName: "steve.png", Type: skin.TypeFree, Geometry: skin.GeometryClassic},
		{ID: "b", Name: "Alex", Placeholder: []byte{9}, Type: skin.TypeFree, Geometry: skin.GeometrySlim},
	}
	return d, entries
}

func TestCaptureRestoreRoundTrip(t *testing.T) {
	d, entries := sampleState()
	snap := Capture(d, entries)

	data, err := snap.Encode()
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)

	gotD, gotEntries := decoded.Restore()
	assert.Equal(t, d, gotD)
	require.Len(t, gotEntries, 2)
	assert.Equal(t, "steve-alt", gotEntries[0].SafeName)
	assert.Equal(t, []byte{1, 2, 3}, gotEntries[0].Upload)
	assert.Equal(t, "steve.png", gotEntries[0].UploadName)
	assert.Equal(t, []byte{9}, gotEntries[1].Placeholder)
	assert.Equal(t, skin.GeometrySlim, gotEntries[1].Geometry)
}

func TestCaptureCopiesBytes(t *testing.T) {
	d, entries := sampleState()
	snap := Capture(d, entries)
	entries[0].Upload[0] = 42
	assert.Equal(t, byte(1), snap.Entries[0].Upload[0])
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version":99}`))
	assert.ErrorIs(t, err, ErrVersion)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestMemoryStoreSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Hour)
	d, entries := sampleState()

	require.NoError(t, m.Save(ctx, "k", Capture(d, entries)))
	snap, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "My Pack", snap.Pack.Name)

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Minute)
	m.now = func() time.Time { return now }

	d, entries := sampleState()
	require.NoError(t, m.Save(ctx, "k", Capture(d, entries)))

	now = now.Add(59 * time.Second)
	_, err := m.Load(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = m.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewMemoryStore(0).ttl)
}

type fakeRedis struct {
	data map[string][]byte
	ttl  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	f.data[key] = value.([]byte)
	f.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStoreUsesPrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	f := newFakeRedis()
	r := NewRedisStore(f, 2*time.Hour)
	d, entries := sampleState()

	require.NoError(t, r.Save(ctx, "abc", Capture(d, entries)))
	assert.Contains(t, f.data, KeyPrefix+"abc")
	assert.Equal(t, 2*time.Hour, f.ttl[KeyPrefix+"abc"])

	snap, err := r.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)

	require.NoError(t, r.Delete(ctx, "abc"))
	_, err = r.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewKeyUnique(t *testing.T) {
	assert.NotEqual(t, NewKey(), NewKey())
}

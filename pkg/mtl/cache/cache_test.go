package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/mtl-go/pkg/mtl/cache"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
)

func openCache(t *testing.T, opts cache.Options) *cache.Cache {
	t.Helper()
	c, err := cache.Open(t.TempDir(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestInsertGetAfterFlushInterval(t *testing.T) {
	c := openCache(t, cache.Options{FlushInterval: 10 * time.Millisecond, FlushSize: 1024})

	entry := cache.Entry{
		MtimeMicros: 1234567,
		Size:        42,
		ObjectID:    hash.FromContents([]byte("a")),
	}
	c.Insert("a/b/c.txt", entry)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		got, ok, err := c.Get("a/b/c.txt")
		require.NoError(t, err)
		if ok {
			assert.Equal(t, entry, got)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("entry never appeared after flush interval elapsed")
}

func TestGetMissingReturnsFalse(t *testing.T) {
	c := openCache(t, cache.Options{})
	_, ok, err := c.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCloseFlushesPendingWrites(t *testing.T) {
	c, err := cache.Open(t.TempDir(), cache.Options{FlushInterval: time.Hour, FlushSize: 1024})
	require.NoError(t, err)

	entry := cache.Entry{MtimeMicros: 1, Size: 2, ObjectID: hash.FromContents([]byte("x"))}
	c.Insert("path", entry)
	require.NoError(t, c.Close())

	// A fresh handle on the same directory should see the flushed value.
	reopened, err := cache.Open(c.Dir(), cache.Options{})
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get("path")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestEntrySizeConstant(t *testing.T) {
	assert.Equal(t, 32, cache.EntrySize)
}

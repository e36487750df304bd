package objstore_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/mtl-go/internal/errs"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
	"github.com/imishinist/mtl-go/pkg/mtl/objstore"
)

func openStore(t *testing.T) *objstore.Store {
	t.Helper()
	s, err := objstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWriteReadRoundtrip(t *testing.T) {
	s := openStore(t)
	payload := []byte("roundtrip")

	id, err := s.Write(payload)
	require.NoError(t, err)
	got, err := s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriteIsIdempotent(t *testing.T) {
	s := openStore(t)
	payload := []byte("same content")

	id1, err := s.Write(payload)
	require.NoError(t, err)
	id2, err := s.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestReadMissingIsNotFound(t *testing.T) {
	s := openStore(t)
	_, err := s.Read(hash.FromContents([]byte("never written")))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestExists(t *testing.T) {
	s := openStore(t)
	id, err := s.Write([]byte("exists"))
	require.NoError(t, err)

	ok, err := s.Exists(id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLargePayloadThroughPackedLayer(t *testing.T) {
	s := openStore(t)
	raw := make([]byte, 2<<20)
	_, err := rand.Read(raw)
	require.NoError(t, err)

	id := mustWritePacked(t, s, raw)
	got, err := s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestListIDsUnionsLooseAndPacked(t *testing.T) {
	s := openStore(t)
	looseID, err := s.Write([]byte("loose"))
	require.NoError(t, err)
	packedID := mustWritePacked(t, s, []byte("packed"))

	ids, err := s.ListIDs()
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, id := range ids {
		seen[id.String()] = true
	}
	assert.True(t, seen[looseID.String()])
	assert.True(t, seen[packedID.String()])
}

// mustWritePacked bypasses the loose layer to simulate an object that has
// already been migrated by pack.
func mustWritePacked(t *testing.T, s *objstore.Store, contents []byte) hash.Hash {
	t.Helper()
	id := hash.FromContents(contents)
	require.NoError(t, s.WritePacked(id, contents))
	return id
}

package repo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/mtl-go/internal/config"
	"github.com/imishinist/mtl-go/pkg/mtl/object"
	"github.com/imishinist/mtl-go/pkg/mtl/objpath"
	"github.com/imishinist/mtl-go/pkg/mtl/repo"
)

func openRepo(t *testing.T) *repo.Repo {
	t.Helper()
	cfg, err := config.Resolve(t.TempDir())
	require.NoError(t, err)
	r, err := repo.Open(cfg.Root, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestWriteReadTreeRoundtrip(t *testing.T) {
	r := openRepo(t)
	fileID, err := r.Objects.Write([]byte("contents"))
	require.NoError(t, err)

	entries := []object.Object{object.New(object.KindFile, fileID, "a.txt")}
	treeID, err := r.WriteTreeContents(entries)
	require.NoError(t, err)

	got, err := r.ReadTreeContents(treeID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.txt", got[0].Basename)
	assert.Equal(t, fileID, got[0].ID)
}

func TestSearchObjectDescendsNestedPath(t *testing.T) {
	r := openRepo(t)

	fileID, err := r.Objects.Write([]byte("leaf"))
	require.NoError(t, err)
	innerTreeID, err := r.WriteTreeContents([]object.Object{object.New(object.KindFile, fileID, "leaf.txt")})
	require.NoError(t, err)
	rootTreeID, err := r.WriteTreeContents([]object.Object{object.New(object.KindTree, innerTreeID, "sub")})
	require.NoError(t, err)

	gotLeaf, err := r.SearchObject(rootTreeID, objpath.New("sub/leaf.txt"))
	require.NoError(t, err)
	assert.Equal(t, fileID, gotLeaf)

	gotRoot, err := r.SearchObject(rootTreeID, objpath.Root)
	require.NoError(t, err)
	assert.Equal(t, rootTreeID, gotRoot)
}

func TestSearchObjectMissingComponent(t *testing.T) {
	r := openRepo(t)
	treeID, err := r.WriteTreeContents(nil)
	require.NoError(t, err)

	_, err = r.SearchObject(treeID, objpath.New("missing"))
	assert.Error(t, err)
}

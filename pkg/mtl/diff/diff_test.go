package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/mtl-go/internal/config"
	"github.com/imishinist/mtl-go/pkg/mtl/diff"
	"github.com/imishinist/mtl-go/pkg/mtl/object"
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

func TestDiffIdenticalTreesProduceNoOutput(t *testing.T) {
	r := openRepo(t)
	fileID, err := r.Objects.Write([]byte("x"))
	require.NoError(t, err)
	treeID, err := r.WriteTreeContents([]object.Object{object.New(object.KindFile, fileID, "x.txt")})
	require.NoError(t, err)

	changes, err := diff.Diff(r, treeID, treeID, diff.Options{})
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestDiffDetectsDeleteInsertAndReplace(t *testing.T) {
	r := openRepo(t)

	keptID, err := r.Objects.Write([]byte("kept"))
	require.NoError(t, err)
	removedID, err := r.Objects.Write([]byte("removed"))
	require.NoError(t, err)
	addedID, err := r.Objects.Write([]byte("added"))
	require.NoError(t, err)
	oldVersionID, err := r.Objects.Write([]byte("v1"))
	require.NoError(t, err)
	newVersionID, err := r.Objects.Write([]byte("v2"))
	require.NoError(t, err)

	aTree, err := r.WriteTreeContents([]object.Object{
		object.New(object.KindFile, keptID, "kept.txt"),
		object.New(object.KindFile, removedID, "gone.txt"),
		object.New(object.KindFile, oldVersionID, "changed.txt"),
	})
	require.NoError(t, err)
	bTree, err := r.WriteTreeContents([]object.Object{
		object.New(object.KindFile, keptID, "kept.txt"),
		object.New(object.KindFile, addedID, "new.txt"),
		object.New(object.KindFile, newVersionID, "changed.txt"),
	})
	require.NoError(t, err)

	changes, err := diff.Diff(r, aTree, bTree, diff.Options{})
	require.NoError(t, err)

	var sawDelete, sawInsert, sawReplace, sawEqual bool
	for _, c := range changes {
		switch c.Op {
		case diff.Delete:
			if c.A.Basename == "gone.txt" {
				sawDelete = true
			}
		case diff.Insert:
			if c.B.Basename == "new.txt" {
				sawInsert = true
			}
		case diff.Replace:
			if c.A.Basename == "changed.txt" && c.B.Basename == "changed.txt" {
				sawReplace = true
			}
		case diff.Equal:
			if c.A.Basename == "kept.txt" {
				sawEqual = true
			}
		}
	}
	assert.True(t, sawDelete, "expected a delete for gone.txt")
	assert.True(t, sawInsert, "expected an insert for new.txt")
	assert.True(t, sawReplace, "expected a replace for changed.txt")
	assert.True(t, sawEqual, "expected an equal for kept.txt")
}

func TestDiffRecursesIntoReplacedTrees(t *testing.T) {
	r := openRepo(t)

	leafAID, err := r.Objects.Write([]byte("a"))
	require.NoError(t, err)
	leafBID, err := r.Objects.Write([]byte("b"))
	require.NoError(t, err)
	subA, err := r.WriteTreeContents([]object.Object{object.New(object.KindFile, leafAID, "leaf.txt")})
	require.NoError(t, err)
	subB, err := r.WriteTreeContents([]object.Object{object.New(object.KindFile, leafBID, "leaf.txt")})
	require.NoError(t, err)
	aRoot, err := r.WriteTreeContents([]object.Object{object.New(object.KindTree, subA, "sub")})
	require.NoError(t, err)
	bRoot, err := r.WriteTreeContents([]object.Object{object.New(object.KindTree, subB, "sub")})
	require.NoError(t, err)

	changes, err := diff.Diff(r, aRoot, bRoot, diff.Options{})
	require.NoError(t, err)

	var sawNestedReplace bool
	for _, c := range changes {
		if c.Op == diff.Replace && c.Path.String() == "sub/leaf.txt" {
			sawNestedReplace = true
		}
	}
	assert.True(t, sawNestedReplace, "expected nested replace for sub/leaf.txt")
}

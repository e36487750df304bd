package enumerate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/mtl-go/pkg/mtl/enumerate"
	"github.com/imishinist/mtl-go/pkg/mtl/filter"
	"github.com/imishinist/mtl-go/pkg/mtl/object"
)

func writeFile(t *testing.T, root, rel, contents string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
}

func TestScanFindsFilesAndDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "sub/b.txt", "b")

	target, err := enumerate.Scan{RootDir: root, Filter: filter.MatchAll{}}.Generate()
	require.NoError(t, err)
	assert.EqualValues(t, 2, target.NumFiles)
	assert.EqualValues(t, 2, target.NumDirs) // root + sub
	assert.GreaterOrEqual(t, target.MaxDepth, 2)
}

func TestScanSkipsHiddenByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".hidden/x.txt", "x")
	writeFile(t, root, "visible.txt", "v")

	target, err := enumerate.Scan{RootDir: root, Filter: filter.MatchAll{}, Hidden: false}.Generate()
	require.NoError(t, err)
	for _, e := range target.Entries {
		assert.NotContains(t, e.Path.String(), "hidden")
	}
}

func TestFileListParsesDirSuffix(t *testing.T) {
	input := strings.NewReader("sub/\nsub/file.txt\n")
	target, err := enumerate.FileList{Reader: input, Filter: filter.MatchAll{}}.Generate()
	require.NoError(t, err)

	var sawDir, sawFile bool
	for _, e := range target.Entries {
		switch e.Path.String() {
		case "sub":
			assert.Equal(t, object.KindTree, e.Kind)
			sawDir = true
		case "sub/file.txt":
			assert.Equal(t, object.KindFile, e.Kind)
			sawFile = true
		}
	}
	assert.True(t, sawDir, "expected a tree entry for sub")
	assert.True(t, sawFile, "expected a file entry for sub/file.txt")
}

func TestFileListRejectsAbsolutePath(t *testing.T) {
	input := strings.NewReader("/etc/passwd\n")
	_, err := (enumerate.FileList{Reader: input}).Generate()
	assert.Error(t, err)
}

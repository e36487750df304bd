package refstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/mtl-go/internal/errs"
	"github.com/imishinist/mtl-go/pkg/mtl/hash"
	"github.com/imishinist/mtl-go/pkg/mtl/refstore"
)

func openStore(t *testing.T) *refstore.Store {
	t.Helper()
	s, err := refstore.Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestHeadRoundTrip(t *testing.T) {
	s := openStore(t)
	id := hash.FromContents([]byte("root"))
	require.NoError(t, s.WriteHead(id))

	got, err := s.ReadHead()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestRefSaveDerefDelete(t *testing.T) {
	s := openStore(t)
	id := hash.FromContents([]byte("feature"))

	require.NoError(t, s.Save("feature", id))
	got, err := s.Deref("feature")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	require.NoError(t, s.Delete("feature"))
	_, err = s.Deref("feature")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListRefsAlphabetical(t *testing.T) {
	s := openStore(t)
	id := hash.FromContents([]byte("x"))
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.Save(name, id))
	}
	names, err := s.ListRefs()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestParseExprIDOnly(t *testing.T) {
	id := hash.FromContents([]byte("abc"))
	expr, err := refstore.ParseExpr(id.String())
	require.NoError(t, err)
	assert.True(t, expr.Base.IsID)
	assert.Equal(t, id, expr.Base.ID)
	assert.False(t, expr.HasPath)
}

func TestParseExprTrailingColonEquivalentToNoColon(t *testing.T) {
	id := hash.FromContents([]byte("abc"))
	withColon, err := refstore.ParseExpr(id.String() + ":")
	require.NoError(t, err)
	withoutColon, err := refstore.ParseExpr(id.String())
	require.NoError(t, err)

	assert.Equal(t, withoutColon.HasPath, withColon.HasPath)
	assert.False(t, withColon.HasPath)
}

func TestParseExprReference(t *testing.T) {
	expr, err := refstore.ParseExpr("HEAD")
	require.NoError(t, err)
	assert.False(t, expr.Base.IsID)
	assert.Equal(t, "HEAD", expr.Base.Reference)
}

func TestParseExprWithSubpath(t *testing.T) {
	expr, err := refstore.ParseExpr("HEAD:a/b/c")
	require.NoError(t, err)
	assert.True(t, expr.HasPath)
	assert.Equal(t, "a/b/c", expr.Subpath)
}

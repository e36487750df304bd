package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/mtl-go/pkg/mtl/filter"
	"github.com/imishinist/mtl-go/pkg/mtl/objpath"
)

func TestMatchAllRejectsInternalDirs(t *testing.T) {
	f := filter.MatchAll{}
	cases := map[string]bool{
		".mtl/objects/ab/cd": false,
		".git/HEAD":          false,
		"src/main.go":        true,
		"":                   true,
	}
	for raw, want := range cases {
		assert.Equal(t, want, f.Matches(objpath.New(raw)), "Matches(%q)", raw)
	}
}

func TestPathFilter(t *testing.T) {
	table := []struct {
		name   string
		target string
		arg    string
		want   bool
	}{
		{"basic nested", "foo/bar", "foo/bar/baz", true},
		{"sibling rejected", "foo/bar", "foo/baz", false},
		{"root target matches anything", "", "foo/bar/baz", true},
		{"ancestor of target matches", "foo/bar", "foo", true},
		{"deep ancestor", "foo/bar/baz", "foo/bar", true},
	}
	for _, tc := range table {
		t.Run(tc.name, func(t *testing.T) {
			f := filter.NewPath(objpath.New(tc.target))
			assert.Equal(t, tc.want, f.Matches(objpath.New(tc.arg)))
		})
	}
}

func TestIgnoreBasicPattern(t *testing.T) {
	ig, err := filter.NewIgnore([]string{"*.log", "build/"})
	require.NoError(t, err)

	cases := map[string]bool{
		"debug.log":        false,
		"nested/debug.log": false,
		"build/output.bin": false,
		"src/main.go":      true,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ig.Matches(objpath.New(raw)), "Matches(%q)", raw)
	}
}

func TestIgnoreNegationOverridesEarlierExclusion(t *testing.T) {
	ig, err := filter.NewIgnore([]string{"*.log", "!keep.log"})
	require.NoError(t, err)

	assert.False(t, ig.Matches(objpath.New("debug.log")), "expected debug.log to stay excluded")
	assert.True(t, ig.Matches(objpath.New("keep.log")), "expected keep.log to be re-included by negation")
}

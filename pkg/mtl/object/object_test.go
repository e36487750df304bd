package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/mtl-go/pkg/mtl/hash"
)

func TestSizeASCII(t *testing.T) {
	o := New(KindFile, hash.New(0), "a")
	assert.Equal(t, 24, o.Size())
}

func TestSizeMultibyte(t *testing.T) {
	cases := []struct {
		basename string
		want     int
	}{
		{"a", 24},
		{"aa", 25},
		{"aあ", 27}, // "aあ": 1 + 3 bytes
		{"あ", 26},  // "あ": 3 bytes
		{"ああ", 29}, // "ああ": 6 bytes
	}
	for _, tc := range cases {
		o := New(KindFile, hash.New(0), tc.basename)
		assert.Equal(t, tc.want, o.Size(), "Size(%q)", tc.basename)
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	entries := []Object{
		New(KindTree, hash.FromContents([]byte("b")), "b"),
		New(KindFile, hash.FromContents([]byte("a")), "a"),
	}
	payload := Serialize(entries)
	parsed, err := Parse(payload)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "a", parsed[0].Basename)
	assert.Equal(t, "b", parsed[1].Basename)
}

func TestSerializeIsOrderIndependent(t *testing.T) {
	a := New(KindFile, hash.New(1), "a")
	b := New(KindFile, hash.New(2), "b")
	c := New(KindFile, hash.New(3), "c")

	p1 := Serialize([]Object{a, b, c})
	p2 := Serialize([]Object{c, a, b})
	assert.Equal(t, string(p1), string(p2))
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := Parse([]byte("tree\tdeadbeef\n"))
	assert.Error(t, err)
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse([]byte("blob\t0000000000000000\ta\n"))
	assert.Error(t, err)
}

func TestEmptyFileEntryLine(t *testing.T) {
	h := hash.FromContents(nil)
	o := New(KindFile, h, "a")
	want := "file\t" + h.String() + "\ta"
	assert.Equal(t, want, o.String())
}

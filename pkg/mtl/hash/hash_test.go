package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContentsDeterministic(t *testing.T) {
	a := FromContents([]byte("hello world"))
	b := FromContents([]byte("hello world"))
	assert.Equal(t, a, b)
}

func TestFromContentsDiffers(t *testing.T) {
	a := FromContents([]byte("hello world"))
	b := FromContents([]byte("hello there"))
	assert.NotEqual(t, a, b)
}

func TestStringRoundTrip(t *testing.T) {
	h := FromContents([]byte("hello world"))
	s := h.String()
	require.Len(t, s, 16)

	back, err := FromHex(s)
	require.NoError(t, err)
	assert.Equal(t, h, back)
}

func TestFromHexRejectsBadLength(t *testing.T) {
	_, err := FromHex("abcd")
	assert.Error(t, err)
}

func TestFromHexRejectsNonHex(t *testing.T) {
	_, err := FromHex("zzzzzzzzzzzzzzzz")
	assert.Error(t, err)
}

func TestBytesRoundTrip(t *testing.T) {
	h := New(0x0102030405060708)
	b := h.Bytes()
	require.Len(t, b, Size)
	assert.Equal(t, byte(0x08), b[0])
	assert.Equal(t, byte(0x01), b[7])
	assert.Equal(t, h, FromBytes(b))
}

func TestLessMatchesNumericOrder(t *testing.T) {
	a, b := New(1), New(2)
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestEmptyContentHash(t *testing.T) {
	// The empty byte string must hash deterministically; used by the
	// empty-file build scenario.
	h1 := FromContents(nil)
	h2 := FromContents([]byte{})
	assert.Equal(t, h1, h2)
}

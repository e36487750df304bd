// Package hash implements the 64-bit content fingerprint used throughout the
// repository: a fast, non-cryptographic hash (xxHash64, seed 0) shared by
// both object identity and cache keying.
package hash

import (
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/imishinist/mtl-go/internal/errs"
)

// Size is the fixed on-wire width of a Hash, in bytes.
const Size = 8

// Hash is a 64-bit content fingerprint.
type Hash uint64

// New wraps a raw 64-bit value.
func New(v uint64) Hash {
	return Hash(v)
}

// FromContents hashes a byte slice with the shared seed-0 function.
func FromContents(contents []byte) Hash {
	return Hash(xxhash.Sum64(contents))
}

// FromHex parses a 16-character lowercase hex string.
func FromHex(s string) (Hash, error) {
	if len(s) != Size*2 {
		return 0, fmt.Errorf("hash: wrong length %d: %w", len(s), errs.ErrParse)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("hash: %v: %w", err, errs.ErrParse)
	}
	var v uint64
	for _, bb := range b {
		v = v<<8 | uint64(bb)
	}
	return Hash(v), nil
}

// AsU64 returns the raw numeric value.
func (h Hash) AsU64() uint64 {
	return uint64(h)
}

// String renders the hash as 16 lowercase hex characters, big-endian so the
// textual form reads as a normal hex number.
func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

// Bytes renders the hash as its little-endian 8-byte wire form. This is the
// form used for packed-table keys and metadata-cache serialization. Its
// byte-lexical order is not the numeric order of the value.
func (h Hash) Bytes() []byte {
	b := make([]byte, Size)
	v := uint64(h)
	for i := 0; i < Size; i++ {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// FromBytes parses the little-endian 8-byte wire form produced by Bytes.
func FromBytes(b []byte) Hash {
	var v uint64
	for i := Size - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return Hash(v)
}

// Less reports whether h orders before other as an unsigned 64-bit integer.
// The packed table iterates its keys in byte-lexical order of Bytes, which
// is not this order.
func (h Hash) Less(other Hash) bool {
	return uint64(h) < uint64(other)
}

// Package hash provides the SHA-256 digest primitive used throughout the
// attestation pipeline: Merkle leaves and nodes, content addresses, and key
// identifiers are all values of the Hash type defined here.
package hash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Size is the digest length in bytes.
const Size = sha256.Size

// HexSize is the digest length in lowercase hex characters.
const HexSize = Size * 2

// Hash is a fixed-size SHA-256 digest. It is a value type; once computed it
// is never mutated.
type Hash [Size]byte

// HashBytes computes the SHA-256 hash of the given data.
func HashBytes(data []byte) Hash {
	return Hash(sha256.Sum256(data))
}

// HashString computes the SHA-256 hash of the given string.
func HashString(s string) Hash {
	return HashBytes([]byte(s))
}

// FromHex parses a 64-character hex string into a Hash. Returns an error if
// the string has the wrong length or contains non-hex characters.
func FromHex(s string) (Hash, error) {
	if len(s) != HexSize {
		return Hash{}, fmt.Errorf(
			"invalid hex length: expected %d, got %d",
			HexSize, len(s),
		)
	}

	decoded, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("decode hex: %w", err)
	}

	var h Hash
	copy(h[:], decoded)
	return h, nil
}

// Equal returns true if this hash equals the other hash. The comparison is
// constant time.
func (h Hash) Equal(other Hash) bool {
	return subtle.ConstantTimeCompare(h[:], other[:]) == 1
}

// IsZero returns true if this hash is the zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Bytes returns a byte slice copy of the hash.
func (h Hash) Bytes() []byte {
	b := make([]byte, len(h))
	copy(b, h[:])
	return b
}

// Hex returns the lowercase hexadecimal representation of the hash, without
// any prefix.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String returns the hexadecimal representation (alias for Hex).
func (h Hash) String() string {
	return h.Hex()
}

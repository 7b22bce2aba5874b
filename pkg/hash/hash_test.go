package hash

import (
	"crypto/sha256"
	"testing"
)

func TestHashBytes(t *testing.T) {
	data := []byte("test data")
	h := HashBytes(data)

	expected := sha256.Sum256(data)
	if h != Hash(expected) {
		t.Error("HashBytes produced unexpected result")
	}
}

func TestHashBytesEmpty(t *testing.T) {
	h1 := HashBytes([]byte{})
	h2 := HashBytes(nil)

	if h1 != h2 {
		t.Error("empty and nil should produce same hash")
	}
}

func TestHashStringKnownValue(t *testing.T) {
	h := HashString("hello")

	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if h.Hex() != want {
		t.Errorf("HashString(\"hello\") = %s, want %s", h.Hex(), want)
	}
}

func TestHexRoundTrip(t *testing.T) {
	original := HashBytes([]byte("round trip"))

	parsed, err := FromHex(original.Hex())
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}

	if parsed != original {
		t.Error("parsed hash does not match original")
	}
}

func TestHexLength(t *testing.T) {
	h := HashBytes([]byte("length"))
	if len(h.Hex()) != HexSize {
		t.Errorf("hex length = %d, want %d", len(h.Hex()), HexSize)
	}
}

func TestFromHexInvalidLength(t *testing.T) {
	_, err := FromHex("abc123")
	if err == nil {
		t.Error("expected error for invalid length")
	}
}

func TestFromHexInvalidChars(t *testing.T) {
	_, err := FromHex(
		"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz" +
			"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
	)
	if err == nil {
		t.Error("expected error for invalid hex chars")
	}
}

func TestEqual(t *testing.T) {
	h1 := HashBytes([]byte("same"))
	h2 := HashBytes([]byte("same"))
	h3 := HashBytes([]byte("different"))

	if !h1.Equal(h2) {
		t.Error("equal hashes should be equal")
	}

	if h1.Equal(h3) {
		t.Error("different hashes should not be equal")
	}
}

func TestIsZero(t *testing.T) {
	zero := Hash{}
	nonZero := HashBytes([]byte("test"))

	if !zero.IsZero() {
		t.Error("zero hash should be zero")
	}

	if nonZero.IsZero() {
		t.Error("non-zero hash should not be zero")
	}
}

func TestBytesIsCopy(t *testing.T) {
	h := HashBytes([]byte("copy"))
	b := h.Bytes()
	b[0] ^= 0xff

	if h != HashBytes([]byte("copy")) {
		t.Error("mutating Bytes() result must not affect the hash")
	}
}

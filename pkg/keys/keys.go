// Package keys implements ECDSA P-256 signing keys for the attestation
// pipeline. A key pair carries a derived key identifier, the truncated hex
// SHA-256 of the uncompressed public key point, so independent processes
// compute the same identifier from the same key material without any
// registry.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/provenly/attest/pkg/hash"
)

// ErrInvalidKey indicates malformed private or public key material.
var ErrInvalidKey = errors.New("invalid key material")

// ErrMalformedSignature indicates a signature whose encoding cannot be
// parsed. A well-encoded signature that fails cryptographic verification is
// not an error; Verify returns false for it.
var ErrMalformedSignature = errors.New("malformed signature encoding")

// KeyIDLength is the number of hex characters kept from the public key
// digest.
const KeyIDLength = 16

// SignatureSize is the length of a raw r||s signature in bytes.
const SignatureSize = 64

const scalarSize = 32

// Signer holds a private P-256 signing key. The private scalar never leaves
// the Signer except through Bytes/PEM export. Concurrent Sign calls are
// safe: the key is immutable after construction.
type Signer struct {
	priv  *ecdsa.PrivateKey
	keyID string
}

// Generate produces a fresh key pair from crypto/rand. Never deterministic.
func Generate() (*Signer, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Signer{
		priv:  priv,
		keyID: computeKeyID(&priv.PublicKey),
	}, nil
}

// FromBytes builds a Signer from a raw 32-byte private scalar.
func FromBytes(b []byte) (*Signer, error) {
	if len(b) != scalarSize {
		return nil, fmt.Errorf(
			"%w: private key must be %d bytes, got %d",
			ErrInvalidKey, scalarSize, len(b),
		)
	}

	curve := elliptic.P256()
	d := new(big.Int).SetBytes(b)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("%w: private scalar out of range", ErrInvalidKey)
	}

	priv := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve},
		D:         d,
	}
	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(d.Bytes())

	return &Signer{
		priv:  priv,
		keyID: computeKeyID(&priv.PublicKey),
	}, nil
}

// FromPEM builds a Signer from a PEM-style wrapper: a base64 body framed by
// begin/end marker lines, no extra headers.
func FromPEM(pem string) (*Signer, error) {
	der, err := pemBody(pem)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return FromBytes(der)
}

// KeyID returns the derived key identifier.
func (s *Signer) KeyID() string {
	return s.keyID
}

// Sign signs data with ECDSA over SHA-256 and returns the raw 64-byte r||s
// signature. The scheme is randomized: two signatures over the same input
// are not expected to be byte-equal.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	r, sv, err := ecdsa.Sign(rand.Reader, s.priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	sig := make([]byte, SignatureSize)
	r.FillBytes(sig[:scalarSize])
	sv.FillBytes(sig[scalarSize:])
	return sig, nil
}

// Verifier returns the verification half of this key pair, with the same
// key identifier.
func (s *Signer) Verifier() *Verifier {
	return &Verifier{
		pub:   &s.priv.PublicKey,
		keyID: s.keyID,
	}
}

// Bytes exports the raw 32-byte private scalar.
func (s *Signer) Bytes() []byte {
	out := make([]byte, scalarSize)
	s.priv.D.FillBytes(out)
	return out
}

// PEM exports the private key in the PEM-style wrapper accepted by FromPEM.
func (s *Signer) PEM() string {
	return encodePEM("EC PRIVATE KEY", s.Bytes())
}

// PublicKeyBytes exports the uncompressed SEC1 public key point.
func (s *Signer) PublicKeyBytes() []byte {
	return elliptic.Marshal(elliptic.P256(), s.priv.PublicKey.X, s.priv.PublicKey.Y)
}

// Verifier holds only a public key and its derived key identifier.
type Verifier struct {
	pub   *ecdsa.PublicKey
	keyID string
}

// VerifierFromBytes builds a Verifier from a SEC1 public key point,
// uncompressed (65 bytes) or compressed (33 bytes).
func VerifierFromBytes(b []byte) (*Verifier, error) {
	curve := elliptic.P256()

	var x, y *big.Int
	switch len(b) {
	case 65:
		x, y = elliptic.Unmarshal(curve, b)
	case 33:
		x, y = elliptic.UnmarshalCompressed(curve, b)
	default:
		return nil, fmt.Errorf(
			"%w: public key must be 33 or 65 bytes, got %d",
			ErrInvalidKey, len(b),
		)
	}
	if x == nil {
		return nil, fmt.Errorf("%w: point not on curve", ErrInvalidKey)
	}

	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	return &Verifier{
		pub:   pub,
		keyID: computeKeyID(pub),
	}, nil
}

// VerifierFromPEM builds a Verifier from the PEM-style wrapper.
func VerifierFromPEM(pem string) (*Verifier, error) {
	der, err := pemBody(pem)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return VerifierFromBytes(der)
}

// KeyID returns the derived key identifier.
func (v *Verifier) KeyID() string {
	return v.keyID
}

// Verify checks a raw r||s signature over data. A cryptographically invalid
// signature yields (false, nil); only a malformed signature encoding yields
// an error.
func (v *Verifier) Verify(data, sig []byte) (bool, error) {
	if len(sig) != SignatureSize {
		return false, fmt.Errorf(
			"%w: signature must be %d bytes, got %d",
			ErrMalformedSignature, SignatureSize, len(sig),
		)
	}

	r := new(big.Int).SetBytes(sig[:scalarSize])
	s := new(big.Int).SetBytes(sig[scalarSize:])

	digest := sha256.Sum256(data)
	return ecdsa.Verify(v.pub, digest[:], r, s), nil
}

// Bytes exports the uncompressed SEC1 public key point.
func (v *Verifier) Bytes() []byte {
	return elliptic.Marshal(elliptic.P256(), v.pub.X, v.pub.Y)
}

// PEM exports the public key in the PEM-style wrapper.
func (v *Verifier) PEM() string {
	return encodePEM("PUBLIC KEY", v.Bytes())
}

// computeKeyID hashes the uncompressed public key point and keeps a fixed
// hex prefix. Not collision-proof against an adversary who controls key
// generation; see package doc.
func computeKeyID(pub *ecdsa.PublicKey) string {
	point := elliptic.Marshal(elliptic.P256(), pub.X, pub.Y)
	return hash.HashBytes(point).Hex()[:KeyIDLength]
}

// pemBody strips the marker lines and decodes the base64 body.
func pemBody(pem string) ([]byte, error) {
	var b64 strings.Builder
	for _, line := range strings.Split(pem, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-----") {
			continue
		}
		b64.WriteString(line)
	}

	der, err := base64.StdEncoding.DecodeString(b64.String())
	if err != nil {
		return nil, fmt.Errorf("decode PEM base64: %w", err)
	}
	return der, nil
}

// encodePEM wraps raw bytes in begin/end markers with a 64-column base64
// body.
func encodePEM(label string, der []byte) string {
	b64 := base64.StdEncoding.EncodeToString(der)

	var out strings.Builder
	fmt.Fprintf(&out, "-----BEGIN %s-----\n", label)
	for len(b64) > 64 {
		out.WriteString(b64[:64])
		out.WriteByte('\n')
		b64 = b64[64:]
	}
	out.WriteString(b64)
	out.WriteByte('\n')
	fmt.Fprintf(&out, "-----END %s-----\n", label)
	return out.String()
}

package merkle

import (
	"fmt"

	"github.com/provenly/attest/pkg/hash"
)

// Position indicates which side a sibling occupies when its level pair is
// recombined.
type Position string

const (
	Left  Position = "left"
	Right Position = "right"
)

// Proof is an inclusion proof for a single leaf: the ordered sibling hashes
// from the leaf level upward, each paired with its position. For a non-empty
// tree, len(Siblings) == Height - 1.
type Proof struct {
	LeafIndex int
	LeafHash  hash.Hash
	Siblings  []hash.Hash
	Positions []Position
}

// Root recomputes the candidate root from the leaf hash and the sibling
// path. It needs no access to the tree the proof came from.
func (p *Proof) Root() hash.Hash {
	current := p.LeafHash
	for i, sibling := range p.Siblings {
		if p.Positions[i] == Left {
			current = hashPair(sibling, current)
		} else {
			current = hashPair(current, sibling)
		}
	}
	return current
}

// Verify reports whether the proof reproduces the expected root.
func (p *Proof) Verify(expectedRoot hash.Hash) bool {
	return p.Root().Equal(expectedRoot)
}

// ProofHex is the hex-encoded JSON form of a Proof.
type ProofHex struct {
	LeafIndex int      `json:"leafIndex"`
	LeafHash  string   `json:"leafHash"`
	Siblings  []string `json:"siblings"`
	Positions []string `json:"positions"`
}

// Hex converts the proof to its hex-encoded JSON form.
func (p *Proof) Hex() *ProofHex {
	siblings := make([]string, len(p.Siblings))
	for i, s := range p.Siblings {
		siblings[i] = s.Hex()
	}
	positions := make([]string, len(p.Positions))
	for i, pos := range p.Positions {
		positions[i] = string(pos)
	}
	return &ProofHex{
		LeafIndex: p.LeafIndex,
		LeafHash:  p.LeafHash.Hex(),
		Siblings:  siblings,
		Positions: positions,
	}
}

// ProofFromHex parses the hex-encoded form back into a Proof.
func ProofFromHex(ph *ProofHex) (*Proof, error) {
	if len(ph.Siblings) != len(ph.Positions) {
		return nil, fmt.Errorf(
			"proof has %d siblings but %d positions",
			len(ph.Siblings), len(ph.Positions),
		)
	}
	if ph.LeafIndex < 0 {
		return nil, fmt.Errorf("negative leaf index %d", ph.LeafIndex)
	}

	leafHash, err := hash.FromHex(ph.LeafHash)
	if err != nil {
		return nil, fmt.Errorf("parse leaf hash: %w", err)
	}

	siblings := make([]hash.Hash, len(ph.Siblings))
	for i, s := range ph.Siblings {
		siblings[i], err = hash.FromHex(s)
		if err != nil {
			return nil, fmt.Errorf("parse sibling %d: %w", i, err)
		}
	}

	positions := make([]Position, len(ph.Positions))
	for i, pos := range ph.Positions {
		switch Position(pos) {
		case Left, Right:
			positions[i] = Position(pos)
		default:
			return nil, fmt.Errorf("invalid position %q at %d", pos, i)
		}
	}

	return &Proof{
		LeafIndex: ph.LeafIndex,
		LeafHash:  leafHash,
		Siblings:  siblings,
		Positions: positions,
	}, nil
}

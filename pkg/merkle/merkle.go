// Package merkle builds binary hash trees over ordered record sequences and
// produces inclusion proofs that can be checked against a root without
// holding the tree.
//
// Construction pairs adjacent nodes left to right. An odd trailing node is
// hashed with itself rather than promoted unpaired; proofs encode that case
// as a self-sibling on the right, so recomputation reproduces the root
// bit for bit.
package merkle

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/provenly/attest/pkg/hash"
)

// ErrLeafOutOfRange is returned when a proof is requested for a leaf index
// the tree does not contain.
var ErrLeafOutOfRange = errors.New("leaf index out of range")

// Tree is an immutable binary hash tree. Leaf insertion order is
// significant: it determines the root. A constructed Tree may be read
// concurrently without coordination.
type Tree struct {
	leaves []hash.Hash
	// levels[0] is the leaf level, the last level holds the single root.
	// Empty input yields no levels at all.
	levels [][]hash.Hash
}

// NewTree hashes each leaf's content and builds the tree bottom-up.
func NewTree(leaves [][]byte) *Tree {
	leafHashes := make([]hash.Hash, len(leaves))
	for i, data := range leaves {
		leafHashes[i] = hash.HashBytes(data)
	}
	return NewTreeFromHashes(leafHashes)
}

// NewTreeFromHashes builds the tree from precomputed leaf hashes.
func NewTreeFromHashes(leafHashes []hash.Hash) *Tree {
	if len(leafHashes) == 0 {
		return &Tree{}
	}

	leaves := make([]hash.Hash, len(leafHashes))
	copy(leaves, leafHashes)

	var levels [][]hash.Hash
	current := leaves

	for len(current) > 1 {
		next := make([]hash.Hash, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 < len(current) {
				next = append(next, hashPair(current[i], current[i+1]))
			} else {
				// Odd trailing node: pair it with itself.
				next = append(next, hashPair(current[i], current[i]))
			}
		}
		levels = append(levels, current)
		current = next
	}
	levels = append(levels, current)

	return &Tree{
		leaves: leaves,
		levels: levels,
	}
}

// Root returns the root hash. ok is false for an empty tree.
func (t *Tree) Root() (root hash.Hash, ok bool) {
	if len(t.levels) == 0 {
		return hash.Hash{}, false
	}
	return t.levels[len(t.levels)-1][0], true
}

// RootHex returns the root as a lowercase hex string. ok is false for an
// empty tree.
func (t *Tree) RootHex() (string, bool) {
	root, ok := t.Root()
	if !ok {
		return "", false
	}
	return root.Hex(), true
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() int {
	return len(t.leaves)
}

// Height returns the number of levels, leaf level and root level included.
// An empty tree has height 0, a single-leaf tree has height 1.
func (t *Tree) Height() int {
	return len(t.levels)
}

// Proof generates an inclusion proof for the leaf at the given index.
func (t *Tree) Proof(leafIndex int) (*Proof, error) {
	if leafIndex < 0 || leafIndex >= len(t.leaves) {
		return nil, fmt.Errorf(
			"%w: index %d, tree has %d leaves",
			ErrLeafOutOfRange, leafIndex, len(t.leaves),
		)
	}

	var (
		siblings  []hash.Hash
		positions []Position
	)

	index := leafIndex
	for _, level := range t.levels[:len(t.levels)-1] {
		siblingIndex := index + 1
		if index%2 == 1 {
			siblingIndex = index - 1
		}

		if siblingIndex < len(level) {
			siblings = append(siblings, level[siblingIndex])
			if index%2 == 0 {
				positions = append(positions, Right)
			} else {
				positions = append(positions, Left)
			}
		} else {
			// Duplication case: the node was paired with itself.
			siblings = append(siblings, level[index])
			positions = append(positions, Right)
		}

		index /= 2
	}

	return &Proof{
		LeafIndex: leafIndex,
		LeafHash:  t.leaves[leafIndex],
		Siblings:  siblings,
		Positions: positions,
	}, nil
}

// VerifyProof recomputes the proof's candidate root and compares it against
// this tree's root.
func (t *Tree) VerifyProof(proof *Proof) bool {
	root, ok := t.Root()
	if !ok {
		return false
	}
	return proof.Verify(root)
}

// hashPair computes H(left || right).
func hashPair(left, right hash.Hash) hash.Hash {
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])
	var out hash.Hash
	copy(out[:], h.Sum(nil))
	return out
}

package tree

import (
	"fmt"
	"math/bits"

	"github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

// Prover keeps every complete node of the tree, so it can build inclusion
// proofs against the root the tree had at any past leaf count.
// Nodes are never modified once complete, only appended.
type Prover struct {
	hasher     Hasher
	height     uint8
	zeroHashes []common.Hash
	// levels[h][i] is the root of the complete subtree of height h at position i.
	// levels[0] holds the leaves and levels[height] the root of a full tree.
	levels [][]common.Hash
}

// NewProver creates an empty prover tree. It panics if height is not in [1, MaxHeight]
func NewProver(height uint8, hasher Hasher) *Prover {
	checkHeight(height)
	return &Prover{
		hasher:     hasher,
		height:     height,
		zeroHashes: generateZeroHashes(hasher, height),
		levels:     make([][]common.Hash, height+1),
	}
}

// Ingest adds the next leaf to the tree
func (p *Prover) Ingest(leaf common.Hash) error {
	index := p.Count()
	if index >= capacity(p.height) {
		return ErrTreeFull
	}
	p.levels[0] = append(p.levels[0], leaf)
	// Every set low bit of the index is a left sibling waiting for this node
	completed := bits.TrailingZeros64(^index)
	node := leaf
	for h := 0; h < completed; h++ {
		pos := index >> h
		node = p.hasher.Hash(p.levels[h][pos-1], node)
		p.levels[h+1] = append(p.levels[h+1], node)
	}
	return nil
}

// Count returns the amount of leaves added to the tree
func (p *Prover) Count() uint64 {
	return uint64(len(p.levels[0]))
}

// Height returns the height of the tree
func (p *Prover) Height() uint8 {
	return p.height
}

// Root returns the current root of the tree
func (p *Prover) Root() common.Hash {
	return p.Snapshot().Root()
}

// Leaf returns the leaf added at index
func (p *Prover) Leaf(index uint64) (common.Hash, error) {
	if index >= p.Count() {
		return common.Hash{}, fmt.Errorf("%w: leaf %d not added yet, count is %d", ErrInvalidProofRequest, index, p.Count())
	}
	return p.levels[0][index], nil
}

// RootAt returns the root the tree had when it held count leaves
func (p *Prover) RootAt(count uint64) (common.Hash, error) {
	s, err := p.SnapshotAt(count)
	if err != nil {
		return common.Hash{}, err
	}
	return s.Root(), nil
}

// Snapshot returns an immutable view of the tree as it is now
func (p *Prover) Snapshot() Snapshot {
	return newSnapshot(p, p.Count())
}

// SnapshotAt returns an immutable view of the tree as it was when it held count leaves
func (p *Prover) SnapshotAt(count uint64) (Snapshot, error) {
	if count > p.Count() {
		return Snapshot{}, fmt.Errorf(
			"%w: can't take a snapshot at count %d, the tree has %d leaves", ErrInvalidProofRequest, count, p.Count(),
		)
	}
	return newSnapshot(p, count), nil
}

// ProveAgainstPrevious returns the proof of the leaf at leafIndex against the
// root the tree had right after adding the leaf at rootIndex (so when it held
// rootIndex+1 leaves). It requires leafIndex <= rootIndex < Count().
func (p *Prover) ProveAgainstPrevious(leafIndex, rootIndex uint64) (types.Proof, error) {
	if leafIndex > rootIndex {
		return types.Proof{}, fmt.Errorf(
			"%w: leaf index %d is greater than root index %d", ErrInvalidProofRequest, leafIndex, rootIndex,
		)
	}
	if rootIndex >= p.Count() {
		return types.Proof{}, fmt.Errorf(
			"%w: root index %d not reached yet, count is %d", ErrInvalidProofRequest, rootIndex, p.Count(),
		)
	}
	s, err := p.SnapshotAt(rootIndex + 1)
	if err != nil {
		return types.Proof{}, err
	}
	return s.Prove(leafIndex)
}

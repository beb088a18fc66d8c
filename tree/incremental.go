package tree

import (
	"math/bits"

	"github.com/ethereum/go-ethereum/common"
)

// IncrementalMerkle is the compact append only tree kept by the merkle tree hook
// contract: it stores one branch digest per level and the amount of leaves,
// which is enough to compute the current root but not to build proofs.
type IncrementalMerkle struct {
	hasher     Hasher
	height     uint8
	zeroHashes []common.Hash
	// branch[h] is the root of the last complete subtree of height h. The
	// extra slot at branch[height] is only filled once the tree is full.
	branch []common.Hash
	count  uint64
}

// NewIncrementalMerkle creates an empty tree. It panics if height is not in [1, MaxHeight]
func NewIncrementalMerkle(height uint8, hasher Hasher) *IncrementalMerkle {
	checkHeight(height)
	return &IncrementalMerkle{
		hasher:     hasher,
		height:     height,
		zeroHashes: generateZeroHashes(hasher, height),
		branch:     make([]common.Hash, height+1),
	}
}

// Ingest adds the next leaf to the tree
func (t *IncrementalMerkle) Ingest(leaf common.Hash) error {
	if t.count >= capacity(t.height) {
		return ErrTreeFull
	}
	// The new leaf closes every complete subtree whose bit is set in count,
	// and becomes part of the branch at the first unset bit.
	level := bits.TrailingZeros64(^t.count)
	node := leaf
	for h := 0; h < level; h++ {
		node = t.hasher.Hash(t.branch[h], node)
	}
	t.branch[level] = node
	t.count++
	return nil
}

// Root returns the root of the tree padded with empty leaves up to 2^height leaves
func (t *IncrementalMerkle) Root() common.Hash {
	if t.count == capacity(t.height) {
		return t.branch[t.height]
	}
	node := t.zeroHashes[0]
	for h := uint8(0); h < t.height; h++ {
		if t.count&(1<<h) > 0 {
			node = t.hasher.Hash(t.branch[h], node)
		} else {
			node = t.hasher.Hash(node, t.zeroHashes[h])
		}
	}
	return node
}

// Count returns the amount of leaves added to the tree
func (t *IncrementalMerkle) Count() uint64 {
	return t.count
}

// Height returns the height of the tree
func (t *IncrementalMerkle) Height() uint8 {
	return t.height
}

// Branch returns a copy of the branch digests, from the leaves level up
func (t *IncrementalMerkle) Branch() []common.Hash {
	branch := make([]common.Hash, t.height)
	copy(branch, t.branch[:t.height])
	return branch
}

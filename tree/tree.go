package tree

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

const (
	// DefaultHeight is the height of the trees created by the relayer
	DefaultHeight = types.DefaultHeight
	// MaxHeight is the biggest supported height. Leaf indexes are uint32, so
	// a tree can't hold more than 2^32 leaves
	MaxHeight uint8 = 32
)

var (
	// ErrTreeFull is returned when trying to add a leaf to a tree that already holds 2^height leaves
	ErrTreeFull = errors.New("merkle tree is full")
	// ErrInvalidProofRequest is returned when the leaf or the root index are out of bounds
	ErrInvalidProofRequest = errors.New("invalid proof request")
)

// Hasher computes the digest of a node given the digests of its children
type Hasher interface {
	Hash(left, right common.Hash) common.Hash
}

// Keccak256Hasher hashes nodes as keccak256(left || right), the way the
// solidity merkle tree hook does
type Keccak256Hasher struct{}

// Hash implements Hasher
func (Keccak256Hasher) Hash(left, right common.Hash) common.Hash {
	var hash common.Hash
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(left[:])
	hasher.Write(right[:])
	copy(hash[:], hasher.Sum(nil))
	return hash
}

func generateZeroHashes(hasher Hasher, height uint8) []common.Hash {
	var zeroHashes = []common.Hash{
		{},
	}
	// This generates a leaf = HashZero in position 0. In the rest of the positions that are equivalent to the ascending levels,
	// we set the hashes of the nodes. So all nodes from level i=5 will have the same value and same children nodes.
	for i := 1; i <= int(height); i++ {
		zeroHashes = append(zeroHashes, hasher.Hash(zeroHashes[i-1], zeroHashes[i-1]))
	}
	return zeroHashes
}

// ZeroHashes returns the root of an empty subtree for every height in [0, height]
func ZeroHashes(hasher Hasher, height uint8) []common.Hash {
	return generateZeroHashes(hasher, height)
}

func checkHeight(height uint8) {
	if height == 0 || height > MaxHeight {
		panic(fmt.Sprintf("invalid tree height %d, must be in [1, %d]", height, MaxHeight))
	}
}

// capacity is the amount of leaves a tree of the given height can hold
func capacity(height uint8) uint64 {
	return uint64(1) << height
}

// ComputeRoot folds the leaf with its path bottom-up. The bits of index
// decide on each level if the running node is the left or the right child.
func ComputeRoot(hasher Hasher, leaf common.Hash, index uint32, path []common.Hash) common.Hash {
	node := leaf
	for h, sibling := range path {
		if index&(1<<h) > 0 {
			node = hasher.Hash(sibling, node)
		} else {
			node = hasher.Hash(node, sibling)
		}
	}
	return node
}

// VerifyProof checks that the proof path commits its leaf to its root
func VerifyProof(hasher Hasher, proof types.Proof) bool {
	return ComputeRoot(hasher, proof.Leaf, proof.Index, proof.Path) == proof.Root
}

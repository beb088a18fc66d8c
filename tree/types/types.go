package types

import "github.com/ethereum/go-ethereum/common"

const (
	// DefaultHeight is the depth of the on-chain merkle tree hook
	DefaultHeight uint8 = 32
)

// Leaf is a message id inserted into the tree at Index
type Leaf struct {
	Index uint32      `meddler:"leaf_index"`
	Hash  common.Hash `meddler:"hash,hash"`
}

// Root is the root of the tree right after inserting the leaf at Index,
// so it commits to Index+1 leaves
type Root struct {
	Index uint32      `meddler:"leaf_index"`
	Hash  common.Hash `meddler:"hash,hash"`
}

// Proof is the authentication path of a leaf against a (possibly historical) root.
// Path[0] is the sibling at the leaf level and Path[len(Path)-1] the child of the root.
type Proof struct {
	Leaf  common.Hash   `json:"leaf"`
	Index uint32        `json:"index"`
	Path  []common.Hash `json:"path"`
	Root  common.Hash   `json:"root"`
}

// Checkpoint is a (root, count) pair signed by the validators of the origin chain
type Checkpoint struct {
	Root  common.Hash `json:"root"`
	Count uint32      `json:"count"`
}

// RootIndex returns the index of the last leaf committed by the checkpoint.
// Callers must check Count > 0 first.
func (c Checkpoint) RootIndex() uint32 {
	return c.Count - 1
}

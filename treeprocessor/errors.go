package treeprocessor

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidCheckpoint is returned for checkpoints that don't commit to any leaf
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")
	// ErrCheckpointRootMismatch is returned when the root of a checkpoint is not the root
	// the local tree had with the same amount of leaves
	ErrCheckpointRootMismatch = errors.New("checkpoint root doesn't match the local root")
	// ErrLeafIndexMismatch is returned when the leaf source hands a leaf that is not the next one
	ErrLeafIndexMismatch = errors.New("leaf index doesn't match the tree count")
)

// StoredRootMismatchError is returned when the root recomputed for an index
// differs from the one persisted the first time the leaf was ingested
type StoredRootMismatchError struct {
	Index    uint32
	Stored   common.Hash
	Computed common.Hash
}

func (e *StoredRootMismatchError) Error() string {
	return fmt.Sprintf("root for index %d doesn't match the stored one: stored %s, computed %s",
		e.Index, e.Stored.Hex(), e.Computed.Hex())
}

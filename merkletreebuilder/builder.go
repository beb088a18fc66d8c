package merkletreebuilder

import (
	"fmt"

	"github.com/0xPolygon/msgrelayer/log"
	"github.com/0xPolygon/msgrelayer/tree"
	"github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

const ingestCtx = "when ingesting message id"

type accumulator interface {
	Ingest(leaf common.Hash) error
	Root() common.Hash
	Count() uint64
}

type prover interface {
	accumulator
	ProveAgainstPrevious(leafIndex, rootIndex uint64) (types.Proof, error)
	Snapshot() tree.Snapshot
}

// MerkleTreeBuilder keeps the prover tree and the incremental tree in sync.
// The incremental tree mirrors the on chain one, the prover answers proofs
// against any past root. Ingest must be called by a single writer, in leaf
// index order; GetProof and String must not run concurrently with Ingest.
type MerkleTreeBuilder struct {
	prover      prover
	incremental accumulator
	// desync is set once the trees disagree, the builder can't be used to ingest after that
	desync *MismatchedRootsError
	log    *log.Logger
}

// New creates an empty builder for trees of tree.DefaultHeight hashed with keccak256
func New() *MerkleTreeBuilder {
	return NewWithHeight(tree.DefaultHeight)
}

// NewWithHeight creates an empty builder for trees of the given height hashed with keccak256
func NewWithHeight(height uint8) *MerkleTreeBuilder {
	hasher := tree.Keccak256Hasher{}
	return newMerkleTreeBuilder(
		tree.NewProver(height, hasher),
		tree.NewIncrementalMerkle(height, hasher),
	)
}

func newMerkleTreeBuilder(p prover, incremental accumulator) *MerkleTreeBuilder {
	return &MerkleTreeBuilder{
		prover:      p,
		incremental: incremental,
		log:         log.WithFields("module", "merkletreebuilder"),
	}
}

// IngestMessageID adds the next leaf to both trees and checks they agree on the root
func (b *MerkleTreeBuilder) IngestMessageID(messageID common.Hash) error {
	if b.desync != nil {
		return fmt.Errorf("%s %s: %w", ingestCtx, messageID.Hex(), b.desync)
	}
	b.log.Debugf("ingesting leaf %s at index %d", messageID.Hex(), b.prover.Count())

	// the incremental tree is only touched once the prover accepted the leaf
	if err := b.prover.Ingest(messageID); err != nil {
		return fmt.Errorf("%s %s: %w", ingestCtx, messageID.Hex(), &ProverError{Err: err})
	}
	if err := b.incremental.Ingest(messageID); err != nil {
		// the prover is already one leaf ahead
		b.desync = &MismatchedRootsError{
			ProverRoot:       b.prover.Root().Hex(),
			IncrementalRoot:  b.incremental.Root().Hex(),
			Count:            b.prover.Count(),
			IncrementalCount: b.incremental.Count(),
		}
		b.log.Errorf("incremental tree rejected leaf %s: %s. %s", messageID.Hex(), err, b)
		return fmt.Errorf("%s %s: %w", ingestCtx, messageID.Hex(), b.desync)
	}

	proverRoot := b.prover.Root()
	incrementalRoot := b.incremental.Root()
	if proverRoot != incrementalRoot || b.prover.Count() != b.incremental.Count() {
		b.desync = &MismatchedRootsError{
			ProverRoot:       proverRoot.Hex(),
			IncrementalRoot:  incrementalRoot.Hex(),
			Count:            b.prover.Count(),
			IncrementalCount: b.incremental.Count(),
		}
		b.log.Errorf("merkle trees are out of sync: %s", b)
		return fmt.Errorf("%s %s: %w", ingestCtx, messageID.Hex(), b.desync)
	}
	return nil
}

// GetProof returns the proof of the leaf at leafIndex against the root the
// tree had when it held rootIndex+1 leaves
func (b *MerkleTreeBuilder) GetProof(leafIndex, rootIndex uint32) (types.Proof, error) {
	b.log.Debugw("getting proof",
		"leafIndex", leafIndex,
		"rootIndex", rootIndex,
		"proverLatestIndex", int64(b.prover.Count())-1,
	)
	proof, err := b.prover.ProveAgainstPrevious(uint64(leafIndex), uint64(rootIndex))
	if err != nil {
		return types.Proof{}, &ProverError{Err: err}
	}
	return proof, nil
}

// Count returns the amount of leaves ingested. A full tree of height 32 holds 2^32 leaves.
func (b *MerkleTreeBuilder) Count() uint64 {
	return b.prover.Count()
}

// Root returns the current root of the prover tree
func (b *MerkleTreeBuilder) Root() common.Hash {
	return b.prover.Root()
}

// Snapshot returns an immutable view of the prover tree that can be used to
// build proofs without blocking further ingestion
func (b *MerkleTreeBuilder) Snapshot() tree.Snapshot {
	return b.prover.Snapshot()
}

// Desynced returns the mismatch error if the trees ever disagreed, nil otherwise
func (b *MerkleTreeBuilder) Desynced() error {
	if b.desync == nil {
		return nil
	}
	return b.desync
}

func (b *MerkleTreeBuilder) String() string {
	return fmt.Sprintf(
		"MerkleTreeBuilder { incremental: { root: %s, size: %d }, prover: { root: %s, size: %d } }",
		b.incremental.Root().Hex(), b.incremental.Count(),
		b.prover.Root().Hex(), b.prover.Count(),
	)
}

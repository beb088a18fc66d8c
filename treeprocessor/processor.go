package treeprocessor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/0xPolygon/msgrelayer/db"
	"github.com/0xPolygon/msgrelayer/log"
	"github.com/0xPolygon/msgrelayer/merkletreebuilder"
	"github.com/0xPolygon/msgrelayer/tree"
	"github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/0xPolygon/msgrelayer/treeprocessor/migrations"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName  = "github.com/0xPolygon/msgrelayer/treeprocessor"
	leafSource = "leafsource"
)

// LeafSource hands the leaves of the origin tree in index order
type LeafSource interface {
	GetLeaves(ctx context.Context, from, limit uint32) ([]types.Leaf, error)
}

// Processor is the only writer of the merkle tree builder: it pulls leaves from
// the LeafSource, ingests them and stores the root of every index. Proofs can be
// requested concurrently.
type Processor struct {
	mu      sync.RWMutex
	builder *merkletreebuilder.MerkleTreeBuilder

	source                 LeafSource
	db                     *sql.DB
	batchSize              uint32
	waitForNewLeavesPeriod time.Duration

	ingestedCounter metric.Int64Counter
	log             *log.Logger
}

// New creates a processor with an empty tree. Leaves ingested in previous runs
// are ingested again by Start, and their roots checked against the stored ones.
func New(cfg Config, source LeafSource) (*Processor, error) {
	if cfg.BatchSize == 0 {
		return nil, errors.New("BatchSize must be greater than zero")
	}
	height := cfg.Height
	if height == 0 {
		height = tree.DefaultHeight
	}
	if height > tree.MaxHeight {
		return nil, fmt.Errorf("height %d is greater than the max height %d", height, tree.MaxHeight)
	}
	database, err := db.NewSQLiteDBWithMigrations(cfg.DBPath, migrations.Migrations)
	if err != nil {
		return nil, err
	}
	logger := log.WithFields("module", "treeprocessor")
	counter, err := otel.Meter(meterName).Int64Counter("merkle_tree_leaves_ingested")
	if err != nil {
		logger.Warnf("failed to create merkle_tree_leaves_ingested counter: %s", err)
	}
	return &Processor{
		builder:                merkletreebuilder.NewWithHeight(height),
		source:                 source,
		db:                     database,
		batchSize:              cfg.BatchSize,
		waitForNewLeavesPeriod: cfg.WaitForNewLeavesPeriod.Duration,
		ingestedCounter:        counter,
		log:                    logger,
	}, nil
}

// Start ingests new leaves every WaitForNewLeavesPeriod until ctx is done. Errors of the
// leaf source are retried on the next tick, any other error is returned.
func (p *Processor) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.waitForNewLeavesPeriod)
	defer ticker.Stop()
	for {
		if err := p.Sync(ctx); err != nil {
			var upstreamErr *merkletreebuilder.UpstreamError
			if !errors.As(err, &upstreamErr) {
				p.log.Errorf("stopping tree processor: %v", err)
				return err
			}
			p.log.Warnf("error syncing leaves, retrying in %s: %v", p.waitForNewLeavesPeriod, err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Sync ingests batches of leaves until the source has no more of them
func (p *Processor) Sync(ctx context.Context) error {
	for {
		count := p.Count()
		if count > math.MaxUint32 {
			// a full tree of height 32 has no next leaf index
			return nil
		}
		leaves, err := p.source.GetLeaves(ctx, uint32(count), p.batchSize)
		if err != nil {
			return merkletreebuilder.NewUpstreamError(leafSource, err)
		}
		if len(leaves) == 0 {
			return nil
		}
		if err := p.ingest(ctx, leaves); err != nil {
			return err
		}
		if uint32(len(leaves)) < p.batchSize {
			return nil
		}
	}
}

func (p *Processor) ingest(ctx context.Context, leaves []types.Leaf) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	first := p.builder.Count()
	for i, leaf := range leaves {
		if uint64(leaf.Index) != first+uint64(i) {
			return merkletreebuilder.NewUpstreamError(leafSource, fmt.Errorf(
				"%w: got %d, expected %d", ErrLeafIndexMismatch, leaf.Index, first+uint64(i),
			))
		}
	}

	roots := make([]types.Root, 0, len(leaves))
	var ingestErr error
	for _, leaf := range leaves {
		if ingestErr = p.builder.IngestMessageID(leaf.Hash); ingestErr != nil {
			break
		}
		roots = append(roots, types.Root{Index: leaf.Index, Hash: p.builder.Root()})
	}
	if len(roots) > 0 {
		if err := p.storeRoots(ctx, roots); err != nil {
			return err
		}
		p.log.Debugf("ingested leaves %d to %d, root: %s", first, first+uint64(len(roots))-1, p.builder.Root().Hex())
	}
	return ingestErr
}

// storeRoots persists the roots of new indexes and checks the ones that were already stored.
// The builder is already ahead of the DB when this fails, so errors are not retryable.
func (p *Processor) storeRoots(ctx context.Context, roots []types.Root) error {
	return db.RunInTx(ctx, p.db, p.log, func(tx *db.Tx) error {
		for _, root := range roots {
			stored := &types.Root{}
			err := meddler.QueryRow(tx, stored, `SELECT * FROM root WHERE leaf_index = $1;`, root.Index)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				if err := meddler.Insert(tx, "root", &root); err != nil {
					return fmt.Errorf("error storing root of index %d: %w", root.Index, err)
				}
			case err != nil:
				return fmt.Errorf("error reading root of index %d: %w", root.Index, err)
			case stored.Hash != root.Hash:
				return &StoredRootMismatchError{Index: root.Index, Stored: stored.Hash, Computed: root.Hash}
			}
		}
		if p.ingestedCounter != nil {
			tx.AddCommitCallback(func() {
				p.ingestedCounter.Add(ctx, int64(len(roots)))
			})
		}
		return nil
	})
}

// GetProof returns the proof of leafIndex against the root the tree had when it held rootIndex+1 leaves
func (p *Processor) GetProof(leafIndex, rootIndex uint32) (types.Proof, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.builder.GetProof(leafIndex, rootIndex)
}

// GetProofForCheckpoint returns the proof of leafIndex against a signed checkpoint. It fails
// if the local tree had a different root when it held checkpoint.Count leaves.
func (p *Processor) GetProofForCheckpoint(leafIndex uint32, checkpoint types.Checkpoint) (types.Proof, error) {
	if checkpoint.Count == 0 {
		return types.Proof{}, fmt.Errorf("%w: count is 0", ErrInvalidCheckpoint)
	}
	proof, err := p.GetProof(leafIndex, checkpoint.RootIndex())
	if err != nil {
		return types.Proof{}, err
	}
	if proof.Root != checkpoint.Root {
		return types.Proof{}, fmt.Errorf("%w: checkpoint root %s with count %d, local root %s",
			ErrCheckpointRootMismatch, checkpoint.Root.Hex(), checkpoint.Count, proof.Root.Hex())
	}
	return proof, nil
}

// GetRootByIndex returns the stored root of the tree right after ingesting the leaf at index
func (p *Processor) GetRootByIndex(ctx context.Context, index uint32) (*types.Root, error) {
	root := &types.Root{}
	if err := meddler.QueryRow(p.db, root, `SELECT * FROM root WHERE leaf_index = $1;`, index); err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return root, nil
}

// GetRootByHash returns the first stored root with the given hash
func (p *Processor) GetRootByHash(ctx context.Context, hash common.Hash) (*types.Root, error) {
	root := &types.Root{}
	if err := meddler.QueryRow(p.db, root, `
		SELECT * FROM root WHERE hash = $1 ORDER BY leaf_index ASC LIMIT 1;
	`, hash.Hex()); err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return root, nil
}

// Count returns the amount of leaves ingested
func (p *Processor) Count() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.builder.Count()
}

// Root returns the current root of the tree
func (p *Processor) Root() common.Hash {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.builder.Root()
}

// Snapshot returns an immutable view of the tree at its current size
func (p *Processor) Snapshot() tree.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.builder.Snapshot()
}

func (p *Processor) String() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.builder.String()
}

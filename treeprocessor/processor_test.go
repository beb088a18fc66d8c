package treeprocessor

import (
	"context"
	"errors"
	"fmt"
	"path"
	gosync "sync"
	"testing"
	"time"

	"github.com/0xPolygon/msgrelayer/config/types"
	"github.com/0xPolygon/msgrelayer/db"
	"github.com/0xPolygon/msgrelayer/merkletreebuilder"
	"github.com/0xPolygon/msgrelayer/tree"
	treetypes "github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

type leafSourceStub struct {
	mu     gosync.Mutex
	leaves []treetypes.Leaf
	err    error
	calls  int
}

func (s *leafSourceStub) GetLeaves(ctx context.Context, from, limit uint32) ([]treetypes.Leaf, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if int(from) >= len(s.leaves) {
		return []treetypes.Leaf{}, nil
	}
	to := int(from) + int(limit)
	if to > len(s.leaves) {
		to = len(s.leaves)
	}
	return append([]treetypes.Leaf{}, s.leaves[from:to]...), nil
}

func (s *leafSourceStub) add(n int, salt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		index := uint32(len(s.leaves))
		s.leaves = append(s.leaves, treetypes.Leaf{
			Index: index,
			Hash:  crypto.Keccak256Hash([]byte(fmt.Sprintf("%s%d", salt, index))),
		})
	}
}

func newTestProcessor(t *testing.T, dbPath string, height uint8, source LeafSource) *Processor {
	t.Helper()

	p, err := New(Config{
		DBPath:                 dbPath,
		Height:                 height,
		WaitForNewLeavesPeriod: types.NewDuration(time.Millisecond * 10),
		BatchSize:              4,
	}, source)
	require.NoError(t, err)
	return p
}

func TestSyncStoresRoots(t *testing.T) {
	ctx := context.Background()
	source := &leafSourceStub{}
	source.add(10, "")
	p := newTestProcessor(t, path.Join(t.TempDir(), "tree.sqlite"), 0, source)

	require.NoError(t, p.Sync(ctx))
	require.Equal(t, uint64(10), p.Count())
	// 3 full batches plus the one that returns less than the batch size
	require.Equal(t, 3, source.calls)

	reference := tree.NewIncrementalMerkle(tree.DefaultHeight, tree.Keccak256Hasher{})
	for i, leaf := range source.leaves {
		require.NoError(t, reference.Ingest(leaf.Hash))
		root, err := p.GetRootByIndex(ctx, uint32(i))
		require.NoError(t, err)
		require.Equal(t, reference.Root(), root.Hash)
		byHash, err := p.GetRootByHash(ctx, root.Hash)
		require.NoError(t, err)
		require.Equal(t, uint32(i), byHash.Index)
	}
	require.Equal(t, reference.Root(), p.Root())
	_, err := p.GetRootByIndex(ctx, 10)
	require.ErrorIs(t, err, db.ErrNotFound)

	// nothing new
	require.NoError(t, p.Sync(ctx))
	require.Equal(t, uint64(10), p.Count())
}

func TestRestartChecksStoredRoots(t *testing.T) {
	ctx := context.Background()
	dbPath := path.Join(t.TempDir(), "tree.sqlite")
	source := &leafSourceStub{}
	source.add(6, "")
	p := newTestProcessor(t, dbPath, 8, source)
	require.NoError(t, p.Sync(ctx))
	root := p.Root()

	// same leaves plus new ones
	source.add(3, "")
	restarted := newTestProcessor(t, dbPath, 8, source)
	require.NoError(t, restarted.Sync(ctx))
	require.Equal(t, uint64(9), restarted.Count())
	stored, err := restarted.GetRootByIndex(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, root, stored.Hash)

	// a source that hands different leaves
	tampered := &leafSourceStub{}
	tampered.add(6, "tampered")
	restarted = newTestProcessor(t, dbPath, 8, tampered)
	err = restarted.Sync(ctx)
	var mismatch *StoredRootMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Equal(t, uint32(0), mismatch.Index)
}

func TestGetProofForCheckpoint(t *testing.T) {
	ctx := context.Background()
	source := &leafSourceStub{}
	source.add(7, "")
	p := newTestProcessor(t, path.Join(t.TempDir(), "tree.sqlite"), 0, source)
	require.NoError(t, p.Sync(ctx))

	stored, err := p.GetRootByIndex(ctx, 4)
	require.NoError(t, err)
	checkpoint := treetypes.Checkpoint{Root: stored.Hash, Count: 5}

	proof, err := p.GetProofForCheckpoint(2, checkpoint)
	require.NoError(t, err)
	require.Equal(t, checkpoint.Root, proof.Root)
	require.Equal(t, source.leaves[2].Hash, proof.Leaf)
	require.True(t, tree.VerifyProof(tree.Keccak256Hasher{}, proof))

	sameProof, err := p.GetProof(2, 4)
	require.NoError(t, err)
	require.Equal(t, proof, sameProof)

	_, err = p.GetProofForCheckpoint(0, treetypes.Checkpoint{Root: stored.Hash})
	require.ErrorIs(t, err, ErrInvalidCheckpoint)

	_, err = p.GetProofForCheckpoint(2, treetypes.Checkpoint{Root: common.HexToHash("0x01"), Count: 5})
	require.ErrorIs(t, err, ErrCheckpointRootMismatch)

	_, err = p.GetProofForCheckpoint(2, treetypes.Checkpoint{Root: stored.Hash, Count: 8})
	require.ErrorIs(t, err, tree.ErrInvalidProofRequest)

	_, err = p.GetProofForCheckpoint(5, checkpoint)
	require.ErrorIs(t, err, tree.ErrInvalidProofRequest)
}

func TestSyncUpstreamErrors(t *testing.T) {
	ctx := context.Background()
	source := &leafSourceStub{err: errors.New("db is locked")}
	p := newTestProcessor(t, path.Join(t.TempDir(), "tree.sqlite"), 0, source)

	err := p.Sync(ctx)
	var upstreamErr *merkletreebuilder.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	require.Equal(t, leafSource, upstreamErr.Source)

	// the source skips a leaf
	source.err = nil
	source.leaves = []treetypes.Leaf{{Index: 1, Hash: common.HexToHash("0x01")}}
	err = p.Sync(ctx)
	require.ErrorIs(t, err, ErrLeafIndexMismatch)
	require.True(t, errors.As(err, &upstreamErr))
	require.Equal(t, uint64(0), p.Count())
}

func TestStartRetriesUpstreamErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &leafSourceStub{err: errors.New("connection refused")}
	p := newTestProcessor(t, path.Join(t.TempDir(), "tree.sqlite"), 0, source)

	done := make(chan error)
	go func() {
		done <- p.Start(ctx)
	}()
	require.Eventually(t, func() bool {
		source.mu.Lock()
		defer source.mu.Unlock()
		return source.calls > 2
	}, 5*time.Second, 5*time.Millisecond)

	source.mu.Lock()
	source.err = nil
	source.mu.Unlock()
	source.add(5, "")
	require.Eventually(t, func() bool {
		return p.Count() == 5
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestStartStopsWhenTreeIsFull(t *testing.T) {
	source := &leafSourceStub{}
	source.add(5, "")
	p := newTestProcessor(t, path.Join(t.TempDir(), "tree.sqlite"), 2, source)

	err := p.Start(context.Background())
	require.ErrorIs(t, err, tree.ErrTreeFull)
	require.Equal(t, uint64(4), p.Count())
	// the roots of the ingested leaves are stored anyway
	root, err := p.GetRootByIndex(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, p.Root(), root.Hash)
}

func TestProofsWhileSyncing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &leafSourceStub{}
	source.add(1, "")
	p := newTestProcessor(t, path.Join(t.TempDir(), "tree.sqlite"), 0, source)
	go func() {
		_ = p.Start(ctx)
	}()

	hasher := tree.Keccak256Hasher{}
	for i := 0; i < 20; i++ {
		source.add(3, "")
		count := p.Count()
		if count == 0 {
			continue
		}
		proof, err := p.GetProof(0, uint32(count-1))
		require.NoError(t, err)
		require.True(t, tree.VerifyProof(hasher, proof))
		time.Sleep(time.Millisecond)
	}
	require.Eventually(t, func() bool {
		return p.Count() == 61
	}, 5*time.Second, 5*time.Millisecond)
	require.Contains(t, p.String(), "size: 61")
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(Config{DBPath: path.Join(t.TempDir(), "tree.sqlite")}, &leafSourceStub{})
	require.Error(t, err)
	_, err = New(Config{DBPath: path.Join(t.TempDir(), "tree.sqlite"), BatchSize: 1, Height: 33}, &leafSourceStub{})
	require.Error(t, err)
}

package helpers

import (
	"context"
	"path"
	"testing"
	"time"

	"github.com/0xPolygon/msgrelayer/config/types"
	"github.com/0xPolygon/msgrelayer/log"
	"github.com/0xPolygon/msgrelayer/messagesync"
	"github.com/0xPolygon/msgrelayer/rpc"
	"github.com/0xPolygon/msgrelayer/sync"
	"github.com/0xPolygon/msgrelayer/treeprocessor"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	syncBlockChunkSize = 10
	retries            = 3
	periodRetry        = time.Millisecond * 100
	treeBatchSize      = 4
)

var (
	MailboxAddr = common.HexToAddress("0xc005dc82818d67AF737725bD4bf75435d065D239")
	HookAddr    = common.HexToAddress("0x48e6c30B97748d1e2e03bf3e9FbE3890ca5f8CCA")
)

// RelayerEnv runs every component of the relayer against an OriginChain
type RelayerEnv struct {
	Origin      *OriginChain
	MessageSync *messagesync.MessageSync
	Tree        *treeprocessor.Processor
	Endpoints   *rpc.RelayerEndpoints
}

func NewRelayerEnv(ctx context.Context, t *testing.T, height uint8) *RelayerEnv {
	t.Helper()
	dir := t.TempDir()

	origin := NewOriginChain(t, MailboxAddr, HookAddr)
	ms, err := messagesync.New(
		ctx,
		path.Join(dir, "messagesync.sqlite"),
		MailboxAddr,
		HookAddr,
		syncBlockChunkSize,
		sync.LatestBlock,
		origin,
		0,
		time.Millisecond,
		periodRetry,
		retries,
	)
	require.NoError(t, err)
	go ms.Start(ctx)

	tree, err := treeprocessor.New(treeprocessor.Config{
		DBPath:                 path.Join(dir, "merkletree.sqlite"),
		Height:                 height,
		WaitForNewLeavesPeriod: types.NewDuration(time.Millisecond * 10),
		BatchSize:              treeBatchSize,
	}, ms)
	require.NoError(t, err)
	go func() {
		if err := tree.Start(ctx); err != nil {
			log.Errorf("tree processor stopped: %v", err)
		}
	}()

	return &RelayerEnv{
		Origin:      origin,
		MessageSync: ms,
		Tree:        tree,
		Endpoints:   rpc.NewRelayerEndpoints(log.WithFields("module", "rpc"), time.Second, tree, ms),
	}
}

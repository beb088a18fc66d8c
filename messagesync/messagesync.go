package messagesync

import (
	"context"
	"time"

	"github.com/0xPolygon/msgrelayer/log"
	"github.com/0xPolygon/msgrelayer/sync"
	treetypes "github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

const (
	syncerID           = "messagesync"
	downloadBufferSize = 1000
)

// MessageSync syncs the messages dispatched on the origin chain and the
// leaves they produce on its merkle tree hook
type MessageSync struct {
	processor *processor
	driver    *sync.EVMDriver
}

// New creates a message syncer. It doesn't start syncing until Start is called
func New(
	ctx context.Context,
	dbPath string,
	mailbox common.Address,
	merkleTreeHook common.Address,
	syncBlockChunkSize uint64,
	blockFinalityType sync.BlockNumberFinality,
	ethClient sync.EthClienter,
	initialBlock uint64,
	waitForNewBlocksPeriod time.Duration,
	retryAfterErrorPeriod time.Duration,
	maxRetryAttemptsAfterError int,
) (*MessageSync, error) {
	logger := log.WithFields("syncer", syncerID)
	processor, err := newProcessor(dbPath, logger)
	if err != nil {
		return nil, err
	}

	lastProcessedBlock, err := processor.GetLastProcessedBlock(ctx)
	if err != nil {
		return nil, err
	}
	if lastProcessedBlock < initialBlock {
		err = processor.ProcessBlock(ctx, sync.Block{
			Num: initialBlock,
		})
		if err != nil {
			return nil, err
		}
	}

	rh := &sync.RetryHandler{
		MaxRetryAttemptsAfterError: maxRetryAttemptsAfterError,
		RetryAfterErrorPeriod:      retryAfterErrorPeriod,
	}
	appender, err := buildAppender(mailbox, merkleTreeHook)
	if err != nil {
		return nil, err
	}
	downloader, err := sync.NewEVMDownloader(
		syncerID,
		ethClient,
		syncBlockChunkSize,
		blockFinalityType,
		waitForNewBlocksPeriod,
		appender,
		[]common.Address{mailbox, merkleTreeHook},
		rh,
	)
	if err != nil {
		return nil, err
	}
	driver := sync.NewEVMDriver(processor, downloader, syncerID, downloadBufferSize, rh)

	logger.Infof("MessageSync created: dbPath: %s initialBlock: %d mailbox: %s merkleTreeHook: %s "+
		"maxRetryAttemptsAfterError: %d retryAfterErrorPeriod: %s "+
		"syncBlockChunkSize: %d blockFinalityType: %s waitForNewBlocksPeriod: %s",
		dbPath, initialBlock, mailbox.Hex(), merkleTreeHook.Hex(),
		maxRetryAttemptsAfterError, retryAfterErrorPeriod.String(),
		syncBlockChunkSize, blockFinalityType, waitForNewBlocksPeriod.String())

	return &MessageSync{
		processor: processor,
		driver:    driver,
	}, nil
}

// NewFromConfig creates a message syncer from its config section
func NewFromConfig(ctx context.Context, cfg Config, ethClient sync.EthClienter) (*MessageSync, error) {
	return New(
		ctx,
		cfg.DBPath,
		cfg.MailboxAddr,
		cfg.MerkleTreeHookAddr,
		cfg.SyncBlockChunkSize,
		sync.BlockNumberFinality(cfg.BlockFinality),
		ethClient,
		cfg.InitialBlockNum,
		cfg.WaitForNewBlocksPeriod.Duration,
		cfg.RetryAfterErrorPeriod.Duration,
		cfg.MaxRetryAttemptsAfterError,
	)
}

// Start starts the synchronization process
func (s *MessageSync) Start(ctx context.Context) {
	s.driver.Sync(ctx)
}

// GetLastProcessedBlock returns the last block that has been synced
func (s *MessageSync) GetLastProcessedBlock(ctx context.Context) (uint64, error) {
	return s.processor.GetLastProcessedBlock(ctx)
}

// GetLastLeafIndex returns the index of the last leaf synced, db.ErrNotFound if none
func (s *MessageSync) GetLastLeafIndex(ctx context.Context) (uint32, error) {
	return s.processor.GetLastLeafIndex(ctx)
}

// GetLeaves returns up to limit consecutive leaves starting at index from
func (s *MessageSync) GetLeaves(ctx context.Context, from, limit uint32) ([]treetypes.Leaf, error) {
	return s.processor.GetLeaves(ctx, from, limit)
}

// GetLeaf returns the leaf at index, with the block it was inserted on
func (s *MessageSync) GetLeaf(ctx context.Context, index uint32) (*InsertedLeaf, error) {
	return s.processor.GetLeaf(ctx, index)
}

// GetMessageByIndex returns the message whose id is the leaf at index
func (s *MessageSync) GetMessageByIndex(ctx context.Context, index uint32) (*Message, error) {
	return s.processor.GetMessageByIndex(ctx, index)
}

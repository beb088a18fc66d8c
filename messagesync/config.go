package messagesync

import (
	"github.com/0xPolygon/msgrelayer/config/types"
	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	// DBPath path of the DB
	DBPath string `mapstructure:"DBPath"`
	// BlockFinality indicates the status of the blocks that will be queried in order to sync.
	// Reorgs are not handled, so it should be a finality that can't be reorged
	BlockFinality string `jsonschema:"enum=LatestBlock, enum=SafeBlock, enum=PendingBlock, enum=FinalizedBlock, enum=EarliestBlock" mapstructure:"BlockFinality"` //nolint:lll
	// InitialBlockNum is the first block that will be queried when starting the synchronization from scratch.
	// It should be a number equal or below the creation of the mailbox contract
	InitialBlockNum uint64 `mapstructure:"InitialBlockNum"`
	// MailboxAddr is the address of the mailbox contract that emits the Dispatch events
	MailboxAddr common.Address `mapstructure:"MailboxAddr"`
	// MerkleTreeHookAddr is the address of the merkle tree hook that emits the InsertedIntoTree events
	MerkleTreeHookAddr common.Address `mapstructure:"MerkleTreeHookAddr"`
	// SyncBlockChunkSize is the amount of blocks that will be queried to the client on each request
	SyncBlockChunkSize uint64 `mapstructure:"SyncBlockChunkSize"`
	// RetryAfterErrorPeriod is the time that will be waited when an unexpected error happens before retry
	RetryAfterErrorPeriod types.Duration `mapstructure:"RetryAfterErrorPeriod"`
	// MaxRetryAttemptsAfterError is the maximum number of consecutive attempts that will happen before panicking.
	// Any number smaller than zero will be considered as unlimited retries
	MaxRetryAttemptsAfterError int `mapstructure:"MaxRetryAttemptsAfterError"`
	// WaitForNewBlocksPeriod time that will be waited when the synchronizer has reached the latest block
	WaitForNewBlocksPeriod types.Duration `mapstructure:"WaitForNewBlocksPeriod"`
}

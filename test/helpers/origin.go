package helpers

import (
	"context"
	"math/big"
	"sync"
	"testing"

	relayercommon "github.com/0xPolygon/msgrelayer/common"
	"github.com/0xPolygon/msgrelayer/messagesync"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var (
	insertedIntoTreeSignature = crypto.Keccak256Hash([]byte("InsertedIntoTree(bytes32,uint32)"))
	dispatchSignature         = crypto.Keccak256Hash([]byte("Dispatch(address,uint32,bytes32,bytes)"))
)

// OriginChain is an in memory origin chain with a mailbox and a merkle tree hook.
// Every dispatched message is mined on its own block.
type OriginChain struct {
	MailboxAddr common.Address
	HookAddr    common.Address

	mu           sync.Mutex
	lastBlock    uint64
	logs         []types.Log
	nextLeaf     uint32
	insertArgs   abi.Arguments
	dispatchArgs abi.Arguments
}

func NewOriginChain(t *testing.T, mailbox, hook common.Address) *OriginChain {
	t.Helper()

	bytes32Type, err := abi.NewType("bytes32", "", nil)
	require.NoError(t, err)
	uint32Type, err := abi.NewType("uint32", "", nil)
	require.NoError(t, err)
	bytesType, err := abi.NewType("bytes", "", nil)
	require.NoError(t, err)

	return &OriginChain{
		MailboxAddr:  mailbox,
		HookAddr:     hook,
		insertArgs:   abi.Arguments{{Type: bytes32Type}, {Type: uint32Type}},
		dispatchArgs: abi.Arguments{{Type: bytesType}},
	}
}

// Dispatch mines a block with the Dispatch and InsertedIntoTree logs of msg and
// returns the leaf index of the message
func (c *OriginChain) Dispatch(t *testing.T, msg *messagesync.Message) uint32 {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	dispatchData, err := c.dispatchArgs.Pack(msg.Encode())
	require.NoError(t, err)
	index := c.nextLeaf
	insertData, err := c.insertArgs.Pack(msg.ID(), index)
	require.NoError(t, err)

	c.lastBlock++
	blockHash := header(c.lastBlock).Hash()
	c.logs = append(c.logs,
		types.Log{
			Address: c.MailboxAddr,
			Topics: []common.Hash{
				dispatchSignature,
				msg.Sender,
				common.BytesToHash(relayercommon.Uint32ToBytes(msg.Destination)),
				msg.Recipient,
			},
			Data:        dispatchData,
			BlockNumber: c.lastBlock,
			BlockHash:   blockHash,
			Index:       0,
		},
		types.Log{
			Address:     c.HookAddr,
			Topics:      []common.Hash{insertedIntoTreeSignature},
			Data:        insertData,
			BlockNumber: c.lastBlock,
			BlockHash:   blockHash,
			Index:       1,
		},
	)
	c.nextLeaf++
	return index
}

// Commit mines n empty blocks
func (c *OriginChain) Commit(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastBlock += n
}

func (c *OriginChain) LastBlock() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastBlock
}

func (c *OriginChain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := []types.Log{}
	for _, l := range c.logs {
		if l.BlockNumber >= q.FromBlock.Uint64() && l.BlockNumber <= q.ToBlock.Uint64() {
			res = append(res, l)
		}
	}
	return res, nil
}

// HeaderByNumber returns the last block for any finality
func (c *OriginChain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if number == nil || number.Sign() < 0 {
		return header(c.lastBlock), nil
	}
	return header(number.Uint64()), nil
}

func header(num uint64) *types.Header {
	return &types.Header{Number: new(big.Int).SetUint64(num)}
}

package sync

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rpc"
)

// BlockNumberFinality is the tag of the block the downloader considers the tip of the chain
type BlockNumberFinality string

const (
	FinalizedBlock = BlockNumberFinality("FinalizedBlock")
	SafeBlock      = BlockNumberFinality("SafeBlock")
	PendingBlock   = BlockNumberFinality("PendingBlock")
	LatestBlock    = BlockNumberFinality("LatestBlock")
	EarliestBlock  = BlockNumberFinality("EarliestBlock")
)

// ToBlockNum returns the special block number understood by the eth client for the tag
func (b BlockNumberFinality) ToBlockNum() (*big.Int, error) {
	switch b {
	case FinalizedBlock:
		return big.NewInt(int64(rpc.FinalizedBlockNumber)), nil
	case SafeBlock:
		return big.NewInt(int64(rpc.SafeBlockNumber)), nil
	case PendingBlock:
		return big.NewInt(int64(rpc.PendingBlockNumber)), nil
	case LatestBlock:
		return big.NewInt(int64(rpc.LatestBlockNumber)), nil
	case EarliestBlock:
		return big.NewInt(int64(rpc.EarliestBlockNumber)), nil
	default:
		return nil, fmt.Errorf("invalid finality keyword: %s", string(b))
	}
}

package sync

import (
	"context"
	"errors"
)

var ErrInconsistentState = errors.New("state is inconsistent, try again later once the state is consolidated")

// Block is a downloaded block with the events the processor cares about
type Block struct {
	Num    uint64
	Events []interface{}
}

// ProcessorInterface persists the blocks handed by the driver
type ProcessorInterface interface {
	GetLastProcessedBlock(ctx context.Context) (uint64, error)
	ProcessBlock(ctx context.Context, block Block) error
}

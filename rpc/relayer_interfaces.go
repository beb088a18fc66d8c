package rpc

import (
	"context"

	"github.com/0xPolygon/msgrelayer/messagesync"
	tree "github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

type TreeProver interface {
	GetProof(leafIndex, rootIndex uint32) (tree.Proof, error)
	GetProofForCheckpoint(leafIndex uint32, checkpoint tree.Checkpoint) (tree.Proof, error)
	GetRootByIndex(ctx context.Context, index uint32) (*tree.Root, error)
	Count() uint64
	Root() common.Hash
}

type MessageGetter interface {
	GetMessageByIndex(ctx context.Context, index uint32) (*messagesync.Message, error)
	GetLastProcessedBlock(ctx context.Context) (uint64, error)
}

package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/msgrelayer/log"
	"github.com/0xPolygon/msgrelayer/rpc/types"
	tree "github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// RELAYER is the namespace of the relayer service
	RELAYER   = "relayer"
	meterName = "github.com/0xPolygon/msgrelayer/rpc"
)

// RelayerEndpoints contains implementations for the "relayer" RPC endpoints
type RelayerEndpoints struct {
	logger      *log.Logger
	meter       metric.Meter
	readTimeout time.Duration
	tree        TreeProver
	messages    MessageGetter
}

// NewRelayerEndpoints returns RelayerEndpoints
func NewRelayerEndpoints(
	logger *log.Logger,
	readTimeout time.Duration,
	treeProver TreeProver,
	messages MessageGetter,
) *RelayerEndpoints {
	meter := otel.Meter(meterName)
	return &RelayerEndpoints{
		logger:      logger,
		meter:       meter,
		readTimeout: readTimeout,
		tree:        treeProver,
		messages:    messages,
	}
}

// GetProof returns the proof of the leaf at leafIndex against the root the tree
// had right after inserting the leaf at rootIndex
func (r *RelayerEndpoints) GetProof(leafIndex, rootIndex uint32) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.readTimeout)
	defer cancel()
	r.count(ctx, "get_proof")

	proof, err := r.tree.GetProof(leafIndex, rootIndex)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf(
			"failed to get proof for leaf %d against root %d, error: %s", leafIndex, rootIndex, err),
		)
	}
	return proof, nil
}

// GetProofForCheckpoint returns the proof of the leaf at leafIndex against a checkpoint
// of the origin chain. The checkpoint root must match the one stored for count-1.
func (r *RelayerEndpoints) GetProofForCheckpoint(
	leafIndex uint32, root common.Hash, count uint32,
) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.readTimeout)
	defer cancel()
	r.count(ctx, "get_proof_for_checkpoint")

	proof, err := r.tree.GetProofForCheckpoint(leafIndex, tree.Checkpoint{Root: root, Count: count})
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf(
			"failed to get proof for leaf %d against checkpoint %s (count %d), error: %s",
			leafIndex, root.Hex(), count, err),
		)
	}
	return proof, nil
}

// GetTreeInfo returns the size and root of the local tree
func (r *RelayerEndpoints) GetTreeInfo() (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.readTimeout)
	defer cancel()
	r.count(ctx, "get_tree_info")

	lastBlock, err := r.messages.GetLastProcessedBlock(ctx)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf(
			"failed to get last processed block, error: %s", err),
		)
	}
	return types.TreeInfo{
		Count:              r.tree.Count(),
		Root:               r.tree.Root(),
		LastProcessedBlock: lastBlock,
	}, nil
}

// GetRoot returns the root of the tree right after inserting the leaf at index
func (r *RelayerEndpoints) GetRoot(index uint32) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.readTimeout)
	defer cancel()
	r.count(ctx, "get_root")

	root, err := r.tree.GetRootByIndex(ctx, index)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf(
			"failed to get root for index %d, error: %s", index, err),
		)
	}
	return root, nil
}

// GetMessage returns the message whose id was inserted at leafIndex
func (r *RelayerEndpoints) GetMessage(leafIndex uint32) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.readTimeout)
	defer cancel()
	r.count(ctx, "get_message")

	msg, err := r.messages.GetMessageByIndex(ctx, leafIndex)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf(
			"failed to get message for leaf %d, error: %s", leafIndex, err),
		)
	}
	return types.Message{
		LeafIndex:   leafIndex,
		ID:          msg.ID(),
		Version:     msg.Version,
		Nonce:       msg.Nonce,
		Origin:      msg.Origin,
		Sender:      msg.Sender,
		Destination: msg.Destination,
		Recipient:   msg.Recipient,
		Body:        msg.Body,
	}, nil
}

func (r *RelayerEndpoints) count(ctx context.Context, name string) {
	c, merr := r.meter.Int64Counter(name)
	if merr != nil {
		r.logger.Warnf("failed to create %s counter: %s", name, merr)
		return
	}
	c.Add(ctx, 1)
}

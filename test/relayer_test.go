package test

import (
	"context"
	"testing"

	"github.com/0xPolygon/msgrelayer/messagesync"
	rpctypes "github.com/0xPolygon/msgrelayer/rpc/types"
	"github.com/0xPolygon/msgrelayer/test/helpers"
	"github.com/0xPolygon/msgrelayer/tree"
	treetypes "github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func newMessage(nonce uint32) *messagesync.Message {
	return &messagesync.Message{
		Version:     3,
		Nonce:       nonce,
		Origin:      0x657468,
		Sender:      common.HexToHash("0x000000000000000000000000000000000000000000000000000000000000beef"),
		Destination: 0x706f6c79,
		Recipient:   common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000cafe0"),
		Body:        []byte{byte(nonce)},
	}
}

func TestRelayerServesProofsOfDispatchedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := helpers.NewRelayerEnv(ctx, t, treetypes.DefaultHeight)

	msgs := []*messagesync.Message{}
	for i := uint32(0); i < 10; i++ {
		msg := newMessage(i)
		require.Equal(t, i, env.Origin.Dispatch(t, msg))
		msgs = append(msgs, msg)
		if i%3 == 0 {
			env.Origin.Commit(5)
		}
	}
	helpers.RequireProcessorUpdated(t, env.MessageSync, env.Origin.LastBlock())
	helpers.RequireTreeCount(t, env.Tree, uint64(len(msgs)))

	res, rerr := env.Endpoints.GetTreeInfo()
	require.Nil(t, rerr)
	info, ok := res.(rpctypes.TreeInfo)
	require.True(t, ok)
	require.Equal(t, uint64(len(msgs)), info.Count)

	for leafIndex := range msgs {
		res, rerr := env.Endpoints.GetMessage(uint32(leafIndex))
		require.Nil(t, rerr)
		msg, ok := res.(rpctypes.Message)
		require.True(t, ok)
		require.Equal(t, msgs[leafIndex].ID(), msg.ID)

		for rootIndex := leafIndex; rootIndex < len(msgs); rootIndex++ {
			res, rerr := env.Endpoints.GetProof(uint32(leafIndex), uint32(rootIndex))
			require.Nil(t, rerr)
			proof, ok := res.(treetypes.Proof)
			require.True(t, ok)
			require.Equal(t, msgs[leafIndex].ID(), proof.Leaf)
			require.True(t, tree.VerifyProof(tree.Keccak256Hasher{}, proof))

			res, rerr = env.Endpoints.GetRoot(uint32(rootIndex))
			require.Nil(t, rerr)
			root, ok := res.(*treetypes.Root)
			require.True(t, ok)
			require.Equal(t, root.Hash, proof.Root)
		}
	}
	require.Equal(t, info.Root, mustProof(t, env, 0, uint32(len(msgs)-1)).Root)

	// a checkpoint signed before the last messages were dispatched
	checkpointRoot := mustProof(t, env, 0, 5).Root
	res, rerr = env.Endpoints.GetProofForCheckpoint(2, checkpointRoot, 6)
	require.Nil(t, rerr)
	proof, ok := res.(treetypes.Proof)
	require.True(t, ok)
	require.Equal(t, checkpointRoot, proof.Root)
	require.True(t, tree.VerifyProof(tree.Keccak256Hasher{}, proof))

	_, rerr = env.Endpoints.GetProofForCheckpoint(2, checkpointRoot, 7)
	require.NotNil(t, rerr)
	_, rerr = env.Endpoints.GetProof(10, 10)
	require.NotNil(t, rerr)

	// proofs against old roots don't change when the tree grows
	before := mustProof(t, env, 1, 4)
	env.Origin.Dispatch(t, newMessage(10))
	helpers.RequireTreeCount(t, env.Tree, uint64(len(msgs)+1))
	require.Equal(t, before, mustProof(t, env, 1, 4))
}

func mustProof(t *testing.T, env *helpers.RelayerEnv, leafIndex, rootIndex uint32) treetypes.Proof {
	t.Helper()
	res, rerr := env.Endpoints.GetProof(leafIndex, rootIndex)
	require.Nil(t, rerr)
	proof, ok := res.(treetypes.Proof)
	require.True(t, ok)
	return proof
}

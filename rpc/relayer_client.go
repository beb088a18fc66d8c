package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/msgrelayer/rpc/types"
	tree "github.com/0xPolygon/msgrelayer/tree/types"
)

type RelayerClientInterface interface {
	GetProof(leafIndex, rootIndex uint32) (*tree.Proof, error)
	GetProofForCheckpoint(leafIndex uint32, checkpoint tree.Checkpoint) (*tree.Proof, error)
	GetTreeInfo() (*types.TreeInfo, error)
	GetRoot(index uint32) (*tree.Root, error)
	GetMessage(leafIndex uint32) (*types.Message, error)
}

// GetProof returns the proof of the leaf at leafIndex against the root at rootIndex
func (c *Client) GetProof(leafIndex, rootIndex uint32) (*tree.Proof, error) {
	var result tree.Proof
	return &result, c.call(&result, "relayer_getProof", leafIndex, rootIndex)
}

// GetProofForCheckpoint returns the proof of the leaf at leafIndex against a checkpoint
func (c *Client) GetProofForCheckpoint(leafIndex uint32, checkpoint tree.Checkpoint) (*tree.Proof, error) {
	var result tree.Proof
	return &result, c.call(&result, "relayer_getProofForCheckpoint", leafIndex, checkpoint.Root, checkpoint.Count)
}

// GetTreeInfo returns the size and root of the tree
func (c *Client) GetTreeInfo() (*types.TreeInfo, error) {
	var result types.TreeInfo
	return &result, c.call(&result, "relayer_getTreeInfo")
}

// GetRoot returns the root of the tree right after inserting the leaf at index
func (c *Client) GetRoot(index uint32) (*tree.Root, error) {
	var result tree.Root
	return &result, c.call(&result, "relayer_getRoot", index)
}

// GetMessage returns the message inserted at leafIndex
func (c *Client) GetMessage(leafIndex uint32) (*types.Message, error) {
	var result types.Message
	return &result, c.call(&result, "relayer_getMessage", leafIndex)
}

func (c *Client) call(result interface{}, method string, params ...interface{}) error {
	response, err := rpc.JSONRPCCall(c.url, method, params...)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	return json.Unmarshal(response.Result, result)
}

package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TreeInfo is the state of the local merkle tree
type TreeInfo struct {
	Count              uint64      `json:"count"`
	Root               common.Hash `json:"root"`
	LastProcessedBlock uint64      `json:"lastProcessedBlock"`
}

// Message is a dispatched message together with the leaf it was inserted at
type Message struct {
	LeafIndex   uint32        `json:"leafIndex"`
	ID          common.Hash   `json:"id"`
	Version     uint8         `json:"version"`
	Nonce       uint32        `json:"nonce"`
	Origin      uint32        `json:"origin"`
	Sender      common.Hash   `json:"sender"`
	Destination uint32        `json:"destination"`
	Recipient   common.Hash   `json:"recipient"`
	Body        hexutil.Bytes `json:"body"`
}

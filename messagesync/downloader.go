package messagesync

import (
	"fmt"
	"strings"

	relayercommon "github.com/0xPolygon/msgrelayer/common"
	"github.com/0xPolygon/msgrelayer/sync"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	insertedIntoTreeEvent = "InsertedIntoTree"
	dispatchEvent         = "Dispatch"

	eventsABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": false, "internalType": "bytes32", "name": "messageId", "type": "bytes32"},
			{"indexed": false, "internalType": "uint32", "name": "index", "type": "uint32"}
		],
		"name": "InsertedIntoTree",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
			{"indexed": true, "internalType": "uint32", "name": "destination", "type": "uint32"},
			{"indexed": true, "internalType": "bytes32", "name": "recipient", "type": "bytes32"},
			{"indexed": false, "internalType": "bytes", "name": "message", "type": "bytes"}
		],
		"name": "Dispatch",
		"type": "event"
	}
]`
)

var (
	insertedIntoTreeEventSignature = crypto.Keccak256Hash([]byte("InsertedIntoTree(bytes32,uint32)"))
	dispatchEventSignature         = crypto.Keccak256Hash([]byte("Dispatch(address,uint32,bytes32,bytes)"))
)

// InsertedLeaf is a message id inserted into the merkle tree hook of the origin chain
type InsertedLeaf struct {
	BlockNum  uint64      `meddler:"block_num"`
	BlockPos  uint64      `meddler:"block_pos"`
	LeafIndex uint32      `meddler:"leaf_index"`
	MessageID common.Hash `meddler:"hash,hash"`
}

// DispatchedMessage is a message dispatched by the mailbox of the origin chain
type DispatchedMessage struct {
	BlockNum uint64
	BlockPos uint64
	Message  *Message
}

// Event is the combination of the events that the message syncer cares about
type Event struct {
	InsertedLeaf *InsertedLeaf
	Dispatch     *DispatchedMessage
}

type insertedIntoTreeLog struct {
	MessageId [32]byte //nolint:stylecheck
	Index     uint32
}

type dispatchLog struct {
	Sender      common.Address
	Destination uint32
	Recipient   [32]byte
	Message     []byte
}

func buildAppender(mailbox, merkleTreeHook common.Address) (sync.LogAppenderMap, error) {
	parsed, err := abi.JSON(strings.NewReader(eventsABI))
	if err != nil {
		return nil, err
	}
	hookContract := bind.NewBoundContract(merkleTreeHook, parsed, nil, nil, nil)
	mailboxContract := bind.NewBoundContract(mailbox, parsed, nil, nil, nil)
	appender := make(sync.LogAppenderMap)

	appender[insertedIntoTreeEventSignature] = func(b *sync.EVMBlock, l types.Log) error {
		inserted := insertedIntoTreeLog{}
		if err := hookContract.UnpackLog(&inserted, insertedIntoTreeEvent, l); err != nil {
			return fmt.Errorf("error parsing log %+v as %s: %w", l, insertedIntoTreeEvent, err)
		}
		b.Events = append(b.Events, Event{InsertedLeaf: &InsertedLeaf{
			BlockNum:  b.Num,
			BlockPos:  uint64(l.Index),
			LeafIndex: inserted.Index,
			MessageID: inserted.MessageId,
		}})
		return nil
	}

	appender[dispatchEventSignature] = func(b *sync.EVMBlock, l types.Log) error {
		dispatch := dispatchLog{}
		if err := mailboxContract.UnpackLog(&dispatch, dispatchEvent, l); err != nil {
			return fmt.Errorf("error parsing log %+v as %s: %w", l, dispatchEvent, err)
		}
		msg, err := DecodeMessage(dispatch.Message)
		if err != nil {
			return fmt.Errorf("error decoding message of log %+v: %w", l, err)
		}
		if msg.Sender != relayercommon.AddressToBytes32(dispatch.Sender) ||
			msg.Destination != dispatch.Destination ||
			msg.Recipient != common.Hash(dispatch.Recipient) {
			return fmt.Errorf("indexed fields of log %+v don't match the message %s", l, msg)
		}
		b.Events = append(b.Events, Event{Dispatch: &DispatchedMessage{
			BlockNum: b.Num,
			BlockPos: uint64(l.Index),
			Message:  msg,
		}})
		return nil
	}

	return appender, nil
}

package messagesync

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/keccak256"
)

const (
	// messageHeaderLen is version(1) + nonce(4) + origin(4) + sender(32) + destination(4) + recipient(32)
	messageHeaderLen = 77

	versionOffset     = 0
	nonceOffset       = 1
	originOffset      = 5
	senderOffset      = 9
	destinationOffset = 41
	recipientOffset   = 45
	bodyOffset        = messageHeaderLen
)

var ErrMessageTooShort = errors.New("message is too short")

// Message is a message dispatched by the mailbox of the origin chain. Its id
// is the leaf inserted into the merkle tree.
type Message struct {
	Version     uint8       `meddler:"version"`
	Nonce       uint32      `meddler:"nonce"`
	Origin      uint32      `meddler:"origin"`
	Sender      common.Hash `meddler:"sender,hash"`
	Destination uint32      `meddler:"destination"`
	Recipient   common.Hash `meddler:"recipient,hash"`
	Body        []byte      `meddler:"body"`
}

// Encode packs the message the way the mailbox does
func (m *Message) Encode() []byte {
	res := make([]byte, messageHeaderLen+len(m.Body))
	res[versionOffset] = m.Version
	binary.BigEndian.PutUint32(res[nonceOffset:], m.Nonce)
	binary.BigEndian.PutUint32(res[originOffset:], m.Origin)
	copy(res[senderOffset:destinationOffset], m.Sender.Bytes())
	binary.BigEndian.PutUint32(res[destinationOffset:], m.Destination)
	copy(res[recipientOffset:bodyOffset], m.Recipient.Bytes())
	copy(res[bodyOffset:], m.Body)
	return res
}

// ID returns the keccak256 of the encoded message
func (m *Message) ID() common.Hash {
	return common.BytesToHash(keccak256.Hash(m.Encode()))
}

func (m *Message) String() string {
	return fmt.Sprintf(
		"Message { id: %s, nonce: %d, origin: %d, sender: %s, destination: %d, recipient: %s, body: 0x%x }",
		m.ID().Hex(), m.Nonce, m.Origin, m.Sender.Hex(), m.Destination, m.Recipient.Hex(), m.Body,
	)
}

// DecodeMessage parses a message packed by the mailbox
func DecodeMessage(data []byte) (*Message, error) {
	if len(data) < messageHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes, expected at least %d", ErrMessageTooShort, len(data), messageHeaderLen)
	}
	body := make([]byte, len(data)-bodyOffset)
	copy(body, data[bodyOffset:])
	return &Message{
		Version:     data[versionOffset],
		Nonce:       binary.BigEndian.Uint32(data[nonceOffset:]),
		Origin:      binary.BigEndian.Uint32(data[originOffset:]),
		Sender:      common.BytesToHash(data[senderOffset:destinationOffset]),
		Destination: binary.BigEndian.Uint32(data[destinationOffset:]),
		Recipient:   common.BytesToHash(data[recipientOffset:bodyOffset]),
		Body:        body,
	}, nil
}

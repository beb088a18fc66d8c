package messagesync

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func testMessage(nonce uint32) *Message {
	return &Message{
		Version:     3,
		Nonce:       nonce,
		Origin:      0x657468,
		Sender:      common.HexToHash("0x000000000000000000000000000000000000000000000000000000000000beef"),
		Destination: 0x706f6c79,
		Recipient:   common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000cafe0"),
		Body:        []byte("hello"),
	}
}

func TestMessageEncode(t *testing.T) {
	msg := testMessage(7)
	encoded := msg.Encode()
	require.Len(t, encoded, messageHeaderLen+5)
	require.Equal(t, byte(3), encoded[0])
	require.Equal(t, []byte{0, 0, 0, 7}, encoded[1:5])
	require.Equal(t, []byte{0x00, 0x65, 0x74, 0x68}, encoded[5:9])
	require.Equal(t, msg.Sender.Bytes(), encoded[9:41])
	require.Equal(t, []byte{0x70, 0x6f, 0x6c, 0x79}, encoded[41:45])
	require.Equal(t, msg.Recipient.Bytes(), encoded[45:77])
	require.Equal(t, []byte("hello"), encoded[77:])

	require.Equal(t, crypto.Keccak256Hash(encoded), msg.ID())
}

func TestDecodeMessage(t *testing.T) {
	msg := testMessage(1)
	decoded, err := DecodeMessage(msg.Encode())
	require.NoError(t, err)
	require.Equal(t, msg, decoded)

	empty := testMessage(2)
	empty.Body = []byte{}
	decoded, err = DecodeMessage(empty.Encode())
	require.NoError(t, err)
	require.Equal(t, empty.ID(), decoded.ID())

	_, err = DecodeMessage(make([]byte, messageHeaderLen-1))
	require.ErrorIs(t, err, ErrMessageTooShort)
}

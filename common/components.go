package common

const (
	// MESSAGE_SYNC name to identify the messagesync component
	MESSAGE_SYNC = "messagesync" //nolint:stylecheck
	// MERKLE_TREE name to identify the merkle tree component (implies messagesync)
	MERKLE_TREE = "merkletree" //nolint:stylecheck
	// RPC name to identify the rpc component (implies merkletree)
	RPC = "rpc"
)

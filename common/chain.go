package common

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ContractLocator points to a contract deployed on a given chain
type ContractLocator struct {
	ChainName string
	Domain    Domain
	Address   common.Address
}

func (c ContractLocator) String() string {
	return fmt.Sprintf("%s[@%d]+contract:0x%x", c.ChainName, uint32(c.Domain), c.Address.Bytes())
}

// Chain is the minimal interface of a chain the relayer needs besides log syncing
type Chain interface {
	QueryBalance(ctx context.Context, addr common.Address) (*big.Int, error)
}

// EVMChain implements Chain on top of an EVM node
type EVMChain struct {
	Domain Domain
	client ethereum.ChainStateReader
}

// NewEVMChain creates a Chain backed by client
func NewEVMChain(domain Domain, client ethereum.ChainStateReader) *EVMChain {
	return &EVMChain{Domain: domain, client: client}
}

// QueryBalance returns the balance of addr at the latest block
func (c *EVMChain) QueryBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := c.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("error querying balance of %s on %s: %w", addr.Hex(), c.Domain, err)
	}
	return balance, nil
}

package sync

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

// EVMDownloaderMock is a mock type for the evmDownloaderFull type
type EVMDownloaderMock struct {
	mock.Mock
}

// Download provides a mock function with given fields: ctx, fromBlock, downloadedCh
func (m *EVMDownloaderMock) Download(ctx context.Context, fromBlock uint64, downloadedCh chan EVMBlock) {
	m.Called(ctx, fromBlock, downloadedCh)
}

// GetBlockHeader provides a mock function with given fields: ctx, blockNum
func (m *EVMDownloaderMock) GetBlockHeader(ctx context.Context, blockNum uint64) (EVMBlockHeader, bool) {
	ret := m.Called(ctx, blockNum)
	return ret.Get(0).(EVMBlockHeader), ret.Bool(1) //nolint:forcetypeassert
}

// GetEventsByBlockRange provides a mock function with given fields: ctx, fromBlock, toBlock
func (m *EVMDownloaderMock) GetEventsByBlockRange(ctx context.Context, fromBlock, toBlock uint64) []EVMBlock {
	ret := m.Called(ctx, fromBlock, toBlock)
	var blocks []EVMBlock
	if rf, ok := ret.Get(0).([]EVMBlock); ok {
		blocks = rf
	}
	return blocks
}

// GetLogs provides a mock function with given fields: ctx, fromBlock, toBlock
func (m *EVMDownloaderMock) GetLogs(ctx context.Context, fromBlock, toBlock uint64) []types.Log {
	ret := m.Called(ctx, fromBlock, toBlock)
	var logs []types.Log
	if rf, ok := ret.Get(0).([]types.Log); ok {
		logs = rf
	}
	return logs
}

// WaitForNewBlocks provides a mock function with given fields: ctx, lastBlockSeen
func (m *EVMDownloaderMock) WaitForNewBlocks(ctx context.Context, lastBlockSeen uint64) uint64 {
	ret := m.Called(ctx, lastBlockSeen)
	return ret.Get(0).(uint64) //nolint:forcetypeassert
}

// NewEVMDownloaderMock creates a new instance of EVMDownloaderMock. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewEVMDownloaderMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *EVMDownloaderMock {
	m := &EVMDownloaderMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

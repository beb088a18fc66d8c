package sync

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

// EthClienterMock is a mock type for the EthClienter type
type EthClienterMock struct {
	mock.Mock
}

// FilterLogs provides a mock function with given fields: ctx, q
func (m *EthClienterMock) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	ret := m.Called(ctx, q)
	var logs []types.Log
	if rf, ok := ret.Get(0).([]types.Log); ok {
		logs = rf
	}
	return logs, ret.Error(1)
}

// HeaderByNumber provides a mock function with given fields: ctx, number
func (m *EthClienterMock) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	ret := m.Called(ctx, number)
	var header *types.Header
	if rf, ok := ret.Get(0).(*types.Header); ok {
		header = rf
	}
	return header, ret.Error(1)
}

// NewEthClienterMock creates a new instance of EthClienterMock. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewEthClienterMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *EthClienterMock {
	m := &EthClienterMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

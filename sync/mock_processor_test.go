package sync

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// ProcessorMock is a mock type for the ProcessorInterface type
type ProcessorMock struct {
	mock.Mock
}

// GetLastProcessedBlock provides a mock function with given fields: ctx
func (m *ProcessorMock) GetLastProcessedBlock(ctx context.Context) (uint64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(uint64), ret.Error(1) //nolint:forcetypeassert
}

// ProcessBlock provides a mock function with given fields: ctx, block
func (m *ProcessorMock) ProcessBlock(ctx context.Context, block Block) error {
	ret := m.Called(ctx, block)
	return ret.Error(0)
}

// NewProcessorMock creates a new instance of ProcessorMock. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewProcessorMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProcessorMock {
	m := &ProcessorMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

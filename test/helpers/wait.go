package helpers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type Processorer interface {
	GetLastProcessedBlock(ctx context.Context) (uint64, error)
}

type Counter interface {
	Count() uint64
}

func RequireProcessorUpdated(t *testing.T, processor Processorer, targetBlock uint64) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 500; i++ {
		lpb, err := processor.GetLastProcessedBlock(ctx)
		require.NoError(t, err)
		if targetBlock <= lpb {
			return
		}
		time.Sleep(time.Millisecond * 10)
	}
	require.NoError(t, errors.New("processor not updated"))
}

func RequireTreeCount(t *testing.T, tree Counter, count uint64) {
	t.Helper()
	for i := 0; i < 500; i++ {
		if tree.Count() >= count {
			require.Equal(t, count, tree.Count())
			return
		}
		time.Sleep(time.Millisecond * 10)
	}
	require.NoError(t, errors.New("tree not updated"))
}

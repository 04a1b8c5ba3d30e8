package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunExecutesAllTasks(t *testing.T) {
	p := New(4)
	var count int64
	tasks := make([]func(ctx context.Context) error, 10)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		}
	}
	require.NoError(t, p.Run(context.Background(), tasks))
	require.Equal(t, int64(10), count)
}

func TestRunPropagatesFirstError(t *testing.T) {
	p := New(2)
	wantErr := errors.New("task failed")
	tasks := []func(ctx context.Context) error{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return wantErr },
	}
	err := p.Run(context.Background(), tasks)
	require.ErrorIs(t, err, wantErr)
}

func TestNewDefaultsToPositiveSize(t *testing.T) {
	p := New(0)
	require.Greater(t, p.Size(), 0)

	explicit := New(6)
	require.Equal(t, 6, explicit.Size())
}

func TestPartitionCoversEveryItemExactlyOnce(t *testing.T) {
	p := New(3)
	bounds := p.Partition(10)

	covered := make([]bool, 10)
	for _, b := range bounds {
		for i := b[0]; i < b[1]; i++ {
			require.False(t, covered[i], "item %d covered twice", i)
			covered[i] = true
		}
	}
	for i, c := range covered {
		require.True(t, c, "item %d never covered", i)
	}
}

func TestPartitionOfZeroReturnsNil(t *testing.T) {
	p := New(4)
	require.Nil(t, p.Partition(0))
}

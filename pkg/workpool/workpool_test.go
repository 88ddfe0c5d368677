package workpool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPreservesInputOrder(t *testing.T) {
	pool := New(4, func(ctx context.Context, s string) (string, error) {
		return strings.ToUpper(s), nil
	})

	results, errs := pool.Process(context.Background(), []string{"a", "b", "c", "d", "e"})

	require.Nil(t, FirstError(errs))
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, results)
}

func TestProcessReportsErrorsPositionally(t *testing.T) {
	boom := errors.New("boom")
	pool := New(2, func(ctx context.Context, n int) (int, error) {
		if n == 3 {
			return 0, boom
		}
		return n * 2, nil
	})

	results, errs := pool.Process(context.Background(), []int{1, 2, 3, 4})

	assert.Equal(t, 8, results[3])
	assert.ErrorIs(t, errs[2], boom)
	assert.ErrorIs(t, FirstError(errs), boom)
}

func TestProcessRecoversPanics(t *testing.T) {
	pool := New(2, func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			panic("worker exploded")
		}
		return n, nil
	})

	_, errs := pool.Process(context.Background(), []int{0, 1})

	var panicErr *PanicError
	require.ErrorAs(t, errs[1], &panicErr)
	assert.Contains(t, panicErr.Error(), "worker exploded")
}

func TestProcessMarksUnstartedItemsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pool := New(1, func(ctx context.Context, n int) (int, error) {
		if n == 0 {
			cancel()
			return 1, nil
		}
		return n * 2, nil
	})

	results, errs := pool.Process(ctx, []int{0, 1, 2, 3})

	// Item 0 ran to completion before the cancellation took effect.
	assert.Equal(t, 1, results[0])
	require.NoError(t, errs[0])

	// Nothing after the cancellation may look successfully processed.
	for i := 1; i < 4; i++ {
		assert.ErrorIs(t, errs[i], context.Canceled, "item %d", i)
		assert.Zero(t, results[i], "item %d", i)
	}
	assert.ErrorIs(t, FirstError(errs), context.Canceled)
}

func TestProcessEmptyInput(t *testing.T) {
	pool := New(2, func(ctx context.Context, n int) (int, error) { return n, nil })
	results, errs := pool.Process(context.Background(), nil)
	assert.Nil(t, results)
	assert.Nil(t, errs)
}

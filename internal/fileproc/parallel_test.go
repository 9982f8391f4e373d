package fileproc

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCollectsAllResults(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	results := Map(items, strconv.Itoa, func(n int) (int, error) {
		return n * 2, nil
	})
	sort.Ints(results)
	assert.Equal(t, []int{2, 4, 6, 8, 10}, results)
}

func TestMapEmptyInput(t *testing.T) {
	results := Map(nil, strconv.Itoa, func(n int) (int, error) { return n, nil })
	assert.Nil(t, results)
}

func TestMapWithContextCollectsErrors(t *testing.T) {
	items := []int{1, 2, 3}
	boom := errors.New("boom")
	results, errs := MapWithContext(context.Background(), items, 2, strconv.Itoa,
		func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, boom
			}
			return n, nil
		}, nil)

	sort.Ints(results)
	assert.Equal(t, []int{1, 3}, results)
	require.NotNil(t, errs)
	require.Len(t, errs.Errors, 1)
	assert.Equal(t, "2", errs.Errors[0].ID)
	assert.ErrorIs(t, errs.Errors[0].Err, boom)
}

func TestMapWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	var processed atomic.Int32
	results, errs := MapWithContext(ctx, items, 4, strconv.Itoa,
		func(_ context.Context, n int) (int, error) {
			processed.Add(1)
			return n, nil
		}, nil)

	assert.Empty(t, results, "no item should complete on a cancelled context")
	assert.Zero(t, processed.Load())
	require.NotNil(t, errs)
	assert.NotEmpty(t, errs.Errors)
	assert.ErrorIs(t, errs.Errors[0].Err, context.Canceled)
}

func TestProgressCalledPerItem(t *testing.T) {
	var ticks atomic.Int32
	items := []int{1, 2, 3, 4}
	_, errs := MapWithContext(context.Background(), items, 2, strconv.Itoa,
		func(_ context.Context, n int) (int, error) { return n, nil },
		func() { ticks.Add(1) })

	assert.Nil(t, errs)
	assert.Equal(t, int32(4), ticks.Load())
}

func TestWorkersDefault(t *testing.T) {
	assert.Equal(t, 3, Workers(3))
	assert.Greater(t, Workers(0), 0)
	assert.Greater(t, Workers(-1), 0)
}

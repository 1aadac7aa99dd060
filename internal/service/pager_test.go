package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectPages_StopsOnShortPage(t *testing.T) {
	calls := 0
	// total over-reports; the short page ends the walk
	got, err := collectPages(context.Background(), 2, func(ctx context.Context, offset, limit int) ([]int, int, error) {
		calls++
		if offset >= 4 {
			return []int{offset}, 100, nil
		}
		return []int{offset, offset + 1}, 100, nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 3, calls)
}

func TestCollectPages_DefaultLimit(t *testing.T) {
	var limits []int
	_, err := collectPages(context.Background(), 0, func(ctx context.Context, offset, limit int) ([]string, int, error) {
		limits = append(limits, limit)
		return nil, 0, nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{itemPageSize}, limits)
}

func TestCollectPages_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	_, err := collectPages(context.Background(), 10, func(ctx context.Context, offset, limit int) ([]int, int, error) {
		if offset > 0 {
			return nil, 0, boom
		}
		return make([]int, 10), 30, nil
	}, nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "offset 10")
}

func TestCollectPages_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collectPages(ctx, 10, func(ctx context.Context, offset, limit int) ([]int, int, error) {
		t.Fatal("page fetched after cancel")
		return nil, 0, nil
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

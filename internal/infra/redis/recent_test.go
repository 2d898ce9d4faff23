package redis

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchEncoding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3,1,20", encodeBatch([]int64{3, 1, 20}))

	ids, err := decodeBatch("3,1,20")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 20}, ids)

	ids, err = decodeBatch("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = decodeBatch("3,x")
	assert.Error(t, err)

	assert.Equal(t, "lexiquiz:recent:42", recentKey(42))
}

func TestRecentWindow_Redis(t *testing.T) {
	addr := os.Getenv("LEXIQUIZ_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEXIQUIZ_TEST_REDIS_ADDR is not set")
	}

	ctx := context.Background()
	rdb, err := NewClient(ctx, Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Del(ctx, recentKey(900)).Err())

	w := NewRecentWindow(rdb, 2)

	got, err := w.Recent(ctx, 900, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, w.Push(ctx, 900, []int64{1, 2}))
	require.NoError(t, w.Push(ctx, 900, []int64{2, 3}))
	require.NoError(t, w.Push(ctx, 900, []int64{4}))

	got, err = w.Recent(ctx, 900, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2, 3}, got)

	got, err = w.Recent(ctx, 900, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, got)
}

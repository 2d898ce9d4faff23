package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

const keyPrefix = "lexiquiz:recent:"

// RecentWindow keeps the last presented question batches of every user in a Redis list,
// newest batch first.
type RecentWindow struct {
	rdb  goredis.Cmdable
	size int
}

// NewRecentWindow creates a window keeping size batches per user.
func NewRecentWindow(rdb goredis.Cmdable, size int) *RecentWindow {
	if size <= 0 {
		size = 5
	}
	return &RecentWindow{rdb: rdb, size: size}
}

// Push records one batch and trims the list to the window size atomically.
func (w *RecentWindow) Push(ctx context.Context, userID int64, questionIDs []int64) error {
	if len(questionIDs) == 0 {
		return nil
	}

	key := recentKey(userID)
	_, err := w.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, key, encodeBatch(questionIDs))
		pipe.LTrim(ctx, key, 0, int64(w.size-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("push recent questions: %w: %w", entities.ErrStorageUnavailable, err)
	}
	return nil
}

// Recent returns the distinct question ids of the last n batches, newest first.
func (w *RecentWindow) Recent(ctx context.Context, userID int64, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}

	batches, err := w.rdb.LRange(ctx, recentKey(userID), 0, int64(min(n, w.size)-1)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recent questions: %w: %w", entities.ErrStorageUnavailable, err)
	}

	seen := make(map[int64]struct{})
	var out []int64
	for _, raw := range batches {
		ids, err := decodeBatch(raw)
		if err != nil {
			return nil, fmt.Errorf("decode recent batch: %w", err)
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

func recentKey(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

func encodeBatch(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func decodeBatch(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

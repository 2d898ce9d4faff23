package storage

import (
	"context"
	"sync"
)

// DefaultRecentWindowSize is the number of batches kept per user.
const DefaultRecentWindowSize = 5

// RecentWindow keeps the last presented question batches of every user in memory.
type RecentWindow struct {
	mu      sync.RWMutex
	size    int
	batches map[int64][][]int64 // newest first
}

// NewRecentWindow creates a window keeping size batches per user.
func NewRecentWindow(size int) *RecentWindow {
	if size <= 0 {
		size = DefaultRecentWindowSize
	}
	return &RecentWindow{
		size:    size,
		batches: make(map[int64][][]int64),
	}
}

// Push records one batch and evicts the oldest batches beyond the window size.
func (w *RecentWindow) Push(_ context.Context, userID int64, questionIDs []int64) error {
	if len(questionIDs) == 0 {
		return nil
	}

	batch := append([]int64(nil), questionIDs...)

	w.mu.Lock()
	defer w.mu.Unlock()

	cur := w.batches[userID]
	next := make([][]int64, 0, min(len(cur)+1, w.size))
	next = append(next, batch)
	for _, b := range cur {
		if len(next) == w.size {
			break
		}
		next = append(next, b)
	}
	w.batches[userID] = next
	return nil
}

// Recent returns the distinct question ids of the last n batches.
func (w *RecentWindow) Recent(_ context.Context, userID int64, n int) ([]int64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	cur := w.batches[userID]
	if n > len(cur) {
		n = len(cur)
	}

	seen := make(map[int64]struct{})
	var out []int64
	for _, b := range cur[:max(n, 0)] {
		for _, id := range b {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

package repository

import (
	"context"

	"github.com/aliskhannn/lexiquiz/internal/infra/postgres"
)

// RecentWindowRepository keeps the last presented question batches of every user.
type RecentWindowRepository struct {
	db   postgres.DBTX
	size int
}

// NewRecentWindowRepository creates a window keeping size batches per user.
func NewRecentWindowRepository(db postgres.DBTX, size int) *RecentWindowRepository {
	if size <= 0 {
		size = 5
	}
	return &RecentWindowRepository{db: db, size: size}
}

// Push records one batch and evicts the oldest batches beyond the window size.
func (r *RecentWindowRepository) Push(ctx context.Context, userID int64, questionIDs []int64) error {
	if len(questionIDs) == 0 {
		return nil
	}

	// The DELETE does not see the row inserted by the same statement, so it keeps size-1 older batches.
	query := `
		WITH inserted AS (
			INSERT INTO recent_question_batches (user_id, question_ids)
			VALUES ($1, $2)
			RETURNING id
		)
		DELETE FROM recent_question_batches
		WHERE user_id = $1
		  AND id NOT IN (SELECT id FROM inserted)
		  AND id NOT IN (
			SELECT id FROM recent_question_batches
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT $3
		  )
	`

	if _, err := r.db.Exec(ctx, query, userID, questionIDs, r.size-1); err != nil {
		return wrapErr("push recent questions", err)
	}
	return nil
}

// Recent returns the distinct question ids of the last n batches, newest first.
func (r *RecentWindowRepository) Recent(ctx context.Context, userID int64, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}

	query := `
		SELECT question_ids
		FROM recent_question_batches
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, min(n, r.size))
	if err != nil {
		return nil, wrapErr("get recent questions", err)
	}
	defer rows.Close()

	seen := make(map[int64]struct{})
	var out []int64
	for rows.Next() {
		var batch []int64
		if err := rows.Scan(&batch); err != nil {
			return nil, wrapErr("scan recent batch", err)
		}
		for _, id := range batch {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get recent questions", err)
	}

	return out, nil
}

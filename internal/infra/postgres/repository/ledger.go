package repository

import (
	"context"
	"sort"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/infra/postgres"
)

// LedgerRepository provides access to the mastery ledger and the derived word mastery.
type LedgerRepository struct {
	db postgres.DBTX
}

// NewLedgerRepository creates a new LedgerRepository with the provided database handle.
func NewLedgerRepository(db postgres.DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// LockWords takes a row lock per (user, word) in sorted order. The locks are held
// until the surrounding transaction ends.
func (r *LedgerRepository) LockWords(ctx context.Context, userID int64, words []string) error {
	if len(words) == 0 {
		return nil
	}
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)

	_, err := r.db.Exec(ctx, `
		INSERT INTO word_locks (user_id, word)
		SELECT $1::bigint, w FROM unnest($2::text[]) AS w ORDER BY w
		ON CONFLICT DO NOTHING
	`, userID, sorted)
	if err != nil {
		return wrapErr("create word locks", err)
	}

	_, err = r.db.Exec(ctx, `
		SELECT word FROM word_locks
		WHERE user_id = $1 AND word = ANY($2)
		ORDER BY word
		FOR UPDATE
	`, userID, sorted)
	if err != nil {
		return wrapErr("lock words", err)
	}
	return nil
}

const ledgerColumns = `
	user_id, word, question_id, first_try_correct, total_attempts,
	mastered, last_attempt_at, mastered_at
`

// GetEntriesForUpdate returns the existing entries of (user, question) for the given words, keyed by word.
func (r *LedgerRepository) GetEntriesForUpdate(
	ctx context.Context, userID, questionID int64, words []string,
) (map[string]*entities.LedgerEntry, error) {
	out := make(map[string]*entities.LedgerEntry, len(words))
	if len(words) == 0 {
		return out, nil
	}

	query := `
		SELECT ` + ledgerColumns + `
		FROM mastery_ledger
		WHERE user_id = $1 AND question_id = $2 AND word = ANY($3)
		FOR UPDATE
	`

	rows, err := r.db.Query(ctx, query, userID, questionID, words)
	if err != nil {
		return nil, wrapErr("get ledger entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		e := new(entities.LedgerEntry)
		if err := rows.Scan(
			&e.UserID, &e.Word, &e.QuestionID, &e.FirstTryCorrect, &e.TotalAttempts,
			&e.Mastered, &e.LastAttemptAt, &e.MasteredAt,
		); err != nil {
			return nil, wrapErr("scan ledger entry", err)
		}
		out[e.Word] = e
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get ledger entries", err)
	}

	return out, nil
}

// UpsertEntry creates or updates a ledger entry.
func (r *LedgerRepository) UpsertEntry(ctx context.Context, e *entities.LedgerEntry) error {
	query := `
		INSERT INTO mastery_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, word, question_id) DO UPDATE SET
			first_try_correct = EXCLUDED.first_try_correct,
			total_attempts = EXCLUDED.total_attempts,
			mastered = EXCLUDED.mastered,
			last_attempt_at = EXCLUDED.last_attempt_at,
			mastered_at = COALESCE(mastery_ledger.mastered_at, EXCLUDED.mastered_at)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		e.UserID,
		e.Word,
		e.QuestionID,
		e.FirstTryCorrect,
		e.TotalAttempts,
		e.Mastered,
		e.LastAttemptAt,
		e.MasteredAt,
	)
	if err != nil {
		return wrapErr("upsert ledger entry", err)
	}

	return nil
}

// GetWordEntries returns every ledger entry of (user, word) ordered by question.
func (r *LedgerRepository) GetWordEntries(ctx context.Context, userID int64, word string) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM mastery_ledger
		WHERE user_id = $1 AND word = $2
		ORDER BY question_id
	`

	rows, err := r.db.Query(ctx, query, userID, word)
	if err != nil {
		return nil, wrapErr("get word entries", err)
	}
	defer rows.Close()

	var out []*entities.LedgerEntry
	for rows.Next() {
		e := new(entities.LedgerEntry)
		if err := rows.Scan(
			&e.UserID, &e.Word, &e.QuestionID, &e.FirstTryCorrect, &e.TotalAttempts,
			&e.Mastered, &e.LastAttemptAt, &e.MasteredAt,
		); err != nil {
			return nil, wrapErr("scan ledger entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get word entries", err)
	}

	return out, nil
}

// UserWords lists the distinct words the user has ledger entries for.
func (r *LedgerRepository) UserWords(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT word FROM mastery_ledger WHERE user_id = $1 ORDER BY word`, userID)
	if err != nil {
		return nil, wrapErr("list user words", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, wrapErr("scan word", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list user words", err)
	}

	return out, nil
}

// UsersForWords returns, per user, the words among words that have ledger entries.
func (r *LedgerRepository) UsersForWords(ctx context.Context, words []string) (map[int64][]string, error) {
	query := `
		SELECT user_id, array_agg(DISTINCT word ORDER BY word)
		FROM mastery_ledger
		WHERE word = ANY($1)
		GROUP BY user_id
	`

	rows, err := r.db.Query(ctx, query, words)
	if err != nil {
		return nil, wrapErr("list users for words", err)
	}
	defer rows.Close()

	out := make(map[int64][]string)
	for rows.Next() {
		var (
			userID int64
			ws     []string
		)
		if err := rows.Scan(&userID, &ws); err != nil {
			return nil, wrapErr("scan user words", err)
		}
		out[userID] = ws
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list users for words", err)
	}

	return out, nil
}

// CountUserQuestions returns how many distinct questions the user attempted and mastered.
func (r *LedgerRepository) CountUserQuestions(ctx context.Context, userID int64) (int, int, error) {
	query := `
		SELECT
			count(DISTINCT question_id) FILTER (WHERE total_attempts > 0),
			count(DISTINCT question_id) FILTER (WHERE mastered)
		FROM mastery_ledger
		WHERE user_id = $1
	`

	var attempted, mastered int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&attempted, &mastered); err != nil {
		return 0, 0, wrapErr("count user questions", err)
	}
	return attempted, mastered, nil
}

// SaveWordMastery replaces every derived row of (user, word).
func (r *LedgerRepository) SaveWordMastery(ctx context.Context, word entities.WordMastery, byCategory []entities.WordMastery) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM word_mastery WHERE user_id = $1 AND word = $2`, word.UserID, word.Word,
	); err != nil {
		return wrapErr("clear word mastery", err)
	}

	query := `
		INSERT INTO word_mastery (
			user_id, word, category, total_questions, mastered_questions, mastery_pct, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, m := range append([]entities.WordMastery{word}, byCategory...) {
		_, err := r.db.Exec(
			ctx,
			query,
			m.UserID,
			m.Word,
			string(m.Category),
			m.TotalQuestions,
			m.MasteredQuestions,
			m.MasteryPct,
			m.UpdatedAt,
		)
		if err != nil {
			return wrapErr("save word mastery", err)
		}
	}

	return nil
}

// DeleteWordMastery drops every derived row of the user.
func (r *LedgerRepository) DeleteWordMastery(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM word_mastery WHERE user_id = $1`, userID); err != nil {
		return wrapErr("delete word mastery", err)
	}
	return nil
}

// GetWordMastery returns the word-level rows of the user.
func (r *LedgerRepository) GetWordMastery(ctx context.Context, userID int64) ([]entities.WordMastery, error) {
	return r.mastery(ctx, "get word mastery", `
		SELECT user_id, word, category, total_questions, mastered_questions, mastery_pct, updated_at
		FROM word_mastery
		WHERE user_id = $1 AND category = ''
		ORDER BY word
	`, userID)
}

// GetWordMasteryByCategory returns the per-category rows of the user.
func (r *LedgerRepository) GetWordMasteryByCategory(ctx context.Context, userID int64) ([]entities.WordMastery, error) {
	return r.mastery(ctx, "get word mastery by category", `
		SELECT user_id, word, category, total_questions, mastered_questions, mastery_pct, updated_at
		FROM word_mastery
		WHERE user_id = $1 AND category <> ''
		ORDER BY word, category
	`, userID)
}

func (r *LedgerRepository) mastery(ctx context.Context, op, query string, userID int64) ([]entities.WordMastery, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	var out []entities.WordMastery
	for rows.Next() {
		var (
			m        entities.WordMastery
			category string
		)
		if err := rows.Scan(
			&m.UserID, &m.Word, &category, &m.TotalQuestions, &m.MasteredQuestions, &m.MasteryPct, &m.UpdatedAt,
		); err != nil {
			return nil, wrapErr("scan word mastery", err)
		}
		m.Category = entities.Category(category)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}

	return out, nil
}

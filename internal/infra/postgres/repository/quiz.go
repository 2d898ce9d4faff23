package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/infra/postgres"
)

// QuizRepository provides access to quiz sessions, their rounds and responses.
type QuizRepository struct {
	db postgres.DBTX
}

// NewQuizRepository creates a new QuizRepository with the provided database handle.
func NewQuizRepository(db postgres.DBTX) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create inserts a session together with the rounds it already holds.
func (r *QuizRepository) Create(ctx context.Context, s *entities.QuizSession) error {
	query := `
		INSERT INTO quiz_sessions (
			id, user_id, mode, status, current_round, requested_count,
			original_question_ids, version, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		s.ID,
		s.UserID,
		string(s.Mode),
		string(s.Status),
		s.CurrentRound,
		s.RequestedCount,
		s.OriginalQuestionIDs,
		s.Version,
		s.StartedAt,
		s.CompletedAt,
	)
	if err != nil {
		return wrapErr("create quiz session", err)
	}

	for _, round := range s.Rounds {
		if err := r.SaveRound(ctx, s.ID, round); err != nil {
			return err
		}
	}

	return nil
}

const sessionColumns = `
	id, user_id, mode, status, current_round, requested_count,
	original_question_ids, version, started_at, completed_at
`

// GetForUpdate retrieves a session with a row-level lock held until the transaction ends.
func (r *QuizRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entities.QuizSession, error) {
	return r.get(ctx, `SELECT `+sessionColumns+` FROM quiz_sessions WHERE id = $1 FOR UPDATE`, id)
}

// Get retrieves a session with its rounds.
func (r *QuizRepository) Get(ctx context.Context, id uuid.UUID) (*entities.QuizSession, error) {
	return r.get(ctx, `SELECT `+sessionColumns+` FROM quiz_sessions WHERE id = $1`, id)
}

func (r *QuizRepository) get(ctx context.Context, query string, id uuid.UUID) (*entities.QuizSession, error) {
	var (
		s            entities.QuizSession
		mode, status string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.UserID,
		&mode,
		&status,
		&s.CurrentRound,
		&s.RequestedCount,
		&s.OriginalQuestionIDs,
		&s.Version,
		&s.StartedAt,
		&s.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, wrapErr("get quiz session", err)
	}
	s.Mode = entities.SessionMode(mode)
	s.Status = entities.SessionStatus(status)

	s.Rounds, err = r.rounds(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *QuizRepository) rounds(ctx context.Context, sessionID uuid.UUID) ([]*entities.Round, error) {
	query := `
		SELECT number, question_ids, correct_count, total_count, score_pct,
		       is_perfect, first_try_words, started_at, graded_at
		FROM quiz_rounds
		WHERE session_id = $1
		ORDER BY number
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, wrapErr("get quiz rounds", err)
	}
	defer rows.Close()

	var out []*entities.Round
	byNumber := make(map[int]*entities.Round)
	for rows.Next() {
		round := new(entities.Round)
		if err := rows.Scan(
			&round.Number,
			&round.QuestionIDs,
			&round.CorrectCount,
			&round.TotalCount,
			&round.ScorePct,
			&round.IsPerfect,
			&round.FirstTryWords,
			&round.StartedAt,
			&round.GradedAt,
		); err != nil {
			return nil, wrapErr("scan quiz round", err)
		}
		out = append(out, round)
		byNumber[round.Number] = round
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get quiz rounds", err)
	}

	respRows, err := r.db.Query(ctx, `
		SELECT round, question_id, answer, is_correct, is_first_attempt, answered_at
		FROM quiz_responses
		WHERE session_id = $1
		ORDER BY round, position
	`, sessionID)
	if err != nil {
		return nil, wrapErr("get quiz responses", err)
	}
	defer respRows.Close()

	for respRows.Next() {
		var (
			number int
			resp   entities.Response
		)
		if err := respRows.Scan(
			&number, &resp.QuestionID, &resp.Answer, &resp.IsCorrect, &resp.IsFirstAttempt, &resp.AnsweredAt,
		); err != nil {
			return nil, wrapErr("scan quiz response", err)
		}
		if round, ok := byNumber[number]; ok {
			round.Responses = append(round.Responses, resp)
		}
	}
	if err := respRows.Err(); err != nil {
		return nil, wrapErr("get quiz responses", err)
	}

	return out, nil
}

// SaveRound creates or replaces a round and its responses.
func (r *QuizRepository) SaveRound(ctx context.Context, sessionID uuid.UUID, round *entities.Round) error {
	if round.Number > 1 {
		var prev bool
		err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM quiz_rounds WHERE session_id = $1 AND number = $2)`,
			sessionID, round.Number-1,
		).Scan(&prev)
		if err != nil {
			return wrapErr("check previous round", err)
		}
		if !prev {
			return fmt.Errorf("save round: round %d out of sequence", round.Number)
		}
	}

	query := `
		INSERT INTO quiz_rounds (
			session_id, number, question_ids, correct_count, total_count, score_pct,
			is_perfect, first_try_words, started_at, graded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (session_id, number) DO UPDATE SET
			question_ids = EXCLUDED.question_ids,
			correct_count = EXCLUDED.correct_count,
			total_count = EXCLUDED.total_count,
			score_pct = EXCLUDED.score_pct,
			is_perfect = EXCLUDED.is_perfect,
			first_try_words = EXCLUDED.first_try_words,
			graded_at = EXCLUDED.graded_at
	`

	_, err := r.db.Exec(
		ctx,
		query,
		sessionID,
		round.Number,
		round.QuestionIDs,
		round.CorrectCount,
		round.TotalCount,
		round.ScorePct,
		round.IsPerfect,
		round.FirstTryWords,
		round.StartedAt,
		round.GradedAt,
	)
	if err != nil {
		return wrapErr("save quiz round", err)
	}

	if _, err := r.db.Exec(ctx,
		`DELETE FROM quiz_responses WHERE session_id = $1 AND round = $2`, sessionID, round.Number,
	); err != nil {
		return wrapErr("clear quiz responses", err)
	}

	for i, resp := range round.Responses {
		_, err := r.db.Exec(ctx, `
			INSERT INTO quiz_responses (
				session_id, round, position, question_id, answer, is_correct, is_first_attempt, answered_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, sessionID, round.Number, i, resp.QuestionID, resp.Answer, resp.IsCorrect, resp.IsFirstAttempt, resp.AnsweredAt)
		if err != nil {
			return wrapErr("save quiz response", err)
		}
	}

	return nil
}

// Update updates a quiz session using optimistic locking.
func (r *QuizRepository) Update(ctx context.Context, s *entities.QuizSession) error {
	query := `
		UPDATE quiz_sessions
		SET status = $1,
		    current_round = $2,
		    completed_at = $3,
		    version = version + 1
		WHERE id = $4 AND version = $5
	`

	result, err := r.db.Exec(
		ctx,
		query,
		string(s.Status),
		s.CurrentRound,
		s.CompletedAt,
		s.ID,
		s.Version,
	)
	if err != nil {
		return wrapErr("update quiz session", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quiz_sessions WHERE id = $1)`, s.ID).Scan(&exists)
		if err != nil {
			return wrapErr("check quiz session", err)
		}
		if !exists {
			return entities.ErrSessionNotFound
		}
		return entities.ErrVersionConflict
	}

	// Increment version locally
	s.Version++

	return nil
}

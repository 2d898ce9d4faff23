package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/infra/postgres"
)

// ContentRepository provides read access to words and questions, plus the seeding writes.
type ContentRepository struct {
	db postgres.DBTX
}

// NewContentRepository creates a new ContentRepository with the provided database handle.
func NewContentRepository(db postgres.DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

const questionColumns = `
	q.id, q.category, q.text, q.correct_answer, q.options, q.difficulty, q.active,
	COALESCE(array_agg(m.word ORDER BY m.word) FILTER (WHERE m.word IS NOT NULL), '{}')
`

// GetActiveQuestions returns the active questions matching filter ordered by id.
func (r *ContentRepository) GetActiveQuestions(ctx context.Context, filter entities.QuestionFilter) ([]*entities.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions q
		LEFT JOIN word_question_map m ON m.question_id = q.id
		WHERE q.active AND ($1 = '' OR q.category = $1)
		GROUP BY q.id
		ORDER BY q.id
	`

	rows, err := r.db.Query(ctx, query, string(filter.Category))
	if err != nil {
		return nil, wrapErr("get active questions", err)
	}
	defer rows.Close()

	var out []*entities.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, wrapErr("scan question", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get active questions", err)
	}

	return out, nil
}

// GetQuestionsByIDs returns the questions in the order of ids.
// Inactive questions are returned too, so running sessions keep their content.
func (r *ContentRepository) GetQuestionsByIDs(ctx context.Context, ids []int64) ([]*entities.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + questionColumns + `
		FROM questions q
		LEFT JOIN word_question_map m ON m.question_id = q.id
		WHERE q.id = ANY($1)
		GROUP BY q.id
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, wrapErr("get questions by ids", err)
	}
	defer rows.Close()

	byID := make(map[int64]*entities.Question, len(ids))
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, wrapErr("scan question", err)
		}
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get questions by ids", err)
	}

	out := make([]*entities.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", entities.ErrQuestionNotFound, id)
		}
		out = append(out, q)
	}
	return out, nil
}

// GetWordsForQuestion returns the words associated with a question.
func (r *ContentRepository) GetWordsForQuestion(ctx context.Context, questionID int64) ([]string, error) {
	query := `
		SELECT m.word
		FROM questions q
		LEFT JOIN word_question_map m ON m.question_id = q.id
		WHERE q.id = $1
		ORDER BY m.word
	`

	rows, err := r.db.Query(ctx, query, questionID)
	if err != nil {
		return nil, wrapErr("get words for question", err)
	}
	defer rows.Close()

	found := false
	var words []string
	for rows.Next() {
		found = true
		var w *string
		if err := rows.Scan(&w); err != nil {
			return nil, wrapErr("scan word", err)
		}
		if w != nil {
			words = append(words, *w)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get words for question", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", entities.ErrQuestionNotFound, questionID)
	}

	return words, nil
}

// GetQuestionsForWord returns the active questions associated with a word.
func (r *ContentRepository) GetQuestionsForWord(ctx context.Context, word string) ([]entities.WordQuestion, error) {
	query := `
		SELECT m.word, q.id, q.category
		FROM word_question_map m
		JOIN questions q ON q.id = m.question_id
		WHERE m.word = $1 AND q.active
		ORDER BY q.id
	`

	rows, err := r.db.Query(ctx, query, word)
	if err != nil {
		return nil, wrapErr("get questions for word", err)
	}
	defer rows.Close()

	var out []entities.WordQuestion
	for rows.Next() {
		var (
			wq       entities.WordQuestion
			category string
		)
		if err := rows.Scan(&wq.Word, &wq.QuestionID, &category); err != nil {
			return nil, wrapErr("scan word question", err)
		}
		wq.Category = entities.Category(category)
		out = append(out, wq)
	}

	return out, wrapRowsErr("get questions for word", rows.Err())
}

// ListCategories returns every category with its number of active questions.
func (r *ContentRepository) ListCategories(ctx context.Context) ([]entities.CategoryCount, error) {
	query := `
		SELECT category, count(*)
		FROM questions
		WHERE active
		GROUP BY category
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list categories", err)
	}
	defer rows.Close()

	counts := make(map[entities.Category]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, wrapErr("scan category", err)
		}
		counts[entities.Category(category)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list categories", err)
	}

	out := make([]entities.CategoryCount, 0, len(entities.Categories))
	for _, c := range entities.Categories {
		out = append(out, entities.CategoryCount{Category: c, QuestionCount: counts[c]})
	}
	return out, nil
}

// AddWord normalizes and stores a word.
func (r *ContentRepository) AddWord(ctx context.Context, w entities.Word) error {
	w.Text = entities.NormalizeWord(w.Text)
	if w.Text == "" {
		return fmt.Errorf("add word: empty text")
	}
	return r.UpsertWord(ctx, w)
}

// AddQuestion validates q and stores it with the words of its answer, its options and q.Words.
func (r *ContentRepository) AddQuestion(ctx context.Context, q *entities.Question) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, fmt.Errorf("add question: %w", err)
	}

	words := q.AssociatedWords()
	for _, w := range q.Words {
		if n := entities.NormalizeWord(w); n != "" && !containsWord(words, n) {
			words = append(words, n)
		}
	}

	id, err := r.UpsertQuestion(ctx, q, words)
	if err != nil {
		return 0, fmt.Errorf("add question: %w", err)
	}
	return id, nil
}

// UpsertWord creates a word or updates its meaning; an empty meaning keeps the stored one.
func (r *ContentRepository) UpsertWord(ctx context.Context, w entities.Word) error {
	query := `
		INSERT INTO words (text, meaning) VALUES ($1, $2)
		ON CONFLICT (text) DO UPDATE SET
			meaning = CASE WHEN EXCLUDED.meaning = '' THEN words.meaning ELSE EXCLUDED.meaning END
	`

	if _, err := r.db.Exec(ctx, query, w.Text, w.Meaning); err != nil {
		return wrapErr("upsert word", err)
	}
	return nil
}

// UpsertQuestion stores a question and replaces its word associations.
// A question with an id is updated in place, one without gets a new id.
func (r *ContentRepository) UpsertQuestion(ctx context.Context, q *entities.Question, words []string) (int64, error) {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	difficulty := q.Difficulty
	if difficulty == "" {
		difficulty = entities.DifficultyMedium
	}

	var id int64
	if q.ID == 0 {
		query := `
			INSERT INTO questions (category, text, correct_answer, options, difficulty, active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		err := r.db.QueryRow(ctx, query,
			string(q.Category), q.Text, q.CorrectAnswer, options, string(difficulty), q.Active,
		).Scan(&id)
		if err != nil {
			return 0, wrapErr("insert question", err)
		}
	} else {
		query := `
			INSERT INTO questions (id, category, text, correct_answer, options, difficulty, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				category = EXCLUDED.category,
				text = EXCLUDED.text,
				correct_answer = EXCLUDED.correct_answer,
				options = EXCLUDED.options,
				difficulty = EXCLUDED.difficulty,
				active = EXCLUDED.active
			RETURNING id
		`
		err := r.db.QueryRow(ctx, query,
			q.ID, string(q.Category), q.Text, q.CorrectAnswer, options, string(difficulty), q.Active,
		).Scan(&id)
		if err != nil {
			return 0, wrapErr("upsert question", err)
		}

		// Keep the serial ahead of explicit ids.
		_, err = r.db.Exec(ctx,
			`SELECT setval(pg_get_serial_sequence('questions', 'id'), GREATEST((SELECT max(id) FROM questions), 1))`)
		if err != nil {
			return 0, wrapErr("advance question sequence", err)
		}
	}

	if _, err := r.db.Exec(ctx, `INSERT INTO words (text) SELECT unnest($1::text[]) ON CONFLICT DO NOTHING`, words); err != nil {
		return 0, wrapErr("insert question words", err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM word_question_map WHERE question_id = $1`, id); err != nil {
		return 0, wrapErr("clear word associations", err)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO word_question_map (word, question_id) SELECT unnest($1::text[]), $2::bigint`, words, id)
	if err != nil {
		return 0, wrapErr("associate words", err)
	}

	return id, nil
}

// SetQuestionActive toggles whether a question can be selected.
func (r *ContentRepository) SetQuestionActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE questions SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return wrapErr("set question active", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", entities.ErrQuestionNotFound, id)
	}
	return nil
}

func scanQuestion(row pgx.Row) (*entities.Question, error) {
	var (
		q                    entities.Question
		category, difficulty string
	)
	err := row.Scan(&q.ID, &category, &q.Text, &q.CorrectAnswer, &q.Options, &difficulty, &q.Active, &q.Words)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrQuestionNotFound
		}
		return nil, err
	}
	q.Category = entities.Category(category)
	q.Difficulty = entities.Difficulty(difficulty)
	return &q, nil
}

func containsWord(list []string, w string) bool {
	for _, v := range list {
		if v == w {
			return true
		}
	}
	return false
}

func wrapRowsErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return wrapErr(op, err)
}

package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

//go:generate mockgen -destination=mock/mock_contracts.go -package=mock_service . ContentStore,RecentWindow

// ContentStore is the read-only view of words, questions and their associations.
type ContentStore interface {
	// GetActiveQuestions returns active questions with Words populated.
	GetActiveQuestions(ctx context.Context, filter entities.QuestionFilter) ([]*entities.Question, error)
	// GetQuestionsByIDs returns the questions in the order of ids; unknown ids are an error.
	GetQuestionsByIDs(ctx context.Context, ids []int64) ([]*entities.Question, error)
	GetWordsForQuestion(ctx context.Context, questionID int64) ([]string, error)
	// GetQuestionsForWord returns the active questions associated with word.
	GetQuestionsForWord(ctx context.Context, word string) ([]entities.WordQuestion, error)
	ListCategories(ctx context.Context) ([]entities.CategoryCount, error)
}

// ContentWriter changes content inside a unit of work.
type ContentWriter interface {
	AddWord(ctx context.Context, w entities.Word) error
	// AddQuestion validates q, stores it with its word associations and returns its id.
	AddQuestion(ctx context.Context, q *entities.Question) (int64, error)
	SetQuestionActive(ctx context.Context, id int64, active bool) error
}

// LedgerRepository persists ledger entries and the derived word mastery rows.
type LedgerRepository interface {
	// LockWords serializes writers touching the same (user, word) derived rows.
	// Words must be locked in a stable order.
	LockWords(ctx context.Context, userID int64, words []string) error
	GetEntriesForUpdate(ctx context.Context, userID, questionID int64, words []string) (map[string]*entities.LedgerEntry, error)
	UpsertEntry(ctx context.Context, e *entities.LedgerEntry) error
	GetWordEntries(ctx context.Context, userID int64, word string) ([]*entities.LedgerEntry, error)
	UserWords(ctx context.Context, userID int64) ([]string, error)
	// UsersForWords returns, per user, which of words have ledger entries.
	UsersForWords(ctx context.Context, words []string) (map[int64][]string, error)
	// CountUserQuestions counts the distinct questions the user attempted and mastered.
	CountUserQuestions(ctx context.Context, userID int64) (attempted, mastered int, err error)
	// SaveWordMastery replaces the word-level row and every per-category row of one word.
	SaveWordMastery(ctx context.Context, word entities.WordMastery, byCategory []entities.WordMastery) error
	DeleteWordMastery(ctx context.Context, userID int64) error
	GetWordMastery(ctx context.Context, userID int64) ([]entities.WordMastery, error)
	GetWordMasteryByCategory(ctx context.Context, userID int64) ([]entities.WordMastery, error)
}

// QuizRepository persists quiz sessions with their rounds and responses.
type QuizRepository interface {
	Create(ctx context.Context, s *entities.QuizSession) error
	// GetForUpdate loads a session and locks it for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entities.QuizSession, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.QuizSession, error)
	// SaveRound stores a freshly graded round or a newly started one.
	SaveRound(ctx context.Context, sessionID uuid.UUID, r *entities.Round) error
	// Update writes the session row guarded by its version and bumps it.
	Update(ctx context.Context, s *entities.QuizSession) error
}

// Repositories is the set of repositories bound to one unit of work.
type Repositories struct {
	Content       ContentStore
	Ledger        LedgerRepository
	Quiz          QuizRepository
	// ContentWriter is only set inside WithinTx.
	ContentWriter ContentWriter
}

// Store runs units of work. Every write of fn commits together or not at all.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	// Repos returns repositories for reads outside of a transaction.
	Repos() Repositories
}

// RecentWindow is the per-user sliding window of recently presented question batches.
type RecentWindow interface {
	// Push records one presented batch and evicts batches beyond the window size.
	Push(ctx context.Context, userID int64, questionIDs []int64) error
	// Recent returns the question ids of the last n batches.
	Recent(ctx context.Context, userID int64, batches int) ([]int64, error)
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/service"
	"github.com/aliskhannn/lexiquiz/internal/storage"
)

type engineConfig struct {
	store    service.Store
	selector service.SelectorConfig
	quiz     service.QuizConfig
}

type engine struct {
	mem      *storage.MemoryStore
	window   *storage.RecentWindow
	logs     *observer.ObservedLogs
	ledger   *service.LedgerService
	selector *service.QuestionSelector
	quiz     *service.QuizService
	mastery  *service.MasteryService
}

func newEngine(t *testing.T, mem *storage.MemoryStore, cfg engineConfig) *engine {
	t.Helper()

	if mem == nil {
		mem = storage.NewMemoryStore()
	}
	var store service.Store = mem
	if cfg.store != nil {
		store = cfg.store
	}
	if cfg.selector.Seed == 0 {
		cfg.selector.Seed = 42
	}
	if cfg.quiz == (service.QuizConfig{}) {
		cfg.quiz = service.QuizConfig{AllowShortQuiz: true}
	}

	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	window := storage.NewRecentWindow(5)
	ledger := service.NewLedgerService(store, 2, log)
	selector := service.NewQuestionSelector(store, window, cfg.selector, log)

	return &engine{
		mem:      mem,
		window:   window,
		logs:     logs,
		ledger:   ledger,
		selector: selector,
		quiz:     service.NewQuizService(store, ledger, selector, cfg.quiz, log),
		mastery:  service.NewMasteryService(store, log),
	}
}

func addQuestion(t *testing.T, mem *storage.MemoryStore, cat entities.Category, answer string, options ...string) *entities.Question {
	t.Helper()

	q := &entities.Question{
		Category:      cat,
		Text:          "choose: " + answer,
		CorrectAnswer: answer,
		Options:       options,
		Difficulty:    entities.DifficultyMedium,
		Active:        true,
	}
	id, err := mem.AddQuestion(context.Background(), q)
	require.NoError(t, err)

	q.ID = id
	return q
}

// answer builds a submission for q, correct or deliberately wrong.
func answer(q *entities.Question, correct bool) service.Submission {
	if correct {
		return service.Submission{QuestionID: q.ID, Answer: q.CorrectAnswer}
	}
	return service.Submission{QuestionID: q.ID, Answer: "definitely wrong"}
}

func questionIDs(qs []*entities.Question) []int64 {
	ids := make([]int64, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

func timeAt(minute int) time.Time {
	return time.Date(2024, time.March, 1, 10, minute, 0, 0, time.UTC)
}

// alwaysFirst treats every response as a first attempt.
type alwaysFirst struct{}

func (alwaysFirst) AnsweredBefore(int64) bool { return false }

// masterQuestion records two first-try correct answers for q.
func masterQuestion(t *testing.T, e *engine, userID int64, q *entities.Question) {
	t.Helper()
	for i := 0; i < 2; i++ {
		res, err := e.ledger.RecordResponse(context.Background(), userID, q.ID, q.CorrectAnswer, alwaysFirst{}, timeAt(i))
		require.NoError(t, err)
		require.True(t, res.IsCorrect)
	}
}

// faultyStore fails the n-th ledger upsert of its transactions.
type faultyStore struct {
	*storage.MemoryStore
	failAt  int
	upserts int
}

func (f *faultyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos service.Repositories) error) error {
	return f.MemoryStore.WithinTx(ctx, func(ctx context.Context, repos service.Repositories) error {
		repos.Ledger = &faultyLedger{LedgerRepository: repos.Ledger, store: f}
		return fn(ctx, repos)
	})
}

type faultyLedger struct {
	service.LedgerRepository
	store *faultyStore
}

func (l *faultyLedger) UpsertEntry(ctx context.Context, e *entities.LedgerEntry) error {
	l.store.upserts++
	if l.store.upserts == l.store.failAt {
		return entities.ErrStorageUnavailable
	}
	return l.LedgerRepository.UpsertEntry(ctx, e)
}

// contentStore swaps the content repository of a memory store.
type contentStore struct {
	*storage.MemoryStore
	content service.ContentStore
}

func (c *contentStore) Repos() service.Repositories {
	repos := c.MemoryStore.Repos()
	repos.Content = c.content
	return repos
}

func (c *contentStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos service.Repositories) error) error {
	return c.MemoryStore.WithinTx(ctx, func(ctx context.Context, repos service.Repositories) error {
		repos.Content = c.content
		return fn(ctx, repos)
	})
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/infra/postgres"
	"github.com/aliskhannn/lexiquiz/internal/service"
)

// Store binds the repositories to the engine's unit of work.
type Store struct {
	pool       *pgxpool.Pool
	transactor *postgres.Transactor
}

// NewStore creates a new Store on top of pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, transactor: postgres.NewTransactor(pool)}
}

// WithinTx runs fn with repositories bound to one database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos service.Repositories) error) error {
	return s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		repos := reposFor(tx)
		repos.ContentWriter = NewContentRepository(tx)
		return fn(ctx, repos)
	})
}

// Repos returns repositories running on the pool outside of any transaction.
func (s *Store) Repos() service.Repositories {
	return reposFor(s.pool)
}

func reposFor(db postgres.DBTX) service.Repositories {
	return service.Repositories{
		Content: NewContentRepository(db),
		Ledger:  NewLedgerRepository(db),
		Quiz:    NewQuizRepository(db),
	}
}

// AddWord creates a word or updates its meaning.
func (s *Store) AddWord(ctx context.Context, w entities.Word) error {
	return NewContentRepository(s.pool).AddWord(ctx, w)
}

// AddQuestion stores a question with its word associations in one transaction.
// Derived word mastery is left as is; service.ContentService refreshes it.
func (s *Store) AddQuestion(ctx context.Context, q *entities.Question) (int64, error) {
	var id int64
	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		id, err = NewContentRepository(tx).AddQuestion(ctx, q)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SetQuestionActive toggles whether a question can be selected.
func (s *Store) SetQuestionActive(ctx context.Context, id int64, active bool) error {
	return NewContentRepository(s.pool).SetQuestionActive(ctx, id, active)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

// ContentService writes content and keeps the derived word mastery of
// existing learners in step with it.
type ContentService struct {
	store  Store
	ledger *LedgerService
	logger *zap.Logger
	now    func() time.Time
}

// NewContentService creates a new ContentService.
func NewContentService(store Store, ledger *LedgerService, logger *zap.Logger) *ContentService {
	return &ContentService{
		store:  store,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// AddWord creates a word or updates its meaning.
func (s *ContentService) AddWord(ctx context.Context, w entities.Word) error {
	const op = "content.AddWord"

	if entities.NormalizeWord(w.Text) == "" {
		return newError(KindValidation, op, ErrInvalidWord)
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		return repos.ContentWriter.AddWord(ctx, w)
	})
	return wrap(op, err)
}

// AddQuestion stores a question and, in the same transaction, recomputes the
// mastery of every learner whose words gained or lost the question.
func (s *ContentService) AddQuestion(ctx context.Context, q *entities.Question) (int64, error) {
	const op = "content.AddQuestion"

	if err := q.Validate(); err != nil {
		return 0, newError(KindValidation, op, err)
	}

	var (
		id        int64
		refreshed int
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var before []string
		if q.ID != 0 {
			words, err := repos.Content.GetWordsForQuestion(ctx, q.ID)
			if err != nil && !errors.Is(err, entities.ErrQuestionNotFound) {
				return fmt.Errorf("get words for question: %w", err)
			}
			before = words
		}

		var err error
		id, err = repos.ContentWriter.AddQuestion(ctx, q)
		if err != nil {
			return err
		}

		after, err := repos.Content.GetWordsForQuestion(ctx, id)
		if err != nil {
			return fmt.Errorf("get words for question: %w", err)
		}

		refreshed, err = s.ledger.refreshWords(ctx, repos, append(before, after...), s.now())
		return err
	})
	if err != nil {
		return 0, wrap(op, err)
	}

	if refreshed > 0 {
		s.logger.Debug("word mastery refreshed after content change",
			zap.Int64("question_id", id),
			zap.Int("rows", refreshed),
		)
	}

	return id, nil
}

// SetQuestionActive toggles whether a question can be selected and recomputes
// the mastery of the learners of its words.
func (s *ContentService) SetQuestionActive(ctx context.Context, id int64, active bool) error {
	const op = "content.SetQuestionActive"

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		words, err := repos.Content.GetWordsForQuestion(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.ContentWriter.SetQuestionActive(ctx, id, active); err != nil {
			return err
		}
		_, err = s.ledger.refreshWords(ctx, repos, words, s.now())
		return err
	})
	return wrap(op, err)
}

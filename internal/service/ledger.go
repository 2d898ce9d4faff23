package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

// AttemptHistory tells whether a question was already answered before the current response.
type AttemptHistory interface {
	AnsweredBefore(questionID int64) bool
}

// RecordResult is the outcome of recording one response.
type RecordResult struct {
	QuestionID     int64
	IsCorrect      bool
	IsFirstAttempt bool
	Words          []string // words whose ledger entries were touched
	NewlyMastered  []string // words whose entry for this question became mastered
}

// LedgerService is the only write path of the mastery ledger.
// Every ledger write recomputes the derived mastery of the touched words in the same transaction.
type LedgerService struct {
	store     Store
	validator *AnswerValidator
	threshold int
	logger    *zap.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store Store, threshold int, logger *zap.Logger) *LedgerService {
	if threshold <= 0 {
		threshold = entities.DefaultMasteryThreshold
	}
	return &LedgerService{
		store:     store,
		validator: NewAnswerValidator(),
		threshold: threshold,
		logger:    logger,
	}
}

// RecordResponse grades and records a single response in its own transaction.
// A nil history falls back to the ledger, where the attempt is first when no
// entry of the question has been attempted in any session. That fallback is
// meant for replays and tooling; quiz rounds always pass their session.
func (l *LedgerService) RecordResponse(
	ctx context.Context,
	userID, questionID int64,
	answer string,
	history AttemptHistory,
	occurredAt time.Time,
) (*RecordResult, error) {
	const op = "ledger.RecordResponse"

	if userID <= 0 {
		return nil, newError(KindValidation, op, ErrInvalidUser)
	}

	var res *RecordResult
	err := l.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		qs, err := repos.Content.GetQuestionsByIDs(ctx, []int64{questionID})
		if err != nil {
			return err
		}

		first := func(ctx context.Context, q *entities.Question, words []string) (bool, error) {
			if history != nil {
				return !history.AnsweredBefore(q.ID), nil
			}
			return l.firstByLedger(ctx, repos, userID, q.ID, words)
		}

		recs, _, err := l.recordAttempts(ctx, repos, userID, []attempt{{question: qs[0], answer: answer}}, first, occurredAt)
		if err != nil {
			return err
		}
		res = recs[0]
		return nil
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	return res, nil
}

// attempt is one response waiting to be written to the ledger.
type attempt struct {
	question *entities.Question
	answer   string
}

// firstAttemptFunc decides whether a response is the first attempt at q.
// It runs after the words of q are locked.
type firstAttemptFunc func(ctx context.Context, q *entities.Question, words []string) (bool, error)

// recordAttempts is the single ledger write path. It locks every word of the
// batch in a stable order, records each attempt and then recomputes every
// touched word in full. The caller owns the transaction.
func (l *LedgerService) recordAttempts(
	ctx context.Context,
	repos Repositories,
	userID int64,
	attempts []attempt,
	first firstAttemptFunc,
	at time.Time,
) ([]*RecordResult, []entities.WordMastery, error) {
	words := make([][]string, len(attempts))
	var all []string
	for i, a := range attempts {
		w, err := repos.Content.GetWordsForQuestion(ctx, a.question.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("get words for question: %w", err)
		}
		words[i] = w
		all = append(all, w...)
	}
	if err := repos.Ledger.LockWords(ctx, userID, uniqueWords(all)); err != nil {
		return nil, nil, fmt.Errorf("lock words: %w", err)
	}

	out := make([]*RecordResult, 0, len(attempts))
	var touched []string
	for i, a := range attempts {
		isFirst, err := first(ctx, a.question, words[i])
		if err != nil {
			return nil, nil, err
		}

		rec, err := l.record(ctx, repos, userID, a.question, words[i], a.answer, isFirst, at)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, rec)
		touched = append(touched, rec.Words...)
	}

	updates, err := l.recomputeWords(ctx, repos, userID, touched, at)
	if err != nil {
		return nil, nil, err
	}
	return out, updates, nil
}

// firstByLedger reports whether no ledger entry of the question was attempted yet.
func (l *LedgerService) firstByLedger(
	ctx context.Context, repos Repositories, userID, questionID int64, words []string,
) (bool, error) {
	entries, err := repos.Ledger.GetEntriesForUpdate(ctx, userID, questionID, words)
	if err != nil {
		return false, fmt.Errorf("get ledger entries: %w", err)
	}
	for _, e := range entries {
		if e.TotalAttempts > 0 {
			return false, nil
		}
	}
	return true, nil
}

// record applies one graded attempt to every ledger entry of the question.
// The words must be locked already.
func (l *LedgerService) record(
	ctx context.Context,
	repos Repositories,
	userID int64,
	q *entities.Question,
	words []string,
	answer string,
	isFirst bool,
	at time.Time,
) (*RecordResult, error) {
	res := &RecordResult{
		QuestionID:     q.ID,
		IsCorrect:      l.validator.Validate(answer, q.CorrectAnswer),
		IsFirstAttempt: isFirst,
	}

	// A question without words leaves the ledger untouched.
	if len(words) == 0 {
		return res, nil
	}

	entries, err := repos.Ledger.GetEntriesForUpdate(ctx, userID, q.ID, words)
	if err != nil {
		return nil, fmt.Errorf("get ledger entries: %w", err)
	}

	for _, w := range words {
		e, ok := entries[w]
		if !ok {
			e = entities.NewLedgerEntry(userID, w, q.ID)
		}

		if e.Apply(res.IsCorrect, res.IsFirstAttempt, l.threshold, at) {
			res.NewlyMastered = append(res.NewlyMastered, w)
		}

		if err := repos.Ledger.UpsertEntry(ctx, e); err != nil {
			return nil, fmt.Errorf("upsert ledger entry: %w", err)
		}
		res.Words = append(res.Words, w)
	}

	return res, nil
}

// recomputeWords fully recomputes the derived mastery of each word from the ledger.
func (l *LedgerService) recomputeWords(
	ctx context.Context, repos Repositories, userID int64, words []string, at time.Time,
) ([]entities.WordMastery, error) {
	out := make([]entities.WordMastery, 0, len(words))
	for _, w := range uniqueWords(words) {
		m, err := l.recomputeWord(ctx, repos, userID, w, at)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (l *LedgerService) recomputeWord(
	ctx context.Context, repos Repositories, userID int64, word string, at time.Time,
) (entities.WordMastery, error) {
	assoc, err := repos.Content.GetQuestionsForWord(ctx, word)
	if err != nil {
		return entities.WordMastery{}, fmt.Errorf("get questions for word: %w", err)
	}

	entries, err := repos.Ledger.GetWordEntries(ctx, userID, word)
	if err != nil {
		return entities.WordMastery{}, fmt.Errorf("get word entries: %w", err)
	}

	wm, byCategory := aggregate(userID, word, assoc, entries, at)
	if err := repos.Ledger.SaveWordMastery(ctx, wm, byCategory); err != nil {
		return entities.WordMastery{}, fmt.Errorf("save word mastery: %w", err)
	}

	return wm, nil
}

// RecomputeWord recomputes the derived mastery of one word for a user.
func (l *LedgerService) RecomputeWord(ctx context.Context, userID int64, word string) (entities.WordMastery, error) {
	const op = "ledger.RecomputeWord"

	word = entities.NormalizeWord(word)
	if userID <= 0 {
		return entities.WordMastery{}, newError(KindValidation, op, ErrInvalidUser)
	}
	if word == "" {
		return entities.WordMastery{}, newError(KindValidation, op, ErrInvalidWord)
	}

	var wm entities.WordMastery
	err := l.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		if err := repos.Ledger.LockWords(ctx, userID, []string{word}); err != nil {
			return fmt.Errorf("lock words: %w", err)
		}
		var err error
		wm, err = l.recomputeWord(ctx, repos, userID, word, time.Now())
		return err
	})
	if err != nil {
		return entities.WordMastery{}, wrap(op, err)
	}

	return wm, nil
}

// RebuildUser drops every derived row of the user and rebuilds them from the ledger alone.
func (l *LedgerService) RebuildUser(ctx context.Context, userID int64) ([]entities.WordMastery, error) {
	const op = "ledger.RebuildUser"

	if userID <= 0 {
		return nil, newError(KindValidation, op, ErrInvalidUser)
	}

	var out []entities.WordMastery
	err := l.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		words, err := repos.Ledger.UserWords(ctx, userID)
		if err != nil {
			return fmt.Errorf("list user words: %w", err)
		}
		words = uniqueWords(words)

		if err := repos.Ledger.LockWords(ctx, userID, words); err != nil {
			return fmt.Errorf("lock words: %w", err)
		}
		if err := repos.Ledger.DeleteWordMastery(ctx, userID); err != nil {
			return fmt.Errorf("delete word mastery: %w", err)
		}

		out, err = l.recomputeWords(ctx, repos, userID, words, time.Now())
		return err
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	l.logger.Info("word mastery rebuilt",
		zap.Int64("user_id", userID),
		zap.Int("words", len(out)),
	)

	return out, nil
}

// refreshWords recomputes the derived rows of every user that already has
// ledger entries for any of words. Content writes call it in the same
// transaction, since a changed association moves the denominator.
func (l *LedgerService) refreshWords(ctx context.Context, repos Repositories, words []string, at time.Time) (int, error) {
	words = uniqueWords(words)
	if len(words) == 0 {
		return 0, nil
	}

	byUser, err := repos.Ledger.UsersForWords(ctx, words)
	if err != nil {
		return 0, fmt.Errorf("list users for words: %w", err)
	}

	users := make([]int64, 0, len(byUser))
	for id := range byUser {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	var refreshed int
	for _, userID := range users {
		touched := uniqueWords(byUser[userID])
		if err := repos.Ledger.LockWords(ctx, userID, touched); err != nil {
			return 0, fmt.Errorf("lock words: %w", err)
		}
		if _, err := l.recomputeWords(ctx, repos, userID, touched, at); err != nil {
			return 0, err
		}
		refreshed += len(touched)
	}

	return refreshed, nil
}

// aggregate derives the word-level and per-category mastery of a word.
// Only entries of questions still associated with the word are counted.
func aggregate(
	userID int64,
	word string,
	assoc []entities.WordQuestion,
	entries []*entities.LedgerEntry,
	at time.Time,
) (entities.WordMastery, []entities.WordMastery) {
	mastered := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if e.Mastered {
			mastered[e.QuestionID] = true
		}
	}

	type counts struct{ mastered, total int }
	perCategory := make(map[entities.Category]*counts)
	seen := make(map[int64]struct{}, len(assoc))

	var total, done int
	for _, a := range assoc {
		if _, ok := seen[a.QuestionID]; ok {
			continue
		}
		seen[a.QuestionID] = struct{}{}

		c, ok := perCategory[a.Category]
		if !ok {
			c = &counts{}
			perCategory[a.Category] = c
		}

		total++
		c.total++
		if mastered[a.QuestionID] {
			done++
			c.mastered++
		}
	}

	byCategory := make([]entities.WordMastery, 0, len(perCategory))
	for cat, c := range perCategory {
		byCategory = append(byCategory, entities.NewWordMastery(userID, word, cat, c.mastered, c.total, at))
	}
	sort.Slice(byCategory, func(i, j int) bool {
		return byCategory[i].Category < byCategory[j].Category
	})

	return entities.NewWordMastery(userID, word, "", done, total, at), byCategory
}

// uniqueWords returns the distinct words sorted, which is also the lock order.
func uniqueWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

func TestAnswerValidator_Validate(t *testing.T) {
	t.Parallel()

	v := NewAnswerValidator()

	tests := []struct {
		name    string
		answer  string
		correct string
		want    bool
	}{
		{name: "exact", answer: "luminous", correct: "luminous", want: true},
		{name: "case", answer: "LUMINOUS", correct: "luminous", want: true},
		{name: "surrounding whitespace", answer: "  luminous\t", correct: "luminous", want: true},
		{name: "inner whitespace collapsed", answer: "make   up", correct: "make up", want: true},
		{name: "zero width space", answer: "lumi\u200bnous", correct: "luminous", want: true},
		{name: "different word", answer: "dark", correct: "luminous", want: false},
		{name: "prefix is not enough", answer: "lumin", correct: "luminous", want: false},
		{name: "empty answer", answer: "", correct: "luminous", want: false},
		{name: "empty correct answer", answer: "", correct: "   ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(tt.answer, tt.correct))
		})
	}
}

func TestValidateResponses(t *testing.T) {
	t.Parallel()

	round := &entities.Round{Number: 1, QuestionIDs: []int64{1, 2, 3}}

	tests := []struct {
		name string
		subs []Submission
		err  error
	}{
		{name: "empty", subs: nil, err: ErrEmptyResponses},
		{name: "unknown question", subs: []Submission{{QuestionID: 1}, {QuestionID: 9}}, err: ErrQuestionNotInRound},
		{name: "duplicate", subs: []Submission{{QuestionID: 2}, {QuestionID: 2}}, err: ErrDuplicateResponse},
		{name: "partial", subs: []Submission{{QuestionID: 3}}},
		{name: "full", subs: []Submission{{QuestionID: 3}, {QuestionID: 1}, {QuestionID: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponses(round, tt.subs)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestGradeRoundAndRetrySet(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	round := &entities.Round{Number: 1, QuestionIDs: []int64{10, 20, 30, 40, 50}}

	// 40 is left unanswered.
	responses := []entities.Response{
		{QuestionID: 30, IsCorrect: false},
		{QuestionID: 10, IsCorrect: true},
		{QuestionID: 50, IsCorrect: false},
		{QuestionID: 20, IsCorrect: true},
	}
	gradeRound(round, responses, 3, at)

	assert.Equal(t, 2, round.CorrectCount)
	assert.Equal(t, 5, round.TotalCount)
	assert.Equal(t, 40.0, round.ScorePct)
	assert.False(t, round.IsPerfect)
	assert.Equal(t, 3, round.FirstTryWords)
	require.NotNil(t, round.GradedAt)
	assert.Equal(t, at, *round.GradedAt)
	assert.True(t, round.IsGraded())

	assert.Equal(t, []int64{30, 40, 50}, RetrySet(round))

	perfect := &entities.Round{QuestionIDs: []int64{7}}
	gradeRound(perfect, []entities.Response{{QuestionID: 7, IsCorrect: true}}, 1, at)
	assert.True(t, perfect.IsPerfect)
	assert.Equal(t, 100.0, perfect.ScorePct)
	assert.Empty(t, RetrySet(perfect))
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	assoc := []entities.WordQuestion{
		{QuestionID: 1, Category: entities.CategorySynonym},
		{QuestionID: 2, Category: entities.CategorySynonym},
		{QuestionID: 3, Category: entities.CategoryAntonym},
		{QuestionID: 3, Category: entities.CategoryAntonym},
	}
	entries := []*entities.LedgerEntry{
		{QuestionID: 1, Mastered: true},
		{QuestionID: 2, FirstTryCorrect: 1},
		// Question 9 is no longer associated and must not count.
		{QuestionID: 9, Mastered: true},
	}

	wm, byCategory := aggregate(4, "keen", assoc, entries, at)

	assert.Equal(t, entities.NewWordMastery(4, "keen", "", 1, 3, at), wm)
	assert.Equal(t, 33.33, wm.MasteryPct)
	assert.Equal(t, []entities.WordMastery{
		entities.NewWordMastery(4, "keen", entities.CategoryAntonym, 0, 1, at),
		entities.NewWordMastery(4, "keen", entities.CategorySynonym, 1, 2, at),
	}, byCategory)

	empty, none := aggregate(4, "orphan", nil, entries, at)
	assert.Equal(t, 0.0, empty.MasteryPct)
	assert.Equal(t, 0, empty.TotalQuestions)
	assert.Empty(t, none)
}

func TestScaleQuotas(t *testing.T) {
	t.Parallel()

	order := []string{"a", "b", "c", "d", "e", "f"}
	weights := map[string]int{"a": 20, "b": 20, "c": 15, "d": 15, "e": 15, "f": 15}

	assert.Equal(t, map[string]int{"a": 2, "b": 2, "c": 2, "d": 2, "e": 1, "f": 1}, scaleQuotas(weights, order, 10))
	assert.Equal(t, map[string]int{"a": 4, "b": 4, "c": 3, "d": 3, "e": 3, "f": 3}, scaleQuotas(weights, order, 20))

	// Zero weights get nothing.
	assert.Equal(t, map[string]int{"a": 3}, scaleQuotas(map[string]int{"a": 1, "b": 0}, []string{"a", "b"}, 3))
	assert.Empty(t, scaleQuotas(map[string]int{}, order, 5))
	assert.Empty(t, scaleQuotas(weights, order, 0))
}

func TestClosestCategories(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []entities.Category{
		entities.CategorySynonym,
		entities.CategoryWordMeaning,
		entities.CategoryFillInBlank,
		entities.CategoryAnalogy,
		entities.CategoryOddOneOut,
	}, closestCategories(entities.CategoryAntonym, entities.Categories))

	assert.Equal(t, []entities.Category{
		entities.CategoryAnalogy,
		entities.CategoryFillInBlank,
		entities.CategoryWordMeaning,
		entities.CategoryAntonym,
		entities.CategorySynonym,
	}, closestCategories(entities.CategoryOddOneOut, entities.Categories))

	assert.Nil(t, closestCategories("unknown", entities.Categories))
}

func TestAllWordsMastered(t *testing.T) {
	t.Parallel()

	mastered := map[string]struct{}{"calm": {}, "serene": {}}

	assert.True(t, allWordsMastered(&entities.Question{Words: []string{"calm", "serene"}}, mastered))
	assert.False(t, allWordsMastered(&entities.Question{Words: []string{"calm", "noisy"}}, mastered))
	assert.False(t, allWordsMastered(&entities.Question{}, mastered))
	assert.False(t, allWordsMastered(&entities.Question{Words: []string{"calm"}}, nil))
}

func TestTakeFirst(t *testing.T) {
	t.Parallel()

	in := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2}, takeFirst(in, 2))
	assert.Equal(t, in, takeFirst(in, 5))
	assert.Nil(t, takeFirst(in, 0))
}

func TestSessionLocks_TryLock(t *testing.T) {
	t.Parallel()

	locks := newSessionLocks()
	id := uuid.New()

	unlock, ok := locks.TryLock(id)
	require.True(t, ok)

	_, ok = locks.TryLock(id)
	assert.False(t, ok, "second holder must be rejected")

	other, ok := locks.TryLock(uuid.New())
	require.True(t, ok, "sessions do not share a lock")
	other()

	unlock()
	assert.Empty(t, locks.locks)

	unlock, ok = locks.TryLock(id)
	require.True(t, ok)
	unlock()
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want Kind
	}{
		{err: nil, want: ""},
		{err: fmt.Errorf("load: %w", entities.ErrStorageUnavailable), want: KindStorageUnavailable},
		{err: entities.ErrSessionNotFound, want: KindNotFound},
		{err: entities.ErrQuestionNotFound, want: KindNotFound},
		{err: entities.ErrVersionConflict, want: KindConcurrentModification},
		{err: ErrSessionBusy, want: KindConcurrentModification},
		{err: ErrStaleRound, want: KindConcurrentModification},
		{err: ErrSessionCompleted, want: KindSessionAlreadyCompleted},
		{err: ErrDuplicateResponse, want: KindDuplicateResponse},
		{err: ErrQuestionNotInRound, want: KindUnknownQuestion},
		{err: ErrEmptyResponses, want: KindEmptyResponses},
		{err: ErrNoQuestionsAvailable, want: KindPreconditionFailure},
		{err: ErrInvalidUser, want: KindValidation},
		{err: newError(KindPreconditionFailure, "op", ErrStaleRound), want: KindPreconditionFailure},
		{err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrapKeepsInnerError(t *testing.T) {
	t.Parallel()

	inner := newError(KindDuplicateResponse, "inner", ErrDuplicateResponse)
	err := wrap("outer", fmt.Errorf("ctx: %w", inner))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindDuplicateResponse, e.Kind)
	assert.Equal(t, "inner", e.Op)
	assert.ErrorIs(t, err, ErrDuplicateResponse)

	assert.Nil(t, wrap("op", nil))
	assert.True(t, KindStorageUnavailable.Retryable())
	assert.False(t, KindValidation.Retryable())
}

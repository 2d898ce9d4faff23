package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/service"
	"github.com/aliskhannn/lexiquiz/internal/storage"
)

func TestQuizService_RepetitiveSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newEngine(t, nil, engineConfig{})
	q1 := addQuestion(t, e.mem, entities.CategorySynonym, "glad", "glad", "sad")
	q2 := addQuestion(t, e.mem, entities.CategoryAntonym, "cold", "cold", "warm")

	view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 1, TargetCount: 2})
	require.NoError(t, err)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, 1, view.Session.CurrentRound)
	assert.Equal(t, entities.StateRoundInProgress, view.Session.State())
	assert.ElementsMatch(t, []int64{q1.ID, q2.ID}, view.Session.OriginalQuestionIDs)
	assert.False(t, view.Short)

	// Round 1: one correct, one incorrect.
	res, err := e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID,
		UserID:    1,
		Responses: []service.Submission{
			{QuestionID: q1.ID, Answer: "  GLAD "},
			answer(q2, false),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Round.RoundNumber)
	assert.Equal(t, 1, res.Round.CorrectCount)
	assert.Equal(t, 2, res.Round.TotalCount)
	assert.Equal(t, 50.0, res.Round.ScorePct)
	assert.False(t, res.Round.IsPerfect)
	assert.False(t, res.SessionCompleted)
	assert.Nil(t, res.Summary)
	assert.Equal(t, 2, res.NextRound)
	assert.Equal(t, []int64{q2.ID}, questionIDs(res.NextQuestions))

	// Round 2: the retried question is answered correctly.
	res, err = e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID,
		UserID:    1,
		Round:     2,
		Responses: []service.Submission{answer(q2, true)},
	})
	require.NoError(t, err)
	assert.True(t, res.Round.IsPerfect)
	assert.True(t, res.SessionCompleted)
	assert.Nil(t, res.NextQuestions)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 2, res.Summary.TotalRounds)
	assert.Equal(t, 2, res.Summary.OriginalQuestionCount)
	assert.Equal(t, 50.0, res.Summary.FirstRoundScore)
	assert.Equal(t, 2, res.Summary.WordsMasteredFirstRound)
	require.Len(t, res.Summary.Rounds, 2)
	assert.Equal(t, 100.0, res.Summary.Rounds[1].ScorePct)

	got, err := e.quiz.GetSession(ctx, 1, view.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StateCompleted, got.Session.State())
	assert.Empty(t, got.Questions)
	assert.Equal(t, 2, got.Session.Summary().TotalRounds)

	// The retried question was answered correctly only on a second attempt.
	entries, err := e.mem.Repos().Ledger.GetWordEntries(ctx, 1, "cold")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].FirstTryCorrect)
	assert.Equal(t, 2, entries[0].TotalAttempts)

	entries, err = e.mem.Repos().Ledger.GetWordEntries(ctx, 1, "glad")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].FirstTryCorrect)
	assert.False(t, entries[0].Mastered)
}

func TestQuizService_RetrySetIsClosed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newEngine(t, nil, engineConfig{})
	qs := []*entities.Question{
		addQuestion(t, e.mem, entities.CategorySynonym, "big", "big", "small"),
		addQuestion(t, e.mem, entities.CategorySynonym, "fast", "fast", "slow"),
		addQuestion(t, e.mem, entities.CategoryAntonym, "up", "up", "down"),
		addQuestion(t, e.mem, entities.CategoryAntonym, "left", "left", "right"),
		addQuestion(t, e.mem, entities.CategoryAnalogy, "near", "near", "far"),
	}

	view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 3, TargetCount: 5})
	require.NoError(t, err)
	round1 := view.Session.OriginalQuestionIDs

	// Miss the 1st, 3rd and 5th presented questions.
	byID := make(map[int64]*entities.Question)
	for _, q := range qs {
		byID[q.ID] = q
	}
	var subs []service.Submission
	var wrong []int64
	for i, id := range round1 {
		ok := i%2 == 1
		subs = append(subs, answer(byID[id], ok))
		if !ok {
			wrong = append(wrong, id)
		}
	}

	res, err := e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{SessionID: view.Session.ID, UserID: 3, Responses: subs})
	require.NoError(t, err)
	assert.Equal(t, wrong, questionIDs(res.NextQuestions))

	// Round 2 with one more miss keeps exactly that question.
	res, err = e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID,
		UserID:    3,
		Responses: []service.Submission{
			answer(byID[wrong[0]], true),
			answer(byID[wrong[1]], false),
			answer(byID[wrong[2]], true),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.NextRound)
	assert.Equal(t, []int64{wrong[1]}, questionIDs(res.NextQuestions))
}

func TestQuizService_UnansweredQuestionsAreRetried(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newEngine(t, nil, engineConfig{})
	q1 := addQuestion(t, e.mem, entities.CategorySynonym, "calm", "calm", "loud")
	q2 := addQuestion(t, e.mem, entities.CategorySynonym, "brave", "brave", "timid")

	view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 4, TargetCount: 2})
	require.NoError(t, err)

	res, err := e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID,
		UserID:    4,
		Responses: []service.Submission{answer(q1, true)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Round.CorrectCount)
	assert.Equal(t, 2, res.Round.TotalCount)
	assert.False(t, res.SessionCompleted)
	assert.Equal(t, []int64{q2.ID}, questionIDs(res.NextQuestions))
}

func TestQuizService_SubmitRoundValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(q1, q2, outsider *entities.Question) service.SubmitRoundRequest
		kind  service.Kind
	}{
		{
			name: "question not in current round",
			build: func(q1, _, outsider *entities.Question) service.SubmitRoundRequest {
				return service.SubmitRoundRequest{Responses: []service.Submission{answer(q1, true), answer(outsider, true)}}
			},
			kind: service.KindUnknownQuestion,
		},
		{
			name: "duplicate response",
			build: func(q1, _, _ *entities.Question) service.SubmitRoundRequest {
				return service.SubmitRoundRequest{Responses: []service.Submission{answer(q1, true), answer(q1, false)}}
			},
			kind: service.KindDuplicateResponse,
		},
		{
			name: "empty responses",
			build: func(_, _, _ *entities.Question) service.SubmitRoundRequest {
				return service.SubmitRoundRequest{}
			},
			kind: service.KindEmptyResponses,
		},
		{
			name: "stale round",
			build: func(q1, q2, _ *entities.Question) service.SubmitRoundRequest {
				return service.SubmitRoundRequest{Round: 2, Responses: []service.Submission{answer(q1, true), answer(q2, true)}}
			},
			kind: service.KindConcurrentModification,
		},
		{
			name: "other user",
			build: func(q1, q2, _ *entities.Question) service.SubmitRoundRequest {
				return service.SubmitRoundRequest{UserID: 99, Responses: []service.Submission{answer(q1, true), answer(q2, true)}}
			},
			kind: service.KindNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			e := newEngine(t, nil, engineConfig{})
			q1 := addQuestion(t, e.mem, entities.CategorySynonym, "quick", "quick", "lazy")
			q2 := addQuestion(t, e.mem, entities.CategoryAntonym, "early", "early", "late")

			view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 1, TargetCount: 2})
			require.NoError(t, err)

			outsider := addQuestion(t, e.mem, entities.CategoryAnalogy, "tall", "tall", "short")

			req := tt.build(q1, q2, outsider)
			req.SessionID = view.Session.ID
			if req.UserID == 0 {
				req.UserID = 1
			}

			_, err = e.quiz.SubmitRound(ctx, req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, service.KindOf(err))

			// Nothing was recorded.
			words, err := e.mem.Repos().Ledger.UserWords(ctx, 1)
			require.NoError(t, err)
			assert.Empty(t, words)

			got, err := e.quiz.GetSession(ctx, 1, view.Session.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, got.Session.CurrentRound)
			assert.Equal(t, entities.StateRoundInProgress, got.Session.State())
		})
	}
}

func TestQuizService_ValidationKindsAreValidationErrors(t *testing.T) {
	t.Parallel()

	for _, k := range []service.Kind{service.KindUnknownQuestion, service.KindDuplicateResponse, service.KindEmptyResponses} {
		assert.True(t, k.IsValidation(), k)
	}
	assert.True(t, service.KindSessionAlreadyCompleted.IsStateConflict())
	assert.True(t, service.KindConcurrentModification.IsStateConflict())
	assert.True(t, service.KindStorageUnavailable.Retryable())
}

func TestQuizService_CompletedSessionIsImmutable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newEngine(t, nil, engineConfig{})
	q := addQuestion(t, e.mem, entities.CategoryWordMeaning, "vivid", "vivid", "pale")

	view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 1, TargetCount: 1})
	require.NoError(t, err)

	res, err := e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID, UserID: 1, Responses: []service.Submission{answer(q, true)},
	})
	require.NoError(t, err)
	require.True(t, res.SessionCompleted)

	_, err = e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID, UserID: 1, Responses: []service.Submission{answer(q, true)},
	})
	require.Error(t, err)
	assert.Equal(t, service.KindSessionAlreadyCompleted, service.KindOf(err))
}

func TestQuizService_SingleRoundAssessment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newEngine(t, nil, engineConfig{})
	q1 := addQuestion(t, e.mem, entities.CategorySynonym, "happy", "happy", "gloomy")
	q2 := addQuestion(t, e.mem, entities.CategoryAntonym, "rich", "rich", "poor")

	view, err := e.quiz.CreateAssessment(ctx, service.CreateSessionRequest{UserID: 8, TargetCount: 2})
	require.NoError(t, err)
	assert.Equal(t, entities.ModeSingle, view.Session.Mode)

	res, err := e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID,
		UserID:    8,
		Responses: []service.Submission{answer(q1, true), answer(q2, false)},
	})
	require.NoError(t, err)
	assert.False(t, res.Round.IsPerfect)
	assert.True(t, res.SessionCompleted)
	assert.Nil(t, res.NextQuestions)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 1, res.Summary.TotalRounds)
}

func TestQuizService_CreateSessionPreconditions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty content store", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t, nil, engineConfig{})
		_, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 1})
		require.Error(t, err)
		assert.Equal(t, service.KindPreconditionFailure, service.KindOf(err))
	})

	t.Run("short quiz is signaled", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t, nil, engineConfig{})
		addQuestion(t, e.mem, entities.CategorySynonym, "soft", "soft", "hard")
		addQuestion(t, e.mem, entities.CategorySynonym, "wet", "wet", "dry")

		view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 1, TargetCount: 5})
		require.NoError(t, err)
		assert.True(t, view.Short)
		assert.Equal(t, 5, view.Requested)
		assert.Equal(t, 2, view.Actual)
		assert.True(t, view.Session.Summary().Short)
	})

	t.Run("short quiz rejected when not allowed", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t, nil, engineConfig{quiz: service.QuizConfig{MaxQuestionCount: 50}})
		addQuestion(t, e.mem, entities.CategorySynonym, "soft", "soft", "hard")

		_, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 1, TargetCount: 5})
		require.Error(t, err)
		assert.Equal(t, service.KindPreconditionFailure, service.KindOf(err))
	})

	t.Run("count above maximum", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t, nil, engineConfig{})
		_, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 1, TargetCount: 51})
		require.Error(t, err)
		assert.Equal(t, service.KindValidation, service.KindOf(err))
	})

	t.Run("default count", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t, nil, engineConfig{})
		for i := 0; i < 25; i++ {
			w := string(rune('a'+i)) + "word"
			addQuestion(t, e.mem, entities.CategorySynonym, w, w, w+"x")
		}
		view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 1})
		require.NoError(t, err)
		assert.Len(t, view.Questions, 20)
	})
}

func TestQuizService_SubmitRoundRollsBackOnStorageFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := storage.NewMemoryStore()
	faulty := &faultyStore{MemoryStore: mem, failAt: 3}
	e := newEngine(t, mem, engineConfig{store: faulty})

	q1 := addQuestion(t, mem, entities.CategorySynonym, "keen", "keen", "dull")
	q2 := addQuestion(t, mem, entities.CategorySynonym, "neat", "neat", "messy")

	view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 5, TargetCount: 2})
	require.NoError(t, err)

	_, err = e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID,
		UserID:    5,
		Responses: []service.Submission{answer(q1, true), answer(q2, true)},
	})
	require.Error(t, err)
	assert.Equal(t, service.KindStorageUnavailable, service.KindOf(err))
	assert.True(t, service.KindOf(err).Retryable())

	words, err := mem.Repos().Ledger.UserWords(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, words, "no partial ledger writes")

	rows, err := e.mastery.GetWordMastery(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)

	got, err := e.quiz.GetSession(ctx, 5, view.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StateRoundInProgress, got.Session.State())

	// The retry succeeds once storage is back.
	faulty.failAt = 0
	res, err := e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID,
		UserID:    5,
		Responses: []service.Submission{answer(q1, true), answer(q2, true)},
	})
	require.NoError(t, err)
	assert.True(t, res.SessionCompleted)
}

func TestQuizService_ConcurrentSubmissions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newEngine(t, nil, engineConfig{})
	q1 := addQuestion(t, e.mem, entities.CategorySynonym, "bold", "bold", "shy")
	q2 := addQuestion(t, e.mem, entities.CategorySynonym, "warm", "warm", "chilly")

	view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 6, TargetCount: 2})
	require.NoError(t, err)

	req := service.SubmitRoundRequest{
		SessionID: view.Session.ID,
		UserID:    6,
		Round:     1,
		Responses: []service.Submission{answer(q1, true), answer(q2, false)},
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.quiz.SubmitRound(ctx, req)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case service.KindOf(err) == service.KindConcurrentModification:
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	entries, err := e.mem.Repos().Ledger.GetWordEntries(ctx, 6, "bold")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].TotalAttempts)
}

func TestQuizService_GetSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newEngine(t, nil, engineConfig{})
	addQuestion(t, e.mem, entities.CategorySynonym, "mild", "mild", "harsh")

	view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 2, TargetCount: 1})
	require.NoError(t, err)

	got, err := e.quiz.GetSession(ctx, 2, view.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Session.CurrentRound)
	assert.False(t, got.Session.IsCompleted())
	assert.Len(t, got.Questions, 1)

	_, err = e.quiz.GetSession(ctx, 3, view.Session.ID)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	_, err = e.quiz.GetSession(ctx, 2, uuid.New())
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestQuizService_RoundsFeedRecentWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newEngine(t, nil, engineConfig{})
	q1 := addQuestion(t, e.mem, entities.CategorySynonym, "lush", "lush", "bare")
	q2 := addQuestion(t, e.mem, entities.CategorySynonym, "firm", "firm", "loose")

	view, err := e.quiz.CreateSession(ctx, service.CreateSessionRequest{UserID: 7, TargetCount: 2})
	require.NoError(t, err)

	_, err = e.quiz.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: view.Session.ID,
		UserID:    7,
		Responses: []service.Submission{answer(q1, true), answer(q2, false)},
	})
	require.NoError(t, err)

	last, err := e.window.Recent(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{q2.ID}, last)

	all, err := e.window.Recent(ctx, 7, 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{q1.ID, q2.ID}, all)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

const (
	defaultQuestionCount = 20
	maxQuestionCount     = 50
	defaultRecentWindow  = 5
)

// QuizConfig holds quiz session limits.
type QuizConfig struct {
	DefaultQuestionCount int
	MaxQuestionCount     int
	RecentWindowSize     int  // K, number of recent batches the window keeps
	AllowShortQuiz       bool // create a quiz with fewer questions than requested
}

func (c QuizConfig) withDefaults() QuizConfig {
	if c.DefaultQuestionCount <= 0 {
		c.DefaultQuestionCount = defaultQuestionCount
	}
	if c.MaxQuestionCount <= 0 {
		c.MaxQuestionCount = maxQuestionCount
	}
	if c.RecentWindowSize <= 0 {
		c.RecentWindowSize = defaultRecentWindow
	}
	return c
}

// CreateSessionRequest starts a new quiz session.
type CreateSessionRequest struct {
	UserID      int64
	TargetCount int // zero means the configured default
	// ExcludeRecentCount is the number of recent batches to exclude; nil means the window size.
	ExcludeRecentCount *int
	Category           entities.Category
	Mode               entities.SessionMode
}

// SessionView is a session with the questions of its current round.
type SessionView struct {
	Session     *entities.QuizSession
	Questions   []*entities.Question // current round, empty once completed
	Requested   int
	Actual      int
	Short       bool
	Relaxations []string
}

// SubmitRoundRequest grades the current round of a session.
type SubmitRoundRequest struct {
	SessionID uuid.UUID
	UserID    int64
	Round     int // expected current round; zero skips the check
	Responses []Submission
}

// RoundResult is the graded outcome of one round.
type RoundResult struct {
	RoundNumber  int
	CorrectCount int
	TotalCount   int
	ScorePct     float64
	IsPerfect    bool
	Responses    []entities.Response
}

// SubmitResult is returned after a round submission.
type SubmitResult struct {
	SessionID        uuid.UUID
	Round            RoundResult
	SessionCompleted bool
	NextRound        int
	NextQuestions    []*entities.Question // nil once completed
	Summary          *entities.SessionSummary
	MasteryUpdates   []entities.WordMastery
}

// QuizService is the session state machine of repetitive quizzes.
type QuizService struct {
	store    Store
	ledger   *LedgerService
	selector *QuestionSelector
	locks    *sessionLocks
	cfg      QuizConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	store Store,
	ledger *LedgerService,
	selector *QuestionSelector,
	cfg QuizConfig,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		store:    store,
		ledger:   ledger,
		selector: selector,
		locks:    newSessionLocks(),
		cfg:      cfg.withDefaults(),
		logger:   logger,
		now:      time.Now,
	}
}

// CreateSession selects the first round and starts a repetitive session.
func (s *QuizService) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionView, error) {
	const op = "quiz.CreateSession"

	if req.Mode == "" {
		req.Mode = entities.ModeRepetitive
	}
	if req.UserID <= 0 {
		return nil, newError(KindValidation, op, ErrInvalidUser)
	}

	count := req.TargetCount
	if count == 0 {
		count = s.cfg.DefaultQuestionCount
	}
	if count < 0 || count > s.cfg.MaxQuestionCount {
		return nil, newError(KindValidation, op,
			fmt.Errorf("%w: %d, must be between 1 and %d", ErrInvalidQuestionCount, req.TargetCount, s.cfg.MaxQuestionCount))
	}
	if req.Category != "" && !req.Category.Valid() {
		return nil, newError(KindValidation, op, entities.ErrInvalidCategory)
	}

	recent := s.cfg.RecentWindowSize
	if req.ExcludeRecentCount != nil {
		recent = min(max(*req.ExcludeRecentCount, 0), s.cfg.RecentWindowSize)
	}

	sel, err := s.selector.SelectQuestions(ctx, SelectRequest{
		UserID:          req.UserID,
		TargetCount:     count,
		Category:        req.Category,
		ExcludeMastered: true,
		RecentBatches:   recent,
	})
	if err != nil {
		return nil, wrap(op, err)
	}
	if sel.Short && !s.cfg.AllowShortQuiz {
		return nil, newError(KindPreconditionFailure, op,
			fmt.Errorf("%w: requested %d, available %d", ErrShortQuiz, count, len(sel.Questions)))
	}

	session := entities.NewQuizSession(req.UserID, req.Mode, count, sel.IDs(), s.now())

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		return repos.Quiz.Create(ctx, session)
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	s.selector.MarkPresented(ctx, req.UserID, sel.IDs())

	s.logger.Info("quiz session created",
		zap.Int64("user_id", req.UserID),
		zap.String("session_id", session.ID.String()),
		zap.String("mode", string(session.Mode)),
		zap.Int("requested", count),
		zap.Int("actual", len(sel.Questions)),
	)

	return &SessionView{
		Session:     session,
		Questions:   sel.Questions,
		Requested:   count,
		Actual:      len(sel.Questions),
		Short:       sel.Short,
		Relaxations: sel.Relaxations,
	}, nil
}

// CreateAssessment starts a single round session that is graded once without retries.
func (s *QuizService) CreateAssessment(ctx context.Context, req CreateSessionRequest) (*SessionView, error) {
	req.Mode = entities.ModeSingle
	return s.CreateSession(ctx, req)
}

// SubmitRound grades the current round, records every response in the ledger
// and either completes the session or starts the retry round.
// The whole submission commits atomically.
func (s *QuizService) SubmitRound(ctx context.Context, req SubmitRoundRequest) (*SubmitResult, error) {
	const op = "quiz.SubmitRound"

	unlock, ok := s.locks.TryLock(req.SessionID)
	if !ok {
		return nil, newError(KindConcurrentModification, op, ErrSessionBusy)
	}
	defer unlock()

	var (
		res     *SubmitResult
		userID  int64
		retryID []int64
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		session, err := repos.Quiz.GetForUpdate(ctx, req.SessionID)
		if err != nil {
			return err
		}
		if session.UserID != req.UserID {
			return entities.ErrSessionNotFound
		}
		if session.IsCompleted() {
			return ErrSessionCompleted
		}

		cur := session.Current()
		if cur == nil || cur.IsGraded() {
			return fmt.Errorf("session %s has no round in progress", session.ID)
		}
		if req.Round != 0 && req.Round != cur.Number {
			return fmt.Errorf("%w: got %d, current %d", ErrStaleRound, req.Round, cur.Number)
		}
		if err := validateResponses(cur, req.Responses); err != nil {
			return newError(KindOf(err), op, err)
		}

		res, err = s.gradeAndAdvance(ctx, repos, session, cur, req.Responses)
		if err != nil {
			return err
		}

		if err := repos.Quiz.Update(ctx, session); err != nil {
			return err
		}

		userID = session.UserID
		if !res.SessionCompleted {
			retryID = session.Current().QuestionIDs
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, entities.ErrVersionConflict) {
			return nil, newError(KindConcurrentModification, op, err)
		}
		return nil, wrap(op, err)
	}

	s.selector.MarkPresented(ctx, userID, retryID)

	s.logger.Info("quiz round graded",
		zap.Int64("user_id", userID),
		zap.String("session_id", req.SessionID.String()),
		zap.Int("round", res.Round.RoundNumber),
		zap.Int("correct", res.Round.CorrectCount),
		zap.Int("total", res.Round.TotalCount),
		zap.Bool("completed", res.SessionCompleted),
	)

	return res, nil
}

// gradeAndAdvance records the responses of cur and moves the session to its next state.
func (s *QuizService) gradeAndAdvance(
	ctx context.Context,
	repos Repositories,
	session *entities.QuizSession,
	cur *entities.Round,
	subs []Submission,
) (*SubmitResult, error) {
	now := s.now()

	questions, err := s.selector.SelectScoped(ctx, repos, cur.QuestionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*entities.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	attempts := make([]attempt, 0, len(subs))
	for _, sub := range subs {
		q, ok := byID[sub.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", entities.ErrQuestionNotFound, sub.QuestionID)
		}
		attempts = append(attempts, attempt{question: q, answer: sub.Answer})
	}

	// First attempts are judged against this session's history only.
	first := func(_ context.Context, q *entities.Question, _ []string) (bool, error) {
		return !session.AnsweredBefore(q.ID), nil
	}

	recs, updates, err := s.ledger.recordAttempts(ctx, repos, session.UserID, attempts, first, now)
	if err != nil {
		return nil, err
	}

	responses := make([]entities.Response, 0, len(recs))
	firstTry := make(map[string]struct{})
	for i, rec := range recs {
		responses = append(responses, entities.Response{
			QuestionID:     rec.QuestionID,
			Answer:         attempts[i].answer,
			IsCorrect:      rec.IsCorrect,
			IsFirstAttempt: rec.IsFirstAttempt,
			AnsweredAt:     now,
		})

		if rec.IsCorrect && rec.IsFirstAttempt {
			for _, w := range rec.Words {
				firstTry[w] = struct{}{}
			}
		}
	}

	gradeRound(cur, responses, len(firstTry), now)
	if err := repos.Quiz.SaveRound(ctx, session.ID, cur); err != nil {
		return nil, fmt.Errorf("save graded round: %w", err)
	}

	res := &SubmitResult{
		SessionID: session.ID,
		Round: RoundResult{
			RoundNumber:  cur.Number,
			CorrectCount: cur.CorrectCount,
			TotalCount:   cur.TotalCount,
			ScorePct:     cur.ScorePct,
			IsPerfect:    cur.IsPerfect,
			Responses:    cur.Responses,
		},
		MasteryUpdates: updates,
	}

	if cur.IsPerfect || session.Mode == entities.ModeSingle {
		session.Complete(now)
		res.SessionCompleted = true
		res.Summary = session.Summary()
		return res, nil
	}

	retry := RetrySet(cur)
	next, err := s.selector.SelectScoped(ctx, repos, retry)
	if err != nil {
		return nil, err
	}

	round := session.StartRound(retry, now)
	if err := repos.Quiz.SaveRound(ctx, session.ID, round); err != nil {
		return nil, fmt.Errorf("save next round: %w", err)
	}

	res.NextRound = round.Number
	res.NextQuestions = next
	return res, nil
}

// GetSession returns the session state, the current questions while in progress
// and the summary once completed.
func (s *QuizService) GetSession(ctx context.Context, userID int64, id uuid.UUID) (*SessionView, error) {
	const op = "quiz.GetSession"

	repos := s.store.Repos()
	session, err := repos.Quiz.Get(ctx, id)
	if err != nil {
		return nil, wrap(op, err)
	}
	if session.UserID != userID {
		return nil, newError(KindNotFound, op, entities.ErrSessionNotFound)
	}

	view := &SessionView{
		Session:   session,
		Requested: session.RequestedCount,
		Actual:    len(session.OriginalQuestionIDs),
		Short:     len(session.OriginalQuestionIDs) < session.RequestedCount,
	}

	if !session.IsCompleted() {
		if cur := session.Current(); cur != nil {
			view.Questions, err = s.selector.SelectScoped(ctx, repos, cur.QuestionIDs)
			if err != nil {
				return nil, wrap(op, err)
			}
		}
	}

	return view, nil
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionMode selects between the repetitive multi-round quiz and a fixed single-round assessment.
type SessionMode string

const (
	ModeRepetitive SessionMode = "repetitive"
	ModeSingle     SessionMode = "single"
)

// SessionStatus is the persisted lifecycle status of a session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// SessionState is the state machine position of a session.
type SessionState string

const (
	StateAwaitingFirstRound SessionState = "awaiting_first_round"
	StateRoundInProgress    SessionState = "round_in_progress"
	StateRoundGraded        SessionState = "round_graded"
	StateCompleted          SessionState = "completed"
)

// QuizSession represents one repetitive quiz for a user.
// It tracks the rounds played, the original question set and the completion state.
type QuizSession struct {
	ID                  uuid.UUID     // unique session ID
	UserID              int64         // user ID who started the quiz
	Mode                SessionMode   // "repetitive" or "single"
	Status              SessionStatus // "in_progress" or "completed"
	CurrentRound        int           // 1-based number of the latest round
	RequestedCount      int           // number of questions asked from the selector
	OriginalQuestionIDs []int64       // round-1 question set
	Rounds              []*Round      // ordered by number
	Version             int           // optimistic lock counter
	StartedAt           time.Time     // timestamp when the quiz started
	CompletedAt         *time.Time    // timestamp when the quiz was completed (nullable)
}

// NewQuizSession creates a session with its first round in progress.
func NewQuizSession(userID int64, mode SessionMode, requested int, questionIDs []int64, now time.Time) *QuizSession {
	if mode == "" {
		mode = ModeRepetitive
	}

	original := append([]int64(nil), questionIDs...)
	s := &QuizSession{
		ID:                  uuid.New(),
		UserID:              userID,
		Mode:                mode,
		Status:              StatusInProgress,
		RequestedCount:      requested,
		OriginalQuestionIDs: original,
		StartedAt:           now,
	}
	s.StartRound(questionIDs, now)
	return s
}

// IsCompleted reports whether the session reached its terminal state.
func (s *QuizSession) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// State derives the state machine position from the rounds.
func (s *QuizSession) State() SessionState {
	if s.IsCompleted() {
		return StateCompleted
	}
	cur := s.Current()
	if cur == nil {
		return StateAwaitingFirstRound
	}
	if cur.IsGraded() {
		return StateRoundGraded
	}
	return StateRoundInProgress
}

// Current returns the latest round, or nil before the first round exists.
func (s *QuizSession) Current() *Round {
	if len(s.Rounds) == 0 {
		return nil
	}
	return s.Rounds[len(s.Rounds)-1]
}

// StartRound appends a new round presenting questionIDs.
func (s *QuizSession) StartRound(questionIDs []int64, now time.Time) *Round {
	r := &Round{
		Number:      len(s.Rounds) + 1,
		QuestionIDs: append([]int64(nil), questionIDs...),
		StartedAt:   now,
	}
	s.Rounds = append(s.Rounds, r)
	s.CurrentRound = r.Number
	return r
}

// Complete marks the session as completed and sets the completion timestamp.
func (s *QuizSession) Complete(now time.Time) {
	s.Status = StatusCompleted
	s.CompletedAt = &now
}

// AnsweredBefore reports whether any graded round already holds a response to questionID.
func (s *QuizSession) AnsweredBefore(questionID int64) bool {
	for _, r := range s.Rounds {
		for _, resp := range r.Responses {
			if resp.QuestionID == questionID {
				return true
			}
		}
	}
	return false
}

// Summary assembles the per-session report. It is meaningful once at least one round was graded.
func (s *QuizSession) Summary() *SessionSummary {
	sum := &SessionSummary{
		SessionID:             s.ID,
		RequestedCount:        s.RequestedCount,
		OriginalQuestionCount: len(s.OriginalQuestionIDs),
		Short:                 len(s.OriginalQuestionIDs) < s.RequestedCount,
		Completed:             s.IsCompleted(),
		CompletedAt:           s.CompletedAt,
	}

	for _, r := range s.Rounds {
		if !r.IsGraded() {
			continue
		}
		sum.TotalRounds++
		sum.Rounds = append(sum.Rounds, RoundSummary{
			Round:         r.Number,
			QuestionCount: r.TotalCount,
			CorrectCount:  r.CorrectCount,
			ScorePct:      r.ScorePct,
			IsPerfect:     r.IsPerfect,
		})
		if r.Number == 1 {
			sum.FirstRoundScore = r.ScorePct
			sum.WordsMasteredFirstRound = r.FirstTryWords
		}
	}
	return sum
}

// Round is one attempt within a session. It is created, graded exactly once, then frozen.
type Round struct {
	Number        int
	QuestionIDs   []int64 // presentation order
	Responses     []Response
	CorrectCount  int
	TotalCount    int
	ScorePct      float64
	IsPerfect     bool
	FirstTryWords int // distinct words of questions answered correctly on a first attempt
	StartedAt     time.Time
	GradedAt      *time.Time // nullable until graded
}

// IsGraded reports whether the round was already graded.
func (r *Round) IsGraded() bool {
	return r.GradedAt != nil
}

// Contains reports whether questionID was presented in the round.
func (r *Round) Contains(questionID int64) bool {
	for _, id := range r.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// Response is one graded answer inside a round.
type Response struct {
	QuestionID     int64
	Answer         string
	IsCorrect      bool
	IsFirstAttempt bool
	AnsweredAt     time.Time
}

// SessionSummary is assembled when a session completes; it can also be built mid-session.
type SessionSummary struct {
	SessionID               uuid.UUID
	TotalRounds             int
	RequestedCount          int
	OriginalQuestionCount   int
	Short                   bool
	FirstRoundScore         float64
	WordsMasteredFirstRound int
	Rounds                  []RoundSummary
	Completed               bool
	CompletedAt             *time.Time
}

// RoundSummary is the per-round line of a session summary.
type RoundSummary struct {
	Round         int
	QuestionCount int
	CorrectCount  int
	ScorePct      float64
	IsPerfect     bool
}

package service

import (
	"fmt"
	"time"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

// Submission is one answer submitted for a round.
type Submission struct {
	QuestionID int64
	Answer     string
}

// validateResponses rejects malformed submissions before anything is recorded.
func validateResponses(r *entities.Round, subs []Submission) error {
	if len(subs) == 0 {
		return ErrEmptyResponses
	}

	seen := make(map[int64]struct{}, len(subs))
	for _, s := range subs {
		if !r.Contains(s.QuestionID) {
			return fmt.Errorf("%w: %d", ErrQuestionNotInRound, s.QuestionID)
		}
		if _, ok := seen[s.QuestionID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateResponse, s.QuestionID)
		}
		seen[s.QuestionID] = struct{}{}
	}
	return nil
}

// gradeRound freezes the round with its graded responses.
// Questions of the round without a response count as incorrect.
func gradeRound(r *entities.Round, responses []entities.Response, firstTryWords int, at time.Time) {
	correct := 0
	for _, resp := range responses {
		if resp.IsCorrect {
			correct++
		}
	}

	r.Responses = responses
	r.CorrectCount = correct
	r.TotalCount = len(r.QuestionIDs)
	r.ScorePct = entities.MasteryPercentage(correct, r.TotalCount)
	r.IsPerfect = r.TotalCount > 0 && correct == r.TotalCount
	r.FirstTryWords = firstTryWords
	r.GradedAt = &at
}

// RetrySet returns the questions of a graded round that were not answered
// correctly, in presentation order.
func RetrySet(r *entities.Round) []int64 {
	correct := make(map[int64]bool, len(r.Responses))
	for _, resp := range r.Responses {
		if resp.IsCorrect {
			correct[resp.QuestionID] = true
		}
	}

	out := make([]int64, 0, len(r.QuestionIDs))
	for _, id := range r.QuestionIDs {
		if !correct[id] {
			out = append(out, id)
		}
	}
	return out
}

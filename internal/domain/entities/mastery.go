package entities

import (
	"math"
	"time"
)

// DefaultMasteryThreshold is the number of first-try correct answers that masters a question.
const DefaultMasteryThreshold = 2

// LedgerEntry is the fine-grained mastery record for one (user, word, question) triple.
type LedgerEntry struct {
	UserID     int64
	Word       string
	QuestionID int64

	FirstTryCorrect int        // saturates at the mastery threshold
	TotalAttempts   int        // every recorded attempt
	Mastered        bool       // FirstTryCorrect reached the threshold
	LastAttemptAt   *time.Time // nullable
	MasteredAt      *time.Time // first time the entry became mastered, nullable
}

// NewLedgerEntry creates an empty ledger entry.
func NewLedgerEntry(userID int64, word string, questionID int64) *LedgerEntry {
	return &LedgerEntry{
		UserID:     userID,
		Word:       word,
		QuestionID: questionID,
	}
}

// Apply records one attempt against the entry.
//
// Only an attempt that is both a first attempt and correct moves the counter;
// every other attempt only bumps TotalAttempts. It reports whether this attempt
// moved the entry from unmastered to mastered.
func (e *LedgerEntry) Apply(isCorrect, isFirstAttempt bool, threshold int, at time.Time) bool {
	if threshold <= 0 {
		threshold = DefaultMasteryThreshold
	}

	e.TotalAttempts++
	e.LastAttemptAt = &at

	if !isCorrect || !isFirstAttempt {
		return false
	}

	if e.FirstTryCorrect < threshold {
		e.FirstTryCorrect++
	}

	wasMastered := e.Mastered
	e.Mastered = e.FirstTryCorrect >= threshold
	if e.Mastered && !wasMastered {
		e.MasteredAt = &at
		return true
	}
	return false
}

// MasteryStatus is a human readable band of a mastery percentage.
type MasteryStatus string

const (
	StatusFullyMastered MasteryStatus = "Fully Mastered"
	StatusWellPracticed MasteryStatus = "Well Practiced"
	StatusLearning      MasteryStatus = "Learning"
	StatusNotStarted    MasteryStatus = "Not Started"
)

// WordMastery is the derived mastery of a word for one user.
// An empty Category means the word-level aggregate across all categories.
type WordMastery struct {
	UserID            int64
	Word              string
	Category          Category
	TotalQuestions    int
	MasteredQuestions int
	MasteryPct        float64
	UpdatedAt         time.Time
}

// NewWordMastery builds a derived row from raw counts.
func NewWordMastery(userID int64, word string, category Category, mastered, total int, at time.Time) WordMastery {
	return WordMastery{
		UserID:            userID,
		Word:              word,
		Category:          category,
		TotalQuestions:    total,
		MasteredQuestions: mastered,
		MasteryPct:        MasteryPercentage(mastered, total),
		UpdatedAt:         at,
	}
}

// FullyMastered reports whether every associated question is mastered.
func (m WordMastery) FullyMastered() bool {
	return m.TotalQuestions > 0 && m.MasteredQuestions >= m.TotalQuestions
}

// Status maps the percentage to a status band.
func (m WordMastery) Status() MasteryStatus {
	switch {
	case m.FullyMastered():
		return StatusFullyMastered
	case m.MasteryPct >= 50:
		return StatusWellPracticed
	case m.MasteryPct > 0:
		return StatusLearning
	default:
		return StatusNotStarted
	}
}

// MasteryPercentage returns mastered/total as a percentage rounded to two decimals.
func MasteryPercentage(mastered, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(mastered)/float64(total)*100*100) / 100
}

// ProgressOverview summarizes a user's word mastery.
type ProgressOverview struct {
	UserID                  int64
	WordsEncountered        int
	QuestionsEncountered    int
	QuestionsMastered       int
	AverageWordMastery      float64
	FullyMasteredWords      int
	PartiallyMasteredWords  int
	UnmasteredWords         int
	FullyMasteredPercentage float64
	WordsNeedingPractice    []WordMastery
}

package handlers

import (
	"time"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/service"
)

type createSessionRequest struct {
	QuestionCount      int    `json:"question_count" binding:"min=0"`
	ExcludeRecentCount *int   `json:"exclude_recent_count" binding:"omitempty,min=0"`
	Category           string `json:"category"`
	Mode               string `json:"mode" binding:"omitempty,oneof=repetitive single"`
}

type submitRoundRequest struct {
	Round     int             `json:"round" binding:"min=0"`
	Responses []answerRequest `json:"responses" binding:"dive"`
}

type answerRequest struct {
	QuestionID int64  `json:"question_id" binding:"required,min=1"`
	Answer     string `json:"answer"`
}

// questionDTO never carries the correct answer.
type questionDTO struct {
	ID         int64    `json:"id"`
	Category   string   `json:"category"`
	Text       string   `json:"text"`
	Options    []string `json:"options,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

type sessionDTO struct {
	SessionID      string        `json:"session_id"`
	Mode           string        `json:"mode"`
	Status         string        `json:"status"`
	State          string        `json:"state"`
	CurrentRound   int           `json:"current_round"`
	RequestedCount int           `json:"requested_count"`
	ActualCount    int           `json:"actual_count"`
	Short          bool          `json:"short"`
	Relaxations    []string      `json:"relaxations,omitempty"`
	Questions      []questionDTO `json:"questions"`
	Summary        *summaryDTO   `json:"summary,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

type responseDTO struct {
	QuestionID     int64  `json:"question_id"`
	Answer         string `json:"answer"`
	IsCorrect      bool   `json:"is_correct"`
	IsFirstAttempt bool   `json:"is_first_attempt"`
}

type roundResultDTO struct {
	RoundNumber  int           `json:"round_number"`
	CorrectCount int           `json:"correct_count"`
	TotalCount   int           `json:"total_count"`
	ScorePct     float64       `json:"score_pct"`
	IsPerfect    bool          `json:"is_perfect"`
	Responses    []responseDTO `json:"responses"`
}

type submitResultDTO struct {
	SessionID        string           `json:"session_id"`
	Round            roundResultDTO   `json:"round"`
	SessionCompleted bool             `json:"session_completed"`
	NextRound        int              `json:"next_round,omitempty"`
	NextQuestions    []questionDTO    `json:"next_questions,omitempty"`
	Summary          *summaryDTO      `json:"summary,omitempty"`
	MasteryUpdates   []wordMasteryDTO `json:"mastery_updates"`
}

type roundSummaryDTO struct {
	Round         int     `json:"round"`
	QuestionCount int     `json:"question_count"`
	CorrectCount  int     `json:"correct_count"`
	ScorePct      float64 `json:"score_pct"`
	IsPerfect     bool    `json:"is_perfect"`
}

type summaryDTO struct {
	TotalRounds             int               `json:"total_rounds"`
	RequestedCount          int               `json:"requested_count"`
	OriginalQuestionCount   int               `json:"original_question_count"`
	Short                   bool              `json:"short"`
	FirstRoundScore         float64           `json:"first_round_score"`
	WordsMasteredFirstRound int               `json:"words_mastered_first_round"`
	Rounds                  []roundSummaryDTO `json:"rounds"`
	Completed               bool              `json:"completed"`
	CompletedAt             *time.Time        `json:"completed_at,omitempty"`
}

type wordMasteryDTO struct {
	Word              string    `json:"word"`
	Category          string    `json:"category,omitempty"`
	MasteredQuestions int       `json:"mastered_questions"`
	TotalQuestions    int       `json:"total_questions"`
	MasteryPct        float64   `json:"mastery_pct"`
	Status            string    `json:"status"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type overviewDTO struct {
	WordsEncountered        int              `json:"words_encountered"`
	QuestionsEncountered    int              `json:"questions_encountered"`
	QuestionsMastered       int              `json:"questions_mastered"`
	AverageWordMastery      float64          `json:"average_word_mastery"`
	FullyMasteredWords      int              `json:"fully_mastered_words"`
	PartiallyMasteredWords  int              `json:"partially_mastered_words"`
	UnmasteredWords         int              `json:"unmastered_words"`
	FullyMasteredPercentage float64          `json:"fully_mastered_percentage"`
	WordsNeedingPractice    []wordMasteryDTO `json:"words_needing_practice"`
}

type categoryDTO struct {
	Category      string `json:"category"`
	QuestionCount int    `json:"question_count"`
}

func toQuestions(qs []*entities.Question) []questionDTO {
	out := make([]questionDTO, 0, len(qs))
	for _, q := range qs {
		out = append(out, questionDTO{
			ID:         q.ID,
			Category:   string(q.Category),
			Text:       q.Text,
			Options:    q.Options,
			Difficulty: string(q.Difficulty),
		})
	}
	return out
}

func toSession(v *service.SessionView) sessionDTO {
	s := v.Session
	dto := sessionDTO{
		SessionID:      s.ID.String(),
		Mode:           string(s.Mode),
		Status:         string(s.Status),
		State:          string(s.State()),
		CurrentRound:   s.CurrentRound,
		RequestedCount: v.Requested,
		ActualCount:    v.Actual,
		Short:          v.Short,
		Relaxations:    v.Relaxations,
		Questions:      toQuestions(v.Questions),
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
	}
	if s.IsCompleted() {
		dto.Summary = toSummary(s.Summary())
	}
	return dto
}

func toSummary(sum *entities.SessionSummary) *summaryDTO {
	if sum == nil {
		return nil
	}
	rounds := make([]roundSummaryDTO, 0, len(sum.Rounds))
	for _, r := range sum.Rounds {
		rounds = append(rounds, roundSummaryDTO(r))
	}
	return &summaryDTO{
		TotalRounds:             sum.TotalRounds,
		RequestedCount:          sum.RequestedCount,
		OriginalQuestionCount:   sum.OriginalQuestionCount,
		Short:                   sum.Short,
		FirstRoundScore:         sum.FirstRoundScore,
		WordsMasteredFirstRound: sum.WordsMasteredFirstRound,
		Rounds:                  rounds,
		Completed:               sum.Completed,
		CompletedAt:             sum.CompletedAt,
	}
}

func toSubmitResult(res *service.SubmitResult) submitResultDTO {
	responses := make([]responseDTO, 0, len(res.Round.Responses))
	for _, r := range res.Round.Responses {
		responses = append(responses, responseDTO{
			QuestionID:     r.QuestionID,
			Answer:         r.Answer,
			IsCorrect:      r.IsCorrect,
			IsFirstAttempt: r.IsFirstAttempt,
		})
	}

	dto := submitResultDTO{
		SessionID: res.SessionID.String(),
		Round: roundResultDTO{
			RoundNumber:  res.Round.RoundNumber,
			CorrectCount: res.Round.CorrectCount,
			TotalCount:   res.Round.TotalCount,
			ScorePct:     res.Round.ScorePct,
			IsPerfect:    res.Round.IsPerfect,
			Responses:    responses,
		},
		SessionCompleted: res.SessionCompleted,
		NextRound:        res.NextRound,
		Summary:          toSummary(res.Summary),
		MasteryUpdates:   toWordMastery(res.MasteryUpdates),
	}
	if !res.SessionCompleted {
		dto.NextQuestions = toQuestions(res.NextQuestions)
	}
	return dto
}

func toWordMastery(rows []entities.WordMastery) []wordMasteryDTO {
	out := make([]wordMasteryDTO, 0, len(rows))
	for _, m := range rows {
		out = append(out, wordMasteryDTO{
			Word:              m.Word,
			Category:          string(m.Category),
			MasteredQuestions: m.MasteredQuestions,
			TotalQuestions:    m.TotalQuestions,
			MasteryPct:        m.MasteryPct,
			Status:            string(m.Status()),
			UpdatedAt:         m.UpdatedAt,
		})
	}
	return out
}

func toOverview(ov *entities.ProgressOverview) overviewDTO {
	return overviewDTO{
		WordsEncountered:        ov.WordsEncountered,
		QuestionsEncountered:    ov.QuestionsEncountered,
		QuestionsMastered:       ov.QuestionsMastered,
		AverageWordMastery:      ov.AverageWordMastery,
		FullyMasteredWords:      ov.FullyMasteredWords,
		PartiallyMasteredWords:  ov.PartiallyMasteredWords,
		UnmasteredWords:         ov.UnmasteredWords,
		FullyMasteredPercentage: ov.FullyMasteredPercentage,
		WordsNeedingPractice:    toWordMastery(ov.WordsNeedingPractice),
	}
}

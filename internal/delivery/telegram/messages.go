// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/service"
	"github.com/aliskhannn/lexiquiz/internal/storage"
)

const (
	msgWelcome = "<b>Welcome to Lexiquiz!</b>\n\n" +
		"Practice vocabulary with short quizzes. Every question you miss comes back in a retry round " +
		"until the whole quiz is answered correctly.\n\n" + msgCommands
	msgHelp           = "<b>How it works</b>\n\nA question is mastered after you answer it right on the first try in two different quizzes. A word is fully mastered once every question about it is mastered.\n\n" + msgCommands
	msgCommands       = "/quiz - start a quiz (/quiz 5 for five questions)\n/mastery - word mastery\n/progress - progress overview\n/help - how mastery works"
	msgUnknownCommand = "Unknown command.\n\n" + msgCommands
	msgHelpHint       = "Send /quiz to start a quiz or /help to see the commands."

	msgInvalidQuizLength = "Quiz length must be a number from 1 to %d."
	msgNoActiveQuiz      = "You have no quiz in progress. Send /quiz to start one."
	msgUseButtons        = "Please pick one of the options above."
	msgNoMastery         = "No words practiced yet. Send /quiz to start."

	msgNoQuestions    = "There are no questions available right now. Try again later."
	msgTryAgain       = "The service is temporarily unavailable. Please try again in a moment."
	msgRoundOutdated  = "This round was already submitted. Send /quiz to start a new quiz."
	msgInvalidRequest = "That request could not be processed."
	msgInternalError  = "Something went wrong. Please try again later."

	masteryListLimit = 20
)

func formatQuizStart(view *service.SessionView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎯 <b>Quiz started</b>: %d questions.", view.Actual))
	if view.Short {
		sb.WriteString(fmt.Sprintf("\nOnly %d of the %d requested questions are available.", view.Actual, view.Requested))
	}
	return sb.String()
}

func formatRetryStart(round, questions int) string {
	return fmt.Sprintf("🔁 <b>Round %d</b>: let's retry the %d question(s) you missed.", round, questions)
}

func formatQuestion(round, index, total int, q *entities.Question) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>Round %d · Question %d/%d</b>\n", round, index+1, total))
	sb.WriteString(fmt.Sprintf("<i>%s</i>\n\n", esc(categoryLabel(q.Category))))
	sb.WriteString(esc(q.Text))
	if len(q.Options) == 0 {
		sb.WriteString("\n\nType your answer.")
	}
	return sb.String()
}

func formatAnsweredQuestion(round, index, total int, q *entities.Question, answer string) string {
	return formatQuestion(round, index, total, q) + fmt.Sprintf("\n\nYour answer: <b>%s</b>", esc(answer))
}

func formatRoundResult(res *service.SubmitResult, p *storage.PendingRound) string {
	var sb strings.Builder

	r := res.Round
	sb.WriteString(fmt.Sprintf("📝 <b>Round %d</b>: %d/%d correct (%.0f%%)", r.RoundNumber, r.CorrectCount, r.TotalCount, r.ScorePct))
	if r.IsPerfect {
		sb.WriteString(" 🎉")
	}

	correct := make(map[int64]bool, len(r.Responses))
	for _, resp := range r.Responses {
		correct[resp.QuestionID] = resp.IsCorrect
	}

	var missed []string
	for _, q := range p.Questions {
		if !correct[q.ID] {
			missed = append(missed, "❌ "+esc(q.Text))
		}
	}
	if len(missed) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(strings.Join(missed, "\n"))
	}

	return sb.String()
}

func formatSummary(sum *entities.SessionSummary) string {
	if sum == nil {
		return "✅ Quiz completed."
	}

	var sb strings.Builder
	sb.WriteString("✅ <b>Quiz completed</b>\n\n")
	sb.WriteString(fmt.Sprintf("Rounds: %d\n", sum.TotalRounds))
	sb.WriteString(fmt.Sprintf("Questions: %d\n", sum.OriginalQuestionCount))
	sb.WriteString(fmt.Sprintf("First round score: %.0f%%\n", sum.FirstRoundScore))
	sb.WriteString(fmt.Sprintf("Words right on the first try: %d", sum.WordsMasteredFirstRound))
	if sum.Short {
		sb.WriteString(fmt.Sprintf("\n\nOnly %d of %d requested questions were available.", sum.OriginalQuestionCount, sum.RequestedCount))
	}
	return sb.String()
}

func formatWordMastery(rows []entities.WordMastery) string {
	var sb strings.Builder
	sb.WriteString("📖 <b>Word mastery</b>\n\n")

	for i, m := range rows {
		if i == masteryListLimit {
			sb.WriteString(fmt.Sprintf("\n…and %d more", len(rows)-masteryListLimit))
			break
		}
		sb.WriteString(fmt.Sprintf("%s <b>%s</b> %.0f%% (%d/%d) · %s\n",
			statusIcon(m.Status()), esc(m.Word), m.MasteryPct, m.MasteredQuestions, m.TotalQuestions, m.Status()))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatOverview(ov *entities.ProgressOverview) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Your progress</b>\n\n")
	sb.WriteString(buildProgressBar(ov.FullyMasteredWords, ov.WordsEncountered, 20))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("✅ <b>Fully mastered:</b> %d / %d (%.1f%%)\n", ov.FullyMasteredWords, ov.WordsEncountered, ov.FullyMasteredPercentage))
	sb.WriteString(fmt.Sprintf("📖 <b>In progress:</b> %d\n", ov.PartiallyMasteredWords))
	sb.WriteString(fmt.Sprintf("⏳ <b>Not started:</b> %d\n\n", ov.UnmasteredWords))
	sb.WriteString(fmt.Sprintf("🎯 <b>Average mastery:</b> %.1f%%\n", ov.AverageWordMastery))
	sb.WriteString(fmt.Sprintf("❓ <b>Questions mastered:</b> %d / %d", ov.QuestionsMastered, ov.QuestionsEncountered))

	if len(ov.WordsNeedingPractice) > 0 {
		words := make([]string, 0, len(ov.WordsNeedingPractice))
		for _, m := range ov.WordsNeedingPractice {
			words = append(words, esc(m.Word))
		}
		sb.WriteString("\n\n<b>Needs practice:</b> ")
		sb.WriteString(strings.Join(words, ", "))
	}
	return sb.String()
}

func statusIcon(s entities.MasteryStatus) string {
	switch s {
	case entities.StatusFullyMastered:
		return "🟢"
	case entities.StatusWellPracticed:
		return "🟡"
	case entities.StatusLearning:
		return "🟠"
	default:
		return "⚪"
	}
}

func categoryLabel(c entities.Category) string {
	switch c {
	case entities.CategorySynonym:
		return "Synonym"
	case entities.CategoryAntonym:
		return "Antonym"
	case entities.CategoryWordMeaning:
		return "Word meaning"
	case entities.CategoryFillInBlank:
		return "Fill in the blank"
	case entities.CategoryAnalogy:
		return "Analogy"
	case entities.CategoryOddOneOut:
		return "Odd one out"
	default:
		return string(c)
	}
}

package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/lexiquiz/internal/service"
	"github.com/aliskhannn/lexiquiz/internal/storage"
)

// handleQuiz starts a repetitive quiz session and sends its first question.
func (h *Handler) handleQuiz(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		count := h.quizLength
		if a := strings.TrimSpace(args); a != "" {
			n, err := strconv.Atoi(a)
			if err != nil || n < 1 || n > h.maxQuizLength {
				return h.send(newHTMLMessage(chatID, fmt.Sprintf(msgInvalidQuizLength, h.maxQuizLength)))
			}
			count = n
		}

		view, err := h.quizService.CreateSession(ctx, service.CreateSessionRequest{
			UserID:      userID,
			TargetCount: count,
		})
		if err != nil {
			return err
		}

		h.logger.Debug("quiz session started",
			zap.Int64("user_id", userID),
			zap.String("session_id", view.Session.ID.String()),
			zap.Int("questions", len(view.Questions)),
		)

		h.rounds.Store(userID, view.Session.ID, view.Session.CurrentRound, view.Questions)

		if err := h.send(newHTMLMessage(chatID, formatQuizStart(view))); err != nil {
			return err
		}
		return h.sendNextQuestion(ctx, chatID, userID)
	}
}

// handleOptionAnswer records a button answer and moves to the next question.
func (h *Handler) handleOptionAnswer(userID int64, messageID, questionIndex, optionIndex int) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		p, ok := h.rounds.Get(userID)
		if !ok {
			return h.send(newHTMLMessage(chatID, msgNoActiveQuiz))
		}
		if questionIndex >= len(p.Questions) {
			return nil
		}

		q := p.Questions[questionIndex]
		if _, answered := p.Answers[q.ID]; answered || optionIndex >= len(q.Options) {
			// Double taps and stale keyboards are ignored.
			return nil
		}

		choice := q.Options[optionIndex]
		p, ok = h.rounds.Answer(userID, questionIndex, choice)
		if !ok {
			return nil
		}

		edit := tgbotapi.NewEditMessageText(chatID, messageID, formatAnsweredQuestion(p.Round, questionIndex, len(p.Questions), q, choice))
		edit.ParseMode = tgbotapi.ModeHTML
		_ = h.send(edit)

		return h.continueRound(ctx, chatID, userID, p)
	}
}

// handleTextAnswer treats a plain message as the answer to the current free-text question.
func (h *Handler) handleTextAnswer(userID int64, text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		p, ok := h.rounds.Get(userID)
		if !ok {
			return h.send(newHTMLMessage(chatID, msgHelpHint))
		}

		idx := p.Next()
		if idx < 0 {
			return h.submitPending(ctx, chatID, userID, p)
		}
		if len(p.Questions[idx].Options) > 0 {
			return h.send(newHTMLMessage(chatID, msgUseButtons))
		}

		p, ok = h.rounds.Answer(userID, idx, text)
		if !ok {
			return nil
		}
		return h.continueRound(ctx, chatID, userID, p)
	}
}

func (h *Handler) continueRound(ctx context.Context, chatID, userID int64, p *storage.PendingRound) error {
	if p.Next() >= 0 {
		return h.sendNextQuestion(ctx, chatID, userID)
	}
	return h.submitPending(ctx, chatID, userID, p)
}

// sendNextQuestion sends the first unanswered question of the pending round.
func (h *Handler) sendNextQuestion(ctx context.Context, chatID, userID int64) error {
	p, ok := h.rounds.Get(userID)
	if !ok {
		return h.send(newHTMLMessage(chatID, msgNoActiveQuiz))
	}

	idx := p.Next()
	if idx < 0 {
		return h.submitPending(ctx, chatID, userID, p)
	}

	q := p.Questions[idx]
	msg := newHTMLMessage(chatID, formatQuestion(p.Round, idx, len(p.Questions), q))
	if len(q.Options) > 0 {
		msg.ReplyMarkup = buildAnswerKeyboard(q, idx)
	}
	return h.send(msg)
}

// submitPending grades the pending round and starts the retry round when needed.
func (h *Handler) submitPending(ctx context.Context, chatID, userID int64, p *storage.PendingRound) error {
	subs := make([]service.Submission, 0, len(p.Answers))
	for _, q := range p.Questions {
		if answer, ok := p.Answers[q.ID]; ok {
			subs = append(subs, service.Submission{QuestionID: q.ID, Answer: answer})
		}
	}

	res, err := h.quizService.SubmitRound(ctx, service.SubmitRoundRequest{
		SessionID: p.SessionID,
		UserID:    userID,
		Round:     p.Round,
		Responses: subs,
	})
	if err != nil {
		if kind := service.KindOf(err); kind.IsStateConflict() || kind == service.KindNotFound {
			h.rounds.Delete(userID)
		}
		return err
	}

	if err := h.send(newHTMLMessage(chatID, formatRoundResult(res, p))); err != nil {
		return err
	}

	if res.SessionCompleted {
		h.rounds.Delete(userID)

		msg := newHTMLMessage(chatID, formatSummary(res.Summary))
		msg.ReplyMarkup = buildQuizResultKeyboard()
		return h.send(msg)
	}

	h.rounds.Store(userID, res.SessionID, res.NextRound, res.NextQuestions)
	if err := h.send(newHTMLMessage(chatID, formatRetryStart(res.NextRound, len(res.NextQuestions)))); err != nil {
		return err
	}
	return h.sendNextQuestion(ctx, chatID, userID)
}

// handleMastery lists the word mastery of the user.
func (h *Handler) handleMastery(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		rows, err := h.masteryService.GetWordMastery(ctx, userID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return h.send(newHTMLMessage(chatID, msgNoMastery))
		}
		return h.send(newHTMLMessage(chatID, formatWordMastery(rows)))
	}
}

// handleProgress shows the progress overview of the user.
func (h *Handler) handleProgress(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		ov, err := h.masteryService.GetProgressOverview(ctx, userID)
		if err != nil {
			return err
		}

		msg := newHTMLMessage(chatID, formatOverview(ov))
		msg.ReplyMarkup = buildProgressKeyboard()
		return h.send(msg)
	}
}

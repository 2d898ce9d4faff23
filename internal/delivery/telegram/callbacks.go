package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Remove the user's "clock".
	defer h.answerCallback(cb.ID)

	if cb.Message == nil || cb.From == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	userID := cb.From.ID
	cd := decodeCallback(cb.Data)

	switch cd.Action {
	case actionAnswer:
		q, o, ok := parseAnswerCallback(cd)
		if !ok {
			h.logger.Warn("invalid answer callback", zap.String("data", cb.Data))
			return
		}
		_ = h.withErrorHandling(h.handleOptionAnswer(userID, cb.Message.MessageID, q, o))(ctx, chatID)

	case actionQuiz:
		if len(cd.Params) == 1 && cd.Params[0] == quizStart {
			_ = h.withErrorHandling(h.handleQuiz(userID, ""))(ctx, chatID)
		}

	case actionMastery:
		_ = h.withErrorHandling(h.handleMastery(userID))(ctx, chatID)

	case actionProgress:
		_ = h.withErrorHandling(h.handleProgress(userID))(ctx, chatID)

	default:
		h.logger.Debug("unknown callback", zap.String("data", cb.Data))
	}
}

func (h *Handler) answerCallback(id string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, "")); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}

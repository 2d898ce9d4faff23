package telegram

import (
	"context"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexiquiz/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		err := fn(ctx, chatID)
		if err == nil {
			return nil
		}

		kind := service.KindOf(err)
		switch kind {
		case service.KindInternal, service.KindStorageUnavailable:
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		default:
			h.logger.Warn("handle error",
				zap.Int64("chat_id", chatID),
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
		}

		_ = h.send(newHTMLMessage(chatID, errorMessage(kind)))
		return nil
	}
}

// errorMessage returns the chat text for an error kind.
func errorMessage(kind service.Kind) string {
	switch {
	case kind == service.KindPreconditionFailure:
		return msgNoQuestions
	case kind == service.KindStorageUnavailable:
		return msgTryAgain
	case kind.IsStateConflict():
		return msgRoundOutdated
	case kind.IsValidation(), kind == service.KindNotFound:
		return msgInvalidRequest
	default:
		return msgInternalError
	}
}

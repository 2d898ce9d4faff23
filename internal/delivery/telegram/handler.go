package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const defaultQuizLength = 10

type Handler struct {
	bot            BotSender
	logger         *zap.Logger
	quizService    QuizService
	masteryService MasteryService
	rounds         RoundStorage
	quizLength     int
	maxQuizLength  int
}

func NewHandler(
	bot BotSender,
	logger *zap.Logger,
	quizService QuizService,
	masteryService MasteryService,
	rounds RoundStorage,
	quizLength int,
	maxQuizLength int,
) *Handler {
	if quizLength <= 0 {
		quizLength = defaultQuizLength
	}
	if maxQuizLength < quizLength {
		maxQuizLength = quizLength
	}

	return &Handler{
		bot:            bot,
		logger:         logger,
		quizService:    quizService,
		masteryService: masteryService,
		rounds:         rounds,
		quizLength:     quizLength,
		maxQuizLength:  maxQuizLength,
	}
}

// Run polls updates until ctx is cancelled.
func (h *Handler) Run(ctx context.Context, source UpdatesSource) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := source.GetUpdatesChan(u)
	defer source.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches one update.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start":
			_ = h.send(newHTMLMessage(chatID, msgWelcome))

		case "help":
			_ = h.send(newHTMLMessage(chatID, msgHelp))

		case "quiz":
			_ = h.withErrorHandling(h.handleQuiz(from.ID, update.Message.CommandArguments()))(ctx, chatID)

		case "mastery":
			_ = h.withErrorHandling(h.handleMastery(from.ID))(ctx, chatID)

		case "progress":
			_ = h.withErrorHandling(h.handleProgress(from.ID))(ctx, chatID)

		default:
			_ = h.send(newHTMLMessage(chatID, msgUnknownCommand))
		}

		return
	}

	_ = h.withErrorHandling(h.handleTextAnswer(from.ID, update.Message.Text))(ctx, chatID)
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}

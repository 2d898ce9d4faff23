package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/service"
	"github.com/aliskhannn/lexiquiz/internal/storage"
)

//go:generate mockgen -destination=mock/mock_contracts.go -package=mock_telegram . QuizService,MasteryService

// BotSender is the part of *tgbotapi.BotAPI the handler talks to.
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// UpdatesSource delivers incoming updates.
type UpdatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type QuizService interface {
	CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionView, error)
	SubmitRound(ctx context.Context, req service.SubmitRoundRequest) (*service.SubmitResult, error)
}

type MasteryService interface {
	GetWordMastery(ctx context.Context, userID int64) ([]entities.WordMastery, error)
	GetProgressOverview(ctx context.Context, userID int64) (*entities.ProgressOverview, error)
}

// RoundStorage keeps the round a user is answering question by question.
type RoundStorage interface {
	Store(userID int64, sessionID uuid.UUID, round int, questions []*entities.Question)
	Get(userID int64) (*storage.PendingRound, bool)
	Answer(userID int64, index int, answer string) (*storage.PendingRound, bool)
	Delete(userID int64)
}

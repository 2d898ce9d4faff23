package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/service"
)

type QuizService interface {
	CreateSession(ctx context.Context, req service.CreateSessionRequest) (*service.SessionView, error)
	CreateAssessment(ctx context.Context, req service.CreateSessionRequest) (*service.SessionView, error)
	SubmitRound(ctx context.Context, req service.SubmitRoundRequest) (*service.SubmitResult, error)
	GetSession(ctx context.Context, userID int64, id uuid.UUID) (*service.SessionView, error)
}

type MasteryService interface {
	GetWordMastery(ctx context.Context, userID int64) ([]entities.WordMastery, error)
	GetWordMasteryByCategory(ctx context.Context, userID int64) ([]entities.WordMastery, error)
	GetProgressOverview(ctx context.Context, userID int64) (*entities.ProgressOverview, error)
	ListCategories(ctx context.Context) ([]entities.CategoryCount, error)
}

type LedgerService interface {
	RebuildUser(ctx context.Context, userID int64) ([]entities.WordMastery, error)
}

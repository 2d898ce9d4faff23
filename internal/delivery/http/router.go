package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aliskhannn/lexiquiz/internal/delivery/http/handlers"
	"github.com/aliskhannn/lexiquiz/internal/delivery/http/middleware"
	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

type RouterConfig struct {
	Logger *zap.Logger

	QuizHandler    *handlers.QuizHandler
	MasteryHandler *handlers.MasteryHandler
	HealthHandler  *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	api.Use(middleware.Identity())
	{
		// Quiz
		if cfg.QuizHandler != nil {
			api.POST("/quiz/sessions", cfg.QuizHandler.CreateSession)
			api.GET("/quiz/sessions/:id", cfg.QuizHandler.GetSession)
			api.POST("/quiz/sessions/:id/rounds", cfg.QuizHandler.SubmitRound)
			api.GET("/quiz/categories", cfg.QuizHandler.ListCategories)
		}

		// Mastery
		if cfg.MasteryHandler != nil {
			api.GET("/mastery/words", cfg.MasteryHandler.GetWordMastery)
			api.GET("/mastery/words/categories", cfg.MasteryHandler.GetWordMasteryByCategory)
			api.GET("/mastery/overview", cfg.MasteryHandler.GetProgressOverview)
		}
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(entities.RoleAdmin))
	{
		if cfg.MasteryHandler != nil {
			admin.POST("/users/:id/mastery/rebuild", cfg.MasteryHandler.RebuildUser)
		}
	}

	return r
}

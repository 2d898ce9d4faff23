package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/lexiquiz/internal/config"
	"github.com/aliskhannn/lexiquiz/internal/content"
	httpdelivery "github.com/aliskhannn/lexiquiz/internal/delivery/http"
	"github.com/aliskhannn/lexiquiz/internal/delivery/http/handlers"
	"github.com/aliskhannn/lexiquiz/internal/delivery/telegram"
	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
	"github.com/aliskhannn/lexiquiz/internal/infra/postgres"
	"github.com/aliskhannn/lexiquiz/internal/infra/postgres/repository"
	"github.com/aliskhannn/lexiquiz/internal/infra/redis"
	"github.com/aliskhannn/lexiquiz/internal/logger"
	"github.com/aliskhannn/lexiquiz/internal/service"
	"github.com/aliskhannn/lexiquiz/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// newBot is swapped in tests.
var newBot = authorizeBot

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("application stopped with error", zap.Error(err))
	}
	lg.Info("application stopped")
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	store, window, cleanup, err := openStorage(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer cleanup()

	selectorCfg, err := selectorConfig(cfg.Quiz)
	if err != nil {
		return err
	}

	ledgerService := service.NewLedgerService(store, cfg.Quiz.MasteryThreshold, lg)
	contentService := service.NewContentService(store, ledgerService, lg)

	if cfg.Content.SeedPath != "" {
		if _, err := content.SeedFile(ctx, contentService, cfg.Content.SeedPath, lg); err != nil {
			return err
		}
	}

	selector := service.NewQuestionSelector(store, window, selectorCfg, lg)
	quizService := service.NewQuizService(store, ledgerService, selector, service.QuizConfig{
		DefaultQuestionCount: cfg.Quiz.DefaultQuestionCount,
		MaxQuestionCount:     cfg.Quiz.MaxQuestionCount,
		RecentWindowSize:     cfg.RecentWindow.Size,
		AllowShortQuiz:       cfg.Quiz.AllowShortQuiz,
	}, lg)
	masteryService := service.NewMasteryService(store, lg)

	router := httpdelivery.NewRouter(httpdelivery.RouterConfig{
		Logger:         lg,
		QuizHandler:    handlers.NewQuizHandler(quizService, masteryService),
		MasteryHandler: handlers.NewMasteryHandler(masteryService, ledgerService),
		HealthHandler:  handlers.NewHealthHandler(),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// Authorize the bot before any server starts.
	var bot *tgbotapi.BotAPI
	if cfg.Telegram.Enabled {
		bot, err = newBot(cfg.Telegram.Token, lg)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if bot != nil {
		handler := telegram.NewHandler(
			bot,
			lg.Named("telegram"),
			quizService,
			masteryService,
			storage.NewRoundStorage(),
			cfg.Quiz.DefaultQuestionCount,
			cfg.Quiz.MaxQuestionCount,
		)

		g.Go(func() error {
			if err := handler.Run(gctx, bot); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("telegram handler: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// openStorage connects the configured store and recent window backends.
func openStorage(ctx context.Context, cfg *config.Config, lg *zap.Logger) (service.Store, service.RecentWindow, func(), error) {
	var (
		store   service.Store
		window  service.RecentWindow
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	needsDB := cfg.Storage.Backend == config.BackendPostgres || cfg.RecentWindow.Backend == config.BackendPostgres
	var pool *pgxpool.Pool
	if needsDB {
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, nil, cleanup, err
		}

		p, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
			ConnectTimeout:  cfg.DB.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, cleanup, fmt.Errorf("connect database: %w", err)
		}
		closers = append(closers, p.Close)

		if err := postgres.Migrate(ctx, p, lg); err != nil {
			cleanup()
			return nil, nil, func() {}, err
		}
		pool = p
	}

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		store = repository.NewStore(pool)
	default:
		store = storage.NewMemoryStore()
	}

	switch cfg.RecentWindow.Backend {
	case config.BackendPostgres:
		window = repository.NewRecentWindowRepository(pool, cfg.RecentWindow.Size)
	case config.BackendRedis:
		rdb, err := redis.NewClient(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			cleanup()
			return nil, nil, func() {}, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { _ = rdb.Close() })
		window = redis.NewRecentWindow(rdb, cfg.RecentWindow.Size)
	default:
		window = storage.NewRecentWindow(cfg.RecentWindow.Size)
	}

	lg.Info("storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("recent_window", cfg.RecentWindow.Backend),
	)

	return store, window, cleanup, nil
}

// selectorConfig converts the configured distributions to typed keys.
func selectorConfig(q config.Quiz) (service.SelectorConfig, error) {
	cfg := service.SelectorConfig{
		CategoryDistribution:   make(map[entities.Category]int, len(q.CategoryDistribution)),
		DifficultyDistribution: make(map[entities.Difficulty]float64, len(q.DifficultyDistribution)),
		CategoryOrder:          entities.Categories,
	}

	for k, v := range q.CategoryDistribution {
		c, err := entities.ParseCategory(k)
		if err != nil {
			return cfg, fmt.Errorf("quiz.category_distribution: %w", err)
		}
		cfg.CategoryDistribution[c] = v
	}

	for k, v := range q.DifficultyDistribution {
		d := entities.Difficulty(k)
		switch d {
		case entities.DifficultyEasy, entities.DifficultyMedium, entities.DifficultyHard:
			cfg.DifficultyDistribution[d] = v
		default:
			return cfg, fmt.Errorf("quiz.difficulty_distribution: unknown difficulty %q", k)
		}
	}

	return cfg, nil
}

func authorizeBot(token string, lg *zap.Logger) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "quiz", Description: "Start a quiz (usage: /quiz 10)"},
		{Command: "mastery", Description: "Show word mastery"},
		{Command: "progress", Description: "Show progress overview"},
		{Command: "help", Description: "How mastery works"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	lg.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))
	return bot, nil
}

package main

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/lexiquiz/internal/config"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()

	// Reserve a free port and release it for the server under test.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return &config.Config{
		Env:          "local",
		HTTP:         config.HTTP{Addr: addr, ReadTimeout: time.Second, WriteTimeout: time.Second},
		Storage:      config.Storage{Backend: config.BackendMemory},
		RecentWindow: config.RecentWindow{Backend: config.BackendMemory, Size: 5},
		Quiz: config.Quiz{
			DefaultQuestionCount: 5,
			MaxQuestionCount:     10,
			MasteryThreshold:     2,
			AllowShortQuiz:       true,
		},
		Telegram: config.Telegram{Enabled: true, Token: "token"},
	}
}

func TestRun_BotFailureStartsNothing(t *testing.T) {
	errAuth := errors.New("unauthorized")

	prev := newBot
	newBot = func(string, *zap.Logger) (*tgbotapi.BotAPI, error) { return nil, errAuth }
	t.Cleanup(func() { newBot = prev })

	cfg := memoryConfig(t)

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg, zap.NewNop()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errAuth)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the bot failed")
	}

	// The HTTP server never started, so the port is still free.
	l, err := net.Listen("tcp", cfg.HTTP.Addr)
	require.NoError(t, err)
	require.NoError(t, l.Close())
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Telegram = config.Telegram{}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zap.NewNop()) }()

	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", cfg.HTTP.Addr)
		if err != nil {
			return false
		}
		_ = c.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

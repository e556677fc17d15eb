package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/ai"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/classify"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/config"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/database"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/handlers"
	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	classifier := classify.NewDefault()

	registry, err := database.NewRegistry(cfg.DataDir, classifier, cfg.MaxChatHistory)
	if err != nil {
		logger.L.Error("Failed to initialize ledger registry", "error", err)
		os.Exit(1)
	}
	defer registry.Close()

	users, err := database.NewUsers(filepath.Join(cfg.DataDir, "users.db"))
	if err != nil {
		logger.L.Error("Failed to initialize users database", "error", err)
		os.Exit(1)
	}
	defer users.Close()

	var oracle ai.Oracle
	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
		if err != nil {
			logger.L.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		oracle = client
	} else {
		logger.L.Warn("GEMINI_API_KEY not set, running in demo mode")
	}

	h := handlers.New(users, registry, oracle, ai.NewPromptBuilder(cfg.RecentTxLimit))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.Health)
	r.With(handlers.RateLimit).Post("/webhook", h.Webhook)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
	}

	go func() {
		logger.L.Info("Server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.L.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L.Error("Shutdown error", "error", err)
	}
}

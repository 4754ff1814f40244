package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialguard/internal/config"
	"socialguard/internal/engine"
	"socialguard/internal/handler"
	"socialguard/internal/middleware"
	"socialguard/internal/repository"
	"socialguard/internal/scraper_client"
	"socialguard/internal/service"
	"socialguard/internal/telegram_bot"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to the YAML config")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := cfg.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting SocialGuard...")

	eng := engine.New(cfg, logger)
	defer eng.Close()

	// Initialize repository
	db, err := repository.Open(repository.Config{
		Type: cfg.Database.Type,
		Path: cfg.Database.Path,
		URL:  cfg.Database.URL,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	repo := repository.NewHistoryRepository(db, logger)
	defer repo.Close()

	deps := service.Deps{
		Classifier: eng.Classifier,
		Ranker:     eng.Index,
		Corpus:     eng.Corpus,
		Repo:       repo,
	}

	if cfg.Scraper.URL != "" {
		deps.Fetcher = scraper_client.NewClient(cfg.Scraper.URL, cfg.Scraper.Timeout, logger)
		logger.Info("Scraper client configured", zap.String("url", cfg.Scraper.URL))
	} else {
		logger.Warn("Scraper URL not configured, social media analysis is unavailable")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	bot, err := telegram_bot.NewBot(telegram_bot.Config{
		Enabled:  cfg.Telegram.Enabled,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
	}, repo, logger)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot, notifications disabled", zap.Error(err))
	}
	if bot != nil {
		deps.Notifier = bot
		go func() {
			if err := bot.Start(ctx); err != nil {
				logger.Error("Telegram bot stopped", zap.Error(err))
			}
		}()
	}

	// Initialize service
	analyzer := service.NewAnalyzer(deps, service.Config{
		Pacer:              service.Pacer{Delay: cfg.Batch.Delay, FailureDelay: cfg.Batch.FailureDelay},
		DefaultThreshold:   cfg.Analysis.DefaultThreshold,
		DefaultMaxComments: cfg.Analysis.DefaultMaxComments,
		OutputDir:          cfg.Storage.OutputDir,
		ModelInfo:          eng.ModelInfo(),
	}, logger)

	// Setup Gin router
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(logger), middleware.CORS(), gin.Recovery())

	handler.NewHandler(analyzer, logger).RegisterRoutes(router)

	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("SocialGuard is running",
		zap.String("address", serverAddr),
		zap.Int("corpus_size", eng.Corpus.Len()),
		zap.Bool("generator", eng.Classifier.HasGenerator()))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

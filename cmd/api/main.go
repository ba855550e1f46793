package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dishly/backend/config"
	"github.com/dishly/backend/internal/database"
	"github.com/dishly/backend/internal/logging"
	"github.com/dishly/backend/internal/router"
	"github.com/dishly/backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// Redis is optional: without it the video and suggestion caches are
	// simply disabled.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, response caching disabled", zap.Error(err))
		redisClient = nil
	}

	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, generation will serve fallback recipes")
	}
	if cfg.YouTube.APIKey == "" {
		logger.Warn("YOUTUBE_API_KEY not set, video search disabled")
	}

	llmService := service.NewLLMService(cfg.OpenAI, redisClient, logger)
	youtubeService := service.NewYouTubeService(cfg.YouTube, redisClient, logger)
	authService := service.NewAuthService(cfg.JWT.Secret)
	recipeService := service.NewRecipeService(db, llmService, cfg.Cache.FreshnessWindow, logger)

	engine := router.Setup(recipeService, llmService, youtubeService, authService, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

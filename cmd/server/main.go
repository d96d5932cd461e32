package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/adapters/gemini"
	"github.com/Gchen0124/ai-voice-coach/adapters/memory"
	mongoadapter "github.com/Gchen0124/ai-voice-coach/adapters/mongo"
	openaiadapter "github.com/Gchen0124/ai-voice-coach/adapters/openai"
	"github.com/Gchen0124/ai-voice-coach/adapters/stt"
	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
	"github.com/Gchen0124/ai-voice-coach/internal/api"
	"github.com/Gchen0124/ai-voice-coach/internal/config"
	"github.com/Gchen0124/ai-voice-coach/internal/realtime"
	"github.com/Gchen0124/ai-voice-coach/internal/ttscache"
	"github.com/Gchen0124/ai-voice-coach/usecase"
)

func main() {
	// Load .env for local development, real environments set variables directly
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize adapters
	var transcriber repositories.Transcriber
	switch cfg.Transcriber {
	case "google":
		transcriber = stt.NewGoogleTranscriber(logger)
	default:
		transcriber = openaiadapter.NewTranscriber(openaiadapter.TranscriberConfig{
			APIKey: cfg.OpenAI.APIKey,
		}, logger)
	}

	coach := openaiadapter.NewCoach(openaiadapter.CoachConfig{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.ChatModel,
	}, logger)

	conversationalist, err := gemini.New(context.Background(), gemini.Config{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize conversational adapter", zap.Error(err))
	}

	var messageRepo repositories.VoiceMessageRepository
	var mongoClient *mongoadapter.Client
	switch cfg.Storage.Backend {
	case "mongo":
		mongoClient, err = mongoadapter.NewClient(cfg.Storage.MongoURI, cfg.Storage.MongoDB, logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		messageRepo = mongoadapter.NewVoiceMessageRepository(mongoClient.Database)
	default:
		messageRepo = memory.NewVoiceMessageRepository()
	}

	synthesizer := openaiadapter.NewSynthesizer(openaiadapter.SynthesizerConfig{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.TTSModel,
		Voice:  cfg.OpenAI.TTSVoice,
	}, logger)
	speechCache := ttscache.New(synthesizer, logger)

	// Initialize usecase services
	coachingService := usecase.NewCoachingService(transcriber, coach, conversationalist, messageRepo, logger)

	// Initialize API routes
	server := api.NewServer(coachingService, speechCache, realtime.Config{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.Realtime.Model,
		Voice:  cfg.Realtime.Voice,
	}, realtime.WebsocketDialer{}, logger)
	server.InitRoutes(e)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("transcriber", cfg.Transcriber))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if mongoClient != nil {
		if err := mongoClient.Close(ctx); err != nil {
			logger.Error("Failed to close MongoDB connection", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

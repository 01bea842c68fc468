package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-writing-api/internal/config"
	"github.com/noah-isme/gema-writing-api/internal/database"
	"github.com/noah-isme/gema-writing-api/internal/handler"
	"github.com/noah-isme/gema-writing-api/internal/middleware"
	"github.com/noah-isme/gema-writing-api/internal/repository"
	"github.com/noah-isme/gema-writing-api/internal/router"
	"github.com/noah-isme/gema-writing-api/internal/service"
	"github.com/noah-isme/gema-writing-api/pkg/ai"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "writing-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	development := cfg.AppEnv == "development"
	if !development {
		logger = logger.Level(zerolog.InfoLevel)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL, development)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, score caching and redis events disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	completer, err := ai.NewOpenAICompleter(ai.OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: cfg.AnalysisTemperature,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create essay analyzer")
	}
	analyzer := ai.NewEssayAnalyzer(completer, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	scoreRepo := repository.NewWritingScoreRepository(db)
	combinedRepo := repository.NewCombinedScoreRepository(db)
	creditRepo := repository.NewCreditRepository(db)

	events := service.NewScoreEventPublisher(redisClient, natsConn, cfg.EventChannel)
	combinedService := service.NewCombinedScoreService(scoreRepo, combinedRepo, events, logger)
	creditService := service.NewCreditService(creditRepo, validate, logger)
	writingService := service.NewWritingService(
		scoreRepo,
		creditRepo,
		combinedService,
		analyzer,
		events,
		redisClient,
		validate,
		logger,
		service.WritingServiceConfig{
			CreditsPerAnalysis: cfg.CreditsPerAnalysis,
			CacheTTL:           cfg.ScoresCacheTTL,
		},
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: development})
	router.Register(app, cfg, router.Dependencies{
		WritingHandler: handler.NewWritingHandler(writingService, combinedService, logger),
		CreditHandler:  handler.NewCreditHandler(creditService, logger),
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	logger.Info().Str("address", cfg.HTTPAddress()).Msg("writing api listening")

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	// In-flight analyses can take tens of seconds.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}

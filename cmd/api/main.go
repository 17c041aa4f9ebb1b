package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evalio/evalio-go-api/internal/config"
	"github.com/evalio/evalio-go-api/internal/database"
	"github.com/evalio/evalio-go-api/internal/grading"
	"github.com/evalio/evalio-go-api/internal/handler"
	"github.com/evalio/evalio-go-api/internal/middleware"
	"github.com/evalio/evalio-go-api/internal/observability"
	"github.com/evalio/evalio-go-api/internal/repository"
	"github.com/evalio/evalio-go-api/internal/router"
	"github.com/evalio/evalio-go-api/internal/service"
	"github.com/evalio/evalio-go-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional. Without Redis the status endpoint reads
	// straight from the database; without NATS grading events are dropped.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, status caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, grading events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	generatorFactory := func(ctx context.Context) (ai.TextGenerator, error) {
		return ai.NewGenerator(ctx, ai.ProviderConfig{
			Provider:     cfg.AIProvider,
			OpenAIAPIKey: cfg.OpenAIAPIKey,
			GeminiAPIKey: cfg.GeminiAPIKey,
			Model:        cfg.AIModel,
			MaxTokens:    cfg.AIMaxTokens,
			Logger:       logger,
		})
	}

	generator, err := generatorFactory(context.Background())
	if err != nil {
		log.Fatalf("failed to create ai generator: %v", err)
	}
	if generator == nil {
		logger.Warn().Msg("no ai credentials configured, grading runs in fallback mode")
	}

	policy := grading.Policy{
		QuizCeiling: cfg.FallbackQuizCeiling,
		CodeCeiling: cfg.FallbackCodeCeiling,
	}
	grader := grading.NewGrader(generator, policy, cfg.AITimeout, logger)
	dispatcher := grading.NewDispatcher(grader)

	validate := validator.New(validator.WithRequiredStructEnabled())

	evaluatorRepo := repository.NewEvaluatorRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	events := service.NewEventPublisher(natsConn, cfg.GradingEventSubject, logger)
	statusService := service.NewStatusService(submissionRepo, redisClient, cfg.StatusCacheTTL, logger)
	evaluatorService := service.NewEvaluatorService(evaluatorRepo, submissionRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, evaluatorRepo, dispatcher, events, statusService, validate, logger)
	quizService := service.NewQuizService(grader, evaluatorRepo, validate, logger)

	evaluatorHandler := handler.NewEvaluatorHandler(evaluatorService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, statusService, logger)
	aiHandler := handler.NewAIHandler(grader, quizService, generatorFactory, cfg.AIModel, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluatorHandler:  evaluatorHandler,
		SubmissionHandler: submissionHandler,
		AIHandler:         aiHandler,
		HealthHandler:     handler.HealthCheck(cfg, db, redisClient, grader),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

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
	"github.com/rs/zerolog"

	"github.com/agrilearn/farmbudget-api/internal/config"
	"github.com/agrilearn/farmbudget-api/internal/database"
	"github.com/agrilearn/farmbudget-api/internal/handler"
	"github.com/agrilearn/farmbudget-api/internal/middleware"
	"github.com/agrilearn/farmbudget-api/internal/models"
	"github.com/agrilearn/farmbudget-api/internal/repository"
	"github.com/agrilearn/farmbudget-api/internal/router"
	"github.com/agrilearn/farmbudget-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Assessment{},
		&models.Submission{},
		&models.Comment{},
		&models.SiteSettings{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	dashboardService := service.NewDashboardService(submissionRepo, assessmentRepo, settingsRepo, redisClient, cfg.DashboardCacheTTL, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assessmentRepo, settingsRepo, validate, dashboardService, logger)
	reviewService := service.NewReviewService(submissionRepo, commentRepo, userRepo, validate, activityService, redisClient, cfg.ReviewListCacheTTL, cfg.PublicBaseURL, dashboardService, logger)
	publicService := service.NewPublicService(submissionRepo, commentRepo, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, validate, activityService, logger)
	settingsService := service.NewSettingsService(settingsRepo, assessmentRepo, validate, activityService, logger)

	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, logger)
	publicHandler := handler.NewPublicHandler(publicService, logger)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler: submissionHandler,
		ReviewHandler:     reviewHandler,
		PublicHandler:     publicHandler,
		AssessmentHandler: assessmentHandler,
		DashboardHandler:  dashboardHandler,
		SettingsHandler:   settingsHandler,
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

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

	"github.com/mesaview-usd/extrapay-api/internal/config"
	"github.com/mesaview-usd/extrapay-api/internal/database"
	"github.com/mesaview-usd/extrapay-api/internal/handler"
	"github.com/mesaview-usd/extrapay-api/internal/middleware"
	"github.com/mesaview-usd/extrapay-api/internal/models"
	"github.com/mesaview-usd/extrapay-api/internal/repository"
	"github.com/mesaview-usd/extrapay-api/internal/router"
	"github.com/mesaview-usd/extrapay-api/internal/service"
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

	if err := db.AutoMigrate(&models.District{}, &models.Employee{}, &models.Contract{}, &models.PayRequest{}, &models.Event{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NatsURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	publisher := service.NewNATSEventPublisher(natsConn, cfg.EventSubject, logger)

	contractRepo := repository.NewContractRepository(db)
	requestRepo := repository.NewPayRequestRepository(db)
	eventRepo := repository.NewEventRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	contractService := service.NewContractService(contractRepo, validate, publisher, logger)
	requestService := service.NewPayRequestService(requestRepo, contractRepo, validate, publisher, logger)
	timelineService := service.NewTimelineService(eventRepo, contractRepo, requestRepo, logger)
	dashboardService := service.NewDashboardService(contractRepo, requestRepo, eventRepo, employeeRepo, redisClient, cfg.DashboardCacheTTL, logger)
	archiveService := service.NewArchiveService(requestRepo, validate, redisClient, cfg.ArchiveRetentionDays, logger)

	contractHandler := handler.NewContractHandler(contractService, timelineService, logger)
	requestHandler := handler.NewPayRequestHandler(requestService, timelineService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, archiveService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ContractHandler:   contractHandler,
		PayRequestHandler: requestHandler,
		DashboardHandler:  dashboardHandler,
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

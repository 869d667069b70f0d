package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"insurance-service/internal/config"
	"insurance-service/internal/database/postgres"
	"insurance-service/internal/database/redis"
	"insurance-service/internal/event"
	"insurance-service/internal/handlers"
	"insurance-service/internal/repository"
	"insurance-service/internal/services"
	"insurance-service/internal/worker"

	"github.com/gofiber/fiber/v3"
)

func setupLogging(logDir string) (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	fmt.Println("Log directory:", logDir)
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo})))
	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// db connection
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		slog.Error("error connecting to database, retrying in background", "error", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	// redis connection
	redisClient, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()
	redisClient.EnableKeyspaceNotifications(ctx)

	// rabbitmq connection, optional: the engine runs without events
	var publisher services.EventPublisher
	if cfg.RabbitMQCfg.Enabled {
		rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
		if err != nil {
			slog.Error("error connecting to RabbitMQ, event publishing disabled", "error", err)
		} else {
			defer rabbitConn.Close()
			publisher = event.NewInsurancePublisher(rabbitConn)
		}
	}

	// unit of work over sqlx
	uow := repository.NewSqlxUnitOfWork(db)

	// services
	ledgerService := services.NewLedgerService(uow)
	catalogService := services.NewPolicyCatalogService(uow, redisClient.GetClient())
	subscriptionService := services.NewSubscriptionService(uow, redisClient.GetClient(), publisher)
	claimsService := services.NewClaimsService(uow, publisher)
	expirationService := services.NewSubscriptionExpirationService(redisClient.GetClient(), subscriptionService)

	// handlers
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	policyHandler := handlers.NewPolicyHandler(catalogService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	claimHandler := handlers.NewClaimHandler(claimsService)

	// expiry sweep worker
	var workerWg sync.WaitGroup
	pool := worker.NewWorkingPool("insurance-maintenance", 2, 16)
	pool.RegisterJob(worker.JobTypeExpireSubscriptions, func(params map[string]any) error {
		_, err := subscriptionService.ExpireDue(ctx, cfg.SweepBatch)
		return err
	})
	workerWg.Add(1)
	go pool.Start(ctx, &workerWg)

	scheduler := worker.NewJobScheduler("subscription-expiry", cfg.SweepInterval, pool)
	scheduler.AddJob(worker.JobPayload{Type: worker.JobTypeExpireSubscriptions})
	go scheduler.Run(ctx)

	// redis TTL fast path for expiry
	go func() {
		if err := expirationService.StartListener(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Subscription expiration listener exited", "error", err)
		}
	}()

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Insurance service is healthy")
	})

	ledgerHandler.Register(app)
	policyHandler.Register(app)
	subscriptionHandler.Register(app)
	claimHandler.Register(app)

	slog.Info("Starting insurance-service", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

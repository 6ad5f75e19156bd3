package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"updigital/internal/api"
	"updigital/internal/auth"
	"updigital/internal/config"
	"updigital/internal/db"
	"updigital/internal/mailer"
	"updigital/internal/services"
	"updigital/internal/sessions"
	"updigital/internal/store"
	"updigital/internal/tasks"
	"updigital/internal/utils/logger"
)

func main() {
	logger := logger.New("updigital")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection: %v", err)
		}
	}()

	dbInstance := db.GetDB()

	// Redis-backed sessions
	redisClient, err := sessions.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	sessionStore := sessions.NewStore(redisClient, cfg.Session.TTL)

	// Outbound mail
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, cfg.Server.PublicURL)

	// Task queue
	taskClient := tasks.NewTaskClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
	defer taskClient.Close()

	taskHandler := tasks.NewTaskHandler(dbInstance, smtpMailer)
	taskServer := tasks.NewServer(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		taskHandler,
		logger,
	)

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	go func() {
		if err := taskServer.Start(serverCtx); err != nil {
			logger.Error("Task server error: %v", err)
		}
	}()

	taskScheduler := tasks.NewScheduler(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		logger,
	)

	go func() {
		if err := taskScheduler.Start(); err != nil {
			logger.Error("Task scheduler error: %v", err)
		}
	}()

	// Auth workflow wiring
	workflow := auth.NewWorkflow(
		store.NewAccountStore(dbInstance),
		sessionStore,
		auth.NewBcryptHasher(),
		auth.NewJWTIssuer(cfg.Token.Secret, cfg.Token.TTL),
		tasks.NewQueueNotifier(taskClient),
	)

	// Optional S3 storage for avatars
	var s3Service *services.S3Service
	if cfg.Storage.S3.Bucket != "" {
		s3Service, err = services.NewS3Service(
			cfg.Storage.S3.Bucket,
			cfg.Storage.S3.Endpoint,
			cfg.Storage.S3.Region,
			cfg.Storage.S3.AccessKey,
			cfg.Storage.S3.SecretKey,
		)
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
	}

	// API server
	apiServer := api.NewServer(cfg, api.Deps{
		DB:       dbInstance,
		Redis:    redisClient,
		Sessions: sessionStore,
		Workflow: workflow,
		Tasks:    taskClient,
		Storage:  s3Service,
	})

	go func() {
		logger.Success("API server started")
		if err := apiServer.Start(); err != nil {
			logger.Error("API server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	taskScheduler.Stop()
	taskServer.Shutdown()
	serverCancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server: %v", err)
	}

	logger.Info("Servers shutdown gracefully")
}

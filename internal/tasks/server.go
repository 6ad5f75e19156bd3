package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"updigital/internal/utils/logger"
)

// Server runs the queue workers.
type Server struct {
	server  *asynq.Server
	handler *TaskHandler
	logger  *logger.Logger
}

// NewServer creates a new task processing server.
func NewServer(redisAddr, username, password string, db int, handler *TaskHandler, log *logger.Logger) *Server {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			StrictPriority: true,
		},
	)

	return &Server{
		server:  server,
		handler: handler,
		logger:  log,
	}
}

// Start registers the handlers and starts processing. It returns once
// the server is running; the context is only used for startup.
func (s *Server) Start(ctx context.Context) error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskTypeVerificationEmail, s.handler.HandleVerificationEmail)
	mux.HandleFunc(TaskTypeResetEmail, s.handler.HandleResetEmail)
	mux.HandleFunc(TaskTypePurgeResets, s.handler.HandlePurgeResets)
	mux.HandleFunc(TaskTypePurgeDeleted, s.handler.HandlePurgeDeleted)

	s.logger.Info("starting task processing server")

	if err := s.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the task processing server.
func (s *Server) Shutdown() {
	s.logger.Info("shutting down task processing server")
	s.server.Shutdown()
}

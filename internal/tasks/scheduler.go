package tasks

import (
	"fmt"

	"github.com/hibiken/asynq"

	"updigital/internal/utils/logger"
)

// Scheduler enqueues the periodic maintenance jobs.
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *logger.Logger
}

// NewScheduler creates a new task scheduler.
func NewScheduler(redisAddr, username, password string, db int, log *logger.Logger) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		&asynq.SchedulerOpts{},
	)

	return &Scheduler{
		scheduler: scheduler,
		logger:    log,
	}
}

// Start registers the cron entries and runs the scheduler (blocking).
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Run()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

func (s *Scheduler) registerTasks() error {
	// Password-reset cleanup (hourly)
	entryID, err := s.scheduler.Register("0 * * * *", asynq.NewTask(
		TaskTypePurgeResets,
		nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryMin),
		asynq.Timeout(TimeoutShort),
	))
	if err != nil {
		return fmt.Errorf("failed to register reset purge: %w", err)
	}
	s.logger.Debug("registered reset purge %s", entryID)

	// Soft-delete cleanup (daily)
	entryID, err = s.scheduler.Register("0 3 * * *", asynq.NewTask(
		TaskTypePurgeDeleted,
		nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryMin),
		asynq.Timeout(TimeoutMedium),
	))
	if err != nil {
		return fmt.Errorf("failed to register deleted purge: %w", err)
	}
	s.logger.Debug("registered deleted purge %s", entryID)

	return nil
}

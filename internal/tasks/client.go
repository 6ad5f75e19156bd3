package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"updigital/internal/utils/logger"
)

// TaskClient enqueues background jobs.
type TaskClient struct {
	client *asynq.Client
	logger *logger.Logger
}

// NewTaskClient creates a new TaskClient with the given Redis
// configuration.
func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	return &TaskClient{
		client: asynq.NewClient(redisOpt),
		logger: logger.New("TASKS"),
	}
}

// Close closes the underlying asynq client.
func (c *TaskClient) Close() error {
	return c.client.Close()
}

// EnqueueVerificationEmail enqueues a confirmation-mail job.
func (c *TaskClient) EnqueueVerificationEmail(ctx context.Context, task VerificationEmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal verification email task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(TaskTypeVerificationEmail, payload),
		asynq.Queue(QueueCritical),
		asynq.Timeout(TimeoutMedium),
		asynq.MaxRetry(RetryDefault),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue verification email task: %w", err)
	}

	c.logger.Info("Enqueued verification email task [%s] in queue %s for user %s",
		info.ID, info.Queue, task.UserID)
	return nil
}

// EnqueueResetEmail enqueues a password-reset-mail job.
func (c *TaskClient) EnqueueResetEmail(ctx context.Context, task ResetEmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal reset email task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(TaskTypeResetEmail, payload),
		asynq.Queue(QueueCritical),
		asynq.Timeout(TimeoutMedium),
		asynq.MaxRetry(RetryDefault),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue reset email task: %w", err)
	}

	c.logger.Info("Enqueued reset email task [%s] in queue %s for user %s",
		info.ID, info.Queue, task.UserID)
	return nil
}

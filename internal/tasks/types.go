package tasks

import "time"

// Task Types
const (
	TaskTypeVerificationEmail = "email:verification"
	TaskTypeResetEmail        = "email:reset"

	TaskTypePurgeResets  = "maintenance:purge_resets"
	TaskTypePurgeDeleted = "maintenance:purge_deleted"
)

// Task Queues
const (
	QueueCritical = "critical" // time-sensitive mail
	QueueDefault  = "default"
	QueueLow      = "low" // background cleanup
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
)

// Task Retry Settings
const (
	RetryDefault = 3
	RetryMin     = 1
)

// VerificationEmailTask asks a worker to mail the confirmation link
// for the given account.
type VerificationEmailTask struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// ResetEmailTask asks a worker to mail a password-reset code.
type ResetEmailTask struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

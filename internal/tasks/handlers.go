package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"updigital/internal/mailer"
	"updigital/internal/models"
	"updigital/internal/utils/logger"
)

// deletedRetention is how long soft-deleted rows stay around before
// the purge job removes them for good.
const deletedRetention = 30 * 24 * time.Hour

// TaskHandler processes queued jobs.
type TaskHandler struct {
	db     *gorm.DB
	mailer *mailer.SMTPMailer
	log    *logger.Logger
}

func NewTaskHandler(db *gorm.DB, m *mailer.SMTPMailer) *TaskHandler {
	return &TaskHandler{
		db:     db,
		mailer: m,
		log:    logger.New("TASKS"),
	}
}

// HandleVerificationEmail loads the account and sends the
// confirmation mail. Returning an error lets asynq retry with its
// configured backoff; after max retries the job is dropped. Delivery
// is best-effort and nothing upstream is waiting on it.
func (h *TaskHandler) HandleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	var task VerificationEmailTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("failed to unmarshal verification email task: %w", err)
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", task.UserID).Error; err != nil {
		return fmt.Errorf("failed to load user %s: %w", task.UserID, err)
	}

	if err := h.mailer.SendVerification(ctx, task.Token, &user); err != nil {
		return h.log.Error("verification mail to %s failed: %v", user.Email, err)
	}

	h.log.Success("Sent verification mail to %s", user.Email)
	return nil
}

// HandleResetEmail mails a password-reset code.
func (h *TaskHandler) HandleResetEmail(ctx context.Context, t *asynq.Task) error {
	var task ResetEmailTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("failed to unmarshal reset email task: %w", err)
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", task.UserID).Error; err != nil {
		return fmt.Errorf("failed to load user %s: %w", task.UserID, err)
	}

	body := fmt.Sprintf("<b>Hi %s, your password reset code is %s. It expires in 15 minutes.</b>",
		user.FirstName, task.Code)
	if err := h.mailer.Send(ctx, user.Email, "Password reset", body); err != nil {
		return h.log.Error("reset mail to %s failed: %v", user.Email, err)
	}

	h.log.Success("Sent reset mail to %s", user.Email)
	return nil
}

// HandlePurgeResets removes expired or consumed password-reset codes.
func (h *TaskHandler) HandlePurgeResets(ctx context.Context, t *asynq.Task) error {
	res := h.db.WithContext(ctx).
		Where("used = ? OR expires_at < ?", true, time.Now()).
		Delete(&models.PasswordReset{})
	if res.Error != nil {
		return fmt.Errorf("failed to purge password resets: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		h.log.Info("Purged %d password resets", res.RowsAffected)
	}
	return nil
}

// HandlePurgeDeleted hard-deletes rows soft-deleted longer ago than
// the retention window.
func (h *TaskHandler) HandlePurgeDeleted(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().Add(-deletedRetention)

	for _, model := range []any{&models.Campaign{}, &models.Client{}} {
		res := h.db.WithContext(ctx).
			Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
			Delete(model)
		if res.Error != nil {
			return fmt.Errorf("failed to purge deleted rows: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			h.log.Info("Purged %d soft-deleted rows (%T)", res.RowsAffected, model)
		}
	}

	return nil
}

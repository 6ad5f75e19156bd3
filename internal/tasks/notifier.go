package tasks

import (
	"context"

	"updigital/internal/models"
)

// QueueNotifier satisfies auth.Notifier by enqueueing the verification
// mail instead of sending it inline, decoupling delivery from the
// signup request/response cycle. Enqueue failures bubble up so the
// workflow can log them; they never fail the signup.
type QueueNotifier struct {
	client *TaskClient
}

func NewQueueNotifier(client *TaskClient) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) SendVerification(ctx context.Context, token string, user *models.User) error {
	return n.client.EnqueueVerificationEmail(ctx, VerificationEmailTask{
		UserID: user.ID,
		Token:  token,
	})
}

package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"updigital/internal/config"
	"updigital/internal/models"
)

// SMTPMailer sends mail through a single configured SMTP server. The
// transport settings are injected at construction and sends are
// throttled by a token channel sized to the configured rate.
type SMTPMailer struct {
	config      config.SMTPConfig
	publicURL   string
	rateLimiter chan struct{}
}

func NewSMTPMailer(cfg config.SMTPConfig, publicURL string) *SMTPMailer {
	rate := cfg.MaxSendRate
	if rate < 1 {
		rate = 1
	}

	rateLimiter := make(chan struct{}, rate)
	for i := 0; i < rate; i++ {
		rateLimiter <- struct{}{}
	}

	return &SMTPMailer{
		config:      cfg,
		publicURL:   publicURL,
		rateLimiter: rateLimiter,
	}
}

// Send delivers a single HTML mail.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	<-m.rateLimiter
	defer func() {
		// Release the token after 1 second to hold the send rate.
		time.Sleep(time.Second)
		m.rateLimiter <- struct{}{}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	auth := sasl.NewPlainClient("", m.config.Username, m.config.Password)

	headers := fmt.Sprintf("To: %s\nSubject: %s\nContent-Type: text/html; charset=UTF-8\n\n", to, subject)
	msg := strings.NewReader(headers + body)

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendVerification mails the account-confirmation link. It satisfies
// auth.Notifier for wirings that send inline; production wiring goes
// through the task queue instead.
func (m *SMTPMailer) SendVerification(ctx context.Context, token string, user *models.User) error {
	return m.Send(ctx, user.Email, "Confirm email address", VerificationBody(m.publicURL, token, user))
}

// VerificationBody renders the confirmation mail body.
func VerificationBody(publicURL, token string, user *models.User) string {
	link := fmt.Sprintf("%s/api/auth/verify/%s", publicURL, token)
	return fmt.Sprintf(`<b>Hi %s, follow this link to activate your account: <a href="%s">click</a></b>`, user.FirstName, link)
}

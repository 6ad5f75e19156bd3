package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"updigital/internal/config"
	"updigital/internal/models"
)

func TestVerificationBody(t *testing.T) {
	t.Parallel()

	user := &models.User{FirstName: "Ana"}
	body := VerificationBody("https://app.example.com", "tok123", user)

	assert.Contains(t, body, "Hi Ana")
	assert.Contains(t, body, `href="https://app.example.com/api/auth/verify/tok123"`)
}

func TestNewSMTPMailerRate(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer(config.SMTPConfig{MaxSendRate: 3}, "http://localhost")
	assert.Equal(t, 3, cap(m.rateLimiter))
	assert.Len(t, m.rateLimiter, 3)

	// A non-positive rate still allows sending, one at a time.
	m = NewSMTPMailer(config.SMTPConfig{MaxSendRate: 0}, "http://localhost")
	assert.Equal(t, 1, cap(m.rateLimiter))
}

package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/repair-ticket-service/internal/config"
)

func TestNewSelectsMailerByHost(t *testing.T) {
	logger := zap.NewNop()

	_, isLog := New(config.NotificationConfig{}, logger).(*LogMailer)
	assert.True(t, isLog)

	smtp, isSMTP := New(config.NotificationConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, EmailFrom: "a@b.c"}, logger).(*SMTPMailer)
	assert.True(t, isSMTP)
	assert.Equal(t, "smtp.example.com", smtp.host)
}

func TestLogMailerRecordsMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	err := m.Send(context.Background(), "cli@example.com", "hola", "<p>x</p>")
	assert.NoError(t, err)
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "cli@example.com", entries[0].ContextMap()["to"])
}

func TestSMTPMailerRejectsInvalidRecipient(t *testing.T) {
	m := NewSMTPMailer(config.NotificationConfig{SMTPHost: "localhost", SMTPPort: 2525, EmailFrom: "noreply@example.com"})
	err := m.Send(context.Background(), "not an address", "s", "b")
	assert.Error(t, err)
}

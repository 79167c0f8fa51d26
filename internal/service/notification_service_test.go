package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/observability"
)

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

func TestRenderStatusEmail(t *testing.T) {
	cases := []struct {
		name     string
		ticket   domain.Ticket
		contains []string
		absent   []string
	}{
		{
			name:     "pending without solution",
			ticket:   domain.Ticket{ID: 3, Status: "pendiente", Price: floatPtr(50)},
			contains: []string{"#3", "#daba00ff", "Tu equipo está en espera de revisión.", "Aún no disponible"},
			absent:   []string{"Precio final"},
		},
		{
			name:     "ready shows price",
			ticket:   domain.Ticket{ID: 5, Status: "Listo", Price: floatPtr(120), Solution: strPtr("fuente nueva")},
			contains: []string{"#5", "#10B981", "listo para ser retirado", "fuente nueva", "$ 120.00"},
		},
		{
			name:     "other status is echoed",
			ticket:   domain.Ticket{ID: 9, Status: "resuelto"},
			contains: []string{"#374151", "El estado actual de tu ticket es: resuelto"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := RenderStatusEmail(&tc.ticket)
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tc.absent {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestRenderStatusEmailEscapesInput(t *testing.T) {
	body, err := RenderStatusEmail(&domain.Ticket{ID: 1, Status: "<b>x</b>", Solution: strPtr("<script>")})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestNotifyStatusSendsToCustomer(t *testing.T) {
	mailer := &fakeMailer{}
	metrics := observability.NewMetrics()
	n := NewNotificationService(mailer, zap.NewNop(), metrics)

	err := n.NotifyStatus(context.Background(), &domain.Ticket{ID: 5, CustomerEmail: "c@x.com", Status: "listo"})
	require.NoError(t, err)
	assert.Equal(t, "c@x.com", mailer.to)
	assert.Equal(t, "🔔 Actualización de tu ticket #5", mailer.subject)
	assert.Contains(t, mailer.body, "<!DOCTYPE html>")

	mailer.err = errors.New("refused")
	err = n.NotifyStatus(context.Background(), &domain.Ticket{ID: 6, CustomerEmail: "c@x.com", Status: "listo"})
	assert.Error(t, err)

	series, err := testutil.GatherAndCount(metrics.Registry(), "tickets_notifications_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/mail"
	"github.com/spec-kit/repair-ticket-service/internal/observability"
)

// Notifier tells a customer about the current state of their ticket.
type Notifier interface {
	NotifyStatus(ctx context.Context, ticket *domain.Ticket) error
}

const solutionPlaceholder = "Aún no disponible"

var statusEmailTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Actualización de Ticket</title></head>
<body style="font-family: Arial, sans-serif; background-color: #0F172A; color: #E0E7FF; margin: 0; padding: 20px;">
<div style="max-width: 600px; margin: auto; background: #1E293B; border-radius: 10px; padding: 20px;">
<h2 style="color: #3B82F6;">🔔 Actualización de tu ticket #{{.ID}}</h2>
<p>Hola,</p>
<p style="font-size: 16px;">{{.Message}}</p>
<div style="background-color: #111827; padding: 15px; border-radius: 8px; margin-top: 20px;">
<p><strong>Estado actual:</strong> <span style="color: {{.Color}}; font-weight: bold; text-transform: capitalize;">{{.Status}}</span></p>
<p><strong>Solución:</strong> {{.Solution}}</p>
{{- if .Price}}
<p><strong>Precio final:</strong> {{.Price}}</p>
{{- end}}
</div>
<p style="margin-top: 30px;">Si necesitás más información, no dudes en contactarnos.</p>
<p>Gracias por confiar en <span style="color: #3B82F6;">Com.Unity Tech - Computers Service</span>.</p>
<hr style="border-color: #334155; margin: 30px 0;" />
<p style="font-size: 12px; color: #94A3B8;">Este correo fue generado automáticamente. Por favor, no respondas a este email.</p>
</div>
</body>
</html>`))

type statusEmailView struct {
	ID       int64
	Status   string
	Color    template.CSS
	Message  string
	Solution string
	Price    string
}

// NotificationService renders and sends status emails.
type NotificationService struct {
	mailer  mail.Mailer
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(mailer mail.Mailer, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{mailer: mailer, logger: logger, metrics: metrics}
}

// NotifyStatus sends the status email to the ticket's customer.
func (n *NotificationService) NotifyStatus(ctx context.Context, ticket *domain.Ticket) error {
	body, err := RenderStatusEmail(ticket)
	if err != nil {
		n.metrics.RecordNotification("failed")
		return err
	}
	if err := n.mailer.Send(ctx, ticket.CustomerEmail, StatusEmailSubject(ticket.ID), body); err != nil {
		n.metrics.RecordNotification("failed")
		return err
	}
	n.metrics.RecordNotification("sent")
	n.logger.Info("status email sent",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("to", ticket.CustomerEmail),
	)
	return nil
}

// StatusEmailSubject is the subject line of a status email.
func StatusEmailSubject(id int64) string {
	return fmt.Sprintf("🔔 Actualización de tu ticket #%d", id)
}

// RenderStatusEmail builds the HTML body for ticket.
func RenderStatusEmail(ticket *domain.Ticket) (string, error) {
	view := statusEmailView{
		ID:       ticket.ID,
		Status:   ticket.Status,
		Solution: solutionPlaceholder,
	}

	switch strings.ToLower(ticket.Status) {
	case domain.TicketStatusPending:
		view.Color = "#daba00ff"
		view.Message = "Tu equipo está en espera de revisión."
	case domain.TicketStatusInRepair:
		view.Color = "#eb6e25ff"
		view.Message = "Tu equipo está siendo reparado."
	case domain.TicketStatusReady:
		view.Color = "#10B981"
		view.Message = "✅ ¡Tu equipo ya está listo para ser retirado!"
	default:
		view.Color = "#374151"
		view.Message = "El estado actual de tu ticket es: " + ticket.Status
	}

	if ticket.Solution != nil {
		view.Solution = *ticket.Solution
	}
	if ticket.StatusIs(domain.TicketStatusReady) && ticket.Price != nil {
		view.Price = fmt.Sprintf("$ %.2f", *ticket.Price)
	}

	var buf bytes.Buffer
	if err := statusEmailTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render status email: %w", err)
	}
	return buf.String(), nil
}

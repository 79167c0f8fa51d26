package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/events"
	"github.com/spec-kit/repair-ticket-service/internal/observability"
)

// StartAuditWorker subscribes to ticket lifecycle events, logging each one
// and counting it in the metrics.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := func(_ context.Context, event events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Time("at", event.Timestamp),
		}
		if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
			fields = append(fields,
				zap.String("old_status", payload.OldStatus),
				zap.String("new_status", payload.NewStatus),
			)
			metrics.RecordStatusChange(statusLabel(payload.NewStatus))
		}
		logger.Info("ticket event", fields...)
		metrics.RecordTicketEvent(string(event.Type))
		return nil
	}

	for _, eventType := range events.AllTicketEvents {
		dispatcher.Subscribe(eventType, handler)
	}
}

// statusLabel folds free-text statuses onto the recognized set so the
// metric label stays bounded.
func statusLabel(status string) string {
	for _, known := range []string{
		domain.TicketStatusPending,
		domain.TicketStatusInRepair,
		domain.TicketStatusReady,
		domain.TicketStatusResolved,
	} {
		if domain.StatusEquals(status, known) {
			return known
		}
	}
	return "other"
}

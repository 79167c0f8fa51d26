package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/events"
	"github.com/spec-kit/repair-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util/errorutil"
)

// NotificationEnabledMessage confirms that a ticket will email its customer.
const NotificationEnabledMessage = "✅ Notificaciones activadas para este ticket"

// TicketPatch lists the fields an update may change. Nil fields are left untouched.
type TicketPatch struct {
	Status             *string
	Solution           *string
	Price              *float64
	Priority           *string
	ProblemDescription *string
	NotifyCustomer     *bool
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	notifier   Notifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	loc        *time.Location
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Notifier   Notifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Location   *time.Location
	Now        func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		loc:        deps.Location,
		now:        deps.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// today is the current civil date in the reference timezone.
func (s *TicketService) today() time.Time {
	return domain.CivilDate(s.now(), s.loc)
}

// Create persists a new ticket and returns it with its assigned id.
func (s *TicketService) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	created := ticket.Clone()
	created.ID = 0
	created.CustomerEmail = strings.ToLower(strings.TrimSpace(created.CustomerEmail))

	today := s.today()
	created.StampTransition(today)
	created.StampCreation(today)

	if err := s.tickets.Create(ctx, created); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.EventTicketCreated, created.ID, events.TicketCreatedPayload{
		CustomerEmail: created.CustomerEmail,
		Status:        created.Status,
	})
	return created, nil
}

// Update applies patch to the ticket. The ticket is always persisted; the
// customer is emailed only when something changed and notifications are on.
func (s *TicketService) Update(ctx context.Context, id int64, patch TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	previousStatus := ticket.Status
	statusChanged := false

	if patch.Status != nil && !domain.StatusEquals(*patch.Status, ticket.Status) {
		ticket.Status = *patch.Status
		ticket.StampTransition(s.today())
		changed = true
		statusChanged = true
	}
	if patch.Solution != nil && (ticket.Solution == nil || *ticket.Solution != *patch.Solution) {
		v := *patch.Solution
		ticket.Solution = &v
		changed = true
	}
	if patch.Price != nil && (ticket.Price == nil || *ticket.Price != *patch.Price) {
		v := *patch.Price
		ticket.Price = &v
		changed = true
	}
	if patch.Priority != nil && (ticket.Priority == nil || *ticket.Priority != *patch.Priority) {
		v := *patch.Priority
		ticket.Priority = &v
		changed = true
	}
	if patch.ProblemDescription != nil && ticket.ProblemDescription != *patch.ProblemDescription {
		ticket.ProblemDescription = *patch.ProblemDescription
		changed = true
	}
	if patch.NotifyCustomer != nil && ticket.NotifyCustomer != *patch.NotifyCustomer {
		ticket.NotifyCustomer = *patch.NotifyCustomer
		changed = true
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.mapStoreError(err, id)
	}

	if changed && ticket.NotifyCustomer {
		s.notify(ctx, ticket)
	}

	if changed {
		s.publishEvent(ctx, events.EventTicketUpdated, ticket.ID, nil)
	}
	if statusChanged {
		s.publishEvent(ctx, events.EventTicketStatusChanged, ticket.ID, events.TicketStatusChangedPayload{
			OldStatus: previousStatus,
			NewStatus: ticket.Status,
		})
	}
	return ticket, nil
}

// Delete removes the ticket. Missing tickets are not an error.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	if err := s.tickets.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.EventTicketDeleted, id, nil)
	return nil
}

// EnableNotification turns on customer emails for the ticket. It sends nothing itself.
func (s *TicketService) EnableNotification(ctx context.Context, id int64) (string, error) {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return "", err
	}
	ticket.NotifyCustomer = true
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return "", s.mapStoreError(err, id)
	}
	s.publishEvent(ctx, events.EventNotificationEnabled, id, nil)
	return NotificationEnabledMessage, nil
}

// ListAll returns every ticket.
func (s *TicketService) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetByID returns a single ticket.
func (s *TicketService) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return s.getTicket(ctx, id)
}

// ListByCustomer returns the tickets of a customer, matching email case-insensitively.
func (s *TicketService) ListByCustomer(ctx context.Context, email string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByCustomerEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) getTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}
	return ticket, nil
}

func (s *TicketService) mapStoreError(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

func (s *TicketService) notify(ctx context.Context, ticket *domain.Ticket) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyStatus(ctx, ticket); err != nil {
		s.logger.Warn("status email failed",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("to", ticket.CustomerEmail),
			zap.Error(err),
		)
	}
}

func (s *TicketService) publishEvent(ctx context.Context, eventType events.EventType, ticketID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Timestamp: s.now().UTC(),
		Payload:   payload,
	})
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

const ticketKeyPrefix = "ticket:"

// CachedTicketRepository adds a Redis read-through cache for single tickets.
// Cache failures are logged and never fail the underlying operation.
type CachedTicketRepository struct {
	repo   TicketRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTicketRepository wraps repo with a ticket cache.
func NewCachedTicketRepository(repo TicketRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) TicketRepository {
	return &CachedTicketRepository{repo: repo, client: client, ttl: ttl, logger: logger}
}

// cachedTicket is the JSON shape stored in Redis.
type cachedTicket struct {
	ID                 int64      `json:"id"`
	CustomerEmail      string     `json:"customer_email"`
	ProblemDescription string     `json:"problem_description"`
	Status             string     `json:"status"`
	Solution           *string    `json:"solution,omitempty"`
	CreationDate       *time.Time `json:"creation_date,omitempty"`
	Price              *float64   `json:"price,omitempty"`
	Priority           *string    `json:"priority,omitempty"`
	NotifyCustomer     bool       `json:"notify_customer"`
	PendingDate        *time.Time `json:"pending_date,omitempty"`
	RepairDate         *time.Time `json:"repair_date,omitempty"`
	ReadyDate          *time.Time `json:"ready_date,omitempty"`
}

func (r *CachedTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.repo.Create(ctx, ticket); err != nil {
		return err
	}
	r.store(ctx, ticket)
	return nil
}

func (r *CachedTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.repo.Update(ctx, ticket); err != nil {
		return err
	}
	r.invalidate(ctx, ticket.ID)
	return nil
}

func (r *CachedTicketRepository) Delete(ctx context.Context, id int64) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	data, err := r.client.Get(ctx, ticketKey(id)).Bytes()
	switch {
	case err == nil:
		var cached cachedTicket
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached.toDomain(), nil
		}
		r.logger.Warn("discarding undecodable cached ticket", zap.Int64("ticket_id", id))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("ticket cache read failed", zap.Int64("ticket_id", id), zap.Error(err))
	}

	ticket, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, ticket)
	return ticket, nil
}

func (r *CachedTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.repo.List(ctx)
}

func (r *CachedTicketRepository) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	return r.repo.ListByCustomerEmail(ctx, email)
}

func (r *CachedTicketRepository) store(ctx context.Context, ticket *domain.Ticket) {
	data, err := json.Marshal(fromDomain(ticket))
	if err != nil {
		r.logger.Warn("ticket cache encode failed", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, ticketKey(ticket.ID), data, r.ttl).Err(); err != nil {
		r.logger.Warn("ticket cache write failed", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (r *CachedTicketRepository) invalidate(ctx context.Context, id int64) {
	if err := r.client.Del(ctx, ticketKey(id)).Err(); err != nil {
		r.logger.Warn("ticket cache invalidation failed", zap.Int64("ticket_id", id), zap.Error(err))
	}
}

func ticketKey(id int64) string {
	return fmt.Sprintf("%s%d", ticketKeyPrefix, id)
}

func fromDomain(t *domain.Ticket) cachedTicket {
	return cachedTicket{
		ID:                 t.ID,
		CustomerEmail:      t.CustomerEmail,
		ProblemDescription: t.ProblemDescription,
		Status:             t.Status,
		Solution:           t.Solution,
		CreationDate:       t.CreationDate,
		Price:              t.Price,
		Priority:           t.Priority,
		NotifyCustomer:     t.NotifyCustomer,
		PendingDate:        t.PendingDate,
		RepairDate:         t.RepairDate,
		ReadyDate:          t.ReadyDate,
	}
}

func (c cachedTicket) toDomain() *domain.Ticket {
	return &domain.Ticket{
		ID:                 c.ID,
		CustomerEmail:      c.CustomerEmail,
		ProblemDescription: c.ProblemDescription,
		Status:             c.Status,
		Solution:           c.Solution,
		CreationDate:       c.CreationDate,
		Price:              c.Price,
		Priority:           c.Priority,
		NotifyCustomer:     c.NotifyCustomer,
		PendingDate:        c.PendingDate,
		RepairDate:         c.RepairDate,
		ReadyDate:          c.ReadyDate,
	}
}

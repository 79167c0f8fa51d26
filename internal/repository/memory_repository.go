package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

// MemoryTicketRepository keeps tickets in process memory. It backs the service
// when no database is configured and doubles as the test store.
type MemoryTicketRepository struct {
	mu     sync.RWMutex
	nextID int64
	store  map[int64]*domain.Ticket
}

// NewMemoryTicketRepository returns an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{store: make(map[int64]*domain.Ticket)}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = r.nextID
	r.store[ticket.ID] = ticket.Clone()
	return nil
}

func (r *MemoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.store[ticket.ID]
	if !ok {
		return ErrNotFound
	}
	next := ticket.Clone()
	next.CreationDate = current.CreationDate
	r.store[ticket.ID] = next
	return nil
}

func (r *MemoryTicketRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

func (r *MemoryTicketRepository) List(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(*domain.Ticket) bool { return true }), nil
}

func (r *MemoryTicketRepository) ListByCustomerEmail(_ context.Context, email string) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(t *domain.Ticket) bool {
		return strings.EqualFold(t.CustomerEmail, email)
	}), nil
}

func (r *MemoryTicketRepository) sorted(keep func(*domain.Ticket) bool) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(r.store))
	for _, t := range r.store {
		if keep(t) {
			out = append(out, *t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MemoryUserRepository keeps accounts in process memory keyed by email.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	store  map[string]domain.User
}

// NewMemoryUserRepository returns an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{store: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := r.store[key]; exists {
		return ErrDuplicate
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.store[key] = *user
	return nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.store[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

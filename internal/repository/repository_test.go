package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

func TestMemoryTicketRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketRepository()

	first := &domain.Ticket{CustomerEmail: "ana@example.com", Status: domain.TicketStatusPending}
	second := &domain.Ticket{CustomerEmail: "bob@example.com", Status: domain.TicketStatusReady}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.CustomerEmail)

	got.Status = domain.TicketStatusInRepair
	require.NoError(t, repo.Update(ctx, got))
	reloaded, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInRepair, reloaded.Status)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)

	require.NoError(t, repo.Delete(ctx, 1))
	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Update(ctx, &domain.Ticket{ID: 99}), ErrNotFound)
}

func TestMemoryTicketRepositoryKeepsCreationDate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketRepository()
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	ticket := &domain.Ticket{CreationDate: &created}
	require.NoError(t, repo.Create(ctx, ticket))

	other := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ticket.CreationDate = &other
	require.NoError(t, repo.Update(ctx, ticket))

	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, created, *got.CreationDate)
}

func TestMemoryTicketRepositoryListByCustomerIgnoresCase(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTicketRepository()
	require.NoError(t, repo.Create(ctx, &domain.Ticket{CustomerEmail: "foo@bar.com"}))
	require.NoError(t, repo.Create(ctx, &domain.Ticket{CustomerEmail: "other@bar.com"}))

	tickets, err := repo.ListByCustomerEmail(ctx, "FOO@Bar.com")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "foo@bar.com", tickets[0].CustomerEmail)
}

func TestMemoryUserRepositoryRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "ana@example.com"}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{Email: "ANA@example.com"}), ErrDuplicate)

	user, err := repo.GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

type countingRepo struct {
	TicketRepository
	gets int
}

func (c *countingRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	c.gets++
	return c.TicketRepository.GetByID(ctx, id)
}

func newCached(t *testing.T) (*countingRepo, TicketRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	inner := &countingRepo{TicketRepository: NewMemoryTicketRepository()}
	return inner, NewCachedTicketRepository(inner, client, time.Minute, zap.NewNop()), mr
}

func TestCachedTicketRepositoryServesFromCache(t *testing.T) {
	ctx := context.Background()
	inner, cached, mr := newCached(t)

	ticket := &domain.Ticket{CustomerEmail: "ana@example.com", Status: "pendiente"}
	require.NoError(t, cached.Create(ctx, ticket))
	assert.True(t, mr.Exists("ticket:1"))

	got, err := cached.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.CustomerEmail)
	assert.Zero(t, inner.gets)
}

func TestCachedTicketRepositoryInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	inner, cached, mr := newCached(t)

	ticket := &domain.Ticket{CustomerEmail: "ana@example.com", Status: "pendiente"}
	require.NoError(t, cached.Create(ctx, ticket))

	ticket.Status = "listo"
	require.NoError(t, cached.Update(ctx, ticket))
	assert.False(t, mr.Exists("ticket:1"))

	got, err := cached.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "listo", got.Status)
	assert.Equal(t, 1, inner.gets)
	assert.True(t, mr.Exists("ticket:1"))

	require.NoError(t, cached.Delete(ctx, ticket.ID))
	assert.False(t, mr.Exists("ticket:1"))
	_, err = cached.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedTicketRepositoryFallsThroughWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	inner, cached, mr := newCached(t)
	mr.Close()

	ticket := &domain.Ticket{CustomerEmail: "ana@example.com"}
	require.NoError(t, cached.Create(ctx, ticket))

	got, err := cached.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
	assert.Equal(t, 1, inner.gets)
}

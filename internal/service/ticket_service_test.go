package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/events"
	"github.com/spec-kit/repair-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util/errorutil"
)

type recordingNotifier struct {
	calls []domain.Ticket
	err   error
}

func (n *recordingNotifier) NotifyStatus(_ context.Context, ticket *domain.Ticket) error {
	n.calls = append(n.calls, *ticket.Clone())
	return n.err
}

type writeCountingRepo struct {
	repository.TicketRepository
	updates int
}

func (r *writeCountingRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.updates++
	return r.TicketRepository.Update(ctx, ticket)
}

var buenosAires = func() *time.Location {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		panic(err)
	}
	return loc
}()

type fixture struct {
	svc      *TicketService
	repo     *writeCountingRepo
	notifier *recordingNotifier
	clock    *time.Time
	events   []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	// 02:00 UTC on 11 March is still 10 March in Buenos Aires.
	now := time.Date(2025, time.March, 11, 2, 0, 0, 0, time.UTC)
	f := &fixture{
		repo:     &writeCountingRepo{TicketRepository: repository.NewMemoryTicketRepository()},
		notifier: &recordingNotifier{},
		clock:    &now,
	}
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	for _, et := range events.AllTicketEvents {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.events = append(f.events, e)
			return nil
		})
	}
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo: f.repo,
		Notifier:   f.notifier,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Location:   buenosAires,
		Now:        func() time.Time { return *f.clock },
	})
	return f
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func TestCreateNormalizesEmailAndStampsDates(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), &domain.Ticket{
		CustomerEmail:      "Foo@Bar.com",
		ProblemDescription: "no enciende",
		Status:             "pendiente",
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "foo@bar.com", created.CustomerEmail)
	require.NotNil(t, created.PendingDate)
	require.NotNil(t, created.CreationDate)
	assert.Equal(t, day(2025, time.March, 10), *created.PendingDate)
	assert.Equal(t, *created.PendingDate, *created.CreationDate)
	assert.Nil(t, created.RepairDate)
	assert.Nil(t, created.ReadyDate)

	stored, err := f.svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "foo@bar.com", stored.CustomerEmail)

	require.Len(t, f.events, 1)
	assert.Equal(t, events.EventTicketCreated, f.events[0].Type)
}

func TestCreateWithUnrecognizedStatusStillSetsCreationDate(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), &domain.Ticket{CustomerEmail: "a@b.c", Status: "esperando repuesto"})
	require.NoError(t, err)
	require.NotNil(t, created.CreationDate)
	assert.Equal(t, day(2025, time.March, 10), *created.CreationDate)
	assert.Nil(t, created.PendingDate)
}

func TestUpdateToReadyNotifiesAndSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: "c@x.com", Status: "pendiente", NotifyCustomer: true})
	require.NoError(t, err)

	*f.clock = time.Date(2025, time.March, 20, 15, 0, 0, 0, time.UTC)
	updated, err := f.svc.Update(ctx, created.ID, TicketPatch{Status: strPtr("listo"), Price: floatPtr(120.0)})
	require.NoError(t, err)

	require.NotNil(t, updated.ReadyDate)
	assert.Equal(t, day(2025, time.March, 20), *updated.ReadyDate)
	require.Len(t, f.notifier.calls, 1)
	assert.Contains(t, StatusEmailSubject(f.notifier.calls[0].ID), "#1")

	stored, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "listo", stored.Status)
	require.NotNil(t, stored.Price)
	assert.Equal(t, 120.0, *stored.Price)
	assert.Equal(t, day(2025, time.March, 10), *stored.CreationDate)

	var types []events.EventType
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketUpdated, events.EventTicketStatusChanged}, types)
}

func TestUpdateWithIdenticalPatchSendsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &domain.Ticket{
		CustomerEmail:      "c@x.com",
		ProblemDescription: "pantalla",
		Status:             "pendiente",
		Solution:           strPtr("cambio de cable"),
		NotifyCustomer:     true,
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, TicketPatch{
		Status:             strPtr("PENDIENTE"),
		Solution:           strPtr("cambio de cable"),
		ProblemDescription: strPtr("pantalla"),
		NotifyCustomer:     boolPtr(true),
	})
	require.NoError(t, err)

	assert.Empty(t, f.notifier.calls)
	assert.Equal(t, 1, f.repo.updates, "update persists even without changes")
}

func TestUpdateSolutionOnlyNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: "c@x.com", Status: "en reparación", NotifyCustomer: true})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, TicketPatch{Solution: strPtr("reemplazo de fuente")})
	require.NoError(t, err)

	assert.Equal(t, "reemplazo de fuente", *updated.Solution)
	assert.Len(t, f.notifier.calls, 1)
}

func TestUpdateWithoutOptInDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: "c@x.com", Status: "pendiente"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, TicketPatch{Status: strPtr("listo")})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.calls)
}

func TestUpdateMissingTicketIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), 99, TicketPatch{Status: strPtr("listo")})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Zero(t, f.repo.updates)
	assert.Empty(t, f.notifier.calls)
}

func TestTransitionDatesAreWriteOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: "c@x.com", Status: "pendiente"})
	require.NoError(t, err)
	firstPending := *created.PendingDate

	*f.clock = time.Date(2025, time.April, 2, 12, 0, 0, 0, time.UTC)
	_, err = f.svc.Update(ctx, created.ID, TicketPatch{Status: strPtr("en reparación")})
	require.NoError(t, err)

	*f.clock = time.Date(2025, time.April, 9, 12, 0, 0, 0, time.UTC)
	_, err = f.svc.Update(ctx, created.ID, TicketPatch{Status: strPtr("pendiente")})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, created.ID, TicketPatch{Status: strPtr("en reparación")})
	require.NoError(t, err)

	stored, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, firstPending, *stored.PendingDate)
	assert.Equal(t, day(2025, time.April, 2), *stored.RepairDate)
	assert.Equal(t, firstPending, *stored.CreationDate)
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: "c@x.com", Status: "pendiente"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	require.NoError(t, f.svc.Delete(ctx, created.ID))

	_, err = f.svc.GetByID(ctx, created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEnableNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.EnableNotification(ctx, 42)
	assert.True(t, apperrors.IsNotFound(err))

	created, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: "c@x.com", Status: "pendiente"})
	require.NoError(t, err)

	msg, err := f.svc.EnableNotification(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, NotificationEnabledMessage, msg)
	assert.Empty(t, f.notifier.calls)

	stored, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.NotifyCustomer)
}

func TestListByCustomerIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, email := range []string{"Ana@Mail.com", "ana@mail.com", "otro@mail.com"} {
		_, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: email, Status: "pendiente"})
		require.NoError(t, err)
	}

	mine, err := f.svc.ListByCustomer(ctx, "ANA@MAIL.COM")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateTreatsTrailingWhitespaceAsNewStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: "c@x.com", Status: "pendiente", NotifyCustomer: true})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, TicketPatch{Status: strPtr("pendiente ")})
	require.NoError(t, err)
	assert.Equal(t, "pendiente ", updated.Status)
	assert.Len(t, f.notifier.calls, 1)
}

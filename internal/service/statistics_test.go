package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

func TestSummaryCountsEmpty(t *testing.T) {
	f := newFixture(t)

	counts, err := f.svc.SummaryCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SummaryCounts{}, counts)
}

func TestSummaryCountsByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, status := range []string{"pendiente", "Pendiente", "en reparación", "listo", "RESUELTO", "otro"} {
		_, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: "a@b.c", Status: status})
		require.NoError(t, err)
	}

	counts, err := f.svc.SummaryCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, SummaryCounts{Total: 6, Pending: 2, InRepair: 1, Resolved: 2}, counts)
}

func TestMonthlyHistogramWindowAndBuckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	march2023 := day(2023, time.March, 5)
	march2025 := day(2025, time.March, 28)
	june := day(2024, time.June, 1)
	for _, created := range []time.Time{march2023, march2025, june} {
		c := created
		_, err := f.svc.Create(ctx, &domain.Ticket{CustomerEmail: "a@b.c", Status: "listo", CreationDate: &c})
		require.NoError(t, err)
	}
	// Tickets without a creation date are skipped.
	require.NoError(t, f.repo.TicketRepository.Create(ctx, &domain.Ticket{CustomerEmail: "a@b.c", Status: "pendiente"}))

	buckets, err := f.svc.MonthlyHistogram(ctx)
	require.NoError(t, err)
	require.Len(t, buckets, HistogramMonths)

	months := make([]string, len(buckets))
	for i, b := range buckets {
		months[i] = b.Month
	}
	assert.Equal(t, []string{"mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic", "ene", "feb"}, months)
	assert.Equal(t, int64(2), buckets[0].Tickets)
	assert.Equal(t, int64(1), buckets[3].Tickets)
	assert.Equal(t, int64(0), buckets[1].Tickets)
}

func TestSpanishShortMonth(t *testing.T) {
	assert.Equal(t, "ene", SpanishShortMonth(time.January))
	assert.Equal(t, "sept", SpanishShortMonth(time.September))
	assert.Equal(t, "dic", SpanishShortMonth(time.December))
}

package service

import (
	"context"
	"time"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util/errorutil"
)

// HistogramMonths is the size of the rolling window.
const HistogramMonths = 12

var spanishShortMonths = [12]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sept", "oct", "nov", "dic",
}

// SummaryCounts aggregates tickets by status. Resolved counts both
// "resuelto" and "listo".
type SummaryCounts struct {
	Total    int64
	Pending  int64
	InRepair int64
	Resolved int64
}

// MonthBucket is one entry of the monthly histogram.
type MonthBucket struct {
	Month   string
	Tickets int64
}

// SpanishShortMonth returns the short Spanish name of m.
func SpanishShortMonth(m time.Month) string {
	return spanishShortMonths[int(m)-1]
}

// SummaryCounts counts all tickets by status.
func (s *TicketService) SummaryCounts(ctx context.Context) (SummaryCounts, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return SummaryCounts{}, apperrors.MapError(err)
	}

	counts := SummaryCounts{Total: int64(len(tickets))}
	for i := range tickets {
		t := &tickets[i]
		switch {
		case t.StatusIs(domain.TicketStatusPending):
			counts.Pending++
		case t.StatusIs(domain.TicketStatusInRepair):
			counts.InRepair++
		case t.StatusIs(domain.TicketStatusResolved), t.StatusIs(domain.TicketStatusReady):
			counts.Resolved++
		}
	}
	return counts, nil
}

// MonthlyHistogram returns twelve buckets starting at the current month and
// moving forward. Tickets are bucketed by creation month name regardless of
// year; tickets without a creation date are skipped.
func (s *TicketService) MonthlyHistogram(ctx context.Context) ([]MonthBucket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	current := s.today().Month()
	buckets := make([]MonthBucket, HistogramMonths)
	index := make(map[time.Month]int, HistogramMonths)
	for i := 0; i < HistogramMonths; i++ {
		m := time.Month((int(current)-1+i)%12 + 1)
		buckets[i] = MonthBucket{Month: SpanishShortMonth(m)}
		index[m] = i
	}

	for i := range tickets {
		created := tickets[i].CreationDate
		if created == nil {
			continue
		}
		if pos, ok := index[created.Month()]; ok {
			buckets[pos].Tickets++
		}
	}
	return buckets, nil
}

package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
	"github.com/spec-kit/repair-ticket-service/internal/service"
)

// DateLayout is the wire format of ticket calendar dates.
const DateLayout = "2006-01-02"

// TicketRequest is the creation payload. Keys match the existing web client.
type TicketRequest struct {
	CustomerEmail      string   `json:"clienteEmail"`
	ProblemDescription string   `json:"descripcionProblema"`
	Status             string   `json:"estado"`
	Solution           *string  `json:"solucion"`
	CreationDate       *string  `json:"fechaCreacion"`
	Price              *float64 `json:"precio"`
	Priority           *string  `json:"prioridad"`
	NotifyCustomer     bool     `json:"notificarCliente"`
	PendingDate        *string  `json:"fechaPendiente"`
	RepairDate         *string  `json:"fechaReparacion"`
	ReadyDate          *string  `json:"fechaListo"`
}

// ToDomain converts the request, parsing optional dates.
func (r TicketRequest) ToDomain() (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		CustomerEmail:      r.CustomerEmail,
		ProblemDescription: r.ProblemDescription,
		Status:             r.Status,
		Solution:           r.Solution,
		Price:              r.Price,
		Priority:           r.Priority,
		NotifyCustomer:     r.NotifyCustomer,
	}

	dates := []struct {
		field string
		raw   *string
		dst   **time.Time
	}{
		{"fechaCreacion", r.CreationDate, &ticket.CreationDate},
		{"fechaPendiente", r.PendingDate, &ticket.PendingDate},
		{"fechaReparacion", r.RepairDate, &ticket.RepairDate},
		{"fechaListo", r.ReadyDate, &ticket.ReadyDate},
	}
	for _, d := range dates {
		parsed, err := parseDate(d.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.field, err)
		}
		*d.dst = parsed
	}
	return ticket, nil
}

// TicketPatchRequest is the update payload. Absent or null keys are left untouched.
type TicketPatchRequest struct {
	Status             *string  `json:"estado"`
	Solution           *string  `json:"solucion"`
	Price              *float64 `json:"precio"`
	Priority           *string  `json:"prioridad"`
	ProblemDescription *string  `json:"descripcionProblema"`
	NotifyCustomer     *bool    `json:"notificarCliente"`
}

// ToPatch converts the request into a service patch.
func (r TicketPatchRequest) ToPatch() service.TicketPatch {
	return service.TicketPatch{
		Status:             r.Status,
		Solution:           r.Solution,
		Price:              r.Price,
		Priority:           r.Priority,
		ProblemDescription: r.ProblemDescription,
		NotifyCustomer:     r.NotifyCustomer,
	}
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID                 int64    `json:"id"`
	CustomerEmail      string   `json:"clienteEmail"`
	ProblemDescription string   `json:"descripcionProblema"`
	Status             string   `json:"estado"`
	Solution           *string  `json:"solucion"`
	CreationDate       *string  `json:"fechaCreacion"`
	Price              *float64 `json:"precio"`
	Priority           *string  `json:"prioridad"`
	NotifyCustomer     bool     `json:"notificarCliente"`
	PendingDate        *string  `json:"fechaPendiente"`
	RepairDate         *string  `json:"fechaReparacion"`
	ReadyDate          *string  `json:"fechaListo"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                 t.ID,
		CustomerEmail:      t.CustomerEmail,
		ProblemDescription: t.ProblemDescription,
		Status:             t.Status,
		Solution:           t.Solution,
		CreationDate:       formatDate(t.CreationDate),
		Price:              t.Price,
		Priority:           t.Priority,
		NotifyCustomer:     t.NotifyCustomer,
		PendingDate:        formatDate(t.PendingDate),
		RepairDate:         formatDate(t.RepairDate),
		ReadyDate:          formatDate(t.ReadyDate),
	}
}

// NewTicketListResponse maps a slice, never returning nil.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// StatsResponse carries the dashboard counters.
type StatsResponse struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pendientes"`
	InRepair int64 `json:"reparacion"`
	Resolved int64 `json:"resueltos"`
}

// NewStatsResponse maps summary counts.
func NewStatsResponse(c service.SummaryCounts) StatsResponse {
	return StatsResponse{Total: c.Total, Pending: c.Pending, InRepair: c.InRepair, Resolved: c.Resolved}
}

// MonthCountResponse is one histogram entry.
type MonthCountResponse struct {
	Month   string `json:"mes"`
	Tickets int64  `json:"tickets"`
}

// NewHistogramResponse maps histogram buckets in order.
func NewHistogramResponse(buckets []service.MonthBucket) []MonthCountResponse {
	out := make([]MonthCountResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, MonthCountResponse{Month: b.Month, Tickets: b.Tickets})
	}
	return out
}

// MessageResponse wraps a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("expected %s", DateLayout)
	}
	return &parsed, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

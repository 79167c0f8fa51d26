package domain

import (
	"strings"
	"time"
)

// Recognized ticket statuses. Status values are free text; these are the
// ones the lifecycle reacts to and they compare case-insensitively.
const (
	TicketStatusPending  = "pendiente"
	TicketStatusInRepair = "en reparación"
	TicketStatusReady    = "listo"
	TicketStatusResolved = "resuelto"
)

// Ticket is a customer repair request.
type Ticket struct {
	ID                 int64
	CustomerEmail      string
	ProblemDescription string
	Status             string
	Solution           *string
	CreationDate       *time.Time
	Price              *float64
	Priority           *string
	NotifyCustomer     bool
	PendingDate        *time.Time
	RepairDate         *time.Time
	ReadyDate          *time.Time
}

// StatusIs reports whether the ticket status equals status ignoring case.
func (t *Ticket) StatusIs(status string) bool {
	return StatusEquals(t.Status, status)
}

// StatusEquals compares two status strings ignoring case. Whitespace is
// significant.
func StatusEquals(a, b string) bool {
	return strings.EqualFold(a, b)
}

// StampTransition records day as the transition date for the current status.
// Each transition date is write-once: an already set date is kept.
// It reports whether a date was written.
func (t *Ticket) StampTransition(day time.Time) bool {
	var slot **time.Time
	switch {
	case t.StatusIs(TicketStatusPending):
		slot = &t.PendingDate
	case t.StatusIs(TicketStatusInRepair):
		slot = &t.RepairDate
	case t.StatusIs(TicketStatusReady):
		slot = &t.ReadyDate
	default:
		return false
	}
	if *slot != nil {
		return false
	}
	d := day
	*slot = &d
	return true
}

// StampCreation sets the creation date once. The pending date wins over today
// when it is already known.
func (t *Ticket) StampCreation(today time.Time) {
	if t.CreationDate != nil {
		return
	}
	d := today
	if t.PendingDate != nil {
		d = *t.PendingDate
	}
	t.CreationDate = &d
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	c.Solution = cloneString(t.Solution)
	c.Priority = cloneString(t.Priority)
	c.Price = cloneFloat(t.Price)
	c.CreationDate = cloneTime(t.CreationDate)
	c.PendingDate = cloneTime(t.PendingDate)
	c.RepairDate = cloneTime(t.RepairDate)
	c.ReadyDate = cloneTime(t.ReadyDate)
	return &c
}

// CivilDate truncates ts to its calendar day in loc, expressed as midnight UTC.
func CivilDate(ts time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

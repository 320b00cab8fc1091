package domain

import "time"

// TicketStatus enumerates lifecycle states for queue tickets.
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "PENDING"
	TicketStatusCalling   TicketStatus = "CALLING"
	TicketStatusServed    TicketStatus = "SERVED"
	TicketStatusSkipped   TicketStatus = "SKIPPED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// Valid reports whether s is one of the defined statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusCalling, TicketStatusServed, TicketStatusSkipped, TicketStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s TicketStatus) Terminal() bool {
	switch s {
	case TicketStatusServed, TicketStatusSkipped, TicketStatusCancelled:
		return true
	}
	return false
}

// ActiveStatuses is the set of statuses that count toward queue positions.
// Position computation and call-next selection must agree on this set.
var ActiveStatuses = []TicketStatus{TicketStatusPending, TicketStatusCalling}

// Ticket is one customer's claim on a slot in a service's line.
//
// Number is unique within ServiceID and strictly increasing in creation
// order. Status is mutated only through the lifecycle rules in the service
// layer; every other field is immutable after creation.
type Ticket struct {
	ID        string
	ServiceID string
	OwnerID   string
	Number    int
	Status    TicketStatus
	CreatedAt time.Time
}

// Active reports whether the ticket still occupies a place in the line.
func (t *Ticket) Active() bool {
	return t.Status == TicketStatusPending || t.Status == TicketStatusCalling
}

// ServiceSequence holds the next ticket number to hand out for a service.
// Rows are advanced only via compare-and-swap, one service at a time.
type ServiceSequence struct {
	ServiceID  string
	NextNumber int
}

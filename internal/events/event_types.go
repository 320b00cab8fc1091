package events

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketIssued        EventType = "ticket_issued"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event is emitted exactly once per state-affecting ticket operation. The
// (ServiceID, TicketNumber, Status) triple is the contract consumed by live
// position displays; ID and Timestamp give at-least-once consumers a stable
// dedup key.
type Event struct {
	ID           string              `json:"id"`
	Type         EventType           `json:"type"`
	TicketID     string              `json:"ticket_id"`
	ServiceID    string              `json:"service_id"`
	TicketNumber int                 `json:"ticket_number"`
	Status       domain.TicketStatus `json:"status"`
	Timestamp    time.Time           `json:"timestamp"`
}

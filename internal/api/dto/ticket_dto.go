package dto

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// IssueTicketRequest is the payload for drawing a ticket.
type IssueTicketRequest struct {
	ServiceID string `json:"service_id"`
	OwnerID   string `json:"owner_id"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	OwnerID   string    `json:"owner_id"`
	Number    int       `json:"number"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PositionResponse reports a ticket's live place in line.
type PositionResponse struct {
	TicketID             string `json:"ticket_id"`
	ServiceID            string `json:"service_id"`
	Number               int    `json:"number"`
	Status               string `json:"status"`
	Position             int    `json:"position"`
	EstimatedWaitMinutes int    `json:"estimated_wait_minutes"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:        ticket.ID,
		ServiceID: ticket.ServiceID,
		OwnerID:   ticket.OwnerID,
		Number:    ticket.Number,
		Status:    string(ticket.Status),
		CreatedAt: ticket.CreatedAt,
	}
}

// NewTicketResponses maps a slice of domain tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

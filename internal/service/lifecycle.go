package service

import "github.com/spec-kit/queue-service/internal/domain"

// allowedTransitions is the ticket state machine. SERVED, SKIPPED and
// CANCELLED are terminal; self-transitions are not listed and therefore
// rejected. No caller may write a ticket status outside these rules.
var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPending:   {domain.TicketStatusCalling, domain.TicketStatusCancelled},
	domain.TicketStatusCalling:   {domain.TicketStatusServed, domain.TicketStatusSkipped, domain.TicketStatusCancelled},
	domain.TicketStatusServed:    {},
	domain.TicketStatusSkipped:   {},
	domain.TicketStatusCancelled: {},
}

// CanTransition reports whether current -> next is a defined lifecycle
// transition. Pure function of the two statuses.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// TicketService coordinates the queue workflows: issuing numbered tickets,
// computing live positions, and moving tickets through their lifecycle.
//
// Allocate and call-next are serialized per service through perService;
// independent services make concurrent progress. Status writes are
// serialized per ticket by the store's conditional update.
type TicketService struct {
	tickets    repository.TicketStore
	services   repository.ServiceStore
	allocator  *SequenceAllocator
	dispatcher events.Dispatcher
	perService *keyedMutex
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketStore  repository.TicketStore
	ServiceStore repository.ServiceStore
	Allocator    *SequenceAllocator
	Dispatcher   events.Dispatcher
}

// QueueStanding reports a ticket's live place in its service's line.
type QueueStanding struct {
	Ticket               *domain.Ticket
	Position             int
	EstimatedWaitMinutes int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketStore,
		services:   deps.ServiceStore,
		allocator:  deps.Allocator,
		dispatcher: deps.Dispatcher,
		perService: newKeyedMutex(),
	}
}

// IssueTicket draws the next numbered ticket for a service. The number
// allocation and the ticket write happen under the per-service lock so the
// numbers of persisted tickets follow creation order. If the write fails
// after allocation the number stays consumed; a gap is acceptable, a
// duplicate is not.
func (s *TicketService) IssueTicket(ctx context.Context, serviceID, ownerID string) (*domain.Ticket, error) {
	if _, err := s.services.GetByID(ctx, serviceID); err != nil {
		return nil, mapStoreError(err, "service")
	}

	unlock := s.perService.Lock(serviceID)
	defer unlock()

	number, err := s.allocator.Allocate(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ServiceID: serviceID,
		OwnerID:   ownerID,
		Number:    number,
		Status:    domain.TicketStatusPending,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewUnavailable("ticket write failed", err)
	}

	s.publishEvent(ctx, events.EventTicketIssued, ticket)
	return ticket, nil
}

// Position returns how many active tickets are ahead of the given ticket
// in its service's line, plus the wait estimate derived from the service's
// average handling time. Read-only; the count may be slightly stale under
// concurrent writes.
func (s *TicketService) Position(ctx context.Context, ticketID string) (*QueueStanding, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}

	ahead, err := s.tickets.CountActiveAhead(ctx, ticket.ServiceID, ticket.CreatedAt, ticket.Number)
	if err != nil {
		return nil, apperrors.NewUnavailable("position count failed", err)
	}

	standing := &QueueStanding{Ticket: ticket, Position: ahead}
	if svc, err := s.services.GetByID(ctx, ticket.ServiceID); err == nil {
		standing.EstimatedWaitMinutes = ahead * svc.AverageServiceMinutes
	}
	return standing, nil
}

// CallNext advances the earliest pending ticket of a service to CALLING
// and returns it. Serialized per service: two concurrent calls get two
// distinct tickets, in queue order.
func (s *TicketService) CallNext(ctx context.Context, serviceID string) (*domain.Ticket, error) {
	unlock := s.perService.Lock(serviceID)
	defer unlock()

	ticket, err := s.tickets.FindEarliestPending(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNoPendingTickets(serviceID)
		}
		return nil, apperrors.NewUnavailable("queue read failed", err)
	}
	return s.transition(ctx, ticket, domain.TicketStatusCalling)
}

// MarkServed completes the call on a ticket (CALLING -> SERVED).
func (s *TicketService) MarkServed(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.transitionByID(ctx, ticketID, domain.TicketStatusServed)
}

// Skip marks a called customer as absent (CALLING -> SKIPPED).
func (s *TicketService) Skip(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.transitionByID(ctx, ticketID, domain.TicketStatusSkipped)
}

// Cancel withdraws a ticket from the line. Allowed from PENDING and
// CALLING only.
func (s *TicketService) Cancel(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.transitionByID(ctx, ticketID, domain.TicketStatusCancelled)
}

// GetTicket fetches a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	return ticket, nil
}

// ListQueue returns the active tickets of a service in queue order, the
// operator's live view of the line.
func (s *TicketService) ListQueue(ctx context.Context, serviceID string) ([]domain.Ticket, error) {
	if _, err := s.services.GetByID(ctx, serviceID); err != nil {
		return nil, mapStoreError(err, "service")
	}
	tickets, err := s.tickets.ListActiveByService(ctx, serviceID)
	if err != nil {
		return nil, apperrors.NewUnavailable("queue read failed", err)
	}
	return tickets, nil
}

// ListOwnerTickets returns an owner's tickets, newest first. With
// activeOnly only PENDING and CALLING tickets are included.
func (s *TicketService) ListOwnerTickets(ctx context.Context, ownerID string, activeOnly bool) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, ownerID, activeOnly)
	if err != nil {
		return nil, apperrors.NewUnavailable("ticket read failed", err)
	}
	return tickets, nil
}

func (s *TicketService) transitionByID(ctx context.Context, ticketID string, next domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapStoreError(err, "ticket")
	}
	return s.transition(ctx, ticket, next)
}

// transition applies one lifecycle step. The store update is conditional
// on the status the ticket was read with, so a racing transition on the
// same ticket surfaces as a conflict instead of a lost update.
func (s *TicketService) transition(ctx context.Context, ticket *domain.Ticket, next domain.TicketStatus) (*domain.Ticket, error) {
	if !CanTransition(ticket.Status, next) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(next))
	}

	updated, err := s.tickets.SaveStatus(ctx, ticket.ID, ticket.Status, next)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.NewConflict("ticket was updated concurrently", map[string]any{"ticket_id": ticket.ID})
		}
		return nil, mapStoreError(err, "ticket")
	}

	s.publishEvent(ctx, events.EventTicketStatusChanged, updated)
	return updated, nil
}

func (s *TicketService) publishEvent(ctx context.Context, eventType events.EventType, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		TicketID:     ticket.ID,
		ServiceID:    ticket.ServiceID,
		TicketNumber: ticket.Number,
		Status:       ticket.Status,
		Timestamp:    time.Now().UTC(),
	})
}

func mapStoreError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewUnavailable("storage failure", err)
}

// Package memory provides an in-process implementation of the repository
// stores. It backs unit tests and the DSN-less development mode; the
// production deployment uses the postgres repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
)

// Store implements repository.TicketStore, repository.SequenceStore and
// repository.ServiceStore behind a single mutex. All returned tickets are
// copies; callers never share memory with the store.
type Store struct {
	mu        sync.Mutex
	tickets   map[string]*domain.Ticket
	sequences map[string]int
	services  map[string]*domain.Service
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		tickets:   make(map[string]*domain.Ticket),
		sequences: make(map[string]int),
		services:  make(map[string]*domain.Service),
	}
}

func (s *Store) Create(ctx context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}
	stored := *ticket
	s.tickets[ticket.ID] = &stored
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (s *Store) SaveStatus(ctx context.Context, id string, expected, next domain.TicketStatus) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ticket.Status != expected {
		return nil, repository.ErrStatusConflict
	}
	ticket.Status = next
	copied := *ticket
	return &copied, nil
}

func (s *Store) CountActiveAhead(ctx context.Context, serviceID string, before time.Time, beforeNumber int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, ticket := range s.tickets {
		if ticket.ServiceID != serviceID || !ticket.Active() {
			continue
		}
		if orderedBefore(ticket, before, beforeNumber) {
			count++
		}
	}
	return count, nil
}

func (s *Store) FindEarliestPending(ctx context.Context, serviceID string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var earliest *domain.Ticket
	for _, ticket := range s.tickets {
		if ticket.ServiceID != serviceID || ticket.Status != domain.TicketStatusPending {
			continue
		}
		if earliest == nil || orderedBefore(ticket, earliest.CreatedAt, earliest.Number) {
			earliest = ticket
		}
	}
	if earliest == nil {
		return nil, repository.ErrNotFound
	}
	copied := *earliest
	return &copied, nil
}

func (s *Store) ListActiveByService(ctx context.Context, serviceID string) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range s.tickets {
		if ticket.ServiceID == serviceID && ticket.Active() {
			result = append(result, *ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return orderedBefore(&result[i], result[j].CreatedAt, result[j].Number)
	})
	return result, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range s.tickets {
		if ticket.OwnerID != ownerID {
			continue
		}
		if activeOnly && !ticket.Active() {
			continue
		}
		result = append(result, *ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		return orderedBefore(&result[j], result[i].CreatedAt, result[i].Number)
	})
	return result, nil
}

func (s *Store) GetOrCreate(ctx context.Context, serviceID string) (*domain.ServiceSequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.sequences[serviceID]
	if !ok {
		next = 1
		s.sequences[serviceID] = next
	}
	return &domain.ServiceSequence{ServiceID: serviceID, NextNumber: next}, nil
}

func (s *Store) AdvanceIfUnchanged(ctx context.Context, serviceID string, expectedNext, newNext int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sequences[serviceID]
	if !ok || current != expectedNext {
		return repository.ErrSequenceConflict
	}
	s.sequences[serviceID] = newNext
	return nil
}

func (s *Store) CreateService(ctx context.Context, service *domain.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if service.ID == "" {
		service.ID = uuid.NewString()
	}
	if service.CreatedAt.IsZero() {
		service.CreatedAt = time.Now().UTC()
	}
	stored := *service
	s.services[service.ID] = &stored
	return nil
}

func (s *Store) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	service, ok := s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *service
	return &copied, nil
}

func (s *Store) ListServicesByCompany(ctx context.Context, companyID string) ([]domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Service
	for _, service := range s.services {
		if service.CompanyID == companyID {
			result = append(result, *service)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Services returns a repository.ServiceStore view of the store. The view
// exists because the ticket methods already claim Create and GetByID on
// Store itself.
func (s *Store) Services() repository.ServiceStore {
	return serviceView{s}
}

type serviceView struct {
	store *Store
}

func (v serviceView) Create(ctx context.Context, service *domain.Service) error {
	return v.store.CreateService(ctx, service)
}

func (v serviceView) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	return v.store.GetServiceByID(ctx, id)
}

func (v serviceView) ListByCompany(ctx context.Context, companyID string) ([]domain.Service, error) {
	return v.store.ListServicesByCompany(ctx, companyID)
}

// orderedBefore is the total queue ordering: created_at first, ticket
// number as the deterministic tie-break for equal timestamps.
func orderedBefore(t *domain.Ticket, at time.Time, number int) bool {
	if t.CreatedAt.Before(at) {
		return true
	}
	return t.CreatedAt.Equal(at) && t.Number < number
}

package service

import (
	"context"
	"strings"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// RegistryService manages the service registry that companies expose
// queues through. Company onboarding itself lives in the surrounding
// system; this only records the queue-producing units.
type RegistryService struct {
	services repository.ServiceStore
}

// ServiceCreateInput describes a new queue-producing service.
type ServiceCreateInput struct {
	CompanyID             string
	Name                  string
	Description           string
	AverageServiceMinutes int
}

// NewRegistryService constructs the registry.
func NewRegistryService(services repository.ServiceStore) *RegistryService {
	return &RegistryService{services: services}
}

// RegisterService records a new service.
func (s *RegistryService) RegisterService(ctx context.Context, input ServiceCreateInput) (*domain.Service, error) {
	if strings.TrimSpace(input.CompanyID) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("company_id and name required", nil)
	}
	if input.AverageServiceMinutes < 0 {
		return nil, apperrors.NewValidationError("average_service_minutes must not be negative", nil)
	}

	service := &domain.Service{
		CompanyID:             input.CompanyID,
		Name:                  strings.TrimSpace(input.Name),
		Description:           strings.TrimSpace(input.Description),
		AverageServiceMinutes: input.AverageServiceMinutes,
	}
	if err := s.services.Create(ctx, service); err != nil {
		return nil, apperrors.NewUnavailable("service write failed", err)
	}
	return service, nil
}

// GetService fetches one service.
func (s *RegistryService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	service, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "service")
	}
	return service, nil
}

// ListCompanyServices lists a company's registered services.
func (s *RegistryService) ListCompanyServices(ctx context.Context, companyID string) ([]domain.Service, error) {
	services, err := s.services.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, apperrors.NewUnavailable("service read failed", err)
	}
	return services, nil
}

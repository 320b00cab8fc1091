package dto

import (
	"time"

	"github.com/spec-kit/queue-service/internal/domain"
)

// RegisterServiceRequest is the payload for registering a queue-producing
// service.
type RegisterServiceRequest struct {
	CompanyID             string `json:"company_id"`
	Name                  string `json:"name"`
	Description           string `json:"description"`
	AverageServiceMinutes int    `json:"average_service_minutes"`
}

// ServiceResponse is the wire shape of a service.
type ServiceResponse struct {
	ID                    string    `json:"id"`
	CompanyID             string    `json:"company_id"`
	Name                  string    `json:"name"`
	Description           string    `json:"description,omitempty"`
	AverageServiceMinutes int       `json:"average_service_minutes"`
	CreatedAt             time.Time `json:"created_at"`
}

// NewServiceResponse maps a domain service.
func NewServiceResponse(service *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:                    service.ID,
		CompanyID:             service.CompanyID,
		Name:                  service.Name,
		Description:           service.Description,
		AverageServiceMinutes: service.AverageServiceMinutes,
		CreatedAt:             service.CreatedAt,
	}
}

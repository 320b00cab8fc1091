package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-service/internal/domain"
)

// ServiceStore persists the service registry.
type ServiceStore interface {
	Create(ctx context.Context, service *domain.Service) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Service, error)
}

type serviceRepository struct {
	db DB
}

// NewServiceRepository instantiates the postgres-backed registry.
func NewServiceRepository(db DB) ServiceStore {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *domain.Service) error {
	if service.ID == "" {
		service.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO services (id, company_id, name, description, average_service_minutes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		service.ID,
		service.CompanyID,
		service.Name,
		service.Description,
		service.AverageServiceMinutes,
	).Scan(&service.CreatedAt)
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	const query = `
        SELECT id, company_id, name, description, average_service_minutes, created_at
        FROM services WHERE id=$1`
	var service domain.Service
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.CompanyID,
		&service.Name,
		&service.Description,
		&service.AverageServiceMinutes,
		&service.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Service, error) {
	const query = `
        SELECT id, company_id, name, description, average_service_minutes, created_at
        FROM services WHERE company_id=$1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Service
	for rows.Next() {
		var service domain.Service
		if err := rows.Scan(
			&service.ID,
			&service.CompanyID,
			&service.Name,
			&service.Description,
			&service.AverageServiceMinutes,
			&service.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, service)
	}
	return result, rows.Err()
}

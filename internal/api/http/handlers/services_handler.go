package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// ServicesHandler manages the service registry endpoints.
type ServicesHandler struct {
	registry *service.RegistryService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(registry *service.RegistryService) *ServicesHandler {
	return &ServicesHandler{registry: registry}
}

// RegisterService POST /services.
func (h *ServicesHandler) RegisterService(c *fiber.Ctx) error {
	var req dto.RegisterServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	svc, err := h.registry.RegisterService(c.UserContext(), service.ServiceCreateInput{
		CompanyID:             req.CompanyID,
		Name:                  req.Name,
		Description:           req.Description,
		AverageServiceMinutes: req.AverageServiceMinutes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewServiceResponse(svc)})
}

// GetService GET /services/:id.
func (h *ServicesHandler) GetService(c *fiber.Ctx) error {
	svc, err := h.registry.GetService(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewServiceResponse(svc)})
}

// ListCompanyServices GET /companies/:companyId/services.
func (h *ServicesHandler) ListCompanyServices(c *fiber.Ctx) error {
	services, err := h.registry.ListCompanyServices(c.UserContext(), c.Params("companyId"))
	if err != nil {
		return err
	}
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, dto.NewServiceResponse(&services[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

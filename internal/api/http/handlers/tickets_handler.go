package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// TicketsHandler manages customer-facing ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// IssueTicket POST /tickets.
func (h *TicketsHandler) IssueTicket(c *fiber.Ctx) error {
	var req dto.IssueTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ServiceID) == "" || strings.TrimSpace(req.OwnerID) == "" {
		return apperrors.NewValidationError("service_id and owner_id required", nil)
	}

	ticket, err := h.service.IssueTicket(c.UserContext(), req.ServiceID, req.OwnerID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// GetPosition GET /tickets/:id/position.
func (h *TicketsHandler) GetPosition(c *fiber.Ctx) error {
	standing, err := h.service.Position(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PositionResponse{
		TicketID:             standing.Ticket.ID,
		ServiceID:            standing.Ticket.ServiceID,
		Number:               standing.Ticket.Number,
		Status:               string(standing.Ticket.Status),
		Position:             standing.Position,
		EstimatedWaitMinutes: standing.EstimatedWaitMinutes,
	}})
}

// CancelTicket POST /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListOwnerTickets GET /owners/:ownerId/tickets.
func (h *TicketsHandler) ListOwnerTickets(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)
	tickets, err := h.service.ListOwnerTickets(c.UserContext(), c.Params("ownerId"), activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

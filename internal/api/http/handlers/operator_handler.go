package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/service"
)

// OperatorHandler manages the counter-side endpoints.
type OperatorHandler struct {
	service *service.TicketService
}

// NewOperatorHandler constructs handler.
func NewOperatorHandler(ticketService *service.TicketService) *OperatorHandler {
	return &OperatorHandler{service: ticketService}
}

// CallNext POST /services/:id/call-next.
func (h *OperatorHandler) CallNext(c *fiber.Ctx) error {
	ticket, err := h.service.CallNext(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ServeTicket POST /tickets/:id/serve.
func (h *OperatorHandler) ServeTicket(c *fiber.Ctx) error {
	ticket, err := h.service.MarkServed(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// SkipTicket POST /tickets/:id/skip.
func (h *OperatorHandler) SkipTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Skip(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListQueue GET /services/:id/queue.
func (h *OperatorHandler) ListQueue(c *fiber.Ctx) error {
	tickets, err := h.service.ListQueue(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets)})
}

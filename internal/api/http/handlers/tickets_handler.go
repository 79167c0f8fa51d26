package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-ticket-service/internal/api/dto"
	"github.com/spec-kit/repair-ticket-service/internal/service"
	apperrors "github.com/spec-kit/repair-ticket-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := req.ToDomain()
	if err != nil {
		return apperrors.NewValidationError("invalid date", map[string]any{"reason": err.Error()})
	}

	created, err := h.service.Create(c.UserContext(), ticket)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTicketResponse(created))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketListResponse(tickets))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// ListByCustomer GET /tickets/cliente/:email.
func (h *TicketsHandler) ListByCustomer(c *fiber.Ctx) error {
	tickets, err := h.service.ListByCustomer(c.UserContext(), pathEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketListResponse(tickets))
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	var req dto.TicketPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.service.Update(c.UserContext(), id, req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(updated))
}

// EnableNotification PUT /tickets/:id/notificacion.
func (h *TicketsHandler) EnableNotification(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	msg, err := h.service.EnableNotification(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

// Statistics GET /tickets/estadisticas.
func (h *TicketsHandler) Statistics(c *fiber.Ctx) error {
	counts, err := h.service.SummaryCounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewStatsResponse(counts))
}

// ByMonth GET /tickets/por-mes.
func (h *TicketsHandler) ByMonth(c *fiber.Ctx) error {
	buckets, err := h.service.MonthlyHistogram(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewHistogramResponse(buckets))
}

func ticketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func pathEmail(c *fiber.Ctx) string {
	raw := c.Params("email")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

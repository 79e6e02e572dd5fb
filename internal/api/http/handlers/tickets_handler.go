package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/techaway/backend/internal/api/dto"
	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/service"
	apperrors "github.com/techaway/backend/pkg/util"
)

// TicketsHandler manages ticket workflow endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	tickets, err := h.service.List(c.Context(), principal.User, parseTicketListQuery(c))
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssignedTo == nil && req.Status == nil && req.Urgency == nil &&
		req.TechnicianNote == nil && req.CustomerNote == nil {
		return apperrors.NewValidationError("no fields to update", nil)
	}

	ticket, err := h.service.Update(c.Context(), principal.User, c.Params("id"), service.TicketUpdateInput{
		AssignedTo:     req.AssignedTo,
		Status:         req.Status,
		Urgency:        req.Urgency,
		TechnicianNote: req.TechnicianNote,
		CustomerNote:   req.CustomerNote,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func parseTicketListQuery(c *fiber.Ctx) service.TicketListInput {
	input := service.TicketListInput{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			input.Statuses = append(input.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if urgencyStr := c.Query("urgency"); urgencyStr != "" {
		for _, part := range strings.Split(urgencyStr, ",") {
			input.Urgencies = append(input.Urgencies, domain.TicketUrgency(strings.TrimSpace(part)))
		}
	}
	if orderID := c.Query("order_id"); orderID != "" {
		input.OrderID = &orderID
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	input.Offset = (page - 1) * pageSize
	input.Limit = pageSize
	return input
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:             ticket.ID,
		ServiceID:      ticket.ServiceID,
		CustomerID:     ticket.CustomerID,
		AssignedTo:     ticket.AssignedTo,
		ModifierIDs:    ticket.ModifierIDs,
		Urgency:        ticket.Urgency,
		CustomerNote:   ticket.CustomerNote,
		TechnicianNote: ticket.TechnicianNote,
		Location:       ticket.Location,
		Status:         ticket.Status,
		OrderID:        ticket.OrderID,
		Cancelled:      ticket.Cancelled,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
	if ticket.Cost != nil {
		cost := ticket.Cost.StringFixed(2)
		resp.Cost = &cost
	}
	return resp
}

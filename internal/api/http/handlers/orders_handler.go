package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/techaway/backend/internal/api/dto"
	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/service"
	apperrors "github.com/techaway/backend/pkg/util"
)

// OrdersHandler manages order endpoints.
type OrdersHandler struct {
	service *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{service: orderService}
}

// ListOrders GET /orders.
func (h *OrdersHandler) ListOrders(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	page, err := h.service.List(c.Context(), principal.User, parseOrderListQuery(c))
	if err != nil {
		return err
	}

	orders := make([]dto.OrderResponse, 0, len(page.Orders))
	for i := range page.Orders {
		orders = append(orders, orderResponse(&page.Orders[i]))
	}
	return c.JSON(fiber.Map{"data": dto.OrderListResponse{Orders: orders, Total: page.Total}})
}

// GetOrder GET /orders/:id.
func (h *OrdersHandler) GetOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	order, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

// CancelOrder POST /orders/:id/cancel.
func (h *OrdersHandler) CancelOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	order, err := h.service.Cancel(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

func parseOrderListQuery(c *fiber.Ctx) service.OrderListInput {
	input := service.OrderListInput{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			input.Statuses = append(input.Statuses, domain.OrderStatus(strings.TrimSpace(part)))
		}
	}
	input.SortField = c.Query("sort", "createdAt")
	input.SortDesc = c.Query("order", "desc") == "desc"

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	input.Offset = (page - 1) * pageSize
	input.Limit = pageSize
	return input
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func orderResponse(order *domain.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		TicketIDs:       order.TicketIDs,
		GrandTotal:      order.GrandTotal.StringFixed(2),
		Status:          order.Status,
		PaymentIntentID: order.PaymentIntentID,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

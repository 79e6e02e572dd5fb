package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techaway/backend/internal/api/dto"
	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/service"
	apperrors "github.com/techaway/backend/pkg/util"
)

// CheckoutHandler exposes the cart checkout endpoint and the payment webhook.
type CheckoutHandler struct {
	service *service.CheckoutService
}

// NewCheckoutHandler constructs handler.
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: checkoutService}
}

// CreatePaymentIntent POST /checkout/payment-intent.
func (h *CheckoutHandler) CreatePaymentIntent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Cart) == 0 {
		return apperrors.NewValidationError("cart is empty", nil)
	}

	cart := make([]service.CartItem, 0, len(req.Cart))
	for _, item := range req.Cart {
		if item.ServiceID == "" {
			return apperrors.NewValidationError("service_id required on every cart item", nil)
		}
		cart = append(cart, service.CartItem{
			ServiceID:   item.ServiceID,
			ModifierIDs: item.ModifierIDs,
			Note:        item.Note,
			Location:    item.Location,
		})
	}

	result, err := h.service.CreatePaymentIntent(c.Context(), principal.User, cart)
	if err != nil {
		return err
	}

	tickets := make([]dto.TicketResponse, 0, len(result.Order.Tickets))
	for i := range result.Order.Tickets {
		tickets = append(tickets, ticketResponse(&result.Order.Tickets[i].Ticket))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CheckoutResponse{
		Order:           orderResponse(result.Order.Order),
		Tickets:         tickets,
		PaymentIntentID: result.Intent.ID,
		ClientSecret:    result.Intent.ClientSecret,
		Amount:          result.Intent.Amount,
	}})
}

// HandleWebhook POST /webhooks/stripe. The raw body is passed through
// untouched so signature verification sees exactly what the processor signed.
func (h *CheckoutHandler) HandleWebhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return apperrors.NewValidationError("missing signature header", nil)
	}
	if err := h.service.HandleWebhook(c.Context(), c.Body(), signature); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}

package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/techaway/backend/internal/api/dto"
	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/service"
	apperrors "github.com/techaway/backend/pkg/util"
)

// CatalogHandler serves the services/SLA catalog. Reads are public; writes
// require an admin principal.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalogService}
}

// ListServices GET /catalog/services.
func (h *CatalogHandler) ListServices(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	services, err := h.service.ListServices(c.Context(), strings.TrimSpace(c.Query("search")), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, serviceResponse(&services[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetService GET /catalog/services/:id.
func (h *CatalogHandler) GetService(c *fiber.Ctx) error {
	svc, err := h.service.GetService(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// CreateService POST /catalog/services.
func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	svc, err := parseServiceRequest(c)
	if err != nil {
		return err
	}
	if err := h.service.CreateService(c.Context(), principal.User, svc); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": serviceResponse(svc)})
}

// UpdateService PUT /catalog/services/:id.
func (h *CatalogHandler) UpdateService(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	svc, err := parseServiceRequest(c)
	if err != nil {
		return err
	}
	svc.ID = c.Params("id")
	if err := h.service.UpdateService(c.Context(), principal.User, svc); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// DeleteService DELETE /catalog/services/:id.
func (h *CatalogHandler) DeleteService(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.DeleteService(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// ListSLAs GET /catalog/slas.
func (h *CatalogHandler) ListSLAs(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	slas, err := h.service.ListSLAs(c.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.SLAResponse, 0, len(slas))
	for i := range slas {
		items = append(items, slaResponse(&slas[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetSLA GET /catalog/slas/:id.
func (h *CatalogHandler) GetSLA(c *fiber.Ctx) error {
	sla, err := h.service.GetSLA(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": slaResponse(sla)})
}

// CreateSLA POST /catalog/slas.
func (h *CatalogHandler) CreateSLA(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	sla, err := parseSLARequest(c)
	if err != nil {
		return err
	}
	if err := h.service.CreateSLA(c.Context(), principal.User, sla); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": slaResponse(sla)})
}

// UpdateSLA PUT /catalog/slas/:id.
func (h *CatalogHandler) UpdateSLA(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	sla, err := parseSLARequest(c)
	if err != nil {
		return err
	}
	sla.ID = c.Params("id")
	if err := h.service.UpdateSLA(c.Context(), principal.User, sla); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": slaResponse(sla)})
}

// DeleteSLA DELETE /catalog/slas/:id.
func (h *CatalogHandler) DeleteSLA(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.DeleteSLA(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func parseServiceRequest(c *fiber.Ctx) (*domain.Service, error) {
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid price", map[string]any{"price": req.Price})
	}
	return &domain.Service{
		Title:       req.Title,
		Label:       req.Label,
		Price:       price,
		Category:    req.Category,
		ServiceType: req.ServiceType,
		Description: req.Description,
	}, nil
}

func parseSLARequest(c *fiber.Ctx) (*domain.ServiceLevelAgreement, error) {
	var req dto.SLARequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	modifier, err := decimal.NewFromString(req.PriceModifier)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid price_modifier", map[string]any{"price_modifier": req.PriceModifier})
	}
	fixed := decimal.Zero
	if req.FixedPrice != "" {
		fixed, err = decimal.NewFromString(req.FixedPrice)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid fixed_price", map[string]any{"fixed_price": req.FixedPrice})
		}
	}
	return &domain.ServiceLevelAgreement{
		Type:          req.Type,
		PriceModifier: modifier,
		FixedPrice:    fixed,
		DueWithinDays: req.DueWithinDays,
		Description:   req.Description,
	}, nil
}

func serviceResponse(svc *domain.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:          svc.ID,
		Title:       svc.Title,
		Label:       svc.Label,
		Price:       svc.Price.StringFixed(2),
		Category:    svc.Category,
		ServiceType: svc.ServiceType,
		Description: svc.Description,
		CreatedAt:   svc.CreatedAt,
		UpdatedAt:   svc.UpdatedAt,
	}
}

func slaResponse(sla *domain.ServiceLevelAgreement) dto.SLAResponse {
	return dto.SLAResponse{
		ID:            sla.ID,
		Type:          sla.Type,
		PriceModifier: sla.PriceModifier.String(),
		FixedPrice:    sla.FixedPrice.StringFixed(2),
		DueWithinDays: sla.DueWithinDays,
		Description:   sla.Description,
		CreatedAt:     sla.CreatedAt,
		UpdatedAt:     sla.UpdatedAt,
	}
}

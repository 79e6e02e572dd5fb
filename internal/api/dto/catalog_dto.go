package dto

import (
	"time"

	"github.com/techaway/backend/internal/domain"
)

// ServiceRequest is the admin payload for creating or updating a catalog
// service. Price is a decimal string.
type ServiceRequest struct {
	Title       string             `json:"title"`
	Label       string             `json:"label"`
	Price       string             `json:"price"`
	Category    int                `json:"category"`
	ServiceType domain.ServiceType `json:"service_type"`
	Description string             `json:"description"`
}

// ServiceResponse is the public view of a catalog service.
type ServiceResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Label       string             `json:"label"`
	Price       string             `json:"price"`
	Category    int                `json:"category"`
	ServiceType domain.ServiceType `json:"service_type"`
	Description string             `json:"description,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// SLARequest is the admin payload for creating or updating an SLA.
type SLARequest struct {
	Type          domain.SLAType `json:"type"`
	PriceModifier string         `json:"price_modifier"`
	FixedPrice    string         `json:"fixed_price"`
	DueWithinDays int            `json:"due_within_days"`
	Description   string         `json:"description"`
}

// SLAResponse is the public view of an SLA.
type SLAResponse struct {
	ID            string         `json:"id"`
	Type          domain.SLAType `json:"type"`
	PriceModifier string         `json:"price_modifier"`
	FixedPrice    string         `json:"fixed_price"`
	DueWithinDays int            `json:"due_within_days"`
	Description   string         `json:"description,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

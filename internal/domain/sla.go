package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SLAType distinguishes completion vs response agreements.
type SLAType string

const (
	SLATypeCompletion SLAType = "completion"
	SLATypeResponse   SLAType = "response"
)

// ServiceLevelAgreement is a price/time modifier attached to tickets.
// Pricing honors PriceModifier only; FixedPrice is stored but not part of
// the formula.
type ServiceLevelAgreement struct {
	ID            string
	Type          SLAType
	PriceModifier decimal.Decimal
	FixedPrice    decimal.Decimal
	DueWithinDays int
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType distinguishes where a catalog service can be delivered.
type ServiceType string

const (
	ServiceTypeOnsite ServiceType = "onsite"
	ServiceTypeRemote ServiceType = "remote"
	ServiceTypeBoth   ServiceType = "both"
)

// Service is a purchasable catalog item.
type Service struct {
	ID          string
	Title       string
	Label       string
	Price       decimal.Decimal
	Category    int
	ServiceType ServiceType
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

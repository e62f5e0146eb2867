package policies

import (
	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

type PricingPort interface {
	Quote(property listings.Property, dr daterange.DateRange) (pricing.PriceBreakdown, error)
}

var _ PricingPort = pricing.FeeSchedule{}

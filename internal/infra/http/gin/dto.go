package ginserver

import (
	"staybook/internal/domain/pricing"
)

type priceResponse struct {
	Nights      int     `json:"nights"`
	Currency    string  `json:"currency"`
	Nightly     float64 `json:"nightly"`
	Subtotal    float64 `json:"subtotal"`
	CleaningFee float64 `json:"cleaning_fee"`
	ServiceFee  float64 `json:"service_fee"`
	Total       float64 `json:"total"`
}

func toPriceResponse(b pricing.PriceBreakdown) priceResponse {
	return priceResponse{
		Nights:      b.Nights,
		Currency:    b.Total.Currency,
		Nightly:     b.Nightly.Float(),
		Subtotal:    b.Subtotal.Float(),
		CleaningFee: b.CleaningFee.Float(),
		ServiceFee:  b.ServiceFee.Float(),
		Total:       b.Total.Float(),
	}
}

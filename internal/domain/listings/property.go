package listings

import (
	"context"
	"errors"
	"strings"

	"staybook/internal/domain/shared/money"
)

var (
	ErrPropertyNotFound  = errors.New("listings: property not found")
	ErrInvalidPrice      = errors.New("listings: price per night must be positive")
	ErrInvalidGuestLimit = errors.New("listings: max guests must be positive")
	ErrPropertyIDMissing = errors.New("listings: property id required")
)

type PropertyID string

// Property is the read-only listing view served by the backend.
type Property struct {
	ID        PropertyID `json:"_id"`
	Title     string     `json:"title"`
	Price     float64    `json:"price"`
	MaxGuests int        `json:"maxGuests"`
	Currency  string     `json:"currency,omitempty"`
}

func (p Property) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return ErrPropertyIDMissing
	}
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	if p.MaxGuests <= 0 {
		return ErrInvalidGuestLimit
	}
	return nil
}

// Nightly returns the price per night as Money.
func (p Property) Nightly() (money.Money, error) {
	currency := p.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	return money.FromFloat(p.Price, currency)
}

// Lookup resolves a property by id.
type Lookup interface {
	Property(ctx context.Context, id PropertyID) (*Property, error)
}

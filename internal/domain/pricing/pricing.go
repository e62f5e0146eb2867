package pricing

import (
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// PriceBreakdown is derived on every date or guest change and never stored.
type PriceBreakdown struct {
	Nights      int
	Nightly     money.Money
	Subtotal    money.Money
	CleaningFee money.Money
	ServiceFee  money.Money
	Total       money.Money
}

// FeeSchedule holds the flat surcharges added to every booking.
// The same schedule applies to all properties.
type FeeSchedule struct {
	CleaningFee money.Money
	ServiceFee  money.Money
}

// DefaultFees is the $50 cleaning fee plus $25 service fee.
var DefaultFees = FeeSchedule{
	CleaningFee: money.Must(5000, money.DefaultCurrency),
	ServiceFee:  money.Must(2500, money.DefaultCurrency),
}

// ComputeNights counts whole days between the dates, rounded up. A missing date yields 0.
func ComputeNights(checkIn, checkOut time.Time) int {
	return daterange.DateRange{CheckIn: checkIn, CheckOut: checkOut}.Nights()
}

// ComputePriceBreakdown prices a stay with DefaultFees.
func ComputePriceBreakdown(pricePerNight money.Money, nights int) PriceBreakdown {
	return DefaultFees.Breakdown(pricePerNight, nights)
}

// Breakdown prices a stay. Fees are charged in the nightly currency and
// negative nights count as zero.
func (f FeeSchedule) Breakdown(pricePerNight money.Money, nights int) PriceBreakdown {
	if nights < 0 {
		nights = 0
	}
	currency := pricePerNight.Currency
	if currency == "" {
		currency = money.DefaultCurrency
		pricePerNight.Currency = currency
	}
	cleaning := withCurrency(f.CleaningFee, currency)
	service := withCurrency(f.ServiceFee, currency)

	subtotal := pricePerNight.Multiply(int64(nights))
	// All parts share the nightly currency, so the amounts add directly.
	total := money.Money{
		Amount:   subtotal.Amount + cleaning.Amount + service.Amount,
		Currency: currency,
	}
	return PriceBreakdown{
		Nights:      nights,
		Nightly:     pricePerNight,
		Subtotal:    subtotal,
		CleaningFee: cleaning,
		ServiceFee:  service,
		Total:       total,
	}
}

// Quote prices the range for a property.
func (f FeeSchedule) Quote(p listings.Property, dr daterange.DateRange) (PriceBreakdown, error) {
	nightly, err := p.Nightly()
	if err != nil {
		return PriceBreakdown{}, err
	}
	return f.Breakdown(nightly, dr.Nights()), nil
}

func withCurrency(m money.Money, currency string) money.Money {
	return money.Money{Amount: m.Amount, Currency: currency}
}

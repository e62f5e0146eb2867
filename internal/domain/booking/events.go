package booking

import (
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/events"
)

const EventSubmitted = "booking.submitted"

// Submitted is emitted after the backend accepted a booking request.
type Submitted struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID listings.PropertyID `json:"property_id"`
	UserID     string              `json:"user_id"`
	CheckIn    string              `json:"check_in"`
	CheckOut   string              `json:"check_out"`
	Guests     int                 `json:"guests"`
	TotalPrice float64             `json:"total_price"`
	At         time.Time           `json:"at"`
}

func (e Submitted) EventName() string { return EventSubmitted }

func (e Submitted) AggregateID() string { return string(e.BookingID) }

func (e Submitted) OccurredAt() time.Time { return e.At }

var _ events.DomainEvent = Submitted{}

package booking

import (
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

var (
	ErrUserRequired     = errors.New("booking: user id required")
	ErrPropertyRequired = errors.New("booking: property id required")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Request is the payload of a booking creation call. It lives only for the
// duration of one submission; the backend assigns the persistent identity.
type Request struct {
	PropertyID     listings.PropertyID `json:"propertyId"`
	UserID         string              `json:"userId"`
	CheckInDate    string              `json:"checkInDate"`
	CheckOutDate   string              `json:"checkOutDate"`
	NumberOfGuests int                 `json:"numberOfGuests"`
	TotalPrice     float64             `json:"totalPrice"`
	Status         Status              `json:"status"`
	CreatedAt      string              `json:"createdAt"`
}

type RequestParams struct {
	PropertyID listings.PropertyID
	UserID     string
	Range      daterange.DateRange
	Guests     int
	Price      pricing.PriceBreakdown
	CreatedAt  time.Time
}

// NewRequest builds a pending booking request. Timestamps are encoded as
// ISO-8601 UTC with millisecond precision.
func NewRequest(params RequestParams) (Request, error) {
	if strings.TrimSpace(string(params.PropertyID)) == "" {
		return Request{}, ErrPropertyRequired
	}
	if strings.TrimSpace(params.UserID) == "" {
		return Request{}, ErrUserRequired
	}
	if err := params.Range.Validate(); err != nil {
		return Request{}, err
	}
	return Request{
		PropertyID:     params.PropertyID,
		UserID:         params.UserID,
		CheckInDate:    formatISO(params.Range.CheckIn),
		CheckOutDate:   formatISO(params.Range.CheckOut),
		NumberOfGuests: params.Guests,
		TotalPrice:     params.Price.Total.Float(),
		Status:         StatusPending,
		CreatedAt:      formatISO(params.CreatedAt),
	}, nil
}

// Booking is a reservation as returned by the backend.
type Booking struct {
	ID             BookingID           `json:"_id"`
	PropertyID     listings.PropertyID `json:"propertyId"`
	UserID         string              `json:"userId,omitempty"`
	CheckInDate    string              `json:"checkInDate"`
	CheckOutDate   string              `json:"checkOutDate"`
	NumberOfGuests int                 `json:"numberOfGuests"`
	TotalPrice     float64             `json:"totalPrice"`
	Status         Status              `json:"status"`
	CreatedAt      string              `json:"createdAt,omitempty"`
	UpdatedAt      string              `json:"updatedAt,omitempty"`
}

// CancelRequest is the body of a cancellation call.
type CancelRequest struct {
	Reason       string  `json:"cancellationReason"`
	RefundAmount float64 `json:"refundAmount"`
}

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

func formatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

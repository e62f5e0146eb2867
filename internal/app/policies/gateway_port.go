package policies

import (
	"context"
	"fmt"

	"staybook/internal/domain/booking"
)

// BookingGateway is the remote bookings API.
type BookingGateway interface {
	CreateBooking(ctx context.Context, req booking.Request) (*booking.Booking, error)
	GuestBookings(ctx context.Context, userID string) ([]booking.Booking, error)
	Booking(ctx context.Context, id booking.BookingID) (*booking.Booking, error)
	CancelBooking(ctx context.Context, id booking.BookingID, req booking.CancelRequest) (*booking.Booking, error)
}

// StatusError is returned by gateways when the backend answers with a non-2xx status.
// Body holds the raw response payload for error-message extraction.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

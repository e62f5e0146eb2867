package me

import (
	"context"
	"log/slog"

	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/policies"
	"staybook/internal/domain/auth"
	domainbooking "staybook/internal/domain/booking"
)

type ListGuestBookingsQuery struct{}

// ListGuestBookingsHandler serves the bookings list view of the current user.
type ListGuestBookingsHandler struct {
	Gateway  policies.BookingGateway
	Sessions auth.Accessor
	Logger   *slog.Logger
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, _ ListGuestBookingsQuery) ([]domainbooking.Booking, error) {
	sessions := h.Sessions
	if sessions == nil {
		sessions = auth.ContextAccessor{}
	}
	userID, ok := sessions.UserID(ctx)
	if !ok {
		return nil, &bookingapp.BookingError{Kind: bookingapp.KindAuthRequired, Message: "Please log in to view your bookings", Err: auth.ErrSessionNotFound}
	}
	if h.Gateway == nil {
		return nil, &bookingapp.BookingError{Kind: bookingapp.KindBackend, Message: "Failed to load bookings", Err: bookingapp.ErrGatewayRequired}
	}
	items, err := h.Gateway.GuestBookings(ctx, userID)
	if err != nil {
		mapped := bookingapp.MapGatewayError(err)
		if mapped.Kind == bookingapp.KindBackend && mapped.StatusCode == 0 {
			mapped.Message = "Failed to load bookings"
		}
		if h.Logger != nil {
			h.Logger.Warn("guest bookings lookup failed", "user_id", userID, "error", err)
		}
		return nil, mapped
	}
	if items == nil {
		items = []domainbooking.Booking{}
	}
	return items, nil
}

package booking

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"staybook/internal/app/policies"
	"staybook/internal/domain/auth"
	domainbooking "staybook/internal/domain/booking"
)

const MsgBookingNotFound = "Booking not found"

type GetBookingQuery struct {
	BookingID domainbooking.BookingID
}

// GetBookingHandler loads one booking of the current user. Bookings owned by
// someone else are reported as not found.
type GetBookingHandler struct {
	Gateway  policies.BookingGateway
	Sessions auth.Accessor
	Logger   *slog.Logger
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*domainbooking.Booking, error) {
	if strings.TrimSpace(string(q.BookingID)) == "" {
		return nil, &BookingError{Kind: KindValidation, Message: "Booking id is required"}
	}
	sessions := h.Sessions
	if sessions == nil {
		sessions = auth.ContextAccessor{}
	}
	userID, ok := sessions.UserID(ctx)
	if !ok {
		return nil, &BookingError{Kind: KindAuthRequired, Message: "Please log in to view your bookings", Err: auth.ErrSessionNotFound}
	}
	if h.Gateway == nil {
		return nil, &BookingError{Kind: KindBackend, Message: MsgTransportError, Err: ErrGatewayRequired}
	}
	b, err := h.Gateway.Booking(ctx, q.BookingID)
	if err != nil {
		mapped := MapGatewayError(err)
		if mapped.StatusCode == http.StatusNotFound {
			mapped.Kind = KindNotFound
			mapped.Message = MsgBookingNotFound
		}
		if h.Logger != nil {
			h.Logger.Warn("booking lookup failed", "booking_id", q.BookingID, "error", err)
		}
		return nil, mapped
	}
	if b.UserID != "" && b.UserID != userID {
		return nil, &BookingError{Kind: KindNotFound, Message: MsgBookingNotFound}
	}
	return b, nil
}

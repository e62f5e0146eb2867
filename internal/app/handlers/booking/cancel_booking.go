package booking

import (
	"context"
	"log/slog"
	"strings"

	"staybook/internal/app/policies"
	"staybook/internal/domain/auth"
	domainbooking "staybook/internal/domain/booking"
)

type CancelBookingCommand struct {
	BookingID    domainbooking.BookingID
	Reason       string
	RefundAmount float64
}

// CancelBookingHandler asks the backend to cancel one of the caller's bookings.
type CancelBookingHandler struct {
	Gateway  policies.BookingGateway
	Sessions auth.Accessor
	Logger   *slog.Logger
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*domainbooking.Booking, error) {
	if strings.TrimSpace(string(cmd.BookingID)) == "" {
		return nil, &BookingError{Kind: KindValidation, Message: "Booking id is required"}
	}
	if cmd.RefundAmount < 0 {
		return nil, &BookingError{Kind: KindValidation, Message: "Refund amount cannot be negative"}
	}
	sessions := h.Sessions
	if sessions == nil {
		sessions = auth.ContextAccessor{}
	}
	if _, ok := sessions.UserID(ctx); !ok {
		return nil, authRequired(auth.ErrSessionNotFound)
	}
	if h.Gateway == nil {
		return nil, &BookingError{Kind: KindBackend, Message: MsgTransportError, Err: ErrGatewayRequired}
	}
	cancelled, err := h.Gateway.CancelBooking(ctx, cmd.BookingID, domainbooking.CancelRequest{
		Reason:       strings.TrimSpace(cmd.Reason),
		RefundAmount: cmd.RefundAmount,
	})
	if err != nil {
		mapped := MapGatewayError(err)
		if h.Logger != nil {
			h.Logger.Warn("booking cancellation failed", "booking_id", cmd.BookingID, "error", err)
		}
		return nil, mapped
	}
	return cancelled, nil
}

package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/policies"
	"staybook/internal/domain/auth"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	domainrange "staybook/internal/domain/shared/daterange"
)

const (
	DefaultRedirectTo    = "/bookings"
	DefaultRedirectDelay = 2000 * time.Millisecond
)

type RequestBookingCommand struct {
	Property domainlistings.Property
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// RequestBookingResult is the confirmation handed back to the caller after the
// backend accepted the booking.
type RequestBookingResult struct {
	Booking       domainbooking.Booking
	Price         pricing.PriceBreakdown
	Message       string
	RedirectTo    string
	RedirectAfter time.Duration
}

// RequestBookingHandler validates a reservation and submits it to the backend.
// Every returned error is a *BookingError.
type RequestBookingHandler struct {
	Gateway       policies.BookingGateway
	Sessions      auth.Accessor
	Pricing       policies.PricingPort
	Notifier      policies.Notifier
	Clock         func() time.Time
	Logger        *slog.Logger
	RedirectTo    string
	RedirectDelay time.Duration
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	if strings.TrimSpace(string(cmd.Property.ID)) == "" {
		return nil, &BookingError{Kind: KindValidation, Message: "Property not found", Err: ErrPropertyRequired}
	}
	now := h.now()
	if res := domainbooking.Validate(cmd.CheckIn, cmd.CheckOut, cmd.Guests, cmd.Property.MaxGuests, now); !res.Valid() {
		return nil, validationError(res)
	}

	userID, ok := h.sessions().UserID(ctx)
	if !ok {
		return nil, authRequired(auth.ErrSessionNotFound)
	}
	if h.Gateway == nil {
		return nil, &BookingError{Kind: KindBackend, Message: MsgTransportError, Err: ErrGatewayRequired}
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, &BookingError{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	price, err := h.pricing().Quote(cmd.Property, dr)
	if err != nil {
		return nil, &BookingError{Kind: KindBackend, Message: MsgBookingFailed, Err: err}
	}
	req, err := domainbooking.NewRequest(domainbooking.RequestParams{
		PropertyID: cmd.Property.ID,
		UserID:     userID,
		Range:      dr,
		Guests:     cmd.Guests,
		Price:      price,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, &BookingError{Kind: KindValidation, Message: err.Error(), Err: err}
	}

	created, err := h.Gateway.CreateBooking(ctx, req)
	if err != nil {
		mapped := MapGatewayError(err)
		h.logger().Warn("booking submission failed",
			"property_id", cmd.Property.ID,
			"user_id", userID,
			"kind", mapped.Kind,
			"status", mapped.StatusCode,
			"error", err,
		)
		return nil, mapped
	}

	h.logger().Info("booking submitted",
		"booking_id", created.ID,
		"property_id", cmd.Property.ID,
		"nights", price.Nights,
		"total", price.Total.String(),
	)
	h.notify(ctx, created, req, now)

	return &RequestBookingResult{
		Booking:       *created,
		Price:         price,
		Message:       MsgConfirmed,
		RedirectTo:    h.redirectTo(),
		RedirectAfter: h.redirectDelay(),
	}, nil
}

func (h *RequestBookingHandler) notify(ctx context.Context, created *domainbooking.Booking, req domainbooking.Request, now time.Time) {
	if h.Notifier == nil {
		return
	}
	event := domainbooking.Submitted{
		BookingID:  created.ID,
		PropertyID: req.PropertyID,
		UserID:     req.UserID,
		CheckIn:    req.CheckInDate,
		CheckOut:   req.CheckOutDate,
		Guests:     req.NumberOfGuests,
		TotalPrice: req.TotalPrice,
		At:         now,
	}
	if err := h.Notifier.Notify(ctx, event); err != nil {
		h.logger().Warn("booking notification failed", "booking_id", created.ID, "error", err)
	}
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func (h *RequestBookingHandler) sessions() auth.Accessor {
	if h.Sessions != nil {
		return h.Sessions
	}
	return auth.ContextAccessor{}
}

func (h *RequestBookingHandler) pricing() policies.PricingPort {
	if h.Pricing != nil {
		return h.Pricing
	}
	return pricing.DefaultFees
}

func (h *RequestBookingHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (h *RequestBookingHandler) redirectTo() string {
	if h.RedirectTo != "" {
		return h.RedirectTo
	}
	return DefaultRedirectTo
}

func (h *RequestBookingHandler) redirectDelay() time.Duration {
	if h.RedirectDelay > 0 {
		return h.RedirectDelay
	}
	return DefaultRedirectDelay
}

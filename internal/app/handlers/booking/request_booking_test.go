package booking

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/policies"
	"staybook/internal/domain/auth"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/events"
)

var fixedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

var testProperty = domainlistings.Property{ID: "prop-1", Title: "Loft", Price: 100, MaxGuests: 4}

type fakeGateway struct {
	mu      sync.Mutex
	created []domainbooking.Request
	err     error
	release chan struct{}
	entered chan struct{}
}

func (g *fakeGateway) CreateBooking(ctx context.Context, req domainbooking.Request) (*domainbooking.Booking, error) {
	g.mu.Lock()
	g.created = append(g.created, req)
	g.mu.Unlock()
	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	if g.err != nil {
		return nil, g.err
	}
	return &domainbooking.Booking{
		ID:             "bk-1",
		PropertyID:     req.PropertyID,
		UserID:         req.UserID,
		CheckInDate:    req.CheckInDate,
		CheckOutDate:   req.CheckOutDate,
		NumberOfGuests: req.NumberOfGuests,
		TotalPrice:     req.TotalPrice,
		Status:         req.Status,
	}, nil
}

func (g *fakeGateway) GuestBookings(ctx context.Context, userID string) ([]domainbooking.Booking, error) {
	return nil, nil
}

func (g *fakeGateway) Booking(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return nil, nil
}

func (g *fakeGateway) CancelBooking(ctx context.Context, id domainbooking.BookingID, req domainbooking.CancelRequest) (*domainbooking.Booking, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &domainbooking.Booking{ID: id, Status: domainbooking.StatusCancelled}, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.created)
}

type recordingNotifier struct {
	events []events.DomainEvent
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, event events.DomainEvent) error {
	n.events = append(n.events, event)
	return n.err
}

func newHandler(gw policies.BookingGateway, user string) *RequestBookingHandler {
	return &RequestBookingHandler{
		Gateway:  gw,
		Sessions: auth.StaticAccessor(user),
		Clock:    func() time.Time { return fixedNow },
	}
}

func validCommand() RequestBookingCommand {
	return RequestBookingCommand{Property: testProperty, CheckIn: day(1), CheckOut: day(4), Guests: 2}
}

func TestRequestBookingSuccess(t *testing.T) {
	gw := &fakeGateway{}
	notifier := &recordingNotifier{}
	h := newHandler(gw, "user-1")
	h.Notifier = notifier

	res, err := h.Handle(context.Background(), validCommand())
	require.NoError(t, err)

	require.Equal(t, 1, gw.calls())
	req := gw.created[0]
	assert.Equal(t, domainlistings.PropertyID("prop-1"), req.PropertyID)
	assert.Equal(t, "user-1", req.UserID)
	assert.Equal(t, domainbooking.StatusPending, req.Status)
	assert.Equal(t, 2, req.NumberOfGuests)
	assert.InDelta(t, 375.0, req.TotalPrice, 1e-9)
	assert.Equal(t, "2026-10-17T09:00:00.000Z", req.CreatedAt)

	assert.Equal(t, domainbooking.BookingID("bk-1"), res.Booking.ID)
	assert.Equal(t, 3, res.Price.Nights)
	assert.Equal(t, MsgConfirmed, res.Message)
	assert.Equal(t, "/bookings", res.RedirectTo)
	assert.Equal(t, 2*time.Second, res.RedirectAfter)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, domainbooking.EventSubmitted, notifier.events[0].EventName())
	assert.Equal(t, "bk-1", notifier.events[0].AggregateID())
}

func TestRequestBookingNotifierFailureIsNotFatal(t *testing.T) {
	h := newHandler(&fakeGateway{}, "user-1")
	h.Notifier = &recordingNotifier{err: errors.New("broker down")}

	_, err := h.Handle(context.Background(), validCommand())
	require.NoError(t, err)
}

func TestRequestBookingValidationSkipsNetwork(t *testing.T) {
	gw := &fakeGateway{}
	h := newHandler(gw, "user-1")

	cmd := validCommand()
	cmd.Guests = 5
	_, err := h.Handle(context.Background(), cmd)

	var bErr *BookingError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, KindValidation, bErr.Kind)
	assert.Equal(t, domainbooking.ReasonGuestsOutOfRange, bErr.Reason)
	assert.Equal(t, "Guests must be between 1 and 4", bErr.Message)
	assert.Zero(t, gw.calls())
}

func TestRequestBookingReversedDates(t *testing.T) {
	gw := &fakeGateway{}
	cmd := validCommand()
	cmd.CheckIn, cmd.CheckOut = day(4), day(1)

	_, err := newHandler(gw, "user-1").Handle(context.Background(), cmd)
	require.Error(t, err)
	assert.Equal(t, "Check-out date must be after check-in date", err.Error())
	assert.Zero(t, gw.calls())
}

func TestRequestBookingValidationRunsBeforeAuth(t *testing.T) {
	gw := &fakeGateway{}
	cmd := validCommand()
	cmd.CheckIn = time.Time{}

	_, err := newHandler(gw, "").Handle(context.Background(), cmd)
	var bErr *BookingError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, KindValidation, bErr.Kind)
	assert.Equal(t, domainbooking.ReasonCheckInRequired, bErr.Reason)
}

func TestRequestBookingRequiresSession(t *testing.T) {
	gw := &fakeGateway{}

	_, err := newHandler(gw, "").Handle(context.Background(), validCommand())

	var bErr *BookingError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, KindAuthRequired, bErr.Kind)
	assert.Equal(t, MsgAuthRequired, bErr.Message)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	assert.Zero(t, gw.calls())
}

func TestRequestBookingUsesContextPrincipalByDefault(t *testing.T) {
	gw := &fakeGateway{}
	h := &RequestBookingHandler{Gateway: gw, Clock: func() time.Time { return fixedNow }}

	ctx := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "ctx-user", Token: "t"})
	_, err := h.Handle(ctx, validCommand())
	require.NoError(t, err)
	assert.Equal(t, "ctx-user", gw.created[0].UserID)
}

func TestRequestBookingServerError(t *testing.T) {
	gw := &fakeGateway{err: &policies.StatusError{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"Dates unavailable"}`)}}

	_, err := newHandler(gw, "user-1").Handle(context.Background(), validCommand())

	var bErr *BookingError
	require.ErrorAs(t, err, &bErr)
	assert.Equal(t, KindBackend, bErr.Kind)
	assert.Equal(t, "Dates unavailable", bErr.Message)
	assert.Equal(t, http.StatusBadRequest, bErr.StatusCode)
	assert.Equal(t, 1, gw.calls())
}

func TestRequestBookingTransportError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	gw := &fakeGateway{err: cause}

	_, err := newHandler(gw, "user-1").Handle(context.Background(), validCommand())
	require.ErrorIs(t, err, cause)
	assert.Equal(t, MsgTransportError, err.Error())
	assert.Equal(t, 1, gw.calls())
}

func TestRequestBookingMissingProperty(t *testing.T) {
	gw := &fakeGateway{}
	cmd := validCommand()
	cmd.Property = domainlistings.Property{}

	_, err := newHandler(gw, "user-1").Handle(context.Background(), cmd)
	require.ErrorIs(t, err, ErrPropertyRequired)
	assert.Zero(t, gw.calls())
}

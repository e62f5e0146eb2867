package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/policies"
	"staybook/internal/domain/auth"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/infra/obs"
)

func newTestClient(t *testing.T, h http.Handler, ttl time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/api/", PropertyCacheTTL: ttl}, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "  "}, nil)
	require.Error(t, err)
}

func TestCreateBookingSendsRequest(t *testing.T) {
	var got domainbooking.Request
	var headers http.Header
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bookings", func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"b-1","propertyId":"p-1","status":"pending","totalPrice":375}`))
	})
	c := newTestClient(t, mux, 0)

	ctx := auth.ContextWithPrincipal(context.Background(), auth.Principal{UserID: "u-1", Token: "tok"})
	ctx = obs.ContextWithRequestID(ctx, "req-42")
	req := domainbooking.Request{PropertyID: "p-1", UserID: "u-1", NumberOfGuests: 2, TotalPrice: 375, Status: domainbooking.StatusPending}

	b, err := c.CreateBooking(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.BookingID("b-1"), b.ID)
	assert.Equal(t, req, got)
	assert.Equal(t, "Bearer tok", headers.Get("Authorization"))
	assert.Equal(t, "req-42", headers.Get(obs.RequestIDHeader))
	assert.NotEmpty(t, headers.Get("Idempotency-Key"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
}

func TestCreateBookingStatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bookings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Dates unavailable"}`))
	})
	c := newTestClient(t, mux, 0)

	_, err := c.CreateBooking(context.Background(), domainbooking.Request{})
	var statusErr *policies.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
	assert.JSONEq(t, `{"error":"Dates unavailable"}`, string(statusErr.Body))
}

func TestCreateBookingUndecodableBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bookings", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	c := newTestClient(t, mux, 0)

	_, err := c.CreateBooking(context.Background(), domainbooking.Request{})
	require.Error(t, err)
	var statusErr *policies.StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestGuestBookingsUnwrapsEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bookings/guest/u-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"_id":"b-1"},{"_id":"b-2"}]}`))
	})
	c := newTestClient(t, mux, 0)

	list, err := c.GuestBookings(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domainbooking.BookingID("b-2"), list[1].ID)
}

func TestCancelBooking(t *testing.T) {
	var got domainbooking.CancelRequest
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bookings/b-1/cancel", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"_id":"b-1","status":"cancelled"}`))
	})
	mux.HandleFunc("GET /api/bookings/b-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"_id":"b-1","status":"cancelled"}`))
	})
	c := newTestClient(t, mux, 0)

	b, err := c.CancelBooking(context.Background(), "b-1", domainbooking.CancelRequest{Reason: "plans changed", RefundAmount: 100})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, b.Status)
	assert.Equal(t, "plans changed", got.Reason)
	assert.Equal(t, 100.0, got.RefundAmount)

	b, err = c.Booking(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, b.Status)
}

func TestPropertyFallsBackToLongTermStays(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/normal-stays/p-9", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("GET /api/long-term-stays/p-9", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"_id":"p-9","title":"Loft","price":80,"maxGuests":3}}`))
	})
	c := newTestClient(t, mux, 0)

	p, err := c.Property(context.Background(), "p-9")
	require.NoError(t, err)
	assert.Equal(t, "Loft", p.Title)
	assert.Equal(t, 80.0, p.Price)
	assert.Equal(t, 3, p.MaxGuests)
}

func TestPropertyNotFound(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler(), 0)

	_, err := c.Property(context.Background(), "missing")
	require.ErrorIs(t, err, domainlistings.ErrPropertyNotFound)

	_, err = c.Property(context.Background(), " ")
	require.ErrorIs(t, err, domainlistings.ErrPropertyIDMissing)
}

func TestPropertyIsCached(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/normal-stays/p-1", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"_id":"p-1","title":"Cabin","price":100,"maxGuests":4}`))
	})
	c := newTestClient(t, mux, time.Minute)

	for range 3 {
		p, err := c.Property(context.Background(), "p-1")
		require.NoError(t, err)
		assert.Equal(t, "Cabin", p.Title)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestPing(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler(), 0)
	require.NoError(t, c.Ping(context.Background()))
}

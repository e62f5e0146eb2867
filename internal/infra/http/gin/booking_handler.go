package ginserver

import (
	"context"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	bookingapp "staybook/internal/app/handlers/booking"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
)

type bookingCanceller interface {
	Handle(ctx context.Context, cmd bookingapp.CancelBookingCommand) (*domainbooking.Booking, error)
}

type bookingGetter interface {
	Handle(ctx context.Context, q bookingapp.GetBookingQuery) (*domainbooking.Booking, error)
}

type BookingHandler struct {
	Properties domainlistings.Lookup
	Submit     bookingapp.Submitter
	Lookups    bookingGetter
	Cancels    bookingCanceller
}

type createBookingRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`
}

type createBookingResponse struct {
	Booking         domainbooking.Booking `json:"booking"`
	Price           priceResponse         `json:"price"`
	Message         string                `json:"message"`
	RedirectTo      string                `json:"redirect_to"`
	RedirectAfterMS int64                 `json:"redirect_after_ms"`
}

type cancelBookingRequest struct {
	Reason       string  `json:"cancellation_reason"`
	RefundAmount float64 `json:"refund_amount"`
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Submit == nil || h.Properties == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bookings unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.PropertyID = strings.TrimSpace(req.PropertyID)
	if req.PropertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Property id is required"})
		return
	}
	checkIn, err := domainrange.ParseDate(req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-in date"})
		return
	}
	checkOut, err := domainrange.ParseDate(req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-out date"})
		return
	}

	ctx := c.Request.Context()
	property, err := h.Properties.Property(ctx, domainlistings.PropertyID(req.PropertyID))
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := h.Submit.Handle(ctx, bookingapp.RequestBookingCommand{
		Property: *property,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createBookingResponse{
		Booking:         result.Booking,
		Price:           toPriceResponse(result.Price),
		Message:         result.Message,
		RedirectTo:      result.RedirectTo,
		RedirectAfterMS: result.RedirectAfter.Milliseconds(),
	})
}

func (h BookingHandler) Get(c *gin.Context) {
	if h.Lookups == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bookings unavailable"})
		return
	}
	b, err := h.Lookups.Handle(c.Request.Context(), bookingapp.GetBookingQuery{
		BookingID: domainbooking.BookingID(c.Param("id")),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	if h.Cancels == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bookings unavailable"})
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}
	cancelled, err := h.Cancels.Handle(c.Request.Context(), bookingapp.CancelBookingCommand{
		BookingID:    domainbooking.BookingID(c.Param("id")),
		Reason:       req.Reason,
		RefundAmount: req.RefundAmount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

var _ BookingHTTP = BookingHandler{}

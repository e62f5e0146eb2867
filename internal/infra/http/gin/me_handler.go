package ginserver

import (
	"context"
	"net/http"

	gin "github.com/gin-gonic/gin"

	meapp "staybook/internal/app/handlers/me"
	domainbooking "staybook/internal/domain/booking"
)

type guestBookingsLister interface {
	Handle(ctx context.Context, q meapp.ListGuestBookingsQuery) ([]domainbooking.Booking, error)
}

type MeHandler struct {
	Bookings guestBookingsLister
}

func (h MeHandler) ListBookings(c *gin.Context) {
	if h.Bookings == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bookings unavailable"})
		return
	}
	items, err := h.Bookings.Handle(c.Request.Context(), meapp.ListGuestBookingsQuery{})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

var _ MeHTTP = MeHandler{}

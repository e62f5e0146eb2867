package ginserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	domainrange "staybook/internal/domain/shared/daterange"
)

// QuoteHandler prices a prospective stay the same way the booking form does.
// It never talks to the bookings API and needs no session.
type QuoteHandler struct {
	Properties domainlistings.Lookup
	Pricing    policies.PricingPort
	Clock      func() time.Time
}

type quoteResponse struct {
	PropertyID domainlistings.PropertyID `json:"property_id"`
	Title      string                    `json:"title"`
	MaxGuests  int                       `json:"max_guests"`
	Guests     int                       `json:"guests"`
	Price      *priceResponse            `json:"price,omitempty"`
	Valid      bool                      `json:"valid"`
	Reason     domainbooking.Reason      `json:"reason,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

func (h QuoteHandler) Quote(c *gin.Context) {
	if h.Properties == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "property lookup unavailable"})
		return
	}
	checkIn, err := domainrange.ParseDate(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-in date"})
		return
	}
	checkOut, err := domainrange.ParseDate(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-out date"})
		return
	}
	guests := 1
	if raw := strings.TrimSpace(c.Query("guests")); raw != "" {
		guests, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest count"})
			return
		}
	}

	property, err := h.Properties.Property(c.Request.Context(), domainlistings.PropertyID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := quoteResponse{
		PropertyID: property.ID,
		Title:      property.Title,
		MaxGuests:  property.MaxGuests,
		Guests:     guests,
	}
	dr := domainrange.DateRange{CheckIn: checkIn, CheckOut: checkOut}
	if dr.Complete() {
		breakdown, err := h.pricing().Quote(*property, dr)
		if err != nil {
			writeError(c, err)
			return
		}
		price := toPriceResponse(breakdown)
		resp.Price = &price
	}
	res := domainbooking.Validate(checkIn, checkOut, guests, property.MaxGuests, h.now())
	resp.Valid = res.Valid()
	resp.Reason = res.Reason
	resp.Error = res.Message
	c.JSON(http.StatusOK, resp)
}

func (h QuoteHandler) pricing() policies.PricingPort {
	if h.Pricing != nil {
		return h.Pricing
	}
	return pricing.DefaultFees
}

func (h QuoteHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

var _ QuoteHTTP = QuoteHandler{}

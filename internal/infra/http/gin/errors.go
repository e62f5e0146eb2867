package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "staybook/internal/app/handlers/booking"
	domainlistings "staybook/internal/domain/listings"
)

const msgPropertyNotFound = "Property not found"

func statusForKind(kind bookingapp.Kind) int {
	switch kind {
	case bookingapp.KindValidation:
		return http.StatusBadRequest
	case bookingapp.KindAuthRequired:
		return http.StatusUnauthorized
	case bookingapp.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// writeError answers {"error": message}. Only *BookingError messages reach the client verbatim.
func writeError(c *gin.Context, err error) {
	var bookingErr *bookingapp.BookingError
	switch {
	case errors.As(err, &bookingErr):
		body := gin.H{"error": bookingErr.Message}
		if bookingErr.Reason != "" {
			body["reason"] = bookingErr.Reason
		}
		c.JSON(statusForKind(bookingErr.Kind), body)
	case errors.Is(err, domainlistings.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgPropertyNotFound})
	case errors.Is(err, domainlistings.ErrPropertyIDMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Property id is required"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": bookingapp.MsgTransportError})
	}
}

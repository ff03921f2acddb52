package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skybook/services/booking"
)

// BookingHandler exposes booking lookups for operational tooling; the chat
// flow itself goes through the webhook.
type BookingHandler struct {
	Service booking.BookingSessionService
}

func NewBookingHandler(svc booking.BookingSessionService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// GetBookingByPNR returns the stored booking record for a PNR.
func (h *BookingHandler) GetBookingByPNR(c *gin.Context) {
	pnr := c.Param("pnr")
	record, err := h.Service.Status(c.Request.Context(), pnr)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found", "pnr": pnr})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetSession returns a user's live booking session, if any.
func (h *BookingHandler) GetSession(c *gin.Context) {
	userID := c.Param("userID")
	session, err := h.Service.CurrentSession(c.Request.Context(), userID)
	switch {
	case errors.Is(err, booking.ErrSessionNotFound), errors.Is(err, booking.ErrSessionExpired):
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
	default:
		c.JSON(http.StatusOK, session)
	}
}

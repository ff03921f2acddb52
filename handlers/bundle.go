package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates the endpoint handlers wired in main and consumed
// by route registration.
type HandlerBundle struct {
	// Webhook endpoints.
	HandleInbound gin.HandlerFunc

	// Booking lookups.
	GetBookingByPNR gin.HandlerFunc
	GetSession      gin.HandlerFunc
}

// Package provider talks to the flight inventory provider: search,
// fare-quote, SSR catalog and the branching book/ticket call family.
package provider

import (
	"context"

	"skybook/models"
)

// SearchResult is the provider's reply to a flight search.
type SearchResult struct {
	TraceID string         `json:"traceId"`
	Offers  []models.Offer `json:"offers"`
}

// BookingRequest carries everything the provider needs to hold or ticket a
// fare. The idempotency key makes a retried request after an ambiguous
// timeout replay instead of re-execute.
type BookingRequest struct {
	TraceID        string                    `json:"traceId"`
	ResultIndex    int                       `json:"resultIndex"`
	Passengers     []models.Passenger        `json:"passengers"`
	Services       []models.ServiceSelection `json:"services"`
	IdempotencyKey string                    `json:"idempotencyKey"`
}

// BookingResult is the reply to a non-LCC Book call: a held PNR, not yet a
// ticket.
type BookingResult struct {
	BookingID string `json:"bookingId"`
	PNR       string `json:"pnr"`
}

// TicketRequest issues the ticket for a previously booked PNR.
type TicketRequest struct {
	BookingID      string `json:"bookingId"`
	PNR            string `json:"pnr"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// TicketResult is the reply to Ticket or TicketDirect.
type TicketResult struct {
	BookingID    string `json:"bookingId"`
	PNR          string `json:"pnr"`
	TicketNumber string `json:"ticketNumber"`
}

// CancelRequest voids a ticketed booking.
type CancelRequest struct {
	BookingID string `json:"bookingId"`
	PNR       string `json:"pnr"`
}

// Client is the logical request/response contract with the inventory
// provider. Wire encoding and authentication live in the implementation.
type Client interface {
	Search(ctx context.Context, params models.SearchParams) (*SearchResult, error)
	FareQuote(ctx context.Context, traceID string, resultIndex int) (*models.FareQuote, error)
	ServiceCatalog(ctx context.Context, traceID string, resultIndex int) (*models.ServiceCatalog, error)
	// Book holds a fare on the non-LCC path; Ticket issues it afterwards.
	Book(ctx context.Context, req BookingRequest) (*BookingResult, error)
	Ticket(ctx context.Context, req TicketRequest) (*TicketResult, error)
	// TicketDirect combines book and ticket in one call, atomic from the
	// caller's perspective. LCC path only.
	TicketDirect(ctx context.Context, req BookingRequest) (*TicketResult, error)
	Cancel(ctx context.Context, req CancelRequest) error
}

package models

import "time"

// BookingStatus of a persisted booking record.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// BookingRecord is the durable record written once a booking completes. It is
// the payload handed to the notification dispatcher.
type BookingRecord struct {
	ID           string             `bson:"id" json:"id"`
	UserID       string             `bson:"userId" json:"userId"`
	PNR          string             `bson:"pnr" json:"pnr"`
	BookingID    string             `bson:"bookingId" json:"bookingId"`
	TicketNumber string             `bson:"ticketNumber" json:"ticketNumber"`
	Airline      string             `bson:"airline" json:"airline"`
	FlightNumber string             `bson:"flightNumber" json:"flightNumber"`
	Origin       string             `bson:"origin" json:"origin"`
	Destination  string             `bson:"destination" json:"destination"`
	Date         string             `bson:"date" json:"date"`
	Departure    string             `bson:"departure" json:"departure"`
	Arrival      string             `bson:"arrival" json:"arrival"`
	Passengers   []Passenger        `bson:"passengers" json:"passengers"`
	Services     []ServiceSelection `bson:"services" json:"services"`
	FareTotal    float64            `bson:"fareTotal" json:"fareTotal"`
	Currency     string             `bson:"currency" json:"currency"`
	Status       BookingStatus      `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CancellationQuote is shown to the user before a cancellation is confirmed.
type CancellationQuote struct {
	PNR                string  `json:"pnr"`
	PaidTotal          float64 `json:"paidTotal"`
	CancellationCharge float64 `json:"cancellationCharge"`
	RefundAmount       float64 `json:"refundAmount"`
	Currency           string  `json:"currency"`
}

// CancellationRecord is the finalized cancellation handed to the dispatcher.
type CancellationRecord struct {
	ID           string    `bson:"id" json:"id"`
	BookingID    string    `bson:"bookingId" json:"bookingId"`
	UserID       string    `bson:"userId" json:"userId"`
	PNR          string    `bson:"pnr" json:"pnr"`
	RefundAmount float64   `bson:"refundAmount" json:"refundAmount"`
	Currency     string    `bson:"currency" json:"currency"`
	CancelledAt  time.Time `bson:"cancelledAt" json:"cancelledAt"`
}

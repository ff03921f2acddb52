package models

// Offer is one priced flight result. Immutable once cached.
type Offer struct {
	Airline      string  `json:"airline"`
	FlightNumber string  `json:"flightNumber"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	Departure    string  `json:"departure"` // scheduled local time, e.g. "08:00"
	Arrival      string  `json:"arrival"`
	BaseFare     float64 `json:"baseFare"`
	Taxes        float64 `json:"taxes"`
	Total        float64 `json:"total"`
	Currency     string  `json:"currency"`
	IsLCC        bool    `json:"isLcc"`
	// ResultIndex is the provider-scoped handle used with the search TraceID
	// in every follow-up call.
	ResultIndex int `json:"resultIndex"`
}

// OfferRef points into the fare cache without copying the offer.
type OfferRef struct {
	TraceID     string `json:"traceId"`
	ResultIndex int    `json:"resultIndex"`
}

// FareQuote is the provider's re-verification of an offer's price.
type FareQuote struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
	// TraceID supersedes the search trace for the booking calls that follow.
	TraceID string `json:"traceId"`
}

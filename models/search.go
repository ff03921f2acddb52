package models

// CabinClass as accepted by the inventory provider.
type CabinClass string

const (
	CabinEconomy  CabinClass = "Economy"
	CabinPremium  CabinClass = "PremiumEconomy"
	CabinBusiness CabinClass = "Business"
)

// SearchParams are the normalized inputs of one flight search. They are set
// once per search and stay immutable until a new search starts.
type SearchParams struct {
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Date        string     `json:"date"` // ISO calendar date, YYYY-MM-DD
	Adults      int        `json:"adults"`
	Children    int        `json:"children"`
	Infants     int        `json:"infants"`
	Cabin       CabinClass `json:"cabin"`
}

// PassengerCount is the total number of passenger records the session must
// collect before details can be confirmed.
func (p SearchParams) PassengerCount() int {
	return p.Adults + p.Children + p.Infants
}

// Extraction is the untrusted best-effort guess returned by the entity
// extraction service. Every field is re-validated by the normalizer.
type Extraction struct {
	Intent      string `json:"intent"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	Date        string `json:"date,omitempty"`
	Passengers  int    `json:"passengers,omitempty"`
	Class       string `json:"class,omitempty"`
	PNR         string `json:"pnr,omitempty"`
}

package models

// ServiceKind groups special service requests the way the provider catalogs
// them.
type ServiceKind string

const (
	ServiceMeal    ServiceKind = "meal"
	ServiceSeat    ServiceKind = "seat"
	ServiceBaggage ServiceKind = "baggage"
)

// ServiceOption is one purchasable SSR item from the provider catalog.
type ServiceOption struct {
	Code        string      `json:"code"`
	Kind        ServiceKind `json:"kind"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
}

// ServiceCatalog is what the provider offers for a selected flight.
type ServiceCatalog struct {
	Meals   []ServiceOption `json:"meals"`
	Seats   []ServiceOption `json:"seats"`
	Baggage []ServiceOption `json:"baggage"`
}

// ServiceSelection is one SSR the user picked, with the price quoted at
// selection time.
type ServiceSelection struct {
	Code        string      `json:"code"`
	Kind        ServiceKind `json:"kind"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
}

// ServicesTotal sums the quoted prices of a selection set.
func ServicesTotal(selections []ServiceSelection) float64 {
	var total float64
	for _, s := range selections {
		total += s.Price
	}
	return total
}

// HasBaggage reports whether at least one baggage item was selected.
// LCC fares carry no free allowance, so ticketing requires one.
func HasBaggage(selections []ServiceSelection) bool {
	for _, s := range selections {
		if s.Kind == ServiceBaggage {
			return true
		}
	}
	return false
}

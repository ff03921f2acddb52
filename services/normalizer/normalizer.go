// Package normalizer converts untrusted extracted fields into canonical typed
// values. Everything here is a pure function of its input and the supplied
// clock; no side effects.
package normalizer

import (
	"time"

	"skybook/models"
)

// NormalizedSearch is a fully validated set of search parameters.
type NormalizedSearch struct {
	Params models.SearchParams
}

// NormalizeSearch validates an extraction into search parameters. The
// extraction comes from the entity extraction service and is treated as
// untrusted: every field is re-checked here.
func NormalizeSearch(ex models.Extraction, now time.Time) (*NormalizedSearch, error) {
	origin, err := NormalizeLocation(ex.Origin)
	if err != nil {
		return nil, err
	}
	destination, err := NormalizeLocation(ex.Destination)
	if err != nil {
		return nil, err
	}
	if origin == destination {
		return nil, &FieldValidationError{Field: "destination", Reason: "origin and destination are the same"}
	}

	date, err := NormalizeDate(ex.Date, now)
	if err != nil {
		return nil, err
	}

	adults := ex.Passengers
	if adults <= 0 {
		adults = 1
	}
	if adults > 9 {
		return nil, &FieldValidationError{Field: "passengers", Reason: "at most 9 passengers per booking"}
	}

	cabin := models.CabinEconomy
	switch ex.Class {
	case "", "economy", "Economy":
	case "business", "Business":
		cabin = models.CabinBusiness
	case "premium", "premium economy", "PremiumEconomy":
		cabin = models.CabinPremium
	default:
		return nil, &FieldValidationError{Field: "class", Reason: "unrecognized cabin class"}
	}

	return &NormalizedSearch{Params: models.SearchParams{
		Origin:      origin,
		Destination: destination,
		Date:        date,
		Adults:      adults,
		Cabin:       cabin,
	}}, nil
}

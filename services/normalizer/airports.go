package normalizer

import "strings"

// airportCodes maps recognized place names to IATA airport codes. The lookup
// is fixed: anything not listed is an UnknownLocation.
var airportCodes = map[string]string{
	"delhi":      "DEL",
	"new delhi":  "DEL",
	"mumbai":     "BOM",
	"bombay":     "BOM",
	"bangalore":  "BLR",
	"bengaluru":  "BLR",
	"chennai":    "MAA",
	"madras":     "MAA",
	"kolkata":    "CCU",
	"calcutta":   "CCU",
	"hyderabad":  "HYD",
	"goa":        "GOI",
	"pune":       "PNQ",
	"ahmedabad":  "AMD",
	"jaipur":     "JAI",
	"lucknow":    "LKO",
	"kochi":      "COK",
	"cochin":     "COK",
	"chandigarh": "IXC",
	"guwahati":   "GAU",
	"patna":      "PAT",
	"srinagar":   "SXR",
	"varanasi":   "VNS",
}

// iataCodes is the reverse membership set, so already-normalized input
// ("DEL") passes through unchanged.
var iataCodes = func() map[string]bool {
	set := make(map[string]bool, len(airportCodes))
	for _, code := range airportCodes {
		set[code] = true
	}
	return set
}()

// NormalizeLocation resolves a free-form place name to an IATA airport code.
func NormalizeLocation(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &FieldValidationError{Field: "location", Reason: "empty location"}
	}
	if upper := strings.ToUpper(name); iataCodes[upper] {
		return upper, nil
	}
	if code, ok := airportCodes[strings.ToLower(name)]; ok {
		return code, nil
	}
	return "", &UnknownLocationError{Name: name}
}

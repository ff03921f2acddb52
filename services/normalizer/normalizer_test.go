package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybook/models"
)

// 2024-01-15 is a Monday.
var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Delhi", "DEL"},
		{"delhi", "DEL"},
		{"DEL", "DEL"},
		{"del", "DEL"},
		{"Mumbai", "BOM"},
		{"  bangalore  ", "BLR"},
	}
	for _, tt := range tests {
		got, err := NormalizeLocation(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeLocationUnknown(t *testing.T) {
	_, err := NormalizeLocation("Atlantis")
	var ule *UnknownLocationError
	require.ErrorAs(t, err, &ule)
	assert.Equal(t, "Atlantis", ule.Name)
}

func TestNormalizeDateRelative(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"today", "2024-01-15"},
		{"Tomorrow", "2024-01-16"},
		{"day after tomorrow", "2024-01-17"},
		{"next friday", "2024-01-19"},
		{"friday", "2024-01-19"},
		// Today is Monday; a bare "monday" means next week's.
		{"monday", "2024-01-22"},
		{"20/01/2024", "2024-01-20"},
		{"20-01-2024", "2024-01-20"},
		{"2024-02-01", "2024-02-01"},
	}
	for _, tt := range tests {
		got, err := NormalizeDate(tt.in, testNow)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNormalizeDateRejectsPastAndGarbage(t *testing.T) {
	for _, in := range []string{"01/01/2024", "yesterday", "", "someday"} {
		_, err := NormalizeDate(in, testNow)
		var ide *InvalidDateError
		assert.ErrorAs(t, err, &ide, in)
	}
}

func TestNormalizeSearch(t *testing.T) {
	normalized, err := NormalizeSearch(models.Extraction{
		Origin:      "Delhi",
		Destination: "Mumbai",
		Date:        "tomorrow",
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, "DEL", normalized.Params.Origin)
	assert.Equal(t, "BOM", normalized.Params.Destination)
	assert.Equal(t, "2024-01-16", normalized.Params.Date)
	// Passenger count defaults to one adult.
	assert.Equal(t, 1, normalized.Params.Adults)
	assert.Equal(t, models.CabinEconomy, normalized.Params.Cabin)
}

func TestNormalizeSearchCabin(t *testing.T) {
	normalized, err := NormalizeSearch(models.Extraction{
		Origin: "Delhi", Destination: "Mumbai", Date: "tomorrow", Class: "business",
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, models.CabinBusiness, normalized.Params.Cabin)
}

func TestNormalizeSearchSameEndpoints(t *testing.T) {
	_, err := NormalizeSearch(models.Extraction{
		Origin: "Delhi", Destination: "del", Date: "tomorrow",
	}, testNow)
	var fve *FieldValidationError
	require.ErrorAs(t, err, &fve)
	assert.Equal(t, "destination", fve.Field)
}

func TestNormalizeSearchPassengerCap(t *testing.T) {
	_, err := NormalizeSearch(models.Extraction{
		Origin: "Delhi", Destination: "Mumbai", Date: "tomorrow", Passengers: 10,
	}, testNow)
	var fve *FieldValidationError
	require.ErrorAs(t, err, &fve)
	assert.Equal(t, "passengers", fve.Field)
}

func TestNormalizeSearchUnknownOrigin(t *testing.T) {
	_, err := NormalizeSearch(models.Extraction{
		Origin: "Gotham", Destination: "Mumbai", Date: "tomorrow",
	}, testNow)
	var ule *UnknownLocationError
	require.ErrorAs(t, err, &ule)
	assert.Equal(t, "Gotham", ule.Name)
}

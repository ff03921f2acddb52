package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybook/models"
)

var testPolicy = AgePolicy{ChildMinAge: 2, AdultMinAge: 12}

func TestParsePassengerLead(t *testing.T) {
	parsed := ParsePassenger("John Doe, 15/01/1990, Male, 9876543210, John@Email.com", true, testNow, testPolicy)
	require.True(t, parsed.Valid(), "errors: %v", parsed.FieldErrors)

	p := parsed.Passenger
	assert.Equal(t, "John Doe", p.FullName)
	assert.Equal(t, "1990-01-15", p.DateOfBirth)
	assert.Equal(t, "Male", p.Gender)
	assert.Equal(t, models.PassengerAdult, p.Type)
	assert.Equal(t, "9876543210", p.Phone)
	assert.Equal(t, "john@email.com", p.Email)
	assert.True(t, p.Lead)
}

func TestParsePassengerNonLeadSkipsContact(t *testing.T) {
	parsed := ParsePassenger("Jane Doe, 15/01/1995, Female", false, testNow, testPolicy)
	require.True(t, parsed.Valid(), "errors: %v", parsed.FieldErrors)
	assert.Equal(t, "Female", parsed.Passenger.Gender)
	assert.Empty(t, parsed.Passenger.Phone)
	assert.False(t, parsed.Passenger.Lead)
}

func TestParsePassengerTypeBoundaries(t *testing.T) {
	tests := []struct {
		dob  string
		want models.PassengerType
	}{
		{"15/01/2023", models.PassengerInfant}, // turns 1 today
		{"15/01/2022", models.PassengerChild},  // turns 2 today
		{"16/01/2012", models.PassengerChild},  // 12th birthday tomorrow
		{"15/01/2012", models.PassengerAdult},  // turns 12 today
	}
	for _, tt := range tests {
		parsed := ParsePassenger("Test Pax, "+tt.dob+", Female", false, testNow, testPolicy)
		require.True(t, parsed.Valid(), tt.dob)
		assert.Equal(t, tt.want, parsed.Passenger.Type, tt.dob)
	}
}

func TestParsePassengerKeepsValidFields(t *testing.T) {
	parsed := ParsePassenger("John Doe, 15/01/1990, Male, 98765, john@email.com", true, testNow, testPolicy)
	require.False(t, parsed.Valid())
	require.Len(t, parsed.FieldErrors, 1)
	assert.Equal(t, "phone", parsed.FieldErrors[0].Field)

	// Passing fields survive so the user only re-enters the failing one.
	assert.Equal(t, "John Doe", parsed.Passenger.FullName)
	assert.Equal(t, "1990-01-15", parsed.Passenger.DateOfBirth)
	assert.Equal(t, "john@email.com", parsed.Passenger.Email)
}

func TestParsePassengerCollectsAllFailures(t *testing.T) {
	parsed := ParsePassenger("X, 31/02/1990, sometimes, abc, not-an-email", true, testNow, testPolicy)
	require.False(t, parsed.Valid())
	fields := make([]string, 0, len(parsed.FieldErrors))
	for _, fe := range parsed.FieldErrors {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"name", "dateOfBirth", "gender", "phone", "email"}, fields)
}

func TestParsePassengerTooFewParts(t *testing.T) {
	parsed := ParsePassenger("John Doe, 15/01/1990", true, testNow, testPolicy)
	require.Len(t, parsed.FieldErrors, 1)
	assert.Equal(t, "passenger", parsed.FieldErrors[0].Field)
}

func TestParsePassengerFutureDOB(t *testing.T) {
	parsed := ParsePassenger("John Doe, 15/01/2030, Male", false, testNow, testPolicy)
	require.Len(t, parsed.FieldErrors, 1)
	assert.Equal(t, "dateOfBirth", parsed.FieldErrors[0].Field)
}

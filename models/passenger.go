package models

import "time"

// PassengerType is derived from date of birth at validation time. The age
// boundaries are policy-configurable; the provider default is infant <2,
// child 2-11, adult 12 and above.
type PassengerType string

const (
	PassengerAdult  PassengerType = "adult"
	PassengerChild  PassengerType = "child"
	PassengerInfant PassengerType = "infant"
)

// Passenger is one traveller on the booking. Records are validated before
// acceptance and never mutated once the session advances past collection.
type Passenger struct {
	FullName    string        `json:"fullName"`
	DateOfBirth string        `json:"dateOfBirth"` // YYYY-MM-DD
	Gender      string        `json:"gender"`
	Type        PassengerType `json:"type"`
	// Contact fields are required on the lead passenger only; booking
	// confirmations go to the lead's phone and email.
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Lead  bool   `json:"lead"`
}

// AgeOn returns the passenger's age in whole years at the given date.
func (p Passenger) AgeOn(date time.Time) int {
	dob, err := time.Parse("2006-01-02", p.DateOfBirth)
	if err != nil {
		return 0
	}
	years := date.Year() - dob.Year()
	if date.YearDay() < dob.YearDay() {
		years--
	}
	return years
}

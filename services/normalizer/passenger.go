package normalizer

import (
	"regexp"
	"strings"
	"time"

	"skybook/models"
)

var (
	nameRe  = regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]{1,49}$`)
	phoneRe = regexp.MustCompile(`^\d{10}$`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)
)

// AgePolicy carries the configurable passenger-type boundaries.
type AgePolicy struct {
	ChildMinAge int // below this: infant
	AdultMinAge int // below this: child
}

// ParsedPassenger is the outcome of parsing one passenger line. Fields that
// validated are filled in even when others failed, so the caller can
// re-prompt for just the failing ones.
type ParsedPassenger struct {
	Passenger models.Passenger
	// FieldErrors holds one entry per failing field, in input order.
	FieldErrors []*FieldValidationError
}

// Valid reports whether every field passed validation.
func (p ParsedPassenger) Valid() bool {
	return len(p.FieldErrors) == 0
}

// ParsePassenger splits passenger free text of the form
// "John Doe, 15/01/1990, Male, 9876543210, john@email.com" into fields and
// validates each independently. Contact fields are only expected for the
// lead passenger.
func ParsePassenger(raw string, lead bool, now time.Time, policy AgePolicy) ParsedPassenger {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	result := ParsedPassenger{Passenger: models.Passenger{Lead: lead}}
	fail := func(field, reason string) {
		result.FieldErrors = append(result.FieldErrors, &FieldValidationError{Field: field, Reason: reason})
	}

	want := 3
	expected := "expected name, date of birth and gender"
	if lead {
		want = 5
		expected = "expected name, date of birth, gender, phone and email"
	}
	if len(parts) < want {
		fail("passenger", expected)
		return result
	}

	if nameRe.MatchString(parts[0]) {
		result.Passenger.FullName = parts[0]
	} else {
		fail("name", "name must be 2-50 letters")
	}

	if dob, err := parseDOB(parts[1], now); err != nil {
		fail("dateOfBirth", err.Reason)
	} else {
		result.Passenger.DateOfBirth = dob.Format(isoDate)
		result.Passenger.Type = passengerType(dob, now, policy)
	}

	switch strings.ToLower(parts[2]) {
	case "male", "m":
		result.Passenger.Gender = "Male"
	case "female", "f":
		result.Passenger.Gender = "Female"
	case "other":
		result.Passenger.Gender = "Other"
	default:
		fail("gender", "gender must be Male, Female or Other")
	}

	if lead {
		if phoneRe.MatchString(parts[3]) {
			result.Passenger.Phone = parts[3]
		} else {
			fail("phone", "phone must be exactly 10 digits")
		}
		if emailRe.MatchString(parts[4]) {
			result.Passenger.Email = strings.ToLower(parts[4])
		} else {
			fail("email", "email must look like name@domain.com")
		}
	}

	return result
}

func parseDOB(raw string, now time.Time) (time.Time, *FieldValidationError) {
	layouts := []string{"02/01/2006", isoDate, "02-01-2006"}
	for _, layout := range layouts {
		dob, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if dob.After(now) {
			return time.Time{}, &FieldValidationError{Field: "dateOfBirth", Reason: "date of birth is in the future"}
		}
		return dob, nil
	}
	return time.Time{}, &FieldValidationError{Field: "dateOfBirth", Reason: "not a valid calendar date"}
}

func passengerType(dob, now time.Time, policy AgePolicy) models.PassengerType {
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	switch {
	case years < policy.ChildMinAge:
		return models.PassengerInfant
	case years < policy.AdultMinAge:
		return models.PassengerChild
	default:
		return models.PassengerAdult
	}
}

package normalizer

import "fmt"

// UnknownLocationError is returned when a place name has no IATA mapping.
type UnknownLocationError struct {
	Name string
}

func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("unknownLocation: %q is not a recognized city or airport", e.Name)
}

// InvalidDateError is returned for unparseable or past travel dates.
type InvalidDateError struct {
	Raw    string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalidDate: %q (%s)", e.Raw, e.Reason)
}

// FieldValidationError reports a single failing field so the caller can
// re-prompt for just that field. Successfully parsed sibling fields are kept.
type FieldValidationError struct {
	Field  string
	Reason string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("fieldValidation: %s: %s", e.Field, e.Reason)
}

package normalizer

import (
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NormalizeDate resolves a free-form date expression against the
// conversation's current time into an ISO calendar date. Dates in the past
// fail with InvalidDateError.
func NormalizeDate(raw string, now time.Time) (string, error) {
	expr := strings.ToLower(strings.TrimSpace(raw))
	if expr == "" {
		return "", &InvalidDateError{Raw: raw, Reason: "empty date"}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var resolved time.Time
	switch {
	case expr == "today":
		resolved = today
	case expr == "tomorrow":
		resolved = today.AddDate(0, 0, 1)
	case expr == "day after tomorrow":
		resolved = today.AddDate(0, 0, 2)
	case strings.HasPrefix(expr, "next "):
		wd, ok := weekdays[strings.TrimPrefix(expr, "next ")]
		if !ok {
			return "", &InvalidDateError{Raw: raw, Reason: "unrecognized weekday"}
		}
		resolved = nextWeekday(today, wd)
	default:
		if wd, ok := weekdays[expr]; ok {
			resolved = nextWeekday(today, wd)
			break
		}
		parsed, err := parseCalendarDate(expr, now.Location())
		if err != nil {
			return "", &InvalidDateError{Raw: raw, Reason: "unrecognized date format"}
		}
		resolved = parsed
	}

	if resolved.Before(today) {
		return "", &InvalidDateError{Raw: raw, Reason: "date is in the past"}
	}
	return resolved.Format(isoDate), nil
}

// nextWeekday returns the next occurrence of wd strictly after today's
// weekday, or a week out when today already is wd.
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

func parseCalendarDate(expr string, loc *time.Location) (time.Time, error) {
	layouts := []string{isoDate, "02/01/2006", "02-01-2006", "2 January 2006", "January 2, 2006"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, expr, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

package handler

import (
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
)

const dateOnly = "2006-01-02"

// parseDateRange reads optional RFC3339 or YYYY-MM-DD bounds.
// A date-only end bound covers the whole day.
func parseDateRange(rawStart, rawEnd string) (*time.Time, *time.Time, error) {
	start, err := parseDate("start_date", rawStart, false)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseDate("end_date", rawEnd, true)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func parseDate(field, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, errs.NewValidationError(field, "must be YYYY-MM-DD or RFC3339")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

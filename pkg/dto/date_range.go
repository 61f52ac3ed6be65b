package dto

import (
	"strings"
	"time"

	"nub.ac.bd/transport/pkg/apperror"
)

const dateOnly = "2006-01-02"

type DateRange struct {
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

// ResolveDateRange returns the inclusive bounds for a date filter. ok is false
// when neither bound was given. A missing lower bound is the Unix epoch and a
// missing upper bound is 24 hours after now.
func ResolveDateRange(from, to string, now time.Time) (start, end time.Time, ok bool, err error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" && to == "" {
		return time.Time{}, time.Time{}, false, nil
	}

	start = time.Unix(0, 0).UTC()
	end = now.Add(24 * time.Hour)

	if from != "" {
		if start, err = parseDate(from); err != nil {
			return time.Time{}, time.Time{}, false, apperror.BadRequest("invalid date_from: %s", from)
		}
	}
	if to != "" {
		if end, err = parseDate(to); err != nil {
			return time.Time{}, time.Time{}, false, apperror.BadRequest("invalid date_to: %s", to)
		}
	}

	return start, end, true, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(dateOnly, s)
}

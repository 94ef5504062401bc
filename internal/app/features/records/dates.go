package records

import (
	"errors"
	"time"
)

var errBadDate = errors.New("unrecognized date format")

// dateLayouts are tried in order. Input without a zone offset, date-only or
// not, is read as UTC rather than server local time.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate parses s and reports whether it carried only a calendar date.
func parseDate(s string) (time.Time, bool, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), layout == "2006-01-02", nil
		}
	}
	return time.Time{}, false, errBadDate
}

// endOfDay returns the last millisecond of t's UTC day. MongoDB stores
// dates at millisecond precision.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Millisecond)
}

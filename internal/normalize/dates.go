package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Date formats seen in SharePoint list exports.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate attempts to parse a date string in multiple common formats.
// Returns nil if the input is empty or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseID coerces a source identifier to an integer. "42" and "42.0" both
// yield 42; anything non-numeric or fractional is nil.
func ParseID(v *string) *int64 {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int64(f)
	return &n
}

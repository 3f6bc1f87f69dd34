package normalize

import (
	"regexp"
	"strings"
)

var (
	nonDigit     = regexp.MustCompile(`\D`)
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
)

// StandardizeEmail lower-cases and trims, then requires the whole value to be
// a single address. Anything else is nil.
func StandardizeEmail(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(*v))
	if !emailPattern.MatchString(s) {
		return nil
	}
	return &s
}

// StripDigits removes every non-digit character. Used for phone numbers and SSNs.
// Returns nil if the input is nil or no digits remain.
func StripDigits(v *string) *string {
	if v == nil {
		return nil
	}
	s := nonDigit.ReplaceAllString(*v, "")
	if s == "" {
		return nil
	}
	return &s
}

// StandardizeZip keeps the part of a ZIP code before the first dash.
func StandardizeZip(v *string) *string {
	if v == nil {
		return nil
	}
	s, _, _ := strings.Cut(strings.TrimSpace(*v), "-")
	if s == "" {
		return nil
	}
	return &s
}

// StandardizeSex maps Male/Female to M/F and passes other values through.
func StandardizeSex(v *string) *string {
	if v == nil {
		return nil
	}
	var s string
	switch strings.TrimSpace(*v) {
	case "Male":
		s = "M"
	case "Female":
		s = "F"
	default:
		s = strings.TrimSpace(*v)
	}
	if s == "" {
		return nil
	}
	return &s
}

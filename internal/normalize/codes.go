package normalize

import (
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]`)
	mbiPattern      = regexp.MustCompile(`[A-Z0-9]{11}`)
	dxPattern       = regexp.MustCompile(`[EIR]\d+(\.\d+)?`)
	insuranceIDPat  = regexp.MustCompile(`[A-Z]*\d+[A-Z]*\d+[A-Z]*\d+[A-Z]*\d*`)
)

// StandardizeMBI upper-cases and trims a Medicare Beneficiary Identifier and
// extracts the first 11-character alphanumeric run. Without a run the
// upper-cased input is kept. Returns nil for nil or blank input.
func StandardizeMBI(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.ToUpper(strings.TrimSpace(*v))
	if s == "" {
		return nil
	}
	if m := mbiPattern.FindString(s); m != "" {
		return &m
	}
	return &s
}

// StandardizeDXCode extracts every E/I/R diagnosis code, drops the decimal
// point and joins the codes with commas. No match yields "".
func StandardizeDXCode(v *string) string {
	if v == nil {
		return ""
	}
	s := strings.ToUpper(strings.TrimSpace(*v))
	matches := dxPattern.FindAllString(s, -1)
	for i, m := range matches {
		matches[i] = strings.ReplaceAll(m, ".", "")
	}
	return strings.Join(matches, ",")
}

// SplitDXCodes splits a standardized code list, skipping empty entries.
func SplitDXCodes(codes string) []string {
	var out []string
	for _, c := range strings.Split(codes, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// StandardizeInsuranceID upper-cases, strips non-alphanumerics and extracts
// an id with at least three digit groups. Falls back to the stripped value.
// Returns nil if the input is nil or nothing is left.
func StandardizeInsuranceID(v *string) *string {
	if v == nil {
		return nil
	}
	s := nonAlphanumeric.ReplaceAllString(strings.ToUpper(strings.TrimSpace(*v)), "")
	if s == "" {
		return nil
	}
	if m := insuranceIDPat.FindString(s); m != "" {
		return &m
	}
	return &s
}

package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	heightTokens  = []string{"'", `"`, "ft", "in"}
	weightTokens  = []string{"lbs", "kg"}
	heightPattern = regexp.MustCompile(`^(\d+)\D*?(\d+)?\D*?$`)
)

// maxWeightDigits bounds absurd weights: only the leading digits are kept.
const maxWeightDigits = 3

// StandardizeWeight parses a weight in pounds. Values that look like a height
// are nil. Digits beyond the first three are dropped; no digits yields 0.
func StandardizeWeight(v *string) *int {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if containsAny(strings.ToLower(s), heightTokens) {
		return nil
	}
	s = nonDigit.ReplaceAllString(s, "")
	if len(s) > maxWeightDigits {
		s = s[:maxWeightDigits]
	}
	w := 0
	if s != "" {
		w, _ = strconv.Atoi(s)
	}
	return &w
}

// StandardizeHeight parses heights like 5'8", 5ft 2 or 5 into inches.
// Values that look like a weight or do not start with a number are nil.
func StandardizeHeight(v *string) *int {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if containsAny(strings.ToLower(s), weightTokens) {
		return nil
	}
	m := heightPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	feet, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	inches := 0
	if m[2] != "" {
		inches, _ = strconv.Atoi(m[2])
	}
	h := feet*12 + inches
	return &h
}

// Round2 rounds a nullable reading to two decimal places.
func Round2(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*100) / 100
	return &r
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

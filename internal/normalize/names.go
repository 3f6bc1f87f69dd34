package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var multiSpace = regexp.MustCompile(`\s+`)

// NameKind selects the character allow-list applied by StandardizeName.
type NameKind int

const (
	PersonName NameKind = iota
	MiddleName
	ContactName
	StreetAddress
	CityName
)

// Inverse patterns: every character they match is removed.
var disallowed = map[NameKind]*regexp.Regexp{
	PersonName:    regexp.MustCompile(`[^a-zA-Z\s.\-]`),
	MiddleName:    regexp.MustCompile(`[^a-zA-Z\s\-]`),
	ContactName:   regexp.MustCompile(`[^a-zA-Z\s./()\-]`),
	StreetAddress: regexp.MustCompile(`[^a-zA-Z0-9\s#./\-]`),
	CityName:      regexp.MustCompile(`[^a-zA-Z\s\-]`),
}

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest. Any non-letter starts a new run, so "o'brien"
// becomes "O'Brien" and "3rd" becomes "3Rd".
func TitleCase(s string) string {
	title := cases.Title(language.English)
	var b strings.Builder
	b.Grow(len(s))
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(title.String(s[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(title.String(s[start:]))
	}
	return b.String()
}

// StandardizeName trims, title-cases and collapses whitespace, then removes
// every character outside the allow-list for kind.
// Returns nil if the input is nil or nothing is left.
func StandardizeName(v *string, kind NameKind) *string {
	if v == nil {
		return nil
	}
	s := TitleCase(strings.TrimSpace(*v))
	s = multiSpace.ReplaceAllString(s, " ")
	s = disallowed[kind].ReplaceAllString(s, "")
	s = strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
	if s == "" {
		return nil
	}
	return &s
}

// TrimTitle trims and title-cases without filtering characters.
func TrimTitle(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	s = TitleCase(s)
	return &s
}

// FullName joins first and last name with a single space. Missing parts are skipped.
func FullName(first, last *string) *string {
	var parts []string
	if first != nil {
		parts = append(parts, *first)
	}
	if last != nil {
		parts = append(parts, *last)
	}
	if len(parts) == 0 {
		return nil
	}
	s := strings.Join(parts, " ")
	return &s
}

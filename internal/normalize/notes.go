package normalize

import (
	"html"
	"regexp"
	"strings"
)

var htmlTag = regexp.MustCompile(`<.*?>`)

const aprnEvaluation = "Initial Evaluation with APRN"

// StandardizeNoteType collapses "Initial Evaluation with APRN" into
// "Initial Evaluation" and otherwise keeps the first comma-separated segment.
func StandardizeNoteType(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	if s == aprnEvaluation {
		s = "Initial Evaluation"
	}
	s, _, _ = strings.Cut(s, ",")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CleanNoteContent unescapes HTML entities and strips markup tags.
func CleanNoteContent(v *string) *string {
	if v == nil {
		return nil
	}
	s := htmlTag.ReplaceAllString(html.UnescapeString(*v), "")
	return &s
}

// StandardizeVendor returns the recorded vendor when it appears in the device
// name. Otherwise the vendor is inferred from the name: Tenovi if mentioned,
// else Omron.
func StandardizeVendor(vendor, deviceName string) string {
	if vendor != "" && strings.Contains(deviceName, vendor) {
		return vendor
	}
	if strings.Contains(deviceName, "Tenovi") {
		return "Tenovi"
	}
	return "Omron"
}

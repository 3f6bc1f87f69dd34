// Package constraint drops rows whose values would violate destination
// column-length limits. Rows are dropped whole, never truncated.
package constraint

import (
	"unicode/utf8"

	"github.com/gyeh/clinicload/internal/model"
)

// Rule limits the length of one nullable field. A nil value always passes.
type Rule[T any] struct {
	Name  string
	Max   int
	Value func(*T) *string
}

// Ok reports whether row satisfies the rule.
func (r Rule[T]) Ok(row *T) bool {
	v := r.Value(row)
	return v == nil || utf8.RuneCountInString(*v) <= r.Max
}

// Sink receives the number of rows each rule dropped.
type Sink interface {
	Dropped(table, rule string, n int)
}

// Drops counts dropped rows per rule. A row is charged to the first rule it fails.
type Drops map[string]int

// Total sums drops across rules.
func (d Drops) Total() int {
	n := 0
	for _, c := range d {
		n += c
	}
	return n
}

// Filter keeps the rows that satisfy every rule, preserving order.
func Filter[T any](rows []T, rules []Rule[T]) ([]T, Drops) {
	drops := Drops{}
	out := make([]T, 0, len(rows))
	for i := range rows {
		if failed, ok := firstFailure(&rows[i], rules); ok {
			drops[failed]++
			continue
		}
		out = append(out, rows[i])
	}
	return out, drops
}

// FilterTo is Filter that also reports drops to sink, if set.
func FilterTo[T any](rows []T, rules []Rule[T], table string, sink Sink) ([]T, Drops) {
	out, drops := Filter(rows, rules)
	if sink != nil {
		for _, r := range rules {
			if n := drops[r.Name]; n > 0 {
				sink.Dropped(table, r.Name, n)
			}
		}
	}
	return out, drops
}

func firstFailure[T any](row *T, rules []Rule[T]) (string, bool) {
	for _, r := range rules {
		if !r.Ok(row) {
			return r.Name, true
		}
	}
	return "", false
}

// PatientRules are the length limits of the patient tables.
var PatientRules = []Rule[model.PatientRecord]{
	{"phone_number", 11, func(r *model.PatientRecord) *string { return r.PhoneNumber }},
	{"social_security", 9, func(r *model.PatientRecord) *string { return r.SocialSecurity }},
	{"temp_state", 2, func(r *model.PatientRecord) *string { return r.TempState }},
	{"zipcode", 5, func(r *model.PatientRecord) *string { return r.Zipcode }},
	{"emergency_phone_number", 11, func(r *model.PatientRecord) *string { return r.EmergencyPhoneNumber }},
	{"emergency_phone_number2", 11, func(r *model.PatientRecord) *string { return r.EmergencyPhoneNumber2 }},
	{"medicare_beneficiary_id", 11, func(r *model.PatientRecord) *string { return r.MedicareBeneficiaryID }},
	{"primary_payer_id", 30, func(r *model.PatientRecord) *string { return r.PrimaryPayerID }},
	{"secondary_payer_id", 30, func(r *model.PatientRecord) *string { return r.SecondaryPayerID }},
}

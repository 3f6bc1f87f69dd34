package normalize

import "strings"

// UnknownRace is assigned when a race value matches no category.
const UnknownRace = "Unknown"

// MedicarePartB is the payer assumed when only a beneficiary id is on file.
const MedicarePartB = "Medicare Part B"

var legacyStatuses = map[string]string{
	"DO NOT CALL": "Do Not Call",
	"In-Active":   "Inactive",
	"On-Board":    "Onboard",
}

// StandardizeState maps a state name found anywhere in the value to its USPS
// code. Unmatched values are upper-cased and passed through.
func (v *Vocabulary) StandardizeState(in *string) *string {
	if in == nil {
		return nil
	}
	s := TitleCase(strings.TrimSpace(*in))
	if s == "" {
		return nil
	}
	if code, ok := v.States.Search(s); ok {
		s = code
	}
	s = strings.ToUpper(s)
	return &s
}

// StandardizeInsuranceName maps a payer name onto a canonical payer using
// keyword groups. Unmatched names are returned title-cased.
func (v *Vocabulary) StandardizeInsuranceName(in *string) *string {
	if in == nil {
		return nil
	}
	s := TitleCase(strings.TrimSpace(*in))
	if s == "" {
		return nil
	}
	if name, ok := v.Insurance.Search(s); ok {
		return &name
	}
	return &s
}

// StandardizeRace maps a race description to a category, or UnknownRace.
func (v *Vocabulary) StandardizeRace(in *string) *string {
	if in == nil {
		return nil
	}
	s := TitleCase(strings.TrimSpace(*in))
	if s == "" {
		return nil
	}
	if race, ok := v.Race.Search(s); ok {
		return &race
	}
	race := UnknownRace
	return &race
}

// StandardizeRelationship infers an emergency contact's relationship from
// words in the contact name. Returns nil when nothing matches.
func (v *Vocabulary) StandardizeRelationship(in *string) *string {
	if in == nil {
		return nil
	}
	if rel, ok := v.Relationship.Search(TitleCase(strings.TrimSpace(*in))); ok {
		return &rel
	}
	return nil
}

// StandardizeStatus renames legacy patient status labels.
func StandardizeStatus(in *string) *string {
	if in == nil {
		return nil
	}
	s := strings.TrimSpace(*in)
	if s == "" {
		return nil
	}
	if mapped, ok := legacyStatuses[s]; ok {
		s = mapped
	}
	return &s
}

// FillPrimaryPayer applies the Medicare fallback: with no primary payer name
// or id but a beneficiary id on file, the payer becomes Medicare Part B; a
// Medicare Part B payer without an id takes the beneficiary id.
func FillPrimaryPayer(name, id, mbi *string) (*string, *string) {
	if name == nil && id == nil && mbi != nil {
		n := MedicarePartB
		name = &n
	}
	if name != nil && *name == MedicarePartB && id == nil {
		id = mbi
	}
	return name, id
}

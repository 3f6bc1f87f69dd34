package normalize

// Vocabulary holds the ordered lookup tables used by the keyword standardizers.
type Vocabulary struct {
	States       *KeywordTable
	Insurance    *GroupTable
	Race         *GroupTable
	Relationship *KeywordTable
}

// NewVocabulary compiles a Vocabulary, substituting the built-in list for
// any argument that is empty.
func NewVocabulary(states []Keyword, insurance, race []KeywordGroups, relationship []Keyword) *Vocabulary {
	if len(states) == 0 {
		states = DefaultStates
	}
	if len(insurance) == 0 {
		insurance = DefaultInsurance
	}
	if len(race) == 0 {
		race = DefaultRace
	}
	if len(relationship) == 0 {
		relationship = DefaultRelationships
	}
	return &Vocabulary{
		States:       NewKeywordTable(states),
		Insurance:    NewGroupTable(insurance),
		Race:         NewGroupTable(race),
		Relationship: NewKeywordTable(relationship),
	}
}

// DefaultVocabulary returns the built-in tables.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(nil, nil, nil, nil)
}

// DefaultStates maps full state names to USPS codes. Names that contain
// another state's name (West Virginia) come first.
var DefaultStates = []Keyword{
	{"WV", "west virginia"},
	{"AL", "alabama"},
	{"AK", "alaska"},
	{"AZ", "arizona"},
	{"AR", "arkansas"},
	{"CA", "california"},
	{"CO", "colorado"},
	{"CT", "connecticut"},
	{"DE", "delaware"},
	{"DC", "district of columbia"},
	{"FL", "florida"},
	{"GA", "georgia"},
	{"HI", "hawaii"},
	{"ID", "idaho"},
	{"IL", "illinois"},
	{"IN", "indiana"},
	{"IA", "iowa"},
	{"KS", "kansas"},
	{"KY", "kentucky"},
	{"LA", "louisiana"},
	{"ME", "maine"},
	{"MD", "maryland"},
	{"MA", "massachusetts"},
	{"MI", "michigan"},
	{"MN", "minnesota"},
	{"MS", "mississippi"},
	{"MO", "missouri"},
	{"MT", "montana"},
	{"NE", "nebraska"},
	{"NV", "nevada"},
	{"NH", "new hampshire"},
	{"NJ", "new jersey"},
	{"NM", "new mexico"},
	{"NY", "new york"},
	{"NC", "north carolina"},
	{"ND", "north dakota"},
	{"OH", "ohio"},
	{"OK", "oklahoma"},
	{"OR", "oregon"},
	{"PA", "pennsylvania"},
	{"PR", "puerto rico"},
	{"RI", "rhode island"},
	{"SC", "south carolina"},
	{"SD", "south dakota"},
	{"TN", "tennessee"},
	{"TX", "texas"},
	{"UT", "utah"},
	{"VT", "vermont"},
	{"VA", "virginia"},
	{"WA", "washington"},
	{"WI", "wisconsin"},
	{"WY", "wyoming"},
}

// DefaultInsurance lists payer names, most specific first.
var DefaultInsurance = []KeywordGroups{
	{"Medicare Part B", [][]string{{"medicare", "part", "b"}, {"medicare", "b"}}},
	{"UnitedHealthcare", [][]string{{"united", "healthcare"}, {"unitedhealthcare"}, {"uhc"}, {"aarp"}}},
	{"Humana", [][]string{{"humana"}}},
	{"Aetna", [][]string{{"aetna"}}},
	{"Blue Cross Blue Shield", [][]string{{"blue", "cross"}, {"blue", "shield"}, {"bcbs"}}},
	{"Anthem", [][]string{{"anthem"}}},
	{"Cigna", [][]string{{"cigna"}}},
	{"Wellcare", [][]string{{"wellcare"}, {"well", "care"}}},
	{"Tricare", [][]string{{"tricare"}}},
	{"Medicaid", [][]string{{"medicaid"}}},
	{"Medicare", [][]string{{"medicare"}}},
}

// DefaultRace lists race categories. "African American" is claimed before the
// American Indian group so the shared word cannot mislabel it.
var DefaultRace = []KeywordGroups{
	{"Black or African American", [][]string{{"black"}, {"african", "american"}, {"african"}}},
	{"American Indian or Alaska Native", [][]string{{"american", "indian"}, {"alaska", "native"}, {"native", "american"}}},
	{"Native Hawaiian or Other Pacific Islander", [][]string{{"hawaiian"}, {"pacific", "islander"}}},
	{"Asian", [][]string{{"asian"}}},
	{"Hispanic or Latino", [][]string{{"hispanic"}, {"latino"}, {"latina"}}},
	{"White", [][]string{{"white"}, {"caucasian"}}},
	{"Other", [][]string{{"other"}, {"multiracial"}, {"two", "races"}}},
}

// DefaultRelationships maps relationship words found in a contact name to a label.
var DefaultRelationships = []Keyword{
	{"Spouse", "spouse"},
	{"Spouse", "wife"},
	{"Spouse", "husband"},
	{"Partner", "partner"},
	{"Child", "daughter"},
	{"Child", "son"},
	{"Child", "child"},
	{"Parent", "mother"},
	{"Parent", "father"},
	{"Parent", "mom"},
	{"Parent", "dad"},
	{"Sibling", "sister"},
	{"Sibling", "brother"},
	{"Grandchild", "granddaughter"},
	{"Grandchild", "grandson"},
	{"Relative", "niece"},
	{"Relative", "nephew"},
	{"Relative", "aunt"},
	{"Relative", "uncle"},
	{"Relative", "cousin"},
	{"Caregiver", "caregiver"},
	{"Friend", "friend"},
	{"Neighbor", "neighbor"},
}

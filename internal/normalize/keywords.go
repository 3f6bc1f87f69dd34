package normalize

import (
	"regexp"
	"strings"
)

// Keyword maps a single whole-word keyword to a canonical label.
type Keyword struct {
	Label   string `yaml:"label"`
	Keyword string `yaml:"keyword"`
}

// KeywordGroups maps a canonical label to one or more keyword groups.
// A group matches only when every keyword in it is present as a whole word.
type KeywordGroups struct {
	Label  string     `yaml:"label"`
	Groups [][]string `yaml:"groups"`
}

// KeywordTable is an ordered, precompiled single-keyword lookup. First match wins.
type KeywordTable struct {
	labels   []string
	patterns []*regexp.Regexp
}

// GroupTable is an ordered, precompiled keyword-group lookup. First match wins.
type GroupTable struct {
	labels []string
	groups [][]*regexp.Regexp
}

func wordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(keyword)) + `\b`)
}

// NewKeywordTable compiles entries in the order given.
func NewKeywordTable(entries []Keyword) *KeywordTable {
	t := &KeywordTable{}
	for _, e := range entries {
		t.labels = append(t.labels, e.Label)
		t.patterns = append(t.patterns, wordPattern(e.Keyword))
	}
	return t
}

// NewGroupTable compiles entries in the order given. Each group of each
// entry is tried in order before moving on to the next entry.
func NewGroupTable(entries []KeywordGroups) *GroupTable {
	t := &GroupTable{}
	for _, e := range entries {
		for _, g := range e.Groups {
			if len(g) == 0 {
				continue
			}
			compiled := make([]*regexp.Regexp, len(g))
			for i, kw := range g {
				compiled[i] = wordPattern(kw)
			}
			t.labels = append(t.labels, e.Label)
			t.groups = append(t.groups, compiled)
		}
	}
	return t
}

// Search returns the label of the first keyword found in value.
func (t *KeywordTable) Search(value string) (string, bool) {
	lower := strings.ToLower(value)
	for i, p := range t.patterns {
		if p.MatchString(lower) {
			return t.labels[i], true
		}
	}
	return "", false
}

// Len reports the number of entries.
func (t *KeywordTable) Len() int { return len(t.labels) }

// Search returns the label of the first group whose keywords are all found in value.
func (t *GroupTable) Search(value string) (string, bool) {
	lower := strings.ToLower(value)
	for i, group := range t.groups {
		if allMatch(group, lower) {
			return t.labels[i], true
		}
	}
	return "", false
}

// Len reports the number of compiled groups.
func (t *GroupTable) Len() int { return len(t.groups) }

func allMatch(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if !p.MatchString(s) {
			return false
		}
	}
	return true
}

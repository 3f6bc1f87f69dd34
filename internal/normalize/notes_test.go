package normalize

import "testing"

func TestStandardizeNoteType(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Initial Evaluation with APRN", "Initial Evaluation"},
		{"Follow Up, Phone", "Follow Up"},
		{"Monthly Check-in", "Monthly Check-in"},
		{", x", "<nil>"},
	}
	for _, tt := range tests {
		if got := StandardizeNoteType(ptr(tt.in)); deref(got) != tt.want {
			t.Errorf("StandardizeNoteType(%q) = %q, want %q", tt.in, deref(got), tt.want)
		}
	}
}

func TestCleanNoteContent(t *testing.T) {
	got := CleanNoteContent(ptr("<div><p>BP &gt; 140 &amp; rising</p></div>"))
	if deref(got) != "BP > 140 & rising" {
		t.Errorf("CleanNoteContent = %q", deref(got))
	}
}

func TestStandardizeVendor(t *testing.T) {
	tests := []struct {
		vendor, device, want string
	}{
		{"Omron", "Omron BP7350", "Omron"},
		{"", "Tenovi Glucometer", "Tenovi"},
		{"Acme", "Generic cuff", "Omron"},
	}
	for _, tt := range tests {
		if got := StandardizeVendor(tt.vendor, tt.device); got != tt.want {
			t.Errorf("StandardizeVendor(%q, %q) = %q, want %q", tt.vendor, tt.device, got, tt.want)
		}
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{" 42.0 ", int64(42)},
		{"4.5", nil},
		{"abc", nil},
	}
	for _, tt := range tests {
		got := ParseID(ptr(tt.in))
		var v any
		if got != nil {
			v = *got
		}
		if v != tt.want {
			t.Errorf("ParseID(%q) = %v, want %v", tt.in, v, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-01-15", "01/15/2024", "1/15/2024", "Jan 15, 2024"} {
		d := ParseDate(in)
		if d == nil || d.Year() != 2024 || d.Month() != 1 || d.Day() != 15 {
			t.Errorf("ParseDate(%q) = %v", in, d)
		}
	}
	if ParseDate("someday") != nil {
		t.Error("ParseDate(someday) should be nil")
	}
}

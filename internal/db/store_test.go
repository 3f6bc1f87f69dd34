package db

import (
	"testing"

	"github.com/gyeh/clinicload/internal/model"
)

func TestCallStatement(t *testing.T) {
	tests := []struct {
		proc  string
		nargs int
		want  string
	}{
		{"reset_all_billing_tables", 0, `CALL "reset_all_billing_tables"()`},
		{"batch_medcode_99457", 1, `CALL "batch_medcode_99457"($1)`},
		{"p", 3, `CALL "p"($1, $2, $3)`},
	}
	for _, tt := range tests {
		if got := CallStatement(tt.proc, tt.nargs); got != tt.want {
			t.Errorf("CallStatement(%q, %d) = %s, want %s", tt.proc, tt.nargs, got, tt.want)
		}
	}
}

func TestRowSource(t *testing.T) {
	name := "Ada"
	src := NewRowSource(Rows([]model.User{
		{FirstName: &name, MSEntraID: "u1"},
		{MSEntraID: "u2"},
	}))

	var ids []any
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			t.Fatal(err)
		}
		if len(vals) != len(model.UserTable.Columns) {
			t.Fatalf("got %d values for %d columns", len(vals), len(model.UserTable.Columns))
		}
		ids = append(ids, vals[4])
	}
	if len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
		t.Errorf("ids = %v", ids)
	}
	if src.Err() != nil {
		t.Errorf("Err = %v", src.Err())
	}
	if src.Next() {
		t.Error("Next after the last row should stay false")
	}
}

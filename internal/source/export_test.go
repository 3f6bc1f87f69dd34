package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// exportCSV builds an export with the required header and one line per row,
// each row given as column -> value.
func exportCSV(rows ...map[string]string) string {
	var b strings.Builder
	b.WriteString("\ufeff" + strings.Join(ExportColumns, ",") + "\n")
	for _, r := range rows {
		vals := make([]string, len(ExportColumns))
		for i, col := range ExportColumns {
			vals[i] = r[col]
		}
		b.WriteString(strings.Join(vals, ",") + "\n")
	}
	return b.String()
}

func TestParsePatientExport(t *testing.T) {
	data := exportCSV(
		map[string]string{colID: "101", colFirstName: " jane ", colDOB: "01/15/1950", colDXCode: `"E11.9, I10"`, colMiddleName: "nan"},
		map[string]string{colID: "102.0", colLastName: "Doe"},
		map[string]string{colID: "", colFirstName: "no id"},
		map[string]string{colID: "abc"},
	)
	rows, skipped, err := ParsePatientExport(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParsePatientExport: %v", err)
	}
	if len(rows) != 2 || skipped != 2 {
		t.Fatalf("got %d rows, %d skipped; want 2, 2", len(rows), skipped)
	}

	r := rows[0]
	if r.SharePointID != 101 {
		t.Errorf("id = %d", r.SharePointID)
	}
	if r.FirstName == nil || *r.FirstName != "jane" {
		t.Errorf("first name = %v", r.FirstName)
	}
	if r.MiddleName != nil {
		t.Errorf("nan cell should be nil, got %q", *r.MiddleName)
	}
	if r.LastName != nil {
		t.Error("blank cell should be nil")
	}
	if r.DOB == nil || r.DOB.Year() != 1950 {
		t.Errorf("dob = %v", r.DOB)
	}
	if r.DXCode == nil || *r.DXCode != "E11.9, I10" {
		t.Errorf("dx = %v", r.DXCode)
	}
	if rows[1].SharePointID != 102 {
		t.Errorf("float id should coerce, got %d", rows[1].SharePointID)
	}
}

func TestParsePatientExportMissingColumns(t *testing.T) {
	_, _, err := ParsePatientExport(strings.NewReader("ID,First Name\n1,Ann\n"))
	if err == nil {
		t.Fatal("expected an error for missing columns")
	}
	if !strings.Contains(err.Error(), colHealthCoach) || !strings.Contains(err.Error(), colDXCode) {
		t.Errorf("error should list every missing column: %v", err)
	}
}

func TestParsePatientExportEmpty(t *testing.T) {
	if _, _, err := ParsePatientExport(strings.NewReader("")); err == nil {
		t.Fatal("expected an error for an empty export")
	}
}

func TestReadPatientExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(exportCSV(map[string]string{colID: "7"})), 0o644); err != nil {
		t.Fatal(err)
	}
	exp, err := ReadPatientExport(path)
	if err != nil {
		t.Fatalf("ReadPatientExport: %v", err)
	}
	if len(exp.Rows) != 1 || exp.Path != path {
		t.Errorf("export = %+v", exp)
	}
	if len(exp.SHA256) != 64 {
		t.Errorf("sha256 = %q", exp.SHA256)
	}
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	os.WriteFile(path, []byte("hello"), 0o644)
	got, err := FileHash(path)
	if err != nil {
		t.Fatal(err)
	}
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("FileHash = %s, want %s", got, want)
	}
}

package source

import (
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/normalize"
)

// Export column headers as written by the SharePoint list export.
const (
	colID                = "ID"
	colFirstName         = "First Name"
	colLastName          = "Last Name"
	colMiddleName        = "Middle Name"
	colNickname          = "Nickname"
	colSuffix            = "Suffix"
	colDOB               = "DOB"
	colGender            = "Gender"
	colEmail             = "Email"
	colPhone             = "Phone Number"
	colSSN               = "Social Security"
	colRace              = "Race"
	colMaritalStatus     = "Relationship_Status"
	colPreferredLanguage = "Preferred_Language"
	colWeight            = "Weight"
	colHeight            = "Height"
	colMailingAddress    = "Mailing Address"
	colCity              = "City"
	colState             = "State"
	colZip               = "Zip code"
	colEmergencyName     = "EmergencyName"
	colEmergencyNumber   = "EmergencyNumber"
	colEmergencyName2    = "EmergencyName2"
	colEmergencyNumber2  = "EmergencyNumber2"
	colMedicareID        = "Medicare ID number"
	colDXCode            = "DX_Code"
	colInsuranceID       = "Insurance ID:"
	colInsuranceName     = "Insurance Name:"
	colInsuranceID2      = "InsuranceID2"
	colInsuranceName2    = "InsuranceName2"
	colOnboardDate       = "On-board Date"
	colMemberStatus      = "Member_Status"
	colHealthCoach       = "Health Coach"
)

// ExportColumns lists every column the patient export must carry.
var ExportColumns = []string{
	colID, colFirstName, colLastName, colMiddleName, colNickname, colSuffix, colDOB,
	colGender, colEmail, colPhone, colSSN, colRace, colMaritalStatus, colPreferredLanguage,
	colWeight, colHeight, colMailingAddress, colCity, colState, colZip,
	colEmergencyName, colEmergencyNumber, colEmergencyName2, colEmergencyNumber2,
	colMedicareID, colDXCode, colInsuranceID, colInsuranceName, colInsuranceID2,
	colInsuranceName2, colOnboardDate, colMemberStatus, colHealthCoach,
}

// PatientExport is a parsed patient export file.
type PatientExport struct {
	Path   string
	SHA256 string
	Rows   []model.PatientExportRow
	// Skipped counts rows without a usable ID.
	Skipped int
}

// ReadPatientExport opens, hashes and parses the CSV export at path.
func ReadPatientExport(path string) (*PatientExport, error) {
	sha, err := FileHash(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open patient export: %w", err)
	}
	defer f.Close()

	rows, skipped, err := ParsePatientExport(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &PatientExport{Path: path, SHA256: sha, Rows: rows, Skipped: skipped}, nil
}

// ParsePatientExport reads the export from r. It fails when a required
// column is missing; rows whose ID is not an integer are skipped and counted.
func ParsePatientExport(r io.Reader) ([]model.PatientExportRow, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, fmt.Errorf("empty export")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx, err := ValidateHeader(header)
	if err != nil {
		return nil, 0, err
	}

	var rows []model.PatientExportRow
	skipped := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) *string { return cell(rec, idx[col]) }

		id := normalize.ParseID(get(colID))
		if id == nil {
			skipped++
			continue
		}
		rows = append(rows, model.PatientExportRow{
			SharePointID:      *id,
			FirstName:         get(colFirstName),
			LastName:          get(colLastName),
			MiddleName:        get(colMiddleName),
			Nickname:          get(colNickname),
			Suffix:            get(colSuffix),
			DOB:               date(get(colDOB)),
			Gender:            get(colGender),
			Email:             get(colEmail),
			Phone:             get(colPhone),
			SSN:               get(colSSN),
			Race:              get(colRace),
			MaritalStatus:     get(colMaritalStatus),
			PreferredLanguage: get(colPreferredLanguage),
			Weight:            get(colWeight),
			Height:            get(colHeight),
			MailingAddress:    get(colMailingAddress),
			City:              get(colCity),
			State:             get(colState),
			Zip:               get(colZip),
			EmergencyName:     get(colEmergencyName),
			EmergencyNumber:   get(colEmergencyNumber),
			EmergencyName2:    get(colEmergencyName2),
			EmergencyNumber2:  get(colEmergencyNumber2),
			MedicareID:        get(colMedicareID),
			DXCode:            get(colDXCode),
			InsuranceID:       get(colInsuranceID),
			InsuranceName:     get(colInsuranceName),
			InsuranceID2:      get(colInsuranceID2),
			InsuranceName2:    get(colInsuranceName2),
			OnboardDate:       date(get(colOnboardDate)),
			MemberStatus:      get(colMemberStatus),
			HealthCoach:       get(colHealthCoach),
		})
	}
	return rows, skipped, nil
}

// ValidateHeader checks that every export column is present and returns
// each column's position. Header names are matched after trimming.
func ValidateHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		idx[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range ExportColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// cell returns the trimmed value at i. Blank cells and the literal "nan"
// left behind by spreadsheet round-trips are nil.
func cell(rec []string, i int) *string {
	if i >= len(rec) {
		return nil
	}
	s := strings.TrimSpace(rec[i])
	if s == "" || strings.EqualFold(s, "nan") {
		return nil
	}
	return &s
}

func date(v *string) *time.Time {
	if v == nil {
		return nil
	}
	return normalize.ParseDate(*v)
}

// FileHash computes the hex-encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

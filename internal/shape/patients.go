package shape

import (
	"time"

	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/normalize"
)

// SystemUser marks rows written by the import rather than by clinic staff.
const SystemUser = "ITHelp"

// NormalizePatient applies every field standardizer to one export row.
func NormalizePatient(row *model.PatientExportRow, vocab *normalize.Vocabulary) model.PatientRecord {
	first := normalize.StandardizeName(row.FirstName, normalize.PersonName)
	last := normalize.StandardizeName(row.LastName, normalize.PersonName)

	insuranceName := vocab.StandardizeInsuranceName(row.InsuranceName)
	insuranceID := normalize.StandardizeInsuranceID(row.InsuranceID)
	mbi := normalize.StandardizeMBI(row.MedicareID)
	insuranceName, insuranceID = normalize.FillPrimaryPayer(insuranceName, insuranceID, mbi)

	return model.PatientRecord{
		SharePointID: row.SharePointID,

		FirstName:         first,
		LastName:          last,
		MiddleName:        normalize.StandardizeName(row.MiddleName, normalize.MiddleName),
		NameSuffix:        normalize.TrimTitle(row.Suffix),
		FullName:          normalize.FullName(first, last),
		NickName:          normalize.TrimTitle(row.Nickname),
		DateOfBirth:       row.DOB,
		Sex:               normalize.StandardizeSex(row.Gender),
		Email:             normalize.StandardizeEmail(row.Email),
		PhoneNumber:       normalize.StripDigits(row.Phone),
		SocialSecurity:    normalize.StripDigits(row.SSN),
		TempRace:          vocab.StandardizeRace(row.Race),
		TempMaritalStatus: row.MaritalStatus,
		PreferredLanguage: row.PreferredLanguage,
		WeightLbs:         normalize.StandardizeWeight(row.Weight),
		HeightIn:          normalize.StandardizeHeight(row.Height),

		StreetAddress: normalize.StandardizeName(row.MailingAddress, normalize.StreetAddress),
		City:          normalize.StandardizeName(row.City, normalize.CityName),
		TempState:     vocab.StandardizeState(row.State),
		Zipcode:       normalize.StandardizeZip(row.Zip),

		// Relationship words ("Wife", "Son") are read from the raw name.
		EmergencyRelationship:  vocab.StandardizeRelationship(row.EmergencyName),
		EmergencyRelationship2: vocab.StandardizeRelationship(row.EmergencyName2),
		EmergencyFullName:      normalize.StandardizeName(row.EmergencyName, normalize.ContactName),
		EmergencyPhoneNumber:   normalize.StripDigits(row.EmergencyNumber),
		EmergencyFullName2:     normalize.StandardizeName(row.EmergencyName2, normalize.ContactName),
		EmergencyPhoneNumber2:  normalize.StripDigits(row.EmergencyNumber2),

		MedicareBeneficiaryID: mbi,
		PrimaryPayerID:        insuranceID,
		PrimaryPayerName:      insuranceName,
		SecondaryPayerID:      normalize.StandardizeInsuranceID(row.InsuranceID2),
		SecondaryPayerName:    vocab.StandardizeInsuranceName(row.InsuranceName2),

		EvaluationDatetime: row.OnboardDate,
		TempDXCode:         normalize.StandardizeDXCode(row.DXCode),
		TempStatusType:     normalize.StandardizeStatus(row.MemberStatus),
		TempUser:           row.HealthCoach,
	}
}

// NormalizePatients normalizes a whole export.
func NormalizePatients(rows []model.PatientExportRow, vocab *normalize.Vocabulary) []model.PatientRecord {
	out := make([]model.PatientRecord, len(rows))
	for i := range rows {
		out[i] = NormalizePatient(&rows[i], vocab)
	}
	return out
}

// PatientOf projects the core patient row.
func PatientOf(r *model.PatientRecord) model.Patient {
	return model.Patient{
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		MiddleName:        r.MiddleName,
		NameSuffix:        r.NameSuffix,
		FullName:          r.FullName,
		NickName:          r.NickName,
		DateOfBirth:       r.DateOfBirth,
		Sex:               r.Sex,
		Email:             r.Email,
		PhoneNumber:       r.PhoneNumber,
		SocialSecurity:    r.SocialSecurity,
		TempRace:          r.TempRace,
		TempMaritalStatus: r.TempMaritalStatus,
		PreferredLanguage: r.PreferredLanguage,
		WeightLbs:         r.WeightLbs,
		HeightIn:          r.HeightIn,
		SharePointID:      r.SharePointID,
		TempUser:          r.TempUser,
	}
}

func AddressOf(r *model.PatientRecord) model.PatientAddress {
	return model.PatientAddress{
		SharePointID:  r.SharePointID,
		StreetAddress: r.StreetAddress,
		City:          r.City,
		TempState:     r.TempState,
		Zipcode:       r.Zipcode,
	}
}

func InsuranceOf(r *model.PatientRecord) model.PatientInsurance {
	return model.PatientInsurance{
		SharePointID:          r.SharePointID,
		MedicareBeneficiaryID: r.MedicareBeneficiaryID,
		PrimaryPayerID:        r.PrimaryPayerID,
		PrimaryPayerName:      r.PrimaryPayerName,
		SecondaryPayerID:      r.SecondaryPayerID,
		SecondaryPayerName:    r.SecondaryPayerName,
	}
}

// MedicalNecessityOf explodes the comma-joined diagnosis codes into one row
// per code. A record without codes yields no rows.
func MedicalNecessityOf(r *model.PatientRecord) []model.MedicalNecessity {
	codes := normalize.SplitDXCodes(r.TempDXCode)
	out := make([]model.MedicalNecessity, 0, len(codes))
	for _, code := range codes {
		out = append(out, model.MedicalNecessity{
			SharePointID:       r.SharePointID,
			EvaluationDatetime: r.EvaluationDatetime,
			TempDXCode:         code,
		})
	}
	return out
}

// StatusOf stamps the patient's current status with now and the system user.
func StatusOf(r *model.PatientRecord, now time.Time) model.PatientStatus {
	return model.PatientStatus{
		SharePointID:   r.SharePointID,
		TempStatusType: r.TempStatusType,
		ModifiedDate:   now,
		TempUser:       SystemUser,
	}
}

// EmergencyContactsOf returns the primary then secondary contact, skipping
// any without both a name and a phone number.
func EmergencyContactsOf(r *model.PatientRecord) []model.EmergencyContact {
	var out []model.EmergencyContact
	pairs := []struct {
		name, phone, rel *string
	}{
		{r.EmergencyFullName, r.EmergencyPhoneNumber, r.EmergencyRelationship},
		{r.EmergencyFullName2, r.EmergencyPhoneNumber2, r.EmergencyRelationship2},
	}
	for _, p := range pairs {
		if p.name == nil || p.phone == nil {
			continue
		}
		out = append(out, model.EmergencyContact{
			SharePointID: r.SharePointID,
			FullName:     *p.name,
			PhoneNumber:  *p.phone,
			Relationship: p.rel,
		})
	}
	return out
}

// PatientTables is a patient export split into its destination tables.
type PatientTables struct {
	Patients          []model.Patient
	Addresses         []model.PatientAddress
	Insurance         []model.PatientInsurance
	MedicalNecessity  []model.MedicalNecessity
	Statuses          []model.PatientStatus
	EmergencyContacts []model.EmergencyContact
}

// SplitPatients shapes every record into its sub-table rows.
func SplitPatients(records []model.PatientRecord, now time.Time) PatientTables {
	t := PatientTables{
		Patients:  make([]model.Patient, 0, len(records)),
		Addresses: make([]model.PatientAddress, 0, len(records)),
		Insurance: make([]model.PatientInsurance, 0, len(records)),
		Statuses:  make([]model.PatientStatus, 0, len(records)),
	}
	for i := range records {
		r := &records[i]
		t.Patients = append(t.Patients, PatientOf(r))
		t.Addresses = append(t.Addresses, AddressOf(r))
		t.Insurance = append(t.Insurance, InsuranceOf(r))
		t.MedicalNecessity = append(t.MedicalNecessity, MedicalNecessityOf(r)...)
		t.Statuses = append(t.Statuses, StatusOf(r, now))
		t.EmergencyContacts = append(t.EmergencyContacts, EmergencyContactsOf(r)...)
	}
	return t
}

// Counts reports rows per destination table.
func (t PatientTables) Counts() map[string]int {
	return map[string]int{
		model.PatientTable.Name:          len(t.Patients),
		model.AddressTable.Name:          len(t.Addresses),
		model.InsuranceTable.Name:        len(t.Insurance),
		model.MedicalNecessityTable.Name: len(t.MedicalNecessity),
		model.StatusTable.Name:           len(t.Statuses),
		model.EmergencyContactTable.Name: len(t.EmergencyContacts),
	}
}

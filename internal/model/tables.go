package model

import "time"

// Row is a record that can be COPY-loaded into a destination table.
type Row interface {
	CopyValues() []any
}

// Table names a destination table and its COPY column order.
type Table struct {
	Name    string
	Columns []string
}

// Destination tables in load order.
var (
	UserTable = Table{"user", []string{
		"first_name", "last_name", "display_name", "email", "ms_entra_id",
	}}
	PatientTable = Table{"patient", []string{
		"first_name", "last_name", "middle_name", "name_suffix", "full_name", "nick_name",
		"date_of_birth", "sex", "email", "phone_number", "social_security", "temp_race",
		"temp_marital_status", "preferred_language", "weight_lbs", "height_in",
		"sharepoint_id", "temp_user",
	}}
	AddressTable = Table{"patient_address", []string{
		"patient_id", "street_address", "city", "temp_state", "zipcode",
	}}
	InsuranceTable = Table{"patient_insurance", []string{
		"patient_id", "medicare_beneficiary_id", "primary_payer_id", "primary_payer_name",
		"secondary_payer_id", "secondary_payer_name",
	}}
	MedicalNecessityTable = Table{"medical_necessity", []string{
		"patient_id", "evaluation_datetime", "temp_dx_code",
	}}
	StatusTable = Table{"patient_status", []string{
		"patient_id", "temp_status_type", "modified_date", "temp_user",
	}}
	EmergencyContactTable = Table{"emergency_contact", []string{
		"patient_id", "full_name", "phone_number", "relationship",
	}}
	DeviceTable = Table{"device", []string{
		"patient_id", "vendor_id", "hardware_uuid", "name",
	}}
	GlucoseTable = Table{"glucose_reading", []string{
		"patient_id", "device_id", "temp_device", "recorded_datetime", "received_datetime",
		"glucose_reading", "is_manual",
	}}
	BloodPressureTable = Table{"blood_pressure_reading", []string{
		"patient_id", "device_id", "temp_device", "recorded_datetime", "received_datetime",
		"systolic_reading", "diastolic_reading", "is_manual",
	}}
	NoteTable = Table{"patient_note", []string{
		"patient_id", "note_content", "note_datetime", "temp_user", "temp_note_type",
		"call_time_seconds", "is_manual", "start_call_datetime", "end_call_datetime",
	}}
)

// User is a clinic staff member from the directory.
type User struct {
	FirstName   *string `parquet:"first_name,optional"`
	LastName    *string `parquet:"last_name,optional"`
	DisplayName *string `parquet:"display_name,optional"`
	Email       *string `parquet:"email,optional"`
	MSEntraID   string  `parquet:"ms_entra_id"`
}

func (r User) CopyValues() []any {
	return []any{r.FirstName, r.LastName, r.DisplayName, r.Email, r.MSEntraID}
}

// Patient is the core patient row. It is inserted with its SharePoint id,
// which the database then maps to a surrogate patient_id.
type Patient struct {
	FirstName         *string    `parquet:"first_name,optional"`
	LastName          *string    `parquet:"last_name,optional"`
	MiddleName        *string    `parquet:"middle_name,optional"`
	NameSuffix        *string    `parquet:"name_suffix,optional"`
	FullName          *string    `parquet:"full_name,optional"`
	NickName          *string    `parquet:"nick_name,optional"`
	DateOfBirth       *time.Time `parquet:"date_of_birth,optional"`
	Sex               *string    `parquet:"sex,optional"`
	Email             *string    `parquet:"email,optional"`
	PhoneNumber       *string    `parquet:"phone_number,optional"`
	SocialSecurity    *string    `parquet:"social_security,optional"`
	TempRace          *string    `parquet:"temp_race,optional"`
	TempMaritalStatus *string    `parquet:"temp_marital_status,optional"`
	PreferredLanguage *string    `parquet:"preferred_language,optional"`
	WeightLbs         *int       `parquet:"weight_lbs,optional"`
	HeightIn          *int       `parquet:"height_in,optional"`
	SharePointID      int64      `parquet:"sharepoint_id"`
	TempUser          *string    `parquet:"temp_user,optional"`
}

func (r Patient) CopyValues() []any {
	return []any{
		r.FirstName, r.LastName, r.MiddleName, r.NameSuffix, r.FullName, r.NickName,
		r.DateOfBirth, r.Sex, r.Email, r.PhoneNumber, r.SocialSecurity, r.TempRace,
		r.TempMaritalStatus, r.PreferredLanguage, r.WeightLbs, r.HeightIn,
		r.SharePointID, r.TempUser,
	}
}

// PatientAddress is keyed by SharePoint id until resolved to PatientID.
// The SharePoint id is never written.
type PatientAddress struct {
	SharePointID  int64   `parquet:"sharepoint_id"`
	PatientID     int64   `parquet:"patient_id"`
	StreetAddress *string `parquet:"street_address,optional"`
	City          *string `parquet:"city,optional"`
	TempState     *string `parquet:"temp_state,optional"`
	Zipcode       *string `parquet:"zipcode,optional"`
}

func (r PatientAddress) CopyValues() []any {
	return []any{r.PatientID, r.StreetAddress, r.City, r.TempState, r.Zipcode}
}

type PatientInsurance struct {
	SharePointID          int64   `parquet:"sharepoint_id"`
	PatientID             int64   `parquet:"patient_id"`
	MedicareBeneficiaryID *string `parquet:"medicare_beneficiary_id,optional"`
	PrimaryPayerID        *string `parquet:"primary_payer_id,optional"`
	PrimaryPayerName      *string `parquet:"primary_payer_name,optional"`
	SecondaryPayerID      *string `parquet:"secondary_payer_id,optional"`
	SecondaryPayerName    *string `parquet:"secondary_payer_name,optional"`
}

func (r PatientInsurance) CopyValues() []any {
	return []any{
		r.PatientID, r.MedicareBeneficiaryID, r.PrimaryPayerID, r.PrimaryPayerName,
		r.SecondaryPayerID, r.SecondaryPayerName,
	}
}

// MedicalNecessity is one diagnosis code backing a patient's enrollment.
type MedicalNecessity struct {
	SharePointID       int64      `parquet:"sharepoint_id"`
	PatientID          int64      `parquet:"patient_id"`
	EvaluationDatetime *time.Time `parquet:"evaluation_datetime,optional"`
	TempDXCode         string     `parquet:"temp_dx_code"`
}

func (r MedicalNecessity) CopyValues() []any {
	return []any{r.PatientID, r.EvaluationDatetime, r.TempDXCode}
}

type PatientStatus struct {
	SharePointID   int64     `parquet:"sharepoint_id"`
	PatientID      int64     `parquet:"patient_id"`
	TempStatusType *string   `parquet:"temp_status_type,optional"`
	ModifiedDate   time.Time `parquet:"modified_date"`
	TempUser       string    `parquet:"temp_user"`
}

func (r PatientStatus) CopyValues() []any {
	return []any{r.PatientID, r.TempStatusType, r.ModifiedDate, r.TempUser}
}

type EmergencyContact struct {
	SharePointID int64   `parquet:"sharepoint_id"`
	PatientID    int64   `parquet:"patient_id"`
	FullName     string  `parquet:"full_name"`
	PhoneNumber  string  `parquet:"phone_number"`
	Relationship *string `parquet:"relationship,optional"`
}

func (r EmergencyContact) CopyValues() []any {
	return []any{r.PatientID, r.FullName, r.PhoneNumber, r.Relationship}
}

// Device is a monitoring device shipped to a patient. Vendor is the natural
// key resolved to VendorID.
type Device struct {
	SharePointID *int64 `parquet:"sharepoint_id,optional"`
	Vendor       string `parquet:"vendor"`
	PatientID    int64  `parquet:"patient_id"`
	VendorID     int64  `parquet:"vendor_id"`
	HardwareUUID string `parquet:"hardware_uuid"`
	Name         string `parquet:"name"`
}

func (r Device) CopyValues() []any {
	return []any{r.PatientID, r.VendorID, r.HardwareUUID, r.Name}
}

// DeviceRef is a device already present in the destination database.
type DeviceRef struct {
	DeviceID  int64
	PatientID int64
	Name      string
}

type GlucoseReading struct {
	SharePointID     *int64     `parquet:"sharepoint_id,optional"`
	PatientID        int64      `parquet:"patient_id"`
	DeviceID         int64      `parquet:"device_id"`
	TempDevice       *string    `parquet:"temp_device,optional"`
	RecordedDatetime *time.Time `parquet:"recorded_datetime,optional"`
	ReceivedDatetime *time.Time `parquet:"received_datetime,optional"`
	GlucoseReading   *float64   `parquet:"glucose_reading,optional"`
	IsManual         *int       `parquet:"is_manual,optional"`
}

func (r GlucoseReading) CopyValues() []any {
	return []any{
		r.PatientID, r.DeviceID, r.TempDevice, r.RecordedDatetime, r.ReceivedDatetime,
		r.GlucoseReading, r.IsManual,
	}
}

type BloodPressureReading struct {
	SharePointID     *int64     `parquet:"sharepoint_id,optional"`
	PatientID        int64      `parquet:"patient_id"`
	DeviceID         int64      `parquet:"device_id"`
	TempDevice       *string    `parquet:"temp_device,optional"`
	RecordedDatetime *time.Time `parquet:"recorded_datetime,optional"`
	ReceivedDatetime *time.Time `parquet:"received_datetime,optional"`
	SystolicReading  *float64   `parquet:"systolic_reading,optional"`
	DiastolicReading *float64   `parquet:"diastolic_reading,optional"`
	IsManual         *int       `parquet:"is_manual,optional"`
}

func (r BloodPressureReading) CopyValues() []any {
	return []any{
		r.PatientID, r.DeviceID, r.TempDevice, r.RecordedDatetime, r.ReceivedDatetime,
		r.SystolicReading, r.DiastolicReading, r.IsManual,
	}
}

// PatientNote is a clinical note merged with its call-duration record.
type PatientNote struct {
	SharePointID      *int64     `parquet:"sharepoint_id,optional"`
	PatientID         int64      `parquet:"patient_id"`
	NoteContent       *string    `parquet:"note_content,optional"`
	NoteDatetime      *time.Time `parquet:"note_datetime,optional"`
	TempUser          *string    `parquet:"temp_user,optional"`
	TempNoteType      *string    `parquet:"temp_note_type,optional"`
	CallTimeSeconds   int64      `parquet:"call_time_seconds"`
	IsManual          *int       `parquet:"is_manual,optional"`
	StartCallDatetime *time.Time `parquet:"start_call_datetime,optional"`
	EndCallDatetime   *time.Time `parquet:"end_call_datetime,optional"`
}

func (r PatientNote) CopyValues() []any {
	return []any{
		r.PatientID, r.NoteContent, r.NoteDatetime, r.TempUser, r.TempNoteType,
		r.CallTimeSeconds, r.IsManual, r.StartCallDatetime, r.EndCallDatetime,
	}
}

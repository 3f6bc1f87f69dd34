package model

import "time"

// PatientExportRow mirrors one row of the SharePoint patient list export.
// Text columns are nil when the cell is empty.
type PatientExportRow struct {
	SharePointID int64

	FirstName  *string
	LastName   *string
	MiddleName *string
	Nickname   *string
	Suffix     *string
	DOB        *time.Time
	Gender     *string
	Email      *string
	Phone      *string
	SSN        *string
	Race       *string

	MaritalStatus     *string
	PreferredLanguage *string
	Weight            *string
	Height            *string

	MailingAddress *string
	City           *string
	State          *string
	Zip            *string

	EmergencyName    *string
	EmergencyNumber  *string
	EmergencyName2   *string
	EmergencyNumber2 *string

	MedicareID     *string
	DXCode         *string
	InsuranceID    *string
	InsuranceName  *string
	InsuranceID2   *string
	InsuranceName2 *string

	OnboardDate  *time.Time
	MemberStatus *string
	HealthCoach  *string
}

// PatientRecord is a normalized patient export row, before it is split into
// destination tables.
type PatientRecord struct {
	SharePointID int64

	FirstName         *string
	LastName          *string
	MiddleName        *string
	NameSuffix        *string
	FullName          *string
	NickName          *string
	DateOfBirth       *time.Time
	Sex               *string
	Email             *string
	PhoneNumber       *string
	SocialSecurity    *string
	TempRace          *string
	TempMaritalStatus *string
	PreferredLanguage *string
	WeightLbs         *int
	HeightIn          *int

	StreetAddress *string
	City          *string
	TempState     *string
	Zipcode       *string

	EmergencyFullName      *string
	EmergencyPhoneNumber   *string
	EmergencyRelationship  *string
	EmergencyFullName2     *string
	EmergencyPhoneNumber2  *string
	EmergencyRelationship2 *string

	MedicareBeneficiaryID *string
	PrimaryPayerID        *string
	PrimaryPayerName      *string
	SecondaryPayerID      *string
	SecondaryPayerName    *string

	EvaluationDatetime *time.Time
	TempDXCode         string
	TempStatusType     *string
	TempUser           *string
}

package sql

import (
	_ "embed"
)

// Source database queries. Windowed queries take the inclusive window
// bounds as $1 and $2.

//go:embed queries/notes_log.sql
var NotesLog string

//go:embed queries/time_log.sql
var TimeLog string

//go:embed queries/fulfillment.sql
var Fulfillment string

//go:embed queries/glucose_readings.sql
var GlucoseReadings string

//go:embed queries/blood_pressure_readings.sql
var BloodPressureReadings string

// Destination lookups.

//go:embed queries/patient_ids.sql
var PatientIDs string

//go:embed queries/vendor_ids.sql
var VendorIDs string

//go:embed queries/devices.sql
var Devices string

// Post-load label resolution.

//go:embed queries/update_note_type.sql
var UpdateNoteType string

//go:embed queries/update_status_type.sql
var UpdateStatusType string

//go:embed queries/update_patient_user.sql
var UpdatePatientUser string

//go:embed queries/update_note_user.sql
var UpdateNoteUser string

// Billing.

//go:embed queries/billing_report.sql
var BillingReport string

// LabelUpdates run in order after every table is loaded.
var LabelUpdates = []struct {
	Name string
	SQL  string
}{
	{"note_type", UpdateNoteType},
	{"status_type", UpdateStatusType},
	{"patient_user", UpdatePatientUser},
	{"note_user", UpdateNoteUser},
}

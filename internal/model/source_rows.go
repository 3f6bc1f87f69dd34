package model

import "time"

// NoteLogRow is one clinical note from the notes source database.
type NoteLogRow struct {
	SharePointID *string
	Notes        *string
	TimeStamp    *time.Time
	Author       *string
	TimeNote     *string
	NoteID       *string
}

// TimeLogRow is one call-duration record from the time log source database.
type TimeLogRow struct {
	SharePointID  *string
	RecordingTime *string
	Author        *string
	NoteType      *string
	AutoTime      *bool
	StartTime     *time.Time
	EndTime       *time.Time
	NoteID        *string
}

// FulfillmentRow is one shipped device from the fulfillment source database.
type FulfillmentRow struct {
	Vendor     string
	DeviceID   string
	DeviceName string
	PatientID  *int64
}

// GlucoseSourceRow is one blood glucose reading from the readings database.
type GlucoseSourceRow struct {
	SharePointID  *int64
	DeviceModel   *string
	TimeRecorded  *time.Time
	TimeReceived  *time.Time
	Reading       *float64
	ManualReading *bool
}

// BloodPressureSourceRow is one blood pressure reading from the readings database.
type BloodPressureSourceRow struct {
	SharePointID  *int64
	DeviceModel   *string
	TimeRecorded  *time.Time
	TimeReceived  *time.Time
	Systolic      *float64
	Diastolic     *float64
	ManualReading *bool
}

// DirectoryUser is a member of the clinic's directory group.
type DirectoryUser struct {
	ID          string  `json:"id"`
	GivenName   *string `json:"givenName"`
	Surname     *string `json:"surname"`
	DisplayName *string `json:"displayName"`
	Mail        *string `json:"mail"`
}

// NoteOverride pins the note type and/or call time of every note written by
// the listed authors.
type NoteOverride struct {
	Authors         []string `yaml:"authors"`
	NoteType        string   `yaml:"note_type"`
	CallTimeSeconds *int64   `yaml:"call_time_seconds"`
}

// Metric names reported by the device vendor API.
const (
	MetricGlucose       = "glucose"
	MetricBloodPressure = "blood_pressure"
)

// VendorMeasurement is one reading pulled from the device vendor API,
// attributed to the patient the device is assigned to.
type VendorMeasurement struct {
	SharePointID *int64
	DeviceName   string
	Metric       string
	Value1       *float64
	Value2       *float64
	Timestamp    *time.Time
	Created      *time.Time
}

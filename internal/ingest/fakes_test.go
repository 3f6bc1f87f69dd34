package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/source"
)

type call struct {
	name string
	args []any
}

// fakeDest is an in-memory clinic database. Patients and devices get
// sequential ids as they are appended.
type fakeDest struct {
	order      []string
	appended   map[string][]model.Row
	patientIDs map[int64]int64
	devices    []model.DeviceRef
	vendors    map[string]int64

	calls     []call
	execs     []string
	failStmt  map[string]bool
	appendErr map[string]error

	report   *model.ResultSet
	queryErr error
}

func newFakeDest() *fakeDest {
	return &fakeDest{
		appended:   map[string][]model.Row{},
		patientIDs: map[int64]int64{},
		vendors:    map[string]int64{"Omron": 1, "Tenovi": 2},
		failStmt:   map[string]bool{},
		appendErr:  map[string]error{},
	}
}

func (f *fakeDest) Append(_ context.Context, table model.Table, rows []model.Row) (int64, error) {
	if err := f.appendErr[table.Name]; err != nil {
		return 0, err
	}
	f.order = append(f.order, table.Name)
	f.appended[table.Name] = append(f.appended[table.Name], rows...)
	for _, r := range rows {
		switch v := r.(type) {
		case model.Patient:
			f.patientIDs[v.SharePointID] = int64(len(f.patientIDs) + 1)
		case model.Device:
			f.devices = append(f.devices, model.DeviceRef{
				DeviceID:  int64(500 + len(f.devices)),
				PatientID: v.PatientID,
				Name:      v.Name,
			})
		}
	}
	return int64(len(rows)), nil
}

func (f *fakeDest) PatientIDs(context.Context) (map[int64]int64, error) {
	out := make(map[int64]int64, len(f.patientIDs))
	for k, v := range f.patientIDs {
		out[k] = v
	}
	return out, nil
}

func (f *fakeDest) VendorIDs(context.Context) (map[string]int64, error) { return f.vendors, nil }

func (f *fakeDest) Devices(context.Context) ([]model.DeviceRef, error) { return f.devices, nil }

func (f *fakeDest) Exec(_ context.Context, name, _ string, _ ...any) bool {
	f.execs = append(f.execs, name)
	return !f.failStmt[name]
}

func (f *fakeDest) Call(_ context.Context, proc string, args ...any) bool {
	f.calls = append(f.calls, call{proc, args})
	return !f.failStmt[proc]
}

func (f *fakeDest) Query(context.Context, string, ...any) (*model.ResultSet, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.report, nil
}

func (f *fakeDest) count(table string) int { return len(f.appended[table]) }

// fakeSources answers every source interface from fixed slices.
type fakeSources struct {
	export      *source.PatientExport
	members     []model.DirectoryUser
	authErr     error
	notes       []model.NoteLogRow
	timeLogs    []model.TimeLogRow
	fulfillment []model.FulfillmentRow
	glucose     []model.GlucoseSourceRow
	bp          []model.BloodPressureSourceRow
	vendor      []model.VendorMeasurement
	vendorSince []time.Time
}

func (s *fakeSources) PatientExport() (*source.PatientExport, error) {
	if s.export == nil {
		return nil, errors.New("no export")
	}
	return s.export, nil
}

func (s *fakeSources) Authenticate(context.Context) error { return s.authErr }

func (s *fakeSources) GroupMembers(context.Context, string) ([]model.DirectoryUser, error) {
	return s.members, nil
}

func (s *fakeSources) Notes(context.Context, time.Time, time.Time) ([]model.NoteLogRow, error) {
	return s.notes, nil
}

func (s *fakeSources) TimeLogs(context.Context, time.Time, time.Time) ([]model.TimeLogRow, error) {
	return s.timeLogs, nil
}

func (s *fakeSources) Fulfillment(context.Context) ([]model.FulfillmentRow, error) {
	return s.fulfillment, nil
}

func (s *fakeSources) GlucoseReadings(context.Context, time.Time, time.Time) ([]model.GlucoseSourceRow, error) {
	return s.glucose, nil
}

func (s *fakeSources) BloodPressureReadings(context.Context, time.Time, time.Time) ([]model.BloodPressureSourceRow, error) {
	return s.bp, nil
}

func (s *fakeSources) Collect(_ context.Context, _ []string, since time.Time) ([]model.VendorMeasurement, error) {
	s.vendorSince = append(s.vendorSince, since)
	return s.vendor, nil
}

func (s *fakeSources) all() Sources {
	return Sources{
		Patients:    s,
		Directory:   s,
		GroupID:     "group",
		Notes:       s,
		TimeLog:     s,
		Fulfillment: s,
		Readings:    s,
		Vendor:      s,
	}
}

func str(s string) *string { return &s }

func i64(n int64) *int64 { return &n }

func f64(f float64) *float64 { return &f }

// clinicSources is a small clinic: two loadable patients, one with an
// over-long phone number, and readings, devices and notes for each.
func clinicSources() *fakeSources {
	auto := true
	manual := true
	return &fakeSources{
		export: &source.PatientExport{
			Path:   "export.csv",
			SHA256: "abc",
			Rows: []model.PatientExportRow{
				{
					SharePointID:    101,
					FirstName:       str("jane"),
					LastName:        str("doe"),
					Phone:           str("555-123-4567"),
					State:           str("illinois"),
					DXCode:          str("E11.9, I10"),
					EmergencyName:   str("John Doe (husband)"),
					EmergencyNumber: str("555-987-6543"),
					MemberStatus:    str("Active"),
				},
				{SharePointID: 102, FirstName: str("sam"), LastName: str("roe")},
				{SharePointID: 103, FirstName: str("max"), Phone: str("+44 20 7946 09581")},
			},
		},
		members: []model.DirectoryUser{{ID: "u1", GivenName: str("Coach")}, {ID: ""}},
		fulfillment: []model.FulfillmentRow{
			{Vendor: "Omron", DeviceID: "om-1", DeviceName: "Omron BP7350", PatientID: i64(101)},
			{Vendor: "Tenovi", DeviceID: "tv-1", DeviceName: "Tenovi Glucometer", PatientID: i64(102)},
			{Vendor: "Omron", DeviceID: "om-2", DeviceName: "Omron BP7350", PatientID: i64(999)},
		},
		glucose: []model.GlucoseSourceRow{
			{SharePointID: i64(102), DeviceModel: str("Glucometer"), Reading: f64(110.456), ManualReading: &manual},
			{SharePointID: i64(555), Reading: f64(99)},
		},
		bp: []model.BloodPressureSourceRow{
			{SharePointID: i64(101), Systolic: f64(120), Diastolic: f64(80)},
		},
		vendor: []model.VendorMeasurement{
			{SharePointID: i64(102), DeviceName: "Tenovi Glucometer", Metric: model.MetricGlucose, Value1: f64(105)},
			{SharePointID: i64(101), DeviceName: "Omron BP7350", Metric: model.MetricBloodPressure, Value1: f64(130), Value2: f64(85)},
		},
		notes: []model.NoteLogRow{
			{SharePointID: str("101"), NoteID: str("n1"), Author: str("Coach One"), Notes: str("<p>ok</p>")},
			{SharePointID: str("777"), NoteID: str("n2"), Author: str("Coach One")},
		},
		timeLogs: []model.TimeLogRow{
			{SharePointID: str("101"), NoteID: str("n1"), Author: str("Coach One"), RecordingTime: str("00:20:00"), NoteType: str("Follow Up"), AutoTime: &auto},
		},
	}
}

package ingest

import (
	"context"
	"time"

	"github.com/gyeh/clinicload/internal/api"
	"github.com/gyeh/clinicload/internal/db"
	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/source"
)

// Destination is the clinic database the run appends to.
type Destination interface {
	Append(ctx context.Context, table model.Table, rows []model.Row) (int64, error)
	PatientIDs(ctx context.Context) (map[int64]int64, error)
	VendorIDs(ctx context.Context) (map[string]int64, error)
	Devices(ctx context.Context) ([]model.DeviceRef, error)
	Exec(ctx context.Context, name, stmt string, args ...any) bool
	Call(ctx context.Context, proc string, args ...any) bool
	Query(ctx context.Context, stmt string, args ...any) (*model.ResultSet, error)
}

// Directory lists clinic staff.
type Directory interface {
	Authenticate(ctx context.Context) error
	GroupMembers(ctx context.Context, groupID string) ([]model.DirectoryUser, error)
}

type NoteSource interface {
	Notes(ctx context.Context, start, end time.Time) ([]model.NoteLogRow, error)
}

type TimeLogSource interface {
	TimeLogs(ctx context.Context, start, end time.Time) ([]model.TimeLogRow, error)
}

type FulfillmentSource interface {
	Fulfillment(ctx context.Context) ([]model.FulfillmentRow, error)
}

type ReadingSource interface {
	GlucoseReadings(ctx context.Context, start, end time.Time) ([]model.GlucoseSourceRow, error)
	BloodPressureReadings(ctx context.Context, start, end time.Time) ([]model.BloodPressureSourceRow, error)
}

// VendorSource returns device measurements from the vendor API.
type VendorSource interface {
	Collect(ctx context.Context, metrics []string, since time.Time) ([]model.VendorMeasurement, error)
}

// PatientSource yields the patient export.
type PatientSource interface {
	PatientExport() (*source.PatientExport, error)
}

// ExportFile reads the patient export from a CSV file.
type ExportFile string

func (f ExportFile) PatientExport() (*source.PatientExport, error) {
	return source.ReadPatientExport(string(f))
}

// Sources are the systems one import reads from. Vendor is optional.
type Sources struct {
	Patients    PatientSource
	Directory   Directory
	GroupID     string
	Notes       NoteSource
	TimeLog     TimeLogSource
	Fulfillment FulfillmentSource
	Readings    ReadingSource
	Vendor      VendorSource
}

var (
	_ Destination       = (*db.Store)(nil)
	_ Directory         = (*api.Graph)(nil)
	_ VendorSource      = (*api.Tenovi)(nil)
	_ NoteSource        = (*source.DB)(nil)
	_ TimeLogSource     = (*source.DB)(nil)
	_ FulfillmentSource = (*source.DB)(nil)
	_ ReadingSource     = (*source.DB)(nil)
	_ PatientSource     = ExportFile("")
)

package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/clinicload/internal/metrics"
	"github.com/gyeh/clinicload/internal/model"
	queries "github.com/gyeh/clinicload/internal/sql"
)

var (
	windowStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	fixedNow    = time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC)
)

func testOptions() Options {
	return Options{
		RunID:       "run-1",
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Now:         func() time.Time { return fixedNow },
	}
}

func TestRunLoadsTablesInOrder(t *testing.T) {
	dst := newFakeDest()
	src := clinicSources()

	summary, err := Run(context.Background(), dst, src.all(), testOptions(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"user", "patient", "patient_address", "patient_insurance", "medical_necessity",
		"patient_status", "emergency_contact", "device", "glucose_reading",
		"blood_pressure_reading", "patient_note",
	}, dst.order)

	require.NotEmpty(t, dst.calls)
	assert.Equal(t, ResetProc, dst.calls[0].name)

	assert.Equal(t, 1, dst.count("user"))
	assert.Equal(t, 2, dst.count("patient"))
	assert.Equal(t, 2, dst.count("medical_necessity"))
	assert.Equal(t, 1, dst.count("emergency_contact"))

	patients := summary.Table("patient")
	require.NotNil(t, patients)
	assert.Equal(t, 3, patients.RowsRead)
	assert.Equal(t, 1, patients.RowsDropped)
	assert.Equal(t, int64(2), patients.RowsCopied)

	assert.Equal(t, len(queries.LabelUpdates), summary.LabelUpdates)
	assert.Zero(t, summary.FailedUpdates)
	assert.Equal(t, "run-1", summary.RunID)
}

func TestRunResolvesPatientIDs(t *testing.T) {
	dst := newFakeDest()
	src := clinicSources()

	_, err := Run(context.Background(), dst, src.all(), testOptions(), zerolog.Nop())
	require.NoError(t, err)

	for _, r := range dst.appended["patient_address"] {
		a := r.(model.PatientAddress)
		assert.Equal(t, dst.patientIDs[a.SharePointID], a.PatientID)
	}
	status := dst.appended["patient_status"][0].(model.PatientStatus)
	assert.Equal(t, fixedNow, status.ModifiedDate)

	// Fulfillment for an unknown patient is dropped; vendors resolve by name.
	devices := dst.appended["device"]
	require.Len(t, devices, 2)
	assert.Equal(t, int64(1), devices[0].(model.Device).VendorID)
	assert.Equal(t, int64(2), devices[1].(model.Device).VendorID)
}

func TestRunReadingsIncludeVendorMeasurements(t *testing.T) {
	dst := newFakeDest()
	src := clinicSources()

	summary, err := Run(context.Background(), dst, src.all(), testOptions(), zerolog.Nop())
	require.NoError(t, err)

	glucose := summary.Table("glucose_reading")
	require.NotNil(t, glucose)
	assert.Equal(t, 3, glucose.RowsRead)
	assert.Equal(t, 1, glucose.RowsOrphans)
	assert.Equal(t, int64(2), glucose.RowsCopied)

	tenovi := dst.devices[1].DeviceID
	for _, r := range dst.appended["glucose_reading"] {
		g := r.(model.GlucoseReading)
		assert.Equal(t, tenovi, g.DeviceID)
	}
	first := dst.appended["glucose_reading"][0].(model.GlucoseReading)
	require.NotNil(t, first.GlucoseReading)
	assert.Equal(t, 110.46, *first.GlucoseReading)

	assert.Equal(t, 2, dst.count("blood_pressure_reading"))
	require.Len(t, src.vendorSince, 2)
	assert.Equal(t, windowStart, src.vendorSince[0])
}

func TestRunSkipsVendorMeasurementsAfterWindow(t *testing.T) {
	dst := newFakeDest()
	src := clinicSources()
	inside := windowEnd.Add(-24 * time.Hour)
	late := windowEnd.Add(72 * time.Hour)
	src.vendor = []model.VendorMeasurement{
		{SharePointID: i64(102), DeviceName: "Tenovi Glucometer", Metric: model.MetricGlucose, Value1: f64(101), Timestamp: &inside},
		{SharePointID: i64(102), DeviceName: "Tenovi Glucometer", Metric: model.MetricGlucose, Value1: f64(140), Timestamp: &late},
		{SharePointID: i64(101), DeviceName: "Omron BP7350", Metric: model.MetricBloodPressure, Value1: f64(150), Value2: f64(95), Created: &late},
	}

	summary, err := Run(context.Background(), dst, src.all(), testOptions(), zerolog.Nop())
	require.NoError(t, err)

	// One relational glucose reading plus the in-window vendor reading.
	assert.Equal(t, 3, summary.Table("glucose_reading").RowsRead)
	assert.Equal(t, int64(2), summary.Table("glucose_reading").RowsCopied)
	for _, r := range dst.appended["glucose_reading"] {
		g := r.(model.GlucoseReading)
		if g.RecordedDatetime != nil {
			assert.False(t, g.RecordedDatetime.After(windowEnd), "reading at %v is after the window", g.RecordedDatetime)
		}
	}
	assert.Equal(t, int64(1), summary.Table("blood_pressure_reading").RowsCopied)
}

func TestRunWithoutVendor(t *testing.T) {
	dst := newFakeDest()
	src := clinicSources()
	sources := src.all()
	sources.Vendor = nil

	summary, err := Run(context.Background(), dst, sources, testOptions(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Table("glucose_reading").RowsCopied)
	assert.Empty(t, src.vendorSince)
}

func TestRunNotes(t *testing.T) {
	dst := newFakeDest()
	src := clinicSources()

	summary, err := Run(context.Background(), dst, src.all(), testOptions(), zerolog.Nop())
	require.NoError(t, err)

	notes := summary.Table("patient_note")
	require.NotNil(t, notes)
	assert.Equal(t, 2, notes.RowsRead)
	assert.Equal(t, 1, notes.RowsOrphans)

	n := dst.appended["patient_note"][0].(model.PatientNote)
	assert.Equal(t, int64(1200), n.CallTimeSeconds)
	require.NotNil(t, n.IsManual)
	assert.Equal(t, 0, *n.IsManual)
	require.NotNil(t, n.NoteContent)
	assert.Equal(t, "ok", *n.NoteContent)
}

func TestRunLabelFailuresAreCounted(t *testing.T) {
	dst := newFakeDest()
	dst.failStmt["update_note_user"] = true
	src := clinicSources()

	summary, err := Run(context.Background(), dst, src.all(), testOptions(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, len(queries.LabelUpdates)-1, summary.LabelUpdates)
	assert.Equal(t, 1, summary.FailedUpdates)
}

func TestRunResetFailureContinues(t *testing.T) {
	dst := newFakeDest()
	dst.failStmt[ResetProc] = true

	_, err := Run(context.Background(), dst, clinicSources().all(), testOptions(), zerolog.Nop())
	require.NoError(t, err)
	assert.NotEmpty(t, dst.order)
}

func TestRunDirectoryFailure(t *testing.T) {
	dst := newFakeDest()
	src := clinicSources()
	src.authErr = errors.New("invalid_client")

	_, err := Run(context.Background(), dst, src.all(), testOptions(), zerolog.Nop())
	require.Error(t, err)

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseUsers, pe.Phase)
	assert.Equal(t, StepExtract, pe.Step)
	assert.Empty(t, dst.order)
}

func TestRunExportFailure(t *testing.T) {
	src := clinicSources()
	src.export = nil

	_, err := Run(context.Background(), newFakeDest(), src.all(), testOptions(), zerolog.Nop())
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhasePatients, pe.Phase)
	assert.Equal(t, StepExtract, pe.Step)
}

func TestRunAppendFailureStopsRun(t *testing.T) {
	dst := newFakeDest()
	copyErr := errors.New("copy failed")
	dst.appendErr["device"] = copyErr

	summary, err := Run(context.Background(), dst, clinicSources().all(), testOptions(), zerolog.Nop())
	require.ErrorIs(t, err, copyErr)

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseDevices, pe.Phase)
	assert.Equal(t, StepAppend, pe.Step)
	assert.Equal(t, "devices/append: copy failed", pe.Error())

	assert.NotContains(t, dst.order, "glucose_reading")
	assert.Contains(t, dst.order, "patient")
	assert.Len(t, summary.Tables, 7)
	assert.Empty(t, dst.execs, "labels must not run after a failure")
}

func TestRunRecordsMetrics(t *testing.T) {
	rec := metrics.New()
	opts := testOptions()
	opts.Metrics = rec

	_, err := Run(context.Background(), newFakeDest(), clinicSources().all(), opts, zerolog.Nop())
	require.NoError(t, err)

	reg := rec.Registry()
	assert.Equal(t, 2.0, counter(t, reg, "clinicload_rows_copied_total", "table", "patient"))
	assert.Equal(t, 1.0, counter(t, reg, "clinicload_rows_dropped_total", "rule", "phone_number"))
	assert.Equal(t, 1.0, counter(t, reg, "clinicload_rows_unresolved_total", "table", "glucose_reading"))
	assert.Equal(t, 1.0, counter(t, reg, "clinicload_statements_total", "statement", ResetProc))
}

// counter sums the series of a counter family carrying label=value.
func counter(t *testing.T, reg *prometheus.Registry, family, label, value string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != family {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					sum += m.GetCounter().GetValue()
				}
			}
		}
	}
	return sum
}

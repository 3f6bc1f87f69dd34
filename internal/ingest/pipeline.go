package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/clinicload/internal/constraint"
	"github.com/gyeh/clinicload/internal/db"
	"github.com/gyeh/clinicload/internal/export"
	"github.com/gyeh/clinicload/internal/metrics"
	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/normalize"
	"github.com/gyeh/clinicload/internal/resolve"
	"github.com/gyeh/clinicload/internal/shape"
	queries "github.com/gyeh/clinicload/internal/sql"
)

// Phases in run order.
const (
	PhaseReset         = "reset"
	PhaseUsers         = "users"
	PhasePatients      = "patients"
	PhaseDevices       = "devices"
	PhaseGlucose       = "glucose"
	PhaseBloodPressure = "blood_pressure"
	PhaseNotes         = "notes"
	PhaseLabels        = "labels"
	PhaseBilling       = "billing"
)

// Steps within a phase.
const (
	StepExtract = "extract"
	StepResolve = "resolve"
	StepAppend  = "append"
	StepReport  = "report"
)

// PipelineError wraps an error with the phase and step where it occurred.
type PipelineError struct {
	Phase string
	Step  string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Phase, e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ResetProc clears billing state before an import.
const ResetProc = "reset_all_billing_tables"

// Options tune one import run.
type Options struct {
	RunID         string
	WindowStart   time.Time
	WindowEnd     time.Time
	Vocabulary    *normalize.Vocabulary
	NoteOverrides []model.NoteOverride
	Snapshots     *export.Snapshotter // nil disables snapshots
	Metrics       *metrics.Recorder   // nil disables metrics
	Now           func() time.Time
}

type pipeline struct {
	dst     Destination
	src     Sources
	opts    Options
	log     zerolog.Logger
	summary *model.RunSummary
}

// Run executes the import: reset → users → patients → devices → glucose →
// blood pressure → notes → label resolution. The first failure aborts the
// rest of the run; tables already appended stay appended.
func Run(ctx context.Context, dst Destination, src Sources, opts Options, log zerolog.Logger) (*model.RunSummary, error) {
	totalStart := time.Now()
	if opts.Vocabulary == nil {
		opts.Vocabulary = normalize.DefaultVocabulary()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	p := &pipeline{
		dst:  dst,
		src:  src,
		opts: opts,
		log:  log,
		summary: &model.RunSummary{
			RunID:       opts.RunID,
			WindowStart: opts.WindowStart,
			WindowEnd:   opts.WindowEnd,
		},
	}

	log.Info().
		Str("start", opts.WindowStart.Format(time.DateOnly)).
		Str("end", opts.WindowEnd.Format(time.DateOnly)).
		Msg("starting import")

	ok := dst.Call(ctx, ResetProc)
	opts.Metrics.Statement(ResetProc, ok)

	phases := []struct {
		name string
		run  func(context.Context) error
	}{
		{PhaseUsers, p.users},
		{PhasePatients, p.patients},
		{PhaseDevices, p.devices},
		{PhaseGlucose, p.glucose},
		{PhaseBloodPressure, p.bloodPressure},
		{PhaseNotes, p.notes},
	}
	for _, ph := range phases {
		start := time.Now()
		log.Info().Str("phase", ph.name).Msg("starting phase")
		if err := ph.run(ctx); err != nil {
			return p.summary, err
		}
		opts.Metrics.Phase(ph.name, time.Since(start))
	}

	p.labels(ctx)

	p.summary.DurationTotal = time.Since(totalStart)
	opts.Metrics.Finish(opts.Now())
	log.Info().
		Int64("rows_copied", p.summary.RowsCopied()).
		Int("label_updates", p.summary.LabelUpdates).
		Int("failed_updates", p.summary.FailedUpdates).
		Str("total_duration", p.summary.DurationTotal.String()).
		Msg("import complete")
	return p.summary, nil
}

func (p *pipeline) users(ctx context.Context) error {
	start := time.Now()
	if err := p.src.Directory.Authenticate(ctx); err != nil {
		return &PipelineError{Phase: PhaseUsers, Step: StepExtract, Err: err}
	}
	members, err := p.src.Directory.GroupMembers(ctx, p.src.GroupID)
	if err != nil {
		return &PipelineError{Phase: PhaseUsers, Step: StepExtract, Err: err}
	}
	users := shape.Users(members)
	snapshot(p, "user", users)
	return appendTable(ctx, p, PhaseUsers, model.UserTable, users, len(members), 0, 0, start)
}

func (p *pipeline) patients(ctx context.Context) error {
	start := time.Now()
	exp, err := p.src.Patients.PatientExport()
	if err != nil {
		return &PipelineError{Phase: PhasePatients, Step: StepExtract, Err: err}
	}
	p.log.Info().
		Str("file", exp.Path).
		Str("sha256", exp.SHA256).
		Int("rows", len(exp.Rows)).
		Int("skipped", exp.Skipped).
		Msg("patient export read")

	records := shape.NormalizePatients(exp.Rows, p.opts.Vocabulary)
	kept, drops := constraint.FilterTo(records, constraint.PatientRules, model.PatientTable.Name, p.opts.Metrics)
	if n := drops.Total(); n > 0 {
		ev := p.log.Info().Int("dropped", n)
		for rule, c := range drops {
			ev = ev.Int("rule_"+rule, c)
		}
		ev.Msg("constraint filter dropped patients")
	}

	t := shape.SplitPatients(kept, p.opts.Now())
	snapshot(p, "patient", t.Patients)
	snapshot(p, "address", t.Addresses)
	snapshot(p, "insurance", t.Insurance)
	snapshot(p, "med_nec", t.MedicalNecessity)
	snapshot(p, "status", t.Statuses)
	snapshot(p, "emcontacts", t.EmergencyContacts)

	if err := appendTable(ctx, p, PhasePatients, model.PatientTable, t.Patients, len(records), drops.Total(), 0, start); err != nil {
		return err
	}

	ids, err := p.dst.PatientIDs(ctx)
	if err != nil {
		return &PipelineError{Phase: PhasePatients, Step: StepResolve, Err: err}
	}

	addresses, orphans := resolve.ByKey(t.Addresses, ids,
		resolve.SharePointKey(func(r *model.PatientAddress) int64 { return r.SharePointID }),
		func(r *model.PatientAddress, id int64) { r.PatientID = id })
	if err := appendTable(ctx, p, PhasePatients, model.AddressTable, addresses, len(t.Addresses), 0, orphans, time.Now()); err != nil {
		return err
	}

	insurance, orphans := resolve.ByKey(t.Insurance, ids,
		resolve.SharePointKey(func(r *model.PatientInsurance) int64 { return r.SharePointID }),
		func(r *model.PatientInsurance, id int64) { r.PatientID = id })
	if err := appendTable(ctx, p, PhasePatients, model.InsuranceTable, insurance, len(t.Insurance), 0, orphans, time.Now()); err != nil {
		return err
	}

	medNec, orphans := resolve.ByKey(t.MedicalNecessity, ids,
		resolve.SharePointKey(func(r *model.MedicalNecessity) int64 { return r.SharePointID }),
		func(r *model.MedicalNecessity, id int64) { r.PatientID = id })
	if err := appendTable(ctx, p, PhasePatients, model.MedicalNecessityTable, medNec, len(t.MedicalNecessity), 0, orphans, time.Now()); err != nil {
		return err
	}

	statuses, orphans := resolve.ByKey(t.Statuses, ids,
		resolve.SharePointKey(func(r *model.PatientStatus) int64 { return r.SharePointID }),
		func(r *model.PatientStatus, id int64) { r.PatientID = id })
	if err := appendTable(ctx, p, PhasePatients, model.StatusTable, statuses, len(t.Statuses), 0, orphans, time.Now()); err != nil {
		return err
	}

	contacts, orphans := resolve.ByKey(t.EmergencyContacts, ids,
		resolve.SharePointKey(func(r *model.EmergencyContact) int64 { return r.SharePointID }),
		func(r *model.EmergencyContact, id int64) { r.PatientID = id })
	return appendTable(ctx, p, PhasePatients, model.EmergencyContactTable, contacts, len(t.EmergencyContacts), 0, orphans, time.Now())
}

func (p *pipeline) devices(ctx context.Context) error {
	start := time.Now()
	rows, err := p.src.Fulfillment.Fulfillment(ctx)
	if err != nil {
		return &PipelineError{Phase: PhaseDevices, Step: StepExtract, Err: err}
	}
	devices := shape.Devices(rows)
	snapshot(p, "device", devices)

	patientIDs, err := p.dst.PatientIDs(ctx)
	if err != nil {
		return &PipelineError{Phase: PhaseDevices, Step: StepResolve, Err: err}
	}
	vendorIDs, err := p.dst.VendorIDs(ctx)
	if err != nil {
		return &PipelineError{Phase: PhaseDevices, Step: StepResolve, Err: err}
	}

	resolved, noPatient := resolve.ByKey(devices, patientIDs,
		resolve.NullableKey(func(r *model.Device) *int64 { return r.SharePointID }),
		func(r *model.Device, id int64) { r.PatientID = id })
	resolved, noVendor := resolve.ByKey(resolved, vendorIDs,
		func(r *model.Device) (string, bool) { return r.Vendor, r.Vendor != "" },
		func(r *model.Device, id int64) { r.VendorID = id })

	return appendTable(ctx, p, PhaseDevices, model.DeviceTable, resolved, len(rows), 0, noPatient+noVendor, start)
}

func (p *pipeline) glucose(ctx context.Context) error {
	start := time.Now()
	rows, err := p.src.Readings.GlucoseReadings(ctx, p.opts.WindowStart, p.opts.WindowEnd)
	if err != nil {
		return &PipelineError{Phase: PhaseGlucose, Step: StepExtract, Err: err}
	}
	readings := shape.GlucoseReadings(rows)
	vendor, err := p.vendorMeasurements(ctx, model.MetricGlucose)
	if err != nil {
		return &PipelineError{Phase: PhaseGlucose, Step: StepExtract, Err: err}
	}
	readings = append(readings, shape.VendorGlucose(vendor)...)
	snapshot(p, "glucose", readings)
	read := len(readings)

	patientIDs, devices, err := p.readingLookups(ctx)
	if err != nil {
		return &PipelineError{Phase: PhaseGlucose, Step: StepResolve, Err: err}
	}
	readings, noPatient := resolve.ByKey(readings, patientIDs,
		resolve.NullableKey(func(r *model.GlucoseReading) *int64 { return r.SharePointID }),
		func(r *model.GlucoseReading, id int64) { r.PatientID = id })
	readings, noDevice := resolve.ByLookup(readings,
		func(r *model.GlucoseReading) (int64, bool) { return devices.Pick(r.PatientID, r.TempDevice) },
		func(r *model.GlucoseReading, id int64) { r.DeviceID = id })

	return appendTable(ctx, p, PhaseGlucose, model.GlucoseTable, readings, read, 0, noPatient+noDevice, start)
}

func (p *pipeline) bloodPressure(ctx context.Context) error {
	start := time.Now()
	rows, err := p.src.Readings.BloodPressureReadings(ctx, p.opts.WindowStart, p.opts.WindowEnd)
	if err != nil {
		return &PipelineError{Phase: PhaseBloodPressure, Step: StepExtract, Err: err}
	}
	readings := shape.BloodPressureReadings(rows)
	vendor, err := p.vendorMeasurements(ctx, model.MetricBloodPressure)
	if err != nil {
		return &PipelineError{Phase: PhaseBloodPressure, Step: StepExtract, Err: err}
	}
	readings = append(readings, shape.VendorBloodPressure(vendor)...)
	snapshot(p, "blood_pressure", readings)
	read := len(readings)

	patientIDs, devices, err := p.readingLookups(ctx)
	if err != nil {
		return &PipelineError{Phase: PhaseBloodPressure, Step: StepResolve, Err: err}
	}
	readings, noPatient := resolve.ByKey(readings, patientIDs,
		resolve.NullableKey(func(r *model.BloodPressureReading) *int64 { return r.SharePointID }),
		func(r *model.BloodPressureReading, id int64) { r.PatientID = id })
	readings, noDevice := resolve.ByLookup(readings,
		func(r *model.BloodPressureReading) (int64, bool) { return devices.Pick(r.PatientID, r.TempDevice) },
		func(r *model.BloodPressureReading, id int64) { r.DeviceID = id })

	return appendTable(ctx, p, PhaseBloodPressure, model.BloodPressureTable, readings, read, 0, noPatient+noDevice, start)
}

func (p *pipeline) notes(ctx context.Context) error {
	start := time.Now()
	notes, err := p.src.Notes.Notes(ctx, p.opts.WindowStart, p.opts.WindowEnd)
	if err != nil {
		return &PipelineError{Phase: PhaseNotes, Step: StepExtract, Err: err}
	}
	times, err := p.src.TimeLog.TimeLogs(ctx, p.opts.WindowStart, p.opts.WindowEnd)
	if err != nil {
		return &PipelineError{Phase: PhaseNotes, Step: StepExtract, Err: err}
	}

	merged := shape.MergeNotes(notes, times)
	rows, stats := shape.Notes(merged, p.opts.NoteOverrides)
	if stats.BadCallTimes > 0 {
		p.log.Warn().Int("notes", stats.BadCallTimes).Msg("unparseable call times recorded as 0")
	}
	snapshot(p, "note", rows)

	ids, err := p.dst.PatientIDs(ctx)
	if err != nil {
		return &PipelineError{Phase: PhaseNotes, Step: StepResolve, Err: err}
	}
	resolved, orphans := resolve.ByKey(rows, ids,
		resolve.NullableKey(func(r *model.PatientNote) *int64 { return r.SharePointID }),
		func(r *model.PatientNote, id int64) { r.PatientID = id })

	return appendTable(ctx, p, PhaseNotes, model.NoteTable, resolved, len(rows), 0, orphans, start)
}

// labels maps the temp_* columns onto lookup ids. Failures are logged and
// counted; they do not abort the run.
func (p *pipeline) labels(ctx context.Context) {
	start := time.Now()
	for _, u := range queries.LabelUpdates {
		ok := p.dst.Exec(ctx, "update_"+u.Name, u.SQL)
		p.opts.Metrics.Statement("update_"+u.Name, ok)
		if ok {
			p.summary.LabelUpdates++
		} else {
			p.summary.FailedUpdates++
		}
	}
	p.opts.Metrics.Phase(PhaseLabels, time.Since(start))
}

func (p *pipeline) vendorMeasurements(ctx context.Context, metric string) ([]model.VendorMeasurement, error) {
	if p.src.Vendor == nil {
		return nil, nil
	}
	ms, err := p.src.Vendor.Collect(ctx, []string{metric}, p.opts.WindowStart)
	if err != nil {
		return nil, err
	}
	ms, late := shape.VendorThrough(ms, p.opts.WindowEnd)
	if late > 0 {
		p.log.Info().Str("metric", metric).Int("measurements", late).Msg("skipped vendor measurements after window end")
	}
	return ms, nil
}

func (p *pipeline) readingLookups(ctx context.Context) (map[int64]int64, resolve.DeviceIndex, error) {
	ids, err := p.dst.PatientIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	devices, err := p.dst.Devices(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ids, resolve.NewDeviceIndex(devices), nil
}

func appendTable[T model.Row](ctx context.Context, p *pipeline, phase string, table model.Table, rows []T, read, dropped, orphans int, start time.Time) error {
	copied, err := p.dst.Append(ctx, table, db.Rows(rows))
	if err != nil {
		return &PipelineError{Phase: phase, Step: StepAppend, Err: err}
	}
	ts := model.TableSummary{
		Table:       table.Name,
		RowsRead:    read,
		RowsDropped: dropped,
		RowsOrphans: orphans,
		RowsCopied:  copied,
		Duration:    time.Since(start),
	}
	p.summary.Tables = append(p.summary.Tables, ts)

	p.opts.Metrics.Read(table.Name, read)
	p.opts.Metrics.Unresolved(table.Name, orphans)
	p.opts.Metrics.Copied(table.Name, copied)

	p.log.Info().
		Str("table", table.Name).
		Int("rows_read", read).
		Int("rows_dropped", dropped).
		Int("rows_unresolved", orphans).
		Int64("rows_copied", copied).
		Str("duration", ts.Duration.String()).
		Msg("table loaded")
	return nil
}

func snapshot[T any](p *pipeline, name string, rows []T) {
	if err := export.Snapshot(p.opts.Snapshots, name, rows); err != nil {
		p.log.Warn().Err(err).Str("snapshot", name).Msg("snapshot failed (non-fatal)")
	}
}

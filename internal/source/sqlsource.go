package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinicload/internal/model"
	queries "github.com/gyeh/clinicload/internal/sql"
)

// DB is a read-only connection to one relational source system.
type DB struct {
	name string
	db   *sql.DB
	log  zerolog.Logger
}

// Open connects to a source database and pings it.
func Open(ctx context.Context, name, dsn string, log zerolog.Logger) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", name, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", name, err)
	}
	return New(name, db, log), nil
}

// New wraps an existing handle.
func New(name string, db *sql.DB, log zerolog.Logger) *DB {
	return &DB{name: name, db: db, log: log.With().Str("source", name).Logger()}
}

// Name identifies the source in logs and errors.
func (d *DB) Name() string { return d.name }

// Close releases the connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Notes returns clinical notes stamped within [start, end].
func (d *DB) Notes(ctx context.Context, start, end time.Time) ([]model.NoteLogRow, error) {
	return query(ctx, d, "notes", queries.NotesLog, func(rows *sql.Rows, r *model.NoteLogRow) error {
		return rows.Scan(&r.SharePointID, &r.Notes, &r.TimeStamp, &r.Author, &r.TimeNote, &r.NoteID)
	}, start, end)
}

// TimeLogs returns call-duration records ending within [start, end].
func (d *DB) TimeLogs(ctx context.Context, start, end time.Time) ([]model.TimeLogRow, error) {
	return query(ctx, d, "time_log", queries.TimeLog, func(rows *sql.Rows, r *model.TimeLogRow) error {
		return rows.Scan(&r.SharePointID, &r.RecordingTime, &r.Author, &r.NoteType,
			&r.AutoTime, &r.StartTime, &r.EndTime, &r.NoteID)
	}, start, end)
}

// Fulfillment returns every first-shipment Tenovi or Omron device.
func (d *DB) Fulfillment(ctx context.Context) ([]model.FulfillmentRow, error) {
	return query(ctx, d, "fulfillment", queries.Fulfillment, func(rows *sql.Rows, r *model.FulfillmentRow) error {
		var vendor, deviceID, deviceName sql.NullString
		if err := rows.Scan(&vendor, &deviceID, &deviceName, &r.PatientID); err != nil {
			return err
		}
		r.Vendor, r.DeviceID, r.DeviceName = vendor.String, deviceID.String, deviceName.String
		return nil
	})
}

// GlucoseReadings returns glucose readings recorded within [start, end].
func (d *DB) GlucoseReadings(ctx context.Context, start, end time.Time) ([]model.GlucoseSourceRow, error) {
	return query(ctx, d, "glucose_readings", queries.GlucoseReadings, func(rows *sql.Rows, r *model.GlucoseSourceRow) error {
		return rows.Scan(&r.SharePointID, &r.DeviceModel, &r.TimeRecorded, &r.TimeReceived,
			&r.Reading, &r.ManualReading)
	}, start, end)
}

// BloodPressureReadings returns blood pressure readings recorded within [start, end].
func (d *DB) BloodPressureReadings(ctx context.Context, start, end time.Time) ([]model.BloodPressureSourceRow, error) {
	return query(ctx, d, "blood_pressure_readings", queries.BloodPressureReadings, func(rows *sql.Rows, r *model.BloodPressureSourceRow) error {
		return rows.Scan(&r.SharePointID, &r.DeviceModel, &r.TimeRecorded, &r.TimeReceived,
			&r.Systolic, &r.Diastolic, &r.ManualReading)
	}, start, end)
}

func query[T any](ctx context.Context, d *DB, what, q string, scan func(*sql.Rows, *T) error, args ...any) ([]T, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s source: query %s: %w", d.Name(), what, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var r T
		if err := scan(rows, &r); err != nil {
			return nil, fmt.Errorf("%s source: scan %s row %d: %w", d.Name(), what, len(out)+1, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s source: iterate %s: %w", d.Name(), what, err)
	}

	d.log.Debug().
		Str("query", what).
		Int("rows", len(out)).
		Dur("duration", time.Since(start)).
		Msg("source query complete")
	return out, nil
}

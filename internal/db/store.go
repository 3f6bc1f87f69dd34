package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/clinicload/internal/model"
	queries "github.com/gyeh/clinicload/internal/sql"
)

// Store is the clinic destination database.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewStore wraps a connected pool.
func NewStore(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// Append COPY-loads rows into table. Rows are only ever appended.
func (s *Store) Append(ctx context.Context, table model.Table, rows []model.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	start := time.Now()
	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{table.Name}, table.Columns, NewRowSource(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table.Name, err)
	}
	dur := time.Since(start)
	s.log.Info().
		Str("table", table.Name).
		Int64("rows", n).
		Str("duration", dur.String()).
		Float64("rows_per_sec", float64(n)/dur.Seconds()).
		Msg("copy complete")
	return n, nil
}

// PatientIDs maps SharePoint ids to patient ids. When a SharePoint id was
// loaded more than once the newest patient row wins.
func (s *Store) PatientIDs(ctx context.Context) (map[int64]int64, error) {
	rows, err := s.pool.Query(ctx, queries.PatientIDs)
	if err != nil {
		return nil, fmt.Errorf("query patient ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]int64)
	for rows.Next() {
		var patientID int64
		var sharePointID *int64
		if err := rows.Scan(&patientID, &sharePointID); err != nil {
			return nil, fmt.Errorf("scan patient id: %w", err)
		}
		if sharePointID == nil {
			continue
		}
		if cur, ok := ids[*sharePointID]; !ok || patientID > cur {
			ids[*sharePointID] = patientID
		}
	}
	return ids, rows.Err()
}

// VendorIDs maps vendor names to vendor ids.
func (s *Store) VendorIDs(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, queries.VendorIDs)
	if err != nil {
		return nil, fmt.Errorf("query vendor ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan vendor id: %w", err)
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

// Devices lists every device with its patient.
func (s *Store) Devices(ctx context.Context) ([]model.DeviceRef, error) {
	rows, err := s.pool.Query(ctx, queries.Devices)
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	var out []model.DeviceRef
	for rows.Next() {
		var d model.DeviceRef
		var patientID *int64
		var name *string
		if err := rows.Scan(&d.DeviceID, &patientID, &name); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		if patientID == nil {
			continue
		}
		d.PatientID = *patientID
		if name != nil {
			d.Name = *name
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Exec runs one statement in its own transaction. On failure the
// transaction is rolled back, the error is logged and false is returned.
func (s *Store) Exec(ctx context.Context, name, stmt string, args ...any) bool {
	start := time.Now()
	log := s.log.With().Str("statement", name).Logger()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("begin transaction failed")
		return false
	}
	tag, err := tx.Exec(ctx, stmt, args...)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
		log.Error().Err(err).Msg("statement failed, rolled back")
		return false
	}
	if err := tx.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("commit failed")
		return false
	}
	log.Info().
		Int64("rows_affected", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("statement complete")
	return true
}

// Call invokes a stored procedure through Exec.
func (s *Store) Call(ctx context.Context, proc string, args ...any) bool {
	return s.Exec(ctx, proc, CallStatement(proc, len(args)), args...)
}

// CallStatement builds "CALL proc($1, ..., $n)" with a quoted procedure name.
func CallStatement(proc string, nargs int) string {
	params := make([]string, nargs)
	for i := range params {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("CALL %s(%s)", pgx.Identifier{proc}.Sanitize(), strings.Join(params, ", "))
}

// Query materializes a result set.
func (s *Store) Query(ctx context.Context, stmt string, args ...any) (*model.ResultSet, error) {
	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	rs := &model.ResultSet{}
	for _, fd := range rows.FieldDescriptions() {
		rs.Columns = append(rs.Columns, fd.Name)
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rs.Rows)+1, err)
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

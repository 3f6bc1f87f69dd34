package db

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/clinicload/internal/model"
)

// RowSource implements pgx.CopyFromSource over an in-memory batch of rows.
type RowSource struct {
	rows []model.Row
	i    int
}

// NewRowSource creates a CopyFromSource backed by rows.
func NewRowSource(rows []model.Row) *RowSource {
	return &RowSource{rows: rows}
}

// Rows converts a typed batch for NewRowSource.
func Rows[T model.Row](batch []T) []model.Row {
	out := make([]model.Row, len(batch))
	for i, r := range batch {
		out[i] = r
	}
	return out
}

// Next advances to the next row. Returns false after the last row.
func (s *RowSource) Next() bool {
	if s.i >= len(s.rows) {
		return false
	}
	s.i++
	return true
}

// Values returns the current row's values in COPY column order.
func (s *RowSource) Values() ([]any, error) {
	return s.rows[s.i-1].CopyValues(), nil
}

// Err always returns nil; the batch is fully materialized.
func (s *RowSource) Err() error {
	return nil
}

// Compile-time check that RowSource satisfies the interface.
var _ pgx.CopyFromSource = (*RowSource)(nil)

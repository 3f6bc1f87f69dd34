package model

import "time"

// TableSummary captures what happened to one destination table during a run.
type TableSummary struct {
	Table       string
	RowsRead    int
	RowsDropped int // constraint violations
	RowsOrphans int // unresolved natural keys
	RowsCopied  int64
	Duration    time.Duration
}

// RunSummary captures metrics from a single import run.
type RunSummary struct {
	RunID         string
	WindowStart   time.Time
	WindowEnd     time.Time
	Tables        []TableSummary
	LabelUpdates  int
	FailedUpdates int
	DurationTotal time.Duration
}

// RowsCopied sums copied rows across tables.
func (s *RunSummary) RowsCopied() int64 {
	var n int64
	for _, t := range s.Tables {
		n += t.RowsCopied
	}
	return n
}

// Table returns the summary for the named table, or nil.
func (s *RunSummary) Table(name string) *TableSummary {
	for i := range s.Tables {
		if s.Tables[i].Table == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// ResultSet is a query result materialized for export.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

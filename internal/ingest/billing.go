package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/clinicload/internal/export"
	"github.com/gyeh/clinicload/internal/metrics"
	queries "github.com/gyeh/clinicload/internal/sql"
)

// billingProc is one medical-code batch procedure. Dated procedures take the
// last day of the window.
type billingProc struct {
	name  string
	dated bool
}

// BillingProcs run in this order before the report is built.
var BillingProcs = []billingProc{
	{name: "reset_medical_code_tables"},
	{name: "batch_medcode_99202"},
	{name: "batch_medcode_99453_bg"},
	{name: "batch_medcode_99453_bp"},
	{name: "batch_medcode_99454_bg", dated: true},
	{name: "batch_medcode_99454_bp", dated: true},
	{name: "batch_medcode_99457", dated: true},
	{name: "batch_medcode_99458", dated: true},
}

// ErrEmptyReport is returned when the report function yields no columns.
var ErrEmptyReport = errors.New("billing report returned no columns")

// ReportUploader publishes a finished report.
type ReportUploader interface {
	Upload(ctx context.Context, runID, localPath string) (string, error)
}

var _ ReportUploader = (*export.Uploader)(nil)

// BillingOptions tune one billing run.
type BillingOptions struct {
	RunID    string
	Start    time.Time
	End      time.Time
	OutDir   string
	Uploader ReportUploader // nil keeps the report local
	Metrics  *metrics.Recorder
}

// BillingResult describes the report a billing run produced.
type BillingResult struct {
	Path       string
	Rows       int
	FailedCall []string
	S3Key      string
}

// Billing runs the medical-code procedures for the window and writes the
// billing report workbook. A failed procedure is logged and the remaining
// ones still run; only report generation errors are returned.
func Billing(ctx context.Context, dst Destination, opts BillingOptions, log zerolog.Logger) (*BillingResult, error) {
	start := time.Now()
	res := &BillingResult{}
	today := opts.End.Format(time.DateOnly)

	for _, proc := range BillingProcs {
		var ok bool
		if proc.dated {
			ok = dst.Call(ctx, proc.name, today)
		} else {
			ok = dst.Call(ctx, proc.name)
		}
		opts.Metrics.Statement(proc.name, ok)
		if !ok {
			res.FailedCall = append(res.FailedCall, proc.name)
		}
	}

	rs, err := dst.Query(ctx, queries.BillingReport,
		opts.Start.Format(time.DateOnly), opts.End.Format(time.DateOnly))
	if err != nil {
		return res, &PipelineError{Phase: PhaseBilling, Step: StepReport, Err: err}
	}
	if len(rs.Columns) == 0 {
		return res, &PipelineError{Phase: PhaseBilling, Step: StepReport, Err: ErrEmptyReport}
	}

	dir := opts.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, &PipelineError{Phase: PhaseBilling, Step: StepReport, Err: fmt.Errorf("create %s: %w", dir, err)}
	}
	res.Path = filepath.Join(dir, export.ReportFileName)
	res.Rows = len(rs.Rows)
	if err := export.WriteReport(res.Path, rs); err != nil {
		return res, &PipelineError{Phase: PhaseBilling, Step: StepReport, Err: err}
	}

	if opts.Uploader != nil {
		key, err := opts.Uploader.Upload(ctx, opts.RunID, res.Path)
		if err != nil {
			// The local report is already written.
			log.Warn().Err(err).Str("file", res.Path).Msg("report upload failed")
		} else {
			res.S3Key = key
		}
	}

	opts.Metrics.Phase(PhaseBilling, time.Since(start))
	log.Info().
		Str("file", res.Path).
		Int("rows", res.Rows).
		Int("failed_procedures", len(res.FailedCall)).
		Str("s3_key", res.S3Key).
		Str("duration", time.Since(start).String()).
		Msg("billing report written")
	return res, nil
}

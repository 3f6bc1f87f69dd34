package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/clinicload/internal/api"
	"github.com/gyeh/clinicload/internal/db"
	"github.com/gyeh/clinicload/internal/exitcode"
	"github.com/gyeh/clinicload/internal/export"
	"github.com/gyeh/clinicload/internal/ingest"
	"github.com/gyeh/clinicload/internal/logging"
	"github.com/gyeh/clinicload/internal/metrics"
	"github.com/gyeh/clinicload/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load every source into the clinic database",
	RunE:  runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&cfg.ExportPath, "export", "", "Path to the SharePoint patient export CSV (required)")
	f.BoolVar(&cfg.Snapshot, "snapshot", false, "Write each shaped batch to <data-dir>/snapshots")
	f.StringVar(&cfg.SnapshotFormat, "snapshot-format", "xlsx", "Snapshot format: xlsx or parquet")
	f.BoolVar(&cfg.Report, "report", false, "Run billing and write the report after loading")
	f.StringVar(&cfg.TenoviURL, "tenovi-url", "", "Override the Tenovi API base URL")
	_ = importCmd.MarkFlagRequired("export")
	addReportFlags(importCmd)
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel).With().Str("run_id", runID).Logger()
	ctx := context.Background()

	if err := cfg.ValidateImport(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		return exitWith(exitcode.UsageError, err)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		return exitWith(exitcode.DBConnError, err)
	}
	defer pool.Close()
	store := db.NewStore(pool, log)

	dbs := map[string]*source.DB{}
	defer func() {
		for _, d := range dbs {
			d.Close()
		}
	}()
	for _, s := range []struct{ name, dsn string }{
		{"notes", cfg.NotesDSN},
		{"time_log", cfg.TimeDSN},
		{"fulfillment", cfg.FulfillmentDSN},
		{"readings", cfg.ReadingsDSN},
	} {
		d, err := source.Open(ctx, s.name, s.dsn, log)
		if err != nil {
			log.Error().Err(err).Str("source", s.name).Msg("source connection failed")
			return exitWith(exitcode.SourceError, err)
		}
		dbs[s.name] = d
	}

	src := ingest.Sources{
		Patients: ingest.ExportFile(cfg.ExportPath),
		Directory: api.NewGraph(api.GraphConfig{
			TenantID:     cfg.AzureTenantID,
			ClientID:     cfg.AzureClientID,
			ClientSecret: cfg.AzureClientSecret,
		}, log),
		GroupID:     cfg.DirectoryGroupID,
		Notes:       dbs["notes"],
		TimeLog:     dbs["time_log"],
		Fulfillment: dbs["fulfillment"],
		Readings:    dbs["readings"],
	}
	if cfg.TenoviEnabled() {
		src.Vendor = api.NewTenovi(cfg.TenoviURL, cfg.TenoviDomain, cfg.TenoviAPIKey, log)
	} else {
		log.Info().Msg("tenovi credentials not set, skipping vendor measurements")
	}

	var snaps *export.Snapshotter
	if cfg.Snapshot {
		snaps, err = export.NewSnapshotter(filepath.Join(cfg.DataDir, "snapshots"), cfg.SnapshotFormat, log)
		if err != nil {
			log.Error().Err(err).Msg("snapshot setup failed")
			return exitWith(exitcode.ConfigError, err)
		}
	}

	rec := metrics.New()
	summary, err := ingest.Run(ctx, store, src, ingest.Options{
		RunID:         runID,
		WindowStart:   cfg.WindowStart,
		WindowEnd:     cfg.WindowEnd,
		Vocabulary:    cfg.Vocabulary,
		NoteOverrides: cfg.NoteOverrides,
		Snapshots:     snaps,
		Metrics:       rec,
	}, log)
	if err != nil {
		writeMetrics(rec, log)
		var pe *ingest.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Str("step", pe.Step).Msg("import failed")
		} else {
			log.Error().Err(err).Msg("import failed")
		}
		return exitWith(importExitCode(err), err)
	}

	fmt.Printf("Import complete: %d rows copied across %d tables, %d/%d label updates (%.1fs)\n",
		summary.RowsCopied(), len(summary.Tables), summary.LabelUpdates,
		summary.LabelUpdates+summary.FailedUpdates, summary.DurationTotal.Seconds())

	if cfg.Report {
		if err := runBilling(ctx, store, runID, rec, log); err != nil {
			return err
		}
	}
	writeMetrics(rec, log)
	return nil
}

// importExitCode maps a failed phase to the process exit code.
func importExitCode(err error) int {
	var se *api.StatusError
	if errors.As(err, &se) {
		return exitcode.APIError
	}
	var pe *ingest.PipelineError
	if !errors.As(err, &pe) {
		return exitcode.LoadError
	}
	switch {
	case pe.Phase == ingest.PhaseBilling:
		return exitcode.BillingError
	case pe.Step == ingest.StepExtract && pe.Phase == ingest.PhaseUsers:
		return exitcode.APIError
	case pe.Step == ingest.StepExtract:
		return exitcode.SourceError
	default:
		return exitcode.LoadError
	}
}

// runBilling writes the billing report and uploads it when a bucket is set.
func runBilling(ctx context.Context, dst ingest.Destination, runID string, rec *metrics.Recorder, log zerolog.Logger) error {
	opts := ingest.BillingOptions{
		RunID:   runID,
		Start:   cfg.WindowStart,
		End:     cfg.WindowEnd,
		OutDir:  cfg.DataDir,
		Metrics: rec,
	}
	if cfg.ReportBucket != "" {
		up, err := export.NewUploader(ctx, export.S3Config{
			Bucket:          cfg.ReportBucket,
			Prefix:          cfg.ReportPrefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			PathStyle:       cfg.S3Endpoint != "",
		})
		if err != nil {
			log.Error().Err(err).Msg("s3 setup failed")
			return exitWith(exitcode.ConfigError, err)
		}
		opts.Uploader = up
	}

	res, err := ingest.Billing(ctx, dst, opts, log)
	if err != nil {
		writeMetrics(rec, log)
		log.Error().Err(err).Msg("billing failed")
		return exitWith(exitcode.BillingError, err)
	}
	fmt.Printf("Billing report: %s (%d rows, %d failed procedures)\n", res.Path, res.Rows, len(res.FailedCall))
	if res.S3Key != "" {
		fmt.Printf("Uploaded: s3://%s/%s\n", cfg.ReportBucket, res.S3Key)
	}
	return nil
}

func writeMetrics(rec *metrics.Recorder, log zerolog.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	rec.Finish(time.Now())
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn().Err(err).Msg("metrics not written")
	}
}

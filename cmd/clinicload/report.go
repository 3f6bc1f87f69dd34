package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gyeh/clinicload/internal/db"
	"github.com/gyeh/clinicload/internal/exitcode"
	"github.com/gyeh/clinicload/internal/logging"
	"github.com/gyeh/clinicload/internal/metrics"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the billing procedures and write the billing report",
	RunE:  runReport,
}

func init() {
	addReportFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel).With().Str("run_id", runID).Logger()
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		return exitWith(exitcode.UsageError, err)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		return exitWith(exitcode.DBConnError, err)
	}
	defer pool.Close()

	rec := metrics.New()
	if err := runBilling(ctx, db.NewStore(pool, log), runID, rec, log); err != nil {
		return err
	}
	writeMetrics(rec, log)
	return nil
}

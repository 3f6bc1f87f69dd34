package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinicload/internal/config"
	"github.com/gyeh/clinicload/internal/exitcode"
	"github.com/gyeh/clinicload/internal/logging"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "clinicload",
	Short: "Clinic patient, device, reading and note loader",
	Long: "Extracts the SharePoint patient export, directory users, device fulfillment, " +
		"vital readings and notes, normalizes them and appends them to the clinic database, " +
		"then builds the monthly billing report.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", "", "Clinic database connection string (or set "+config.EnvDSN+")")
	pf.StringVar(&cfg.ConfigFile, "config", "", "YAML file with vocabulary and note overrides")
	pf.StringVar(&cfg.DataDir, "data-dir", "data", "Directory for reports and snapshots")
	pf.StringVar(&cfg.Start, "start", "", "First day of the window, YYYY-MM-DD (default: first day of last month)")
	pf.StringVar(&cfg.End, "end", "", "Last day of the window, YYYY-MM-DD (default: last day of last month)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// loadConfig layers .env, environment and the config file under the flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Error().Err(err).Msg("failed to load .env")
		return exitWith(exitcode.ConfigError, err)
	}
	cfg.ApplyEnv()
	if err := cfg.Load(time.Now()); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return exitWith(exitcode.ConfigError, err)
	}
	return nil
}

// addReportFlags registers the billing report destination flags on cmd.
func addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfg.ReportBucket, "s3-bucket", "", "Upload the billing report to this bucket (or set "+config.EnvReportBucket+")")
	f.StringVar(&cfg.ReportPrefix, "s3-prefix", "billing", "Key prefix for uploaded reports")
	f.StringVar(&cfg.S3Region, "s3-region", "us-east-1", "S3 region")
	f.StringVar(&cfg.S3Endpoint, "s3-endpoint", "", "Custom S3 endpoint (path-style addressing is used)")
	f.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
}

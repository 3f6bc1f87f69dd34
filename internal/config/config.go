package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/clinicload/internal/model"
	"github.com/gyeh/clinicload/internal/normalize"
)

// DateLayout is the layout of --start and --end.
const DateLayout = "2006-01-02"

// Config holds all runtime configuration for a clinicload run.
type Config struct {
	DSN            string // clinic destination database
	NotesDSN       string
	TimeDSN        string
	FulfillmentDSN string
	ReadingsDSN    string

	ExportPath string // SharePoint patient export CSV
	DataDir    string // report and snapshot output
	ConfigFile string
	LogFormat  string // "text" or "json"
	LogLevel   string

	Start string // raw --start
	End   string // raw --end

	Snapshot       bool
	SnapshotFormat string // "xlsx" or "parquet"

	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
	DirectoryGroupID  string

	TenoviDomain string
	TenoviAPIKey string
	TenoviURL    string

	ReportBucket string
	ReportPrefix string
	S3Region     string
	S3Endpoint   string // optional, e.g. MinIO
	S3AccessKey  string
	S3SecretKey  string

	MetricsFile string
	Report      bool // run billing after import

	// Resolved by Load.
	WindowStart   time.Time
	WindowEnd     time.Time
	Vocabulary    *normalize.Vocabulary
	NoteOverrides []model.NoteOverride
}

// fileConfig is the on-disk YAML structure.
type fileConfig struct {
	States        []normalize.Keyword       `yaml:"states"`
	Insurance     []normalize.KeywordGroups `yaml:"insurance"`
	Race          []normalize.KeywordGroups `yaml:"race"`
	Relationship  []normalize.Keyword       `yaml:"relationship"`
	NoteOverrides []model.NoteOverride      `yaml:"note_overrides"`
}

// Environment variables consulted for settings not given as flags.
const (
	EnvDSN               = "CLINIC_DB_URL"
	EnvNotesDSN          = "NOTES_DB_URL"
	EnvTimeDSN           = "TIME_DB_URL"
	EnvFulfillmentDSN    = "FULFILLMENT_DB_URL"
	EnvReadingsDSN       = "READINGS_DB_URL"
	EnvAzureTenantID     = "AZURE_TENANT_ID"
	EnvAzureClientID     = "AZURE_CLIENT_ID"
	EnvAzureClientSecret = "AZURE_CLIENT_SECRET"
	EnvDirectoryGroupID  = "DIRECTORY_GROUP_ID"
	EnvTenoviDomain      = "TENOVI_CLIENT_DOMAIN"
	EnvTenoviAPIKey      = "TENOVI_API_KEY"
	EnvReportBucket      = "REPORT_S3_BUCKET"
	EnvS3AccessKey       = "REPORT_S3_ACCESS_KEY_ID"
	EnvS3SecretKey       = "REPORT_S3_SECRET_ACCESS_KEY"
)

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv fills every empty setting from its environment variable.
func (c *Config) ApplyEnv() {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&c.DSN, EnvDSN)
	fill(&c.NotesDSN, EnvNotesDSN)
	fill(&c.TimeDSN, EnvTimeDSN)
	fill(&c.FulfillmentDSN, EnvFulfillmentDSN)
	fill(&c.ReadingsDSN, EnvReadingsDSN)
	fill(&c.AzureTenantID, EnvAzureTenantID)
	fill(&c.AzureClientID, EnvAzureClientID)
	fill(&c.AzureClientSecret, EnvAzureClientSecret)
	fill(&c.DirectoryGroupID, EnvDirectoryGroupID)
	fill(&c.TenoviDomain, EnvTenoviDomain)
	fill(&c.TenoviAPIKey, EnvTenoviAPIKey)
	fill(&c.ReportBucket, EnvReportBucket)
	fill(&c.S3AccessKey, EnvS3AccessKey)
	fill(&c.S3SecretKey, EnvS3SecretKey)
}

// LoadFromFile reads a YAML config file and merges its vocabulary and note
// overrides into Config. Lists left out of the file keep their defaults.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if err := fc.validate(); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	c.Vocabulary = normalize.NewVocabulary(fc.States, fc.Insurance, fc.Race, fc.Relationship)
	c.NoteOverrides = fc.NoteOverrides
	return nil
}

func (fc *fileConfig) validate() error {
	for i, k := range append(append([]normalize.Keyword{}, fc.States...), fc.Relationship...) {
		if k.Label == "" || k.Keyword == "" {
			return fmt.Errorf("keyword entry %d: label and keyword are required", i+1)
		}
	}
	for _, g := range append(append([]normalize.KeywordGroups{}, fc.Insurance...), fc.Race...) {
		if g.Label == "" || len(g.Groups) == 0 {
			return fmt.Errorf("keyword group %q: label and at least one group are required", g.Label)
		}
	}
	for i, o := range fc.NoteOverrides {
		if len(o.Authors) == 0 {
			return fmt.Errorf("note override %d: authors are required", i+1)
		}
		if o.NoteType == "" && o.CallTimeSeconds == nil {
			return fmt.Errorf("note override %d: set note_type or call_time_seconds", i+1)
		}
		if o.CallTimeSeconds != nil && *o.CallTimeSeconds < 0 {
			return fmt.Errorf("note override %d: call_time_seconds must not be negative", i+1)
		}
	}
	return nil
}

// Load resolves the date window, reads the config file if one is set, and
// applies defaults.
func (c *Config) Load(now time.Time) error {
	start, end, err := ParseWindow(c.Start, c.End, now)
	if err != nil {
		return err
	}
	c.WindowStart, c.WindowEnd = start, end

	if c.ConfigFile != "" {
		if err := c.LoadFromFile(c.ConfigFile); err != nil {
			return err
		}
	}
	if c.Vocabulary == nil {
		c.Vocabulary = normalize.DefaultVocabulary()
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.SnapshotFormat == "" {
		c.SnapshotFormat = "xlsx"
	}
	return nil
}

// ParseWindow parses the inclusive reporting window. The end date covers its
// whole day. With neither bound set the previous calendar month is used.
func ParseWindow(start, end string, now time.Time) (time.Time, time.Time, error) {
	if start == "" && end == "" {
		s, e := LastBillingCycle(now)
		return s, EndOfDay(e), nil
	}
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--start and --end must be given together")
	}
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start %q: want YYYY-MM-DD", start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --end %q: want YYYY-MM-DD", end)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end %s is before --start %s", end, start)
	}
	return s, EndOfDay(e), nil
}

// LastBillingCycle returns the first and last day of the month before now.
func LastBillingCycle(now time.Time) (time.Time, time.Time) {
	firstThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	first := firstThisMonth.AddDate(0, -1, 0)
	last := firstThisMonth.AddDate(0, 0, -1)
	return first, last
}

// EndOfDay returns the last instant of t's day.
func EndOfDay(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Validate checks settings every command needs.
func (c *Config) Validate() error {
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("--log-format must be text or json")
	}
	if c.SnapshotFormat != "" && c.SnapshotFormat != "xlsx" && c.SnapshotFormat != "parquet" {
		return fmt.Errorf("--snapshot-format must be xlsx or parquet")
	}
	return nil
}

// ValidateExport checks that the patient export is readable.
func (c *Config) ValidateExport() error {
	if c.ExportPath == "" {
		return fmt.Errorf("--export is required")
	}
	if _, err := os.Stat(c.ExportPath); err != nil {
		return fmt.Errorf("export not accessible: %w", err)
	}
	return nil
}

// ValidateWithDSN checks the base settings plus the destination DSN.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or %s is required", EnvDSN)
	}
	return nil
}

// ValidateImport checks everything an import run reads from.
func (c *Config) ValidateImport() error {
	if err := c.ValidateWithDSN(); err != nil {
		return err
	}
	if err := c.ValidateExport(); err != nil {
		return err
	}
	required := []struct{ val, name string }{
		{c.NotesDSN, EnvNotesDSN},
		{c.TimeDSN, EnvTimeDSN},
		{c.FulfillmentDSN, EnvFulfillmentDSN},
		{c.ReadingsDSN, EnvReadingsDSN},
		{c.AzureTenantID, EnvAzureTenantID},
		{c.AzureClientID, EnvAzureClientID},
		{c.AzureClientSecret, EnvAzureClientSecret},
		{c.DirectoryGroupID, EnvDirectoryGroupID},
	}
	var missing []string
	for _, r := range required {
		if r.val == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing settings: %v", missing)
	}
	return nil
}

// TenoviEnabled reports whether vendor API credentials are configured.
func (c *Config) TenoviEnabled() bool {
	return c.TenoviDomain != "" && c.TenoviAPIKey != ""
}

package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/gitcensus/schema"
)

// Default values for configuration.
const (
	DefaultIntervalDays = 7
	DefaultFromDate     = "2015-12-06T00:00:00.000Z"
	DefaultGitLabURL    = "https://gitlab.com/"
	DefaultSnapshotFile = ".all_history"
	GitLabTokenLength   = 20
	GitLabTokenEnv      = "GITLAB_API"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for collection and reporting.
// This struct is the "final, validated" config.
type Config struct {
	Provider    schema.ProviderKind
	GitLabURL   string
	GitLabToken string // Please use env var as this is plaintext
	LocalRoot   string

	StartTime         time.Time
	EndTime           time.Time
	IntervalDays      int
	Anonymize         bool
	IncludeDuplicates bool
	ReferenceData     string

	Output     schema.OutputMode
	OutputFile string
	OutputDir  string
	Width      int // Terminal width override (0 = auto-detect)
	Quiet      bool
	UseColors  bool

	SnapshotBackend schema.DatabaseBackend
	SnapshotConnect string // Please use env var as this is plaintext

	RunsBackend schema.DatabaseBackend
	RunsConnect string // Please use env var as this is plaintext

	MetricsFile string
	Fresh       bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Provider          string `mapstructure:"provider"`
	GitLabURL         string `mapstructure:"gitlab-url"`
	GitLabToken       string `mapstructure:"gitlab-token"`
	LocalRoot         string `mapstructure:"local-root"`
	Start             string `mapstructure:"start"`
	End               string `mapstructure:"end"`
	Interval          int    `mapstructure:"interval"`
	Anonymize         bool   `mapstructure:"anonymize"`
	IncludeDuplicates bool   `mapstructure:"include-duplicates"`
	ReferenceData     string `mapstructure:"reference-data"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	OutputDir         string `mapstructure:"output-dir"`
	Width             int    `mapstructure:"width"`
	Quiet             bool   `mapstructure:"quiet"`
	Color             string `mapstructure:"color"`
	SnapshotBackend   string `mapstructure:"snapshot-backend"`
	SnapshotConnect   string `mapstructure:"snapshot-connect"`
	RunsBackend       string `mapstructure:"runs-backend"`
	RunsConnect       string `mapstructure:"runs-connect"`
	MetricsFile       string `mapstructure:"metrics-file"`

	// --- Fields from reportCmd.Flags() ---
	Fresh bool `mapstructure:"fresh"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithTimeWindow creates a copy of the Config and sets the new StartTime and EndTime.
func (c *Config) CloneWithTimeWindow(start time.Time, end time.Time) *Config {
	clone := c.Clone()
	clone.StartTime = start
	clone.EndTime = end
	return clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Every returned error wraps ErrConfiguration.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err := processTimeRange(cfg, input, time.Now()); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// ValidateProviderConfig checks the settings needed to list commits.
// It is only required by commands that talk to a provider.
func ValidateProviderConfig(cfg *Config) error {
	switch cfg.Provider {
	case schema.GitLabProvider:
		if err := ValidateGitLabToken(cfg.GitLabToken); err != nil {
			return err
		}
		if _, err := url.ParseRequestURI(cfg.GitLabURL); err != nil {
			return fmt.Errorf("%w: invalid gitlab-url %q: %w", ErrConfiguration, cfg.GitLabURL, err)
		}
	case schema.LocalProvider:
		if cfg.LocalRoot == "" {
			return fmt.Errorf("%w: local-root is required when using the %s provider", ErrConfiguration, cfg.Provider)
		}
	}
	return nil
}

// ValidateGitLabToken checks that a personal access token is present and well-formed.
func ValidateGitLabToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: no GitLab token; set --gitlab-token or the %s environment variable", ErrConfiguration, GitLabTokenEnv)
	}
	if len(token) != GitLabTokenLength {
		return fmt.Errorf("%w: GitLab token must be %d characters (received %d)", ErrConfiguration, GitLabTokenLength, len(token))
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings
// for the networked backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.FileBackend, schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.MongoBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "mongodb://") && !strings.HasPrefix(connStr, "mongodb+srv://") {
			return fmt.Errorf("MongoDB connection string must start with 'mongodb://' or 'mongodb+srv://'")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.Contains(connStr, ":") {
			return fmt.Errorf("Redis connection string must be 'host:port' or a 'redis://' URL")
		}
	}
	return nil
}

// validateBackendConfigs validates snapshot and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Snapshot Backend Validation ---
	cfg.SnapshotBackend = schema.DatabaseBackend(strings.ToLower(input.SnapshotBackend))
	if cfg.SnapshotBackend == "" {
		cfg.SnapshotBackend = schema.FileBackend
	}
	if _, ok := schema.ValidSnapshotBackends[cfg.SnapshotBackend]; !ok {
		return fmt.Errorf("invalid snapshot backend '%s'. must be file, sqlite, mysql, postgresql, mongodb, redis, none", input.SnapshotBackend)
	}
	cfg.SnapshotConnect = input.SnapshotConnect
	if cfg.SnapshotBackend == schema.FileBackend || cfg.SnapshotBackend == schema.SQLiteBackend {
		cfg.SnapshotConnect = ExpandPath(cfg.SnapshotConnect)
	}
	if err := ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotConnect); err != nil {
		return err
	}

	// --- Run Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidRunBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsConnect = input.RunsConnect
	if cfg.RunsBackend == schema.SQLiteBackend {
		cfg.RunsConnect = ExpandPath(cfg.RunsConnect)
	}
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.SnapshotBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		snapshotPath := cfg.SnapshotConnect
		if snapshotPath == "" {
			snapshotPath = GetSnapshotDBFilePath()
		}
		runsPath := cfg.RunsConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if snapshotPath == runsPath {
			return fmt.Errorf("snapshot and run storage must use different SQLite database files. Both resolve to %q", snapshotPath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-time, non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.GitLabToken = strings.TrimSpace(input.GitLabToken)
	cfg.Anonymize = input.Anonymize
	cfg.IncludeDuplicates = input.IncludeDuplicates
	cfg.Width = input.Width
	cfg.Quiet = input.Quiet
	cfg.Fresh = input.Fresh
	cfg.OutputFile = ExpandPath(input.OutputFile)
	cfg.OutputDir = ExpandPath(input.OutputDir)
	cfg.ReferenceData = ExpandPath(input.ReferenceData)
	cfg.LocalRoot = ExpandPath(input.LocalRoot)
	cfg.MetricsFile = ExpandPath(input.MetricsFile)
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	cfg.GitLabURL = input.GitLabURL
	if cfg.GitLabURL == "" {
		cfg.GitLabURL = DefaultGitLabURL
	}

	colorFlag := input.Color
	if colorFlag == "" {
		colorFlag = "yes"
	}
	colors, err := ParseBoolString(colorFlag)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Provider Validation ---
	cfg.Provider = schema.ProviderKind(strings.ToLower(input.Provider))
	if cfg.Provider == "" {
		cfg.Provider = schema.GitLabProvider
	}
	if _, ok := schema.ValidProviders[cfg.Provider]; !ok {
		return fmt.Errorf("invalid provider '%s'. must be gitlab, local", input.Provider)
	}

	// --- 2. Interval Validation ---
	if input.Interval <= 0 {
		return fmt.Errorf("interval must be greater than 0 days (received %d)", input.Interval)
	}
	cfg.IntervalDays = input.Interval

	// --- 3. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, chartjs, html, parquet", input.Output)
	}

	if cfg.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", cfg.Width)
	}
	return nil
}

// processTimeRange handles the date parsing and time range validation.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.EndTime = now
	cfg.StartTime, _ = time.Parse(DateTimeFormat, DefaultFromDate)

	if input.Start != "" {
		t, err := ParseTimeValue(input.Start, now)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		cfg.StartTime = t
	}

	if input.End != "" {
		t, err := ParseTimeValue(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		cfg.EndTime = t
	}

	if cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

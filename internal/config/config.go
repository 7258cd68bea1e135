package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "gradesync/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Paths         PathsConfig         `yaml:"paths" envconfig:"PATHS"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
	Reconcile     ReconcileConfig     `yaml:"reconcile" envconfig:"RECONCILE"`
	Roster        RosterConfig        `yaml:"roster" envconfig:"ROSTER"`

	// file the configuration was read from, empty when none was found
	source string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against the directory of the configuration file, or the working
// directory when there is none.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// ObservabilityConfig controls tracing and the metrics textfile.
type ObservabilityConfig struct {
	Tracing     string `yaml:"tracing" envconfig:"TRACING" validate:"oneof=none stdout"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// RosterConfig drives the completer and returning-student comparisons.
type RosterConfig struct {
	CompletersIdentityColumn string   `yaml:"completers_identity_column" envconfig:"COMPLETERS_IDENTITY_COLUMN" validate:"required"`
	ReturningIdentityColumn  string   `yaml:"returning_identity_column" envconfig:"RETURNING_IDENTITY_COLUMN" validate:"required"`
	SectionColumn            string   `yaml:"section_column" envconfig:"SECTION_COLUMN"`
	GradeColumn              string   `yaml:"grade_column" envconfig:"GRADE_COLUMN"`
	GradeOrder               []string `yaml:"grade_order" envconfig:"GRADE_ORDER"`
}

// Load reads the first configuration file found in the default locations,
// applies GRADESYNC_* environment overrides and validates the result.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit file. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML decodes a YAML file over the current values
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigError("failed to read config file", err).
			WithContext("path", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return apperrors.NewConfigError("failed to parse config file", err).
			WithContext("path", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	c.source = abs
	return nil
}

// Source returns the configuration file in use, or "" when running on
// defaults and environment only.
func (c *Config) Source() string {
	return c.source
}

// BaseDir is the directory relative paths are resolved against.
func (c *Config) BaseDir() string {
	if c.source != "" {
		return filepath.Dir(c.source)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Validate checks every section eagerly. The first failure is returned as a
// CONFIG error naming the offending key.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !apperrors.As(err, &verrs) || len(verrs) == 0 {
			return apperrors.NewConfigError("config validation failed", err)
		}
		fe := verrs[0]
		key := keyFromNamespace(fe.Namespace())
		if fe.Tag() == "required" || fe.Tag() == "required_unless" || fe.Tag() == "min" {
			return apperrors.NewMissingKeyError(key)
		}
		return apperrors.NewConfigError(formatValidationError(key, fe), nil).
			WithContext("key", key)
	}
	return c.Reconcile.validateMapping()
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Use YAML tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// keyFromNamespace turns "Config.reconcile.identity_columns.old_side" into
// the YAML key path "reconcile.identity_columns.old_side".
func keyFromNamespace(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// formatValidationError formats validation error messages
func formatValidationError(key string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fmt.Sprint(fe.Value()))
	case "required":
		return fmt.Sprintf("%s is required", key)
	default:
		return fmt.Sprintf("%s failed validation %q", key, fe.Tag())
	}
}

// findConfigFile returns the path to the config file
func findConfigFile() string {
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env
	}
	for _, location := range DefaultConfigLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return "" // No config file found, use defaults and env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			FilePath: filepath.Join(DefaultLogsDir, DefaultLogFile),
		},
		Paths: PathsConfig{
			DataDir: DefaultDataDir,
			LogsDir: DefaultLogsDir,
		},
		Observability: ObservabilityConfig{
			Tracing: "none",
		},
		Reconcile: ReconcileConfig{
			IdentityColumns: IdentityColumns{OldSide: "SIS Login ID", NewSide: "Email"},
			NameColumns:     SideColumns{OldSide: "Student", NewSide: "Full Name"},
			EmailColumns:    SideColumns{OldSide: "SIS Login ID", NewSide: "Email"},
			HeaderAnchors:   []string{"Full Name", "Email"},
			SideHeaderAnchors: map[string][]string{
				"old_side": {"Student", "SIS Login ID"},
			},
			StatusColumns:       []string{"Status", "CodePath Certificate Status"},
			ExcludedStatuses:    []string{"Withdrawn", "Dropped"},
			IgnoredIdentities:   []string{"Points Possible"},
			UnsubmittedPrefixes: []string{"Project", "Lab", "Unit"},
			OutputSuffixes:      DefaultOutputSuffixes(),
		},
		Roster: RosterConfig{
			CompletersIdentityColumn: "Name",
			ReturningIdentityColumn:  "SIS Login ID",
			SectionColumn:            "Section",
			GradeColumn:              "Unposted Current Grade",
			GradeOrder:               append([]string(nil), LetterGradeOrder...),
		},
	}
}

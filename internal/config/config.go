// Package config handles configuration loading and validation for the
// query core's REPL and EXPLAIN command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the query-planning core.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Planner PlannerConfig `mapstructure:"planner"`
	Log     LogConfig     `mapstructure:"log"`
}

// StorageConfig names the on-disk data directory the REPL expects to find
// initialized before it starts. The core itself holds no table rows on
// disk (internal/physmem is process-local memory), but the data
// directory is still where a seed file and future persistence would
// live, so it is validated the same way the teacher's storage engine
// validates its own.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// CatalogConfig configures the in-memory table registry's startup state.
type CatalogConfig struct {
	// SeedFile, if set, is a YAML table-schema file loaded at startup
	// (see pkg/catalog's seed loader) so the REPL has something to
	// SELECT/EXPLAIN against without a real storage engine attached.
	SeedFile string `mapstructure:"seed_file"`
}

// PlannerConfig holds planner settings. Both values are validated by
// Validate and shown by the REPL's \status/\config commands; the
// in-memory reference executor (internal/physmem) reads neither.
type PlannerConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	// CorrelatedSubqueryLimit is a configured cap on correlated sub-select
	// re-opens per outer query. Nothing enforces it: re-opens are not
	// counted or limited.
	CorrelatedSubqueryLimit int `mapstructure:"correlated_subquery_limit"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{DataDir: "./data"},
		Catalog: CatalogConfig{SeedFile: ""},
		Planner: PlannerConfig{
			BatchSize:               256,
			CorrelatedSubqueryLimit: 10000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads configuration from file and environment, falling back to
// defaults for anything unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("storage.data_dir", cfg.Storage.DataDir)
	v.SetDefault("catalog.seed_file", cfg.Catalog.SeedFile)
	v.SetDefault("planner.batch_size", cfg.Planner.BatchSize)
	v.SetDefault("planner.correlated_subquery_limit", cfg.Planner.CorrelatedSubqueryLimit)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)

	v.SetEnvPrefix("QCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("qcore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.qcore")
		v.AddConfigPath("/etc/qcore")

		// It's okay if no config file is found - we use defaults
		_ = v.ReadInConfig()
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are sensible.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}
	if c.Planner.BatchSize < 1 {
		return fmt.Errorf("planner.batch_size must be at least 1")
	}
	if c.Planner.CorrelatedSubqueryLimit < 1 {
		return fmt.Errorf("planner.correlated_subquery_limit must be at least 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}

// ValidateDataDir checks that dir exists and was previously initialized
// by InitDataDir.
func ValidateDataDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path is not a directory: %s", dir)
	}

	markerPath := filepath.Join(dir, ".veridicaldb")
	if _, err := os.Stat(markerPath); os.IsNotExist(err) {
		return fmt.Errorf("directory is not a VeridicalDB data directory: %s", dir)
	}

	return nil
}

// InitDataDir creates dir and marks it as an initialized data directory.
// The core keeps no table rows, WAL, or indexes on disk (internal/physmem
// is process-local memory), so unlike the teacher's storage engine this
// creates no subdirectories — only the marker file a seed file or future
// persistence could anchor to.
func InitDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	markerPath := filepath.Join(dir, ".veridicaldb")
	markerContent := []byte("VeridicalDB Data Directory v1\n")
	if err := os.WriteFile(markerPath, markerContent, 0644); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	return nil
}

// CreateDefaultConfig writes a default configuration file for dataDir.
func CreateDefaultConfig(path string, dataDir string) error {
	content := fmt.Sprintf(`# qcore configuration file

storage:
  data_dir: %s

catalog:
  seed_file: ""          # optional YAML table-schema file

planner:
  batch_size: 256
  correlated_subquery_limit: 10000

log:
  level: info            # debug, info, warn, error
  format: text           # text or json
  output: stderr         # stderr, stdout, or file path
`, dataDir)

	return os.WriteFile(path, []byte(content), 0644)
}

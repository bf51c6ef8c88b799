package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.Storage.DataDir != "./data" {
		t.Errorf("Expected default data dir './data', got %s", cfg.Storage.DataDir)
	}

	if cfg.Planner.BatchSize != 256 {
		t.Errorf("Expected default batch size 256, got %d", cfg.Planner.BatchSize)
	}

	if cfg.Planner.CorrelatedSubqueryLimit != 10000 {
		t.Errorf("Expected default correlated subquery limit 10000, got %d", cfg.Planner.CorrelatedSubqueryLimit)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level 'info', got %s", cfg.Log.Level)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		shouldError bool
	}{
		{
			name:        "valid config",
			modify:      func(c *Config) {},
			shouldError: false,
		},
		{
			name: "empty data dir",
			modify: func(c *Config) {
				c.Storage.DataDir = ""
			},
			shouldError: true,
		},
		{
			name: "invalid batch size",
			modify: func(c *Config) {
				c.Planner.BatchSize = 0
			},
			shouldError: true,
		},
		{
			name: "invalid correlated subquery limit",
			modify: func(c *Config) {
				c.Planner.CorrelatedSubqueryLimit = 0
			},
			shouldError: true,
		},
		{
			name: "invalid log level",
			modify: func(c *Config) {
				c.Log.Level = "invalid"
			},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := Load("")
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.shouldError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestInitDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "testdb")

	err := InitDataDir(dataDir)
	if err != nil {
		t.Fatalf("InitDataDir failed: %v", err)
	}

	// InitDataDir writes only the marker file; it creates no subdirectories.
	unexpectedDirs := []string{"wal", "tables", "indexes", "temp"}
	for _, dir := range unexpectedDirs {
		path := filepath.Join(dataDir, dir)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Expected no %s subdirectory, but it exists", dir)
		}
	}

	markerPath := filepath.Join(dataDir, ".veridicaldb")
	if _, err := os.Stat(markerPath); os.IsNotExist(err) {
		t.Error("Expected marker file .veridicaldb to exist")
	}

	if err := ValidateDataDir(dataDir); err != nil {
		t.Errorf("ValidateDataDir failed: %v", err)
	}
}

func TestValidateDataDir_NotExists(t *testing.T) {
	err := ValidateDataDir("/nonexistent/path")
	if err == nil {
		t.Error("Expected error for nonexistent directory")
	}
}

func TestValidateDataDir_NotInitialized(t *testing.T) {
	tmpDir := t.TempDir()
	err := ValidateDataDir(tmpDir)
	if err == nil {
		t.Error("Expected error for uninitialized directory")
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "qcore.yaml")
	dataDir := filepath.Join(tmpDir, "data")

	if err := CreateDefaultConfig(cfgPath, dataDir); err != nil {
		t.Fatalf("CreateDefaultConfig failed: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}
	if cfg.Storage.DataDir != dataDir {
		t.Errorf("Expected data dir %s, got %s", dataDir, cfg.Storage.DataDir)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test.yaml")

	content := `
storage:
  data_dir: /custom/path
catalog:
  seed_file: seed.yaml
planner:
  batch_size: 64
  correlated_subquery_limit: 50
log:
  level: debug
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Storage.DataDir != "/custom/path" {
		t.Errorf("Expected data dir /custom/path, got %s", cfg.Storage.DataDir)
	}
	if cfg.Catalog.SeedFile != "seed.yaml" {
		t.Errorf("Expected seed file seed.yaml, got %s", cfg.Catalog.SeedFile)
	}
	if cfg.Planner.BatchSize != 64 {
		t.Errorf("Expected batch size 64, got %d", cfg.Planner.BatchSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
}

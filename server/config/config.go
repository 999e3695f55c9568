package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Engine  EngineConfig  `yaml:"engine"`
	Import  ImportConfig  `yaml:"import"`
	HTTP    HTTPConfig    `yaml:"http"`
	Query   QueryConfig   `yaml:"query"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`      // "json" or "console"
	FilePath   string `yaml:"file_path"`   // Path to log file
	Console    bool   `yaml:"console"`     // Whether to log to console
	MaxSize    int    `yaml:"max_size"`    // Max file size in MB
	MaxBackups int    `yaml:"max_backups"` // Max number of backup files
	MaxAge     int    `yaml:"max_age"`     // Max age in days
	Cleanup    bool   `yaml:"cleanup"`     // Whether to cleanup log file on startup
}

// StorageConfig controls where the engine database lives
type StorageConfig struct {
	// DataPath is the writable directory holding the database. Empty means
	// the per-user application directory.
	DataPath string `yaml:"data_path"`
	DBFile   string `yaml:"db_file"`
	Journal  bool   `yaml:"journal"`
}

// EngineConfig holds settings applied to the embedded engine on open
type EngineConfig struct {
	MaxMemoryMB  int `yaml:"max_memory_mb"`
	Threads      int `yaml:"threads"`       // 0 leaves the engine default
	StatsWorkers int `yaml:"stats_workers"` // per-table statistics fan-out
}

// ImportConfig controls file imports
type ImportConfig struct {
	// ReplaceExisting turns imports into CREATE OR REPLACE. When false a
	// name collision is reported by the engine.
	ReplaceExisting bool `yaml:"replace_existing"`
}

// HTTPConfig configures the HTTP API
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// QueryConfig controls the in-process query history
type QueryConfig struct {
	HistoryMaxAge time.Duration `yaml:"history_max_age"`
}

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			FilePath:   "",
			Console:    false,
			MaxSize:    100, // 100MB
			MaxBackups: 3,
			MaxAge:     7, // 7 days
			Cleanup:    false,
		},
		Storage: StorageConfig{
			DataPath: "",
			DBFile:   DefaultDBFile,
			Journal:  true,
		},
		Engine: EngineConfig{
			MaxMemoryMB:  512,
			Threads:      0,
			StatsWorkers: 4,
		},
		Import: ImportConfig{
			ReplaceExisting: false,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Address: DEFAULT_HTTP_ADDRESS,
			Port:    DEFAULT_HTTP_PORT,
		},
		Query: QueryConfig{
			HistoryMaxAge: time.Hour,
		},
	}
}

// LoadConfig loads configuration from a file on top of the defaults
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err).AddContext("path", filename)
	}

	config := LoadDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err).AddContext("path", filename)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads filename if it exists and falls back to defaults
// when it does not. Any other failure is returned.
func LoadConfigOrDefault(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return LoadDefaultConfig(), nil
	}
	return LoadConfig(filename)
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err).AddContext("path", filename)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return errors.New(ErrStorageValidationFailed, "storage validation failed", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return errors.New(ErrEngineValidationFailed, "engine validation failed", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return errors.New(ErrHTTPValidationFailed, "http validation failed", err)
	}

	return nil
}

// Validate validates the storage configuration
func (s *StorageConfig) Validate() error {
	if s.DBFile == "" {
		return errors.New(ErrDBFileRequired, "db_file is required in storage configuration", nil)
	}
	return nil
}

// Validate validates the engine configuration
func (e *EngineConfig) Validate() error {
	if e.MaxMemoryMB < 0 {
		return errors.Newf(errors.CommonValidation, "max_memory_mb must not be negative, got %d", e.MaxMemoryMB)
	}
	if e.Threads < 0 {
		return errors.Newf(errors.CommonValidation, "threads must not be negative, got %d", e.Threads)
	}
	if e.StatsWorkers < 1 {
		return errors.Newf(errors.CommonValidation, "stats_workers must be at least 1, got %d", e.StatsWorkers)
	}
	return nil
}

// Validate validates the HTTP configuration
func (h *HTTPConfig) Validate() error {
	if !h.Enabled {
		return nil
	}
	if !IsValidPort(h.Port) {
		return errors.Newf(errors.CommonValidation, "invalid http port %d", h.Port)
	}
	return nil
}

// GetHTTPListenAddress returns host:port for the HTTP API
func (c *Config) GetHTTPListenAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Address, c.HTTP.Port)
}

// GetStoragePath returns the configured data path, possibly empty
func (c *Config) GetStoragePath() string {
	return c.Storage.DataPath
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls which files are scanned and which checks fail the run
type Config struct {
	ExcludePaths []string `yaml:"exclude_paths"`
	// ForbiddenCalls are "importpath.Func" pairs resolved through each
	// file's imports, so aliasing does not hide them
	ForbiddenCalls []string `yaml:"forbidden_calls"`
	SkipTests      bool     `yaml:"skip_tests"`
	ExitOnUnused   bool     `yaml:"exit_on_unused"`
	ExitOnFindings bool     `yaml:"exit_on_findings"`
	Verbose        bool     `yaml:"verbose"`
}

func defaultConfig() *Config {
	return &Config{
		ExcludePaths: []string{"pkg/errors/", "pkg/sdk/", "scripts/", "_examples/", "vendor/", ".git/"},
		ForbiddenCalls: []string{
			"fmt.Errorf",
			"errors.New",
			"github.com/go-faster/errors.New",
			"github.com/go-faster/errors.Wrap",
			"github.com/go-faster/errors.Wrapf",
		},
		SkipTests:      true,
		ExitOnUnused:   false,
		ExitOnFindings: true,
	}
}

// loadConfig overlays the YAML file at path on the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

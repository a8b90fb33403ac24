// Package config loads vrpack configuration from YAML files and merges
// CLI flag overrides on top of it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents vrpack configuration options
type Config struct {
	// SiteURL is the base URL of the site under test, exported to the
	// visual-diff tool as SITE_URL
	SiteURL string `yaml:"site_url"`

	// BackstopConfig is the path to the BackstopJS config file,
	// relative to WorkDir
	BackstopConfig string `yaml:"backstop_config"`

	// BackstopPath is the backstop executable to invoke
	BackstopPath string `yaml:"backstop_path"`

	// WorkDir is the directory the visual-diff tool runs in
	WorkDir string `yaml:"work_dir"`

	// ReportDir is the directory containing the JSON report files
	ReportDir string `yaml:"report_dir"`

	// HTMLReportDir is where the tool writes its HTML report
	HTMLReportDir string `yaml:"html_report_dir"`

	// OutDir is where the diff summary and packet are written
	OutDir string `yaml:"out_dir"`

	// PromptFile optionally replaces the built-in review prompt
	PromptFile string `yaml:"prompt_file"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Timeout is the maximum duration for the visual-diff tool run
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		SiteURL:        "http://talk-ai-for-qa-in-wordpress.local",
		BackstopConfig: "backstop.json",
		BackstopPath:   "backstop",
		WorkDir:        "backstop",
		ReportDir:      "backstop/backstop_data/json_report",
		HTMLReportDir:  "backstop/backstop_data/html_report",
		OutDir:         "out",
		LogLevel:       "info",
		Timeout:        30 * time.Minute,
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Temporary struct so the timeout can be written as "30m" in YAML
	type yamlConfig struct {
		SiteURL        string `yaml:"site_url"`
		BackstopConfig string `yaml:"backstop_config"`
		BackstopPath   string `yaml:"backstop_path"`
		WorkDir        string `yaml:"work_dir"`
		ReportDir      string `yaml:"report_dir"`
		HTMLReportDir  string `yaml:"html_report_dir"`
		OutDir         string `yaml:"out_dir"`
		PromptFile     string `yaml:"prompt_file"`
		LogLevel       string `yaml:"log_level"`
		Timeout        string `yaml:"timeout"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-empty values from file (merging with defaults)
	if yamlCfg.SiteURL != "" {
		cfg.SiteURL = yamlCfg.SiteURL
	}
	if yamlCfg.BackstopConfig != "" {
		cfg.BackstopConfig = yamlCfg.BackstopConfig
	}
	if yamlCfg.BackstopPath != "" {
		cfg.BackstopPath = yamlCfg.BackstopPath
	}
	if yamlCfg.WorkDir != "" {
		cfg.WorkDir = yamlCfg.WorkDir
	}
	if yamlCfg.ReportDir != "" {
		cfg.ReportDir = yamlCfg.ReportDir
	}
	if yamlCfg.HTMLReportDir != "" {
		cfg.HTMLReportDir = yamlCfg.HTMLReportDir
	}
	if yamlCfg.OutDir != "" {
		cfg.OutDir = yamlCfg.OutDir
	}
	if yamlCfg.PromptFile != "" {
		cfg.PromptFile = yamlCfg.PromptFile
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .vrpack/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".vrpack", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values, so CLI flags take
// precedence over config file settings.
func (c *Config) MergeWithFlags(siteURL, backstopConfig, reportDir, outDir *string, timeout *time.Duration) {
	if siteURL != nil {
		c.SiteURL = *siteURL
	}
	if backstopConfig != nil {
		c.BackstopConfig = *backstopConfig
	}
	if reportDir != nil {
		c.ReportDir = *reportDir
	}
	if outDir != nil {
		c.OutDir = *outDir
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.SiteURL == "" {
		return fmt.Errorf("site_url cannot be empty")
	}
	if c.ReportDir == "" {
		return fmt.Errorf("report_dir cannot be empty")
	}
	if c.OutDir == "" {
		return fmt.Errorf("out_dir cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	// Timeout can be 0 (no timeout) or positive, negative is invalid
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	return nil
}

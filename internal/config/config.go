package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the optional per-repository config file.
const FileName = ".mergetrain.yaml"

// Config holds all configuration for mergetrain.
// It is immutable after creation via LoadConfig().
type Config struct {
	// Git controls how the git CLI is invoked
	Git GitConfig `yaml:"git"`

	// Context holds the default caps for merge context reports
	Context ContextConfig `yaml:"context"`

	// Trains maps a train name to its ordered target branches,
	// e.g. "release": [release/2, release/3, main]
	Trains map[string][]string `yaml:"trains,omitempty"`

	// LogLevel controls log verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFile redirects logs to a file. Empty means stderr.
	LogFile string `yaml:"log_file,omitempty"`
}

// GitConfig controls git invocation.
type GitConfig struct {
	// Command is the path or name of the git binary
	Command string `yaml:"command"`

	// QueryTimeout bounds a single plan or context request ("0" disables)
	QueryTimeout string `yaml:"query_timeout"`
}

// ContextConfig holds defaults applied when a request leaves a cap unset.
type ContextConfig struct {
	// MaxCommits is the number of recent commits shown per side
	MaxCommits int `yaml:"max_commits"`

	// MaxFiles is the number of non-conflicting files shown per side
	MaxFiles int `yaml:"max_files"`
}

// QueryTimeoutDuration parses the query timeout. Zero means no timeout.
func (c *Config) QueryTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Git.QueryTimeout)
}

// LoadConfig loads configuration for the repository at repoRoot.
// It applies defaults, then file values, then environment overrides,
// then validates.
func LoadConfig(repoRoot string) (*Config, error) {
	cfg := DefaultConfig()

	// Missing config file is not an error (use defaults)
	configPath := filepath.Join(repoRoot, FileName)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.LogFile != "" && !filepath.IsAbs(cfg.LogFile) {
		cfg.LogFile = filepath.Join(repoRoot, cfg.LogFile)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

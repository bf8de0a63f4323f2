package config

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
func validateConfig(cfg *Config) error {
	var errs []error

	if cfg.Git.Command == "" {
		errs = append(errs, &ValidationError{
			Field:   "git.command",
			Value:   cfg.Git.Command,
			Message: "must not be empty",
		})
	}

	if d, err := time.ParseDuration(cfg.Git.QueryTimeout); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "git.query_timeout",
			Value:   cfg.Git.QueryTimeout,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	} else if d < 0 {
		errs = append(errs, &ValidationError{
			Field:   "git.query_timeout",
			Value:   cfg.Git.QueryTimeout,
			Message: "must not be negative (0 = no timeout)",
		})
	}

	if cfg.Context.MaxCommits < 0 {
		errs = append(errs, &ValidationError{
			Field:   "context.max_commits",
			Value:   cfg.Context.MaxCommits,
			Message: "must be non-negative",
		})
	}

	if cfg.Context.MaxFiles < 0 {
		errs = append(errs, &ValidationError{
			Field:   "context.max_files",
			Value:   cfg.Context.MaxFiles,
			Message: "must be non-negative",
		})
	}

	// LogLevel must be one of: debug, info, warn, error (case-sensitive)
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of: debug, info, warn, error",
		})
	}

	// Iterate trains in name order so errors are stable
	names := make([]string, 0, len(cfg.Trains))
	for name := range cfg.Trains {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		targets := cfg.Trains[name]
		if name == "" {
			errs = append(errs, &ValidationError{
				Field:   "trains",
				Value:   name,
				Message: "train name must not be empty",
			})
		}
		if len(targets) == 0 {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("trains.%s", name),
				Value:   targets,
				Message: "must list at least one target branch",
			})
		}
		for i, target := range targets {
			if target == "" {
				errs = append(errs, &ValidationError{
					Field:   fmt.Sprintf("trains.%s[%d]", name, i),
					Value:   target,
					Message: "must not be empty",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

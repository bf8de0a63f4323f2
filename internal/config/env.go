package config

import "os"

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "MERGETRAIN_GIT_CMD",
		apply: func(c *Config, v string) {
			c.Git.Command = v
		},
	},
	{
		envVar: "MERGETRAIN_QUERY_TIMEOUT",
		apply: func(c *Config, v string) {
			c.Git.QueryTimeout = v
		},
	},
	{
		envVar: "MERGETRAIN_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.LogLevel = v
		},
	},
	{
		envVar: "MERGETRAIN_LOG_FILE",
		apply: func(c *Config, v string) {
			c.LogFile = v
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}

package config

const (
	DefaultGitCommand   = "git"
	DefaultQueryTimeout = "2m"
	DefaultMaxCommits   = 10
	DefaultMaxFiles     = 20
	DefaultLogLevel     = "info"
)

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	return &Config{
		Git: GitConfig{
			Command:      DefaultGitCommand,
			QueryTimeout: DefaultQueryTimeout,
		},
		Context: ContextConfig{
			MaxCommits: DefaultMaxCommits,
			MaxFiles:   DefaultMaxFiles,
		},
		LogLevel: DefaultLogLevel,
	}
}

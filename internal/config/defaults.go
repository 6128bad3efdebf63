package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "simcheck.yml"

// DefaultExcludes are glob patterns excluded from batch analysis by default.
var DefaultExcludes = []string{
	"vendor/**",
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	"CHANGELOG.md",
	"LICENSE*",
}

// DefaultDataDir returns the directory holding the web session database.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "simcheck")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8080/api",
			TimeoutSeconds: 60,
		},
		Server: ServerConfig{
			Port:            8090,
			DataDir:         DefaultDataDir(),
			CookieName:      "simcheck_session",
			SessionTTLHours: 24,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Batch: BatchConfig{
			Concurrency: 1,
			Include:     []string{"**/*.txt", "**/*.md"},
			Exclude:     DefaultExcludes,
		},
		History: HistoryConfig{
			PageSize: 10,
		},
	}
}

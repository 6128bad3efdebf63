package config

import "time"

// Config is the top-level simcheck configuration, corresponding to
// simcheck.yml.
type Config struct {
	API     APIConfig     `yaml:"api" koanf:"api"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
	Batch   BatchConfig   `yaml:"batch" koanf:"batch"`
	History HistoryConfig `yaml:"history" koanf:"history"`
}

// APIConfig locates the remote analysis API.
type APIConfig struct {
	BaseURL        string `yaml:"base_url" koanf:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ServerConfig holds settings for the web UI.
type ServerConfig struct {
	Port            int    `yaml:"port" koanf:"port"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	DataDir         string `yaml:"data_dir" koanf:"data_dir"`
	CookieName      string `yaml:"cookie_name" koanf:"cookie_name"`
	SessionTTLHours int    `yaml:"session_ttl_hours" koanf:"session_ttl_hours"`
}

// SessionTTL returns the idle lifetime of a web session.
func (s ServerConfig) SessionTTL() time.Duration {
	return time.Duration(s.SessionTTLHours) * time.Hour
}

// LogConfig selects the log output.
type LogConfig struct {
	Format string `yaml:"format" koanf:"format"` // text or json
	Level  string `yaml:"level" koanf:"level"`
}

// BatchConfig controls batch analysis.
type BatchConfig struct {
	Concurrency int      `yaml:"concurrency" koanf:"concurrency"`
	Include     []string `yaml:"include" koanf:"include"`
	Exclude     []string `yaml:"exclude" koanf:"exclude"`
	// RequestsPerMinute caps the request rate; 0 means unlimited.
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`
}

// HistoryConfig controls history paging.
type HistoryConfig struct {
	PageSize int `yaml:"page_size" koanf:"page_size"`
}

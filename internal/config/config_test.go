package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.API.BaseURL != "http://localhost:8080/api" {
		t.Errorf("expected default base_url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout() != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", cfg.API.Timeout())
	}
	if cfg.Server.SessionTTL() != 24*time.Hour {
		t.Errorf("expected 24h session ttl, got %v", cfg.Server.SessionTTL())
	}
	if cfg.History.PageSize != 10 {
		t.Errorf("expected default page_size 10, got %d", cfg.History.PageSize)
	}
	if cfg.Batch.Concurrency != 1 {
		t.Errorf("expected default concurrency 1, got %d", cfg.Batch.Concurrency)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simcheck.yml")

	original := DefaultConfig()
	original.API.BaseURL = "https://similarity.example.com/api"
	original.API.TimeoutSeconds = 15
	original.Server.Port = 9000
	original.Server.AllowAllOrigins = true
	original.Log.Format = "json"
	original.Batch.Include = []string{"**/*.txt", "**/*.md", "**/*.rst"}
	original.History.PageSize = 25

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.API != original.API {
		t.Errorf("api: got %+v, want %+v", loaded.API, original.API)
	}
	if loaded.Server != original.Server {
		t.Errorf("server: got %+v, want %+v", loaded.Server, original.Server)
	}
	if loaded.Log != original.Log {
		t.Errorf("log: got %+v, want %+v", loaded.Log, original.Log)
	}
	if loaded.History.PageSize != 25 {
		t.Errorf("page_size: got %d", loaded.History.PageSize)
	}
	if len(loaded.Batch.Include) != len(original.Batch.Include) {
		t.Fatalf("include length: got %d, want %d", len(loaded.Batch.Include), len(original.Batch.Include))
	}
	for i, v := range loaded.Batch.Include {
		if v != original.Batch.Include[i] {
			t.Errorf("include[%d]: got %q, want %q", i, v, original.Batch.Include[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simcheck.yml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: http://10.0.0.5:8080/api\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:8080/api" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 60 {
		t.Errorf("unset keys should keep defaults, timeout = %d", cfg.API.TimeoutSeconds)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simcheck.yml")
	if err := os.WriteFile(path, []byte("api: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simcheck.yml")
	if err := DefaultConfig().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("SIMCHECK_API_BASE_URL", "https://override.example.com/api")
	t.Setenv("SIMCHECK_SERVER_PORT", "9123")
	t.Setenv("SIMCHECK_LOG_LEVEL", "debug")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.API.BaseURL != "https://override.example.com/api" {
		t.Errorf("base_url override failed: got %q", loaded.API.BaseURL)
	}
	if loaded.Server.Port != 9123 {
		t.Errorf("port override failed: got %d", loaded.Server.Port)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("level override failed: got %q", loaded.Log.Level)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SIMCHECK_API_BASE_URL", "api.base_url"},
		{"SIMCHECK_SERVER_SESSION_TTL_HOURS", "server.session_ttl_hours"},
		{"SIMCHECK_HISTORY_PAGE_SIZE", "history.page_size"},
		{"SIMCHECK_LOG_FORMAT", "log.format"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"base url without scheme", func(c *Config) { c.API.BaseURL = "localhost:8080/api" }},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://example.com" }},
		{"zero timeout", func(c *Config) { c.API.TimeoutSeconds = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty data dir", func(c *Config) { c.Server.DataDir = "" }},
		{"empty cookie", func(c *Config) { c.Server.CookieName = "" }},
		{"zero ttl", func(c *Config) { c.Server.SessionTTLHours = 0 }},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }},
		{"negative rate", func(c *Config) { c.Batch.RequestsPerMinute = -1 }},
		{"zero page size", func(c *Config) { c.History.PageSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWizardValidators(t *testing.T) {
	if validateURL("http://localhost:8080/api") != nil {
		t.Error("valid URL rejected")
	}
	if validateURL("not a url") == nil {
		t.Error("invalid URL accepted")
	}
	if validatePort("8090") != nil || validatePort("0") == nil || validatePort("x") == nil {
		t.Error("validatePort misclassified input")
	}
	if validatePositive("3") != nil || validatePositive("-1") == nil {
		t.Error("validatePositive misclassified input")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.txt", []string{"**/*.txt"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := SplitList(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("SplitList(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("SplitList(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}

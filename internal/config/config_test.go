package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  base_url: http://market.internal:8081
  timeout: 3s
feed:
  poll_interval: 2s
monitor:
  symbol_limit: 3
  show_stats: true
relay:
  enabled: true
  addr: ":9000"
log:
  level: debug
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "http://market.internal:8081" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://market.internal:8081")
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("API.Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if cfg.Feed.PollInterval != 2*time.Second {
		t.Errorf("Feed.PollInterval = %v, want 2s", cfg.Feed.PollInterval)
	}
	if cfg.Monitor.SymbolLimit != 3 || !cfg.Monitor.ShowStats {
		t.Errorf("Monitor = %+v", cfg.Monitor)
	}
	if !cfg.Relay.Enabled || cfg.Relay.Addr != ":9000" {
		t.Errorf("Relay = %+v", cfg.Relay)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_MARKET_HOST", "md.example.com")

	yaml := `
api:
  base_url: https://${TEST_MARKET_HOST}
`
	path := writeTempFile(t, "config.yaml", yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://md.example.com" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "https://md.example.com")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://override:9999")
	t.Setenv(EnvPollInterval, "250ms")
	t.Setenv(EnvLogLevel, "warn")

	path := writeTempFile(t, "config.yaml", "api:\n  base_url: http://file:8081\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "http://override:9999" {
		t.Errorf("API.BaseURL = %q, want override", cfg.API.BaseURL)
	}
	if cfg.Feed.PollInterval != 250*time.Millisecond {
		t.Errorf("Feed.PollInterval = %v, want 250ms", cfg.Feed.PollInterval)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadBadPollIntervalEnv(t *testing.T) {
	t.Setenv(EnvPollInterval, "soon")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unparseable poll interval")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeTempFile(t, ".env", EnvBaseURL+"=http://from-dotenv:8081\n")

	// t.Setenv registers cleanup; clear it so godotenv can set the value.
	t.Setenv(EnvBaseURL, "")
	os.Unsetenv(EnvBaseURL)

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}

	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.API.BaseURL != "http://from-dotenv:8081" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://from-dotenv:8081")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.Feed.PollInterval != time.Second {
		t.Errorf("Feed.PollInterval = %v, want 1s", cfg.Feed.PollInterval)
	}
	if cfg.Monitor.SymbolLimit != DefaultSymbolLimit {
		t.Errorf("Monitor.SymbolLimit = %d, want %d", cfg.Monitor.SymbolLimit, DefaultSymbolLimit)
	}
	if cfg.Relay.SendBuffer != DefaultRelaySendBuffer {
		t.Errorf("Relay.SendBuffer = %d, want %d", cfg.Relay.SendBuffer, DefaultRelaySendBuffer)
	}
	if cfg.Relay.MinPollInterval != 100*time.Millisecond || cfg.Relay.MaxPollInterval != time.Hour {
		t.Errorf("Relay poll bounds = [%v, %v], want [100ms, 1h]", cfg.Relay.MinPollInterval, cfg.Relay.MaxPollInterval)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
}

func TestValidate(t *testing.T) {
	valid := func() MonitorConfig {
		var c MonitorConfig
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*MonitorConfig)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(c *MonitorConfig) {},
			wantErr: "",
		},
		{
			name:    "relative base url",
			mutate:  func(c *MonitorConfig) { c.API.BaseURL = "/api" },
			wantErr: `api.base_url must be an absolute URL, got "/api"`,
		},
		{
			name:    "unsupported scheme",
			mutate:  func(c *MonitorConfig) { c.API.BaseURL = "ftp://host" },
			wantErr: `api.base_url scheme must be http or https, got "ftp"`,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *MonitorConfig) { c.API.Timeout = -time.Second },
			wantErr: "api.timeout must be > 0",
		},
		{
			name:    "negative poll interval",
			mutate:  func(c *MonitorConfig) { c.Feed.PollInterval = -time.Second },
			wantErr: "feed.poll_interval must be > 0",
		},
		{
			name:    "negative symbol limit",
			mutate:  func(c *MonitorConfig) { c.Monitor.SymbolLimit = -1 },
			wantErr: "monitor.symbol_limit must be >= 0",
		},
		{
			name: "relay without addr",
			mutate: func(c *MonitorConfig) {
				c.Relay.Enabled = true
				c.Relay.Addr = ""
			},
			wantErr: "relay.addr is required when relay is enabled",
		},
		{
			name: "relay min poll interval",
			mutate: func(c *MonitorConfig) {
				c.Relay.Enabled = true
				c.Relay.MinPollInterval = -time.Millisecond
			},
			wantErr: "relay.min_poll_interval must be > 0",
		},
		{
			name: "relay max below min",
			mutate: func(c *MonitorConfig) {
				c.Relay.Enabled = true
				c.Relay.MinPollInterval = time.Second
				c.Relay.MaxPollInterval = 500 * time.Millisecond
			},
			wantErr: "relay.max_poll_interval must be >= relay.min_poll_interval",
		},
		{
			name:    "bad log level",
			mutate:  func(c *MonitorConfig) { c.Log.Level = "loud" },
			wantErr: `log.level "loud" is not one of debug, info, warn, error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

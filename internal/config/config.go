package config

import "time"

// MonitorConfig is the root configuration for a market monitor instance.
type MonitorConfig struct {
	API     APIConfig     `yaml:"api"`
	Feed    FeedConfig    `yaml:"feed"`
	Monitor ConsoleConfig `yaml:"monitor"`
	Relay   RelayConfig   `yaml:"relay"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig holds market data REST settings.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// FeedConfig holds subscription registry settings.
type FeedConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// ConsoleConfig controls what the monitor logs on its own.
type ConsoleConfig struct {
	SymbolLimit int  `yaml:"symbol_limit"`
	ShowStats   bool `yaml:"show_stats"`
}

// RelayConfig holds WebSocket relay settings.
type RelayConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PingInterval time.Duration `yaml:"ping_interval"`
	SendBuffer   int           `yaml:"send_buffer"`

	// Range accepted from dashboards changing the poll interval.
	MinPollInterval time.Duration `yaml:"min_poll_interval"`
	MaxPollInterval time.Duration `yaml:"max_poll_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

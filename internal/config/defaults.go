package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL           = "http://localhost:8081"
	DefaultAPITimeout        = 5 * time.Second
	DefaultPollInterval      = 1 * time.Second
	DefaultSymbolLimit       = 5
	DefaultRelayAddr         = ":8090"
	DefaultRelayWriteTimeout = 5 * time.Second
	DefaultRelayPingInterval = 30 * time.Second
	DefaultRelaySendBuffer   = 64
	DefaultRelayMinPoll      = 100 * time.Millisecond
	DefaultRelayMaxPoll      = time.Hour
	DefaultLogLevel          = "info"
)

func (c *MonitorConfig) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Feed defaults
	if c.Feed.PollInterval == 0 {
		c.Feed.PollInterval = DefaultPollInterval
	}

	// Monitor defaults
	if c.Monitor.SymbolLimit == 0 {
		c.Monitor.SymbolLimit = DefaultSymbolLimit
	}

	// Relay defaults
	if c.Relay.Addr == "" {
		c.Relay.Addr = DefaultRelayAddr
	}
	if c.Relay.WriteTimeout == 0 {
		c.Relay.WriteTimeout = DefaultRelayWriteTimeout
	}
	if c.Relay.PingInterval == 0 {
		c.Relay.PingInterval = DefaultRelayPingInterval
	}
	if c.Relay.SendBuffer == 0 {
		c.Relay.SendBuffer = DefaultRelaySendBuffer
	}
	if c.Relay.MinPollInterval == 0 {
		c.Relay.MinPollInterval = DefaultRelayMinPoll
	}
	if c.Relay.MaxPollInterval == 0 {
		c.Relay.MaxPollInterval = DefaultRelayMaxPoll
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

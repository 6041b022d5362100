package relay

import (
	"encoding/json"
	"time"
)

// Config holds relay configuration.
type Config struct {
	WriteTimeout time.Duration // Default: 5s
	PingInterval time.Duration // Default: 30s
	SendBuffer   int           // Per-connection queue, default: 64

	// Bounds for set_poll_interval requests from dashboards.
	MinPollInterval time.Duration // Default: 100ms
	MaxPollInterval time.Duration // Default: 1h
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
		SendBuffer:   64,

		MinPollInterval: 100 * time.Millisecond,
		MaxPollInterval: time.Hour,
	}
}

// Client actions.
const (
	ActionSubscribeSymbol   = "subscribe_symbol"
	ActionUnsubscribeSymbol = "unsubscribe_symbol"
	ActionSetPollInterval   = "set_poll_interval"
)

// Server message types.
const (
	TypeMarketState = "market_state"
	TypeSymbol      = "symbol"
	TypeSymbols     = "symbols"
	TypeAck         = "ack"
	TypeError       = "error"
)

// clientMessage is the wire format for messages from the browser.
type clientMessage struct {
	Action     string `json:"action"`
	Symbol     string `json:"symbol,omitempty"`
	IntervalMS int64  `json:"interval_ms,omitempty"`
}

// ServerMessage is the wire format for messages to the browser.
type ServerMessage struct {
	Type     string          `json:"type"`
	Endpoint string          `json:"endpoint,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Symbols  []string        `json:"symbols,omitempty"`
	Action   string          `json:"action,omitempty"`
	Error    string          `json:"error,omitempty"`
	Time     int64           `json:"time"` // ms since epoch
}

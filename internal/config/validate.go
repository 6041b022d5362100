package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *MonitorConfig) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be > 0")
	}

	if c.Feed.PollInterval <= 0 {
		return errors.New("feed.poll_interval must be > 0")
	}

	if c.Monitor.SymbolLimit < 0 {
		return errors.New("monitor.symbol_limit must be >= 0")
	}

	if c.Relay.Enabled {
		if c.Relay.Addr == "" {
			return errors.New("relay.addr is required when relay is enabled")
		}
		if c.Relay.SendBuffer < 1 {
			return errors.New("relay.send_buffer must be >= 1")
		}
		if c.Relay.MinPollInterval <= 0 {
			return errors.New("relay.min_poll_interval must be > 0")
		}
		if c.Relay.MaxPollInterval < c.Relay.MinPollInterval {
			return errors.New("relay.max_poll_interval must be >= relay.min_poll_interval")
		}
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// ParseLevel maps a config level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", level)
	}
}

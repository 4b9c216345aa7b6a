package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/kalshi-streamfeed/internal/logging"
)

// Validate checks that all required fields are set and values are within
// the ranges the rest of the system assumes.
func (c *Config) Validate() error {
	if c.WSURL == "" {
		return errors.New("ws_url is required")
	}

	if len(c.Subscription.Channels) == 0 {
		return errors.New("subscription.channels must not be empty")
	}

	if c.WS.HandshakeTimeoutMs < 1 {
		return errors.New("ws.handshake_timeout_ms must be >= 1")
	}
	if c.WS.IdleTimeoutMs < 1 {
		return errors.New("ws.idle_timeout_ms must be >= 1")
	}
	if c.WS.ReconnectInitialMs < 1 {
		return errors.New("ws.reconnect_initial_delay_ms must be >= 1")
	}
	if c.WS.ReconnectMaxDelayMs < c.WS.ReconnectInitialMs {
		return fmt.Errorf("ws.reconnect_max_delay_ms (%d) must be >= reconnect_initial_delay_ms (%d)",
			c.WS.ReconnectMaxDelayMs, c.WS.ReconnectInitialMs)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.QueueSize < 1 {
		return errors.New("logging.queue_size must be > 0")
	}
	if _, err := logging.ParseDropPolicy(c.Logging.DropPolicy); err != nil {
		return fmt.Errorf("logging.drop_policy: %w", err)
	}
	if c.Logging.OutputPath == "" {
		return errors.New("logging.output_path is required")
	}

	if c.Output.RawMessagesPath == "" {
		return errors.New("output.raw_messages_path is required")
	}

	if c.Database.Enabled {
		if err := c.Database.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (db *DatabaseConfig) validate() error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.Name == "" {
		return errors.New("database.name is required")
	}
	if db.User == "" {
		return errors.New("database.user is required")
	}
	if db.MaxConns < 1 {
		return errors.New("database.max_conns must be >= 1")
	}
	if db.MinConns < 0 {
		return errors.New("database.min_conns must be >= 0")
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("database.min_conns (%d) cannot exceed max_conns (%d)", db.MinConns, db.MaxConns)
	}
	if db.FlushInterval != "" {
		if _, err := time.ParseDuration(db.FlushInterval); err != nil {
			return fmt.Errorf("database.flush_interval: %w", err)
		}
	}
	return nil
}

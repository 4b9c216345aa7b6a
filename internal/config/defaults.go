package config

// Default values for optional configuration fields, matching the exchange
// client's documented defaults.
const (
	DefaultWSURL                = "wss://api.elections.kalshi.com/trade-api/ws/v2"
	DefaultHandshakeTimeoutMs   = 30_000
	DefaultIdleTimeoutMs        = 60_000
	DefaultReconnectInitialMs   = 500
	DefaultReconnectMaxDelayMs  = 30_000
	DefaultLoggingLevel         = "info"
	DefaultLoggingQueueSize     = 10_000
	DefaultLoggingDropPolicy    = "drop_oldest"
	DefaultLoggingOutputPath    = "logs/streamfeed.log.json"
	DefaultRawMessagesPath      = "logs/raw_messages.jsonl"
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultDBMaxConns           = 10
	DefaultDBMinConns           = 2
	DefaultDBBatchSize          = 500
	DefaultDBFlushInterval      = "1s"
)

func (c *Config) applyDefaults() {
	if c.WSURL == "" {
		c.WSURL = DefaultWSURL
	}

	if c.WS.HandshakeTimeoutMs == 0 {
		c.WS.HandshakeTimeoutMs = DefaultHandshakeTimeoutMs
	}
	if c.WS.IdleTimeoutMs == 0 {
		c.WS.IdleTimeoutMs = DefaultIdleTimeoutMs
	}
	if c.WS.ReconnectInitialMs == 0 {
		c.WS.ReconnectInitialMs = DefaultReconnectInitialMs
	}
	if c.WS.ReconnectMaxDelayMs == 0 {
		c.WS.ReconnectMaxDelayMs = DefaultReconnectMaxDelayMs
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLoggingLevel
	}
	if c.Logging.QueueSize == 0 {
		c.Logging.QueueSize = DefaultLoggingQueueSize
	}
	if c.Logging.DropPolicy == "" {
		c.Logging.DropPolicy = DefaultLoggingDropPolicy
	}
	if c.Logging.OutputPath == "" {
		c.Logging.OutputPath = DefaultLoggingOutputPath
	}

	if c.Output.RawMessagesPath == "" {
		c.Output.RawMessagesPath = DefaultRawMessagesPath
	}

	if c.Database.Enabled {
		if c.Database.Port == 0 {
			c.Database.Port = DefaultDBPort
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = DefaultDBSSLMode
		}
		if c.Database.MaxConns == 0 {
			c.Database.MaxConns = DefaultDBMaxConns
		}
		if c.Database.MinConns == 0 {
			c.Database.MinConns = DefaultDBMinConns
		}
		if c.Database.BatchSize == 0 {
			c.Database.BatchSize = DefaultDBBatchSize
		}
		if c.Database.FlushInterval == "" {
			c.Database.FlushInterval = DefaultDBFlushInterval
		}
	}
}

// Package config loads and validates the YAML configuration file that
// drives a streamfeed run: target endpoint, subscription inputs, socket
// timeouts, reconnect policy, and logging/output settings.
package config

// Config is the root configuration for a streamfeed run.
type Config struct {
	Env          string             `yaml:"env"`
	WSURL        string             `yaml:"ws_url"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	WS           WSConfig           `yaml:"ws"`
	Logging      LoggingConfig      `yaml:"logging"`
	Output       OutputConfig       `yaml:"output"`
	Database     DatabaseConfig     `yaml:"database"`
}

// SubscriptionConfig is the channel/ticker list sent in the subscribe
// command on every successful connection.
type SubscriptionConfig struct {
	Channels      []string `yaml:"channels"`
	MarketTickers []string `yaml:"market_tickers"`
}

// WSConfig holds socket timeouts and the reconnect backoff schedule.
type WSConfig struct {
	HandshakeTimeoutMs    int64 `yaml:"handshake_timeout_ms"`
	IdleTimeoutMs         int64 `yaml:"idle_timeout_ms"`
	KeepAlivePings        bool  `yaml:"keep_alive_pings"`
	AutoReconnect         bool  `yaml:"auto_reconnect"`
	ReconnectInitialMs    int64 `yaml:"reconnect_initial_delay_ms"`
	ReconnectMaxDelayMs   int64 `yaml:"reconnect_max_delay_ms"`
}

// LoggingConfig configures the bounded async structured logger.
type LoggingConfig struct {
	Level                  string `yaml:"level"`
	QueueSize              int    `yaml:"queue_size"`
	DropPolicy             string `yaml:"drop_policy"`
	IncludeRawOnParseError bool   `yaml:"include_raw_on_parse_error"`
	LogRawMessages         bool   `yaml:"log_raw_messages"`
	OutputPath             string `yaml:"output_path"`
}

// OutputConfig configures persistence outside the structured log.
type OutputConfig struct {
	RawMessagesPath string `yaml:"raw_messages_path"`
}

// DatabaseConfig is optional: set Enabled to persist events to Postgres via
// internal/sink/postgres in addition to the logging sink.
type DatabaseConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Name          string `yaml:"name"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	SSLMode       string `yaml:"ssl_mode"`
	MaxConns      int32  `yaml:"max_conns"`
	MinConns      int32  `yaml:"min_conns"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval string `yaml:"flush_interval"`
}

// Credentials identifies the RSA key used to sign every connection attempt.
// Read from the process environment, not the YAML file.
type Credentials struct {
	KeyID          string
	PrivateKeyPEM  []byte
	PrivateKeyPath string
}

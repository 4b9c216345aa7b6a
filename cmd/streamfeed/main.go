// streamfeed connects to the exchange's streaming market-data WebSocket,
// authenticates each connection attempt with an RSA-PSS signed header set,
// and dispatches decoded orderbook/trade events to the configured sinks.
//
// Usage: go run ./cmd/streamfeed --config configs/streamfeed.yaml
//
// Required environment variables:
//
//	KALSHI_ACCESS_KEY       - API key id from the exchange dashboard
//	KALSHI_PRIVATE_KEY_PATH - path to the RSA private key PEM file
//	                          (or KALSHI_PRIVATE_KEY with the PEM inline)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/kalshi-streamfeed/internal/auth"
	"github.com/rickgao/kalshi-streamfeed/internal/config"
	"github.com/rickgao/kalshi-streamfeed/internal/feed"
	"github.com/rickgao/kalshi-streamfeed/internal/logging"
	"github.com/rickgao/kalshi-streamfeed/internal/pipeline"
	"github.com/rickgao/kalshi-streamfeed/internal/rawsink"
	"github.com/rickgao/kalshi-streamfeed/internal/reconnect"
	"github.com/rickgao/kalshi-streamfeed/internal/sink"
	"github.com/rickgao/kalshi-streamfeed/internal/sink/postgres"
	"github.com/rickgao/kalshi-streamfeed/internal/subscription"
)

func main() {
	configPath := flag.String("config", "configs/streamfeed.yaml", "path to config file")
	maxMessages := flag.Uint64("max-messages", 0, "stop after this many messages (0 = unlimited)")
	flag.Parse()

	startup := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		startup.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		startup.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	privateKey, err := auth.LoadPrivateKey(creds.PrivateKeyPEM)
	if err != nil {
		startup.Error("failed to parse private key", "error", err)
		os.Exit(1)
	}

	signer, err := auth.NewCredentials(creds.KeyID, privateKey)
	if err != nil {
		startup.Error("failed to build signer", "error", err)
		os.Exit(1)
	}

	subscribeCmd, err := subscription.Build(1, cfg.Subscription.Channels, cfg.Subscription.MarketTickers)
	if err != nil {
		startup.Error("failed to build subscription command", "error", err)
		os.Exit(1)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		startup.Error("invalid logging level", "error", err)
		os.Exit(1)
	}
	dropPolicy, err := logging.ParseDropPolicy(cfg.Logging.DropPolicy)
	if err != nil {
		startup.Error("invalid drop policy", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{
		Level:      level,
		QueueSize:  cfg.Logging.QueueSize,
		DropPolicy: dropPolicy,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		startup.Error("failed to start logger", "error", err)
		os.Exit(1)
	}
	defer logger.Close()

	var rawSink pipeline.RawSink
	if cfg.Output.RawMessagesPath != "" {
		rs := rawsink.New(rawsink.DefaultConfig(cfg.Output.RawMessagesPath))
		defer rs.Close()
		rawSink = rs
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Log(logging.Info, "cmd.streamfeed", "shutdown_signal_received", logging.NewFields())
		cancel()
	}()

	var sinks []sink.MarketSink
	sinks = append(sinks, sink.NewLoggingSink(logger))

	var pgSink *postgres.Sink
	if cfg.Database.Enabled {
		flushInterval, err := time.ParseDuration(cfg.Database.FlushInterval)
		if err != nil {
			logger.Log(logging.Error, "cmd.streamfeed", "invalid_flush_interval", logging.NewFields().String("error", err.Error()))
			os.Exit(1)
		}

		pool, err := postgres.Connect(ctx, postgres.DBConfig{
			Host: cfg.Database.Host, Port: cfg.Database.Port, User: cfg.Database.User,
			Password: cfg.Database.Password, Name: cfg.Database.Name, SSLMode: cfg.Database.SSLMode,
			MinConns: cfg.Database.MinConns, MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			logger.Log(logging.Error, "cmd.streamfeed", "database_connect_failed", logging.NewFields().String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		pgSink = postgres.New(postgres.Config{BatchSize: cfg.Database.BatchSize, FlushInterval: flushInterval}, pool, nil)
		pgSink.Start(ctx)
		defer pgSink.Stop()
		sinks = append(sinks, pgSink)
	}

	fanout := sink.NewFanoutSink(sinks...)

	pipe := pipeline.New(fanout, logger, rawSink, pipeline.Options{
		LogRawMessages:         cfg.Logging.LogRawMessages,
		IncludeRawOnParseError: cfg.Logging.IncludeRawOnParseError,
	})

	limiter := feed.NewRunLimiter(*maxMessages)
	handler := feed.New(pipe, logger, limiter, subscribeCmd.Payload())

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fields := logging.NewFields().Uint("messages_seen", limiter.Seen())
				if pgSink != nil {
					m := pgSink.Metrics()
					fields = fields.
						Int("snapshot_inserts", m.SnapshotInserts).
						Int("delta_inserts", m.DeltaInserts).
						Int("trade_inserts", m.TradeInserts).
						Int("db_errors", m.Errors)
				}
				logger.Log(logging.Info, "cmd.streamfeed", "stats", fields)
			}
		}
	}()

	logger.Log(logging.Info, "cmd.streamfeed", "run_started", logging.NewFields().String("ws_url", cfg.WSURL))
	fmt.Fprintln(os.Stdout, "streamfeed running, press Ctrl+C to stop")

	runErr := handler.Run(ctx, reconnect.Config{
		URL:              cfg.WSURL,
		Headers:          signer.SignWebSocket,
		AutoReconnect:    cfg.WS.AutoReconnect,
		HandshakeTimeout: time.Duration(cfg.WS.HandshakeTimeoutMs) * time.Millisecond,
		IdleTimeout:      time.Duration(cfg.WS.IdleTimeoutMs) * time.Millisecond,
		KeepAlivePings:   cfg.WS.KeepAlivePings,
		Backoff: reconnect.BackoffPolicy{
			Initial: time.Duration(cfg.WS.ReconnectInitialMs) * time.Millisecond,
			Max:     time.Duration(cfg.WS.ReconnectMaxDelayMs) * time.Millisecond,
		},
	})
	if runErr != nil {
		logger.Log(logging.Error, "cmd.streamfeed", "run_failed", logging.NewFields().String("error", runErr.Error()))
	}

	logger.Log(logging.Info, "cmd.streamfeed", "run_stopped", logging.NewFields().Uint("messages_seen", limiter.Seen()))
}

// Package reconnect drives repeated WebSocket connection attempts with
// exponential backoff, minting fresh authentication headers before every
// dial and resetting the delay on a successful open.
package reconnect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rickgao/kalshi-streamfeed/internal/wsclient"
)

// HeaderProvider mints the upgrade headers for one connection attempt. It is
// invoked fresh before every dial so timestamps and signatures are never
// reused across attempts.
type HeaderProvider func() (map[string]string, error)

// Callbacks are invoked from the controller's Run loop.
type Callbacks struct {
	// OnOpen fires once per successful connection, after the backoff delay
	// has been reset. Typically used to send the cached subscription
	// command.
	OnOpen func(client *wsclient.Client)
	// OnMessage fires for every complete text frame on the current
	// connection.
	OnMessage func(data []byte)
	// OnControl fires for ping/pong/close control frames.
	OnControl func(kind wsclient.ControlKind, payload []byte)
	// OnAttemptFailed fires whenever a dial or an open connection fails,
	// before the controller decides whether to retry.
	OnAttemptFailed func(err error)
	// OnGiveUp fires once, when auto-reconnect is disabled and an attempt
	// has failed, or when the header provider returns an error. Run returns
	// after this.
	OnGiveUp func(err error)
}

// Config configures a Controller.
type Config struct {
	URL              string
	Headers          HeaderProvider
	AutoReconnect    bool
	Backoff          BackoffPolicy
	HandshakeTimeout time.Duration
	IdleTimeout      time.Duration
	KeepAlivePings   bool
}

// ErrGaveUp is returned by Run, wrapping the attempt's error, when an
// attempt failed with auto-reconnect disabled.
var ErrGaveUp = errors.New("reconnect: gave up after connection failure")

// Controller owns the reconnect timer and the currently active client. A
// Controller is used for exactly one Run.
type Controller struct {
	cfg Config
	cb  Callbacks
	bo  *backoff
}

// New constructs a Controller. If either BackoffPolicy field is zero or
// negative, the whole policy falls back to DefaultBackoffPolicy.
func New(cfg Config, cb Callbacks) *Controller {
	if cfg.Backoff.Initial <= 0 || cfg.Backoff.Max <= 0 {
		cfg.Backoff = DefaultBackoffPolicy()
	}
	return &Controller{cfg: cfg, cb: cb, bo: newBackoff(cfg.Backoff)}
}

// Run attempts connections until ctx is cancelled, until auto-reconnect is
// disabled and an attempt fails, or until a header provider error occurs.
// It blocks for the lifetime of the reconnect loop; cancel ctx to stop it.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		headers, err := c.cfg.Headers()
		if err != nil {
			c.giveUp(err)
			return err
		}

		attemptDone := make(chan error, 1)
		var reportOnce sync.Once

		var client *wsclient.Client
		client = wsclient.New(wsclient.Config{
			URL:              c.cfg.URL,
			Headers:          headers,
			HandshakeTimeout: c.cfg.HandshakeTimeout,
			IdleTimeout:      c.cfg.IdleTimeout,
			KeepAlivePings:   c.cfg.KeepAlivePings,
		}, wsclient.Callbacks{
			OnOpen: func() {
				c.bo.reset()
				if c.cb.OnOpen != nil {
					c.cb.OnOpen(client)
				}
			},
			OnMessage: func(data []byte) {
				if c.cb.OnMessage != nil {
					c.cb.OnMessage(data)
				}
			},
			OnControl: func(kind wsclient.ControlKind, payload []byte) {
				if c.cb.OnControl != nil {
					c.cb.OnControl(kind, payload)
				}
			},
			OnError: func(err *wsclient.Error) {
				reportOnce.Do(func() { attemptDone <- err })
			},
		})

		if err := client.Connect(ctx); err != nil {
			if c.cb.OnAttemptFailed != nil {
				c.cb.OnAttemptFailed(err)
			}
			if !c.cfg.AutoReconnect {
				c.giveUp(err)
				return fmt.Errorf("%w: %w", ErrGaveUp, err)
			}
			if !c.sleep(ctx) {
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			client.Close()
			return nil
		case err := <-attemptDone:
			if c.cb.OnAttemptFailed != nil {
				c.cb.OnAttemptFailed(err)
			}
			if !c.cfg.AutoReconnect {
				c.giveUp(err)
				return fmt.Errorf("%w: %w", ErrGaveUp, err)
			}
			if !c.sleep(ctx) {
				return nil
			}
		}
	}
}

func (c *Controller) giveUp(err error) {
	if c.cb.OnGiveUp != nil {
		c.cb.OnGiveUp(err)
	}
}

// sleep waits the next backoff delay, returning false if ctx was cancelled
// first.
func (c *Controller) sleep(ctx context.Context) bool {
	delay := c.bo.next()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

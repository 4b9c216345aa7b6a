// Package feed composes the message pipeline, the run limiter, and the
// reconnection controller into a single run loop.
package feed

import (
	"context"

	"github.com/rickgao/kalshi-streamfeed/internal/logging"
	"github.com/rickgao/kalshi-streamfeed/internal/pipeline"
	"github.com/rickgao/kalshi-streamfeed/internal/reconnect"
	"github.com/rickgao/kalshi-streamfeed/internal/wsclient"
)

// Handler owns a single feed run: one logical subscription driven across
// however many physical connections reconnection requires.
type Handler struct {
	pipeline     *pipeline.Pipeline
	logger       *logging.Logger
	limiter      *RunLimiter
	subscribeCmd []byte
}

// New constructs a Handler. subscribeCmd is sent on every successful open
// (including after a reconnect); it is typically the payload built by
// internal/subscription.
func New(p *pipeline.Pipeline, logger *logging.Logger, limiter *RunLimiter, subscribeCmd []byte) *Handler {
	return &Handler{pipeline: p, logger: logger, limiter: limiter, subscribeCmd: subscribeCmd}
}

// Run drives the reconnection controller until the run limit is reached,
// the controller gives up (auto-reconnect disabled and an attempt failed),
// or ctx is cancelled.
func (h *Handler) Run(ctx context.Context, cfg reconnect.Config) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := reconnect.New(cfg, reconnect.Callbacks{
		OnOpen: func(client *wsclient.Client) {
			h.logger.Log(logging.Info, "md.ws_client", "ws_open", logging.NewFields())
			if len(h.subscribeCmd) > 0 {
				_ = client.SendText(h.subscribeCmd)
			}
		},
		OnMessage: func(data []byte) {
			h.pipeline.OnMessage(data)
			if h.limiter.RecordMessage() {
				h.logger.Log(logging.Info, "md.feed_handler", "max_messages_reached", logging.NewFields())
				cancel()
			}
		},
		OnControl: func(kind wsclient.ControlKind, payload []byte) {
			fields := logging.NewFields().String("payload", string(payload))
			h.logger.Log(logging.Info, "md.ws_client", controlEventName(kind), fields)
		},
		OnAttemptFailed: func(err error) {
			fields := logging.NewFields().String("message", err.Error())
			h.logger.Log(logging.Error, "md.ws_client", "ws_error", fields)
		},
		OnGiveUp: func(err error) {
			fields := logging.NewFields().String("message", err.Error())
			h.logger.Log(logging.Error, "md.feed_handler", "run_terminated", fields)
		},
	})

	return ctrl.Run(runCtx)
}

func controlEventName(kind wsclient.ControlKind) string {
	switch kind {
	case wsclient.ControlPing:
		return "ws_ping"
	case wsclient.ControlPong:
		return "ws_pong"
	default:
		return "ws_control"
	}
}

// Package pipeline routes raw WebSocket text frames through the raw-frame
// sink, the codec, and dispatch to a typed market sink, in that order.
package pipeline

import (
	"errors"

	"github.com/rickgao/kalshi-streamfeed/internal/codec"
	"github.com/rickgao/kalshi-streamfeed/internal/logging"
	"github.com/rickgao/kalshi-streamfeed/internal/model"
	"github.com/rickgao/kalshi-streamfeed/internal/sink"
)

// RawSink persists a raw frame. Implemented by internal/rawsink.
type RawSink interface {
	Write(message []byte) error
}

// Options controls the pipeline's logging behavior.
type Options struct {
	// LogRawMessages emits a debug log carrying every frame's size and
	// content.
	LogRawMessages bool
	// IncludeRawOnParseError attaches the offending frame to parse-error
	// warn logs.
	IncludeRawOnParseError bool
}

// Pipeline decodes frames and dispatches typed events to a sink, logging
// raw frames and parse errors along the way. It holds no per-frame state.
type Pipeline struct {
	sink    sink.MarketSink
	logger  *logging.Logger
	rawSink RawSink
	opts    Options
}

// New constructs a Pipeline. rawSink may be nil to disable raw-frame
// persistence.
func New(s sink.MarketSink, logger *logging.Logger, rawSink RawSink, opts Options) *Pipeline {
	return &Pipeline{sink: s, logger: logger, rawSink: rawSink, opts: opts}
}

// OnMessage processes one complete WebSocket text frame.
func (p *Pipeline) OnMessage(message []byte) {
	if p.rawSink != nil {
		_ = p.rawSink.Write(message)
	}

	if p.opts.LogRawMessages {
		fields := logging.NewFields().Uint("bytes", uint64(len(message)))
		p.logger.LogRaw(logging.Debug, "md.ws_client", "ws_message", fields, string(message), true)
	}

	event, err := codec.Decode(message)
	if err != nil {
		p.handleParseError(err, message)
		return
	}

	switch e := event.(type) {
	case *model.OrderbookSnapshot:
		p.sink.OnSnapshot(*e)
	case *model.OrderbookDelta:
		p.sink.OnDelta(*e)
	case *model.TradeEvent:
		p.sink.OnTrade(*e)
	}
}

func (p *Pipeline) handleParseError(err error, raw []byte) {
	var perr *codec.ParseError
	if !errors.As(err, &perr) {
		return
	}

	if perr.Kind == codec.UnsupportedType {
		p.logger.Log(logging.Debug, "md.dispatcher", "unsupported_message_type", logging.NewFields())
		return
	}

	fields := logging.NewFields().String("parse_error", perr.Kind.String())
	if p.opts.IncludeRawOnParseError {
		p.logger.LogRaw(logging.Warn, "md.dispatcher", "parse_error", fields, string(raw), true)
		return
	}
	p.logger.Log(logging.Warn, "md.dispatcher", "parse_error", fields)
}

// Package sink defines the typed market-event consumer interface the
// message pipeline dispatches to, and a fan-out implementation for
// broadcasting to several sinks at once.
package sink

import "github.com/rickgao/kalshi-streamfeed/internal/model"

// MarketSink receives strongly-typed market data events. Implementations
// are invoked synchronously from the pipeline's goroutine; a slow sink
// blocks the connection that fed it.
type MarketSink interface {
	OnSnapshot(snapshot model.OrderbookSnapshot)
	OnDelta(delta model.OrderbookDelta)
	OnTrade(trade model.TradeEvent)
	// OnStatus is part of the interface for completeness with the wire
	// protocol's market_status message, but the current codec never
	// produces a MarketStatusUpdate, so no dispatcher path calls this.
	OnStatus(status model.MarketStatusUpdate)
}

// FanoutSink broadcasts every event to each of its sinks in order.
type FanoutSink struct {
	sinks []MarketSink
}

// NewFanoutSink constructs a FanoutSink over the given sinks.
func NewFanoutSink(sinks ...MarketSink) *FanoutSink {
	return &FanoutSink{sinks: sinks}
}

func (f *FanoutSink) OnSnapshot(snapshot model.OrderbookSnapshot) {
	for _, s := range f.sinks {
		s.OnSnapshot(snapshot)
	}
}

func (f *FanoutSink) OnDelta(delta model.OrderbookDelta) {
	for _, s := range f.sinks {
		s.OnDelta(delta)
	}
}

func (f *FanoutSink) OnTrade(trade model.TradeEvent) {
	for _, s := range f.sinks {
		s.OnTrade(trade)
	}
}

func (f *FanoutSink) OnStatus(status model.MarketStatusUpdate) {
	for _, s := range f.sinks {
		s.OnStatus(status)
	}
}

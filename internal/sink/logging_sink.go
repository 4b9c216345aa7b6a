package sink

import (
	"github.com/rickgao/kalshi-streamfeed/internal/logging"
	"github.com/rickgao/kalshi-streamfeed/internal/model"
)

// LoggingSink logs every market event through the structured logger. It is
// mainly useful as a reference sink and for smoke-testing a feed without a
// persistence backend.
type LoggingSink struct {
	logger *logging.Logger
}

// NewLoggingSink constructs a LoggingSink writing through logger.
func NewLoggingSink(logger *logging.Logger) *LoggingSink {
	return &LoggingSink{logger: logger}
}

func (s *LoggingSink) OnSnapshot(snapshot model.OrderbookSnapshot) {
	fields := logging.NewFields().
		String("market_ticker", snapshot.Ticker).
		Uint("sequence", uint64(snapshot.Sequence))
	s.logger.Log(logging.Info, "md.sink", "orderbook_snapshot", fields)
}

func (s *LoggingSink) OnDelta(delta model.OrderbookDelta) {
	fields := logging.NewFields().
		String("market_ticker", delta.Ticker).
		Uint("sequence", uint64(delta.Sequence)).
		Uint("price", uint64(delta.Price)).
		Int("delta", int64(delta.Delta))
	s.logger.Log(logging.Debug, "md.sink", "orderbook_delta", fields)
}

func (s *LoggingSink) OnTrade(trade model.TradeEvent) {
	fields := logging.NewFields().
		String("market_ticker", trade.Ticker).
		Uint("yes_price", uint64(trade.YesPrice)).
		Uint("no_price", uint64(trade.NoPrice)).
		Uint("count", uint64(trade.Count))
	s.logger.Log(logging.Debug, "md.sink", "trade", fields)
}

func (s *LoggingSink) OnStatus(status model.MarketStatusUpdate) {
	fields := logging.NewFields().
		String("market_ticker", status.Ticker).
		Uint("status", uint64(status.Status))
	s.logger.Log(logging.Info, "md.sink", "market_status", fields)
}

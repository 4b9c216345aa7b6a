// Package subscription builds and validates the subscribe command sent
// once the WebSocket handshake completes.
package subscription

import (
	"encoding/json"
	"fmt"
)

const channelOrderbookDelta = "orderbook_delta"

// ErrMissingMarketTickers is returned when orderbook_delta is requested
// without any market tickers, since that channel requires per-market
// subscription.
var ErrMissingMarketTickers = fmt.Errorf("MissingMarketTickers: orderbook_delta requires a non-empty market ticker list")

type params struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers,omitempty"`
}

type command struct {
	ID     int64  `json:"id"`
	Cmd    string `json:"cmd"`
	Params params `json:"params"`
}

// Command holds a validated subscription request and its cached JSON
// payload. Immutable once built.
type Command struct {
	Channels      []string
	MarketTickers []string
	payload       []byte
}

// Payload returns the cached JSON subscribe command.
func (c *Command) Payload() []byte {
	return c.payload
}

// Build validates the requested channels/tickers combination and produces
// a Command with its JSON payload cached under the given command id.
func Build(id int64, channels, marketTickers []string) (*Command, error) {
	requiresTickers := false
	for _, ch := range channels {
		if ch == channelOrderbookDelta {
			requiresTickers = true
			break
		}
	}
	if requiresTickers && len(marketTickers) == 0 {
		return nil, ErrMissingMarketTickers
	}

	p := params{Channels: channels}
	if len(marketTickers) > 0 {
		p.MarketTickers = marketTickers
	}

	payload, err := json.Marshal(command{ID: id, Cmd: "subscribe", Params: p})
	if err != nil {
		return nil, fmt.Errorf("subscription: marshal command: %w", err)
	}

	return &Command{Channels: channels, MarketTickers: marketTickers, payload: payload}, nil
}

// Package codec discriminates and decodes the exchange's streaming
// market-data JSON text frames into typed events.
//
// The codec holds no state: every call to Decode is independent.
package codec

import (
	"encoding/json"

	"github.com/rickgao/kalshi-streamfeed/internal/model"
)

type envelope struct {
	Type string          `json:"type"`
	Seq  *uint64         `json:"seq"`
	Msg  json.RawMessage `json:"msg"`
}

type pricePair [2]json.Number

type snapshotMsg struct {
	MarketTicker *string     `json:"market_ticker"`
	Yes          *[]pricePair `json:"yes"`
	No           *[]pricePair `json:"no"`
}

type deltaMsg struct {
	MarketTicker  *string `json:"market_ticker"`
	Price         *int64  `json:"price"`
	Delta         *int64  `json:"delta"`
	Side          *string `json:"side"`
	ClientOrderID *string `json:"client_order_id"`
}

type tradeMsg struct {
	MarketTicker *string `json:"market_ticker"`
	YesPrice     *int64  `json:"yes_price"`
	NoPrice      *int64  `json:"no_price"`
	Count        *int64  `json:"count"`
	TakerSide    *string `json:"taker_side"`
	Ts           *int64  `json:"ts"`
}

// Decode discriminates and decodes a single text frame. On success the
// returned value is one of *model.OrderbookSnapshot, *model.OrderbookDelta,
// or *model.TradeEvent. UnsupportedType is returned as a *ParseError, not
// treated as fatal by callers (see internal/pipeline).
func Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, newErr(EmptyMessage, "")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, newErr(InvalidJson, err.Error())
	}

	if env.Type == "" {
		return nil, newErr(MissingType, "")
	}

	switch env.Type {
	case typeOrderbookSnapshot:
		return decodeSnapshot(env)
	case typeOrderbookDelta:
		return decodeDelta(env)
	case typeTrade:
		return decodeTrade(env)
	default:
		return nil, newErr(UnsupportedType, env.Type)
	}
}

func decodeSnapshot(env envelope) (*model.OrderbookSnapshot, error) {
	if env.Seq == nil {
		return nil, newErr(MissingField, "seq")
	}
	if env.Msg == nil {
		return nil, newErr(MissingField, "msg")
	}

	var m snapshotMsg
	if err := json.Unmarshal(env.Msg, &m); err != nil {
		return nil, newErr(InvalidJson, err.Error())
	}
	if m.MarketTicker == nil {
		return nil, newErr(MissingField, "msg.market_ticker")
	}
	if m.Yes == nil {
		return nil, newErr(MissingField, "msg.yes")
	}
	if m.No == nil {
		return nil, newErr(MissingField, "msg.no")
	}

	yes, err := parsePriceLevels(*m.Yes)
	if err != nil {
		return nil, err
	}
	no, err := parsePriceLevels(*m.No)
	if err != nil {
		return nil, err
	}

	return &model.OrderbookSnapshot{
		Ticker:   *m.MarketTicker,
		Sequence: *env.Seq,
		Yes:      yes,
		No:       no,
		Ts:       0,
	}, nil
}

func decodeDelta(env envelope) (*model.OrderbookDelta, error) {
	if env.Seq == nil {
		return nil, newErr(MissingField, "seq")
	}
	if env.Msg == nil {
		return nil, newErr(MissingField, "msg")
	}

	var m deltaMsg
	if err := json.Unmarshal(env.Msg, &m); err != nil {
		return nil, newErr(InvalidJson, err.Error())
	}
	if m.MarketTicker == nil {
		return nil, newErr(MissingField, "msg.market_ticker")
	}
	if m.Price == nil {
		return nil, newErr(MissingField, "msg.price")
	}
	if m.Delta == nil {
		return nil, newErr(MissingField, "msg.delta")
	}
	if m.Side == nil {
		return nil, newErr(MissingField, "msg.side")
	}

	price, err := validatePrice(*m.Price)
	if err != nil {
		return nil, err
	}
	delta, err := validateDelta(*m.Delta)
	if err != nil {
		return nil, err
	}
	side, err := validateSide(*m.Side)
	if err != nil {
		return nil, err
	}

	return &model.OrderbookDelta{
		Ticker:        *m.MarketTicker,
		Sequence:      *env.Seq,
		Price:         price,
		Delta:         delta,
		Side:          side,
		ClientOrderID: m.ClientOrderID,
		Ts:            0,
	}, nil
}

func decodeTrade(env envelope) (*model.TradeEvent, error) {
	if env.Msg == nil {
		return nil, newErr(MissingField, "msg")
	}

	var m tradeMsg
	if err := json.Unmarshal(env.Msg, &m); err != nil {
		return nil, newErr(InvalidJson, err.Error())
	}
	if m.MarketTicker == nil {
		return nil, newErr(MissingField, "msg.market_ticker")
	}
	if m.YesPrice == nil {
		return nil, newErr(MissingField, "msg.yes_price")
	}
	if m.NoPrice == nil {
		return nil, newErr(MissingField, "msg.no_price")
	}
	if m.Count == nil {
		return nil, newErr(MissingField, "msg.count")
	}
	if m.TakerSide == nil {
		return nil, newErr(MissingField, "msg.taker_side")
	}

	yesPrice, err := validatePrice(*m.YesPrice)
	if err != nil {
		return nil, err
	}
	noPrice, err := validatePrice(*m.NoPrice)
	if err != nil {
		return nil, err
	}
	count, err := validateCount(*m.Count)
	if err != nil {
		return nil, err
	}
	takerSide, err := validateSide(*m.TakerSide)
	if err != nil {
		return nil, err
	}

	var ts model.Timestamp
	if m.Ts != nil {
		ts = *m.Ts * int64(1_000_000_000)
	}

	return &model.TradeEvent{
		Ticker:    *m.MarketTicker,
		YesPrice:  yesPrice,
		NoPrice:   noPrice,
		Count:     count,
		TakerSide: takerSide,
		Ts:        ts,
	}, nil
}

func parsePriceLevels(pairs []pricePair) ([]model.PriceLevel, error) {
	levels := make([]model.PriceLevel, 0, len(pairs))
	for _, pair := range pairs {
		priceRaw, err := pair[0].Int64()
		if err != nil {
			return nil, newErr(InvalidField, "price level: "+err.Error())
		}
		sizeRaw, err := pair[1].Int64()
		if err != nil {
			return nil, newErr(InvalidField, "price level size: "+err.Error())
		}

		price, err := validatePrice(priceRaw)
		if err != nil {
			return nil, err
		}
		size, err := validateSize(sizeRaw)
		if err != nil {
			return nil, err
		}

		levels = append(levels, model.PriceLevel{Price: price, Size: size})
	}
	return levels, nil
}

func validatePrice(v int64) (model.Price, error) {
	if v < 0 || v > model.PriceMax {
		return 0, newErr(InvalidField, "price out of range [0,100]")
	}
	return model.Price(v), nil
}

func validateSize(v int64) (model.Size, error) {
	if v < 0 || v > int64(^uint32(0)) {
		return 0, newErr(InvalidField, "size out of uint32 range")
	}
	return model.Size(v), nil
}

func validateDelta(v int64) (model.Delta, error) {
	if v < int64(int32(-1<<31)) || v > int64(int32(1<<31-1)) {
		return 0, newErr(InvalidField, "delta out of int32 range")
	}
	return model.Delta(v), nil
}

func validateCount(v int64) (model.Count, error) {
	if v < 0 || v > int64(^uint32(0)) {
		return 0, newErr(InvalidField, "count out of uint32 range")
	}
	return model.Count(v), nil
}

func validateSide(v string) (model.BookSide, error) {
	switch v {
	case sideYes:
		return model.Yes, nil
	case sideNo:
		return model.No, nil
	default:
		return 0, newErr(InvalidField, "side must be \"yes\" or \"no\"")
	}
}

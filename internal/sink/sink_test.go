package sink

import (
	"reflect"
	"testing"

	"github.com/rickgao/kalshi-streamfeed/internal/model"
)

type recordingSink struct {
	snapshots []model.OrderbookSnapshot
	deltas    []model.OrderbookDelta
	trades    []model.TradeEvent
	statuses  []model.MarketStatusUpdate
}

func (r *recordingSink) OnSnapshot(s model.OrderbookSnapshot)    { r.snapshots = append(r.snapshots, s) }
func (r *recordingSink) OnDelta(d model.OrderbookDelta)          { r.deltas = append(r.deltas, d) }
func (r *recordingSink) OnTrade(t model.TradeEvent)              { r.trades = append(r.trades, t) }
func (r *recordingSink) OnStatus(u model.MarketStatusUpdate)     { r.statuses = append(r.statuses, u) }

func TestFanoutSink_BroadcastsToAll(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	fan := NewFanoutSink(a, b)

	snap := model.OrderbookSnapshot{Ticker: "KXGOVSHUT-26JAN31", Sequence: 1}
	fan.OnSnapshot(snap)

	if len(a.snapshots) != 1 || len(b.snapshots) != 1 {
		t.Fatalf("expected both sinks to receive the snapshot, got %d and %d", len(a.snapshots), len(b.snapshots))
	}
	if !reflect.DeepEqual(a.snapshots[0], snap) || !reflect.DeepEqual(b.snapshots[0], snap) {
		t.Error("broadcast snapshot did not match input")
	}
}

func TestFanoutSink_EmptyIsNoop(t *testing.T) {
	fan := NewFanoutSink()
	fan.OnDelta(model.OrderbookDelta{})
	fan.OnTrade(model.TradeEvent{})
	fan.OnStatus(model.MarketStatusUpdate{})
}

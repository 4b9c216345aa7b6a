package model

import "testing"

func TestBookSideString(t *testing.T) {
	if Yes.String() != "yes" {
		t.Errorf("Yes.String() = %q, want yes", Yes.String())
	}
	if No.String() != "no" {
		t.Errorf("No.String() = %q, want no", No.String())
	}
}

func TestOrderbookSnapshotConstruction(t *testing.T) {
	s := OrderbookSnapshot{
		Ticker:   "T1",
		Sequence: 42,
		Yes:      []PriceLevel{{Price: 30, Size: 100}, {Price: 31, Size: 50}},
		No:       []PriceLevel{{Price: 69, Size: 200}},
		Ts:       0,
	}

	if s.Ticker != "T1" || s.Sequence != 42 {
		t.Fatalf("unexpected snapshot header: %+v", s)
	}
	if len(s.Yes) != 2 || len(s.No) != 1 {
		t.Fatalf("unexpected level counts: yes=%d no=%d", len(s.Yes), len(s.No))
	}
	if s.Yes[0].Price != 30 || s.Yes[0].Size != 100 {
		t.Errorf("unexpected first yes level: %+v", s.Yes[0])
	}
}

func TestOrderbookDeltaTimestampAlwaysZero(t *testing.T) {
	d := OrderbookDelta{Ticker: "T1", Sequence: 7, Price: 30, Delta: -25, Side: Yes}
	if d.Ts != 0 {
		t.Errorf("Ts = %d, want 0 (deltas never carry a parsed timestamp)", d.Ts)
	}
}

func TestTradeEventDoesNotEnforcePriceSum(t *testing.T) {
	tr := TradeEvent{Ticker: "T1", YesPrice: 60, NoPrice: 60, Count: 5, TakerSide: No}
	if tr.YesPrice+tr.NoPrice != 120 {
		t.Fatalf("test setup broken")
	}
	// No validation is performed at construction; the sum-to-100 invariant
	// is deliberately not enforced anywhere in this package.
}

func TestPriceMaxBoundary(t *testing.T) {
	var p Price = PriceMax
	if p != 100 {
		t.Errorf("PriceMax = %d, want 100", p)
	}
}

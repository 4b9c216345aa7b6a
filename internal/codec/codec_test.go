package codec

import (
	"testing"

	"github.com/rickgao/kalshi-streamfeed/internal/model"
)

func TestDecode_Snapshot(t *testing.T) {
	input := `{"type":"orderbook_snapshot","seq":42,"msg":{"market_ticker":"T1","yes":[[30,100],[31,50]],"no":[[69,200]]}}`

	got, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	snap, ok := got.(*model.OrderbookSnapshot)
	if !ok {
		t.Fatalf("got %T, want *model.OrderbookSnapshot", got)
	}

	if snap.Ticker != "T1" || snap.Sequence != 42 {
		t.Fatalf("unexpected header: %+v", snap)
	}
	wantYes := []model.PriceLevel{{Price: 30, Size: 100}, {Price: 31, Size: 50}}
	wantNo := []model.PriceLevel{{Price: 69, Size: 200}}
	if len(snap.Yes) != len(wantYes) || snap.Yes[0] != wantYes[0] || snap.Yes[1] != wantYes[1] {
		t.Errorf("Yes = %+v, want %+v", snap.Yes, wantYes)
	}
	if len(snap.No) != len(wantNo) || snap.No[0] != wantNo[0] {
		t.Errorf("No = %+v, want %+v", snap.No, wantNo)
	}
	if snap.Ts != 0 {
		t.Errorf("Ts = %d, want 0", snap.Ts)
	}
}

func TestDecode_Delta(t *testing.T) {
	input := `{"type":"orderbook_delta","seq":7,"msg":{"market_ticker":"T1","price":30,"delta":-25,"side":"yes"}}`

	got, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	delta, ok := got.(*model.OrderbookDelta)
	if !ok {
		t.Fatalf("got %T, want *model.OrderbookDelta", got)
	}

	if delta.Ticker != "T1" || delta.Sequence != 7 || delta.Price != 30 || delta.Delta != -25 || delta.Side != model.Yes {
		t.Errorf("unexpected delta: %+v", delta)
	}
	if delta.ClientOrderID != nil {
		t.Errorf("ClientOrderID = %v, want nil", delta.ClientOrderID)
	}
	if delta.Ts != 0 {
		t.Errorf("Ts = %d, want 0 (deltas never carry a timestamp)", delta.Ts)
	}
}

func TestDecode_Trade(t *testing.T) {
	input := `{"type":"trade","msg":{"market_ticker":"T1","yes_price":60,"no_price":45,"count":3,"taker_side":"no","ts":1705328200}}`

	got, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	trade, ok := got.(*model.TradeEvent)
	if !ok {
		t.Fatalf("got %T, want *model.TradeEvent", got)
	}

	if trade.Ticker != "T1" || trade.YesPrice != 60 || trade.NoPrice != 45 || trade.Count != 3 || trade.TakerSide != model.No {
		t.Errorf("unexpected trade: %+v", trade)
	}
	if trade.Ts != 1705328200*1_000_000_000 {
		t.Errorf("Ts = %d, want %d", trade.Ts, int64(1705328200)*1_000_000_000)
	}
}

func TestDecode_TradeWithoutSumConstraint(t *testing.T) {
	input := `{"type":"trade","msg":{"market_ticker":"T1","yes_price":60,"no_price":60,"count":1,"taker_side":"yes"}}`

	got, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	trade := got.(*model.TradeEvent)
	if trade.YesPrice+trade.NoPrice != 120 {
		t.Fatalf("test setup broken")
	}
	if trade.Ts != 0 {
		t.Errorf("Ts = %d, want 0 when absent", trade.Ts)
	}
}

func TestDecode_RejectsInvalidPrice(t *testing.T) {
	input := `{"type":"orderbook_snapshot","seq":1,"msg":{"market_ticker":"T1","yes":[[101,1]],"no":[]}}`

	_, err := Decode([]byte(input))
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != InvalidField {
		t.Fatalf("got %v, want InvalidField", err)
	}
}

func TestDecode_PriceBoundary(t *testing.T) {
	for _, price := range []int{0, 100} {
		input := `{"type":"orderbook_snapshot","seq":1,"msg":{"market_ticker":"T1","yes":[[` +
			itoa(price) + `,1]],"no":[]}}`
		if _, err := Decode([]byte(input)); err != nil {
			t.Errorf("price %d: unexpected error %v", price, err)
		}
	}
	input := `{"type":"orderbook_snapshot","seq":1,"msg":{"market_ticker":"T1","yes":[[101,1]],"no":[]}}`
	if _, err := Decode([]byte(input)); err == nil {
		t.Error("price 101: expected InvalidField error")
	}
}

func TestDecode_EmptyMessage(t *testing.T) {
	_, err := Decode([]byte(""))
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != EmptyMessage {
		t.Fatalf("got %v, want EmptyMessage", err)
	}
}

func TestDecode_InvalidJson(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != InvalidJson {
		t.Fatalf("got %v, want InvalidJson", err)
	}
}

func TestDecode_MissingType(t *testing.T) {
	_, err := Decode([]byte(`{"seq":1}`))
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != MissingType {
		t.Fatalf("got %v, want MissingType", err)
	}
}

func TestDecode_UnsupportedType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"market_status","msg":{}}`))
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != UnsupportedType {
		t.Fatalf("got %v, want UnsupportedType", err)
	}
}

func TestDecode_SnapshotMissingArrayField(t *testing.T) {
	input := `{"type":"orderbook_snapshot","seq":1,"msg":{"market_ticker":"T1","yes":[[1,1]]}}`
	_, err := Decode([]byte(input))
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != MissingField {
		t.Fatalf("got %v, want MissingField", err)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

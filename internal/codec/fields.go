package codec

// Wire type discriminators and field names, mirroring the exchange's JSON
// message shapes.
const (
	typeOrderbookSnapshot = "orderbook_snapshot"
	typeOrderbookDelta    = "orderbook_delta"
	typeTrade             = "trade"

	sideYes = "yes"
	sideNo  = "no"
)

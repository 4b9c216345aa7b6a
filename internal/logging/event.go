package logging

// Event is a single structured log record. TsMs is filled in by the logger
// at enqueue time when left zero.
type Event struct {
	TsMs       int64
	Level      Level
	Component  string
	Message    string
	Fields     Fields
	Raw        string
	IncludeRaw bool
}

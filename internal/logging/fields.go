package logging

// Field is a single structured key/value pair attached to an Event. Value
// must be one of: string, int64, uint64, float64, bool, []string.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered list of Field, preserving insertion order in the
// emitted JSON line.
type Fields []Field

// NewFields returns an empty, ready-to-append Fields builder.
func NewFields() Fields {
	return Fields{}
}

func (f Fields) String(key, value string) Fields {
	return append(f, Field{Key: key, Value: value})
}

func (f Fields) Int(key string, value int64) Fields {
	return append(f, Field{Key: key, Value: value})
}

func (f Fields) Uint(key string, value uint64) Fields {
	return append(f, Field{Key: key, Value: value})
}

func (f Fields) Float(key string, value float64) Fields {
	return append(f, Field{Key: key, Value: value})
}

func (f Fields) Bool(key string, value bool) Fields {
	return append(f, Field{Key: key, Value: value})
}

func (f Fields) StringList(key string, value []string) Fields {
	return append(f, Field{Key: key, Value: value})
}

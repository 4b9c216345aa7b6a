package logging

import (
	"fmt"
	"strconv"
	"strings"
)

// encodeLine renders one Event as a single newline-terminated JSON object.
// Hand-rolled rather than delegated to encoding/json so the escape set and
// field order are exactly the ones this system's round-trip invariants
// depend on.
func encodeLine(ev Event) string {
	var b strings.Builder
	b.WriteByte('{')

	b.WriteString(`"ts_ms":`)
	b.WriteString(strconv.FormatInt(ev.TsMs, 10))

	b.WriteString(`,"level":"`)
	b.WriteString(ev.Level.String())
	b.WriteByte('"')

	b.WriteString(`,"component":"`)
	appendEscaped(&b, ev.Component)
	b.WriteByte('"')

	b.WriteString(`,"msg":"`)
	appendEscaped(&b, ev.Message)
	b.WriteByte('"')

	if len(ev.Fields) > 0 {
		b.WriteString(`,"fields":{`)
		for i, f := range ev.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			appendEscaped(&b, f.Key)
			b.WriteString(`":`)
			appendFieldValue(&b, f.Value)
		}
		b.WriteByte('}')
	}

	if ev.IncludeRaw {
		b.WriteString(`,"raw":"`)
		appendEscaped(&b, ev.Raw)
		b.WriteByte('"')
	}

	b.WriteByte('}')
	b.WriteByte('\n')
	return b.String()
}

func appendFieldValue(b *strings.Builder, v any) {
	switch val := v.(type) {
	case string:
		b.WriteByte('"')
		appendEscaped(b, val)
		b.WriteByte('"')
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(val, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case bool:
		if val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case []string:
		b.WriteByte('[')
		for i, s := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			appendEscaped(b, s)
			b.WriteByte('"')
		}
		b.WriteByte(']')
	default:
		b.WriteByte('"')
		appendEscaped(b, fmt.Sprintf("%v", val))
		b.WriteByte('"')
	}
}

// appendEscaped writes s into b applying JSON string escaping: backslash,
// double quote, the control-character mnemonics \b \f \n \r \t, and all
// other bytes below 0x20 as uppercase \uXXXX.
func appendEscaped(b *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
}

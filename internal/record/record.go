package record

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the tagged type of a Value. Rows come from stores whose
// schema is unknown at build time, so every cell carries its own tag and
// downstream code switches on Kind instead of doing runtime type assertions.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindText
	KindTimestamp
	KindJSON
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	case KindTimestamp:
		return "timestamp"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Value is a single tagged cell value. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
	Text  string
	Time  time.Time
}

// Null returns the null value
func Null() Value {
	return Value{Kind: KindNull}
}

// IntValue creates an integer value
func IntValue(v int64) Value {
	return Value{Kind: KindInt, Int: v}
}

// FloatValue creates a float value
func FloatValue(v float64) Value {
	return Value{Kind: KindFloat, Float: v}
}

// BoolValue creates a boolean value
func BoolValue(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

// TextValue creates a text value
func TextValue(v string) Value {
	return Value{Kind: KindText, Text: v}
}

// TimestampValue creates a timestamp value
func TimestampValue(v time.Time) Value {
	return Value{Kind: KindTimestamp, Time: v}
}

// JSONValue creates a JSON value holding the raw document text
func JSONValue(raw string) Value {
	return Value{Kind: KindJSON, Text: raw}
}

// FromAny converts a value produced by a database/sql driver into a tagged
// Value. Unrecognized driver types are rendered through fmt and tagged as text
// rather than rejected, since the engine has no schema to validate against.
func FromAny(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case int64:
		return IntValue(val)
	case int:
		return IntValue(int64(val))
	case int32:
		return IntValue(int64(val))
	case float64:
		return FloatValue(val)
	case float32:
		return FloatValue(float64(val))
	case bool:
		return BoolValue(val)
	case time.Time:
		return TimestampValue(val)
	case []byte:
		return tagText(string(val))
	case string:
		return tagText(val)
	default:
		return TextValue(fmt.Sprintf("%v", val))
	}
}

// tagText tags string data, recognizing JSON documents by their leading token
func tagText(s string) Value {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if json.Valid([]byte(trimmed)) {
			return JSONValue(s)
		}
	}

	return TextValue(s)
}

// IsNull reports whether the value is null
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Raw returns the untagged Go value, suitable for driver arguments
func (v Value) Raw() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindTimestamp:
		return v.Time
	default:
		return v.Text
	}
}

// String renders the value for display
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindTimestamp:
		return v.Time.Format(time.RFC3339)
	default:
		return v.Text
	}
}

// canonical renders the value in a form stable enough to hash. The kind is
// included so that e.g. text "1" and integer 1 never collide.
func (v Value) canonical() string {
	return v.Kind.String() + ":" + v.String()
}

// Record is one row as a mapping from column name to tagged value
type Record map[string]Value

// Columns returns the record's column names in sorted order
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r))
	for col := range r {
		cols = append(cols, col)
	}

	sort.Strings(cols)

	return cols
}

// Hash computes a content hash over the full (column, value) set. Column
// order in the underlying map does not affect the result, so the hash serves
// as a dedup key for identical rows surfaced by overlapping queries.
func (r Record) Hash() string {
	hasher := sha256.New()

	for _, col := range r.Columns() {
		hasher.Write([]byte(col))
		hasher.Write([]byte{0})
		hasher.Write([]byte(r[col].canonical()))
		hasher.Write([]byte{0})
	}

	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromAny(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    interface{}
		expected Kind
	}{
		{name: "nil", input: nil, expected: KindNull},
		{name: "int64", input: int64(42), expected: KindInt},
		{name: "int", input: 42, expected: KindInt},
		{name: "float64", input: 3.14, expected: KindFloat},
		{name: "bool", input: true, expected: KindBool},
		{name: "time", input: ts, expected: KindTimestamp},
		{name: "plain string", input: "hello", expected: KindText},
		{name: "json object string", input: `{"a": 1}`, expected: KindJSON},
		{name: "json array bytes", input: []byte(`[1, 2, 3]`), expected: KindJSON},
		{name: "invalid json stays text", input: `{not json`, expected: KindText},
		{name: "bytes as text", input: []byte("raw data"), expected: KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromAny(tt.input).Kind)
		})
	}
}

func TestValueString(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{name: "null", value: Null(), expected: "NULL"},
		{name: "int", value: IntValue(42), expected: "42"},
		{name: "float", value: FloatValue(2.5), expected: "2.5"},
		{name: "bool", value: BoolValue(true), expected: "true"},
		{name: "text", value: TextValue("hello"), expected: "hello"},
		{name: "timestamp", value: TimestampValue(ts), expected: "2024-03-01T12:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.String())
		})
	}
}

func TestRecordHashStable(t *testing.T) {
	a := Record{
		"id":    IntValue(1),
		"title": TextValue("hello"),
	}
	b := Record{
		"title": TextValue("hello"),
		"id":    IntValue(1),
	}

	assert.Equal(t, a.Hash(), b.Hash())
	assert.Len(t, a.Hash(), 16)
}

func TestRecordHashDistinguishesContent(t *testing.T) {
	base := Record{"id": IntValue(1), "title": TextValue("hello")}
	differentValue := Record{"id": IntValue(2), "title": TextValue("hello")}
	differentColumn := Record{"id": IntValue(1), "name": TextValue("hello")}

	assert.NotEqual(t, base.Hash(), differentValue.Hash())
	assert.NotEqual(t, base.Hash(), differentColumn.Hash())
}

func TestRecordHashDistinguishesKinds(t *testing.T) {
	asInt := Record{"v": IntValue(1)}
	asText := Record{"v": TextValue("1")}

	assert.NotEqual(t, asInt.Hash(), asText.Hash())
}

func TestColumnsSorted(t *testing.T) {
	rec := Record{
		"zebra": Null(),
		"apple": Null(),
		"mango": Null(),
	}

	assert.Equal(t, []string{"apple", "mango", "zebra"}, rec.Columns())
}

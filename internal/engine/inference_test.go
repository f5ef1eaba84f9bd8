package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dbscout/dbscout/internal/record"
)

func TestInfer(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		column     string
		samples    []record.Value
		inferred   InferredType
		searchable bool
	}{
		{
			name:     "integers",
			column:   "score",
			samples:  []record.Value{record.IntValue(1), record.IntValue(2), record.IntValue(3)},
			inferred: TypeInteger,
		},
		{
			name:   "numeric strings",
			column: "count",
			samples: []record.Value{
				record.TextValue("10"), record.TextValue("20"), record.TextValue("30"),
			},
			inferred: TypeInteger,
		},
		{
			name:   "boolean strings",
			column: "active",
			samples: []record.Value{
				record.TextValue("true"), record.TextValue("false"),
			},
			inferred: TypeBoolean,
		},
		{
			name:     "mixed ints and floats",
			column:   "ratio",
			samples:  []record.Value{record.IntValue(1), record.FloatValue(2.5)},
			inferred: TypeFloat,
		},
		{
			name:   "iso timestamps",
			column: "created",
			samples: []record.Value{
				record.TextValue("2024-03-01T12:00:00Z"),
				record.TextValue("2024-03-02 08:15:00"),
				record.TextValue("2024-03-03"),
			},
			inferred: TypeTimestamp,
		},
		{
			name:     "driver timestamps",
			column:   "created",
			samples:  []record.Value{record.TimestampValue(ts)},
			inferred: TypeTimestamp,
		},
		{
			name:   "json documents",
			column: "payload",
			samples: []record.Value{
				record.JSONValue(`{"a": 1}`), record.JSONValue(`[1, 2]`),
			},
			inferred: TypeJSON,
		},
		{
			name:   "prose is searchable text",
			column: "title",
			samples: []record.Value{
				record.TextValue("Looking for a comfortable wireless bra"),
				record.TextValue("Knix review after six months of daily wear"),
			},
			inferred:   TypeText,
			searchable: true,
		},
		{
			name:   "short codes are unsearchable text",
			column: "status",
			samples: []record.Value{
				record.TextValue("ok"), record.TextValue("err"),
			},
			inferred: TypeText,
		},
		{
			name:   "uuids are unsearchable text",
			column: "token",
			samples: []record.Value{
				record.TextValue("550e8400-e29b-41d4-a716-446655440000"),
				record.TextValue("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			},
			inferred: TypeText,
		},
		{
			name:   "id column name blocks searchability",
			column: "external_id",
			samples: []record.Value{
				record.TextValue("customer record from the north region"),
				record.TextValue("customer record from the south region"),
			},
			inferred: TypeText,
		},
		{
			name:   "bare id column name blocks searchability",
			column: "ID",
			samples: []record.Value{
				record.TextValue("some rather long identifier string"),
			},
			inferred: TypeText,
		},
		{
			name:     "disagreeing samples fall back to text",
			column:   "mixed",
			samples:  []record.Value{record.IntValue(1), record.TextValue("hello")},
			inferred: TypeText,
		},
		{
			name:     "all null is unknown",
			column:   "empty",
			samples:  []record.Value{record.Null(), record.Null()},
			inferred: TypeUnknown,
		},
		{
			name:     "no samples is unknown",
			column:   "empty",
			samples:  nil,
			inferred: TypeUnknown,
		},
		{
			name:   "nulls are discarded before classification",
			column: "score",
			samples: []record.Value{
				record.Null(), record.IntValue(7), record.Null(),
			},
			inferred: TypeInteger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inferred, searchable := Infer(tt.column, tt.samples, 8)

			assert.Equal(t, tt.inferred, inferred)
			assert.Equal(t, tt.searchable, searchable)
		})
	}
}

func TestInferThresholdBoundary(t *testing.T) {
	// Average length exactly at the threshold counts as searchable.
	samples := []record.Value{record.TextValue("12345678")}

	_, searchable := Infer("notes", samples, 8)
	assert.True(t, searchable)

	_, searchable = Infer("notes", samples, 9)
	assert.False(t, searchable)
}

func TestInferPrecedenceBooleanBeforeInteger(t *testing.T) {
	// "true"/"false" never parse as integers, so boolean wins by parsing,
	// but a column of "0"/"1" style flags must classify as integer.
	inferred, _ := Infer("flag", []record.Value{
		record.TextValue("0"), record.TextValue("1"),
	}, 8)

	assert.Equal(t, TypeInteger, inferred)
}

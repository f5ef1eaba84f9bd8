// Package engine implements the schema-agnostic discovery-and-query core:
// type inference from sampled data, table discovery with heuristic fallback,
// column profiling, declarative query building, and the bounded-concurrency
// cross-table search coordinator.
package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dbscout/dbscout/internal/record"
)

// InferredType is the semantic type assigned to a column from sampled values
type InferredType string

const (
	TypeInteger   InferredType = "integer"
	TypeFloat     InferredType = "float"
	TypeBoolean   InferredType = "boolean"
	TypeTimestamp InferredType = "timestamp"
	TypeJSON      InferredType = "json"
	TypeText      InferredType = "text"
	TypeUnknown   InferredType = "unknown"
)

// isoTimestampPattern matches ISO-8601-like date and datetime strings
var isoTimestampPattern = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`,
)

// inferencePrecedence is the parse order for classification. A sample set is
// classified by the first type every non-null value parses as.
var inferencePrecedence = []InferredType{
	TypeBoolean,
	TypeInteger,
	TypeFloat,
	TypeTimestamp,
	TypeJSON,
}

// Infer maps a sampled set of values to an inferred type and a
// text-searchability verdict. Nulls are discarded first; an all-null or empty
// sample yields Unknown. Values that disagree fall back to Text.
//
// The searchability heuristic trades precision for robustness: a non-prose
// text column marked searchable costs a wasted query, while a prose column
// marked unsearchable hides real content.
func Infer(column string, samples []record.Value, textLengthThreshold int) (InferredType, bool) {
	var nonNull []record.Value

	for _, v := range samples {
		if !v.IsNull() {
			nonNull = append(nonNull, v)
		}
	}

	if len(nonNull) == 0 {
		return TypeUnknown, false
	}

	inferred := TypeText

	for _, candidate := range inferencePrecedence {
		if allParseAs(nonNull, candidate) {
			inferred = candidate
			break
		}
	}

	if inferred != TypeText {
		return inferred, false
	}

	return TypeText, textSearchable(column, nonNull, textLengthThreshold)
}

// allParseAs reports whether every value parses as the candidate type
func allParseAs(values []record.Value, candidate InferredType) bool {
	for _, v := range values {
		if !parsesAs(v, candidate) {
			return false
		}
	}

	return true
}

// parsesAs reports whether one tagged value parses as the candidate type.
// Already-typed driver values short-circuit; text values are parsed.
func parsesAs(v record.Value, candidate InferredType) bool {
	switch candidate {
	case TypeBoolean:
		if v.Kind == record.KindBool {
			return true
		}

		return v.Kind == record.KindText && (v.Text == "true" || v.Text == "false")
	case TypeInteger:
		if v.Kind == record.KindInt {
			return true
		}

		if v.Kind != record.KindText {
			return false
		}

		_, err := strconv.ParseInt(strings.TrimSpace(v.Text), 10, 64)

		return err == nil
	case TypeFloat:
		if v.Kind == record.KindInt || v.Kind == record.KindFloat {
			return true
		}

		if v.Kind != record.KindText {
			return false
		}

		_, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)

		return err == nil
	case TypeTimestamp:
		if v.Kind == record.KindTimestamp {
			return true
		}

		return v.Kind == record.KindText && isoTimestampPattern.MatchString(strings.TrimSpace(v.Text))
	case TypeJSON:
		if v.Kind == record.KindJSON {
			return true
		}

		if v.Kind != record.KindText {
			return false
		}

		trimmed := strings.TrimSpace(v.Text)

		return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
	default:
		return false
	}
}

// textSearchable decides whether a text column likely holds free-form prose
// worth substring searching: long enough on average, and not identifier-like.
func textSearchable(column string, values []record.Value, threshold int) bool {
	if identifierLikeName(column) {
		return false
	}

	if allUUIDShaped(values) {
		return false
	}

	var total int

	for _, v := range values {
		total += len(v.Text)
	}

	avg := float64(total) / float64(len(values))

	return avg >= float64(threshold)
}

// identifierLikeName matches column names that conventionally hold keys
func identifierLikeName(column string) bool {
	lower := strings.ToLower(column)

	return lower == "id" || strings.HasSuffix(lower, "_id")
}

// allUUIDShaped reports whether every value parses as a UUID
func allUUIDShaped(values []record.Value) bool {
	for _, v := range values {
		if _, err := uuid.Parse(strings.TrimSpace(v.Text)); err != nil {
			return false
		}
	}

	return true
}

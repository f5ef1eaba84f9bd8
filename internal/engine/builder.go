package engine

import (
	"sort"
	"strings"

	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/store"
)

// Direction is the sort order for a query
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// RangeFilter bounds a column from below and/or above. Either bound may be
// nil, leaving that side open.
type RangeFilter struct {
	Min interface{} `json:"min,omitempty"`
	Max interface{} `json:"max,omitempty"`
}

// QuerySpec is a declarative description of a single-table filtered, sorted,
// limited read. Every referenced column must exist in the table's current
// profile set or the query is rejected before execution.
type QuerySpec struct {
	Table        string                 `json:"table"`
	SearchColumn string                 `json:"search_column,omitempty"`
	SearchTerm   string                 `json:"search_term,omitempty"`
	ExactFilters map[string]interface{} `json:"exact_filters,omitempty"`
	RangeFilters map[string]RangeFilter `json:"range_filters,omitempty"`
	OrderBy      string                 `json:"order_by,omitempty"`
	Direction    Direction              `json:"direction,omitempty"`
	Limit        int                    `json:"limit,omitempty"`
}

// Builder translates query specs into parameterized SQL. Clause order is
// fixed (search, exact filters sorted by column, range filters sorted by
// column) so identical specs always yield structurally identical queries.
type Builder struct {
	dialect      store.Dialect
	maxLimit     int
	defaultLimit int
}

// NewBuilder creates a query builder for one dialect
func NewBuilder(dialect store.Dialect, maxLimit, defaultLimit int) *Builder {
	return &Builder{
		dialect:      dialect,
		maxLimit:     maxLimit,
		defaultLimit: defaultLimit,
	}
}

// SampleQuery builds the bounded unfiltered read the profiler samples with
func (b *Builder) SampleQuery(table string, sampleSize int) store.ExecutableQuery {
	return store.ExecutableQuery{
		SQL:  "SELECT * FROM " + b.dialect.QuoteIdentifier(table) + " LIMIT ?",
		Args: []interface{}{sampleSize},
	}
}

// Build validates a spec against the table's profiles and renders it to SQL.
// Unknown columns fail with unknown_column before anything executes. An
// invalid orderBy column drops the ORDER BY clause rather than failing the
// query. Out-of-range limits are clamped into [1, maxLimit], not rejected.
func (b *Builder) Build(
	spec QuerySpec,
	profiles []ColumnProfile,
) (store.ExecutableQuery, error) {
	var empty store.ExecutableQuery

	if strings.TrimSpace(spec.Table) == "" {
		return empty, errors.New(errors.ErrTypeValidation, "query spec requires a table")
	}

	if (spec.SearchColumn == "") != (spec.SearchTerm == "") {
		return empty, errors.New(
			errors.ErrTypeValidation,
			"search column and search term must be provided together",
		)
	}

	known := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		known[p.Column] = true
	}

	if spec.SearchColumn != "" && !known[spec.SearchColumn] {
		return empty, errors.NewUnknownColumn(spec.Table, spec.SearchColumn)
	}

	for _, col := range sortedFilterKeys(spec.ExactFilters) {
		if !known[col] {
			return empty, errors.NewUnknownColumn(spec.Table, col)
		}
	}

	for _, col := range sortedRangeKeys(spec.RangeFilters) {
		if !known[col] {
			return empty, errors.NewUnknownColumn(spec.Table, col)
		}
	}

	var (
		clauses []string
		args    []interface{}
	)

	if spec.SearchColumn != "" {
		clauses = append(
			clauses,
			"LOWER("+b.dialect.QuoteIdentifier(spec.SearchColumn)+") LIKE LOWER(?)",
		)
		args = append(args, "%"+spec.SearchTerm+"%")
	}

	for _, col := range sortedFilterKeys(spec.ExactFilters) {
		clauses = append(clauses, b.dialect.QuoteIdentifier(col)+" = ?")
		args = append(args, spec.ExactFilters[col])
	}

	for _, col := range sortedRangeKeys(spec.RangeFilters) {
		rf := spec.RangeFilters[col]

		if rf.Min != nil {
			clauses = append(clauses, b.dialect.QuoteIdentifier(col)+" >= ?")
			args = append(args, rf.Min)
		}

		if rf.Max != nil {
			clauses = append(clauses, b.dialect.QuoteIdentifier(col)+" <= ?")
			args = append(args, rf.Max)
		}
	}

	var sb strings.Builder

	sb.WriteString("SELECT * FROM ")
	sb.WriteString(b.dialect.QuoteIdentifier(spec.Table))

	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}

	if spec.OrderBy != "" && known[spec.OrderBy] {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.dialect.QuoteIdentifier(spec.OrderBy))

		if spec.Direction == Desc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}

	sb.WriteString(" LIMIT ?")
	args = append(args, b.clampLimit(spec.Limit))

	return store.ExecutableQuery{SQL: sb.String(), Args: args}, nil
}

// clampLimit folds an out-of-range limit into [1, maxLimit]; zero and
// negative values take the default.
func (b *Builder) clampLimit(limit int) int {
	if limit <= 0 {
		return b.defaultLimit
	}

	if limit > b.maxLimit {
		return b.maxLimit
	}

	return limit
}

// sortedFilterKeys returns filter columns in deterministic order
func sortedFilterKeys(filters map[string]interface{}) []string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// sortedRangeKeys returns range-filter columns in deterministic order
func sortedRangeKeys(filters map[string]RangeFilter) []string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

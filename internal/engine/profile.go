package engine

import (
	"context"

	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/logging"
	"github.com/dbscout/dbscout/internal/record"
	"github.com/dbscout/dbscout/internal/store"
)

// maxSampleDisplayValues bounds how many raw values a profile carries for
// display; maxSampleDisplayLen truncates long ones.
const (
	maxSampleDisplayValues = 5
	maxSampleDisplayLen    = 100
)

// ColumnProfile is the inferred type and searchability verdict for one
// column, derived from a bounded sample. A profile reflects only the sample
// taken at profiling time; it is not guaranteed fresh relative to live data.
type ColumnProfile struct {
	Table          string       `json:"table"`
	Column         string       `json:"column"`
	InferredType   InferredType `json:"inferred_type"`
	TextSearchable bool         `json:"text_searchable"`
	SampleValues   []string     `json:"sample_values,omitempty"`
	NoData         bool         `json:"no_data,omitempty"`
}

// Profiler samples a table and produces column profiles using type inference
type Profiler struct {
	store      store.Store
	builder    *Builder
	cache      *ProfileCache
	sampleSize int
	textMinLen int
	logger     *logging.Logger
}

// NewProfiler creates a table profiler
func NewProfiler(
	st store.Store,
	builder *Builder,
	cache *ProfileCache,
	sampleSize, textMinLen int,
	logger *logging.Logger,
) *Profiler {
	return &Profiler{
		store:      st,
		builder:    builder,
		cache:      cache,
		sampleSize: sampleSize,
		textMinLen: textMinLen,
		logger:     logger,
	}
}

// Describe profiles a table from a bounded sample, cache-first. A table with
// zero rows yields one Unknown-typed profile per observed column with the
// NoData marker set, not an error. A table the store does not know fails
// with unknown_table.
func (p *Profiler) Describe(ctx context.Context, table string) ([]ColumnProfile, error) {
	if profiles, ok := p.cache.Get(table); ok {
		return profiles, nil
	}

	result, err := p.store.Select(ctx, p.builder.SampleQuery(table, p.sampleSize))
	if err != nil {
		if errors.IsType(err, errors.ErrTypeUnknownTable) {
			return nil, errors.NewUnknownTable(table)
		}

		return nil, err
	}

	if len(result.Columns) == 0 {
		return nil, errors.NewUnknownTable(table)
	}

	profiles := p.profileColumns(table, result)

	p.cache.Set(table, profiles)
	p.logger.WithFields(map[string]interface{}{
		"table":   table,
		"columns": len(profiles),
		"rows":    len(result.Rows),
	}).Debug("profiled table")

	return profiles, nil
}

// profileColumns applies type inference per observed column, preserving the
// store's column order.
func (p *Profiler) profileColumns(table string, result *store.ResultSet) []ColumnProfile {
	profiles := make([]ColumnProfile, 0, len(result.Columns))

	for _, col := range result.Columns {
		if len(result.Rows) == 0 {
			profiles = append(profiles, ColumnProfile{
				Table:        table,
				Column:       col,
				InferredType: TypeUnknown,
				NoData:       true,
			})

			continue
		}

		samples := make([]record.Value, 0, len(result.Rows))
		for _, row := range result.Rows {
			samples = append(samples, row[col])
		}

		inferred, searchable := Infer(col, samples, p.textMinLen)

		profiles = append(profiles, ColumnProfile{
			Table:          table,
			Column:         col,
			InferredType:   inferred,
			TextSearchable: searchable,
			SampleValues:   displayValues(samples),
		})
	}

	return profiles
}

// displayValues renders up to maxSampleDisplayValues non-null samples,
// truncated for display.
func displayValues(samples []record.Value) []string {
	var values []string

	for _, v := range samples {
		if v.IsNull() {
			continue
		}

		rendered := v.String()
		if len(rendered) > maxSampleDisplayLen {
			rendered = rendered[:maxSampleDisplayLen] + "..."
		}

		values = append(values, rendered)

		if len(values) == maxSampleDisplayValues {
			break
		}
	}

	return values
}

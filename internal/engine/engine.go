package engine

import (
	"context"

	"github.com/dbscout/dbscout/internal/config"
	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/logging"
	"github.com/dbscout/dbscout/internal/store"
)

// Engine wires the discovery-and-query components over one store and one
// shared profile cache. It is the surface an external tool-dispatch or CLI
// layer talks to; every operation returns typed values and typed errors.
type Engine struct {
	store       store.Store
	cache       *ProfileCache
	discoverer  *Discoverer
	profiler    *Profiler
	builder     *Builder
	coordinator *Coordinator
	logger      *logging.Logger
}

// New assembles an engine from configuration. The heuristic table-name
// suggestions are passed in resolved so the engine itself does no file IO.
func New(
	st store.Store,
	cfg *config.Config,
	suggestions []string,
	logger *logging.Logger,
) *Engine {
	cache := NewProfileCache(cfg.Engine.ProfileCacheTTLDuration())
	builder := NewBuilder(st.Dialect(), cfg.Engine.MaxLimit, cfg.Engine.DefaultLimit)
	profiler := NewProfiler(
		st, builder, cache,
		cfg.Engine.SampleSize, cfg.Engine.TextSearchLengthThreshold,
		logger,
	)

	return &Engine{
		store:      st,
		cache:      cache,
		discoverer: NewDiscoverer(st, suggestions, logger),
		profiler:   profiler,
		builder:    builder,
		coordinator: NewCoordinator(
			st, profiler, builder,
			cfg.Engine.SearchConcurrency,
			cfg.Engine.OverallSearchTimeoutDuration(),
			logger,
		),
		logger: logger,
	}
}

// ListTables enumerates tables, degrading silently to heuristic suggestions
func (e *Engine) ListTables(ctx context.Context) ([]TableDescriptor, error) {
	return e.discoverer.ListTables(ctx)
}

// DescribeTable returns the column profiles for one table, cache-first
func (e *Engine) DescribeTable(ctx context.Context, table string) ([]ColumnProfile, error) {
	return e.profiler.Describe(ctx, table)
}

// Query validates a spec against the table's current profiles, builds the
// parameterized query, and executes it.
func (e *Engine) Query(ctx context.Context, spec QuerySpec) (*store.ResultSet, error) {
	profiles, err := e.profiler.Describe(ctx, spec.Table)
	if err != nil {
		return nil, err
	}

	query, err := e.builder.Build(spec, profiles)
	if err != nil {
		return nil, err
	}

	return e.store.Select(ctx, query)
}

// SearchAcross fans a term out over the given tables. With no tables named,
// the discoverer's current view is searched instead.
func (e *Engine) SearchAcross(
	ctx context.Context,
	term string,
	tables []string,
	limitPerTable int,
) (*AggregatedSearchResult, error) {
	if len(tables) == 0 {
		descriptors, err := e.discoverer.ListTables(ctx)
		if err != nil {
			return nil, err
		}

		for _, d := range descriptors {
			tables = append(tables, d.Name)
		}

		if len(tables) == 0 {
			return nil, errors.New(
				errors.ErrTypeValidation,
				"no tables to search: none requested and none discoverable",
			)
		}
	}

	return e.coordinator.SearchAcross(ctx, term, tables, limitPerTable)
}

// Insert adds a single row and invalidates the table's cached profile, since
// the new row may change the inferred shape.
func (e *Engine) Insert(ctx context.Context, table string, row map[string]interface{}) error {
	if err := e.store.Insert(ctx, table, row); err != nil {
		return err
	}

	e.cache.Invalidate(table)

	return nil
}

// Update modifies matching rows and invalidates the table's cached profile
func (e *Engine) Update(
	ctx context.Context,
	table string,
	values, filters map[string]interface{},
) (int64, error) {
	affected, err := e.store.Update(ctx, table, values, filters)
	if err != nil {
		return 0, err
	}

	e.cache.Invalidate(table)

	return affected, nil
}

// Delete removes matching rows and invalidates the table's cached profile
func (e *Engine) Delete(
	ctx context.Context,
	table string,
	filters map[string]interface{},
) (int64, error) {
	affected, err := e.store.Delete(ctx, table, filters)
	if err != nil {
		return 0, err
	}

	e.cache.Invalidate(table)

	return affected, nil
}

// InvalidateProfile drops one table's cached profile
func (e *Engine) InvalidateProfile(table string) {
	e.cache.Invalidate(table)
}

// CacheStats reports profile cache effectiveness
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

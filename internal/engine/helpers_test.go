package engine

import (
	"context"
	"sync"
	"time"

	"github.com/dbscout/dbscout/internal/config"
	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/logging"
	"github.com/dbscout/dbscout/internal/store"
)

// fakeStore serves canned result sets keyed by the exact SQL the builder
// renders, so tests assert the engine's behavior without a live database.
type fakeStore struct {
	mu       sync.Mutex
	dialect  store.Dialect
	results  map[string]*store.ResultSet
	errs     map[string]error
	delays   map[string]time.Duration
	names    []string
	namesErr error
	queries  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		dialect: store.DialectFor("duckdb"),
		results: make(map[string]*store.ResultSet),
		errs:    make(map[string]error),
		delays:  make(map[string]time.Duration),
	}
}

func (f *fakeStore) Select(ctx context.Context, query store.ExecutableQuery) (*store.ResultSet, error) {
	if delay, ok := f.delays[query.SQL]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), errors.ErrTypeTimeout, "query timed out")
		}
	}

	f.mu.Lock()
	f.queries = append(f.queries, query.SQL)
	f.mu.Unlock()

	if err, ok := f.errs[query.SQL]; ok {
		return nil, err
	}

	if result, ok := f.results[query.SQL]; ok {
		return result, nil
	}

	return nil, errors.Newf(errors.ErrTypeUnknownTable, "no result registered for %q", query.SQL)
}

func (f *fakeStore) TableNames(_ context.Context) ([]string, error) {
	if f.namesErr != nil {
		return nil, f.namesErr
	}

	return f.names, nil
}

func (f *fakeStore) Insert(_ context.Context, _ string, _ map[string]interface{}) error {
	return nil
}

func (f *fakeStore) Update(
	_ context.Context, _ string, _, _ map[string]interface{},
) (int64, error) {
	return 1, nil
}

func (f *fakeStore) Delete(_ context.Context, _ string, _ map[string]interface{}) (int64, error) {
	return 1, nil
}

func (f *fakeStore) Dialect() store.Dialect {
	return f.dialect
}

func (f *fakeStore) Ping(_ context.Context) error {
	return nil
}

func (f *fakeStore) Close() error {
	return nil
}

func (f *fakeStore) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.queries)
}

func testLogger() *logging.Logger {
	logger, err := logging.NewLogger(config.LoggingConfig{
		Level:  "error",
		Format: "text",
		Output: "stderr",
	})
	if err != nil {
		panic(err)
	}

	return logger
}

func testBuilder() *Builder {
	return NewBuilder(store.DialectFor("duckdb"), 1000, 50)
}

func testProfiler(st store.Store, cache *ProfileCache) *Profiler {
	if cache == nil {
		cache = NewProfileCache(time.Minute)
	}

	return NewProfiler(st, testBuilder(), cache, 8, 8, testLogger())
}

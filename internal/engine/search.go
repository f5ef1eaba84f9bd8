package engine

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/logging"
	"github.com/dbscout/dbscout/internal/record"
	"github.com/dbscout/dbscout/internal/store"
)

// SearchResult is one table's share of a cross-table search. Err is set iff
// the table's pipeline failed, in which case Rows is empty.
type SearchResult struct {
	Table          string          `json:"table"`
	Rows           []record.Record `json:"rows"`
	MatchedColumns []string        `json:"matched_columns,omitempty"`
	Err            error           `json:"-"`
}

// AggregatedSearchResult merges per-table searches. PerTable preserves
// request order; DedupedRows is first-seen-wins across tables;
// TotalMatches counts rows before cross-table dedup.
type AggregatedSearchResult struct {
	Term         string          `json:"term"`
	PerTable     []SearchResult  `json:"per_table"`
	DedupedRows  []record.Record `json:"deduped_rows"`
	TotalMatches int             `json:"total_matches"`
	TablesFailed []string        `json:"tables_failed,omitempty"`
}

// Coordinator fans a search term out across tables with bounded concurrency,
// isolating per-table failures and merging results deterministically.
type Coordinator struct {
	store          store.Store
	profiler       *Profiler
	builder        *Builder
	concurrency    int
	overallTimeout time.Duration
	logger         *logging.Logger
}

// NewCoordinator creates a cross-table search coordinator
func NewCoordinator(
	st store.Store,
	profiler *Profiler,
	builder *Builder,
	concurrency int,
	overallTimeout time.Duration,
	logger *logging.Logger,
) *Coordinator {
	return &Coordinator{
		store:          st,
		profiler:       profiler,
		builder:        builder,
		concurrency:    concurrency,
		overallTimeout: overallTimeout,
		logger:         logger,
	}
}

// SearchAcross searches for a term across the requested tables concurrently.
// Each table is profiled (cache-first), its text-searchable columns are each
// queried, and matching rows are OR-unioned within the table. A failing
// table contributes an error entry, never an abort of its siblings. Branches
// still running when the overall budget expires fold into per-table timeout
// errors. Final row order is grouped by request-table order and never
// depends on task completion order.
func (c *Coordinator) SearchAcross(
	ctx context.Context,
	term string,
	tables []string,
	limitPerTable int,
) (*AggregatedSearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return nil, errors.New(errors.ErrTypeValidation, "search term must not be empty")
	}

	if len(tables) == 0 {
		return nil, errors.New(errors.ErrTypeValidation, "search requires at least one table")
	}

	if c.overallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.overallTimeout)

		defer cancel()
	}

	perTable := make([]SearchResult, len(tables))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, table := range tables {
		i, table := i, table
		g.Go(func() error {
			perTable[i] = c.searchTable(ctx, table, term, limitPerTable)
			return nil
		})
	}

	// Branches never return errors; failures live in their SearchResult.
	_ = g.Wait()

	return c.merge(term, perTable), nil
}

// searchTable runs the profile-then-query pipeline for a single table
func (c *Coordinator) searchTable(
	ctx context.Context,
	table, term string,
	limitPerTable int,
) SearchResult {
	result := SearchResult{Table: table}

	profiles, err := c.profiler.Describe(ctx, table)
	if err != nil {
		result.Err = c.foldTimeout(ctx, err, table)
		return result
	}

	seen := make(map[string]bool)

	for _, profile := range profiles {
		if !profile.TextSearchable {
			continue
		}

		query, err := c.builder.Build(QuerySpec{
			Table:        table,
			SearchColumn: profile.Column,
			SearchTerm:   term,
			Limit:        limitPerTable,
		}, profiles)
		if err != nil {
			return SearchResult{Table: table, Err: err}
		}

		columnResult, err := c.store.Select(ctx, query)
		if err != nil {
			return SearchResult{Table: table, Err: c.foldTimeout(ctx, err, table)}
		}

		matched := false

		for _, row := range columnResult.Rows {
			matched = true

			hash := row.Hash()
			if seen[hash] {
				continue
			}

			seen[hash] = true

			if limitPerTable > 0 && len(result.Rows) >= limitPerTable {
				continue
			}

			result.Rows = append(result.Rows, row)
		}

		if matched {
			result.MatchedColumns = append(result.MatchedColumns, profile.Column)
		}
	}

	return result
}

// foldTimeout rewrites a branch error as a per-table timeout when the call
// budget expired underneath it.
func (c *Coordinator) foldTimeout(ctx context.Context, err error, table string) error {
	if errors.IsType(err, errors.ErrTypeTimeout) {
		return err
	}

	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Wrapf(err, errors.ErrTypeTimeout, "search of table %s timed out", table)
	}

	return err
}

// merge folds per-table results in request order and deduplicates rows by
// content hash, first occurrence winning.
func (c *Coordinator) merge(term string, perTable []SearchResult) *AggregatedSearchResult {
	agg := &AggregatedSearchResult{
		Term:     term,
		PerTable: perTable,
	}

	seen := make(map[string]bool)

	for _, result := range perTable {
		if result.Err != nil {
			agg.TablesFailed = append(agg.TablesFailed, result.Table)

			c.logger.WithFields(map[string]interface{}{
				"table": result.Table,
				"term":  term,
			}).WithError(result.Err).Warn("table search failed")

			continue
		}

		agg.TotalMatches += len(result.Rows)

		for _, row := range result.Rows {
			hash := row.Hash()
			if seen[hash] {
				continue
			}

			seen[hash] = true
			agg.DedupedRows = append(agg.DedupedRows, row)
		}
	}

	return agg
}

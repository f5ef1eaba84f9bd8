// Package store provides the datastore-access layer: a narrow, driver-backed
// contract the discovery-and-query engine builds on. The engine never sees
// database/sql directly; it sees parameterized queries in, tagged records out.
package store

import (
	"context"
	"strings"

	"github.com/dbscout/dbscout/internal/record"
)

// ExecutableQuery is a fully built, parameterized read query. The query
// builder is the only producer; the store only executes.
type ExecutableQuery struct {
	SQL  string
	Args []interface{}
}

// ResultSet holds the rows of one read together with the observed column
// order. Columns are populated even when zero rows match, so callers can
// still learn a table's shape from an empty result.
type ResultSet struct {
	Columns []string
	Rows    []record.Record
}

// Store is the store-access collaborator consumed by the engine. All methods
// must be safe for concurrent invocation; connection pooling discipline lives
// behind this interface.
type Store interface {
	// Select executes a read query and scans every row into a tagged record.
	Select(ctx context.Context, query ExecutableQuery) (*ResultSet, error)

	// TableNames runs one metadata query against the store. Stores that
	// cannot serve it (missing privilege, unsupported capability) return an
	// error of type discovery_unavailable rather than a hard failure.
	TableNames(ctx context.Context) ([]string, error)

	// Insert adds a single row to a table.
	Insert(ctx context.Context, table string, row map[string]interface{}) error

	// Update modifies rows matching the exact filters, returning the number
	// of rows affected.
	Update(ctx context.Context, table string, values, filters map[string]interface{}) (int64, error)

	// Delete removes rows matching the exact filters, returning the number
	// of rows affected. Filters must be non-empty.
	Delete(ctx context.Context, table string, filters map[string]interface{}) (int64, error)

	// Dialect exposes the identifier-quoting rules of the backing store.
	Dialect() Dialect

	Ping(ctx context.Context) error
	Close() error
}

// Dialect captures the per-driver SQL differences the query builder needs.
// All three supported drivers use ? placeholders, so only identifier quoting
// varies.
type Dialect struct {
	Name string
}

// DialectFor returns the dialect for a driver name
func DialectFor(driver string) Dialect {
	return Dialect{Name: strings.ToLower(driver)}
}

// QuoteIdentifier quotes a table or column name for this dialect. Embedded
// quote characters are doubled.
func (d Dialect) QuoteIdentifier(name string) string {
	if d.Name == "mysql" {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}

	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

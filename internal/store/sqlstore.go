package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
	_ "modernc.org/sqlite"              // SQLite driver

	"github.com/dbscout/dbscout/internal/config"
	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/record"
)

// SQLStore implements the Store interface over database/sql
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	timeout time.Duration
}

// NewSQLStore opens a pooled connection for the configured driver and
// verifies it with a ping.
func NewSQLStore(cfg config.StoreConfig) (*SQLStore, error) {
	driver := strings.ToLower(cfg.Driver)

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeConnection, "failed to open %s store", driver)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTimeDuration())

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, errors.ErrTypeConnection, "failed to ping %s store", driver)
	}

	return &SQLStore{
		db:      db,
		dialect: DialectFor(driver),
		timeout: cfg.QueryTimeoutDuration(),
	}, nil
}

// NewSQLStoreFromDB wraps an existing database handle. Used by tests to
// inject a mocked connection.
func NewSQLStoreFromDB(db *sql.DB, driver string, timeout time.Duration) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: DialectFor(driver),
		timeout: timeout,
	}
}

// Dialect returns the store's SQL dialect
func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

// opContext applies the per-query timeout when the caller has not already
// set a tighter deadline.
func (s *SQLStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, s.timeout)
}

// Select executes a read query and scans every row into a tagged record
func (s *SQLStore) Select(ctx context.Context, query ExecutableQuery) (*ResultSet, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query.SQL, query.Args...)
	if err != nil {
		return nil, classifyQueryErr(err, "failed to execute select")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeInternal, "failed to read result columns")
	}

	result := &ResultSet{Columns: columns}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))

		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeInternal, "failed to scan row")
		}

		rec := make(record.Record, len(columns))
		for i, col := range columns {
			rec[col] = record.FromAny(values[i])
		}

		result.Rows = append(result.Rows, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, classifyQueryErr(err, "failed while iterating rows")
	}

	return result, nil
}

// metadataQueries maps driver name to the table-enumeration query for that
// store. Enumeration is an optional capability: failure is classified, not
// fatal.
var metadataQueries = map[string]string{
	"duckdb": `SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'main' ORDER BY table_name`,
	"sqlite": `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`,
	"mysql": `SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() ORDER BY table_name`,
}

// TableNames enumerates tables via the driver's metadata query
func (s *SQLStore) TableNames(ctx context.Context) ([]string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	query, ok := metadataQueries[s.dialect.Name]
	if !ok {
		return nil, errors.Newf(
			errors.ErrTypeDiscoveryUnavailable,
			"no metadata query for driver %s", s.dialect.Name,
		)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classifyMetadataErr(err)
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeInternal, "failed to scan table name")
		}

		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, classifyMetadataErr(err)
	}

	return tables, nil
}

// Insert adds a single row. Columns are rendered in sorted order so identical
// rows always produce identical SQL.
func (s *SQLStore) Insert(ctx context.Context, table string, row map[string]interface{}) error {
	if len(row) == 0 {
		return errors.New(errors.ErrTypeValidation, "insert requires at least one column")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cols := sortedKeys(row)

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))

	for i, col := range cols {
		quoted[i] = s.dialect.QuoteIdentifier(col)
		placeholders[i] = "?"
		args[i] = row[col]
	}

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		s.dialect.QuoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	if _, err := s.db.ExecContext(ctx, insertSQL, args...); err != nil {
		return classifyQueryErr(err, "failed to insert row")
	}

	return nil
}

// Update modifies rows matching the exact filters
func (s *SQLStore) Update(
	ctx context.Context,
	table string,
	values, filters map[string]interface{},
) (int64, error) {
	if len(values) == 0 {
		return 0, errors.New(errors.ErrTypeValidation, "update requires at least one value")
	}

	if len(filters) == 0 {
		return 0, errors.New(errors.ErrTypeValidation, "update requires at least one filter")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var args []interface{}

	setCols := sortedKeys(values)
	setParts := make([]string, len(setCols))

	for i, col := range setCols {
		setParts[i] = s.dialect.QuoteIdentifier(col) + " = ?"
		args = append(args, values[col])
	}

	whereParts, whereArgs := s.buildWhere(filters)
	args = append(args, whereArgs...)

	updateSQL := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		s.dialect.QuoteIdentifier(table),
		strings.Join(setParts, ", "),
		strings.Join(whereParts, " AND "),
	)

	result, err := s.db.ExecContext(ctx, updateSQL, args...)
	if err != nil {
		return 0, classifyQueryErr(err, "failed to update rows")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrTypeInternal, "failed to read rows affected")
	}

	return affected, nil
}

// Delete removes rows matching the exact filters. Empty filters are rejected
// so a malformed call can never empty a table.
func (s *SQLStore) Delete(
	ctx context.Context,
	table string,
	filters map[string]interface{},
) (int64, error) {
	if len(filters) == 0 {
		return 0, errors.New(errors.ErrTypeValidation, "delete requires at least one filter")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	whereParts, args := s.buildWhere(filters)

	deleteSQL := fmt.Sprintf(
		"DELETE FROM %s WHERE %s",
		s.dialect.QuoteIdentifier(table),
		strings.Join(whereParts, " AND "),
	)

	result, err := s.db.ExecContext(ctx, deleteSQL, args...)
	if err != nil {
		return 0, classifyQueryErr(err, "failed to delete rows")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrTypeInternal, "failed to read rows affected")
	}

	return affected, nil
}

// buildWhere renders exact-match filter clauses in sorted column order
func (s *SQLStore) buildWhere(filters map[string]interface{}) ([]string, []interface{}) {
	cols := sortedKeys(filters)

	parts := make([]string, len(cols))
	args := make([]interface{}, len(cols))

	for i, col := range cols {
		parts[i] = s.dialect.QuoteIdentifier(col) + " = ?"
		args[i] = filters[col]
	}

	return parts, args
}

// Ping verifies the connection is alive
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Wrap(err, errors.ErrTypeConnection, "store is unreachable")
	}

	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// sortedKeys returns map keys in sorted order
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// missingTableMarkers are driver error fragments that indicate the queried
// table does not exist (duckdb catalog errors, sqlite, mysql 1146).
var missingTableMarkers = []string{
	"no such table",
	"does not exist",
	"doesn't exist",
	"catalog error",
}

// classifyQueryErr maps a driver error onto the engine's error taxonomy
func classifyQueryErr(err error, message string) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrTypeTimeout, message)
	}

	if stderrors.Is(err, context.Canceled) {
		return errors.Wrap(err, errors.ErrTypeTimeout, message)
	}

	lower := strings.ToLower(err.Error())
	for _, marker := range missingTableMarkers {
		if strings.Contains(lower, marker) {
			return errors.Wrap(err, errors.ErrTypeUnknownTable, message)
		}
	}

	return errors.Wrap(err, errors.ErrTypeConnection, message)
}

// deniedMarkers are driver error fragments that indicate the metadata query
// is unavailable rather than the store being down.
var deniedMarkers = []string{
	"permission denied",
	"access denied",
	"not authorized",
	"not supported",
	"unsupported",
	"no such table: information_schema",
}

// classifyMetadataErr distinguishes soft discovery failures from transport
// failures. Soft failures let the discoverer degrade to heuristics.
func classifyMetadataErr(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.Wrap(err, errors.ErrTypeTimeout, "metadata query timed out")
	}

	lower := strings.ToLower(err.Error())
	for _, marker := range deniedMarkers {
		if strings.Contains(lower, marker) {
			return errors.Wrap(
				err, errors.ErrTypeDiscoveryUnavailable,
				"store cannot serve table enumeration",
			)
		}
	}

	return errors.Wrap(err, errors.ErrTypeConnection, "metadata query failed")
}

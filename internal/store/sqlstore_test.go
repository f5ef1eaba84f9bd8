package store

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/record"
)

func newMockStore(t *testing.T, driver string) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return NewSQLStoreFromDB(db, driver, time.Second), mock
}

func TestSelectScansRows(t *testing.T) {
	st, mock := newMockStore(t, "duckdb")

	query := ExecutableQuery{
		SQL:  `SELECT * FROM "posts" LIMIT ?`,
		Args: []interface{}{8},
	}

	mock.ExpectQuery(regexp.QuoteMeta(query.SQL)).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "payload"}).
			AddRow(int64(1), "hello world", `{"a": 1}`).
			AddRow(int64(2), nil, nil))

	result, err := st.Select(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "title", "payload"}, result.Columns)
	require.Len(t, result.Rows, 2)

	assert.Equal(t, record.KindInt, result.Rows[0]["id"].Kind)
	assert.Equal(t, record.KindText, result.Rows[0]["title"].Kind)
	assert.Equal(t, record.KindJSON, result.Rows[0]["payload"].Kind)
	assert.True(t, result.Rows[1]["title"].IsNull())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectEmptyResultKeepsColumns(t *testing.T) {
	st, mock := newMockStore(t, "duckdb")

	query := ExecutableQuery{SQL: `SELECT * FROM "posts" LIMIT ?`, Args: []interface{}{8}}

	mock.ExpectQuery(regexp.QuoteMeta(query.SQL)).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	result, err := st.Select(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "title"}, result.Columns)
	assert.Empty(t, result.Rows)
}

func TestSelectClassifiesErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected errors.ErrorType
	}{
		{
			name:     "duckdb missing table",
			err:      fmt.Errorf("Catalog Error: Table with name missing does not exist"),
			expected: errors.ErrTypeUnknownTable,
		},
		{
			name:     "sqlite missing table",
			err:      fmt.Errorf("SQL logic error: no such table: missing"),
			expected: errors.ErrTypeUnknownTable,
		},
		{
			name:     "mysql missing table",
			err:      fmt.Errorf("Error 1146: Table 'db.missing' doesn't exist"),
			expected: errors.ErrTypeUnknownTable,
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			expected: errors.ErrTypeTimeout,
		},
		{
			name:     "transport failure",
			err:      fmt.Errorf("dial tcp 127.0.0.1:3306: connection refused"),
			expected: errors.ErrTypeConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, mock := newMockStore(t, "duckdb")

			query := ExecutableQuery{SQL: `SELECT * FROM "missing" LIMIT ?`, Args: []interface{}{8}}
			mock.ExpectQuery(regexp.QuoteMeta(query.SQL)).WillReturnError(tt.err)

			_, err := st.Select(context.Background(), query)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.expected), "got %v", err)
		})
	}
}

func TestTableNames(t *testing.T) {
	for _, driver := range []string{"duckdb", "sqlite", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			st, mock := newMockStore(t, driver)

			mock.ExpectQuery(regexp.QuoteMeta(metadataQueries[driver])).
				WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
					AddRow("comments").
					AddRow("posts"))

			tables, err := st.TableNames(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"comments", "posts"}, tables)

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTableNamesDeniedIsSoft(t *testing.T) {
	st, mock := newMockStore(t, "mysql")

	mock.ExpectQuery(regexp.QuoteMeta(metadataQueries["mysql"])).
		WillReturnError(fmt.Errorf("Error 1044: Access denied for user 'ro'@'%%'"))

	_, err := st.TableNames(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDiscoveryUnavailable))
}

func TestTableNamesTransportFailure(t *testing.T) {
	st, mock := newMockStore(t, "duckdb")

	mock.ExpectQuery(regexp.QuoteMeta(metadataQueries["duckdb"])).
		WillReturnError(fmt.Errorf("database is locked"))

	_, err := st.TableNames(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConnection))
}

func TestTableNamesUnsupportedDriver(t *testing.T) {
	st, _ := newMockStore(t, "oracle")

	_, err := st.TableNames(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDiscoveryUnavailable))
}

func TestInsertRendersSortedColumns(t *testing.T) {
	st, mock := newMockStore(t, "duckdb")

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO "posts" ("score", "title") VALUES (?, ?)`,
	)).
		WithArgs(int64(1), "hello").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := st.Insert(context.Background(), "posts", map[string]interface{}{
		"title": "hello",
		"score": int64(1),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRequiresColumns(t *testing.T) {
	st, _ := newMockStore(t, "duckdb")

	err := st.Insert(context.Background(), "posts", nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestUpdate(t *testing.T) {
	st, mock := newMockStore(t, "duckdb")

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE "posts" SET "score" = ? WHERE "id" = ?`,
	)).
		WithArgs(int64(0), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := st.Update(
		context.Background(), "posts",
		map[string]interface{}{"score": int64(0)},
		map[string]interface{}{"id": int64(7)},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateValidation(t *testing.T) {
	st, _ := newMockStore(t, "duckdb")

	_, err := st.Update(context.Background(), "posts", nil, map[string]interface{}{"id": 1})
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))

	_, err = st.Update(context.Background(), "posts", map[string]interface{}{"score": 0}, nil)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestDelete(t *testing.T) {
	st, mock := newMockStore(t, "mysql")

	mock.ExpectExec(regexp.QuoteMeta(
		"DELETE FROM `posts` WHERE `id` = ?",
	)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := st.Delete(context.Background(), "posts", map[string]interface{}{"id": int64(42)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRefusesEmptyFilters(t *testing.T) {
	st, _ := newMockStore(t, "duckdb")

	_, err := st.Delete(context.Background(), "posts", nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		input    string
		expected string
	}{
		{name: "duckdb", dialect: DialectFor("duckdb"), input: "posts", expected: `"posts"`},
		{name: "sqlite embedded quote", dialect: DialectFor("sqlite"), input: `we"ird`, expected: `"we""ird"`},
		{name: "mysql", dialect: DialectFor("mysql"), input: "posts", expected: "`posts`"},
		{name: "mysql embedded backtick", dialect: DialectFor("mysql"), input: "we`ird", expected: "`we``ird`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.QuoteIdentifier(tt.input))
		})
	}
}

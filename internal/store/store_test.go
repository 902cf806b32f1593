package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net/url"
	"strings"
	"testing"

	"api-testcase-generator/internal/reporter"
	"api-testcase-generator/internal/testcase"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []testcase.Record {
	return []testcase.Record{
		{TestCaseID: "TC-Users-FUNC-POSITIVE-001", APIMethod: "POST", APIPath: "/users", AutomationCandidate: true},
		{TestCaseID: "TC-Users-FUNC-NEGATIVE-002", APIMethod: "POST", APIPath: "/users"},
	}
}

func expectedArgs(batchID string, record testcase.Record) []driver.Value {
	args := []driver.Value{batchID}
	for _, v := range reporter.TestCaseRow(record) {
		args = append(args, v)
	}
	return args
}

func newMockExporter(t *testing.T, dbType string) (*Exporter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	exporter, err := NewExporter(db, dbType, "qa_cases")
	require.NoError(t, err)
	exporter.newID = func() string { return "batch-1" }
	return exporter, mock
}

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, User: "qa", Password: "pw", Database: "cases"}

	tests := []struct {
		dbType string
		driver string
		dsn    string
	}{
		{TypePostgres, "postgres", "host='db' port=5432 user='qa' password='pw' dbname='cases' sslmode='disable'"},
		{TypePgx, "pgx", "postgres://qa:pw@db:5432/cases?sslmode=disable"},
		{TypeSQLServer, "sqlserver", "sqlserver://qa:pw@db:5432?database=cases"},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			cfg.Type = tt.dbType
			driverName, dsn, err := DSN(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driverName)
			assert.Equal(t, tt.dsn, dsn)
		})
	}

	_, _, err := DSN(Config{Type: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type: oracle")
}

func TestDSN_EscapesCredentials(t *testing.T) {
	const password = `p@ss/w?rd 'q' \x`
	cfg := Config{Host: "db.internal", Port: 5433, User: "qa user", Password: password, Database: "cases"}

	t.Run(TypePostgres, func(t *testing.T) {
		cfg.Type = TypePostgres
		_, dsn, err := DSN(cfg)
		require.NoError(t, err)
		parsed, err := pgconn.ParseConfig(dsn)
		require.NoError(t, err)
		assert.Equal(t, password, parsed.Password)
		assert.Equal(t, "qa user", parsed.User)
		assert.Equal(t, "cases", parsed.Database)
	})

	t.Run(TypePgx, func(t *testing.T) {
		cfg.Type = TypePgx
		_, dsn, err := DSN(cfg)
		require.NoError(t, err)
		parsed, err := pgx.ParseConfig(dsn)
		require.NoError(t, err)
		assert.Equal(t, password, parsed.Password)
		assert.Equal(t, "db.internal", parsed.Host)
		assert.Equal(t, uint16(5433), parsed.Port)
	})

	t.Run(TypeMySQL, func(t *testing.T) {
		cfg.Type = TypeMySQL
		_, dsn, err := DSN(cfg)
		require.NoError(t, err)
		parsed, err := mysql.ParseDSN(dsn)
		require.NoError(t, err)
		assert.Equal(t, password, parsed.Passwd)
		assert.Equal(t, "db.internal:5433", parsed.Addr)
		assert.Equal(t, "cases", parsed.DBName)
	})

	t.Run(TypeSQLServer, func(t *testing.T) {
		cfg.Type = TypeSQLServer
		_, dsn, err := DSN(cfg)
		require.NoError(t, err)
		parsed, err := url.Parse(dsn)
		require.NoError(t, err)
		got, ok := parsed.User.Password()
		require.True(t, ok)
		assert.Equal(t, password, got)
		assert.Equal(t, "cases", parsed.Query().Get("database"))
	})
}

func TestNewExporter_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewExporter(db, "sqlite", "cases")
	assert.ErrorContains(t, err, "unsupported database type")

	_, err = NewExporter(db, TypeMySQL, "cases; DROP TABLE x")
	assert.ErrorContains(t, err, "invalid table name")

	exporter, err := NewExporter(db, TypeMySQL, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable, exporter.table)
}

func TestInsertSQL_Placeholders(t *testing.T) {
	tests := []struct {
		dbType string
		token  string
		first  string
		last   string
	}{
		{TypePostgres, "$", "$1", "$28"},
		{TypePgx, "$", "$1", "$28"},
		{TypeMySQL, "?", "?", "?"},
		{TypeSQLServer, "@p", "@p1", "@p28"},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			exporter, _ := newMockExporter(t, tt.dbType)
			query := exporter.insertSQL()
			assert.True(t, strings.HasPrefix(query, "INSERT INTO qa_cases (batch_id, test_case_id, test_suite, "))
			assert.Contains(t, query, "VALUES ("+tt.first+", ")
			assert.True(t, strings.HasSuffix(query, tt.last+")"))
			assert.Equal(t, 28, strings.Count(query, tt.token))
		})
	}
}

func TestEnsureTable(t *testing.T) {
	exporter, mock := newMockExporter(t, TypePostgres)
	mock.ExpectExec(exporter.createTableSQL()).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, exporter.EnsureTable(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.True(t, strings.HasPrefix(exporter.createTableSQL(), "CREATE TABLE IF NOT EXISTS qa_cases (batch_id VARCHAR(36) NOT NULL, test_case_id TEXT"))

	mssql, _ := newMockExporter(t, TypeSQLServer)
	assert.True(t, strings.HasPrefix(mssql.createTableSQL(), "IF OBJECT_ID(N'qa_cases', N'U') IS NULL CREATE TABLE qa_cases (batch_id NVARCHAR(36) NOT NULL, test_case_id NVARCHAR(MAX)"))
}

func TestExport(t *testing.T) {
	exporter, mock := newMockExporter(t, TypePostgres)
	records := sampleRecords()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(exporter.insertSQL())
	for _, r := range records {
		prep.ExpectExec().WithArgs(expectedArgs("batch-1", r)...).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	batchID, err := exporter.Export(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, "batch-1", batchID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExport_RollsBackOnFailure(t *testing.T) {
	exporter, mock := newMockExporter(t, TypeMySQL)
	records := sampleRecords()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(exporter.insertSQL())
	prep.ExpectExec().WithArgs(expectedArgs("batch-1", records[0])...).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(expectedArgs("batch-1", records[1])...).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := exporter.Export(context.Background(), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TC-Users-FUNC-NEGATIVE-002")
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

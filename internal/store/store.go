// Package store exports generated test cases to a relational database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"api-testcase-generator/internal/reporter"
	"api-testcase-generator/internal/testcase"

	_ "github.com/denisenkom/go-mssqldb" // for sqlserver
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // for pgx
	_ "github.com/lib/pq"              // for postgres
	"github.com/rs/zerolog/log"
)

// Supported database types. Each one names its database/sql driver.
const (
	TypePostgres  = "postgres"
	TypePgx       = "pgx"
	TypeMySQL     = "mysql"
	TypeSQLServer = "sqlserver"
)

// DefaultTable receives exported test cases when no table is configured.
const DefaultTable = "test_cases"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds database connection configuration
type Config struct {
	Type     string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	Table    string
}

// DSN builds the driver name and connection string for config. Credentials are
// escaped for each driver's syntax.
func DSN(config Config) (string, string, error) {
	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	hostPort := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))

	switch config.Type {
	case TypePostgres:
		return TypePostgres, fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			quoteValue(config.Host), config.Port, quoteValue(config.User), quoteValue(config.Password),
			quoteValue(config.Database), quoteValue(sslMode)), nil
	case TypePgx:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(config.User, config.Password),
			Host:     hostPort,
			Path:     "/" + config.Database,
			RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
		}
		return TypePgx, u.String(), nil
	case TypeMySQL:
		cfg := mysql.NewConfig()
		cfg.User = config.User
		cfg.Passwd = config.Password
		cfg.Net = "tcp"
		cfg.Addr = hostPort
		cfg.DBName = config.Database
		return TypeMySQL, cfg.FormatDSN(), nil
	case TypeSQLServer:
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(config.User, config.Password),
			Host:     hostPort,
			RawQuery: url.Values{"database": {config.Database}}.Encode(),
		}
		return TypeSQLServer, u.String(), nil
	default:
		return "", "", fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// quoteValue quotes a keyword/value connection string value.
func quoteValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Exporter writes test case batches into one table
type Exporter struct {
	db     *sql.DB
	dbType string
	table  string
	newID  func() string
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, config Config) (*Exporter, error) {
	driver, dsn, err := DSN(config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	exporter, err := NewExporter(db, config.Type, config.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return exporter, nil
}

// NewExporter wraps an open database handle.
func NewExporter(db *sql.DB, dbType, table string) (*Exporter, error) {
	if _, _, err := DSN(Config{Type: dbType}); err != nil {
		return nil, err
	}
	if table == "" {
		table = DefaultTable
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	return &Exporter{
		db:     db,
		dbType: dbType,
		table:  table,
		newID:  func() string { return uuid.New().String() },
	}, nil
}

// Close closes the underlying database handle.
func (e *Exporter) Close() error {
	return e.db.Close()
}

// EnsureTable creates the export table when it does not exist yet.
func (e *Exporter) EnsureTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, e.createTableSQL()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", e.table, err)
	}
	return nil
}

// Export inserts records in one transaction and returns the batch ID stamped on every row.
func (e *Exporter) Export(ctx context.Context, records []testcase.Record) (string, error) {
	batchID := e.newID()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, e.insertSQL())
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx, rowArgs(batchID, record)...); err != nil {
			return "", fmt.Errorf("failed to insert test case %s: %w", record.TestCaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Str("batch_id", batchID).Int("rows", len(records)).Str("table", e.table).Msg("Exported test cases")
	return batchID, nil
}

func rowArgs(batchID string, record testcase.Record) []interface{} {
	values := reporter.TestCaseRow(record)
	args := make([]interface{}, 0, len(values)+1)
	args = append(args, batchID)
	for _, v := range values {
		args = append(args, v)
	}
	return args
}

func (e *Exporter) columns() []string {
	return append([]string{"batch_id"}, reporter.TestCaseColumns...)
}

func (e *Exporter) placeholder(n int) string {
	switch e.dbType {
	case TypePostgres, TypePgx:
		return fmt.Sprintf("$%d", n)
	case TypeSQLServer:
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}

func (e *Exporter) insertSQL() string {
	columns := e.columns()
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = e.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		e.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

func (e *Exporter) createTableSQL() string {
	idType, textType := "VARCHAR(36)", "TEXT"
	if e.dbType == TypeSQLServer {
		idType, textType = "NVARCHAR(36)", "NVARCHAR(MAX)"
	}

	defs := []string{"batch_id " + idType + " NOT NULL"}
	for _, column := range reporter.TestCaseColumns {
		defs = append(defs, column+" "+textType)
	}
	body := strings.Join(defs, ", ")

	if e.dbType == TypeSQLServer {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)", e.table, e.table, body)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", e.table, body)
}

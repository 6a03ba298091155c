package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	maxTracedQueryLength = 512
)

var queryWhitespace = regexp.MustCompile(`\s+`)

//go:embed migrations
var migrationsFS embed.FS

func init() {
	// sqlx only knows the cgo driver name "sqlite3".
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type Options struct {
	Driver string
	DSN    string
	// DBName labels spans; optional.
	DBName string
	// QueryFormatter shapes the db.statement attribute on spans. Defaults to
	// FormatQueryForTrace.
	QueryFormatter func(query string) string
}

// Open returns a traced handle. Migrations are not applied here; see Migrate.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	driver, err := NormalizeDriver(opts.Driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	otelOpts := []otelsql.Option{otelsql.WithDBSystem(dbSystem(driver))}
	if opts.DBName != "" {
		otelOpts = append(otelOpts, otelsql.WithDBName(opts.DBName))
	}
	formatter := opts.QueryFormatter
	if formatter == nil {
		formatter = FormatQueryForTrace
	}
	otelOpts = append(otelOpts, otelsql.WithQueryFormatter(formatter))

	db, err := otelsqlx.Open(driver, opts.DSN, otelOpts...)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One writer keeps SQLite from returning SQLITE_BUSY under the poller.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	return db, nil
}

// NewMigrator builds a migrator over the embedded SQL files for driver. The
// migrator owns its own connection; Close it when done.
func NewMigrator(driver, dsn string) (*migrate.Migrate, error) {
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("locate %s migrations: %w", driver, err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}

	var target database.Driver
	switch driver {
	case DriverSQLite:
		target, err = sqlite.WithInstance(conn, &sqlite.Config{})
	case DriverPostgres:
		target, err = postgres.WithInstance(conn, &postgres.Config{})
	}
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create %s migration driver: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Migrate applies every pending up migration.
func Migrate(driver, dsn string) error {
	m, err := NewMigrator(driver, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite3":
		return DriverSQLite, nil
	case DriverPostgres, "postgresql", "pq":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// FormatQueryForTrace collapses whitespace and caps the statement length so
// multi-line queries read well in span attributes.
func FormatQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespace.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}

func dbSystem(driver string) string {
	if driver == DriverPostgres {
		return "postgresql"
	}
	return "sqlite"
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

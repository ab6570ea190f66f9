// Package store provides the SQL persistence layer for users, projects,
// sections, refinements and comments. SQLite (mattn/go-sqlite3) and
// PostgreSQL (pgx stdlib driver) are supported through sqlx.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

//go:embed migrations
var migrationsFS embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// DBTX is the subset of sqlx used by queries; *sqlx.DB and *sqlx.Tx both satisfy it.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// DB wraps a sqlx.DB with draftdeck-specific queries.
type DB struct {
	conn   *sqlx.DB
	driver string
}

// Open connects to the database, applies pending migrations and, for SQLite
// builds with FTS5, prepares the full-text index.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}
	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	db := &DB{conn: conn, driver: driver}
	if err := db.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	if driver == DriverSQLite {
		if err := initFTS(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("store: apply fts schema: %w", err)
		}
	}
	return db, nil
}

// Migrate applies the embedded goose migrations for the active driver.
func (db *DB) Migrate(ctx context.Context) error {
	dialect, dir := "sqlite3", "migrations/sqlite"
	if db.driver == DriverPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("store: goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.conn.DB, dir); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Ping checks the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

// q rebinds a query written with ? placeholders for the active driver.
func (db *DB) q(query string) string {
	return db.conn.Rebind(query)
}

// sqliteDefaults are added to a SQLite DSN unless it already sets them.
var sqliteDefaults = []struct{ key, value string }{
	{"_journal_mode", "WAL"},
	{"_busy_timeout", "5000"},
	{"_foreign_keys", "on"},
}

func sqliteDSN(dsn string) string {
	base, rawQuery, _ := strings.Cut(dsn, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	var extra []string
	for _, d := range sqliteDefaults {
		if !query.Has(d.key) {
			extra = append(extra, d.key+"="+d.value)
		}
	}
	if len(extra) == 0 {
		return dsn
	}
	if rawQuery == "" {
		return base + "?" + strings.Join(extra, "&")
	}
	return dsn + "&" + strings.Join(extra, "&")
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// now is truncated to microseconds so values round-trip through both drivers.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB is the store handle shared by the repositories. Statements are built with
// ent's SQL builder for the handle's dialect.
type DB struct {
	drv     *entsql.Driver
	dialect string
	pool    *pgxpool.Pool
}

// Open connects to the configured store. Postgres goes through a pgx pool wrapped
// as database/sql; sqlite uses the pure-Go driver.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.DSN, logger)
	case DriverPostgres, "":
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "driver", DriverPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "pricelist-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{drv: entsql.OpenDB(dialect.Postgres, db), dialect: dialect.Postgres, pool: pool}, nil
}

// OpenSQLite opens a sqlite database file (or DSN).
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", DriverSQLite, "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps in-memory databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{drv: entsql.OpenDB(dialect.SQLite, db), dialect: dialect.SQLite}, nil
}

// OpenInMemory opens a private in-memory sqlite store with the schema applied.
func OpenInMemory(ctx context.Context, logger *slog.Logger) (*DB, error) {
	dsn := fmt.Sprintf("file:pricelist-%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := OpenSQLite(ctx, dsn, logger)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Dialect returns the ent dialect name of the store.
func (d *DB) Dialect() string { return d.dialect }

func (d *DB) sqlDB() *sql.DB { return d.drv.DB() }

func (d *DB) builder() *entsql.DialectBuilder { return entsql.Dialect(d.dialect) }

// Close closes the database connections gracefully
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	err := d.drv.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

// HealthCheck pings the store to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return d.sqlDB().PingContext(ctx)
}

// EnsureSchema creates the job and item tables when they do not exist.
func (d *DB) EnsureSchema(ctx context.Context) error {
	floatType := "DOUBLE PRECISION"
	if d.dialect == dialect.SQLite {
		floatType = "REAL"
	}
	for _, stmt := range schemaStatements(floatType) {
		if _, err := d.sqlDB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(floatType string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + tableJobs + ` (
	id              TEXT PRIMARY KEY,
	provider_id     TEXT NOT NULL,
	organization_id TEXT NOT NULL,
	list_id         TEXT NOT NULL,
	page_number     INTEGER NOT NULL,
	source_url      TEXT NOT NULL,
	status          TEXT NOT NULL,
	error           TEXT NOT NULL DEFAULT '',
	item_count      INTEGER NOT NULL DEFAULT 0,
	layout          TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS ` + tableItems + ` (
	id              TEXT PRIMARY KEY,
	job_id          TEXT NOT NULL REFERENCES ` + tableJobs + `(id) ON DELETE CASCADE,
	provider_id     TEXT NOT NULL,
	organization_id TEXT NOT NULL,
	list_id         TEXT NOT NULL,
	page_number     INTEGER NOT NULL,
	position        INTEGER NOT NULL,
	name            TEXT NOT NULL,
	price           ` + floatType + ` NOT NULL,
	unit            TEXT NOT NULL,
	quantity        ` + floatType + ` NOT NULL,
	display_format  TEXT NOT NULL DEFAULT '',
	vat_percent     ` + floatType + ` NOT NULL,
	waste_percent   ` + floatType + ` NOT NULL,
	created_at      TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS price_list_jobs_status_idx ON ` + tableJobs + ` (status, page_number)`,
		`CREATE INDEX IF NOT EXISTS price_list_jobs_list_idx ON ` + tableJobs + ` (list_id)`,
		`CREATE INDEX IF NOT EXISTS price_list_items_job_idx ON ` + tableItems + ` (job_id)`,
		`CREATE INDEX IF NOT EXISTS price_list_items_list_idx ON ` + tableItems + ` (list_id, page_number, position)`,
	}
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

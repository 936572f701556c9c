package checks

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresDriver is the database/sql driver name registered by pgx.
const PostgresDriver = "pgx"

// PostgresCheckerConfig configures a PostgreSQL ping check.
type PostgresCheckerConfig struct {
	Name string
	DSN  string
}

// PostgresChecker pings a database pool.
type PostgresChecker struct {
	name string
	db   *sql.DB
	own  bool
}

// NewPostgresChecker opens a pool for config.DSN. Connections are made
// lazily, so an unreachable server is reported by Probe rather than here.
func NewPostgresChecker(config PostgresCheckerConfig) (*PostgresChecker, error) {
	if config.Name == "" || config.DSN == "" {
		return nil, fmt.Errorf("%w: postgres check needs a name and a dsn", ErrInvalidConfig)
	}
	db, err := sql.Open(PostgresDriver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	// One idle connection is enough for periodic pings.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	return &PostgresChecker{name: config.Name, db: db, own: true}, nil
}

// NewPostgresCheckerFromDB checks an existing pool. Close leaves db open.
func NewPostgresCheckerFromDB(name string, db *sql.DB) *PostgresChecker {
	return &PostgresChecker{name: name, db: db}
}

// Name returns the check name.
func (p *PostgresChecker) Name() string { return p.name }

// Type returns "postgres".
func (p *PostgresChecker) Type() string { return "postgres" }

// Probe pings the database.
func (p *PostgresChecker) Probe(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// Close closes the pool if the checker opened it.
func (p *PostgresChecker) Close() error {
	if !p.own {
		return nil
	}
	return p.db.Close()
}

package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/presencelab/beacon-bridge/internal/infrastructure/config"
)

// DB wraps a MySQL database connection with pooling configured.
type DB struct {
	*sql.DB
	config *config.MySQLConfig
}

// NewDB creates a new MySQL database connection with connection pooling.
func NewDB(cfg *config.MySQLConfig) (*DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mysql config is required")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&timeout=%s",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.Charset,
		cfg.ParseTime,
		cfg.Timeout,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{DB: db, config: cfg}, nil
}

// Migrate creates the store tables if they don't exist.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			path VARCHAR(255) PRIMARY KEY,
			value JSON NOT NULL,
			updated_at DATETIME(3) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS list_entries (
			push_key VARCHAR(64) PRIMARY KEY,
			path VARCHAR(255) NOT NULL,
			value JSON NOT NULL,
			created_at DATETIME(3) NOT NULL,
			INDEX idx_list_entries_path (path, push_key)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

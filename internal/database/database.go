// Package database opens the application database and keeps its schema
// current.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/careboard/careboard/internal/orm/dialect"
)

// DefaultURL is used when no database URL is configured
const DefaultURL = "sqlite://instance/caregiver.db"

// Config describes how to reach the database
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DB is a connection pool paired with the dialect of the store behind it
type DB struct {
	*sql.DB
	Dialect dialect.Dialect
}

// Target is a resolved database URL
type Target struct {
	Dialect dialect.Dialect
	DSN     string
	Path    string // SQLite file, "" for in-memory or server databases
	Memory  bool
}

// Resolve maps a database URL onto a driver and DSN. postgres:// and
// postgresql:// URLs use pgx; sqlite:// URLs and bare paths use SQLite with
// foreign-key enforcement switched on.
func Resolve(url string) (*Target, error) {
	if url == "" {
		url = DefaultURL
	}

	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return &Target{Dialect: dialect.Postgres{}, DSN: url}, nil
	case strings.Contains(url, "://") && !strings.HasPrefix(url, "sqlite://"):
		return nil, fmt.Errorf("unsupported database URL scheme: %s", url)
	}

	path := strings.TrimPrefix(url, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("database URL %q has no path", url)
	}
	if path == ":memory:" {
		return &Target{Dialect: dialect.SQLite{}, DSN: "file::memory:?_foreign_keys=on", Memory: true}, nil
	}
	return &Target{
		Dialect: dialect.SQLite{},
		DSN:     "file:" + path + "?_foreign_keys=on",
		Path:    path,
	}, nil
}

// Open connects to the database at cfg.URL, configures the pool and pings
// it. The directory of a SQLite file is created when missing.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	target, err := Resolve(cfg.URL)
	if err != nil {
		return nil, err
	}

	if target.Path != "" {
		if dir := filepath.Dir(target.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(target.Dialect.DriverName(), target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	configurePool(db, target, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Dialect: target.Dialect}, nil
}

// configurePool applies pool limits. SQLite allows one writer, and every
// connection to an in-memory database sees a different database, so SQLite
// is pinned to a single long-lived connection.
func configurePool(db *sql.DB, target *Target, cfg Config) {
	if _, ok := target.Dialect.(dialect.SQLite); ok {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

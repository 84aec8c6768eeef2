package database

import (
	"context"

	"go.uber.org/zap"

	"github.com/careboard/careboard/internal/models"
	"github.com/careboard/careboard/internal/orm/dialect"
	"github.com/careboard/careboard/internal/orm/migrate"
)

// Migrations returns the schema history of the application for dialect d
func Migrations(d dialect.Dialect) []*migrate.Migration {
	gen := migrate.NewGenerator(d)
	return []*migrate.Migration{
		gen.Migration(20251001000000, "create_caregiver_tables", models.Tables()),
	}
}

// Migrate applies pending migrations and returns how many ran
func (db *DB) Migrate(ctx context.Context, logger *zap.Logger) (int, error) {
	return migrate.NewRunner(db.DB, db.Dialect, logger).Up(ctx, Migrations(db.Dialect))
}

// MigrationStatus reports applied and pending migrations
func (db *DB) MigrationStatus(ctx context.Context) (*migrate.MigrationStatus, error) {
	return migrate.NewRunner(db.DB, db.Dialect, nil).Status(ctx, Migrations(db.Dialect))
}

// Rollback reverts the most recent migration
func (db *DB) Rollback(ctx context.Context, logger *zap.Logger) (*migrate.Migration, error) {
	return migrate.NewRunner(db.DB, db.Dialect, logger).Down(ctx, Migrations(db.Dialect))
}

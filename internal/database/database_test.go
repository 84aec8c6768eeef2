package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/careboard/careboard/internal/orm/dialect"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		url     string
		dialect string
		dsn     string
		path    string
	}{
		{"", "sqlite", "file:instance/caregiver.db?_foreign_keys=on", "instance/caregiver.db"},
		{"sqlite://data/app.db", "sqlite", "file:data/app.db?_foreign_keys=on", "data/app.db"},
		{"app.db", "sqlite", "file:app.db?_foreign_keys=on", "app.db"},
		{"sqlite://:memory:", "sqlite", "file::memory:?_foreign_keys=on", ""},
		{"postgres://u:p@localhost:5432/care", "postgres", "postgres://u:p@localhost:5432/care", ""},
		{"postgresql://localhost/care?sslmode=disable", "postgres", "postgresql://localhost/care?sslmode=disable", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			target, err := Resolve(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, target.Dialect.Name())
			assert.Equal(t, tt.dsn, target.DSN)
			assert.Equal(t, tt.path, target.Path)
		})
	}

	_, err := Resolve("mysql://localhost/care")
	assert.Error(t, err)

	_, err = Resolve("sqlite://")
	assert.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, Config{URL: "sqlite://:memory:"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, dialect.SQLite{}, db.Dialect)

	applied, err := db.Migrate(ctx, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	status, err := db.MigrationStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, status.Pending)

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "instance", "caregiver.db")

	db, err := Open(ctx, Config{URL: "sqlite://" + path})
	require.NoError(t, err)

	_, err = db.Migrate(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.FileExists(t, path)

	// migrations are tracked across reopen
	db, err = Open(ctx, Config{URL: "sqlite://" + path})
	require.NoError(t, err)
	defer db.Close()

	applied, err := db.Migrate(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, applied)

	reverted, err := db.Rollback(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "create_caregiver_tables", reverted.Name)
}

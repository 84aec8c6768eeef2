// Package seed loads demo data into an empty database.
package seed

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
	"github.com/careboard/careboard/internal/orm/transaction"
)

//go:embed fixture.yaml
var defaultFixture []byte

// Section is the rows of one entity. Each row maps column names to the text
// a user would submit for them.
type Section struct {
	Entity string              `yaml:"entity"`
	Rows   []map[string]string `yaml:"rows"`
}

// Fixture is an ordered list of sections; parents come before dependents.
type Fixture []Section

// Parse decodes a YAML fixture
func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	for i, s := range f {
		if s.Entity == "" {
			return nil, fmt.Errorf("fixture section %d has no entity", i)
		}
	}
	return f, nil
}

// Default returns the built-in demo fixture
func Default() Fixture {
	f, err := Parse(defaultFixture)
	if err != nil {
		panic(err)
	}
	return f
}

// Result reports what Load did
type Result struct {
	Skipped bool
	Counts  map[string]int
}

// Loader inserts fixtures through the same accessors and storage layer the
// resource engine uses.
type Loader struct {
	registry *schema.Registry
	store    *crud.Store
	tx       *transaction.Manager
	logger   *zap.Logger
}

// NewLoader creates a new fixture loader
func NewLoader(registry *schema.Registry, store *crud.Store, tx *transaction.Manager, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{registry: registry, store: store, tx: tx, logger: logger}
}

// Load inserts every row of the fixture in one transaction. Nothing is
// loaded when the first section's entity already has records. Identity
// sequences are moved past the explicit keys afterwards.
func (l *Loader) Load(ctx context.Context, fixture Fixture) (*Result, error) {
	if len(fixture) == 0 {
		return &Result{Skipped: true}, nil
	}

	entities := make([]*schema.EntityDescriptor, len(fixture))
	for i, s := range fixture {
		desc, err := l.registry.Get(s.Entity)
		if err != nil {
			return nil, err
		}
		entities[i] = desc
	}

	result := &Result{}
	err := l.tx.WithRetry(ctx, func(tx *sql.Tx) error {
		result.Skipped = false
		result.Counts = make(map[string]int, len(fixture))

		seeded, err := l.store.Exists(ctx, tx, entities[0].Model)
		if err != nil {
			return err
		}
		if seeded {
			result.Skipped = true
			return nil
		}

		for i, s := range fixture {
			desc := entities[i]
			for n, row := range s.Rows {
				if err := l.insertRow(ctx, tx, desc, row); err != nil {
					return fmt.Errorf("%s row %d: %w", s.Entity, n+1, err)
				}
			}
			result.Counts[s.Entity] += len(s.Rows)
		}

		for _, desc := range entities {
			if err := l.store.SyncIdentity(ctx, tx, desc.Model); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Skipped {
		l.logger.Info("database already seeded")
	} else {
		l.logger.Info("seed data inserted", zap.Any("counts", result.Counts))
	}
	return result, nil
}

func (l *Loader) insertRow(ctx context.Context, tx *sql.Tx, desc *schema.EntityDescriptor, row map[string]string) error {
	table := desc.Table()

	// sorted for deterministic error reporting
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	rec := desc.Model.New()
	for _, name := range names {
		col, ok := table.Column(name)
		if !ok {
			return fmt.Errorf("%w: %s.%s", schema.ErrUnknownField, table.Name, name)
		}
		v, err := codec.DecodeField(name, col.Parser, row[name])
		if err != nil {
			return err
		}
		if err := rec.Set(name, v); err != nil {
			return err
		}
	}

	_, err := l.store.Insert(ctx, tx, desc.Model, rec)
	return err
}

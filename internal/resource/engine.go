// Package resource is the generic CRUD engine. Driven only by entity
// descriptors, it lists, creates, edits and deletes records of any
// registered entity, each operation inside one storage transaction.
package resource

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
	"github.com/careboard/careboard/internal/orm/transaction"
)

// Operation names used for metrics and logs
const (
	OpList      = "list"
	OpNewForm   = "new"
	OpCreate    = "create"
	OpEditForm  = "edit"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpCount     = "count"
	OpGet       = "get"
	OpDashboard = "dashboard"
)

// Observer receives the outcome of every engine operation
type Observer interface {
	RecordOperation(entity, operation, outcome string, duration time.Duration)
}

// Engine runs the CRUD operations of every registered entity.
type Engine struct {
	registry *schema.Registry
	store    *crud.Store
	tx       *transaction.Manager
	observer Observer
	logger   *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithObserver reports operation outcomes to o
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine over the given registry, store and
// transaction manager.
func NewEngine(registry *schema.Registry, store *crud.Store, tx *transaction.Manager, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		store:    store,
		tx:       tx,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the entity registry the engine serves
func (e *Engine) Registry() *schema.Registry {
	return e.registry
}

// Entity looks up an entity descriptor by name
func (e *Engine) Entity(name string) (*schema.EntityDescriptor, error) {
	return e.registry.Get(name)
}

// observe reports an operation outcome
func (e *Engine) observe(entity, op string, start time.Time, err error) {
	if e.observer != nil {
		e.observer.RecordOperation(entity, op, outcome(err), time.Since(start))
	}
	if outcome(err) == "error" {
		e.logger.Error("resource operation failed",
			zap.String("entity", entity),
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}

// within runs fn inside one transaction: commit on success, rollback on
// any error.
func (e *Engine) within(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return e.tx.WithTransaction(ctx, fn)
}

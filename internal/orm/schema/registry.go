package schema

import (
	"fmt"
	"sync"

	"github.com/careboard/careboard/internal/codec"
)

// EntityDescriptor is the static description of one CRUD-managed entity.
type EntityDescriptor struct {
	// Name is the unique route prefix, e.g. "job_applications"
	Name  string
	Title string

	// PrimaryKey lists the identifying fields in route order
	PrimaryKey  []string
	ListColumns []Column
	FormFields  []FieldDescriptor

	Model Model
}

// Field looks up a form field by name
func (e *EntityDescriptor) Field(name string) (FieldDescriptor, bool) {
	for _, f := range e.FormFields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// IsKeyField reports whether name is one of the primary-key fields
func (e *EntityDescriptor) IsKeyField(name string) bool {
	for _, k := range e.PrimaryKey {
		if k == name {
			return true
		}
	}
	return false
}

// Table is a shortcut for the storage layout of the entity
func (e *EntityDescriptor) Table() *Table {
	return e.Model.Table()
}

// Registry holds the entity descriptors in registration order.
type Registry struct {
	entities map[string]*EntityDescriptor
	order    []string
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*EntityDescriptor),
	}
}

// Register validates and adds an entity descriptor
func (r *Registry) Register(e *EntityDescriptor) error {
	if err := validateDescriptor(e); err != nil {
		return fmt.Errorf("entity %s: %w", e.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entities[e.Name]; exists {
		return fmt.Errorf("entity %s is already registered", e.Name)
	}

	r.entities[e.Name] = e
	r.order = append(r.order, e.Name)
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(e *EntityDescriptor) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Get retrieves an entity descriptor by name
func (r *Registry) Get(name string) (*EntityDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	return e, nil
}

// All returns the descriptors in registration order
func (r *Registry) All() []*EntityDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*EntityDescriptor, len(r.order))
	for i, name := range r.order {
		result[i] = r.entities[name]
	}
	return result
}

// Names returns the entity names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered entities
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func validateDescriptor(e *EntityDescriptor) error {
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if e.Model == nil {
		return fmt.Errorf("model is required")
	}
	if len(e.PrimaryKey) == 0 {
		return fmt.Errorf("primary key is empty")
	}

	table := e.Model.Table()
	for _, k := range e.PrimaryKey {
		if !table.IsKey(k) {
			return fmt.Errorf("primary key field %s is not a key column of %s", k, table.Name)
		}
		// keys travel as integer path segments
		if col, _ := table.Column(k); col.Parser != codec.ParserInt {
			return fmt.Errorf("primary key field %s must be int, got %s", k, col.Parser)
		}
	}
	if len(e.PrimaryKey) != len(table.PrimaryKey) {
		return fmt.Errorf("primary key %v does not cover table key %v", e.PrimaryKey, table.PrimaryKey)
	}
	for i, k := range e.PrimaryKey {
		if table.PrimaryKey[i] != k {
			return fmt.Errorf("primary key %v is not in table key order %v", e.PrimaryKey, table.PrimaryKey)
		}
	}
	for _, c := range e.ListColumns {
		if _, ok := table.Column(c.Name); !ok {
			return fmt.Errorf("list column %s is not a column of %s", c.Name, table.Name)
		}
	}

	seen := make(map[string]bool, len(e.FormFields))
	for _, f := range e.FormFields {
		if seen[f.Name] {
			return fmt.Errorf("form field %s is declared twice", f.Name)
		}
		seen[f.Name] = true

		col, ok := table.Column(f.Name)
		if !ok {
			return fmt.Errorf("form field %s is not a column of %s", f.Name, table.Name)
		}
		if col.Parser != f.Parser {
			return fmt.Errorf("form field %s is %s but column is %s", f.Name, f.Parser, col.Parser)
		}
	}
	return nil
}

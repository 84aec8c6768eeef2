package resource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
)

// NewForm returns the blank create form of the entity
func (e *Engine) NewForm(entity string) (form *Form, err error) {
	defer func(start time.Time) { e.observe(entity, OpNewForm, start, err) }(time.Now())

	desc, err := e.registry.Get(entity)
	if err != nil {
		return nil, err
	}
	return blankForm(desc), nil
}

// Create decodes the submitted input, assigns every form field, primary-key
// fields included, to a new record and inserts it. Nothing is written when
// any field fails to decode or validate. Returns the new record's key.
func (e *Engine) Create(ctx context.Context, entity string, in Input) (key crud.Key, err error) {
	defer func(start time.Time) { e.observe(entity, OpCreate, start, err) }(time.Now())

	desc, err := e.registry.Get(entity)
	if err != nil {
		return nil, err
	}

	values, err := decodeInput(desc, in)
	if err != nil {
		return nil, err
	}

	rec := desc.Model.New()
	for _, name := range values.names {
		if err := rec.Set(name, values.values[name]); err != nil {
			return nil, err
		}
	}

	err = e.within(ctx, func(tx *sql.Tx) error {
		key, err = e.store.Insert(ctx, tx, desc.Model, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// EditForm returns the edit form of the record at the given key path
// segments, each field encoded from its stored value.
func (e *Engine) EditForm(ctx context.Context, entity string, segments []string) (form *Form, err error) {
	defer func(start time.Time) { e.observe(entity, OpEditForm, start, err) }(time.Now())

	desc, err := e.registry.Get(entity)
	if err != nil {
		return nil, err
	}
	key, err := DecodeKey(desc, segments)
	if err != nil {
		return nil, err
	}

	var rec schema.Record
	err = e.within(ctx, func(tx *sql.Tx) error {
		rec, err = e.store.FindByKey(ctx, tx, desc.Model, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recordForm(desc, key, rec)
}

// Update loads the record at the given key and overwrites every non-key
// form field from the submitted input. Primary-key fields are identity: a
// submitted value that differs from the key fails with ErrKeyMismatch and an
// empty one is ignored. Nothing is written on any failure.
func (e *Engine) Update(ctx context.Context, entity string, segments []string, in Input) (err error) {
	defer func(start time.Time) { e.observe(entity, OpUpdate, start, err) }(time.Now())

	desc, err := e.registry.Get(entity)
	if err != nil {
		return err
	}
	key, err := DecodeKey(desc, segments)
	if err != nil {
		return err
	}

	values, err := decodeInput(desc, in)
	if err != nil {
		return err
	}
	if err := checkKey(key, values); err != nil {
		return err
	}

	return e.within(ctx, func(tx *sql.Tx) error {
		rec, err := e.store.FindByKey(ctx, tx, desc.Model, key)
		if err != nil {
			return err
		}
		for _, name := range values.names {
			if desc.IsKeyField(name) {
				continue
			}
			if err := rec.Set(name, values.values[name]); err != nil {
				return err
			}
		}
		return e.store.Update(ctx, tx, desc.Model, key, rec)
	})
}

// Delete removes the record at the given key. Dependents are removed by the
// store's cascade rules.
func (e *Engine) Delete(ctx context.Context, entity string, segments []string) (err error) {
	defer func(start time.Time) { e.observe(entity, OpDelete, start, err) }(time.Now())

	desc, err := e.registry.Get(entity)
	if err != nil {
		return err
	}
	key, err := DecodeKey(desc, segments)
	if err != nil {
		return err
	}

	return e.within(ctx, func(tx *sql.Tx) error {
		if _, err := e.store.FindByKey(ctx, tx, desc.Model, key); err != nil {
			return err
		}
		return e.store.Delete(ctx, tx, desc.Model, key)
	})
}

// checkKey rejects submitted primary-key values that differ from key
func checkKey(key crud.Key, values *decoded) error {
	for _, part := range key {
		v, ok := values.values[part.Field]
		if !ok || v == nil {
			continue
		}
		if id, _ := v.(int64); id != part.Value {
			return fmt.Errorf("%w: %s is %d, submitted %v", ErrKeyMismatch, part.Field, part.Value, v)
		}
	}
	return nil
}

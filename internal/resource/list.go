package resource

import (
	"context"
	"database/sql"
	"time"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Row is one listed record: its key and its list cells encoded as text
type Row struct {
	Key   crud.Key
	Cells []string
}

// Listing is the result of List
type Listing struct {
	Entity  *schema.EntityDescriptor
	Columns []schema.Column
	Rows    []Row
}

// EntityCount is one dashboard entry
type EntityCount struct {
	Entity *schema.EntityDescriptor
	Count  int64
}

// List returns every record of the entity ordered by primary key, projected
// onto the entity's list columns.
func (e *Engine) List(ctx context.Context, entity string) (listing *Listing, err error) {
	defer func(start time.Time) { e.observe(entity, OpList, start, err) }(time.Now())

	desc, err := e.registry.Get(entity)
	if err != nil {
		return nil, err
	}

	var records []schema.Record
	err = e.within(ctx, func(tx *sql.Tx) error {
		records, err = e.store.FindAll(ctx, tx, desc.Model)
		return err
	})
	if err != nil {
		return nil, err
	}

	table := desc.Table()
	listing = &Listing{Entity: desc, Columns: desc.ListColumns, Rows: make([]Row, 0, len(records))}
	for _, rec := range records {
		key, err := e.store.KeyOf(desc.Model, rec)
		if err != nil {
			return nil, err
		}
		cells := make([]string, len(desc.ListColumns))
		for i, c := range desc.ListColumns {
			v, err := rec.Get(c.Name)
			if err != nil {
				return nil, err
			}
			col, _ := table.Column(c.Name)
			cells[i] = codec.Encode(col.Parser, v)
		}
		listing.Rows = append(listing.Rows, Row{Key: key, Cells: cells})
	}
	return listing, nil
}

// Count returns the number of records of the entity
func (e *Engine) Count(ctx context.Context, entity string) (count int64, err error) {
	defer func(start time.Time) { e.observe(entity, OpCount, start, err) }(time.Now())

	desc, err := e.registry.Get(entity)
	if err != nil {
		return 0, err
	}

	err = e.within(ctx, func(tx *sql.Tx) error {
		count, err = e.store.Count(ctx, tx, desc.Model)
		return err
	})
	return count, err
}

// Dashboard counts the records of every entity in registry order, reading
// all counts in one transaction.
func (e *Engine) Dashboard(ctx context.Context) (counts []EntityCount, err error) {
	defer func(start time.Time) { e.observe("*", OpDashboard, start, err) }(time.Now())

	entities := e.registry.All()
	counts = make([]EntityCount, 0, len(entities))
	err = e.within(ctx, func(tx *sql.Tx) error {
		for _, desc := range entities {
			n, err := e.store.Count(ctx, tx, desc.Model)
			if err != nil {
				return err
			}
			counts = append(counts, EntityCount{Entity: desc, Count: n})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// Get fetches one record by key
func (e *Engine) Get(ctx context.Context, entity string, key crud.Key) (rec schema.Record, err error) {
	defer func(start time.Time) { e.observe(entity, OpGet, start, err) }(time.Now())

	desc, err := e.registry.Get(entity)
	if err != nil {
		return nil, err
	}

	err = e.within(ctx, func(tx *sql.Tx) error {
		rec, err = e.store.FindByKey(ctx, tx, desc.Model, key)
		return err
	})
	return rec, err
}

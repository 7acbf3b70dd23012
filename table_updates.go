// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"context"
	"fmt"
)

// Set pairs a field name with the value to write.
type Set struct {
	Field string
	Value any
}

// checkSets verifies every set names a physical field of the table.
func (t *Table) checkSets(sets []Set) error {
	for _, s := range sets {
		if _, ok := t.Field(s.Field); !ok {
			return fmt.Errorf("cannot set %q: table %q has no such field", s.Field, t.name)
		}
	}
	return nil
}

// InsertQuery builds an INSERT over the table. Conditions and joins do not
// apply to inserts and are left out.
func (t *Table) InsertQuery(sets ...Set) *Query {
	q := NewQuery().WithTable(t.name, "").WithType(InsertType)
	if t.err != nil {
		return q.fail(t.err)
	}
	if err := t.checkSets(sets); err != nil {
		return q.fail(err)
	}
	for _, s := range sets {
		q = q.WithSetValue(s.Field, s.Value)
	}
	return q
}

// ReplaceQuery builds a REPLACE with the same shape as [Table.InsertQuery].
func (t *Table) ReplaceQuery(sets ...Set) *Query {
	return t.InsertQuery(sets...).WithType(ReplaceType)
}

// writeQuery builds the shared scaffolding of UPDATE and DELETE: source plus
// the table's conditions. A table with joins cannot be written through; that
// is an error rather than a statement that silently drops the join.
func (t *Table) writeQuery(qt QueryType) *Query {
	q := NewQuery().WithTable(t.name, t.sourceAlias()).WithType(qt)
	if t.err != nil {
		return q.fail(t.err)
	}
	if len(t.joins) > 0 {
		return q.fail(fmt.Errorf("cannot build %s for table %q: it has joins", qt, t.name))
	}
	for _, c := range t.conditions {
		q = q.WithCondition(c)
	}
	return q
}

// UpdateQuery builds an UPDATE narrowed by the table's conditions.
func (t *Table) UpdateQuery(sets ...Set) *Query {
	q := t.writeQuery(UpdateType)
	if q.Err() != nil {
		return q
	}
	if err := t.checkSets(sets); err != nil {
		return q.fail(err)
	}
	for _, s := range sets {
		q = q.WithSetValue(s.Field, s.Value)
	}
	return q
}

// DeleteQuery builds a DELETE narrowed by the table's conditions.
func (t *Table) DeleteQuery() *Query {
	return t.writeQuery(DeleteType)
}

// Insert executes an insert through the datasource and returns the new id.
func (t *Table) Insert(ctx context.Context, sets ...Set) (Value, error) {
	q := t.InsertQuery(sets...)
	if q.Err() != nil {
		return Null(), q.Err()
	}
	return t.ds.FetchScalar(ctx, q)
}

// Update executes an update through the datasource and returns the affected
// row count.
func (t *Table) Update(ctx context.Context, sets ...Set) (int64, error) {
	q := t.UpdateQuery(sets...)
	if q.Err() != nil {
		return 0, q.Err()
	}
	return t.ds.Exec(ctx, q)
}

// Delete executes a delete through the datasource and returns the affected
// row count.
func (t *Table) Delete(ctx context.Context) (int64, error) {
	q := t.DeleteQuery()
	if q.Err() != nil {
		return 0, q.Err()
	}
	return t.ds.Exec(ctx, q)
}

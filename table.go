// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"context"
	"fmt"

	"github.com/quillsql/quill/internal/uniqid"
)

// Table is the stateful builder representing a named data set: physical
// fields, lazy expressions, joins, relations and conditions, plus a handle to
// the [DataSource] that will eventually execute the queries it produces.
//
// A Table is built with chained With* calls and then asked for a [Query]
// tailored to a requested set of field names; only the requested physical
// columns, lazy expressions and joined imports end up in the rendered SQL.
//
// Clone semantics are central to the API: [Table.Clone] (and every With*
// method, which clones internally) duplicates the builder state, so a base
// table can branch into narrowed variants that never affect each other. The
// datasource handle is shared by reference.
type Table struct {
	ds DataSource

	name       string
	alias      string
	idField    string
	titleField string

	fields     []fieldEntry
	lazyExprs  []*LazyExpr
	joins      []joinEntry
	refs       []refEntry
	conditions []Chunk

	aliases *uniqid.Vendor

	err error
}

type fieldEntry struct {
	name string
	col  *Column
}

type joinEntry struct {
	alias string
	join  *Join
}

type refEntry struct {
	name string
	rel  *Relation
}

// NewTable creates a table builder over a named table. The datasource is
// injected explicitly; there is no process-wide registry.
func NewTable(name string, ds DataSource) *Table {
	return &Table{
		ds:      ds,
		name:    name,
		idField: "id",
		aliases: uniqid.NewVendor(),
	}
}

// Clone returns an independent copy of the builder. Field, join, relation and
// condition registries are duplicated; the alias registry is deep-copied; the
// datasource handle is shared.
func (t *Table) Clone() *Table {
	t2 := *t
	t2.fields = append([]fieldEntry(nil), t.fields...)
	t2.lazyExprs = append([]*LazyExpr(nil), t.lazyExprs...)
	t2.joins = append([]joinEntry(nil), t.joins...)
	t2.refs = append([]refEntry(nil), t.refs...)
	t2.conditions = append([]Chunk(nil), t.conditions...)
	t2.aliases = t.aliases.Clone()
	return &t2
}

// fail records the first construction error on a clone; every terminal call
// surfaces it.
func (t *Table) fail(err error) *Table {
	if t.err != nil {
		return t
	}
	t2 := t.Clone()
	t2.err = err
	return t2
}

// Err returns the first construction error recorded by a builder call.
func (t *Table) Err() error { return t.err }

// Name returns the underlying table name.
func (t *Table) Name() string { return t.name }

// Alias returns the table alias, or empty if none was assigned.
func (t *Table) Alias() string { return t.alias }

// aliasOrName is the qualifier used for correlated references.
func (t *Table) aliasOrName() string {
	if t.alias != "" {
		return t.alias
	}
	return t.name
}

// WithAlias returns a copy of the table under an explicit alias. Existing
// fields and conditions are requalified.
func (t *Table) WithAlias(alias string) *Table {
	t2 := t.Clone()
	t2.setAlias(alias)
	t2.aliases.Reserve(alias)
	return t2
}

// setAlias assigns the alias in place and requalifies every field and
// condition that was created before the alias existed.
func (t *Table) setAlias(alias string) {
	if t.alias != "" {
		t.aliases.Unavoid(t.alias)
	}
	t.alias = alias
	t.aliases.Avoid(alias)
	for i, f := range t.fields {
		t.fields[i].col = f.col.WithTableAlias(alias)
	}
	for i, c := range t.conditions {
		if cond, ok := c.(*Condition); ok {
			t.conditions[i] = cond.retableAlias(alias)
		}
	}
}

// AddCondition appends a condition in place, narrowing the set of records the
// table represents.
func (t *Table) AddCondition(c Chunk) {
	t.conditions = append(t.conditions, c)
}

// WithCondition returns a copy of the table narrowed by a condition. All
// table conditions are AND-ed.
func (t *Table) WithCondition(c Chunk) *Table {
	t2 := t.Clone()
	t2.AddCondition(c)
	return t2
}

// WithID narrows the table to a single record by its id field.
func (t *Table) WithID(id any) *Table {
	col, ok := t.Field(t.idField)
	if !ok {
		return t.fail(fmt.Errorf("table %q has no id field %q", t.name, t.idField))
	}
	return t.WithCondition(col.Eq(id))
}

// Count builds "SELECT COUNT(*)" over the table's current conditions.
func (t *Table) Count() *Query {
	return t.EmptyQuery().WithColumn("count", MustExpr("COUNT(*)"))
}

// Sum builds "SELECT SUM(col)" over the table's current conditions.
func (t *Table) Sum(col Chunk) *Query {
	return t.EmptyQuery().WithColumn("sum", MustExpr("SUM({})", col))
}

// All fetches every record of the set through the datasource.
func (t *Table) All(ctx context.Context) ([]Row, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.ds.Fetch(ctx, t.SelectQuery())
}

// One fetches a single record of the set through the datasource.
func (t *Table) One(ctx context.Context) (Row, error) {
	if t.err != nil {
		return Row{}, t.err
	}
	return t.ds.FetchOne(ctx, t.SelectQuery())
}

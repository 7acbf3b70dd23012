// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import "fmt"

// LazyExpr is a named, deferred computation producing a chunk only when its
// field name is actually requested. It is a descriptor rather than an opaque
// closure so the field registry stays enumerable: an imported-field variant
// records the relation and field it traverses.
type LazyExpr struct {
	name string

	// fn computes the chunk for plain expression fields.
	fn func(*Table) (Chunk, error)

	// relation and field are set for imported fields; the chunk is then a
	// correlated single-column subquery through the named relation.
	relation string
	field    string
}

// Name returns the virtual field name.
func (l *LazyExpr) Name() string { return l.name }

// Imported reports whether this is an imported field, and through which
// relation and field.
func (l *LazyExpr) Imported() (relation, field string, ok bool) {
	return l.relation, l.field, l.relation != ""
}

func (l *LazyExpr) build(t *Table) (Chunk, error) {
	if l.relation != "" {
		related, err := t.RefRelated(l.relation)
		if err != nil {
			return nil, fmt.Errorf("cannot import field %q: %s", l.name, err)
		}
		col, ok := related.Field(l.field)
		if !ok {
			return nil, fmt.Errorf("cannot import field %q: table %q has no field %q",
				l.name, related.name, l.field)
		}
		// Qualified, since the subquery is correlated to the outer table.
		return related.FieldQuery(col.WithTableAlias(related.aliasOrName())), nil
	}
	return l.fn(t)
}

// AddField registers a physical field in place. Field names are unique;
// re-registering is a construction error, not a silent overwrite.
func (t *Table) AddField(name string) error {
	for _, f := range t.fields {
		if f.name == name {
			return fmt.Errorf("table %q already has field %q", t.name, name)
		}
	}
	t.fields = append(t.fields, fieldEntry{name: name, col: NewColumn(name, t.alias)})
	return nil
}

// WithField returns a copy of the table with an extra physical field.
func (t *Table) WithField(name string) *Table {
	t2 := t.Clone()
	if err := t2.AddField(name); err != nil {
		return t.fail(err)
	}
	return t2
}

// WithIDField registers the field and marks it as the id field (the default
// id field name is "id").
func (t *Table) WithIDField(name string) *Table {
	t2 := t.WithField(name)
	if t2.err == nil {
		t2.idField = name
	}
	return t2
}

// WithTitleField registers the field and marks it as the human-readable
// title of a record.
func (t *Table) WithTitleField(name string) *Table {
	t2 := t.WithField(name)
	if t2.err == nil {
		t2.titleField = name
	}
	return t2
}

// Field returns the physical column registered under a name.
func (t *Table) Field(name string) (*Column, bool) {
	for _, f := range t.fields {
		if f.name == name {
			return f.col, true
		}
	}
	return nil, false
}

// Fields returns the physical field names in registration order.
func (t *Table) Fields() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.name
	}
	return names
}

// ID returns the id column of the table.
func (t *Table) ID() (*Column, error) {
	col, ok := t.Field(t.idField)
	if !ok {
		return nil, fmt.Errorf("table %q has no id field %q", t.name, t.idField)
	}
	return col, nil
}

// TitleField returns the title field name, or empty.
func (t *Table) TitleField() string { return t.titleField }

// AddExpression registers a lazy expression field in place. The callback runs
// only when the field is requested, with the table as argument.
func (t *Table) AddExpression(name string, fn func(*Table) (Chunk, error)) {
	t.lazyExprs = append(t.lazyExprs, &LazyExpr{name: name, fn: fn})
}

// WithExpression returns a copy of the table with a lazy expression field.
func (t *Table) WithExpression(name string, fn func(*Table) (Chunk, error)) *Table {
	t2 := t.Clone()
	t2.AddExpression(name, fn)
	return t2
}

// LazyExprs returns the lazy expression descriptors in registration order.
func (t *Table) LazyExprs() []*LazyExpr {
	return append([]*LazyExpr(nil), t.lazyExprs...)
}

// SearchField resolves a name against the full field namespace: physical
// fields first, then joined tables (bare or alias-prefixed names, the base
// table wins over joins), then lazy expressions. A bare name that two joined
// tables both own is an error, the alias-prefixed form is never ambiguous.
// Lazy expressions are evaluated here, on demand.
func (t *Table) SearchField(name string) (Chunk, error) {
	if col, ok := t.Field(name); ok {
		return col, nil
	}
	var found *Column
	var foundIn string
	for _, je := range t.joins {
		if col, ok := je.join.table.Field(name); ok {
			if found != nil {
				return nil, fmt.Errorf("field %q is ambiguous: joined tables %q and %q both have it", name, foundIn, je.alias)
			}
			found, foundIn = col, je.alias
		}
	}
	if found != nil {
		return found, nil
	}
	for _, je := range t.joins {
		prefix := je.alias + "_"
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			if col, ok := je.join.table.Field(name[len(prefix):]); ok {
				return col, nil
			}
		}
	}
	for _, l := range t.lazyExprs {
		if l.name == name {
			return l.build(t)
		}
	}
	return nil, fmt.Errorf("table %q has no field %q", t.name, name)
}

// EmptyQuery builds a query with the table's source, conditions and joins but
// no columns. Count, Sum and the write statements grow from this.
func (t *Table) EmptyQuery() *Query {
	q := NewQuery().WithTable(t.name, t.sourceAlias())
	if t.err != nil {
		return q.fail(t.err)
	}
	for _, c := range t.conditions {
		q = q.WithCondition(c)
	}
	for _, je := range t.joins {
		q = q.WithJoinClause(je.join.clause)
	}
	return q
}

// sourceAlias suppresses the alias when it matches the bare table name, so
// an unambiguous "FROM product" never renders as "FROM product AS product".
func (t *Table) sourceAlias() string {
	if t.alias == t.name {
		return ""
	}
	return t.alias
}

// SelectQuery builds the full select: all physical fields in registration
// order followed by all joined fields under alias-prefixed output names.
func (t *Table) SelectQuery() *Query {
	q := t.EmptyQuery()
	for _, f := range t.fields {
		q = q.WithColumn(f.name, f.col)
	}
	for _, je := range t.joins {
		q = je.join.addColumns(t, q)
	}
	return q
}

// SelectQueryFor builds a select containing exactly the requested field
// names, in request order. Names resolve through [Table.SearchField]; an
// unknown name is an error naming the field and the table, never a silently
// narrower query.
func (t *Table) SelectQueryFor(names ...string) (*Query, error) {
	if t.err != nil {
		return nil, t.err
	}
	q := t.EmptyQuery()
	for _, name := range names {
		c, err := t.SearchField(name)
		if err != nil {
			return nil, err
		}
		q = q.WithColumn(name, c)
	}
	return q, nil
}

// FieldQuery builds a single-column select over the table's conditions, the
// shape relation traversal embeds as a subquery.
func (t *Table) FieldQuery(col Chunk) *Query {
	name := ""
	if c, ok := col.(*Column); ok {
		name = c.Name()
	}
	return t.EmptyQuery().WithColumn(name, col)
}

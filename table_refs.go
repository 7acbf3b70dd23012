// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import "fmt"

// RelationKind distinguishes the direction of a relation: HasMany keys the
// related table to this one, HasOne keys this table to the related one.
type RelationKind int

const (
	HasMany RelationKind = iota
	HasOne
)

// Relation is a named traversal to a related table. The factory produces the
// related builder fresh on every traversal; foreignKey names the linking
// field on the related table for HasMany, on this table for HasOne.
type Relation struct {
	kind       RelationKind
	foreignKey string
	factory    func() *Table
}

// Kind returns the relation direction.
func (r *Relation) Kind() RelationKind { return r.kind }

// ForeignKey returns the linking field name.
func (r *Relation) ForeignKey() string { return r.foreignKey }

// AddRelation registers a named relation in place.
func (t *Table) AddRelation(name string, kind RelationKind, foreignKey string, factory func() *Table) error {
	for _, r := range t.refs {
		if r.name == name {
			return fmt.Errorf("table %q already has relation %q", t.name, name)
		}
	}
	t.refs = append(t.refs, refEntry{name: name, rel: &Relation{
		kind:       kind,
		foreignKey: foreignKey,
		factory:    factory,
	}})
	return nil
}

// WithMany returns a copy of the table with a has-many relation: rows of the
// related table whose foreignKey field points at this table's id.
func (t *Table) WithMany(name, foreignKey string, factory func() *Table) *Table {
	t2 := t.Clone()
	if err := t2.AddRelation(name, HasMany, foreignKey, factory); err != nil {
		return t.fail(err)
	}
	return t2
}

// WithOne returns a copy of the table with a has-one relation: the row of
// the related table whose id this table's foreignKey field points at.
func (t *Table) WithOne(name, foreignKey string, factory func() *Table) *Table {
	t2 := t.Clone()
	if err := t2.AddRelation(name, HasOne, foreignKey, factory); err != nil {
		return t.fail(err)
	}
	return t2
}

// Relation returns the relation registered under a name.
func (t *Table) Relation(name string) (*Relation, bool) {
	for _, r := range t.refs {
		if r.name == name {
			return r.rel, true
		}
	}
	return nil, false
}

// relationEnds resolves the two linked columns of a relation. For HasMany
// the related side carries the foreign key and this side the id; HasOne is
// the mirror image.
func (t *Table) relationEnds(name string) (related *Table, theirCol, ourCol *Column, err error) {
	rel, ok := t.Relation(name)
	if !ok {
		return nil, nil, nil, fmt.Errorf("table %q has no relation %q", t.name, name)
	}
	related = rel.factory()
	if related.err != nil {
		return nil, nil, nil, related.err
	}
	switch rel.kind {
	case HasMany:
		theirCol, ok = related.Field(rel.foreignKey)
		if !ok {
			return nil, nil, nil, fmt.Errorf("relation %q: table %q has no field %q",
				name, related.name, rel.foreignKey)
		}
		ourCol, err = t.ID()
	default:
		theirCol, err = related.ID()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("relation %q: %s", name, err)
		}
		ourCol, ok = t.Field(rel.foreignKey)
		if !ok {
			err = fmt.Errorf("relation %q: table %q has no field %q", name, t.name, rel.foreignKey)
		}
	}
	if err != nil {
		return nil, nil, nil, err
	}
	return related, theirCol, ourCol, nil
}

// Ref traverses a relation globally: the related table narrowed by an IN
// subquery over this table's current key selection. The result stands alone
// as a complete query.
//
//	clients.WithID(5).Ref("orders")
//	// ... WHERE (order.client_id IN (SELECT id FROM client WHERE (id = {})))
func (t *Table) Ref(name string) (*Table, error) {
	if t.err != nil {
		return nil, t.err
	}
	related, theirCol, ourCol, err := t.relationEnds(name)
	if err != nil {
		return nil, err
	}
	return related.WithCondition(In(theirCol, t.FieldQuery(ourCol))), nil
}

// RefRelated traverses a relation in correlated form: the related table
// narrowed by equality against the enclosing table's key, both sides
// table-qualified. The result is only meaningful embedded inside the
// enclosing query, as a column or condition; it has an unbound outer
// reference when rendered alone.
//
//	// (SELECT COUNT(*) AS count FROM order WHERE (order.client_id = client.id))
func (t *Table) RefRelated(name string) (*Table, error) {
	if t.err != nil {
		return nil, t.err
	}
	related, theirCol, ourCol, err := t.relationEnds(name)
	if err != nil {
		return nil, err
	}
	theirQ := theirCol.WithTableAlias(related.aliasOrName())
	ourQ := ourCol.WithTableAlias(t.aliasOrName())
	return related.WithCondition(Eq(theirQ, ourQ)), nil
}

// WithImportedField returns a copy of the table with a virtual field that
// reads a single column of a related table through a correlated subquery.
// The field is named relation_field and resolves lazily, so the subquery is
// built only when the field is requested.
func (t *Table) WithImportedField(relation, field string) *Table {
	t2 := t.Clone()
	t2.lazyExprs = append(t2.lazyExprs, &LazyExpr{
		name:     relation + "_" + field,
		relation: relation,
		field:    field,
	})
	return t2
}

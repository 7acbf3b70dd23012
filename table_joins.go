// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import "fmt"

// Join records a joined table and the clause that brings it into the base
// table's query. The joined table's fields become resolvable from the base
// table, bare or prefixed with the join alias, and render in select lists
// under alias-prefixed output names.
type Join struct {
	table  *Table
	clause *JoinClause
}

// Table returns the joined table as it exists inside the join: aliased,
// requalified, with its original conditions moved into the ON clause.
func (j *Join) Table() *Table { return j.table }

// Clause returns the rendered join clause.
func (j *Join) Clause() *JoinClause { return j.clause }

// addColumns imports the joined table's physical fields into a select column
// list under alias-prefixed output names. Joins are additive, never
// shadowing: when a prefixed name collides with a field of the base table
// (say a role_id foreign key next to an imported role.id), the base field
// keeps the name and the import is skipped.
func (j *Join) addColumns(base *Table, q *Query) *Query {
	alias := j.table.aliasOrName()
	for _, f := range j.table.fields {
		name := alias + "_" + f.name
		if _, taken := base.Field(name); taken {
			continue
		}
		q = q.WithColumn(name, f.col)
	}
	return q
}

// AddJoin merges another table into this one's field namespace, joining on
// localKey = other.foreignKey. The other table is not mutated: a private copy
// is taken, aliased through the shared registry, and its conditions moved
// into the ON clause.
//
// Aliases are assigned deterministically: the first claimant of a base name
// keeps the bare name, later claimants get numeric suffixes. This also
// covers a table joined to itself, which must be a distinct builder value
// (clone it first); passing the same builder twice is an error. Two joined
// tables whose alias registries already claimed a common name cannot be
// merged without silently re-aliasing columns, so that surfaces as an error
// too, rather than a renumbered guess.
func (t *Table) AddJoin(other *Table, localKey, foreignKey string, kind JoinKind) (*Join, error) {
	if t.err != nil {
		return nil, t.err
	}
	if other.err != nil {
		return nil, other.err
	}
	if t.aliases == other.aliases {
		return nil, fmt.Errorf("cannot join table %q to itself without cloning it first", t.name)
	}
	if _, ok := t.Field(localKey); !ok {
		return nil, fmt.Errorf("cannot join on %q: table %q has no such field", localKey, t.name)
	}
	if _, ok := other.Field(foreignKey); !ok {
		return nil, fmt.Errorf("cannot join on %q: table %q has no such field", foreignKey, other.name)
	}
	if t.aliases.HasConflict(other.aliases) {
		return nil, fmt.Errorf("cannot join table %q to %q: their alias registries conflict", other.name, t.name)
	}
	t.aliases.Merge(other.aliases)

	// Qualification starts at join time: an unjoined table renders bare
	// column names, so both sides claim an alias here if they have none.
	if t.alias == "" {
		t.setAlias(t.aliases.Next(t.name))
	}
	joined := other.Clone()
	joined.aliases = t.aliases
	if joined.alias == "" {
		joined.setAlias(t.aliases.Next(joined.name))
	}

	localCol, _ := t.Field(localKey)
	foreignCol, _ := joined.Field(foreignKey)
	on := []Chunk{Eq(localCol, foreignCol)}
	on = append(on, joined.conditions...)
	joined.conditions = nil

	clause := NewJoinClause(kind, joined.name, joined.sourceAlias(), on...)
	j := &Join{table: joined, clause: clause}
	t.joins = append(t.joins, joinEntry{alias: joined.aliasOrName(), join: j})

	// A joined table may carry joins of its own; they flatten into the base
	// table so their clauses and imported fields survive the merge.
	t.joins = append(t.joins, joined.joins...)
	joined.joins = nil

	return j, nil
}

// WithJoin returns a copy of the table with another table joined in.
func (t *Table) WithJoin(other *Table, localKey, foreignKey string, kind JoinKind) *Table {
	t2 := t.Clone()
	if _, err := t2.AddJoin(other, localKey, foreignKey, kind); err != nil {
		return t.fail(err)
	}
	return t2
}

// Join returns the join registered under an alias.
func (t *Table) Join(alias string) (*Join, bool) {
	for _, je := range t.joins {
		if je.alias == alias {
			return je.join, true
		}
	}
	return nil, false
}

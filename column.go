// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

// Column is a named reference to a physical table column. How it renders
// depends on position: bare name or alias-qualified name in conditions and
// join clauses, "name AS out" in select lists when disambiguation is needed.
//
// Columns are immutable; the With* methods return modified copies so a column
// handed out by one table can be requalified for another without side
// effects.
type Column struct {
	name        string
	tableAlias  string
	columnAlias string
}

// NewColumn creates a column reference. The table alias may be empty.
func NewColumn(name, tableAlias string) *Column {
	return &Column{name: name, tableAlias: tableAlias}
}

// Name returns the column name without qualification.
func (c *Column) Name() string { return c.name }

// TableAlias returns the owning table alias, or empty.
func (c *Column) TableAlias() string { return c.tableAlias }

// WithTableAlias returns a copy of the column qualified by a table alias.
func (c *Column) WithTableAlias(alias string) *Column {
	cc := *c
	cc.tableAlias = alias
	return &cc
}

// WithColumnAlias returns a copy of the column carrying a select-list output
// alias, used when joined tables import columns under prefixed names.
func (c *Column) WithColumnAlias(alias string) *Column {
	cc := *c
	cc.columnAlias = alias
	return &cc
}

// qualified returns the condition-position form: "alias.name" or "name".
func (c *Column) qualified() string {
	if c.tableAlias != "" {
		return c.tableAlias + "." + c.name
	}
	return c.name
}

// Render implements [Chunk]. In condition position a column renders as its
// qualified name with no parameters.
func (c *Column) Render() (*Expression, error) {
	return &Expression{template: c.qualified()}, nil
}

// RenderColumn renders the column for a select list. The output alias is
// dropped when it matches the column name, so "SELECT name AS name" never
// appears.
func (c *Column) RenderColumn(alias string) (*Expression, error) {
	if alias == c.name {
		alias = ""
	}
	if alias == "" {
		alias = c.columnAlias
	}
	template := c.qualified()
	if alias != "" {
		template += " AS " + alias
	}
	return &Expression{template: template}, nil
}

func (c *Column) Eq(other any) *Condition  { return Eq(c, other) }
func (c *Column) Ne(other any) *Condition  { return Ne(c, other) }
func (c *Column) Gt(other any) *Condition  { return Gt(c, other) }
func (c *Column) Lt(other any) *Condition  { return Lt(c, other) }
func (c *Column) Gte(other any) *Condition { return Gte(c, other) }
func (c *Column) Lte(other any) *Condition { return Lte(c, other) }

// Like builds a pattern-match condition on the column.
func (c *Column) Like(pattern any) *Condition { return Like(c, pattern) }

// In builds a membership condition on the column; see [In].
func (c *Column) In(others ...any) *Condition { return In(c, others...) }

// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill_test

import (
	. "gopkg.in/check.v1"

	"github.com/quillsql/quill"
)

type ConditionSuite struct{}

var _ = Suite(&ConditionSuite{})

func render(c *C, chunk quill.Chunk) (string, []quill.Value) {
	e, err := chunk.Render()
	c.Assert(err, IsNil)
	return e.SQL(), e.Params()
}

func (s *ConditionSuite) TestComparisons(c *C) {
	name := quill.NewColumn("name", "")
	var tests = []struct {
		summary string
		cond    *quill.Condition
		sql     string
	}{{
		summary: "equality",
		cond:    name.Eq("fred"),
		sql:     "(name = {})",
	}, {
		summary: "inequality",
		cond:    name.Ne("fred"),
		sql:     "(name != {})",
	}, {
		summary: "greater than",
		cond:    name.Gt("fred"),
		sql:     "(name > {})",
	}, {
		summary: "less than or equal",
		cond:    name.Lte("fred"),
		sql:     "(name <= {})",
	}, {
		summary: "like",
		cond:    name.Like("fred%"),
		sql:     "(name LIKE {})",
	}}
	for _, t := range tests {
		c.Logf("test: %s", t.summary)
		sql, params := render(c, t.cond)
		c.Assert(sql, Equals, t.sql)
		c.Assert(params, HasLen, 1)
	}
}

func (s *ConditionSuite) TestVariadicAnd(c *C) {
	a := quill.NewColumn("a", "").Eq(1)
	b := quill.NewColumn("b", "").Eq(2)
	d := quill.NewColumn("d", "").Eq(3)

	sql, params := render(c, quill.And(a, b, d))
	c.Assert(sql, Equals, "((a = {}) AND (b = {}) AND (d = {}))")
	c.Assert(params, DeepEquals, []quill.Value{quill.Int(1), quill.Int(2), quill.Int(3)})
}

func (s *ConditionSuite) TestVariadicOrMatchesNestedOr(c *C) {
	build := func() (*quill.Condition, *quill.Condition) {
		c1 := quill.NewColumn("a", "").Eq(1)
		c2 := quill.NewColumn("b", "").Eq(2)
		c3 := quill.NewColumn("d", "").Eq(3)
		return quill.Or(c1, c2, c3), quill.Or(quill.Or(c1, c2), c3)
	}
	flat, nested := build()

	flatSQL, flatParams := render(c, flat)
	c.Assert(flatSQL, Equals, "((a = {}) OR (b = {}) OR (d = {}))")

	nestedSQL, nestedParams := render(c, nested)
	c.Assert(nestedSQL, Equals, "(((a = {}) OR (b = {})) OR (d = {}))")

	// Same parameters in the same order: the two forms are equivalent.
	c.Assert(nestedParams, DeepEquals, flatParams)
}

func (s *ConditionSuite) TestEmptyCombinatorsAreNeutral(c *C) {
	sql, params := render(c, quill.And())
	c.Assert(sql, Equals, "true")
	c.Assert(params, HasLen, 0)

	sql, params = render(c, quill.Or())
	c.Assert(sql, Equals, "false")
	c.Assert(params, HasLen, 0)
}

func (s *ConditionSuite) TestNot(c *C) {
	sql, params := render(c, quill.Not(quill.NewColumn("deleted", "").Eq(true)))
	c.Assert(sql, Equals, "(NOT (deleted = {}))")
	c.Assert(params, DeepEquals, []quill.Value{quill.Bool(true)})
}

func (s *ConditionSuite) TestMixedNestingParenthesized(c *C) {
	a := quill.NewColumn("a", "").Eq(1)
	b := quill.NewColumn("b", "").Eq(2)
	d := quill.NewColumn("d", "").Eq(3)

	sql, _ := render(c, quill.Or(quill.And(a, b), d))
	c.Assert(sql, Equals, "(((a = {}) AND (b = {})) OR (d = {}))")

	sql, _ = render(c, a.And(b).Or(d))
	c.Assert(sql, Equals, "(((a = {}) AND (b = {})) OR (d = {}))")
}

func (s *ConditionSuite) TestInValueList(c *C) {
	sql, params := render(c, quill.NewColumn("id", "").In(1, 2, 3))
	c.Assert(sql, Equals, "(id IN ({}, {}, {}))")
	c.Assert(params, DeepEquals, []quill.Value{quill.Int(1), quill.Int(2), quill.Int(3)})
}

func (s *ConditionSuite) TestInEmptyListIsFalse(c *C) {
	sql, params := render(c, quill.NewColumn("id", "").In())
	c.Assert(sql, Equals, "false")
	c.Assert(params, HasLen, 0)
}

func (s *ConditionSuite) TestInSubquery(c *C) {
	sub := quill.NewQuery().
		WithTable("client", "").
		WithColumnName("id").
		WithCondition(quill.NewColumn("id", "").Eq(5))
	sql, params := render(c, quill.NewColumn("client_id", "").In(sub))
	c.Assert(sql, Equals, "(client_id IN (SELECT id FROM client WHERE (id = {})))")
	c.Assert(params, DeepEquals, []quill.Value{quill.Int(5)})
}

func (s *ConditionSuite) TestQualifiedColumns(c *C) {
	sql, _ := render(c, quill.NewColumn("id", "person").Eq(quill.NewColumn("parent_id", "person_1")))
	c.Assert(sql, Equals, "(person.id = person_1.parent_id)")
}

func (s *ConditionSuite) TestUnsupportedOperandSurfacesAtRender(c *C) {
	cond := quill.NewColumn("id", "").Eq(struct{ X int }{1})
	_, err := cond.Render()
	c.Assert(err, ErrorMatches, `condition "=": cannot use struct .* as a query parameter`)
}

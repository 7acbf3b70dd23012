// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill_test

import (
	"context"

	. "gopkg.in/check.v1"

	"github.com/quillsql/quill"
)

type TableSuite struct{}

var _ = Suite(&TableSuite{})

func newProduct(ds quill.DataSource) *quill.Table {
	return quill.NewTable("product", ds).
		WithIDField("id").
		WithField("name").
		WithField("calories")
}

func (s *TableSuite) TestSelectQuery(c *C) {
	e, err := newProduct(nil).SelectQuery().Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "SELECT id, name, calories FROM product")
}

func (s *TableSuite) TestFilteredSubsetSelection(c *C) {
	t := newProduct(nil)
	calories, ok := t.Field("calories")
	c.Assert(ok, Equals, true)

	q, err := t.WithCondition(calories.Lt(100)).SelectQueryFor("name")
	c.Assert(err, IsNil)
	e, err := q.Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "SELECT name FROM product WHERE (calories < {})")
	c.Assert(e.Params(), DeepEquals, []quill.Value{quill.Int(100)})
}

func (s *TableSuite) TestSelectQueryForFollowsRequestOrder(c *C) {
	q, err := newProduct(nil).SelectQueryFor("calories", "id")
	c.Assert(err, IsNil)
	c.Assert(q.Columns(), DeepEquals, []string{"calories", "id"})
}

func (s *TableSuite) TestSelectQueryForUnknownField(c *C) {
	_, err := newProduct(nil).SelectQueryFor("name", "vitamin_c")
	c.Assert(err, ErrorMatches, `table "product" has no field "vitamin_c"`)
}

func (s *TableSuite) TestDuplicateFieldIsAnError(c *C) {
	t := newProduct(nil).WithField("name")
	c.Assert(t.Err(), ErrorMatches, `table "product" already has field "name"`)
	_, err := t.SelectQueryFor("name")
	c.Assert(err, ErrorMatches, `table "product" already has field "name"`)
}

func (s *TableSuite) TestLazyExpressionOnlyEvaluatedWhenRequested(c *C) {
	evaluated := false
	t := newProduct(nil).WithExpression("kilojoules", func(t *quill.Table) (quill.Chunk, error) {
		evaluated = true
		calories, _ := t.Field("calories")
		return quill.MustExpr("{} * 4.184", calories), nil
	})

	_, err := t.SelectQueryFor("name")
	c.Assert(err, IsNil)
	c.Assert(evaluated, Equals, false)

	q, err := t.SelectQueryFor("name", "kilojoules")
	c.Assert(err, IsNil)
	c.Assert(evaluated, Equals, true)
	e, err := q.Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "SELECT name, (calories * 4.184) AS kilojoules FROM product")
}

func (s *TableSuite) TestLazyExpressionReferencesUnselectedField(c *C) {
	// The expression uses calories internally; calories itself must not be
	// selected, and id never appears.
	t := newProduct(nil).WithExpression("low_cal", func(t *quill.Table) (quill.Chunk, error) {
		calories, _ := t.Field("calories")
		return calories.Lt(100), nil
	})
	q, err := t.SelectQueryFor("name", "low_cal")
	c.Assert(err, IsNil)
	e, err := q.Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "SELECT name, (calories < {}) AS low_cal FROM product")
	c.Assert(q.Columns(), DeepEquals, []string{"name", "low_cal"})
}

func (s *TableSuite) TestWithID(c *C) {
	e, err := newProduct(nil).WithID(5).SelectQueryFor("name")
	c.Assert(err, IsNil)
	flat, err := e.Render()
	c.Assert(err, IsNil)
	c.Assert(flat.SQL(), Equals, "SELECT name FROM product WHERE (id = {})")
	c.Assert(flat.Params(), DeepEquals, []quill.Value{quill.Int(5)})
}

func (s *TableSuite) TestWithIDWithoutIDField(c *C) {
	t := quill.NewTable("audit", nil).WithField("message").WithID(1)
	c.Assert(t.Err(), ErrorMatches, `table "audit" has no id field "id"`)
}

func (s *TableSuite) TestCountAndSum(c *C) {
	t := newProduct(nil)
	e, err := t.Count().Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "SELECT (COUNT(*)) AS count FROM product")

	calories, _ := t.Field("calories")
	e, err = t.Sum(calories).Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "SELECT (SUM(calories)) AS sum FROM product")
}

func (s *TableSuite) TestWithAliasRequalifies(c *C) {
	t := newProduct(nil)
	calories, _ := t.Field("calories")
	aliased := t.WithCondition(calories.Lt(100)).WithAlias("p")

	q, err := aliased.SelectQueryFor("name")
	c.Assert(err, IsNil)
	e, err := q.Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "SELECT p.name FROM product AS p WHERE (p.calories < {})")
}

func (s *TableSuite) TestCloneIsIndependent(c *C) {
	base := newProduct(nil)
	narrowed := base.WithCondition(quill.NewColumn("calories", "").Lt(100))
	widened := base.WithField("color")

	e, err := base.SelectQuery().Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "SELECT id, name, calories FROM product")

	e, err = narrowed.SelectQuery().Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "SELECT id, name, calories FROM product WHERE (calories < {})")

	c.Assert(widened.Fields(), DeepEquals, []string{"id", "name", "calories", "color"})
	c.Assert(base.Fields(), DeepEquals, []string{"id", "name", "calories"})
}

func (s *TableSuite) TestMockRecordsStatement(c *C) {
	row, err := quill.NewRow([]string{"name"}, []quill.Value{quill.String("apple")})
	c.Assert(err, IsNil)
	mock := quill.NewMockDataSource(row)

	t := newProduct(mock).WithID(1)
	rows, err := t.All(context.Background())
	c.Assert(err, IsNil)
	c.Assert(rows, HasLen, 1)
	c.Assert(mock.LastSQL(), Equals, "SELECT id, name, calories FROM product WHERE (id = {})")
	c.Assert(mock.LastParams(), DeepEquals, []quill.Value{quill.Int(1)})
}

func (s *TableSuite) TestWriteBuilders(c *C) {
	t := newProduct(nil).WithID(7)

	e, err := t.UpdateQuery(quill.Set{Field: "calories", Value: 10}).Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "UPDATE product SET calories = {} WHERE (id = {})")
	c.Assert(e.Params(), DeepEquals, []quill.Value{quill.Int(10), quill.Int(7)})

	e, err = t.DeleteQuery().Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "DELETE FROM product WHERE (id = {})")

	e, err = newProduct(nil).InsertQuery(
		quill.Set{Field: "name", Value: "kale"},
		quill.Set{Field: "calories", Value: 49}).Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "INSERT INTO product (name, calories) VALUES ({}, {}) RETURNING id")
}

func (s *TableSuite) TestAliasedWriteStatements(c *C) {
	// The alias introduced on the source must reach the write statement, or
	// the requalified conditions would reference a name that is never bound.
	t := newProduct(nil).WithAlias("p").WithID(7)

	e, err := t.UpdateQuery(quill.Set{Field: "calories", Value: 10}).Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "UPDATE product AS p SET calories = {} WHERE (p.id = {})")
	c.Assert(e.Params(), DeepEquals, []quill.Value{quill.Int(10), quill.Int(7)})

	e, err = t.DeleteQuery().Render()
	c.Assert(err, IsNil)
	c.Assert(e.SQL(), Equals, "DELETE FROM product AS p WHERE (p.id = {})")
	c.Assert(e.Params(), DeepEquals, []quill.Value{quill.Int(7)})
}

func (s *TableSuite) TestWriteUnknownFieldIsAnError(c *C) {
	q := newProduct(nil).InsertQuery(quill.Set{Field: "vitamin_c", Value: 1})
	c.Assert(q.Err(), ErrorMatches, `cannot set "vitamin_c": table "product" has no such field`)
}

func (s *TableSuite) TestWriteThroughJoinIsAnError(c *C) {
	role := quill.NewTable("role", nil).WithIDField("id").WithField("title")
	t := quill.NewTable("employee", nil).
		WithIDField("id").
		WithField("role_id").
		WithJoin(role, "role_id", "id", quill.LeftJoin)

	q := t.UpdateQuery(quill.Set{Field: "role_id", Value: 2})
	c.Assert(q.Err(), ErrorMatches, `cannot build update for table "employee": it has joins`)
}

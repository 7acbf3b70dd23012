// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill_test

import (
	. "gopkg.in/check.v1"

	"github.com/quillsql/quill"
)

type DialectSuite struct{}

var _ = Suite(&DialectSuite{})

func (s *DialectSuite) TestBind(c *C) {
	e := quill.MustExpression("SELECT name FROM product WHERE id = {} AND calories < {}", 5, 100)
	var tests = []struct {
		summary string
		dialect quill.Dialect
		sql     string
	}{{
		summary: "sqlite",
		dialect: quill.SQLite{},
		sql:     "SELECT name FROM product WHERE id = ? AND calories < ?",
	}, {
		summary: "postgres",
		dialect: quill.Postgres{},
		sql:     "SELECT name FROM product WHERE id = $1 AND calories < $2",
	}}
	for _, t := range tests {
		c.Logf("test: %s", t.summary)
		sql, args, err := quill.Bind(t.dialect, e)
		c.Assert(err, IsNil)
		c.Assert(sql, Equals, t.sql)
		c.Assert(args, DeepEquals, []any{int64(5), int64(100)})
	}
}

func (s *DialectSuite) TestBindNoParameters(c *C) {
	e := quill.MustExpression("SELECT 1")
	sql, args, err := quill.Bind(quill.Postgres{}, e)
	c.Assert(err, IsNil)
	c.Assert(sql, Equals, "SELECT 1")
	c.Assert(args, HasLen, 0)
}

func (s *DialectSuite) TestBindNullAndTypedValues(c *C) {
	e := quill.MustExpression("{} || {} || {}", nil, true, quill.Decimal("10.50"))
	sql, args, err := quill.Bind(quill.SQLite{}, e)
	c.Assert(err, IsNil)
	c.Assert(sql, Equals, "? || ? || ?")
	c.Assert(args, DeepEquals, []any{nil, true, "10.50"})
}

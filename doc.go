/*
Package quill is a SQL query-construction and lazy-binding engine: a
composable representation of SQL statements that is built up programmatically,
nested arbitrarily, and rendered into a parameterized statement plus a
separately-carried argument list. User data never ends up concatenated into
SQL text.

# Chunks and expressions

Every fragment implements the Chunk interface: it renders to an Expression, a
template whose {} markers correspond one-to-one with an ordered parameter
list. Chunks embed other chunks, so a Query is a legal operand of a
Condition and a Condition a legal column of a Query. Rendering flattens the
tree, splicing child templates into parent templates and concatenating
parameters left to right, so positional correctness is preserved no matter
how deep the nesting:

	e, err := quill.Expr("{} + {}", 1, quill.MustExpr("{} * {}", 2, 3))
	// e renders to "{} + {} * {}" with parameters [1 2 3]

# Queries

Query is an immutable builder: every With* method returns a new value and
leaves the receiver usable, so sibling queries can branch from a shared base.
A Query is itself a Chunk and embeds as a subquery wherever one fits:

	base := quill.NewQuery().WithTable("order", "")
	totals := base.WithColumn("total", quill.MustExpr("SUM(amount)"))
	recent := base.WithCondition(quill.MustExpr("created > {}", cutoff))

# Tables

Table is the stateful entity-like builder. It owns physical fields, lazy
expression fields, joins and relations, and produces a Query containing
exactly the fields a caller requests; fields nobody asked for never appear in
the SQL. Lazy expression fields are evaluated on demand and may traverse
relations, which come in two deliberate flavors: Ref builds a standalone
IN-subquery form, RefRelated builds a correlated form for embedding inside
the enclosing query.

	product := quill.NewTable("product", ds).
		WithIDField("id").
		WithField("name").
		WithField("calories")
	light := product.WithCondition(quill.MustExpr("calories < {}", 100))
	q, err := light.SelectQueryFor("name")
	// SELECT name FROM product WHERE (calories < {})  with parameters [100]

Execution is delegated to a DataSource, injected into each table. DB adapts a
database/sql handle for a Dialect; MockDataSource serves tests.
*/
package quill

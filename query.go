// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"fmt"
	"strings"
)

// Query is the top-level statement builder: a source, a column list, joins,
// conditions, grouping and ordering, rendered into one of the statement
// shapes of [QueryType]. A Query is itself a [Chunk], so it embeds into other
// queries as a subquery or a per-row scalar column.
//
// Every With* method returns a new Query and leaves the receiver untouched,
// so a base query can branch into siblings (a filtered view and its count, a
// subquery and its parent) that stay independent.
type Query struct {
	source    querySource
	with      []namedChunk
	queryType QueryType
	distinct  bool
	columns   []namedChunk
	setValues []namedChunk
	where     queryConditions
	having    queryConditions
	joins     []*JoinClause
	groupBy   []Chunk
	orderBy   []orderTerm
	raw       Chunk
	err       error
}

// NewQuery returns an empty SELECT query.
func NewQuery() *Query {
	return &Query{where: whereConditions(), having: havingConditions()}
}

func (q *Query) clone() *Query {
	q2 := *q
	q2.with = append([]namedChunk(nil), q.with...)
	q2.columns = append([]namedChunk(nil), q.columns...)
	q2.setValues = append([]namedChunk(nil), q.setValues...)
	q2.where.conditions = append([]Chunk(nil), q.where.conditions...)
	q2.having.conditions = append([]Chunk(nil), q.having.conditions...)
	q2.joins = append([]*JoinClause(nil), q.joins...)
	q2.groupBy = append([]Chunk(nil), q.groupBy...)
	q2.orderBy = append([]orderTerm(nil), q.orderBy...)
	return &q2
}

// fail records the first construction error; it surfaces on Render and on
// execution, never silently.
func (q *Query) fail(err error) *Query {
	if q.err != nil {
		return q
	}
	q2 := q.clone()
	q2.err = err
	return q2
}

// Err returns the first construction error recorded by a builder call.
func (q *Query) Err() error { return q.err }

// WithTable sets a named table as the source. The alias may be empty.
func (q *Query) WithTable(table, alias string) *Query {
	q2 := q.clone()
	q2.source = querySource{kind: sourceTable, table: table, alias: alias}
	return q2
}

// WithSubquerySource sets a nested query as the source. It renders inside
// parentheses under the given alias; the subquery's own aliases do not leak
// into this query.
func (q *Query) WithSubquerySource(sub *Query, alias string) *Query {
	q2 := q.clone()
	q2.source = querySource{kind: sourceQuery, query: sub, alias: alias}
	return q2
}

// WithExprSource sets a raw chunk as the source.
func (q *Query) WithExprSource(src Chunk, alias string) *Query {
	q2 := q.clone()
	q2.source = querySource{kind: sourceExpr, expr: src, alias: alias}
	return q2
}

// WithType switches the statement shape.
func (q *Query) WithType(t QueryType) *Query {
	q2 := q.clone()
	q2.queryType = t
	return q2
}

// WithRaw makes the query render the given chunk verbatim ([RawType]).
func (q *Query) WithRaw(raw Chunk) *Query {
	q2 := q.clone()
	q2.queryType = RawType
	q2.raw = raw
	return q2
}

// Distinct marks the select as DISTINCT.
func (q *Query) Distinct() *Query {
	q2 := q.clone()
	q2.distinct = true
	return q2
}

// WithWith attaches a common table expression: WITH name AS (subquery).
func (q *Query) WithWith(name string, sub *Query) *Query {
	q2 := q.clone()
	q2.with = setNamed(q2.with, name, sub)
	return q2
}

// WithColumn appends an output column rendered from the given chunk. The
// name is the output name; inserting an existing name replaces the chunk but
// keeps the original position.
func (q *Query) WithColumn(name string, c Chunk) *Query {
	q2 := q.clone()
	q2.columns = setNamed(q2.columns, name, c)
	return q2
}

// WithColumnName appends a plain column reference by name.
func (q *Query) WithColumnName(name string) *Query {
	return q.WithColumn(name, NewColumn(name, ""))
}

// WithoutColumns drops the column list, typically before re-adding a subset.
func (q *Query) WithoutColumns() *Query {
	q2 := q.clone()
	q2.columns = nil
	return q2
}

// Columns returns the output column names in order.
func (q *Query) Columns() []string {
	names := make([]string, len(q.columns))
	for i, col := range q.columns {
		names[i] = col.name
	}
	return names
}

// WithCondition appends a WHERE condition; all WHERE conditions are AND-ed.
func (q *Query) WithCondition(c Chunk) *Query {
	q2 := q.clone()
	q2.where = q2.where.add(c)
	return q2
}

// WithHaving appends a HAVING condition.
func (q *Query) WithHaving(c Chunk) *Query {
	q2 := q.clone()
	q2.having = q2.having.add(c)
	return q2
}

// WithJoinClause appends a join.
func (q *Query) WithJoinClause(j *JoinClause) *Query {
	q2 := q.clone()
	q2.joins = append(q2.joins, j)
	return q2
}

// WithGroupBy appends a GROUP BY term.
func (q *Query) WithGroupBy(c Chunk) *Query {
	q2 := q.clone()
	q2.groupBy = append(q2.groupBy, c)
	return q2
}

// WithOrderBy appends an ascending ORDER BY term.
func (q *Query) WithOrderBy(c Chunk) *Query {
	q2 := q.clone()
	q2.orderBy = append(q2.orderBy, orderTerm{chunk: c})
	return q2
}

// WithOrderByDesc appends a descending ORDER BY term.
func (q *Query) WithOrderByDesc(c Chunk) *Query {
	q2 := q.clone()
	q2.orderBy = append(q2.orderBy, orderTerm{chunk: c, desc: true})
	return q2
}

// WithSetValue binds a column value for INSERT, UPDATE and REPLACE
// statements. Calling it on any other statement shape is a construction
// error.
func (q *Query) WithSetValue(column string, value any) *Query {
	switch q.queryType {
	case InsertType, UpdateType, ReplaceType:
	default:
		return q.fail(fmt.Errorf("cannot set value for column %q on a %s query", column, q.queryType))
	}
	c, err := toChunk(value)
	if err != nil {
		return q.fail(fmt.Errorf("cannot set value for column %q: %s", column, err))
	}
	q2 := q.clone()
	q2.setValues = setNamed(q2.setValues, column, c)
	return q2
}

// Render implements [Chunk], flattening the query into a template plus
// ordered parameters.
func (q *Query) Render() (*Expression, error) {
	return q.renderAt(0)
}

func (q *Query) renderAt(depth int) (*Expression, error) {
	if q.err != nil {
		return nil, q.err
	}
	switch q.queryType {
	case SelectType:
		return q.renderSelect(depth)
	case InsertType, ReplaceType:
		return q.renderInsert(depth)
	case UpdateType:
		return q.renderUpdate(depth)
	case DeleteType:
		return q.renderDelete(depth)
	case RawType:
		return renderChild(q.raw, depth+1)
	}
	return nil, fmt.Errorf("cannot render query of unknown type %d", q.queryType)
}

// Preview renders the query with parameters inlined as literals, for
// debugging only.
func (q *Query) Preview() string {
	e, err := q.Render()
	if err != nil {
		return fmt.Sprintf("!%s", err)
	}
	return e.Preview()
}

func (q *Query) renderWith(depth int) (*Expression, error) {
	if len(q.with) == 0 {
		return emptyExpression(), nil
	}
	parts := make([]*Expression, 0, len(q.with))
	for _, cte := range q.with {
		sub, err := renderChild(cte.chunk, depth+1)
		if err != nil {
			return nil, err
		}
		parts = append(parts, &Expression{
			template: cte.name + " AS (" + sub.template + ")",
			params:   sub.params,
		})
	}
	joined := joinExpressions(parts, ", ")
	return &Expression{template: "WITH " + joined.template, params: joined.params}, nil
}

func (q *Query) renderColumns(depth int) (*Expression, error) {
	if len(q.columns) == 0 {
		return &Expression{template: "*"}, nil
	}
	parts := make([]*Expression, 0, len(q.columns))
	for _, col := range q.columns {
		e, err := renderColumnChunk(col.chunk, col.name, depth)
		if err != nil {
			return nil, fmt.Errorf("cannot render column %q: %s", col.name, err)
		}
		parts = append(parts, e)
	}
	return joinExpressions(parts, ", "), nil
}

// renderColumnChunk renders a chunk in select-list position. Chunks that know
// about aliasing (columns, expressions, queries) are asked directly; any
// other chunk is parenthesized and aliased.
func renderColumnChunk(c Chunk, alias string, depth int) (*Expression, error) {
	type columnRenderer interface {
		RenderColumn(alias string) (*Expression, error)
	}
	if cr, ok := c.(columnRenderer); ok {
		return cr.RenderColumn(alias)
	}
	e, err := renderChild(c, depth+1)
	if err != nil {
		return nil, err
	}
	return e.RenderColumn(alias)
}

func (q *Query) renderSelect(depth int) (*Expression, error) {
	with, err := q.renderWith(depth)
	if err != nil {
		return nil, err
	}
	columns, err := q.renderColumns(depth)
	if err != nil {
		return nil, err
	}
	keyword := "SELECT"
	if q.distinct {
		keyword = "SELECT DISTINCT"
	}

	segments := []*Expression{with, {template: keyword}, columns}

	if q.source.kind != sourceNone {
		src, err := q.source.render(depth)
		if err != nil {
			return nil, err
		}
		segments = append(segments, &Expression{template: "FROM " + src.template, params: src.params})
	}
	for _, j := range q.joins {
		e, err := j.render(depth)
		if err != nil {
			return nil, err
		}
		segments = append(segments, e)
	}
	where, err := q.where.render(depth)
	if err != nil {
		return nil, err
	}
	segments = append(segments, where)
	if len(q.groupBy) > 0 {
		parts := make([]*Expression, 0, len(q.groupBy))
		for _, g := range q.groupBy {
			e, err := renderChild(g, depth+1)
			if err != nil {
				return nil, err
			}
			parts = append(parts, e)
		}
		joined := joinExpressions(parts, ", ")
		segments = append(segments, &Expression{template: "GROUP BY " + joined.template, params: joined.params})
	}
	having, err := q.having.render(depth)
	if err != nil {
		return nil, err
	}
	segments = append(segments, having)
	if len(q.orderBy) > 0 {
		parts := make([]*Expression, 0, len(q.orderBy))
		for _, term := range q.orderBy {
			e, err := renderChild(term.chunk, depth+1)
			if err != nil {
				return nil, err
			}
			if term.desc {
				e = &Expression{template: e.template + " DESC", params: e.params}
			}
			parts = append(parts, e)
		}
		joined := joinExpressions(parts, ", ")
		segments = append(segments, &Expression{template: "ORDER BY " + joined.template, params: joined.params})
	}
	return joinExpressions(segments, " "), nil
}

func (q *Query) renderInsert(depth int) (*Expression, error) {
	if q.source.kind != sourceTable {
		return nil, fmt.Errorf("cannot render %s query without a table", q.queryType)
	}
	if len(q.setValues) == 0 {
		return nil, fmt.Errorf("cannot render %s query for table %q without values", q.queryType, q.source.table)
	}
	keyword := "INSERT"
	if q.queryType == ReplaceType {
		keyword = "REPLACE"
	}
	names := make([]string, 0, len(q.setValues))
	markers := make([]string, 0, len(q.setValues))
	values := make([]*Expression, 0, len(q.setValues))
	for _, sv := range q.setValues {
		e, err := renderChild(sv.chunk, depth+1)
		if err != nil {
			return nil, err
		}
		names = append(names, sv.name)
		markers = append(markers, e.template)
		values = append(values, e)
	}
	joined := joinExpressions(values, "")
	template := fmt.Sprintf("%s INTO %s (%s) VALUES (%s) RETURNING id",
		keyword, q.source.table, strings.Join(names, ", "), strings.Join(markers, ", "))
	return &Expression{template: template, params: joined.params}, nil
}

func (q *Query) renderUpdate(depth int) (*Expression, error) {
	if q.source.kind != sourceTable {
		return nil, fmt.Errorf("cannot render update query without a table")
	}
	if len(q.setValues) == 0 {
		return nil, fmt.Errorf("cannot render update query for table %q without values", q.source.table)
	}
	sets := make([]*Expression, 0, len(q.setValues))
	for _, sv := range q.setValues {
		e, err := renderChild(sv.chunk, depth+1)
		if err != nil {
			return nil, err
		}
		sets = append(sets, &Expression{template: sv.name + " = " + e.template, params: e.params})
	}
	joined := joinExpressions(sets, ", ")
	// The source renders with its alias, so an alias-qualified WHERE stays
	// bound: "UPDATE product AS p ... WHERE (p.id = {})".
	src, err := q.source.render(depth)
	if err != nil {
		return nil, err
	}
	where, err := q.where.render(depth)
	if err != nil {
		return nil, err
	}
	return joinExpressions([]*Expression{
		{template: "UPDATE " + src.template + " SET " + joined.template, params: joined.params},
		where,
	}, " "), nil
}

func (q *Query) renderDelete(depth int) (*Expression, error) {
	if q.source.kind != sourceTable {
		return nil, fmt.Errorf("cannot render delete query without a table")
	}
	src, err := q.source.render(depth)
	if err != nil {
		return nil, err
	}
	where, err := q.where.render(depth)
	if err != nil {
		return nil, err
	}
	return joinExpressions([]*Expression{
		{template: "DELETE FROM " + src.template, params: src.params},
		where,
	}, " "), nil
}

// RenderColumn lets a query appear in a select list as a per-row scalar
// subquery: "(SELECT ...) AS alias".
func (q *Query) RenderColumn(alias string) (*Expression, error) {
	e, err := q.Render()
	if err != nil {
		return nil, err
	}
	return e.RenderColumn(alias)
}

// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

// QueryType selects the statement shape a [Query] renders into.
type QueryType int

const (
	SelectType QueryType = iota
	InsertType
	UpdateType
	ReplaceType
	DeleteType
	// RawType renders a caller-supplied expression verbatim, for statements
	// the builder has no shape for (e.g. "CALL procedure()").
	RawType
)

func (t QueryType) String() string {
	switch t {
	case SelectType:
		return "select"
	case InsertType:
		return "insert"
	case UpdateType:
		return "update"
	case ReplaceType:
		return "replace"
	case DeleteType:
		return "delete"
	case RawType:
		return "raw"
	}
	return "unknown"
}

// JoinKind is the SQL join flavor of a [JoinClause].
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	RightJoin
	FullJoin
)

func (k JoinKind) keyword() string {
	switch k {
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	case FullJoin:
		return "FULL JOIN"
	}
	return "JOIN"
}

type sourceKind int

const (
	sourceNone sourceKind = iota
	sourceTable
	sourceQuery
	sourceExpr
)

// querySource is what a query selects from: a named table, a nested query or
// a raw expression, each with an optional alias.
type querySource struct {
	kind  sourceKind
	table string
	query *Query
	expr  Chunk
	alias string
}

// render produces the source without the FROM keyword, e.g. "product AS p"
// or "(SELECT ...) AS sub". A nested query always renders parenthesized and
// leaks nothing but its assigned alias into the parent.
func (s querySource) render(depth int) (*Expression, error) {
	var e *Expression
	switch s.kind {
	case sourceNone:
		return emptyExpression(), nil
	case sourceTable:
		e = &Expression{template: s.table}
	case sourceQuery:
		sub, err := renderChild(s.query, depth+1)
		if err != nil {
			return nil, err
		}
		e = &Expression{template: "(" + sub.template + ")", params: sub.params}
	case sourceExpr:
		sub, err := renderChild(s.expr, depth+1)
		if err != nil {
			return nil, err
		}
		e = sub
	}
	if s.alias != "" {
		return &Expression{template: e.template + " AS " + s.alias, params: e.params}, nil
	}
	return e, nil
}

// queryConditions is an AND-ed list of condition chunks under one keyword
// (WHERE, HAVING or ON). An empty list renders to nothing, never to a
// dangling keyword.
type queryConditions struct {
	keyword    string
	conditions []Chunk
}

func whereConditions() queryConditions  { return queryConditions{keyword: "WHERE"} }
func havingConditions() queryConditions { return queryConditions{keyword: "HAVING"} }
func onConditions() queryConditions     { return queryConditions{keyword: "ON"} }

func (qc queryConditions) add(c Chunk) queryConditions {
	conditions := make([]Chunk, 0, len(qc.conditions)+1)
	conditions = append(conditions, qc.conditions...)
	conditions = append(conditions, c)
	return queryConditions{keyword: qc.keyword, conditions: conditions}
}

func (qc queryConditions) render(depth int) (*Expression, error) {
	if len(qc.conditions) == 0 {
		return emptyExpression(), nil
	}
	parts := make([]*Expression, 0, len(qc.conditions))
	for _, c := range qc.conditions {
		e, err := renderChild(c, depth+1)
		if err != nil {
			return nil, err
		}
		parts = append(parts, e)
	}
	joined := joinExpressions(parts, " AND ")
	return &Expression{template: qc.keyword + " " + joined.template, params: joined.params}, nil
}

// JoinClause describes one join of a [Query]: the flavor, the joined source
// and the ON conditions.
type JoinClause struct {
	kind JoinKind
	src  querySource
	on   queryConditions
}

// NewJoinClause builds a join against a named table.
func NewJoinClause(kind JoinKind, table, alias string, on ...Chunk) *JoinClause {
	return &JoinClause{
		kind: kind,
		src:  querySource{kind: sourceTable, table: table, alias: alias},
		on:   queryConditions{keyword: "ON", conditions: on},
	}
}

// NewSubqueryJoinClause builds a join against a nested query.
func NewSubqueryJoinClause(kind JoinKind, sub *Query, alias string, on ...Chunk) *JoinClause {
	return &JoinClause{
		kind: kind,
		src:  querySource{kind: sourceQuery, query: sub, alias: alias},
		on:   queryConditions{keyword: "ON", conditions: on},
	}
}

func (j *JoinClause) render(depth int) (*Expression, error) {
	src, err := j.src.render(depth)
	if err != nil {
		return nil, err
	}
	on, err := j.on.render(depth)
	if err != nil {
		return nil, err
	}
	e := joinExpressions([]*Expression{
		{template: j.kind.keyword()},
		src,
		on,
	}, " ")
	return e, nil
}

// orderTerm is one ORDER BY entry.
type orderTerm struct {
	chunk Chunk
	desc  bool
}

// namedChunk is an ordered-map entry used for query columns and set-values.
type namedChunk struct {
	name  string
	chunk Chunk
}

// setNamed inserts or replaces by name, preserving first-insertion order the
// way the field registries require.
func setNamed(list []namedChunk, name string, c Chunk) []namedChunk {
	out := make([]namedChunk, len(list))
	copy(out, list)
	for i := range out {
		if out[i].name == name {
			out[i].chunk = c
			return out
		}
	}
	return append(out, namedChunk{name: name, chunk: c})
}

// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"context"
	"database/sql"
	"fmt"
)

// ErrNoRows is returned by FetchOne and FetchScalar when the query matched
// nothing.
var ErrNoRows = sql.ErrNoRows

// DataSource executes rendered queries. The core hands over a [Query]; the
// datasource renders it for its dialect, runs it, and converts results back
// to [Value]. Execution errors pass through unchanged: retries and
// transaction scoping belong to the caller, not the query builder.
type DataSource interface {
	// Fetch runs a select and returns all matching rows.
	Fetch(ctx context.Context, q *Query) ([]Row, error)

	// FetchOne runs a select and returns the first matching row, or
	// ErrNoRows.
	FetchOne(ctx context.Context, q *Query) (Row, error)

	// FetchScalar runs a select and returns the first column of the first
	// matching row, or ErrNoRows.
	FetchScalar(ctx context.Context, q *Query) (Value, error)

	// Exec runs a write statement and returns the affected row count.
	Exec(ctx context.Context, q *Query) (int64, error)
}

// Row is one result record: values by column name, with column order
// preserved from the statement.
type Row struct {
	columns []string
	values  map[string]Value
}

// NewRow builds a row from parallel column and value slices.
func NewRow(columns []string, values []Value) (Row, error) {
	if len(columns) != len(values) {
		return Row{}, fmt.Errorf("cannot build row: %d columns but %d values", len(columns), len(values))
	}
	byName := make(map[string]Value, len(columns))
	for i, c := range columns {
		byName[c] = values[i]
	}
	return Row{columns: append([]string(nil), columns...), values: byName}, nil
}

// Columns returns the column names in statement order.
func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Get returns the value of a named column.
func (r Row) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// MustGet returns the value of a named column, or a null value if the row
// has no such column.
func (r Row) MustGet(name string) Value {
	return r.values[name]
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

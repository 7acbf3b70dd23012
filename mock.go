// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import "context"

// MockDataSource is a [DataSource] that returns canned rows and records the
// last statement it was asked to run. It renders every query it receives, so
// tests exercise the full render path without a database.
type MockDataSource struct {
	// Rows are returned by Fetch and friends.
	Rows []Row
	// Affected is returned by Exec.
	Affected int64
	// Err, if set, is returned by every call.
	Err error

	lastSQL    string
	lastParams []Value
}

// NewMockDataSource returns a mock preloaded with rows.
func NewMockDataSource(rows ...Row) *MockDataSource {
	return &MockDataSource{Rows: rows}
}

// LastSQL returns the template of the last rendered statement.
func (m *MockDataSource) LastSQL() string { return m.lastSQL }

// LastParams returns the parameters of the last rendered statement.
func (m *MockDataSource) LastParams() []Value {
	return append([]Value(nil), m.lastParams...)
}

func (m *MockDataSource) record(q *Query) error {
	if m.Err != nil {
		return m.Err
	}
	e, err := q.Render()
	if err != nil {
		return err
	}
	m.lastSQL = e.SQL()
	m.lastParams = e.Params()
	return nil
}

// Fetch records the statement and returns the canned rows.
func (m *MockDataSource) Fetch(ctx context.Context, q *Query) ([]Row, error) {
	if err := m.record(q); err != nil {
		return nil, err
	}
	return append([]Row(nil), m.Rows...), nil
}

// FetchOne records the statement and returns the first canned row.
func (m *MockDataSource) FetchOne(ctx context.Context, q *Query) (Row, error) {
	if err := m.record(q); err != nil {
		return Row{}, err
	}
	if len(m.Rows) == 0 {
		return Row{}, ErrNoRows
	}
	return m.Rows[0], nil
}

// FetchScalar records the statement and returns the first column of the
// first canned row.
func (m *MockDataSource) FetchScalar(ctx context.Context, q *Query) (Value, error) {
	row, err := m.FetchOne(ctx, q)
	if err != nil {
		return Null(), err
	}
	columns := row.Columns()
	if len(columns) == 0 {
		return Null(), ErrNoRows
	}
	return row.MustGet(columns[0]), nil
}

// Exec records the statement and returns the canned affected count.
func (m *MockDataSource) Exec(ctx context.Context, q *Query) (int64, error) {
	if err := m.record(q); err != nil {
		return 0, err
	}
	return m.Affected, nil
}

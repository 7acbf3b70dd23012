// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// DB is a [DataSource] over a database/sql handle. It renders queries for
// its dialect, caches the driver prepared statements by statement text, and
// converts result columns back to [Value].
type DB struct {
	sqldb   *sql.DB
	dialect Dialect

	// mutex guards stmts. Statements are prepared once per distinct SQL
	// text and reused until Close.
	mutex sync.RWMutex
	stmts map[string]*sql.Stmt
}

// NewDB wraps a [sql.DB] for a dialect.
func NewDB(sqldb *sql.DB, dialect Dialect) *DB {
	if sqldb == nil {
		return nil
	}
	return &DB{sqldb: sqldb, dialect: dialect, stmts: map[string]*sql.Stmt{}}
}

// PlainDB returns the underlying database object.
func (db *DB) PlainDB() *sql.DB {
	return db.sqldb
}

// Close closes all cached prepared statements and the underlying database.
func (db *DB) Close() error {
	db.mutex.Lock()
	stmts := db.stmts
	db.stmts = map[string]*sql.Stmt{}
	db.mutex.Unlock()
	for _, stmt := range stmts {
		stmt.Close()
	}
	return db.sqldb.Close()
}

// prepare returns the cached prepared statement for the SQL text, preparing
// it on first use.
func (db *DB) prepare(ctx context.Context, sqlText string) (*sql.Stmt, error) {
	db.mutex.RLock()
	stmt, ok := db.stmts[sqlText]
	db.mutex.RUnlock()
	if ok {
		return stmt, nil
	}
	stmt, err := db.sqldb.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	db.mutex.Lock()
	// Someone else may have prepared the same text since we last checked.
	if alt, ok := db.stmts[sqlText]; ok {
		db.mutex.Unlock()
		stmt.Close()
		return alt, nil
	}
	db.stmts[sqlText] = stmt
	db.mutex.Unlock()
	return stmt, nil
}

// bind renders a query and converts it for the dialect.
func (db *DB) bind(q *Query) (string, []any, error) {
	e, err := q.Render()
	if err != nil {
		return "", nil, err
	}
	return Bind(db.dialect, e)
}

func (db *DB) query(ctx context.Context, q *Query) (*sql.Rows, error) {
	sqlText, args, err := db.bind(q)
	if err != nil {
		return nil, err
	}
	stmt, err := db.prepare(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

// Fetch runs a select and returns all matching rows.
func (db *DB) Fetch(ctx context.Context, q *Query) ([]Row, error) {
	rows, err := db.query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var result []Row
	for rows.Next() {
		row, err := scanRow(rows, columns)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// FetchOne runs a select and returns the first matching row, or ErrNoRows.
func (db *DB) FetchOne(ctx context.Context, q *Query) (Row, error) {
	rows, err := db.query(ctx, q)
	if err != nil {
		return Row{}, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return Row{}, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Row{}, err
		}
		return Row{}, ErrNoRows
	}
	return scanRow(rows, columns)
}

// FetchScalar runs a select and returns the first column of the first
// matching row, or ErrNoRows.
func (db *DB) FetchScalar(ctx context.Context, q *Query) (Value, error) {
	row, err := db.FetchOne(ctx, q)
	if err != nil {
		return Null(), err
	}
	columns := row.Columns()
	if len(columns) == 0 {
		return Null(), fmt.Errorf("scalar query returned no columns")
	}
	return row.MustGet(columns[0]), nil
}

// Exec runs a write statement and returns the affected row count.
func (db *DB) Exec(ctx context.Context, q *Query) (int64, error) {
	sqlText, args, err := db.bind(q)
	if err != nil {
		return 0, err
	}
	stmt, err := db.prepare(ctx, sqlText)
	if err != nil {
		return 0, err
	}
	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanRow(rows *sql.Rows, columns []string) (Row, error) {
	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return Row{}, err
	}
	values := make([]Value, len(columns))
	for i, v := range raw {
		value, err := fromDriver(v)
		if err != nil {
			return Row{}, fmt.Errorf("column %q: %s", columns[i], err)
		}
		values[i] = value
	}
	return NewRow(columns, values)
}

// fromDriver converts a value as scanned from database/sql into a [Value].
func fromDriver(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case int64:
		return Int(v), nil
	case float64:
		return Float(v), nil
	case []byte:
		return String(string(v)), nil
	case string:
		return String(v), nil
	case time.Time:
		return Time(v), nil
	}
	return Null(), fmt.Errorf("unsupported driver value of type %T", v)
}

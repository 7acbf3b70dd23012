// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"fmt"
	"strings"
)

// Dialect maps the neutral {} parameter markers of a rendered [Expression]
// onto a driver's placeholder syntax.
type Dialect interface {
	// Name identifies the dialect, for error messages.
	Name() string

	// Placeholder returns the marker for the nth parameter, 1-based.
	Placeholder(n int) string
}

// SQLite uses unnumbered ? markers.
type SQLite struct{}

func (SQLite) Name() string           { return "sqlite" }
func (SQLite) Placeholder(int) string { return "?" }

// Postgres uses numbered $1, $2, ... markers.
type Postgres struct{}

func (Postgres) Name() string             { return "postgres" }
func (Postgres) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

// Bind converts a rendered expression into driver-ready SQL and arguments:
// each {} marker becomes the dialect's placeholder, each parameter its
// database/sql argument, in the same order.
func Bind(d Dialect, e *Expression) (string, []any, error) {
	parts := strings.Split(e.SQL(), placeholder)
	params := e.Params()
	if len(parts)-1 != len(params) {
		return "", nil, fmt.Errorf("cannot bind statement for %s: %d placeholders but %d parameters",
			d.Name(), len(parts)-1, len(params))
	}
	var sb strings.Builder
	args := make([]any, len(params))
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(d.Placeholder(i))
			args[i-1] = params[i-1].driverArg()
		}
		sb.WriteString(p)
	}
	return sb.String(), args, nil
}

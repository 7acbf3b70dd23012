// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"fmt"
	"strings"
)

// NestedExpr is a chunk whose parameters may themselves be chunks: nested
// expressions, conditions, columns, whole queries. Rendering flattens the
// tree into a single [Expression], splicing each child's template into the
// parent at the position of the corresponding {} marker and concatenating
// parameter lists left to right.
//
// A NestedExpr holds its children by reference and never copies or mutates
// them, so the same child may be embedded in several parents and the whole
// value shared between goroutines once built.
type NestedExpr struct {
	template string
	params   []Chunk
}

// Expr builds a nested expression from a template and arguments. An argument
// that implements [Chunk] is embedded as-is; anything else is converted with
// [ToValue] and bound as a parameter. The placeholder/argument count is
// checked here, at construction.
//
//	sum := quill.MustExpr("{} + {}", 2, 3)
//	outer := quill.MustExpr("{} * 2", sum)
func Expr(template string, args ...any) (*NestedExpr, error) {
	if n := countPlaceholders(template); n != len(args) {
		return nil, fmt.Errorf("expression %q has %d placeholders but %d arguments", template, n, len(args))
	}
	params := make([]Chunk, 0, len(args))
	for _, arg := range args {
		c, err := toChunk(arg)
		if err != nil {
			return nil, fmt.Errorf("expression %q: %s", template, err)
		}
		params = append(params, c)
	}
	return &NestedExpr{template: template, params: params}, nil
}

// MustExpr is like [Expr] but panics on error. Use it for expressions with
// compile-time constant templates.
func MustExpr(template string, args ...any) *NestedExpr {
	e, err := Expr(template, args...)
	if err != nil {
		panic(err)
	}
	return e
}

// JoinChunks combines chunks into one nested expression separated by a
// delimiter: JoinChunks(chunks, " AND ") renders as "a AND b AND c".
func JoinChunks(chunks []Chunk, sep string) *NestedExpr {
	markers := make([]string, len(chunks))
	for i := range chunks {
		markers[i] = placeholder
	}
	return &NestedExpr{template: strings.Join(markers, sep), params: chunks}
}

// Fx wraps chunks into an SQL function call: Fx("COALESCE", a, b) renders as
// "COALESCE(a, b)".
func Fx(name string, args ...Chunk) *NestedExpr {
	inner := JoinChunks(args, ", ")
	return &NestedExpr{template: name + "(" + inner.template + ")", params: inner.params}
}

// Render implements [Chunk] by recursively flattening the tree.
func (e *NestedExpr) Render() (*Expression, error) {
	return e.renderAt(0)
}

func (e *NestedExpr) renderAt(depth int) (*Expression, error) {
	segments := strings.Split(e.template, placeholder)
	var sb strings.Builder
	var params []Value
	sb.WriteString(segments[0])
	for i, param := range e.params {
		child, err := renderChild(param, depth+1)
		if err != nil {
			return nil, err
		}
		sb.WriteString(child.template)
		params = append(params, child.params...)
		sb.WriteString(segments[i+1])
	}
	return &Expression{template: sb.String(), params: params}, nil
}

// RenderColumn renders the nested expression for a select list.
func (e *NestedExpr) RenderColumn(alias string) (*Expression, error) {
	flat, err := e.Render()
	if err != nil {
		return nil, err
	}
	return flat.RenderColumn(alias)
}

func (e *NestedExpr) Eq(other any) *Condition  { return Eq(e, other) }
func (e *NestedExpr) Ne(other any) *Condition  { return Ne(e, other) }
func (e *NestedExpr) Gt(other any) *Condition  { return Gt(e, other) }
func (e *NestedExpr) Lt(other any) *Condition  { return Lt(e, other) }
func (e *NestedExpr) Gte(other any) *Condition { return Gte(e, other) }
func (e *NestedExpr) Lte(other any) *Condition { return Lte(e, other) }

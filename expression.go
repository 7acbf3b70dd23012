// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"fmt"
	"strings"
)

// Expression is a flat chunk: a template with positional {} placeholders and
// a fixed, ordered list of scalar parameters. It cannot embed other chunks;
// for recursive composition use [Expr] which builds a [NestedExpr].
//
// An Expression is immutable after construction and cheap to copy. It is the
// terminal form every chunk flattens into, and the form handed to a
// [DataSource] for execution.
type Expression struct {
	template string
	params   []Value
}

// NewExpression builds a flat expression, converting each argument with
// [ToValue]. The number of {} markers in the template must equal the number
// of parameters; a mismatch is reported here, at construction, not later at
// render time.
func NewExpression(template string, args ...any) (*Expression, error) {
	if n := countPlaceholders(template); n != len(args) {
		return nil, fmt.Errorf("expression %q has %d placeholders but %d parameters", template, n, len(args))
	}
	params := make([]Value, 0, len(args))
	for _, arg := range args {
		v, err := ToValue(arg)
		if err != nil {
			return nil, fmt.Errorf("expression %q: %s", template, err)
		}
		params = append(params, v)
	}
	return &Expression{template: template, params: params}, nil
}

// MustExpression is like [NewExpression] but panics on error. Use it for
// expressions with compile-time constant templates.
func MustExpression(template string, args ...any) *Expression {
	e, err := NewExpression(template, args...)
	if err != nil {
		panic(err)
	}
	return e
}

// emptyExpression renders to nothing and is a safe no-op when spliced.
func emptyExpression() *Expression {
	return &Expression{}
}

// Render implements [Chunk]. A flat expression renders to itself.
func (e *Expression) Render() (*Expression, error) {
	return e, nil
}

// SQL returns the template with {} positional markers.
func (e *Expression) SQL() string {
	return e.template
}

// Params returns the ordered parameter list. The returned slice is shared and
// must not be modified.
func (e *Expression) Params() []Value {
	return e.params
}

// empty reports whether the expression contributes nothing when spliced.
func (e *Expression) empty() bool {
	return e.template == "" && len(e.params) == 0
}

// Preview inlines the parameters into the template as SQL literals. The
// result is for logs and debugging only and must never be executed: values
// are not escaped with the care a driver would apply.
func (e *Expression) Preview() string {
	out := e.template
	for _, p := range e.params {
		out = strings.Replace(out, placeholder, p.literal(), 1)
	}
	return out
}

// RenderColumn renders the expression for a select list: parenthesized, with
// an output alias when one is needed.
func (e *Expression) RenderColumn(alias string) (*Expression, error) {
	template := "(" + e.template + ")"
	if alias != "" {
		template += " AS " + alias
	}
	return &Expression{template: template, params: e.params}, nil
}

// joinExpressions splices a list of flat expressions with a delimiter,
// concatenating their parameter lists in order. Empty members are dropped so
// they never produce dangling delimiters.
func joinExpressions(exprs []*Expression, sep string) *Expression {
	templates := make([]string, 0, len(exprs))
	var params []Value
	for _, e := range exprs {
		if e.empty() {
			continue
		}
		templates = append(templates, e.template)
		params = append(params, e.params...)
	}
	return &Expression{template: strings.Join(templates, sep), params: params}
}

// concatParams joins two parameter lists into a fresh slice. Chunks share
// rendered expressions, so appending into a child's backing array is unsafe.
func concatParams(a, b []Value) []Value {
	out := make([]Value, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// AsType casts a value inside the template, e.g. AsType(v, "int") renders
// "{}::int".
func AsType(v Value, sqlType string) *Expression {
	return &Expression{template: placeholder + "::" + sqlType, params: []Value{v}}
}

func (e *Expression) Eq(other any) *Condition  { return Eq(e, other) }
func (e *Expression) Ne(other any) *Condition  { return Ne(e, other) }
func (e *Expression) Gt(other any) *Condition  { return Gt(e, other) }
func (e *Expression) Lt(other any) *Condition  { return Lt(e, other) }
func (e *Expression) Gte(other any) *Condition { return Gte(e, other) }
func (e *Expression) Lte(other any) *Condition { return Lte(e, other) }

// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import "fmt"

// Condition is a chunk representing a comparison or a boolean combination.
// Conditions nest arbitrarily: operands may be columns, expressions, queries
// or other conditions. Rendering always parenthesizes, so mixed AND/OR
// nesting is unambiguous regardless of operator precedence.
type Condition struct {
	op       string
	operands []Chunk
}

func binary(op string, left Chunk, right any) *Condition {
	rc, err := toChunk(right)
	if err != nil {
		rc = errChunk{err: fmt.Errorf("condition %q: %s", op, err)}
	}
	return &Condition{op: op, operands: []Chunk{left, rc}}
}

// Eq builds "left = right".
func Eq(left Chunk, right any) *Condition { return binary("=", left, right) }

// Ne builds "left != right".
func Ne(left Chunk, right any) *Condition { return binary("!=", left, right) }

// Gt builds "left > right".
func Gt(left Chunk, right any) *Condition { return binary(">", left, right) }

// Lt builds "left < right".
func Lt(left Chunk, right any) *Condition { return binary("<", left, right) }

// Gte builds "left >= right".
func Gte(left Chunk, right any) *Condition { return binary(">=", left, right) }

// Lte builds "left <= right".
func Lte(left Chunk, right any) *Condition { return binary("<=", left, right) }

// Like builds "left LIKE pattern".
func Like(left Chunk, pattern any) *Condition { return binary("LIKE", left, pattern) }

// In builds a membership condition. A single [Chunk] argument is embedded as
// a subquery: "left IN (SELECT ...)". Otherwise every argument is bound as a
// value: "left IN ({}, {}, {})". An empty list renders as false, the neutral
// element of OR, rather than the malformed "IN ()".
func In(left Chunk, others ...any) *Condition {
	if len(others) == 1 {
		if sub, ok := others[0].(Chunk); ok {
			return &Condition{op: "IN", operands: []Chunk{left, sub}}
		}
	}
	values := make([]Chunk, 0, len(others))
	for _, other := range others {
		c, err := toChunk(other)
		if err != nil {
			c = errChunk{err: fmt.Errorf("condition \"IN\": %s", err)}
		}
		values = append(values, c)
	}
	return &Condition{op: "IN", operands: append([]Chunk{left}, values...)}
}

// And conjoins any number of operands into a single parenthesized condition:
// "(a AND b AND c)". Zero operands render as true, the neutral element of
// AND, so an empty combinator is a safe no-op inside a larger filter.
func And(operands ...Chunk) *Condition {
	return &Condition{op: "AND", operands: operands}
}

// Or disjoins any number of operands: "(a OR b OR c)". Zero operands render
// as false.
func Or(operands ...Chunk) *Condition {
	return &Condition{op: "OR", operands: operands}
}

// Not negates a condition: "(NOT a)".
func Not(operand Chunk) *Condition {
	return &Condition{op: "NOT", operands: []Chunk{operand}}
}

// And returns the conjunction of this condition with another.
func (c *Condition) And(other Chunk) *Condition { return And(c, other) }

// Or returns the disjunction of this condition with another.
func (c *Condition) Or(other Chunk) *Condition { return Or(c, other) }

// Render implements [Chunk].
func (c *Condition) Render() (*Expression, error) {
	return c.renderAt(0)
}

func (c *Condition) renderAt(depth int) (*Expression, error) {
	switch c.op {
	case "AND", "OR":
		if len(c.operands) == 0 {
			if c.op == "AND" {
				return &Expression{template: "true"}, nil
			}
			return &Expression{template: "false"}, nil
		}
		parts := make([]*Expression, 0, len(c.operands))
		for _, operand := range c.operands {
			e, err := renderChild(operand, depth+1)
			if err != nil {
				return nil, err
			}
			parts = append(parts, e)
		}
		joined := joinExpressions(parts, " "+c.op+" ")
		return &Expression{template: "(" + joined.template + ")", params: joined.params}, nil
	case "NOT":
		e, err := renderChild(c.operands[0], depth+1)
		if err != nil {
			return nil, err
		}
		return &Expression{template: "(NOT " + e.template + ")", params: e.params}, nil
	case "IN":
		left, err := renderChild(c.operands[0], depth+1)
		if err != nil {
			return nil, err
		}
		if len(c.operands) == 1 {
			return &Expression{template: "false"}, nil
		}
		rights := make([]*Expression, 0, len(c.operands)-1)
		for _, operand := range c.operands[1:] {
			e, err := renderChild(operand, depth+1)
			if err != nil {
				return nil, err
			}
			rights = append(rights, e)
		}
		joined := joinExpressions(rights, ", ")
		return &Expression{
			template: "(" + left.template + " IN (" + joined.template + "))",
			params:   concatParams(left.params, joined.params),
		}, nil
	default:
		left, err := renderChild(c.operands[0], depth+1)
		if err != nil {
			return nil, err
		}
		right, err := renderChild(c.operands[1], depth+1)
		if err != nil {
			return nil, err
		}
		return &Expression{
			template: "(" + left.template + " " + c.op + " " + right.template + ")",
			params:   concatParams(left.params, right.params),
		}, nil
	}
}

// retableAlias rewrites column operands to a new table alias. Used when a
// table receives its alias after conditions were already attached.
func (c *Condition) retableAlias(alias string) *Condition {
	operands := make([]Chunk, len(c.operands))
	for i, operand := range c.operands {
		switch op := operand.(type) {
		case *Column:
			operands[i] = op.WithTableAlias(alias)
		case *Condition:
			operands[i] = op.retableAlias(alias)
		default:
			operands[i] = operand
		}
	}
	return &Condition{op: c.op, operands: operands}
}

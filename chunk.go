// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"fmt"
	"strings"
)

// placeholder is the positional marker used in templates. Rendering keeps the
// marker as-is; a [Dialect] converts markers to driver syntax at execution.
const placeholder = "{}"

// maxRenderDepth bounds chunk recursion. A chunk tree deeper than this is
// assumed to contain a cycle, which is a construction defect.
const maxRenderDepth = 100

// A Chunk is any fragment that can render itself into a flat [Expression]:
// a template with positional placeholders plus an ordered parameter list.
// Chunks embed other chunks, so expressions, conditions, columns, queries and
// tables all compose recursively.
//
// Rendering is idempotent and never mutates the chunk, so a chunk value may be
// shared between parents and rendered concurrently.
type Chunk interface {
	Render() (*Expression, error)
}

// renderDepth carries the recursion budget through a render pass. Composite
// chunks call renderAt on their children instead of Render.
type depthChunk interface {
	renderAt(depth int) (*Expression, error)
}

// renderChild renders a child chunk one level deeper, guarding against
// cyclic chunk trees.
func renderChild(c Chunk, depth int) (*Expression, error) {
	if depth > maxRenderDepth {
		return nil, fmt.Errorf("chunk tree exceeds depth %d: cyclic chunk composition", maxRenderDepth)
	}
	if dc, ok := c.(depthChunk); ok {
		return dc.renderAt(depth)
	}
	return c.Render()
}

// countPlaceholders returns the number of positional markers in a template.
func countPlaceholders(template string) int {
	return strings.Count(template, placeholder)
}

// valueChunk adapts a plain Value into a Chunk rendering as a single
// placeholder. This is how Go scalars participate in chunk composition.
type valueChunk struct {
	v Value
}

func (c valueChunk) Render() (*Expression, error) {
	return &Expression{template: placeholder, params: []Value{c.v}}, nil
}

// toChunk converts an argument into a Chunk: chunks pass through, anything
// else must convert via [ToValue].
func toChunk(arg any) (Chunk, error) {
	if c, ok := arg.(Chunk); ok {
		return c, nil
	}
	v, err := ToValue(arg)
	if err != nil {
		return nil, err
	}
	return valueChunk{v: v}, nil
}

// errChunk carries a construction error to render time. Builder methods that
// cannot return an error directly store one of these, so no malformed chunk
// ever renders into a valid-looking query.
type errChunk struct {
	err error
}

func (c errChunk) Render() (*Expression, error) {
	return nil, c.err
}

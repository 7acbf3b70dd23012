// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package uniqid vends unique, deterministic identifiers within one
// query-build session. Tables claim aliases from a shared Vendor so that two
// tables with the same base name, including a table joined to itself, always
// receive distinct aliases in a reproducible order.
package uniqid

import "fmt"

// Vendor hands out unique names. The first request for a base name gets the
// bare name; later requests get numeric suffixes: name, name_1, name_2 and so
// on. A Vendor is not safe for concurrent use; each build session owns its
// own and merges on join.
type Vendor struct {
	taken map[string]bool
	avoid map[string]bool
}

func NewVendor() *Vendor {
	return &Vendor{taken: map[string]bool{}, avoid: map[string]bool{}}
}

// Reserve claims a name verbatim, such as an explicit user-chosen alias.
func (v *Vendor) Reserve(name string) {
	v.taken[name] = true
}

// Avoid marks a name as unusable without claiming it.
func (v *Vendor) Avoid(name string) {
	v.avoid[name] = true
}

// Unavoid removes a previous Avoid mark.
func (v *Vendor) Unavoid(name string) {
	delete(v.avoid, name)
}

func (v *Vendor) used(name string) bool {
	return v.taken[name] || v.avoid[name]
}

// Next claims and returns the first free variant of a base name.
func (v *Vendor) Next(base string) string {
	name := base
	for i := 1; v.used(name); i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	v.taken[name] = true
	return name
}

// HasConflict reports whether the two vendors claimed or avoided any common
// name. Merging conflicting vendors would silently re-alias columns, so a
// conflict must surface as a construction error instead.
func (v *Vendor) HasConflict(other *Vendor) bool {
	for name := range v.taken {
		if other.used(name) {
			return true
		}
	}
	for name := range v.avoid {
		if other.used(name) {
			return true
		}
	}
	return false
}

// Merge absorbs all names claimed or avoided by the other vendor.
func (v *Vendor) Merge(other *Vendor) {
	for name := range other.taken {
		v.taken[name] = true
	}
	for name := range other.avoid {
		v.avoid[name] = true
	}
}

// Clone returns an independent copy.
func (v *Vendor) Clone() *Vendor {
	c := NewVendor()
	c.Merge(v)
	return c
}

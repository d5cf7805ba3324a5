// Package query holds the storage-neutral filter expression used by list and read operations.
package query

import (
	"fmt"
	"strings"
)

// Op is a comparison operator of a single condition.
type Op string

const (
	Equals      Op = "equals"
	NotEquals   Op = "not_equals"
	In          Op = "in"
	Exists      Op = "exists"
	Contains    Op = "contains"
	GreaterThan Op = "greater_than"
	LessThan    Op = "less_than"
)

var knownOps = map[Op]struct{}{
	Equals: {}, NotEquals: {}, In: {}, Exists: {}, Contains: {}, GreaterThan: {}, LessThan: {},
}

// Condition compares one schema field against a value. A nil Value with Equals matches NULL.
type Condition struct {
	Field string
	Op    Op
	Value any
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

// Filter is a conjunction of conditions. The zero value matches every record.
type Filter struct {
	conds []Condition
}

// MatchAll returns the filter that places no restriction.
func MatchAll() Filter {
	return Filter{}
}

// Where returns a filter holding a single condition.
func Where(field string, op Op, value any) Filter {
	return Filter{conds: []Condition{{Field: field, Op: op, Value: value}}}
}

// And returns a new filter requiring f and every given condition. f is not modified.
func (f Filter) And(conds ...Condition) Filter {
	out := make([]Condition, 0, len(f.conds)+len(conds))
	out = append(out, f.conds...)
	out = append(out, conds...)
	return Filter{conds: out}
}

// Merge returns the conjunction of f and g.
func (f Filter) Merge(g Filter) Filter {
	return f.And(g.conds...)
}

// Conditions returns a copy of the conditions in order.
func (f Filter) Conditions() []Condition {
	out := make([]Condition, len(f.conds))
	copy(out, f.conds)
	return out
}

// IsMatchAll reports whether f has no conditions.
func (f Filter) IsMatchAll() bool {
	return len(f.conds) == 0
}

// Mentions reports whether any condition targets field.
func (f Filter) Mentions(field string) bool {
	for _, c := range f.conds {
		if c.Field == field {
			return true
		}
	}
	return false
}

func (f Filter) String() string {
	if len(f.conds) == 0 {
		return "match all"
	}
	parts := make([]string, len(f.conds))
	for i, c := range f.conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}

// SPDX-License-Identifier: Apache-2.0

// Package dsl implements the two integration collaborators spec.md §6.1
// names: a Filter DSL (a declarative pattern compiled into a Change
// predicate, used to drop unwanted changes before sorting) and a Serialize
// DSL (an ordered list of {when, options} rules, first match wins, used to
// pick each Change's SerializeOptions).
//
// Built fresh — the teacher has no declarative filter/serialize config of
// its own — but the "walk every operation, check a predicate" shape is
// grounded on pkg/migrations.Migration.Validate's pattern of iterating a
// flat operation list and testing each one against a condition.
package dsl

import (
	"strings"

	"github.com/pgcompare/pgcompare/pkg/change"
)

// Pattern is spec.md §6.1's Filter DSL document: `{type?, schema?,
// operation?, scope?, owner?[], name?}`. Every non-empty field must match
// for the pattern to match a Change; an empty/nil field matches anything.
type Pattern struct {
	Type      string   `json:"type,omitempty" yaml:"type,omitempty"`
	Schema    string   `json:"schema,omitempty" yaml:"schema,omitempty"`
	Operation string   `json:"operation,omitempty" yaml:"operation,omitempty"`
	Scope     string   `json:"scope,omitempty" yaml:"scope,omitempty"`
	Owner     []string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
}

// Matches reports whether c satisfies every non-empty field of p.
func (p Pattern) Matches(c *change.Change) bool {
	if p.Type != "" && p.Type != c.ObjectType {
		return false
	}
	if p.Schema != "" && p.Schema != c.SchemaName {
		return false
	}
	if p.Operation != "" && p.Operation != string(c.Operation) {
		return false
	}
	if p.Scope != "" && p.Scope != string(c.Scope) {
		return false
	}
	if len(p.Owner) > 0 && !containsFold(p.Owner, c.OwnerRole) {
		return false
	}
	if p.Name != "" && p.Name != objectName(c) {
		return false
	}
	return true
}

// Filter is a compiled predicate: Change -> bool (spec.md §6.1, "compiled
// into a Change -> bool").
type Filter func(*change.Change) bool

// CompileFilter compiles a Pattern into a Filter that reports true when the
// pattern matches (spec.md §6.1's "applied... to drop unwanted changes":
// callers keep a Change when CompileFilter(p)(c) is false, i.e. exclusion
// patterns describe what to drop).
func CompileFilter(p Pattern) Filter {
	return func(c *change.Change) bool { return p.Matches(c) }
}

// CompileFilters ORs several patterns together: a Change matches if any
// pattern matches, the natural semantics for a list of exclusion rules.
func CompileFilters(patterns []Pattern) Filter {
	compiled := make([]Filter, len(patterns))
	for i, p := range patterns {
		compiled[i] = CompileFilter(p)
	}
	return func(c *change.Change) bool {
		for _, f := range compiled {
			if f(c) {
				return true
			}
		}
		return false
	}
}

// Apply removes every Change matching the filter (spec.md §6.1: "Applied to
// the change list after diff, before sorting, to drop unwanted changes").
func Apply(changes []*change.Change, excluded Filter) []*change.Change {
	if excluded == nil {
		return changes
	}
	out := make([]*change.Change, 0, len(changes))
	for _, c := range changes {
		if !excluded(c) {
			out = append(out, c)
		}
	}
	return out
}

func containsFold(ss []string, s string) bool {
	for _, x := range ss {
		if strings.EqualFold(x, s) {
			return true
		}
	}
	return false
}

// objectName extracts a Change's object name for Pattern.Name matching:
// the last '.'-delimited qualifier of its primary stable id, e.g.
// "table:public.users" -> "users".
func objectName(c *change.Change) string {
	id := primaryID(c)
	idx := strings.IndexByte(id, ':')
	if idx < 0 {
		return id
	}
	qualifiers := id[idx+1:]
	if dot := strings.LastIndexByte(qualifiers, '.'); dot >= 0 {
		return qualifiers[dot+1:]
	}
	return qualifiers
}

func primaryID(c *change.Change) string {
	if len(c.Creates) > 0 {
		return c.Creates[0]
	}
	if len(c.Drops) > 0 {
		return c.Drops[0]
	}
	return c.MainStableID
}

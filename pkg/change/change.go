// SPDX-License-Identifier: Apache-2.0

// Package change defines the Change value type produced by pkg/differ,
// ordered by pkg/planner, and turned into executable SQL text by its own
// Serialize method (spec.md §3.4).
//
// This replaces the teacher's (pgroll) Operation interface, which is
// shaped around a two-schema-version Start/Complete/Rollback workflow;
// this spec's changes are one-shot: produced once by a differ, ordered
// once by a planner, and serialized once into a migration script.
package change

import (
	"fmt"

	"github.com/pgcompare/pgcompare/pkg/catalog"
)

// Operation is the high-level thing a Change does to an object.
type Operation string

const (
	OpCreate Operation = "create"
	OpAlter  Operation = "alter"
	OpDrop   Operation = "drop"
)

// Scope is the granularity a Change operates at within its object
// (spec.md glossary).
type Scope string

const (
	ScopeObject            Scope = "object"
	ScopeComment           Scope = "comment"
	ScopePrivilege         Scope = "privilege"
	ScopeDefaultPrivilege  Scope = "default_privilege"
	ScopeMembership        Scope = "membership"
)

// SerializeOptions customizes Serialize's output. It is populated from
// pkg/dsl's Serialize DSL (spec.md §6.1); the zero value is "use defaults".
type SerializeOptions struct {
	SkipAuthorization bool `yaml:"skipAuthorization"` // omit "ALTER ... OWNER TO" / AUTHORIZATION clauses
}

// Serializer produces the SQL text for a Change. Kept as a function value
// rather than requiring every Change to carry a method set, so differs can
// build Changes as plain struct literals (spec.md design note: "tagged
// variant ... serialize dispatched on the payload tag").
type Serializer func(SerializeOptions) string

// Change is one unit of schema drift between main and branch.
type Change struct {
	ObjectType string // one of catalog.Kind's string values
	Operation  Operation
	Scope      Scope

	// Creates, Drops, Requires are stable id lists (spec.md §3.4, §4.2).
	Creates  []string
	Drops    []string
	Requires []string

	// SchemaName is the object's schema, or "" for cluster-wide objects;
	// used by the logical pre-sort (spec.md §4.3 key 2).
	SchemaName string

	// MainStableID is the id changes cluster under for the pre-sort
	// (spec.md §4.3 key 4): a sub-entity (column/constraint/index/
	// trigger/rule/policy change) inherits its parent table/view id here.
	MainStableID string

	// OwnerRole is the object's owning role (catalog.Object.Owner()) at the
	// point this Change was built, used by pkg/dsl's Filter DSL `owner`
	// pattern field (spec.md §6.1). Empty for changes with no single owner
	// (comment/privilege/membership scopes).
	OwnerRole string

	serialize Serializer
}

// New builds a Change, wiring its Serializer.
func New(objectType string, op Operation, scope Scope, serialize Serializer) *Change {
	return &Change{ObjectType: objectType, Operation: op, Scope: scope, serialize: serialize}
}

// Serialize renders this change as one SQL statement, no trailing semicolon
// (spec.md §3.4).
func (c *Change) Serialize(opts SerializeOptions) string {
	if c.serialize == nil {
		panic(fmt.Sprintf("change: %s %s %s has no serializer", c.Operation, c.Scope, c.ObjectType))
	}
	return c.serialize(opts)
}

// WithCreates, WithDrops, WithRequires are small fluent setters used by
// differs to keep construction readable; they mutate and return c.
func (c *Change) WithCreates(ids ...string) *Change   { c.Creates = append(c.Creates, ids...); return c }
func (c *Change) WithDrops(ids ...string) *Change     { c.Drops = append(c.Drops, ids...); return c }
func (c *Change) WithRequires(ids ...string) *Change  { c.Requires = append(c.Requires, ids...); return c }

// Validate checks the invariants spec.md §3.4 lists for well-formed
// changes. Returned errors are differ-bug-class (spec.md §7.2): fatal,
// not recoverable diagnostics.
func (c *Change) Validate() error {
	switch c.Scope {
	case ScopeObject:
		switch c.Operation {
		case OpCreate:
			// A sub-entity change may carry its parent's id as MainStableID,
			// so the check applies only when MainStableID is of the change's
			// own kind.
			if c.MainStableID != "" && catalog.KindOf(c.MainStableID) == catalog.Kind(c.ObjectType) && !contains(c.Creates, c.MainStableID) {
				return fmt.Errorf("change: object-scope CREATE of %q must include its own stable id in creates", c.MainStableID)
			}
		case OpDrop:
			if len(c.Drops) == 0 {
				return fmt.Errorf("change: object-scope DROP must drop at least one stable id")
			}
			for _, d := range c.Drops {
				if !contains(c.Requires, d) {
					return fmt.Errorf("change: object-scope DROP of %q must require itself", d)
				}
			}
		}
	case ScopeComment:
		return c.validateMetadataPrefixed(catalog.CommentID(c.MainStableID), "comment")
	case ScopePrivilege:
		if c.Operation == OpDrop {
			// A REVOKE is a privilege-scope DROP: it must drop the ACL id it
			// revokes and require it alongside the object it's attached to.
			if len(c.Drops) == 0 {
				return fmt.Errorf("change: privilege-scope DROP (REVOKE) must drop an ACL stable id")
			}
			for _, d := range c.Drops {
				if !contains(c.Requires, d) {
					return fmt.Errorf("change: privilege-scope DROP (REVOKE) of %q must require the ACL id it revokes", d)
				}
			}
			return nil
		}
		if len(c.Creates) == 0 {
			return fmt.Errorf("change: privilege-scope %s must create an ACL stable id", c.Operation)
		}
	}
	return nil
}

// validateMetadataPrefixed checks the derived-id convention spec.md §3.4
// uses for comment/ACL scope changes: a CREATE/ALTER creates the derived
// id, a DROP drops it and requires it.
func (c *Change) validateMetadataPrefixed(derivedID, label string) error {
	switch c.Operation {
	case OpDrop:
		if !contains(c.Drops, derivedID) {
			return fmt.Errorf("change: %s-scope DROP must drop %q", label, derivedID)
		}
	default:
		if !contains(c.Creates, derivedID) {
			return fmt.Errorf("change: %s-scope %s must create %q", label, c.Operation, derivedID)
		}
	}
	return nil
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

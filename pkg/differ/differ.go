// SPDX-License-Identifier: Apache-2.0

// Package differ implements spec.md §4's universal diff flow: partition
// main/branch ids into created/dropped/altered, emit typed change.Change
// records for each, and fan out into the cross-cutting comment, privilege,
// membership, and default-privilege diffs every object kind shares.
//
// Grounded on pkg/migrations/op_*.go for the DDL-text shape of each kind's
// CREATE/ALTER/DROP (column.go, constraints.go, index.go, comment.go,
// name.go for identifier-length validation), and on
// other_examples/fb1bf59f_pgschema-pgschema__internal-diff-privilege.go.go
// (+ column_privilege.go, default_privilege.go) for the grant/revoke/
// regrant computation generalized here into Change values.
package differ

import (
	"sort"

	"github.com/lib/pq"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
)

// allKinds lists every catalog.Kind the generic identity diff visits, in no
// particular order (the planner, not the differ, decides execution order).
var allKinds = []catalog.Kind{
	catalog.KindSchema, catalog.KindRole, catalog.KindExtension, catalog.KindLanguage,
	catalog.KindCollation, catalog.KindFDW, catalog.KindForeignServer, catalog.KindUserMapping,
	catalog.KindDomain, catalog.KindEnum, catalog.KindComposite, catalog.KindRange,
	catalog.KindSequence, catalog.KindFunction, catalog.KindProcedure, catalog.KindAggregate,
	catalog.KindTable, catalog.KindForeignTable, catalog.KindColumn, catalog.KindConstraint,
	catalog.KindIndex, catalog.KindView, catalog.KindMaterializedView, catalog.KindTrigger,
	catalog.KindPolicy, catalog.KindRule, catalog.KindEventTrigger, catalog.KindPublication,
	catalog.KindSubscription,
}

// Diff implements spec.md §4.1: the full set of Change records turning main
// into branch, in no particular order (pkg/planner orders them). An error
// return is a differ-level invariant violation (spec.md §7.2): fatal, not a
// recoverable diagnostic.
func Diff(main, branch *catalog.Catalog) ([]*change.Change, error) {
	var out []*change.Change

	for _, k := range allKinds {
		changes, err := diffKind(k, main.OfKind(k), branch.OfKind(k))
		if err != nil {
			return nil, err
		}
		out = append(out, changes...)
	}

	out = append(out, diffDefaultPrivileges(main.DefaultPrivileges, branch.DefaultPrivileges)...)

	return out, nil
}

// diffKind implements the universal flow (spec.md §4.1 steps 1-4) for one
// object kind: partition ids into created/dropped/common, emit CREATE/DROP
// for the first two, and for common ids emit ALTER plus whatever comment/
// privilege/membership follow-on changes the object carries.
func diffKind(k catalog.Kind, mainObjs, branchObjs map[string]catalog.Object) ([]*change.Change, error) {
	var out []*change.Change

	ids := unionKeys(mainObjs, branchObjs)
	for _, id := range ids {
		mo, inMain := mainObjs[id]
		bo, inBranch := branchObjs[id]

		var (
			changes []*change.Change
			err     error
		)
		switch {
		case inBranch && !inMain:
			changes, err = create(k, bo)
		case inMain && !inBranch:
			changes, err = drop(k, mo)
		default:
			changes, err = alterOrReplace(k, mo, bo)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, changes...)
	}
	return out, nil
}

// create emits the CREATE for a new object plus its comment/privilege/
// owner follow-ons (spec.md §4.1 step 2).
func create(k catalog.Kind, o catalog.Object) ([]*change.Change, error) {
	id := o.ID()
	c := change.New(string(k), change.OpCreate, change.ScopeObject, createSerializer(k, o))
	c.MainStableID = id
	c.SchemaName = schemaOf(o)
	c.OwnerRole = o.Owner()
	c.WithCreates(id)
	c.WithRequires(createRequires(k, o)...)

	out := []*change.Change{c}
	out = append(out, commentChange(k, id, "", commentOf(o), c.SchemaName)...)
	privChanges, err := privilegeChanges(k, id, nil, aclOf(o), c.SchemaName)
	if err != nil {
		return nil, err
	}
	out = append(out, privChanges...)
	if k == catalog.KindRole {
		out = append(out, membershipChanges(id, nil, o.(*catalog.Role).MemberOf)...)
	}
	if k == catalog.KindExtension {
		c.WithCreates(o.(*catalog.Extension).Members...)
	}
	return out, nil
}

// drop emits the DROP for a removed object (spec.md §4.1 step 3). Dropping
// an object implicitly drops its comment/ACL/memberships, so no follow-on
// changes are emitted for those; spec.md's drop-phase scope order still
// lists them because other kinds (e.g. a privilege revoked without
// dropping the object) go through privilegeChanges/membershipChanges
// instead.
func drop(k catalog.Kind, o catalog.Object) []*change.Change {
	id := o.ID()
	c := change.New(string(k), change.OpDrop, change.ScopeObject, dropSerializer(k, o))
	c.MainStableID = id
	c.SchemaName = schemaOf(o)
	c.OwnerRole = o.Owner()
	c.WithDrops(id)
	c.WithRequires(id)
	if k == catalog.KindExtension {
		members := o.(*catalog.Extension).Members
		c.WithDrops(members...)
		c.WithRequires(members...)
	}
	return []*change.Change{c}
}

// alterOrReplace implements spec.md §4.1 step 4: if only data fields
// changed, emit ALTER sub-statements; if an identity-adjacent field that
// PostgreSQL can't ALTER changed (see catalog.NonAlterableColumnFieldsChanged
// and the kinds with no alterBuilder registered), fall back to DROP+CREATE.
func alterOrReplace(k catalog.Kind, mo, bo catalog.Object) ([]*change.Change, error) {
	id := mo.ID()
	schema := schemaOf(bo)

	if needsReplace(k, mo, bo) {
		out := drop(k, mo)
		created, err := create(k, bo)
		if err != nil {
			return nil, err
		}
		return append(out, created...), nil
	}

	var out []*change.Change
	if !catalog.Equal(mo, bo) {
		if build, ok := alterBuilders[k]; ok {
			for _, stmt := range build(mo, bo) {
				c := change.New(string(k), change.OpAlter, change.ScopeObject, literalSerializer(stmt))
				c.MainStableID = id
				c.SchemaName = schema
				c.OwnerRole = bo.Owner()
				c.WithRequires(id)
				out = append(out, c)
			}
		}
	}

	out = append(out, commentChange(k, id, commentOf(mo), commentOf(bo), schema)...)
	privChanges, err := privilegeChanges(k, id, aclOf(mo), aclOf(bo), schema)
	if err != nil {
		return nil, err
	}
	out = append(out, privChanges...)
	if k == catalog.KindRole {
		out = append(out, membershipChanges(id, mo.(*catalog.Role).MemberOf, bo.(*catalog.Role).MemberOf)...)
	}
	// Extension carries no alterBuilder, so any Members delta (which is part
	// of its DataFields) always takes the needsReplace branch above, where
	// drop()/create() already attach the member ids being lost/gained.
	return out, nil
}

// needsReplace reports whether kind k has no registered alterBuilder (so
// any data-field change can only be expressed as drop+create) or the pair
// trips a kind-specific non-alterable-field check.
func needsReplace(k catalog.Kind, mo, bo catalog.Object) bool {
	if catalog.Equal(mo, bo) {
		return false
	}
	if k == catalog.KindColumn {
		return catalog.NonAlterableColumnFieldsChanged(mo.(*catalog.Column), bo.(*catalog.Column))
	}
	if k == catalog.KindEnum {
		if removed, _ := diffStringSet(mo.(*catalog.Enum).Labels, bo.(*catalog.Enum).Labels); len(removed) > 0 {
			return true
		}
	}
	_, alterable := alterBuilders[k]
	return !alterable
}

func unionKeys(a, b map[string]catalog.Object) []string {
	seen := make(map[string]bool, len(a)+len(b))
	for id := range a {
		seen[id] = true
	}
	for id := range b {
		seen[id] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func literalSerializer(stmt string) change.Serializer {
	return func(change.SerializeOptions) string { return stmt }
}

// quoteIdent quotes a PostgreSQL identifier, grounded on the teacher's
// reliance on lib/pq for quoting throughout pkg/migrations.
func quoteIdent(s string) string { return pq.QuoteIdentifier(s) }

// qualify renders a schema-qualified, quoted identifier, or just the
// quoted name if schema is "".
func qualify(schema, name string) string {
	if schema == "" {
		return quoteIdent(name)
	}
	return quoteIdent(schema) + "." + quoteIdent(name)
}

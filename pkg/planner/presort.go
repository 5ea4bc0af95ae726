// SPDX-License-Identifier: Apache-2.0

// Package planner turns a flat, diff-produced []*change.Change into an
// ordered migration script: a logical pre-sort for human readability
// (spec.md §4.3), a dependency graph (§4.4), and a topological sort that
// preserves the pre-order whenever dependency constraints allow (§4.5).
//
// Grounded on pkg/migrations/coordinator.go's role as the single place
// that decides a linear execution order over a flat operation list; this
// generalizes that idea to the explicit 8-key sort + producer/consumer
// graph this spec requires, which the teacher doesn't need because its
// migrations already arrive pre-ordered by the author.
package planner

import (
	"sort"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
)

// phase is the coarse drop-vs-create/alter bucket (spec.md §4.3 key 1,
// glossary "Phase").
type phase int

const (
	phaseDrop phase = iota
	phaseCreateAlter
)

// effectiveTypeOrder is the fixed integer order for spec.md §4.3 key 3.
// computeKey ranks a change under the kind of its MainStableID, so a
// sub-entity change whose MainStableID is its parent's id takes the
// parent's rank and clusters with the parent object; the sub-entity kinds
// listed here rank changes whose MainStableID is their own id.
var effectiveTypeOrder = map[catalog.Kind]int{
	catalog.KindSchema:           0,
	catalog.KindExtension:        1,
	catalog.KindRole:             2,
	catalog.KindFDW:              3,
	catalog.KindForeignServer:    4,
	catalog.KindUserMapping:      5,
	catalog.KindLanguage:         6,
	catalog.KindCollation:        7,
	catalog.KindDomain:           8,
	catalog.KindEnum:             9,
	catalog.KindComposite:        10,
	catalog.KindRange:            11,
	catalog.KindSequence:         12,
	catalog.KindFunction:         13,
	catalog.KindProcedure:        14,
	catalog.KindAggregate:        15,
	catalog.KindTable:            16,
	catalog.KindForeignTable:     16, // clusters with table
	catalog.KindIndex:            17,
	catalog.KindView:             18,
	catalog.KindMaterializedView: 19,
	catalog.KindTrigger:          20,
	catalog.KindPolicy:           21,
	catalog.KindRule:             22,
	catalog.KindEventTrigger:     23,
	catalog.KindPublication:      24,
	catalog.KindSubscription:     25,
}

// actualTypeOrder additionally orders sub-entity kinds within their
// parent's block (spec.md §4.3 key 5), e.g. so a table's own ALTERs sort
// before its columns', which sort before its constraints', etc.
var actualTypeOrder = map[catalog.Kind]int{
	catalog.KindSchema:           0,
	catalog.KindExtension:        0,
	catalog.KindRole:             0,
	catalog.KindFDW:              0,
	catalog.KindForeignServer:    0,
	catalog.KindUserMapping:      0,
	catalog.KindLanguage:         0,
	catalog.KindCollation:        0,
	catalog.KindDomain:           0,
	catalog.KindEnum:             0,
	catalog.KindComposite:        0,
	catalog.KindRange:            0,
	catalog.KindSequence:         0,
	catalog.KindFunction:         0,
	catalog.KindProcedure:        0,
	catalog.KindAggregate:        0,
	catalog.KindTable:            0,
	catalog.KindForeignTable:     0,
	catalog.KindColumn:           1,
	catalog.KindConstraint:       2,
	catalog.KindIndex:            3,
	catalog.KindView:             0,
	catalog.KindMaterializedView: 0,
	catalog.KindTrigger:          4,
	catalog.KindPolicy:           5,
	catalog.KindRule:             6,
	catalog.KindEventTrigger:     0,
	catalog.KindPublication:      0,
	catalog.KindSubscription:     0,
}

var scopeOrderCreate = map[change.Scope]int{
	change.ScopeDefaultPrivilege: 1,
	change.ScopeObject:           2,
	change.ScopeComment:          3,
	change.ScopePrivilege:        4,
	change.ScopeMembership:       5,
}

var scopeOrderDrop = map[change.Scope]int{
	change.ScopePrivilege: 1,
	change.ScopeComment:   2,
	change.ScopeObject:    3,
}

var operationOrder = map[change.Operation]int{
	change.OpCreate: 1,
	change.OpAlter:  2,
	change.OpDrop:   3,
}

// key is one change's full 8-part logical pre-sort key (spec.md §4.3).
type key struct {
	phase        phase
	schema       string
	effType      int
	mainID       string
	actualType   int
	scope        int
	operation    int
	originalIdx  int
}

func less(a, b key) bool {
	if a.phase != b.phase {
		return a.phase < b.phase
	}
	if a.schema != b.schema {
		return a.schema < b.schema
	}
	if a.effType != b.effType {
		return a.effType < b.effType
	}
	if a.mainID != b.mainID {
		return a.mainID < b.mainID
	}
	if a.actualType != b.actualType {
		return a.actualType < b.actualType
	}
	if a.scope != b.scope {
		return a.scope < b.scope
	}
	if a.operation != b.operation {
		return a.operation < b.operation
	}
	return a.originalIdx < b.originalIdx
}

// changePhase implements spec.md §4.3 key 1: an ALTER is drop-phase if it
// drops any non-metadata (object) stable id, e.g. DROP COLUMN/DROP
// CONSTRAINT sub-statements.
func changePhase(c *change.Change) phase {
	switch c.Operation {
	case change.OpDrop:
		return phaseDrop
	case change.OpAlter:
		for _, id := range c.Drops {
			if catalog.IsObjectID(id) {
				return phaseDrop
			}
		}
	}
	return phaseCreateAlter
}

func computeKey(c *change.Change, idx int) key {
	p := changePhase(c)
	k := catalog.Kind(c.ObjectType)
	effKind := k
	if parent := catalog.KindOf(c.MainStableID); parent != "" {
		effKind = parent
	}

	var scopeOrder int
	if p == phaseDrop {
		scopeOrder = scopeOrderDrop[c.Scope]
	} else {
		scopeOrder = scopeOrderCreate[c.Scope]
	}

	return key{
		phase:       p,
		schema:      c.SchemaName,
		effType:     effectiveTypeOrder[effKind],
		mainID:      c.MainStableID,
		actualType:  actualTypeOrder[k],
		scope:       scopeOrder,
		operation:   operationOrder[c.Operation],
		originalIdx: idx,
	}
}

// Presort returns a permutation of 0..len(changes)-1 in logical pre-sort
// order (spec.md §4.3). The topological sort (toposort.go) uses each
// change's rank in this order as its Kahn tie-break priority so that,
// whenever dependency constraints allow, the human-readable grouping
// survives into the final script.
func Presort(changes []*change.Change) []int {
	idx := make([]int, len(changes))
	keys := make([]key, len(changes))
	for i, c := range changes {
		idx[i] = i
		keys[i] = computeKey(c, i)
	}
	sort.Slice(idx, func(i, j int) bool { return less(keys[idx[i]], keys[idx[j]]) })
	return idx
}

// rankOf inverts Presort's permutation: rank[i] is change i's position in
// the logical pre-sort order.
func rankOf(order []int) []int {
	rank := make([]int, len(order))
	for pos, origIdx := range order {
		rank[origIdx] = pos
	}
	return rank
}

// synthenticSentinelSchema is the empty string: it sorts before every
// named schema lexicographically, satisfying spec.md §4.3 key 2's
// "synthetic sentinel" requirement for cluster-wide objects with no
// natural home schema.
const synthenticSentinelSchema = ""

// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"fmt"

	"github.com/pgcompare/pgcompare/pkg/depgraph"
	"github.com/pgcompare/pgcompare/pkg/diag"
)

// Phase is the coarse ordering bucket spec.md §4.6 step 6 assigns each
// statement class to, independent of the per-class depgraph priority
// weighting pkg/planner/toposort.go uses for Change nodes.
type Phase int

const (
	PhaseBootstrap Phase = iota
	PhasePreData
	PhaseDataStructures
	PhaseRoutines
	PhasePostData
	PhasePrivileges
)

// classPhase maps each Class to its phase (spec.md §4.6 step 6).
var classPhase = map[Class]Phase{
	ClassCreateRole:    PhaseBootstrap,
	ClassAlterRole:     PhaseBootstrap,
	ClassDropRole:      PhaseBootstrap,
	ClassVariableSet:   PhaseBootstrap,
	ClassTransaction:   PhaseBootstrap,
	ClassDo:            PhaseBootstrap,

	ClassCreateSchema:       PhasePreData,
	ClassCreateExtension:    PhasePreData,
	ClassCreateLanguage:     PhasePreData,
	ClassCreateCollation:    PhasePreData,
	ClassCreateFDW:          PhasePreData,
	ClassCreateForeignServer: PhasePreData,
	ClassCreateUserMapping:  PhasePreData,
	ClassCreateDomain:       PhasePreData,
	ClassCreateEnum:         PhasePreData,
	ClassCreateCompositeType: PhasePreData,
	ClassCreateRangeType:    PhasePreData,
	ClassAlterEnum:          PhasePreData,
	ClassCreateSequence:     PhasePreData,
	ClassAlterSequence:      PhasePreData,

	ClassCreateTable:        PhaseDataStructures,
	ClassAlterTable:         PhaseDataStructures,
	ClassRename:             PhaseDataStructures,
	ClassCreateIndex:        PhaseDataStructures,
	ClassCreateForeignTable: PhaseDataStructures,
	ClassCreateView:         PhaseDataStructures,
	ClassCreateMaterializedView:  PhaseDataStructures,
	ClassRefreshMaterializedView: PhaseDataStructures,

	ClassCreateFunction:     PhaseRoutines,

	ClassCreateTrigger:      PhasePostData,
	ClassCreateRule:         PhasePostData,
	ClassCreatePolicy:       PhasePostData,
	ClassCreateEventTrigger: PhasePostData,
	ClassCreatePublication:  PhasePostData,
	ClassCreateSubscription: PhasePostData,
	ClassDrop:               PhasePostData,
	ClassAlterOwner:         PhasePostData,
	ClassComment:            PhasePostData,

	ClassGrant:                  PhasePrivileges,
	ClassRevoke:                 PhasePrivileges,
	ClassGrantRole:              PhasePrivileges,
	ClassRevokeRole:             PhasePrivileges,
	ClassAlterDefaultPrivileges: PhasePrivileges,
}

// phaseOf returns a statement's phase; unknown classes sort into
// PhaseDataStructures, the broadest bucket, rather than first or last.
func phaseOf(c Class) Phase {
	if p, ok := classPhase[c]; ok {
		return p
	}
	return PhaseDataStructures
}

// classWeight implements spec.md §4.5's pg_dump-inspired statement-class
// weight table: the tie-break used within a phase, before falling back to
// file/statement order. Values are pg_dump's real object-ordering
// conventions (roles and namespace-level objects first, then types, then
// relations, then the post-data/privilege tail); the spec gives role=0,
// schema=1, extension=2, language=3, FDW=4, server=5, variable_set=6, do=7,
// type=10, domain=11, collation=12, sequence=13, grant=52, revoke=53,
// alter_default_privileges=54 as anchors, and the gaps here are filled
// consistently with those anchors.
var classWeight = map[Class]int{
	ClassCreateRole: 0,
	ClassAlterRole:  0,
	ClassDropRole:   0,

	ClassCreateSchema: 1,

	ClassCreateExtension: 2,

	ClassCreateLanguage: 3,

	ClassCreateFDW: 4,

	ClassCreateForeignServer: 5,

	ClassVariableSet: 6,

	ClassDo:          7,
	ClassTransaction: 8,

	ClassCreateUserMapping: 9,

	ClassCreateEnum:          10,
	ClassCreateCompositeType: 10,
	ClassCreateRangeType:     10,
	ClassAlterEnum:           10,

	ClassCreateDomain: 11,

	ClassCreateCollation: 12,

	ClassCreateSequence: 13,
	ClassAlterSequence:  13,

	ClassCreateForeignTable: 14,
	ClassCreateEventTrigger: 15,

	ClassCreateTable: 20,
	ClassAlterTable:  20,
	ClassRename:      20,

	ClassCreateIndex: 21,

	ClassCreateView:             22,
	ClassCreateMaterializedView: 23,
	ClassRefreshMaterializedView: 24,

	ClassCreatePublication:  25,
	ClassCreateSubscription: 26,

	ClassCreateFunction: 30,

	ClassCreateTrigger: 40,
	ClassCreateRule:    41,
	ClassCreatePolicy:  42,
	ClassDrop:          43,
	ClassAlterOwner:    44,
	ClassComment:       45,

	ClassGrant:                  52,
	ClassGrantRole:              52,
	ClassRevoke:                 53,
	ClassRevokeRole:             53,
	ClassAlterDefaultPrivileges: 54,
}

// weightOf returns a statement's class weight; unknown classes fall into
// the data-structures tier alongside ClassCreateTable, matching phaseOf's
// same broadest-bucket default.
func weightOf(c Class) int {
	if w, ok := classWeight[c]; ok {
		return w
	}
	return 20
}

// TopoSort implements spec.md §4.6 step 6: a Kahn ordering over the
// statement dependency graph, tie-broken first by phase, then by the
// pg_dump-inspired class weight (spec.md §4.5), then by original
// file/statement order (spec.md §4.5's "File path / source index",
// specialized here since apply statements have no logical pre-sort of
// their own).
func TopoSort(g *depgraph.Graph, nodes []Node) ([]int, diag.Diagnostics) {
	priority := func(n int) []int {
		class := nodes[n].Statement.Class
		return []int{int(phaseOf(class)), weightOf(class), n}
	}

	order, cyclic := g.TopoSort(priority)
	if len(cyclic) == 0 {
		return order, nil
	}

	var diags diag.Diagnostics
	for _, scc := range g.FindCycles(cyclic) {
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, nodes[n].Statement.ID)
		}
		diags = diags.Add(diag.Diagnostic{
			Code:       diag.CodeCycleDetected,
			Message:    fmt.Sprintf("dependency cycle among %d statements", len(scc)),
			ObjectRefs: ids,
		})
	}
	return order, diags
}

// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"fmt"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
	"github.com/pgcompare/pgcompare/pkg/depgraph"
	"github.com/pgcompare/pgcompare/pkg/diag"
)

// TopoSort implements spec.md §4.5: a Kahn ordering over the dependency
// graph, tie-broken by each change's position in the logical pre-sort
// (presort.go) so the human-readable grouping survives whenever dependency
// constraints allow it. Nodes that can't be ordered (stuck in a cycle) are
// reported back as CYCLE_DETECTED diagnostics, one per non-trivial strongly
// connected component (spec.md §4.5, §6.4).
func TopoSort(g *depgraph.Graph, changes []*change.Change, presortOrder []int) ([]int, diag.Diagnostics) {
	rank := rankOf(presortOrder)
	priority := func(n int) []int { return []int{rank[n]} }

	order, cyclic := g.TopoSort(priority)
	if len(cyclic) == 0 {
		return order, nil
	}

	var diags diag.Diagnostics
	for _, scc := range g.FindCycles(cyclic) {
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, cycleMemberID(changes[n]))
		}
		diags = diags.Add(diag.Diagnostic{
			Code:       diag.CodeCycleDetected,
			Message:    fmt.Sprintf("dependency cycle among %d changes", len(scc)),
			ObjectRefs: ids,
		})
	}
	return order, diags
}

func cycleMemberID(c *change.Change) string {
	if len(c.Creates) > 0 {
		return c.Creates[0]
	}
	if len(c.Drops) > 0 {
		return c.Drops[0]
	}
	if c.MainStableID != "" {
		return c.MainStableID
	}
	return string(catalog.Kind(c.ObjectType))
}

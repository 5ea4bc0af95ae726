// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"fmt"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
	"github.com/pgcompare/pgcompare/pkg/diag"
)

// Plan is the ordered migration script produced from a flat change list:
// changes in final execution order plus any diagnostics the planning
// process raised (spec.md §4, §6.4).
type Plan struct {
	Changes     []*change.Change
	Diagnostics diag.Diagnostics
}

// DefaultConstraintGenerators are the custom constraint generators every
// caller wants unless it has a reason not to (spec.md §4.4).
var DefaultConstraintGenerators = []ConstraintGenerator{DefaultPrivilegeConstraints}

// BuildPlan runs the full planning pipeline over a differ's output: logical
// pre-sort (§4.3), dependency graph construction (§4.4), and topological
// sort (§4.5). main is the catalog the changes are relative to; it is
// threaded through to BuildGraph for unresolved-dependency decisions.
func BuildPlan(changes []*change.Change, main *catalog.Catalog) (*Plan, error) {
	for i, c := range changes {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("planner: change %d failed validation: %w", i, err)
		}
	}

	presortOrder := Presort(changes)

	g, buildDiags := BuildGraph(changes, main, DefaultConstraintGenerators...)

	finalOrder, sortDiags := TopoSort(g, changes, presortOrder)

	ordered := make([]*change.Change, len(finalOrder))
	for i, idx := range finalOrder {
		ordered[i] = changes[idx]
	}

	var diags diag.Diagnostics
	diags = append(diags, buildDiags...)
	diags = append(diags, sortDiags...)

	return &Plan{Changes: ordered, Diagnostics: diags}, nil
}

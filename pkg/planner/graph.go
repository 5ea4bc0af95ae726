// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"fmt"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
	"github.com/pgcompare/pgcompare/pkg/depgraph"
	"github.com/pgcompare/pgcompare/pkg/diag"
)

// ConstraintGenerator injects additional edges beyond the plain
// producer/consumer resolution (spec.md §4.4, "Custom constraint
// generators"). It receives the change list and the producer index and
// returns extra (producer, consumer) index pairs.
type ConstraintGenerator func(changes []*change.Change, producers map[string][]int) [][2]int

// BuildGraph implements spec.md §4.4: one node per change, an edge
// producer -> consumer for every `requires` id resolved to a `creates` id,
// plus whatever extra constraint generators contribute.
//
// main is consulted to decide whether an unresolved `requires` is "assumed
// satisfied by main's existing state" (spec.md §4.4) and therefore silently
// dropped rather than left dangling; either way no edge is added for it,
// since only changes already in this plan can be dependency producers.
func BuildGraph(changes []*change.Change, main *catalog.Catalog, generators ...ConstraintGenerator) (*depgraph.Graph, diag.Diagnostics) {
	var diags diag.Diagnostics

	producers := make(map[string][]int)
	for i, c := range changes {
		for _, id := range c.Creates {
			producers[id] = append(producers[id], i)
		}
	}

	for id, idxs := range producers {
		if len(idxs) > 1 {
			diags = diags.Add(diag.Diagnostic{
				Code:       diag.CodeDuplicateProducer,
				Message:    fmt.Sprintf("multiple changes create %q", id),
				ObjectRefs: []string{id},
				Details:    map[string]string{"count": fmt.Sprintf("%d", len(idxs))},
			})
		}
	}

	g := depgraph.New(len(changes))
	for i, c := range changes {
		for _, req := range c.Requires {
			if catalog.IsBuiltinID(req) {
				continue
			}
			prods, ok := producers[req]
			if !ok || len(prods) == 0 {
				// No producer in this plan: spec.md §4.4 only drops the
				// edge silently when main already has the object: that's
				// the "assumed satisfied by main's existing state" case.
				// Otherwise the requirement isn't satisfiable by anything
				// in this run, which breaks §6.4's dependency-closure
				// invariant and is worth surfacing rather than hiding.
				if _, inMain := main.Get(req); !inMain {
					diags = diags.Add(diag.Diagnostic{
						Code:        diag.CodeUnresolvedDependency,
						Message:     fmt.Sprintf("no producer for %q and it is not present in main's catalog", req),
						StatementID: c.MainStableID,
						ObjectRefs:  []string{req},
					})
				}
				continue
			}
			for _, p := range prods {
				g.AddEdge(p, i)
			}
		}
	}

	for _, gen := range generators {
		for _, e := range gen(changes, producers) {
			g.AddEdge(e[0], e[1])
		}
	}

	return g, diags
}

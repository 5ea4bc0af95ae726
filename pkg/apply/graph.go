// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/pgcompare/pgcompare/pkg/depgraph"
	"github.com/pgcompare/pgcompare/pkg/diag"
)

// Node is one statement in the apply graph, carrying the provides/requires
// facts Provides/Requires extracted from its AST plus whatever
// schema-qualified references its body carries (function/procedure
// definitions, spec.md §4.6 step 4).
type Node struct {
	Statement Statement
	Provides  []ObjectRef
	Requires  []ObjectRef
}

// BuildNodes runs Provides/Requires/body-ref extraction over every parsed
// statement, in order.
func BuildNodes(stmts []Statement) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = Node{
			Statement: s,
			Provides:  Provides(s),
			Requires:  append(Requires(s), FunctionBodyRefs(s)...),
		}
	}
	return nodes
}

// producerIndex maps a "schema.name" key (kind is not part of it) to the
// node indices that provide it; candidates then applies KindCompatible/
// signature matching to that short list instead of an O(N^2) scan.
type producerIndex struct {
	byName map[string][]int // "schema.name" (no kind) -> node indices
}

func newProducerIndex(nodes []Node) *producerIndex {
	idx := &producerIndex{byName: make(map[string][]int)}
	for i, n := range nodes {
		for _, p := range n.Provides {
			key := refNameKey(p)
			idx.byName[key] = append(idx.byName[key], i)
		}
	}
	return idx
}

func refNameKey(r ObjectRef) string {
	if r.Schema == "" {
		return r.Name
	}
	return r.Schema + "." + r.Name
}

// candidates returns every node index whose Provides entry is kind- and
// (for functions) signature-compatible with req.
func (idx *producerIndex) candidates(nodes []Node, req ObjectRef) []int {
	var out []int
	for _, i := range idx.byName[refNameKey(req)] {
		for _, p := range nodes[i].Provides {
			if refNameKey(p) != refNameKey(req) {
				continue
			}
			if !KindCompatible(req.Kind, p.Kind) {
				continue
			}
			if req.Kind == RefFunction && !signatureCompatible(req.Signature, p.Signature, idx, nodes, req) {
				continue
			}
			out = append(out, i)
			break
		}
	}
	return out
}

// signatureCompatible implements spec.md §4.6 step 5's argument-signature
// rule: an argumentless `()` requirement matches any producer of the same
// name if exactly one exists; otherwise signatures must match exactly.
// The "exactly one" check counts the producers listed under req's name key
// in idx.
func signatureCompatible(want, have string, idx *producerIndex, nodes []Node, req ObjectRef) bool {
	if want == have {
		return true
	}
	if want == "()" || want == "" {
		return len(idx.byName[refNameKey(req)]) == 1
	}
	return false
}

// BuildGraph implements spec.md §4.6 step 5: one node per statement, an edge
// producer -> consumer for every Requires entry resolved against Provides,
// with DUPLICATE_PRODUCER / UNRESOLVED_DEPENDENCY diagnostics for ambiguous
// or unsatisfiable requirements. Grounded on pkg/planner/graph.go's
// producer-index shape, generalized here with the kind/signature
// compatibility pkg/planner doesn't need (its producers/consumers always
// share the same stable id grammar).
func BuildGraph(nodes []Node) (*depgraph.Graph, diag.Diagnostics) {
	var diags diag.Diagnostics
	idx := newProducerIndex(nodes)

	// Single-producer-per-exact-key diagnostic: only exact (kind, name,
	// signature) duplicates are reported, since overlapping kind buckets
	// (e.g. a table and its own index sharing a name key) are disambiguated
	// by KindCompatible at resolution time, not flagged here.
	exact := make(map[string][]int)
	for i, n := range nodes {
		for _, p := range n.Provides {
			key := fmt.Sprintf("%s|%s|%s", p.Kind, refNameKey(p), p.Signature)
			exact[key] = append(exact[key], i)
		}
	}
	keys := make([]string, 0, len(exact))
	for k := range exact {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		idxs := exact[k]
		if len(idxs) <= 1 {
			continue
		}
		ids := make([]string, 0, len(idxs))
		for _, i := range idxs {
			ids = append(ids, nodes[i].Statement.ID)
		}
		diags = diags.Add(diag.Diagnostic{
			Code:       diag.CodeDuplicateProducer,
			Message:    fmt.Sprintf("multiple statements provide %s", k),
			StatementID: ids[0],
			ObjectRefs: ids,
		})
	}

	g := depgraph.New(len(nodes))
	for i, n := range nodes {
		for _, req := range n.Requires {
			if req.Name == "" || isBuiltinRef(req) {
				continue
			}
			cands := idx.candidates(nodes, req)
			switch len(cands) {
			case 0:
				diags = diags.Add(diag.Diagnostic{
					Code:        diag.CodeUnresolvedDependency,
					Message:     fmt.Sprintf("no producer found for %s", req),
					StatementID: n.Statement.ID,
					ObjectRefs:  []string{req.String()},
					SuggestedFix: fuzzySuggestion(req, idx, nodes),
				})
			case 1:
				g.AddEdge(cands[0], i)
			default:
				ids := make([]string, 0, len(cands))
				for _, c := range cands {
					ids = append(ids, nodes[c].Statement.ID)
				}
				diags = diags.Add(diag.Diagnostic{
					Code:        diag.CodeDuplicateProducer,
					Message:     fmt.Sprintf("ambiguous producer for %s", req),
					StatementID: n.Statement.ID,
					ObjectRefs:  ids,
				})
				// Still order against every candidate: an ambiguous but
				// present dependency is better ordered redundantly than
				// silently dropped.
				for _, c := range cands {
					g.AddEdge(c, i)
				}
			}
		}
	}

	return g, diags
}

// builtinSchemas mirrors spec.md §3.1's "built-in object" predicate,
// scoped to the handful of schema names the apply engine's own statements
// could plausibly reference without having created them.
var builtinSchemas = map[string]bool{
	"pg_catalog": true, "information_schema": true, "pg_toast": true,
}

func isBuiltinRef(r ObjectRef) bool {
	return builtinSchemas[r.Schema]
}

// fuzzySuggestion implements spec.md §6.4's "fuzzy candidates by name" for
// UNRESOLVED_DEPENDENCY diagnostics: the closest-spelled Provides name
// across the whole node set, by edit distance, if one is close enough to be
// useful.
func fuzzySuggestion(req ObjectRef, idx *producerIndex, nodes []Node) string {
	candidates := make([]string, 0, len(idx.byName))
	for key := range idx.byName {
		candidates = append(candidates, key)
	}
	sort.Strings(candidates)
	ranks := fuzzy.RankFindFold(refNameKey(req), candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	best := ranks[0]
	if best.Distance > 3 {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", best.Target)
}

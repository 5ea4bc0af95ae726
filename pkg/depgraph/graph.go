// SPDX-License-Identifier: Apache-2.0

// Package depgraph is the generic producer/consumer graph and topological
// sort shared by pkg/planner (over Change nodes) and pkg/apply (over SQL
// statement nodes) — spec.md §4.6 says the apply engine's graph is "the
// same model as §4.4 but over statement nodes", so the sort/cycle-
// detection machinery lives here once instead of being duplicated.
//
// No dependency in the teacher's go.mod or the rest of the example pack
// offers a topological sort; this is the standard-library-only case
// spec.md's own design notes anticipate for small, self-contained
// algorithms (see DESIGN.md).
package depgraph

import "container/heap"

// Graph is a directed graph over node indices 0..N-1. An edge (u, v) means
// "u must be ordered before v" (u produces something v requires).
type Graph struct {
	N     int
	edges [][2]int
	adj   [][]int // adj[u] = nodes that depend on u
}

// New creates an empty graph over n nodes.
func New(n int) *Graph {
	return &Graph{N: n, adj: make([][]int, n)}
}

// AddEdge adds a u-before-v edge. Self-edges are suppressed (spec.md §4.4).
func (g *Graph) AddEdge(u, v int) {
	if u == v {
		return
	}
	g.edges = append(g.edges, [2]int{u, v})
	g.adj[u] = append(g.adj[u], v)
}

// Edges returns all edges added so far.
func (g *Graph) Edges() [][2]int { return g.edges }

// indegree computes the indegree of every node.
func (g *Graph) indegree() []int {
	deg := make([]int, g.N)
	for _, e := range g.edges {
		deg[e[1]]++
	}
	return deg
}

// pqItem is a node waiting in the zero-indegree frontier, ordered by the
// caller-supplied priority (ties broken by ascending node index for
// determinism, spec.md §4.5 "File path / source index").
type pqItem struct {
	node     int
	priority []int // lexicographic priority key, lower sorts first
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i].priority, pq[j].priority
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return pq[i].node < pq[j].node
}
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)        { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// PriorityFunc returns the tie-breaking sort key for a node; lower sorts
// first among nodes simultaneously ready to be ordered.
type PriorityFunc func(node int) []int

// TopoSort performs a Kahn-style ordering (spec.md §4.5): repeatedly picks
// the lowest-priority zero-indegree node. If every node can be ordered,
// cyclic is empty. Otherwise order contains only the nodes that could be
// ordered and cyclic contains the indices of the nodes stuck with nonzero
// indegree — callers run FindCycles on exactly those to build
// CYCLE_DETECTED diagnostics (spec.md §4.5).
func (g *Graph) TopoSort(priority PriorityFunc) (order []int, cyclic []int) {
	deg := g.indegree()
	pq := &priorityQueue{}
	heap.Init(pq)
	for i := 0; i < g.N; i++ {
		if deg[i] == 0 {
			heap.Push(pq, pqItem{node: i, priority: priority(i)})
		}
	}

	order = make([]int, 0, g.N)
	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		order = append(order, item.node)
		for _, v := range g.adj[item.node] {
			deg[v]--
			if deg[v] == 0 {
				heap.Push(pq, pqItem{node: v, priority: priority(v)})
			}
		}
	}

	if len(order) == g.N {
		return order, nil
	}

	ordered := make(map[int]bool, len(order))
	for _, n := range order {
		ordered[n] = true
	}
	for i := 0; i < g.N; i++ {
		if !ordered[i] {
			cyclic = append(cyclic, i)
		}
	}
	return order, cyclic
}

// FindCycles runs Tarjan's strongly-connected-components algorithm
// restricted to the given subset of nodes, returning only the
// non-trivial SCCs (size > 1, or a single node with a self-loop) — these
// are exactly the CYCLE_DETECTED diagnostics of spec.md §4.5.
func (g *Graph) FindCycles(subset []int) [][]int {
	in := make(map[int]bool, len(subset))
	for _, n := range subset {
		in[n] = true
	}

	index := 0
	indices := make(map[int]int)
	lowlink := make(map[int]int)
	onStack := make(map[int]bool)
	var stack []int
	var sccs [][]int

	var strongconnect func(v int)
	strongconnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.adj[v] {
			if !in[w] {
				continue
			}
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, v := range subset {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}

	var nonTrivial [][]int
	for _, scc := range sccs {
		if len(scc) > 1 {
			nonTrivial = append(nonTrivial, scc)
			continue
		}
		v := scc[0]
		for _, w := range g.adj[v] {
			if w == v {
				nonTrivial = append(nonTrivial, scc)
				break
			}
		}
	}
	return nonTrivial
}

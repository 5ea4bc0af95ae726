// SPDX-License-Identifier: Apache-2.0

package depgraph

import (
	"reflect"
	"testing"
)

func samePriority(i int) []int { return []int{i} }

func TestTopoSortLinear(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	order, cyclic := g.TopoSort(samePriority)
	if len(cyclic) != 0 {
		t.Fatalf("unexpected cycle: %v", cyclic)
	}
	if !reflect.DeepEqual(order, []int{0, 1, 2}) {
		t.Fatalf("got %v", order)
	}
}

func TestTopoSortSelfEdgeSuppressed(t *testing.T) {
	g := New(1)
	g.AddEdge(0, 0)
	if len(g.Edges()) != 0 {
		t.Fatalf("expected self-edge to be suppressed, got %v", g.Edges())
	}
}

func TestTopoSortPriorityTieBreak(t *testing.T) {
	g := New(3) // no edges: all three are simultaneously ready
	priority := map[int][]int{0: {2}, 1: {0}, 2: {1}}
	order, _ := g.TopoSort(func(n int) []int { return priority[n] })
	if !reflect.DeepEqual(order, []int{1, 2, 0}) {
		t.Fatalf("got %v, want priority order [1 2 0]", order)
	}
}

func TestTopoSortCycleDetection(t *testing.T) {
	g := New(4)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 1) // 1 <-> 2 cycle
	g.AddEdge(2, 3)

	order, cyclic := g.TopoSort(samePriority)
	if len(order) != 1 || order[0] != 0 {
		t.Fatalf("expected only node 0 ordered, got %v", order)
	}
	sccs := g.FindCycles(cyclic)
	if len(sccs) != 1 {
		t.Fatalf("expected exactly one cycle, got %v", sccs)
	}
	got := map[int]bool{}
	for _, n := range sccs[0] {
		got[n] = true
	}
	if !got[1] || !got[2] {
		t.Fatalf("expected cycle to contain nodes 1 and 2, got %v", sccs[0])
	}
}

func TestFindCyclesSelfLoop(t *testing.T) {
	g := New(2)
	g.edges = append(g.edges, [2]int{0, 0})
	g.adj[0] = append(g.adj[0], 0)
	sccs := g.FindCycles([]int{0, 1})
	if len(sccs) != 1 || len(sccs[0]) != 1 || sccs[0][0] != 0 {
		t.Fatalf("expected self-loop cycle on node 0, got %v", sccs)
	}
}

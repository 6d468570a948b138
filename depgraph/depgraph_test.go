// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package depgraph

import "testing"

func indexOf(order []int, n int) int {
	for i, v := range order {
		if v == n {
			return i
		}
	}
	return -1
}

func TestToposortReverseOrdersEdges(t *testing.T) {
	g := New[string, int]()
	a := g.AddNode("a")
	b := g.AddNode("b")
	c := g.AddNode("c")
	d := g.AddNode("d")

	g.AddEdge(a, b, 1)
	g.AddEdge(a, c, 1)
	g.AddEdge(b, d, 1)
	g.AddEdge(c, d, 1)

	order, err := g.ToposortReverse()
	if err != nil {
		t.Fatalf("ToposortReverse: %v", err)
	}
	if len(order) != 4 {
		t.Fatalf("order has %d entries, want 4", len(order))
	}
	for _, e := range []struct{ u, v int }{{a, b}, {a, c}, {b, d}, {c, d}} {
		if indexOf(order, e.u) >= indexOf(order, e.v) {
			t.Errorf("order does not respect edge %d -> %d: %v", e.u, e.v, order)
		}
	}
}

func TestToposortReverseDetectsCycle(t *testing.T) {
	g := New[string, int]()
	a := g.AddNode("a")
	b := g.AddNode("b")
	g.AddEdge(a, b, 1)
	g.AddEdge(b, a, 1)

	if _, err := g.ToposortReverse(); err != ErrCycle {
		t.Fatalf("ToposortReverse error = %v, want ErrCycle", err)
	}
}

func TestEdgeOrDefaultUpserts(t *testing.T) {
	g := New[string, []int]()
	a := g.AddNode("a")
	b := g.AddNode("b")

	w1 := g.EdgeOrDefault(a, b, func() []int { return nil })
	*w1 = append(*w1, 1)

	w2 := g.EdgeOrDefault(a, b, func() []int { return nil })
	*w2 = append(*w2, 2)

	edges := g.OutEdges(a)
	if len(edges) != 1 {
		t.Fatalf("OutEdges(a) has %d entries, want 1 (upsert should not duplicate)", len(edges))
	}
	if got := edges[0]; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("accumulated weight = %v, want [1 2]", got)
	}
}

func TestSingleNodeNoEdges(t *testing.T) {
	g := New[string, int]()
	g.AddNode("only")
	order, err := g.ToposortReverse()
	if err != nil {
		t.Fatalf("ToposortReverse: %v", err)
	}
	if len(order) != 1 || order[0] != 0 {
		t.Errorf("order = %v, want [0]", order)
	}
}

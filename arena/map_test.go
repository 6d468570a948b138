// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package arena

import "testing"

func TestMapGetOrInsert(t *testing.T) {
	a := New[string]()
	k := a.Insert("img0")

	m := NewMap[string, int]()
	p := m.GetOrInsert(k, func() int { return 0 })
	*p += 4

	got, ok := m.Get(k)
	if !ok || got != 4 {
		t.Fatalf("Get(%v) = (%d, %v), want (4, true)", k, got, ok)
	}

	// A second GetOrInsert must not reset the existing value.
	p2 := m.GetOrInsert(k, func() int { return 99 })
	*p2 += 1
	if got, _ := m.Get(k); got != 5 {
		t.Errorf("after second GetOrInsert, got %d, want 5", got)
	}
}

func TestMapUnoccupiedSlotsExcludedFromAll(t *testing.T) {
	a := New[int]()
	k0 := a.Insert(0)
	a.Insert(1) // k1, left unoccupied in the map
	k2 := a.Insert(2)

	m := NewMap[int, string]()
	m.Insert(k0, "zero")
	m.Insert(k2, "two")

	entries := m.All()
	if len(entries) != 2 {
		t.Fatalf("All() returned %d entries, want 2", len(entries))
	}
	if entries[0].Val != "zero" || entries[1].Val != "two" {
		t.Errorf("All() = %+v, want [zero two]", entries)
	}
}

func TestMapDelete(t *testing.T) {
	a := New[int]()
	k := a.Insert(0)

	m := NewMap[int, string]()
	m.Insert(k, "x")
	m.Delete(k)

	if _, ok := m.Get(k); ok {
		t.Error("Get after Delete reported found")
	}
}

// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package arena

import "testing"

// TestKeysStableAndInjective covers testable property 1: inserting values
// v1..vn yields distinct keys, and for each i, A.Get(ki) == vi.
func TestKeysStableAndInjective(t *testing.T) {
	a := New[string]()
	vals := []string{"a", "b", "c", "d"}
	keys := make([]Key[string], len(vals))
	for i, v := range vals {
		keys[i] = a.Insert(v)
	}
	seen := make(map[uint32]bool)
	for i, k := range keys {
		if seen[k.index] {
			t.Fatalf("key %d (index %d) is not distinct", i, k.index)
		}
		seen[k.index] = true

		got, ok := a.Get(k)
		if !ok {
			t.Fatalf("Get(%v) reported not found", k)
		}
		if got != vals[i] {
			t.Errorf("Get(%v) = %q, want %q", k, got, vals[i])
		}
	}
}

func TestGetOutOfRange(t *testing.T) {
	a := New[int]()
	a.Insert(1)
	if _, ok := a.Get(Key[int]{index: 5}); ok {
		t.Error("Get reported found for out-of-range key")
	}
}

func TestInsertWithObservesOwnKey(t *testing.T) {
	a := New[int]()
	var got Key[int]
	k := a.InsertWith(func(self Key[int]) int {
		got = self
		return int(self.index)
	})
	if got != k {
		t.Errorf("InsertWith init saw key %v, want %v", got, k)
	}
}

// Note: a Key[string] cannot be used to index an Arena[int] - the
// following does not compile, which is the point:
//
//	var strs Arena[string]
//	var ints Arena[int]
//	k := strs.Insert("x")
//	ints.Get(k) // compile error: Key[string] is not Key[int]

func TestAllPreservesInsertionOrder(t *testing.T) {
	a := New[int]()
	for i := 0; i < 5; i++ {
		a.Insert(i * 10)
	}
	for i, e := range a.All() {
		if e.Val != i*10 {
			t.Errorf("All()[%d] = %d, want %d", i, e.Val, i*10)
		}
	}
}

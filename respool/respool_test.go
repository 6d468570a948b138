// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package respool

import "testing"

type meta struct{ label string }
type state int

// TestStaleKeysRejected covers testable property 2: after
// k := pool.Create(...); pool.Destroy(k), every accessor returns not-found
// for k, and a subsequent Create may reuse the same index but returns a
// key with a different generation.
func TestStaleKeysRejected(t *testing.T) {
	p := New[int, meta, state]()
	k := p.Create(42, meta{label: "first"})

	hot, cold, ok := p.Destroy(k)
	if !ok || hot != 42 || cold.Meta.label != "first" {
		t.Fatalf("Destroy(k) = (%d, %+v, %v), want (42, {first}, true)", hot, cold, ok)
	}

	if _, ok := p.Hot(k); ok {
		t.Error("Hot(k) reported found after Destroy")
	}
	if p.Cold(k) != nil {
		t.Error("Cold(k) reported found after Destroy")
	}
	if _, _, ok := p.Destroy(k); ok {
		t.Error("second Destroy(k) reported success")
	}

	k2 := p.Create(43, meta{label: "second"})
	if k2.Index() != k.Index() {
		t.Fatalf("Create did not reuse the freed slot: got index %d, want %d", k2.Index(), k.Index())
	}
	if k2.Gen() == k.Gen() {
		t.Errorf("reused slot has the same generation %d as the destroyed key", k2.Gen())
	}
	if _, ok := p.Hot(k); ok {
		t.Error("original stale key still resolves after slot reuse")
	}
	if got, ok := p.Hot(k2); !ok || got != 43 {
		t.Errorf("Hot(k2) = (%d, %v), want (43, true)", got, ok)
	}
}

func TestOwnershipAcquireReleaseRoundTrip(t *testing.T) {
	p := New[int, meta, state]()
	k := p.Create(1, meta{})
	cold := p.Cold(k)

	cold.Ownership.Acquire(7)
	if !cold.Ownership.Owned() {
		t.Fatal("Owned() false after Acquire")
	}
	cold.Ownership.Release(7, state(5))
	if cold.Ownership.Owned() {
		t.Fatal("Owned() true after Release")
	}
	if cold.Ownership.State != state(5) {
		t.Errorf("State after release = %v, want 5", cold.Ownership.State)
	}
}

func TestOwnershipAcquireByDifferentOwnerPanics(t *testing.T) {
	p := New[int, meta, state]()
	k := p.Create(1, meta{})
	cold := p.Cold(k)
	cold.Ownership.Acquire(1)

	defer func() {
		if recover() == nil {
			t.Fatal("Acquire by a second owner did not panic")
		}
	}()
	cold.Ownership.Acquire(2)
}

func TestBatchOrderMonotonic(t *testing.T) {
	p := New[int, meta, state]()
	k1 := p.Create(1, meta{})
	k2 := p.Create(2, meta{})
	if p.Cold(k1).BatchOrder >= p.Cold(k2).BatchOrder {
		t.Errorf("batch order not monotonic: %d, %d", p.Cold(k1).BatchOrder, p.Cold(k2).BatchOrder)
	}
}

func TestCreateNamedRecordsName(t *testing.T) {
	p := New[int, meta, state]()
	k := p.CreateNamed(1, meta{}, "gbuffer-albedo")
	if got := p.Cold(k).Name; got != "gbuffer-albedo" {
		t.Errorf("Name = %q, want %q", got, "gbuffer-albedo")
	}
}

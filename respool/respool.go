// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package respool implements a generational, slotted resource pool.
//
// Each slot holds two parallel pieces of state: a "hot" value (typically a
// driver handle) and a "cold" value (metadata and an ownership guard). A
// free list recycles destroyed slots, and a per-slot generation counter
// invalidates keys handed out before the slot was last destroyed, so a
// stale key is rejected rather than silently aliasing a reused slot.
//
// Pool is generic over its hot-handle, metadata and ownership-state types,
// so one implementation can back any kind of resource. Package graph does
// not use it; its runtime keeps transient images in its own cache.
package respool

import "sync/atomic"

// Key identifies a slot in a Pool. The zero Key (index 0, generation 0) is
// the key of the first slot a new Pool creates.
type Key[T any] struct {
	index uint32
	gen   uint32
}

// Index returns the raw slot index wrapped by k.
func (k Key[T]) Index() uint32 { return k.index }

// Gen returns the generation wrapped by k.
func (k Key[T]) Gen() uint32 { return k.gen }

// Ownership guards a slot's owner. State is the caller-chosen "current
// state" value stored alongside the owner (e.g., a buffer's last known
// pipeline stage/access for barrier elision).
type Ownership[State any] struct {
	owner   uint64 // 0 means unowned
	State   State
}

// Acquire sets the slot's owner to owner if it is currently unowned.
// It panics if the slot is already owned by a different owner - per the
// spec, acquiring a resource that someone else already owns is a
// programming error, not a recoverable condition.
func (o *Ownership[State]) Acquire(owner uint64) {
	if o.owner != 0 && o.owner != owner {
		panic("respool: resource already owned")
	}
	o.owner = owner
}

// Release clears the slot's owner (if it matches owner) and stores
// newState.
func (o *Ownership[State]) Release(owner uint64, newState State) {
	if o.owner != owner {
		panic("respool: release by non-owner")
	}
	o.owner = 0
	o.State = newState
}

// Owned reports whether the slot currently has an owner.
func (o *Ownership[State]) Owned() bool { return o.owner != 0 }

// Cold bundles a resource's metadata with its ownership guard and a
// monotonic batch-order counter, used to break ties when resources are
// iterated in bulk (e.g., for a debug dump of all live resources in
// creation order even after slots have been recycled).
type Cold[Meta any, State any] struct {
	Meta       Meta
	Ownership  Ownership[State]
	BatchOrder uint64

	// Name is the debug-utils object name, if one was supplied at
	// creation time via CreateNamed. Empty if none was given.
	Name string
}

type slot[H any, Meta any, State any] struct {
	hot  H
	cold Cold[Meta, State]
	gen  uint32
	live bool
}

// Pool holds hot/cold parallel storage for resources of hot-handle type H,
// metadata type Meta, and ownership-state type State.
type Pool[H any, Meta any, State any] struct {
	slots    []slot[H, Meta, State]
	freeList []uint32
	batch    atomic.Uint64
}

// New creates an empty pool.
func New[H any, Meta any, State any]() *Pool[H, Meta, State] {
	return &Pool[H, Meta, State]{}
}

// Create allocates a slot (reusing one from the free list if available),
// stores hot and meta, and returns the new key.
func (p *Pool[H, Meta, State]) Create(hot H, meta Meta) Key[H] {
	order := p.batch.Add(1)
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		s := &p.slots[idx]
		s.hot = hot
		s.cold = Cold[Meta, State]{Meta: meta, BatchOrder: order}
		s.live = true
		return Key[H]{index: idx, gen: s.gen}
	}
	idx := uint32(len(p.slots))
	p.slots = append(p.slots, slot[H, Meta, State]{
		hot:  hot,
		cold: Cold[Meta, State]{Meta: meta, BatchOrder: order},
		live: true,
	})
	return Key[H]{index: idx, gen: 0}
}

// CreateNamed is like Create, but additionally records name as the
// resource's debug-utils object name, so that a GPU debugging tool can
// display it instead of a raw handle.
func (p *Pool[H, Meta, State]) CreateNamed(hot H, meta Meta, name string) Key[H] {
	k := p.Create(hot, meta)
	p.Cold(k).Name = name
	return k
}

func (p *Pool[H, Meta, State]) lookup(k Key[H]) *slot[H, Meta, State] {
	if int(k.index) >= len(p.slots) {
		return nil
	}
	s := &p.slots[k.index]
	if !s.live || s.gen != k.gen {
		return nil
	}
	return s
}

// Hot returns the hot handle stored under k.
func (p *Pool[H, Meta, State]) Hot(k Key[H]) (H, bool) {
	s := p.lookup(k)
	if s == nil {
		var zero H
		return zero, false
	}
	return s.hot, true
}

// Cold returns a pointer to the cold metadata/ownership state stored under
// k, or nil if k does not identify a live slot.
func (p *Pool[H, Meta, State]) Cold(k Key[H]) *Cold[Meta, State] {
	s := p.lookup(k)
	if s == nil {
		return nil
	}
	return &s.cold
}

// Destroy invalidates k: it reads out the hot/cold values, bumps the
// slot's generation so that k (and any copy of it) is rejected by future
// accessors, and returns the slot to the free list.
//
// Destroy requires the live generation; destroying with a stale key is a
// no-op that reports false.
func (p *Pool[H, Meta, State]) Destroy(k Key[H]) (H, Cold[Meta, State], bool) {
	s := p.lookup(k)
	if s == nil {
		var zeroH H
		var zeroC Cold[Meta, State]
		return zeroH, zeroC, false
	}
	hot, cold := s.hot, s.cold
	s.live = false
	s.gen++
	var zeroH H
	var zeroC Cold[Meta, State]
	s.hot = zeroH
	s.cold = zeroC
	p.freeList = append(p.freeList, k.index)
	return hot, cold, true
}

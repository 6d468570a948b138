// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package arena provides typed, index-based storage.
//
// An Arena[T] allocates values of a single type and returns opaque Key[T]
// indices that are stable for the lifetime of the arena. Because Key is
// generic over T, keys minted by one arena cannot be used to index an
// arena of a different element type - the Go compiler rejects the
// substitution at the call site, the same guarantee the source language
// gets from a phantom type parameter.
package arena

// Key identifies a value stored in an Arena[T].
// The zero Key has index 0, the key of an arena's first inserted value.
type Key[T any] struct {
	index uint32
}

// Index returns the raw index wrapped by k.
// Most callers should not need this; it exists for code that must log or
// hash keys.
func (k Key[T]) Index() uint32 { return k.index }

// Arena holds a growable sequence of values of type T.
// There is no deallocation: an Arena is discarded as a whole when no
// longer needed.
type Arena[T any] struct {
	vals []T
}

// New creates an empty arena.
func New[T any]() *Arena[T] { return &Arena[T]{} }

// Insert appends val to the arena and returns its key.
func (a *Arena[T]) Insert(val T) Key[T] {
	k := Key[T]{index: uint32(len(a.vals))}
	a.vals = append(a.vals, val)
	return k
}

// InsertWith appends a value produced by init to the arena.
// init receives the key that the value is about to be stored under,
// allowing self-referential construction (a node that needs to know its
// own key, for instance).
func (a *Arena[T]) InsertWith(init func(Key[T]) T) Key[T] {
	k := Key[T]{index: uint32(len(a.vals))}
	var zero T
	a.vals = append(a.vals, zero)
	a.vals[k.index] = init(k)
	return k
}

// Get returns the value stored under k and whether k is in range.
func (a *Arena[T]) Get(k Key[T]) (T, bool) {
	if int(k.index) >= len(a.vals) {
		var zero T
		return zero, false
	}
	return a.vals[k.index], true
}

// GetPtr returns a pointer to the value stored under k, or nil if k is out
// of range. The pointer is invalidated by any further Insert call.
func (a *Arena[T]) GetPtr(k Key[T]) *T {
	if int(k.index) >= len(a.vals) {
		return nil
	}
	return &a.vals[k.index]
}

// MustGet is like Get but panics if k is out of range.
// It is meant for call sites where an out-of-range key is a programming
// error rather than a recoverable condition (e.g., dereferencing a key
// that this same arena just minted).
func (a *Arena[T]) MustGet(k Key[T]) T {
	v, ok := a.Get(k)
	if !ok {
		panic("arena: key out of range")
	}
	return v
}

// Len returns the number of values stored in the arena.
func (a *Arena[T]) Len() int { return len(a.vals) }

// Entry pairs a key with its value, as yielded by All.
type Entry[T any] struct {
	Key Key[T]
	Val T
}

// All returns every (key, value) pair in insertion order.
//
// This returns a plain slice rather than an iter.Seq2, since iter.Seq2
// requires Go 1.23 and this module targets go 1.21.
func (a *Arena[T]) All() []Entry[T] {
	out := make([]Entry[T], len(a.vals))
	for i, v := range a.vals {
		out[i] = Entry[T]{Key: Key[T]{index: uint32(i)}, Val: v}
	}
	return out
}

// Package baobab implements an in-memory byte-keyed associative map as an
// adaptive radix trie with a heap-packed node representation: each trie
// node lives in a single allocation whose layout is computed at runtime
// from a 2-byte header, so prefix bytes, child-index data, child handles
// and an optional value all share one contiguous block.
//
// The trie is single-threaded; callers needing concurrent access must
// provide their own synchronization. Keys are opaque byte sequences -- Key
// offers convenience constructors for turning strings and integers into
// order-preserving byte encodings, but the Trie itself only ever sees
// []byte.
package baobab

import (
	"iter"

	"github.com/sujayakar/baobab/internal/packed"
)

// Trie is a byte-keyed associative map holding values of type V. The zero
// Trie is ready to use.
type Trie[V any] struct {
	root packed.Ref[V]
}

// New returns an empty Trie.
func New[V any]() *Trie[V] {
	return &Trie[V]{}
}

// Get returns the value stored at key and true, or the zero V and false if
// key is absent.
func (t *Trie[V]) Get(key []byte) (V, bool) {
	if v := t.root.Get(key); v != nil {
		return *v, true
	}
	var zero V
	return zero, false
}

// GetMut returns a pointer to the value stored at key for in-place
// mutation, or nil if key is absent. Callers must treat the Trie as
// exclusively borrowed for as long as the returned pointer is in use.
func (t *Trie[V]) GetMut(key []byte) *V {
	return t.root.Get(key)
}

// Insert associates key with value, returning the value previously stored
// there (if any). An empty key is a valid key, denoting the root's own
// value slot.
func (t *Trie[V]) Insert(key []byte, value V) (V, bool) {
	return t.root.Insert(key, value)
}

// Remove deletes key if present, returning its former value and true;
// otherwise it returns the zero V and false.
func (t *Trie[V]) Remove(key []byte) (V, bool) {
	return t.root.Remove(key)
}

// All returns a lazy, ascending-key-order sequence over every (key, value)
// pair in the trie. The yielded key is a fresh copy on every step; the
// yielded value is a pointer into the trie's own storage.
func (t *Trie[V]) All() iter.Seq2[[]byte, *V] {
	return func(yield func([]byte, *V) bool) {
		t.root.Walk(nil, yield)
	}
}

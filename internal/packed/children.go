package packed

import "sort"

// KV is one entry of the canonical ordered-map view of a node's children,
// used as the pivot representation when converting between variants.
type KV[V any] struct {
	Key   byte
	Child Ref[V]
}

// Children is the in-memory (unpacked) representation of a node's child
// table. It mirrors the four packed shapes (Empty/Pairs/Sparse/Dense) so
// that Take/New can round-trip a packed node without committing to one
// variant ahead of time; FromOrderedMap always picks the variant dictated
// purely by the live child count, which is what keeps a rebuilt Dense table
// free of stale empty slots.
type Children[V any] struct {
	kind ChildrenType
	keys []byte    // Pairs only
	bits Bitset256 // Sparse only
	refs []Ref[V]  // Pairs/Sparse: parallel to keys/bits-order; Dense: all 256 slots
}

func EmptyChildren[V any]() Children[V] {
	return Children[V]{kind: Empty}
}

// OneChild builds a single-entry Pairs table.
func OneChild[V any](k byte, child Ref[V]) Children[V] {
	return Children[V]{kind: Pairs, keys: []byte{k}, refs: []Ref[V]{child}}
}

// TwoChildren builds a two-entry Pairs table, sorted by key.
func TwoChildren[V any](k1 byte, c1 Ref[V], k2 byte, c2 Ref[V]) Children[V] {
	if k1 <= k2 {
		return Children[V]{kind: Pairs, keys: []byte{k1, k2}, refs: []Ref[V]{c1, c2}}
	}
	return Children[V]{kind: Pairs, keys: []byte{k2, k1}, refs: []Ref[V]{c2, c1}}
}

func (c Children[V]) structureType() ChildrenType { return c.kind }

// Len reports the number of live (non-empty) children.
func (c Children[V]) Len() int {
	switch c.kind {
	case Empty:
		return 0
	case Dense:
		n := 0
		for _, r := range c.refs {
			if !r.IsEmpty() {
				n++
			}
		}
		return n
	default: // Pairs, Sparse: constructed with only live entries
		return len(c.refs)
	}
}

// IntoOrderedMap flattens any variant into key-sorted (key, child) pairs,
// dropping empty slots. This is the canonical pivot used before every
// structural edit (add/remove a child, demote/promote variant).
func (c Children[V]) IntoOrderedMap() []KV[V] {
	switch c.kind {
	case Empty:
		return nil
	case Pairs:
		out := make([]KV[V], 0, len(c.keys))
		for i, k := range c.keys {
			if !c.refs[i].IsEmpty() {
				out = append(out, KV[V]{Key: k, Child: c.refs[i]})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
		return out
	case Sparse:
		out := make([]KV[V], 0, len(c.refs))
		i := 0
		c.bits.Iter(func(b byte) {
			if !c.refs[i].IsEmpty() {
				out = append(out, KV[V]{Key: b, Child: c.refs[i]})
			}
			i++
		})
		return out
	case Dense:
		out := make([]KV[V], 0, len(c.refs))
		for b, r := range c.refs {
			if !r.IsEmpty() {
				out = append(out, KV[V]{Key: byte(b), Child: r})
			}
		}
		return out
	default:
		panic("packed: unreachable children kind")
	}
}

// FromOrderedMap rebuilds a Children table in the variant dictated by the
// entry count, per the 0 / 1-32 / 33-192 / 193-256 buckets. Because this is
// called on every structural change, a Dense table is always rebuilt from
// scratch on demotion and never carries stale empty slots as steady state.
func FromOrderedMap[V any](m []KV[V]) Children[V] {
	n := len(m)
	switch {
	case n == 0:
		return Children[V]{kind: Empty}
	case n <= 32:
		keys := make([]byte, n)
		refs := make([]Ref[V], n)
		for i, kv := range m {
			keys[i] = kv.Key
			refs[i] = kv.Child
		}
		return Children[V]{kind: Pairs, keys: keys, refs: refs}
	case n <= 192:
		var bits Bitset256
		refs := make([]Ref[V], n)
		for i, kv := range m {
			bits.Set(kv.Key)
			refs[i] = kv.Child
		}
		return Children[V]{kind: Sparse, bits: bits, refs: refs}
	case n <= 256:
		refs := make([]Ref[V], 256)
		for _, kv := range m {
			refs[kv.Key] = kv.Child
		}
		return Children[V]{kind: Dense, refs: refs}
	default:
		panic("packed: invalid child count")
	}
}

// insertSortedKV inserts a new (key, child) pair into a key-sorted slice,
// panicking if the key is already present -- callers guarantee the key is
// new, since Insert only reaches AddChild after Lookup already failed.
func insertSortedKV[V any](m []KV[V], key byte, child Ref[V]) []KV[V] {
	i := sort.Search(len(m), func(i int) bool { return m[i].Key >= key })
	if i < len(m) && m[i].Key == key {
		panic("packed: duplicate child key")
	}
	m = append(m, KV[V]{})
	copy(m[i+1:], m[i:])
	m[i] = KV[V]{Key: key, Child: child}
	return m
}

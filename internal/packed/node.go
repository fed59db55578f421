package packed

import "unsafe"

// handleSize is the size of a single packed-node handle (one pointer),
// independent of the value type V a given trie is instantiated with.
const handleSize = unsafe.Sizeof(uintptr(0))

// Node is the logical, unpacked view of a trie node: a prefix, a child
// table and an optional value. Take/New round-trip between this shape and
// the single-allocation packed representation.
type Node[V any] struct {
	Prefix   []byte
	Children Children[V]
	Value    *V
}

// Ref is a possibly-empty handle to a packed node. The zero Ref is empty.
// A non-empty Ref points at a single heap allocation whose layout is
// entirely determined by the Header stored in its first two bytes, so Ref
// itself carries no size information of its own -- it is exactly pointer
// sized, which is what lets children tables store arrays of Ref as raw
// handle slots.
type Ref[V any] struct {
	ptr unsafe.Pointer
}

// EmptyRef returns the empty Ref (no allocation).
func EmptyRef[V any]() Ref[V] { return Ref[V]{} }

func (r Ref[V]) IsEmpty() bool { return r.ptr == nil }

func (r Ref[V]) header() Header {
	return *(*Header)(r.ptr)
}

func (r Ref[V]) bytes() []byte {
	size := AllocSize[V](r.header())
	return unsafe.Slice((*byte)(r.ptr), size)
}

// Prefix returns the node's prefix bytes, or nil if the Ref is empty.
func (r Ref[V]) Prefix() []byte {
	if r.IsEmpty() {
		return nil
	}
	h := r.header()
	s, e := h.PrefixRange()
	return r.bytes()[s:e]
}

// Value returns a pointer directly into the packed allocation's value slot,
// or nil if the node is empty or carries no value. Because Go's pointer
// model has no shared/exclusive borrow distinction at the type level, this
// single method serves both read-only lookups and in-place mutation: the
// returned pointer is genuinely addressable memory, not a reinterpreted
// shared reference.
func (r Ref[V]) Value() *V {
	if r.IsEmpty() {
		return nil
	}
	h := r.header()
	s, _, ok := ValueRange[V](h)
	if !ok {
		return nil
	}
	return (*V)(unsafe.Pointer(&r.bytes()[s]))
}

func refSlotAt[V any](region []byte, i int) *Ref[V] {
	return (*Ref[V])(unsafe.Pointer(&region[i*int(handleSize)]))
}

// Lookup returns a pointer to the child handle slot for branch byte b,
// reading directly out of the packed children region without unpacking.
// The returned pointer aliases the parent's own allocation: assigning
// through it (as Insert/Remove do) mutates the parent in place.
func (r Ref[V]) Lookup(b byte) *Ref[V] {
	if r.IsEmpty() {
		return nil
	}
	h := r.header()
	cs, ce := h.ChildrenRange()
	region := r.bytes()[cs:ce]
	switch h.ChildrenType() {
	case Empty:
		return nil
	case Pairs:
		n := h.NumChildren()
		keys := region[:n]
		vals := region[n:]
		for i, k := range keys {
			if k == b {
				return refSlotAt[V](vals, i)
			}
		}
		return nil
	case Sparse:
		var bits Bitset256
		bits = *(*Bitset256)(unsafe.Pointer(&region[0]))
		rank, ok := bits.Rank(b)
		if !ok {
			return nil
		}
		vals := region[bitsetSize:]
		return refSlotAt[V](vals, rank)
	case Dense:
		slot := refSlotAt[V](region, int(b))
		if slot.IsEmpty() {
			return nil
		}
		return slot
	default:
		panic("packed: unreachable children type")
	}
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Take empties r, returning the logical Node it used to hold. Calling Take
// on an empty Ref returns the zero Node. Any live handle slots in the
// returned Node's Children are copied out of the old allocation, which then
// becomes unreachable and is reclaimed by the garbage collector -- Go has
// no manual free, so the collector plays the role of the host allocator's
// deallocation half.
func (r *Ref[V]) Take() Node[V] {
	if r.IsEmpty() {
		return Node[V]{}
	}
	h := r.header()
	buf := r.bytes()

	ps, pe := h.PrefixRange()
	prefix := cloneBytes(buf[ps:pe])

	children := readChildren[V](h, buf)

	var value *V
	if vs, _, ok := ValueRange[V](h); ok {
		v := *(*V)(unsafe.Pointer(&buf[vs]))
		value = &v
	}

	*r = Ref[V]{}
	return Node[V]{Prefix: prefix, Children: children, Value: value}
}

func readChildren[V any](h Header, buf []byte) Children[V] {
	cs, ce := h.ChildrenRange()
	region := buf[cs:ce]
	n := h.NumChildren()
	switch h.ChildrenType() {
	case Empty:
		return Children[V]{kind: Empty}
	case Pairs:
		keys := cloneBytes(region[:n])
		refs := make([]Ref[V], n)
		vals := region[n:]
		for i := range refs {
			refs[i] = *refSlotAt[V](vals, i)
		}
		return Children[V]{kind: Pairs, keys: keys, refs: refs}
	case Sparse:
		bits := *(*Bitset256)(unsafe.Pointer(&region[0]))
		refs := make([]Ref[V], n)
		vals := region[bitsetSize:]
		for i := range refs {
			refs[i] = *refSlotAt[V](vals, i)
		}
		return Children[V]{kind: Sparse, bits: bits, refs: refs}
	case Dense:
		refs := make([]Ref[V], 256)
		for i := range refs {
			refs[i] = *refSlotAt[V](region, i)
		}
		return Children[V]{kind: Dense, refs: refs}
	default:
		panic("packed: unreachable children type")
	}
}

// New packs a logical Node into a fresh single allocation and returns a Ref
// to it. node.Children must already be in the variant its own Len()
// dictates (every Children constructor in this package guarantees that).
func New[V any](node Node[V]) Ref[V] {
	if node.Children.structureType() != childrenTypeFromCount(node.Children.Len()) {
		panic("packed: children table variant does not match child count")
	}
	h := NewHeader(len(node.Prefix), node.Children.Len(), node.Value != nil)
	size := AllocSize[V](h)

	// Back the allocation with a slice of unsafe.Pointer, not a scalar type
	// like []uint64: the garbage collector treats a []uint64 backing array
	// as pointer-free and never scans it, so child Refs and pointer-bearing
	// V values written into it via the unsafe casts below would be invisible
	// to the collector -- every node but the root would be collectible out
	// from under its still-live parent. []unsafe.Pointer gives the runtime a
	// scannable span; findObject's usual address-range check harmlessly
	// ignores the words that hold plain prefix/header/bitset bytes rather
	// than real pointers.
	wordSize := int(handleSize)
	nwords := (size + wordSize - 1) / wordSize
	if nwords == 0 {
		nwords = 1
	}
	words := make([]unsafe.Pointer, nwords)
	base := unsafe.Pointer(&words[0])
	buf := unsafe.Slice((*byte)(base), size)

	*(*Header)(base) = h

	ps, pe := h.PrefixRange()
	copy(buf[ps:pe], node.Prefix)

	writeChildren(h, buf, node.Children)

	if vs, _, ok := ValueRange[V](h); ok {
		*(*V)(unsafe.Pointer(&buf[vs])) = *node.Value
	}

	return Ref[V]{ptr: base}
}

func writeChildren[V any](h Header, buf []byte, c Children[V]) {
	cs, ce := h.ChildrenRange()
	region := buf[cs:ce]
	switch c.kind {
	case Empty:
		return
	case Pairs:
		n := len(c.refs)
		copy(region[:n], c.keys)
		vals := region[n:]
		for i, ref := range c.refs {
			*refSlotAt[V](vals, i) = ref
		}
	case Sparse:
		*(*Bitset256)(unsafe.Pointer(&region[0])) = c.bits
		vals := region[bitsetSize:]
		for i, ref := range c.refs {
			*refSlotAt[V](vals, i) = ref
		}
	case Dense:
		for i, ref := range c.refs {
			*refSlotAt[V](region, i) = ref
		}
	default:
		panic("packed: unreachable children kind")
	}
}

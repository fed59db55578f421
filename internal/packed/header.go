// Package packed implements the heap-packed radix-trie node representation:
// a two-byte Header that describes a node's prefix length, child count and
// value presence, and the byte-range arithmetic used to lay a node's prefix,
// children and value out in a single allocation.
package packed

import "unsafe"

// ChildrenType names the four adaptive shapes a node's children can take,
// selected purely from the live child count.
type ChildrenType uint8

const (
	Empty ChildrenType = iota
	Pairs
	Sparse
	Dense
)

func childrenTypeFromCount(n int) ChildrenType {
	switch {
	case n == 0:
		return Empty
	case n <= 32:
		return Pairs
	case n <= 192:
		return Sparse
	case n <= 256:
		return Dense
	default:
		panic("packed: invalid child count")
	}
}

// maxPrefixLen is the largest prefix length representable in the header's
// 6-bit prefix-length field.
const maxPrefixLen = 63

// Header is the 2-byte descriptor stored at the front of every packed node
// allocation. Byte 0 packs a 6-bit prefix length, a "256 children" flag and
// a "has value" flag; byte 1 holds the child count for counts below 256.
type Header struct {
	prefixByte   uint8
	childrenByte uint8
}

// headerSize is the size in bytes of Header itself (the start of every other range).
const headerSize = unsafe.Sizeof(Header{})

// NewHeader builds a Header from a node's shape. It panics if prefixLen or
// numChildren is out of range, matching the fatal-on-malformed-input policy
// for internal invariant violations.
func NewHeader(prefixLen, numChildren int, hasValue bool) Header {
	if prefixLen < 0 || prefixLen > maxPrefixLen {
		panic("packed: prefix length out of range")
	}
	if numChildren < 0 || numChildren > 256 {
		panic("packed: child count out of range")
	}
	p := uint8(prefixLen)
	var c uint8
	if numChildren == 256 {
		p |= 1 << 6
		c = 255
	} else {
		c = uint8(numChildren)
	}
	if hasValue {
		p |= 1 << 7
	}
	return Header{prefixByte: p, childrenByte: c}
}

func (h Header) PrefixLen() int {
	const mask = (1 << 6) - 1
	return int(h.prefixByte & mask)
}

func (h Header) NumChildren() int {
	if h.prefixByte&(1<<6) != 0 {
		return 256
	}
	return int(h.childrenByte)
}

func (h Header) HasValue() bool {
	return h.prefixByte&(1<<7) != 0
}

func (h Header) ChildrenType() ChildrenType {
	return childrenTypeFromCount(h.NumChildren())
}

// HeaderRange is the byte range occupied by the header itself.
func (h Header) HeaderRange() (int, int) {
	return 0, int(headerSize)
}

// PrefixRange is the byte range holding the node's prefix bytes.
func (h Header) PrefixRange() (int, int) {
	_, end := h.HeaderRange()
	return end, end + h.PrefixLen()
}

func (h Header) childrenLen() int {
	switch h.ChildrenType() {
	case Empty:
		return 0
	case Pairs:
		n := h.NumChildren()
		return n + n*int(handleSize)
	case Sparse:
		return bitsetSize + h.NumChildren()*int(handleSize)
	case Dense:
		return 256 * int(handleSize)
	default:
		panic("packed: unreachable children type")
	}
}

// ChildrenRange is the byte range holding the node's child table, in
// whichever of the four shapes NumChildren dictates.
func (h Header) ChildrenRange() (int, int) {
	_, prefixEnd := h.PrefixRange()
	return prefixEnd, prefixEnd + h.childrenLen()
}

func roundUp(v, align int) int {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// ValueRange reports the byte range holding the node's value, properly
// aligned for V, and whether the node carries a value at all.
func ValueRange[V any](h Header) (start, end int, ok bool) {
	if !h.HasValue() {
		return 0, 0, false
	}
	_, childrenEnd := h.ChildrenRange()
	var zero V
	align := int(unsafe.Alignof(zero))
	start = roundUp(childrenEnd, align)
	end = start + int(unsafe.Sizeof(zero))
	return start, end, true
}

// AllocSize is the total number of bytes a packed node with this header and
// value type V must occupy.
func AllocSize[V any](h Header) int {
	if _, end, ok := ValueRange[V](h); ok {
		return end
	}
	_, end := h.ChildrenRange()
	return end
}

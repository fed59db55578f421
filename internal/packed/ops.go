package packed

// SetValue replaces r's value (creating the node if necessary is not this
// method's job: it only ever runs against an already non-empty Ref reached
// mid-Insert) and returns the previous value, if any.
func (r *Ref[V]) SetValue(value V) (old V, hadOld bool) {
	node := r.Take()
	if node.Value != nil {
		old = *node.Value
		hadOld = true
	}
	node.Value = &value
	*r = New(node)
	return old, hadOld
}

// AddChild inserts a brand new branch byte -> child mapping. It panics if
// the branch byte already has a child, since every call site first confirms
// absence via Lookup.
func (r *Ref[V]) AddChild(branch byte, child Ref[V]) {
	node := r.Take()
	ordered := insertSortedKV(node.Children.IntoOrderedMap(), branch, child)
	node.Children = FromOrderedMap(ordered)
	*r = New(node)
}

func valuePtr[V any](v V) *V { return &v }

// prefixSplit handles the "key exhausted mid-prefix" insert case: the
// original node's prefix is cut at splitAt, the branch byte at that
// position plus the rest of the prefix becomes a single child carrying the
// node's old children/value, and the new value is attached to the new
// parent.
//
//	before: prefix=abc, value=old, children=old_children
//	after:  prefix=a, value=new, child['b'] -> { prefix=c, value=old, children=old_children }
func (r *Ref[V]) prefixSplit(splitAt int, newValue V) {
	node := r.Take()
	parentPrefix := cloneBytes(node.Prefix[:splitAt])
	branch := node.Prefix[splitAt]
	childPrefix := cloneBytes(node.Prefix[splitAt+1:])

	child := New(Node[V]{Prefix: childPrefix, Children: node.Children, Value: node.Value})
	parent := Node[V]{
		Prefix:   parentPrefix,
		Children: OneChild(branch, child),
		Value:    valuePtr(newValue),
	}
	*r = New(parent)
}

// branchSplit handles the "prefix mismatch" insert case: the original
// node's prefix is cut at splitAt, and the diverging suffix (old prefix
// remainder, carrying the old children/value) and the new key's remainder
// (carrying newValue) become two sibling children of a value-less parent.
//
//	before: prefix=abc, value=old, children=old_children
//	after:  prefix=a, value=none, child['b'] -> {prefix=c,...old}, child['d'] -> {prefix=ef,value=new}
func (r *Ref[V]) branchSplit(splitAt int, keyBranch byte, keyRemainder []byte, newValue V) {
	node := r.Take()
	parentPrefix := cloneBytes(node.Prefix[:splitAt])
	firstBranch := node.Prefix[splitAt]
	firstPrefix := cloneBytes(node.Prefix[splitAt+1:])

	firstChild := New(Node[V]{Prefix: firstPrefix, Children: node.Children, Value: node.Value})
	secondChild := New(Node[V]{Prefix: cloneBytes(keyRemainder), Children: EmptyChildren[V](), Value: valuePtr(newValue)})

	parent := Node[V]{
		Prefix:   parentPrefix,
		Children: TwoChildren(firstBranch, firstChild, keyBranch, secondChild),
		Value:    nil,
	}
	*r = New(parent)
}

// Insert inserts key -> value, returning the previous value at key (if
// any). It descends the prefix byte by byte; a mismatch forces a
// branch-split, the key running out mid-prefix forces a prefix-split, and
// both running out together sets the value on the current node. Otherwise
// it recurses into (or creates) the child for the next key byte.
func (r *Ref[V]) Insert(key []byte, value V) (old V, hadOld bool) {
	prefix := r.Prefix()
	i := 0
	for i < len(prefix) {
		if i >= len(key) {
			r.prefixSplit(i, value)
			return old, false
		}
		if key[i] != prefix[i] {
			r.branchSplit(i, key[i], key[i+1:], value)
			return old, false
		}
		i++
	}
	if i == len(key) {
		return r.SetValue(value)
	}
	branch := key[i]
	rest := key[i+1:]
	if child := r.Lookup(branch); child != nil {
		return child.Insert(rest, value)
	}
	leaf := New(Node[V]{Prefix: cloneBytes(rest), Children: EmptyChildren[V](), Value: valuePtr(value)})
	r.AddChild(branch, leaf)
	return old, false
}

// Get returns a pointer to the value stored at key, or nil if absent. It
// never unpacks a node: every step reads directly out of packed bytes.
func (r Ref[V]) Get(key []byte) *V {
	cur := r
	for {
		prefix := cur.Prefix()
		if len(key) < len(prefix) {
			return nil
		}
		for i, b := range prefix {
			if key[i] != b {
				return nil
			}
		}
		key = key[len(prefix):]
		if len(key) == 0 {
			return cur.Value()
		}
		branch := key[0]
		key = key[1:]
		child := cur.Lookup(branch)
		if child == nil {
			return nil
		}
		cur = *child
	}
}

// mergeWithSoleChild folds a value-less single-child node into its parent's
// slot, concatenating prefix + branch byte + child prefix and adopting the
// child's own children and value. This is the operation that restores
// invariant I2 (no value-less node has exactly one child) after a removal.
func mergeWithSoleChild[V any](prefix []byte, kv KV[V]) Node[V] {
	child := kv.Child
	childNode := child.Take()
	merged := make([]byte, 0, len(prefix)+1+len(childNode.Prefix))
	merged = append(merged, prefix...)
	merged = append(merged, kv.Key)
	merged = append(merged, childNode.Prefix...)
	return Node[V]{Prefix: merged, Children: childNode.Children, Value: childNode.Value}
}

// Remove deletes key, if present, and returns its former value. It
// descends to the target node; on the way back up, whenever a recursed-into
// child became empty, the parent repairs itself so invariants I1 (a live
// node has a value or at least one child) and I2 hold afterward.
func (r *Ref[V]) Remove(key []byte) (old V, removed bool) {
	prefix := r.Prefix()
	if len(key) < len(prefix) {
		return old, false
	}
	for i, b := range prefix {
		if key[i] != b {
			return old, false
		}
	}
	rest := key[len(prefix):]

	if len(rest) == 0 {
		if r.Value() == nil {
			return old, false
		}
		node := r.Take()
		old = *node.Value
		ordered := node.Children.IntoOrderedMap()
		switch len(ordered) {
		case 0:
			*r = Ref[V]{} // leave empty; parent cleans us up
		case 1:
			*r = New(mergeWithSoleChild(node.Prefix, ordered[0]))
		default:
			*r = New(Node[V]{Prefix: node.Prefix, Children: FromOrderedMap(ordered), Value: nil})
		}
		return old, true
	}

	branch := rest[0]
	restKey := rest[1:]
	child := r.Lookup(branch)
	if child == nil {
		return old, false
	}
	old, removed = child.Remove(restKey)
	if !removed {
		return old, false
	}
	if !child.IsEmpty() {
		// Child mutated its own slot in place via the aliased pointer; no
		// repack of the parent is needed.
		return old, true
	}

	node := r.Take()
	ordered := node.Children.IntoOrderedMap() // the emptied slot is already dropped
	switch {
	case node.Value == nil && len(ordered) == 0:
		*r = Ref[V]{}
	case node.Value == nil && len(ordered) == 1:
		*r = New(mergeWithSoleChild(node.Prefix, ordered[0]))
	default:
		*r = New(Node[V]{Prefix: node.Prefix, Children: FromOrderedMap(ordered), Value: node.Value})
	}
	return old, true
}

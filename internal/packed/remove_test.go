package packed

import "testing"

func TestRemove_AbsentKeyReturnsFalse(t *testing.T) {
	var r Ref[string]
	r.Insert([]byte("a"), "a")
	if _, removed := r.Remove([]byte("b")); removed {
		t.Fatal("Remove of absent key reported removed")
	}
}

func TestRemove_LeafWithNoChildrenEmptiesNode(t *testing.T) {
	var r Ref[string]
	r.Insert([]byte("a"), "a")
	old, removed := r.Remove([]byte("a"))
	if !removed || old != "a" {
		t.Fatalf("Remove(a) = (%q,%v), want (a,true)", old, removed)
	}
	if !r.IsEmpty() {
		t.Fatal("removing the only key should leave the trie empty")
	}
}

func TestRemove_MergesSoleRemainingChildIntoParent(t *testing.T) {
	var r Ref[string]
	r.Insert([]byte("ab"), "ab")
	r.Insert([]byte("ac"), "ac")

	old, removed := r.Remove([]byte("ac"))
	if !removed || old != "ac" {
		t.Fatalf("Remove(ac) = (%q,%v), want (ac,true)", old, removed)
	}
	if v := r.Get([]byte("ab")); v == nil || *v != "ab" {
		t.Fatalf("Get(ab) after merge = %v, want ab", v)
	}
	// The merge happens one level down (at the 'a' child, which absorbed its
	// sole remaining child 'b'): the child reached via branch byte 'a' must
	// now carry the full remaining suffix "b" as its own prefix.
	child := r.Lookup('a')
	if child == nil || child.IsEmpty() {
		t.Fatal("expected a surviving child at branch byte 'a'")
	}
	if string(child.Prefix()) != "b" {
		t.Fatalf("merged child prefix = %q, want %q", child.Prefix(), "b")
	}
}

func TestRemove_KeepsBranchingNodeWithMultipleChildren(t *testing.T) {
	var r Ref[string]
	r.Insert([]byte("ab"), "ab")
	r.Insert([]byte("ac"), "ac")
	r.Insert([]byte("ad"), "ad")

	r.Remove([]byte("ac"))
	for _, k := range []string{"ab", "ad"} {
		if v := r.Get([]byte(k)); v == nil || *v != k {
			t.Fatalf("Get(%s) = %v, want %s", k, v, k)
		}
	}
	if v := r.Get([]byte("ac")); v != nil {
		t.Fatalf("Get(ac) = %v, want absent", v)
	}
}

func TestRemove_KeepsValueOnParentEvenWithOneRemainingChild(t *testing.T) {
	var r Ref[string]
	r.Insert([]byte("a"), "root")
	r.Insert([]byte("ab"), "ab")
	r.Insert([]byte("ac"), "ac")

	r.Remove([]byte("ac"))
	if v := r.Get([]byte("a")); v == nil || *v != "root" {
		t.Fatalf("Get(a) = %v, want root (I2 only applies to value-less nodes)", v)
	}
	if v := r.Get([]byte("ab")); v == nil || *v != "ab" {
		t.Fatalf("Get(ab) = %v, want ab", v)
	}
}

func TestRemove_DemotesBackThroughVariantsAsChildrenShrink(t *testing.T) {
	var r Ref[int]
	for i := 0; i < 100; i++ {
		r.Insert([]byte{byte(i)}, i)
	}
	if got := r.header().ChildrenType(); got != Sparse {
		t.Fatalf("children type with 100 entries = %v, want Sparse", got)
	}
	for i := 20; i < 100; i++ {
		r.Remove([]byte{byte(i)})
	}
	if got := r.header().ChildrenType(); got != Pairs {
		t.Fatalf("children type with 20 entries = %v, want Pairs", got)
	}
	for i := 0; i < 20; i++ {
		v := r.Get([]byte{byte(i)})
		if v == nil || *v != i {
			t.Fatalf("Get(%d) = %v, want %d", i, v, i)
		}
	}
}

func TestRemove_ThenReinsertRoundTrips(t *testing.T) {
	var r Ref[string]
	keys := []string{"a", "ab", "abc", "b", "ba", ""}
	for _, k := range keys {
		r.Insert([]byte(k), k)
	}
	for _, k := range keys {
		old, removed := r.Remove([]byte(k))
		if !removed || old != k {
			t.Fatalf("Remove(%q) = (%q,%v), want (%q,true)", k, old, removed, k)
		}
	}
	if !r.IsEmpty() {
		t.Fatal("trie should be empty after removing every key")
	}
	r.Insert([]byte("a"), "again")
	if v := r.Get([]byte("a")); v == nil || *v != "again" {
		t.Fatalf("Get(a) after reinsert = %v, want again", v)
	}
}

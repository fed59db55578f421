package packed

import "testing"

func TestBitset256_SetTestClear(t *testing.T) {
	var bs Bitset256
	for _, i := range []byte{0, 63, 64, 127, 128, 191, 192, 255} {
		if bs.Test(i) {
			t.Fatalf("bit %d should be clear initially", i)
		}
	}
	for _, i := range []byte{0, 1, 63, 64, 100, 200, 255} {
		bs.Set(i)
		if !bs.Test(i) {
			t.Fatalf("bit %d should be set after Set", i)
		}
	}
	for _, i := range []byte{2, 62, 65, 199, 254} {
		if bs.Test(i) {
			t.Fatalf("bit %d unexpectedly set", i)
		}
	}
}

func TestBitset256_RankMatchesPopulationToTheLeft(t *testing.T) {
	var bs Bitset256
	set := []byte{0, 5, 64, 70, 128, 200, 255}
	for _, b := range set {
		bs.Set(b)
	}
	for wantRank, b := range set {
		rank, ok := bs.Rank(b)
		if !ok {
			t.Fatalf("bit %d should report present", b)
		}
		if rank != wantRank {
			t.Fatalf("Rank(%d) = %d, want %d", b, rank, wantRank)
		}
	}
	for _, b := range []byte{1, 63, 129, 254} {
		if _, ok := bs.Rank(b); ok {
			t.Fatalf("Rank(%d) should report absent", b)
		}
	}
}

func TestBitset256_RankAtWordBoundaries(t *testing.T) {
	var bs Bitset256
	bs.Set(0)
	bs.Set(64)
	bs.Set(128)
	bs.Set(192)
	if rank, ok := bs.Rank(0); !ok || rank != 0 {
		t.Fatalf("Rank(0) = (%d,%v), want (0,true)", rank, ok)
	}
	if rank, ok := bs.Rank(192); !ok || rank != 3 {
		t.Fatalf("Rank(192) = (%d,%v), want (3,true)", rank, ok)
	}
}

func TestBitset256_IterAscending(t *testing.T) {
	var bs Bitset256
	want := []byte{3, 64, 65, 200, 255}
	for _, b := range want {
		bs.Set(b)
	}
	var got []byte
	bs.Iter(func(b byte) { got = append(got, b) })
	if len(got) != len(want) {
		t.Fatalf("Iter produced %d bits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Iter()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if bs.Count() != len(want) {
		t.Fatalf("Count() = %d, want %d", bs.Count(), len(want))
	}
}

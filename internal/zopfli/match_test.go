package zopfli

import "testing"

func TestMatchLength(t *testing.T) {
	data := []byte("abcdefabcxyz")
	if got := matchLength(data, 0, 6, 258); got != 3 {
		t.Fatalf("matchLength = %d, want 3 (\"abc\" shared, then 'd' vs 'x' diverge)", got)
	}
	if got := matchLength(data, 0, 6, 2); got != 2 {
		t.Fatalf("matchLength with limit 2 = %d, want 2", got)
	}
}

func TestMatchFinderFindsEarlierOccurrence(t *testing.T) {
	data := []byte("abcxyzabc")
	chain := newHashChain(len(data))
	chain.build(data)
	cache := newMatchCache(len(data))
	mf := newMatchFinder(data, chain, cache)

	length, dist := mf.find(6, 258)
	if length != 3 {
		t.Fatalf("length = %d, want 3", length)
	}
	if dist != 6 {
		t.Fatalf("dist = %d, want 6 (back to position 0)", dist)
	}
}

func TestMatchFinderNoMatchBelowMinMatch(t *testing.T) {
	data := []byte("abcdefgh")
	chain := newHashChain(len(data))
	chain.build(data)
	cache := newMatchCache(len(data))
	mf := newMatchFinder(data, chain, cache)

	length, _ := mf.find(4, 258)
	if length != 0 {
		t.Fatalf("length = %d, want 0 (no repeated bytes anywhere in this input)", length)
	}
}

func TestMatchFinderCachesResult(t *testing.T) {
	data := []byte("abcxyzabc")
	chain := newHashChain(len(data))
	chain.build(data)
	cache := newMatchCache(len(data))
	mf := newMatchFinder(data, chain, cache)

	l1, d1 := mf.find(6, 258)
	l2, d2 := mf.find(6, 258)
	if l1 != l2 || d1 != d2 {
		t.Fatalf("repeated find() at the same position/limit should agree: (%d,%d) vs (%d,%d)", l1, d1, l2, d2)
	}
	// find() bounds the search limit to what's left in data (3 bytes here)
	// before touching the cache, so the entry is keyed on that bounded value.
	if _, _, ok := cache.get(6, 3); !ok {
		t.Fatalf("find() should populate the match cache")
	}
}

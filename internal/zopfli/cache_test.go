package zopfli

import "testing"

func TestMatchCacheGetSetRoundTrip(t *testing.T) {
	c := newMatchCache(10)
	c.set(3, 5, 5, 9, []uint16{0, 0, 9})

	length, dist, ok := c.get(3, 5)
	if !ok || length != 5 || dist != 9 {
		t.Fatalf("get(3,5) = (%d,%d,%v), want (5,9,true)", length, dist, ok)
	}

	// The cached search was capped at limit 5 and found a match exactly that
	// long, so a wider request can't tell whether a longer match exists and
	// must re-search.
	if _, _, ok := c.get(3, 10); ok {
		t.Fatalf("get(3,10) should miss: cached search was capped at a shorter limit")
	}
}

func TestMatchCacheUncappedResultServesAnyLimit(t *testing.T) {
	c := newMatchCache(10)
	// length (5) is strictly less than the search limit (258), meaning the
	// search found the true best match before hitting its cap.
	c.set(3, 258, 5, 9, nil)

	length, dist, ok := c.get(3, 300)
	if !ok || length != 5 || dist != 9 {
		t.Fatalf("get(3,300) = (%d,%d,%v), want (5,9,true)", length, dist, ok)
	}
}

func TestMatchCacheMissOnUnsetPosition(t *testing.T) {
	c := newMatchCache(10)
	if _, _, ok := c.get(4, 5); ok {
		t.Fatalf("get on an unset position should miss")
	}
}

func TestMatchCacheSubDistance(t *testing.T) {
	c := newMatchCache(10)
	sub := make([]uint16, 256)
	sub[5-minMatch] = 42
	c.set(0, 258, 8, 42, sub)

	d, ok := c.subDistance(0, 5)
	if !ok || d != 42 {
		t.Fatalf("subDistance(0,5) = (%d,%v), want (42,true)", d, ok)
	}
	if _, ok := c.subDistance(1, 5); ok {
		t.Fatalf("subDistance on a position with no recorded sublen should miss")
	}
}

func TestSplitCacheTriedMark(t *testing.T) {
	s := newSplitCache()
	if s.tried(7) {
		t.Fatalf("fresh split cache should not report 7 as tried")
	}
	s.mark(7)
	if !s.tried(7) {
		t.Fatalf("split cache should report 7 as tried after mark")
	}
}

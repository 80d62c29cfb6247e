package zopfli

// matchFinder walks a hashChain to find the longest match for the window at
// a given position, consulting and populating a matchCache so repeated
// squeeze iterations don't redo the same walk.
type matchFinder struct {
	data  []byte
	chain *hashChain
	cache *matchCache
}

func newMatchFinder(data []byte, chain *hashChain, cache *matchCache) *matchFinder {
	return &matchFinder{data: data, chain: chain, cache: cache}
}

// find returns the longest match at pos no longer than limit bytes and no
// further back than windowSize, along with the distance to it. length==0
// means no match of at least minMatch bytes was found.
func (m *matchFinder) find(pos, limit int) (length, dist int) {
	if limit > len(m.data)-pos {
		limit = len(m.data) - pos
	}
	if limit < minMatch {
		return 0, 0
	}

	if cl, cd, ok := m.cache.get(pos, limit); ok && cl > 0 {
		if cl <= limit {
			return cl, cd
		}
		// Cached match is longer than what's allowed now; reuse the
		// sub-length table to find the distance for exactly `limit`.
		if d, ok := m.cache.subDistance(pos, limit); ok {
			return limit, d
		}
	}

	data := m.data
	windowStart := pos - windowSize
	if windowStart < 0 {
		windowStart = 0
	}

	bestLength := 0
	bestDist := 0
	sublen := make([]uint16, limit-minMatch+1)

	tryCandidate := func(cand int) bool {
		if cand < windowStart || cand >= pos {
			return false
		}
		l := matchLength(data, cand, pos, limit)
		if l < minMatch {
			return true
		}
		if l > bestLength {
			bestLength = l
			bestDist = pos - cand
		}
		for j := minMatch; j <= l; j++ {
			if sublen[j-minMatch] == 0 {
				sublen[j-minMatch] = uint16(pos - cand)
			}
		}
		return l < limit
	}

	hits := 0
	same := int(m.chain.same[pos])
	if same >= minMatch {
		// Fast path for runs of a repeated byte: jump straight to the
		// longest same-hash candidate instead of walking every single
		// earlier occurrence one at a time.
		cand := int(m.chain.prevSame[pos])
		for cand != -1 && hits < maxChainHits {
			if !tryCandidate(cand) {
				break
			}
			cand = int(m.chain.prevSame[cand])
			hits++
		}
	}

	cand := int(m.chain.prev[pos])
	for cand != -1 && hits < maxChainHits {
		if !tryCandidate(cand) {
			break
		}
		cand = int(m.chain.prev[cand])
		hits++
	}

	if bestLength >= minMatch {
		m.cache.set(pos, limit, bestLength, bestDist, sublen)
	} else {
		m.cache.set(pos, limit, 0, 0, nil)
	}
	return bestLength, bestDist
}

// matchLength returns how many bytes starting at cand equal the bytes
// starting at pos, capped at limit.
func matchLength(data []byte, cand, pos, limit int) int {
	max := limit
	if len(data)-pos < max {
		max = len(data) - pos
	}
	n := 0
	for n < max && data[cand+n] == data[pos+n] {
		n++
	}
	return n
}

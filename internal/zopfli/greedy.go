package zopfli

// greedyParse runs a single lazy-matching LZ77 pass over data[start:end] and
// appends the result to store. It is used both as the cheap baseline the
// optimal parser is compared against and as the encoding squeeze returns
// when none of its optimal-parse iterations beats the greedy parse's cost.
//
// "Lazy" matching means: before committing to a match at position i, peek
// at position i+1 to see if it yields a strictly longer match; if so, emit
// a literal at i and take the longer match at i+1 instead.
func greedyParse(data []byte, start, end int, chain *hashChain, cache *matchCache, store *lz77Store) {
	mf := newMatchFinder(data, chain, cache)

	i := start
	for i < end {
		limit := end - i
		if limit > maxMatch {
			limit = maxMatch
		}
		length, dist := mf.find(i, limit)

		if length >= minMatch {
			if i+1 < end {
				limit2 := end - i - 1
				if limit2 > maxMatch {
					limit2 = maxMatch
				}
				length2, dist2 := mf.find(i+1, limit2)
				if getLengthScore(length2, dist2) > getLengthScore(length, dist) {
					store.addLiteral(i, data[i])
					i++
					continue
				}
			}
			store.addLengthDist(i, length, dist)
			i += length
			continue
		}

		store.addLiteral(i, data[i])
		i++
	}
}

// getLengthScore ranks two candidate matches the way zopfli's lazy matcher
// does: longer is better, but a match more than 1024 bytes back is
// penalized by one, since its distance symbol costs enough extra bits that
// a shorter, closer match is sometimes the better deal.
func getLengthScore(length, dist int) int {
	if dist > 1024 {
		return length - 1
	}
	return length
}

package zopfli

import "math"

// squeezeArrival is the per-position bookkeeping for the shortest-path
// optimal parse, directly in the spirit of matchfinder.Pathfinder's
// "arrival" struct: it records the cheapest known way to reach a given
// offset, as a length (0 for "arrived via a literal") and a distance.
type squeezeArrival struct {
	length uint16
	dist   uint16
	cost   float64
}

// optimalParse runs one shortest-path LZ77 pass over data[start:end] using
// stats as the per-symbol bit-cost model, and appends the resulting parse
// to store. It is the statistics-driven replacement for Pathfinder's fixed
// byte-histogram cost model: instead of costing literals and matches from a
// one-off byte frequency table, costs come from the *symbol* frequencies of
// the previous iteration's parse, which is what lets repeated iterations
// converge toward a genuinely better tree instead of just a locally greedy
// one.
func optimalParse(data []byte, start, end int, chain *hashChain, cache *matchCache, stats *symbolStats, store *lz77Store) {
	n := end - start
	if n == 0 {
		return
	}
	mf := newMatchFinder(data, chain, cache)

	arrivals := make([]squeezeArrival, n+1)
	for i := 1; i <= n; i++ {
		arrivals[i].cost = -1
	}

	for i := 0; i < n; i++ {
		cur := arrivals[i]
		if i > 0 && cur.cost < 0 {
			// Unreachable (shouldn't happen; every position is reachable
			// via at least a run of literals), but guard against it rather
			// than silently corrupting the trace.
			continue
		}

		// Literal step.
		litCost := cur.cost + stats.costLiteral(data[start+i])
		if next := &arrivals[i+1]; next.cost < 0 || litCost < next.cost {
			next.cost = litCost
			next.length = 0
			next.dist = 0
		}

		limit := n - i
		if limit > maxMatch {
			limit = maxMatch
		}
		if limit < minMatch {
			continue
		}
		length, dist := mf.find(start+i, limit)
		if length < minMatch {
			continue
		}

		// Try every length from minMatch up to the longest found, since a
		// shorter match at a closer (cheaper) distance can sometimes beat
		// the longest one once downstream costs are accounted for.
		for l := minMatch; l <= length; l++ {
			d := dist
			if l != length {
				if sd, ok := cache.subDistance(start+i, l); ok {
					d = sd
				}
			}
			cost := cur.cost + stats.costLengthDist(l, d)
			if next := &arrivals[i+l]; next.cost < 0 || cost < next.cost {
				next.cost = cost
				next.length = uint16(l)
				next.dist = uint16(d)
			}
		}
	}

	// Trace the path backward, then emit it forward into the store.
	type step struct {
		length int
		dist   int
	}
	var steps []step
	for i := n; i > 0; {
		a := arrivals[i]
		if a.length == 0 {
			steps = append(steps, step{length: 0})
			i--
		} else {
			steps = append(steps, step{length: int(a.length), dist: int(a.dist)})
			i -= int(a.length)
		}
	}

	pos := start
	for k := len(steps) - 1; k >= 0; k-- {
		s := steps[k]
		if s.length == 0 {
			store.addLiteral(pos, data[pos])
			pos++
		} else {
			store.addLengthDist(pos, s.length, s.dist)
			pos += s.length
		}
	}
}

// squeeze iterates optimalParse, refreshing the cost model from each pass's
// own output, until numIterations passes have run. It returns the best
// store found, judged by actual dynamic-block bit cost (tree header
// included), not just the raw per-symbol cost the parse itself optimizes
// against.
//
// The iteration/randomization policy mirrors zopfli's lz77_optimal: stats
// are reloaded from the just-produced candidate on every pass, regardless
// of whether that candidate improved on the best seen so far. Once an
// iteration's cost repeats the previous iteration's cost (after the first
// few passes have had a chance to settle), the working stats are reset to
// the best snapshot and randomized to escape the plateau; from then on,
// each reload blends in half of the previous iteration's raw counts
// instead of discarding them outright.
func squeeze(data []byte, start, end int, chain *hashChain, cache *matchCache, numIterations int) *lz77Store {
	scratch := newLZ77Store()
	greedyParse(data, start, end, chain, cache, scratch)

	stats := &symbolStats{}
	stats.loadStore(scratch, start, end)
	stats.crunch()

	best := newLZ77Store()
	bestStats := &symbolStats{}
	bestCost := blockCost(scratch, start, end)
	*best = *scratch
	*bestStats = *stats

	rng := newRandState()
	lastCost := 0.0
	lastRan := -1

	for iter := 0; iter < numIterations; iter++ {
		candidate := newLZ77Store()
		optimalParse(data, start, end, chain, cache, stats, candidate)

		cost := blockCost(candidate, start, end)

		if cost < bestCost {
			*best = *candidate
			*bestStats = *stats
			bestCost = cost
		}

		lastLL, lastD := stats.llCount, stats.dCount
		stats.loadStore(candidate, start, end)

		if lastRan != -1 {
			stats.addLast(lastLL, lastD)
		}
		stats.crunch()

		if iter > 5 && cost == lastCost {
			*stats = *bestStats
			stats.randomize(rng)
			stats.crunch()
			lastRan = iter
		}

		lastCost = cost
	}

	return best
}

// fixedTreeStats builds a cost table from the exact bit lengths of the
// DEFLATE fixed Huffman tree (RFC 1951 §3.2.6) rather than an entropy
// estimate over observed symbol counts, so optimalParse can run a single
// pass costed against the static tree instead of an iteratively-refined
// dynamic one. Extra bits for length/distance symbols are handled the same
// way costLengthDist always handles them, so no separate accounting is
// needed here.
func fixedTreeStats() *symbolStats {
	s := &symbolStats{}
	for i := 0; i < 256; i++ {
		s.litCost[i] = float64(staticLLLengths[i])
	}
	for i := 257; i < numLitLen; i++ {
		s.lenCost[i] = float64(staticLLLengths[i])
	}
	for i := 0; i < numDist; i++ {
		s.distCost[i] = float64(staticDLengths[i])
	}
	return s
}

// squeezeFixed runs a single optimal-parse pass costed under the DEFLATE
// fixed Huffman tree, with no iteration: the fixed-tree analogue of
// squeeze, grounded on zopfli's LZ77OptimalFixed/try_lz77_expensive_fixed.
// It exists because, for small blocks, skipping the dynamic tree header
// entirely can beat even the best dynamic encoding, but only if the parse
// itself is optimized against the fixed tree's actual bit costs rather
// than reusing whatever parse squeeze happened to produce for the dynamic
// case.
func squeezeFixed(data []byte, start, end int, chain *hashChain, cache *matchCache) *lz77Store {
	store := newLZ77Store()
	optimalParse(data, start, end, chain, cache, fixedTreeStats(), store)
	return store
}

// blockCost returns the actual encoded bit cost (tree header plus data) of
// store's [start,end) range under the optimal dynamic Huffman encoding.
// This is what squeeze's "does this iteration improve?" and "has this
// iteration converged?" checks compare against, not the pure per-symbol
// stats cost optimalParse itself searches under.
func blockCost(store *lz77Store, start, end int) float64 {
	dyn, err := dynamicBlockSize(store, start, end)
	if err != nil {
		// numLitLen and numDist are fixed well below the 1<<15 symbol
		// ceiling lengthLimitedCodeLengths enforces, so this never fires
		// in practice; treat it as unusably expensive rather than panic.
		return math.MaxFloat64
	}
	return float64(dyn.cost)
}

// estimateCost returns the modeled bit cost (not counting the Huffman tree
// header) of encoding store's [start,end) range under stats.
func estimateCost(stats *symbolStats, store *lz77Store, start, end int) float64 {
	lo, hi := store.findRange(start, end)
	var total float64
	for i := lo; i < hi; i++ {
		if store.isLiteral(i) {
			total += stats.costLiteral(byte(store.litLen[i]))
		} else {
			total += stats.costLengthDist(int(store.litLen[i]), int(store.dist[i]))
		}
	}
	return total
}

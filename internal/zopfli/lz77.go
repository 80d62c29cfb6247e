package zopfli

// lz77Store is an append-only sequence of literal and length/distance
// entries describing one parse of a block of input. Both the greedy and
// optimal parsers build one of these; the block splitter and Huffman
// length calculators then read ranges out of it without needing to touch
// the original byte slice again.
type lz77Store struct {
	pos    []int32 // byte offset (into the original data) this entry starts at
	litLen []uint16 // literal byte value (0..255), or the unbiased match length (3..258)
	dist   []uint16 // 0 for a literal, match distance otherwise

	// llSymbol/dSymbol cache the DEFLATE symbol each entry maps to, so
	// histogram() doesn't need to recompute lengthSymbol/distSymbol for
	// ranges that get revisited by the block splitter many times over.
	llSymbol []uint16
	dSymbol  []uint16
}

func newLZ77Store() *lz77Store {
	return &lz77Store{}
}

func (s *lz77Store) size() int { return len(s.pos) }

// addLiteral appends a literal byte at the given source position.
func (s *lz77Store) addLiteral(pos int, b byte) {
	s.pos = append(s.pos, int32(pos))
	s.litLen = append(s.litLen, uint16(b))
	s.dist = append(s.dist, 0)
	s.llSymbol = append(s.llSymbol, uint16(b))
	s.dSymbol = append(s.dSymbol, 0)
}

// addLengthDist appends a length/distance match at the given source
// position.
func (s *lz77Store) addLengthDist(pos, length, dist int) {
	lsym, _, _ := lengthSymbol(length)
	dsym, _, _ := distSymbol(dist)
	s.pos = append(s.pos, int32(pos))
	s.litLen = append(s.litLen, uint16(length))
	s.dist = append(s.dist, uint16(dist))
	s.llSymbol = append(s.llSymbol, lsym)
	s.dSymbol = append(s.dSymbol, uint8ToSymbol(dsym))
}

func uint8ToSymbol(d uint8) uint16 { return uint16(d) }

// isLiteral reports whether entry i is a literal byte rather than a match.
func (s *lz77Store) isLiteral(i int) bool { return s.dist[i] == 0 }

// findRange returns the index range [lo, hi) of entries whose source
// position falls in [start, end).
func (s *lz77Store) findRange(start, end int) (lo, hi int) {
	lo = 0
	for lo < len(s.pos) && int(s.pos[lo]) < start {
		lo++
	}
	hi = lo
	for hi < len(s.pos) && int(s.pos[hi]) < end {
		hi++
	}
	return lo, hi
}

// histogram returns the literal/length and distance symbol counts for
// entries in the source-position range [start, end).
func (s *lz77Store) histogram(start, end int) (ll [numLitLen]uint32, d [numDist]uint32) {
	lo, hi := s.findRange(start, end)
	for i := lo; i < hi; i++ {
		ll[s.llSymbol[i]]++
		if !s.isLiteral(i) {
			d[s.dSymbol[i]]++
		}
	}
	ll[256] = 1
	return ll, d
}

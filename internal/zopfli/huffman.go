package zopfli

import "container/heap"

// lengthLimitedCodeLengths computes DEFLATE code lengths for the given
// symbol frequencies such that no length exceeds maxBits. It builds an
// ordinary (unbounded-depth) Huffman tree and then applies the classic
// Kraft-inequality "overflow" correction — shifting surplus weight from
// over-long codes into the deepest available slot below the limit — to
// bring every length under the ceiling while keeping the result a valid
// prefix code.
//
// This is a deliberate simplification of the boundary package-merge
// algorithm (Katajainen's algorithm) the original implementation uses:
// package-merge finds the *provably optimal* length-limited code, while the
// overflow correction below can occasionally be a bit short of optimal.
// Both produce a valid canonical Huffman code obeying maxBits, which is all
// the DEFLATE format itself requires; see DESIGN.md for why this port
// favors the simpler, easier-to-verify-by-inspection construction.
func lengthLimitedCodeLengths(counts []uint32, maxBits int) ([]uint8, error) {
	n := len(counts)
	lengths := make([]uint8, n)

	var symbols []int
	for i, c := range counts {
		if c > 0 {
			symbols = append(symbols, i)
		}
	}

	switch len(symbols) {
	case 0:
		return lengths, nil
	case 1:
		lengths[symbols[0]] = 1
		return lengths, nil
	case 2:
		lengths[symbols[0]] = 1
		lengths[symbols[1]] = 1
		return lengths, nil
	}
	if len(symbols) > 1<<uint(maxBits) {
		return nil, ErrTreeTooWide
	}

	depths := huffmanDepths(counts, symbols)

	maxDepth := 0
	for _, d := range depths {
		if d > maxDepth {
			maxDepth = d
		}
	}
	if maxDepth > maxBits {
		depths = limitDepths(symbols, counts, depths, maxBits)
	}

	for i, sym := range symbols {
		lengths[sym] = uint8(depths[i])
	}
	return lengths, nil
}

// huffmanTreeNode is one node of the working Huffman tree: a leaf (symbol
// index into the `symbols` slice, weight) or an internal node (children,
// combined weight).
type huffmanTreeNode struct {
	weight      uint64
	left, right int // indices into the node arena, -1 for leaves
}

// huffmanPQ is a min-heap over node-arena indices ordered by weight,
// satisfying container/heap.Interface.
type huffmanPQ struct {
	idx    []int
	weight []uint64
}

func (h huffmanPQ) Len() int            { return len(h.idx) }
func (h huffmanPQ) Less(i, j int) bool  { return h.weight[h.idx[i]] < h.weight[h.idx[j]] }
func (h huffmanPQ) Swap(i, j int)       { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }
func (h *huffmanPQ) Push(x interface{}) { h.idx = append(h.idx, x.(int)) }
func (h *huffmanPQ) Pop() interface{} {
	old := h.idx
	n := len(old)
	v := old[n-1]
	h.idx = old[:n-1]
	return v
}

// huffmanDepths returns, for each entry in symbols (in the same order), the
// depth of that symbol's leaf in an unbounded-depth optimal Huffman tree
// built from counts.
func huffmanDepths(counts []uint32, symbols []int) []int {
	var arena []huffmanTreeNode
	symIndex := make(map[int]int, len(symbols)) // symbols[i] -> arena index
	for _, sym := range symbols {
		arena = append(arena, huffmanTreeNode{weight: uint64(counts[sym]), left: -1, right: -1})
		symIndex[sym] = len(arena) - 1
	}

	pq := &huffmanPQ{weight: make([]uint64, 0, 2*len(arena))}
	for _, n := range arena {
		pq.weight = append(pq.weight, n.weight)
	}
	for i := range arena {
		heap.Push(pq, i)
	}

	for pq.Len() > 1 {
		a := heap.Pop(pq).(int)
		b := heap.Pop(pq).(int)
		arena = append(arena, huffmanTreeNode{
			weight: pq.weight[a] + pq.weight[b],
			left:   a,
			right:  b,
		})
		newIdx := len(arena) - 1
		pq.weight = append(pq.weight, arena[newIdx].weight)
		heap.Push(pq, newIdx)
	}

	root := heap.Pop(pq).(int)

	depths := make([]int, len(arena))
	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		node := arena[idx]
		if node.left == -1 && node.right == -1 {
			depths[idx] = depth
			return
		}
		walk(node.left, depth+1)
		walk(node.right, depth+1)
	}
	if len(arena) == 1 {
		depths[0] = 1
	} else {
		walk(root, 0)
	}

	out := make([]int, len(symbols))
	for i, sym := range symbols {
		out[i] = depths[symIndex[sym]]
	}
	return out
}

// limitDepths applies the classic Kraft-inequality overflow fix to bring
// every depth within maxBits: any depth over the limit is clamped, and the
// resulting Kraft-sum surplus is repaid by borrowing a level from the
// deepest code currently below the limit, repeated until the code is
// valid again. Symbols are then reassigned to depths in ascending-frequency
// order so the most frequent symbols keep the shortest codes.
func limitDepths(symbols []int, counts []uint32, depths []int, maxBits int) []int {
	bitCount := make([]int, maxBits+2)
	for _, d := range depths {
		if d > maxBits {
			d = maxBits
		}
		bitCount[d]++
	}

	// Kraft-sum excess over 1, in units of 2^-maxBits.
	overflow := -(1 << uint(maxBits))
	for bits := 1; bits <= maxBits; bits++ {
		overflow += bitCount[bits] << uint(maxBits-bits)
	}

	for overflow > 0 {
		bits := maxBits - 1
		for bits > 0 && bitCount[bits] == 0 {
			bits--
		}
		bitCount[bits]--
		bitCount[bits+1] += 2
		bitCount[maxBits]--
		overflow--
	}

	order := make([]int, len(symbols))
	for i := range order {
		order[i] = i
	}
	// Ascending by frequency so the lowest-frequency symbols are handed out
	// the longest remaining codes first.
	insertionSortByWeight(order, func(i int) uint32 { return counts[symbols[i]] })

	out := make([]int, len(symbols))
	pos := 0
	for bits := maxBits; bits >= 1; bits-- {
		for c := bitCount[bits]; c > 0; c-- {
			out[order[pos]] = bits
			pos++
		}
	}
	return out
}

func insertionSortByWeight(order []int, weight func(int) uint32) {
	for i := 1; i < len(order); i++ {
		v := order[i]
		w := weight(v)
		j := i - 1
		for j >= 0 && weight(order[j]) > w {
			order[j+1] = order[j]
			j--
		}
		order[j+1] = v
	}
}

// symbolsFromLengths assigns canonical Huffman codes given code lengths,
// per RFC 1951 §3.2.2.
func symbolsFromLengths(lengths []uint8, maxBits int) []uint16 {
	blCount := make([]int, maxBits+1)
	for _, l := range lengths {
		if l > 0 {
			blCount[l]++
		}
	}
	code := 0
	nextCode := make([]int, maxBits+1)
	blCount[0] = 0
	for bits := 1; bits <= maxBits; bits++ {
		code = (code + blCount[bits-1]) << 1
		nextCode[bits] = code
	}
	symbols := make([]uint16, len(lengths))
	for n, l := range lengths {
		if l > 0 {
			symbols[n] = uint16(nextCode[l])
			nextCode[l]++
		}
	}
	return symbols
}

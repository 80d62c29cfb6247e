package zopfli

// Options tunes the DEFLATE encoder. The zero value is usable and applies
// the same defaults zopfli itself ships with; callers normally only need to
// set NumIterations for faster, lower-effort encodes (e.g. during
// interactive previews) than the default used for a final on-disk pass.
type Options struct {
	// NumIterations is how many optimal-parse passes squeeze runs per
	// block. Zero selects the size-based default: 20 for inputs at or
	// above IterationThresholdBytes, 60 below it — extra iterations pay
	// off least on large inputs, where a single pass already takes long
	// enough that the marginal iteration isn't worth its wall-clock cost.
	NumIterations int

	// IterationThresholdBytes is the input size, in bytes, at or above
	// which NumIterations' smaller default (20) applies. Zero selects
	// 200,000, matching upstream zopfli.
	IterationThresholdBytes int

	// BlockSplitting disables the greedy multi-block splitter when set to
	// a non-nil false; nil (the zero value) means "enabled", matching
	// zopfli's own default.
	BlockSplitting *bool
}

func (o Options) iterations(size int) int {
	if o.NumIterations > 0 {
		return o.NumIterations
	}
	threshold := o.IterationThresholdBytes
	if threshold == 0 {
		threshold = 200000
	}
	if size < threshold {
		return 60
	}
	return 20
}

func (o Options) blockSplitting() bool {
	return o.BlockSplitting == nil || *o.BlockSplitting
}

// Deflate compresses data into a raw DEFLATE stream (RFC 1951, no zlib or
// gzip wrapper) using the iterated, statistics-driven encoder this package
// implements. It is the capability-interface entrypoint callers such as the
// PNG encoder plug in wherever they'd otherwise hand a byte buffer to
// compress/flate: the caller doesn't need to know iteration happened at
// all, only that it gets back a valid, maximally-compact DEFLATE stream for
// the bytes it handed over.
func Deflate(data []byte, opts Options) ([]byte, error) {
	if len(data) == 0 {
		w := newBitWriter()
		w.writeBits(1, 1) // final block
		w.writeBits(0, 2) // stored
		w.align()
		w.writeBits(0, 16)
		w.writeBits(0xffff, 16)
		return w.bytes(), nil
	}

	chain := newHashChain(len(data))
	chain.build(data)
	cache := newMatchCache(len(data))

	w := newBitWriter()

	for chunkStart := 0; chunkStart < len(data); chunkStart += masterBlockSize {
		chunkEnd := chunkStart + masterBlockSize
		if chunkEnd > len(data) {
			chunkEnd = len(data)
		}
		isLastChunk := chunkEnd == len(data)

		store := squeeze(data, chunkStart, chunkEnd, chain, cache, opts.iterations(len(data)))

		var splits []int
		if opts.blockSplitting() {
			splits = splitBlocks(store, chunkStart, chunkEnd, newSplitCache())
		}

		bounds := append([]int{chunkStart}, splits...)
		bounds = append(bounds, chunkEnd)

		for i := 0; i < len(bounds)-1; i++ {
			isLastBlock := isLastChunk && i == len(bounds)-2
			if err := writeBlock(w, data, store, chain, cache, bounds[i], bounds[i+1], isLastBlock); err != nil {
				return nil, err
			}
		}
	}

	w.align()
	return w.bytes(), nil
}

// writeBlock chooses the cheapest of the three DEFLATE block encodings for
// [start,end) and writes it. Before falling back to the dynamic parse's own
// fixed-tree cost estimate, it may run a dedicated fixed-tree-costed parse
// (squeezeFixed) and use that instead if it beats both the dynamic and
// stored costs — see the gating comment below.
func writeBlock(w *bitWriter, data []byte, store *lz77Store, chain *hashChain, cache *matchCache, start, end int, final bool) error {
	storedCost := storedBlockSize(start, end)
	fixedCost := fixedBlockSize(store, start, end)
	dyn, err := dynamicBlockSize(store, start, end)
	if err != nil {
		return err
	}

	var finalBit uint32
	if final {
		finalBit = 1
	}

	// squeeze's parse is optimized against the dynamic cost model, so
	// reusing it to estimate a fixed-tree encoding (fixedCost above)
	// understates what the fixed tree could actually do with a parse of
	// its own. Only pay for that dedicated parse when it stands a real
	// chance of winning: small blocks, or blocks where the fixed-tree
	// estimate is already within ~10% of the dynamic cost. Mirrors
	// zopfli's try_lz77_expensive_fixed gating.
	if lo, hi := store.findRange(start, end); hi-lo < 1000 || fixedCost*10 <= dyn.cost*11 {
		fixedStore := squeezeFixed(data, start, end, chain, cache)
		expensiveFixedCost := fixedBlockSize(fixedStore, start, end)
		if expensiveFixedCost < dyn.cost && (expensiveFixedCost <= storedCost || dyn.cost <= storedCost) {
			w.writeBits(finalBit, 1)
			w.writeBits(1, 2)
			writeLZ77Data(w, fixedStore, start, end, staticLLLengths[:], staticDLengths[:],
				symbolsFromLengths(staticLLLengths[:], 15), symbolsFromLengths(staticDLengths[:], 15))
			return nil
		}
	}

	bt := blockDynamic
	best := dyn.cost
	if fixedCost < best {
		bt = blockFixed
		best = fixedCost
	}
	if storedCost < best {
		bt = blockStored
	}

	switch bt {
	case blockStored:
		writeStoredBlock(w, data, start, end, finalBit)
	case blockFixed:
		w.writeBits(finalBit, 1)
		w.writeBits(1, 2)
		writeLZ77Data(w, store, start, end, staticLLLengths[:], staticDLengths[:],
			symbolsFromLengths(staticLLLengths[:], 15), symbolsFromLengths(staticDLengths[:], 15))
	case blockDynamic:
		w.writeBits(finalBit, 1)
		w.writeBits(2, 2)
		encodeTree(w, dyn.llLength, dyn.dLength, dyn.extra)
		llSymbols := symbolsFromLengths(dyn.llLength, 15)
		dSymbols := symbolsFromLengths(dyn.dLength, 15)
		writeLZ77Data(w, store, start, end, dyn.llLength, dyn.dLength, llSymbols, dSymbols)
	}
	return nil
}

// writeStoredBlock writes [start,end) as one or more raw (uncompressed)
// blocks, each capped at 65535 bytes per RFC 1951's 16-bit LEN field.
func writeStoredBlock(w *bitWriter, data []byte, start, end int, finalBit uint32) {
	for start < end {
		n := end - start
		if n > 65535 {
			n = 65535
		}
		isFinalSubBlock := finalBit != 0 && start+n == end
		fb := uint32(0)
		if isFinalSubBlock {
			fb = finalBit
		}
		w.writeBits(fb, 1)
		w.writeBits(0, 2)
		w.align()
		w.writeBits(uint32(n), 16)
		w.writeBits(uint32(^uint16(n)), 16)
		for _, b := range data[start : start+n] {
			w.writeBits(uint32(b), 8)
		}
		start += n
	}
}

// writeLZ77Data emits the literal/length/distance symbol stream for
// [start,end) under the given code lengths and canonical codes.
func writeLZ77Data(w *bitWriter, store *lz77Store, start, end int, llLengths, dLengths []uint8, llSymbols, dSymbols []uint16) {
	lo, hi := store.findRange(start, end)
	for i := lo; i < hi; i++ {
		if store.isLiteral(i) {
			b := store.litLen[i]
			w.writeHuffman(llSymbols[b], llLengths[b])
			continue
		}
		length := int(store.litLen[i])
		dist := int(store.dist[i])
		lsym, lextra, lvalue := lengthSymbol(length)
		dsym, dextra, dvalue := distSymbol(dist)

		w.writeHuffman(llSymbols[lsym], llLengths[lsym])
		if lextra > 0 {
			w.writeBits(lvalue, uint(lextra))
		}
		w.writeHuffman(dSymbols[dsym], dLengths[dsym])
		if dextra > 0 {
			w.writeBits(dvalue, uint(dextra))
		}
	}
	// End-of-block symbol.
	w.writeHuffman(llSymbols[256], llLengths[256])
}

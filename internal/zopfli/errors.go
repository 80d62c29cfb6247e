package zopfli

import "errors"

// ErrTreeTooWide is returned when a length-limited Huffman pass cannot fit
// the input's symbol alphabet into the requested bit-length ceiling. In
// practice this should never trigger for the DEFLATE alphabets (288 and 32
// entries comfortably fit within 15 bits), but lengthLimitedCodeLengths
// reports it rather than producing a tree that would decode incorrectly.
var ErrTreeTooWide = errors.New("zopfli: alphabet too large for length-limited code")

// ErrCacheCorrupt names an internally inconsistent match cache record. No
// code in this package returns it: matchCache.get treats any entry it
// cannot reuse as a miss, and the caller searches again.
var ErrCacheCorrupt = errors.New("zopfli: match cache entry is corrupt")

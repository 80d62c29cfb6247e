// Package png recompresses PNG images by re-running their IDAT stream
// through a zopfli-backed DEFLATE encoder instead of the encoder that
// originally produced the file. The decoded pixel data is always
// bit-for-bit unchanged; ancillary metadata chunks are preserved on
// Candidate B (the raw passthrough) but stripped down to just the chunks
// that affect how the pixels are interpreted on Candidate A, per spec.md
// §4.11's "strip all ancillary chunks except transparency/gamma".
package png

import (
	"encoding/binary"
	"hash/crc32"
)

var pngSignature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// chunk is one length-prefixed, CRC-checked PNG chunk (ISO/IEC 15948 §5.3).
type chunk struct {
	typ  [4]byte
	data []byte
}

func (c chunk) critical() bool { return c.typ[0]&0x20 == 0 }

// writeChunk appends a complete chunk (length, type, data, CRC32) to dst.
func writeChunk(dst []byte, typ [4]byte, data []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	dst = append(dst, lenBuf[:]...)

	start := len(dst)
	dst = append(dst, typ[:]...)
	dst = append(dst, data...)

	crc := crc32.NewIEEE()
	crc.Write(dst[start:])
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc.Sum32())
	dst = append(dst, crcBuf[:]...)
	return dst
}

// parseChunks splits a PNG file into its signature-verified chunk sequence.
// It does not validate per-chunk CRCs on read — that's the decoder's job —
// only the framing (length/type/data boundaries) needed to splice a new
// IDAT stream into an otherwise-untouched chunk list.
func parseChunks(data []byte) ([]chunk, error) {
	if len(data) < 8 || [8]byte(data[:8]) != pngSignature {
		return nil, errNotPNG
	}
	var chunks []chunk
	pos := 8
	for pos+8 <= len(data) {
		length := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4
		if pos+4 > len(data) {
			return nil, errTruncated
		}
		var typ [4]byte
		copy(typ[:], data[pos:pos+4])
		pos += 4
		if uint32(len(data)-pos) < length+4 {
			return nil, errTruncated
		}
		chunks = append(chunks, chunk{typ: typ, data: data[pos : pos+int(length)]})
		pos += int(length) + 4 // skip data and CRC
		if typ == ([4]byte{'I', 'E', 'N', 'D'}) {
			break
		}
	}
	return chunks, nil
}

func encodeChunks(chunks []chunk) []byte {
	out := append([]byte(nil), pngSignature[:]...)
	for _, c := range chunks {
		out = writeChunk(out, c.typ, c.data)
	}
	return out
}

// mergeIDAT concatenates every IDAT chunk's payload into one zlib stream,
// the way a PNG decoder is required to treat them (RFC allows a compressed
// datastream to be split across any number of IDAT chunks).
func mergeIDAT(chunks []chunk) []byte {
	var out []byte
	for _, c := range chunks {
		if c.typ == ([4]byte{'I', 'D', 'A', 'T'}) {
			out = append(out, c.data...)
		}
	}
	return out
}

// tRNSType and gAMAType are the only ancillary chunk types stripAncillary
// keeps: they change how a decoder must interpret the pixel data itself
// (transparency and display gamma), unlike purely descriptive ancillary
// chunks (tEXt, tIME, hIST, and so on), which are safe to drop for size.
var (
	tRNSType = [4]byte{'t', 'R', 'N', 'S'}
	gAMAType = [4]byte{'g', 'A', 'M', 'A'}
)

// stripAncillary returns chunks with every ancillary (non-critical) chunk
// removed except tRNS and gAMA. It implements Candidate A's "strip all
// ancillary chunks except transparency/gamma as required for correctness"
// requirement (spec.md §4.11); Candidate B instead passes chunks through
// untouched, which is the safer default this spec's Non-goals fall back to
// (ancillary preservation is not guaranteed either way).
func stripAncillary(chunks []chunk) []chunk {
	out := make([]chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.critical() || c.typ == tRNSType || c.typ == gAMAType {
			out = append(out, c)
		}
	}
	return out
}

// replaceIDAT returns chunks with every existing IDAT chunk removed and a
// single new one (containing newZlib) inserted in the position of the
// first old one.
func replaceIDAT(chunks []chunk, newZlib []byte) []chunk {
	out := make([]chunk, 0, len(chunks))
	inserted := false
	idat := [4]byte{'I', 'D', 'A', 'T'}
	for _, c := range chunks {
		if c.typ == idat {
			if !inserted {
				out = append(out, chunk{typ: idat, data: newZlib})
				inserted = true
			}
			continue
		}
		out = append(out, c)
	}
	if !inserted {
		out = append(out, chunk{typ: idat, data: newZlib})
	}
	return out
}

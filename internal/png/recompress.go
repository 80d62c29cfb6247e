package png

import (
	"fmt"

	"github.com/flaca-project/flaca/internal/zopfli"
)

// Options controls a single recompression pass.
type Options struct {
	// Zopfli tunes the DEFLATE encoder used to rebuild IDAT.
	Zopfli zopfli.Options

	// MaxResolution caps width*height; images over the cap are rejected
	// with ErrOversize rather than recompressed. Zero selects the spec's
	// default of 2^32-1.
	MaxResolution uint64

	// VerifyLossless decodes both the original and the recompressed image
	// and rejects the result (returning ErrVerifyFailed) if their decoded
	// pixels differ, rather than trusting the byte-level transform.
	VerifyLossless bool
}

// ErrVerifyFailed is returned when a recompressed candidate decodes to
// pixels that differ from the source.
var ErrVerifyFailed = fmt.Errorf("png: recompressed image failed lossless verification")

// Recompress rebuilds data's IDAT stream with the zopfli DEFLATE encoder and
// returns the new file, or (nil, nil) if no candidate beat the original.
//
// Two candidates are tried against the same decoded pixel bytes, matching
// the original zopflipng/oxipng dual-pass behavior the spec's §4.11
// describes: Candidate A keeps the source encoder's own per-scanline filter
// choices (cheapest to try, frequently already good) and strips ancillary
// chunks down to just tRNS/gAMA, the ones that affect how the pixels
// themselves are interpreted; Candidate B re-derives filter bytes via the
// minimum-sum-of-absolute-differences heuristic and leaves every chunk
// untouched, which sometimes lets zopfli pack the stream tighter at the
// cost of an extra decode/encode pass and a larger output file. Whichever
// of {A, B} is smaller is verified (if requested) and returned; if neither
// beats data's own length, Recompress returns (nil, nil) rather than an
// error, since "no improvement found" is not a failure.
func Recompress(data []byte, opts Options) ([]byte, error) {
	chunks, err := parseChunks(data)
	if err != nil {
		return nil, err
	}
	hdr, err := parseHeader(chunks)
	if err != nil {
		return nil, err
	}
	if exceedsResolution(hdr, opts.MaxResolution) {
		return nil, ErrOversize
	}

	oldZlib := mergeIDAT(chunks)
	raw, err := inflateIDAT(oldZlib)
	if err != nil {
		return nil, err
	}

	candidateA, errA := recompressOne(stripAncillary(chunks), hdr, raw, opts, false)
	var candidateB []byte
	var errB error
	haveB := false
	if hdr.interlace == 0 {
		// Adam7 interlacing splits each scanline's filtering across seven
		// sub-images with different strides; re-deriving that here isn't
		// worth the complexity this spec's batch re-compression needs, so
		// interlaced inputs only ever get Candidate A.
		candidateB, errB = recompressOne(chunks, hdr, raw, opts, true)
		haveB = errB == nil
	}
	haveA := errA == nil

	var best []byte
	switch {
	case haveA && (!haveB || len(candidateA) <= len(candidateB)):
		best = candidateA
	case haveB:
		best = candidateB
	default:
		return nil, errA
	}

	if len(best) == 0 || len(best) >= len(data) {
		return nil, nil
	}

	if opts.VerifyLossless {
		ok, err := verifyLossless(data, best)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrVerifyFailed
		}
	}

	return best, nil
}

// recompressOne runs one candidate pass: optionally re-filtering raw pixel
// bytes, then handing them to the zopfli-backed zlib stream builder and
// splicing the result back into data's untouched chunk list.
func recompressOne(chunks []chunk, hdr header, raw []byte, opts Options, refilterScanlines bool) ([]byte, error) {
	pixels := raw
	if refilterScanlines {
		bpp, err := bytesPerPixel(hdr)
		if err != nil {
			return nil, err
		}
		stride, err := scanlineBytes(hdr)
		if err != nil {
			return nil, err
		}
		unfiltered, err := unfilter(raw, stride, bpp)
		if err != nil {
			return nil, err
		}
		pixels = refilter(unfiltered, stride, bpp)
	}

	newZlib, err := deflateZlib(pixels, opts.Zopfli)
	if err != nil {
		return nil, err
	}
	return encodeChunks(replaceIDAT(chunks, newZlib)), nil
}

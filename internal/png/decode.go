package png

import (
	"bytes"
	"encoding/binary"
	"image"
	stdpng "image/png"
)

// header is the decoded IHDR chunk (ISO/IEC 15948 §11.2.2).
type header struct {
	width, height      uint32
	bitDepth, colorType uint8
	interlace          uint8
}

func parseHeader(chunks []chunk) (header, error) {
	for _, c := range chunks {
		if c.typ == ([4]byte{'I', 'H', 'D', 'R'}) {
			if len(c.data) < 13 {
				return header{}, errTruncated
			}
			return header{
				width:     binary.BigEndian.Uint32(c.data[0:4]),
				height:    binary.BigEndian.Uint32(c.data[4:8]),
				bitDepth:  c.data[8],
				colorType: c.data[9],
				interlace: c.data[12],
			}, nil
		}
	}
	return header{}, errNotPNG
}

// channelsFor returns the sample count per pixel for a PNG color type.
func channelsFor(colorType uint8) (int, error) {
	switch colorType {
	case 0:
		return 1, nil // grayscale
	case 2:
		return 3, nil // truecolor
	case 3:
		return 1, nil // indexed
	case 4:
		return 2, nil // grayscale + alpha
	case 6:
		return 4, nil // truecolor + alpha
	default:
		return 0, errUnsupported
	}
}

// bytesPerPixel returns the filter unit size in bytes used by the PNG
// filtering algorithms (§9.2), rounding sub-byte-depth pixels up to 1.
func bytesPerPixel(h header) (int, error) {
	channels, err := channelsFor(h.colorType)
	if err != nil {
		return 0, err
	}
	bits := channels * int(h.bitDepth)
	if bits < 8 {
		return 1, nil
	}
	return bits / 8, nil
}

// scanlineBytes returns the number of sample bytes in one unfiltered
// scanline (i.e. without the leading filter-type byte).
func scanlineBytes(h header) (int, error) {
	channels, err := channelsFor(h.colorType)
	if err != nil {
		return 0, err
	}
	bitsPerLine := channels * int(h.bitDepth) * int(h.width)
	return (bitsPerLine + 7) / 8, nil
}

// verifyLossless decodes both PNGs with the standard library and reports
// whether they produce pixel-identical images: every pixel's RGBA value
// must match. Indexed images therefore compare equal when their colors
// match, even if their palettes or palette indices differ.
func verifyLossless(original, recompressed []byte) (bool, error) {
	a, err := stdpng.Decode(bytes.NewReader(original))
	if err != nil {
		return false, err
	}
	b, err := stdpng.Decode(bytes.NewReader(recompressed))
	if err != nil {
		return false, err
	}
	return imagesEqual(a, b), nil
}

// exceedsResolution reports whether h's pixel count (width*height) is over
// maxResolution. A zero maxResolution selects the spec's own default cap of
// 2^32-1, i.e. effectively "no real-world PNG is rejected" short of a
// pathological IHDR.
func exceedsResolution(h header, maxResolution uint64) bool {
	if maxResolution == 0 {
		maxResolution = 1<<32 - 1
	}
	pixels := uint64(h.width) * uint64(h.height)
	return pixels > maxResolution
}

func imagesEqual(a, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	bounds := a.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				return false
			}
		}
	}
	return true
}

package png

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/adler32"
	"io"

	"github.com/flaca-project/flaca/internal/zopfli"
)

// inflateIDAT decodes a zlib-wrapped IDAT payload back into raw filtered
// scanline bytes. Decoding (rather than re-deriving scanlines from a
// separately decoded image.Image) keeps filter-byte choices exactly as the
// original encoder made them when the caller only wants to recompress, not
// re-filter.
func inflateIDAT(zlibData []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(zlibData))
	if err != nil {
		return nil, errBadZlib
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errBadZlib
	}
	return raw, nil
}

// deflateZlib wraps a zopfli-compressed DEFLATE stream in the two-byte
// zlib header and four-byte Adler-32 trailer PNG's IDAT chunk requires
// (RFC 1950), mirroring how lodepng's custom_deflate hook is wired: zopfli
// only ever produces the raw RFC 1951 bitstream, so whoever calls it owns
// the container around it.
func deflateZlib(raw []byte, opts zopfli.Options) ([]byte, error) {
	body, err := zopfli.Deflate(raw, opts)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+6)
	out = append(out, 0x78, 0xda) // CMF/FLG: 32K window, maximum compression level hint
	out = append(out, body...)

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], adler32.Checksum(raw))
	out = append(out, sum[:]...)
	return out, nil
}

package png

import (
	"bytes"
	"testing"
)

func TestWriteChunkParseChunksRoundTrip(t *testing.T) {
	var buf []byte
	buf = writeChunk(buf, [4]byte{'t', 'E', 'S', 't'}, []byte("hello"))

	full := append(append([]byte(nil), pngSignature[:]...), buf...)
	full = append(full, mustChunkBytes(t, [4]byte{'I', 'E', 'N', 'D'}, nil)...)

	chunks, err := parseChunks(full)
	if err != nil {
		t.Fatalf("parseChunks: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].typ != [4]byte{'t', 'E', 'S', 't'} || !bytes.Equal(chunks[0].data, []byte("hello")) {
		t.Fatalf("first chunk = %+v", chunks[0])
	}
	if chunks[1].typ != ([4]byte{'I', 'E', 'N', 'D'}) {
		t.Fatalf("second chunk should be IEND, got %v", chunks[1].typ)
	}
}

func mustChunkBytes(t *testing.T, typ [4]byte, data []byte) []byte {
	t.Helper()
	return writeChunk(nil, typ, data)
}

func TestParseChunksRejectsBadSignature(t *testing.T) {
	_, err := parseChunks([]byte("not a png at all"))
	if err != errNotPNG {
		t.Fatalf("err = %v, want errNotPNG", err)
	}
}

func TestParseChunksTruncated(t *testing.T) {
	full := append(append([]byte(nil), pngSignature[:]...), []byte{0, 0, 0, 10, 'I', 'D', 'A', 'T'}...)
	_, err := parseChunks(full)
	if err != errTruncated {
		t.Fatalf("err = %v, want errTruncated", err)
	}
}

func TestChunkCritical(t *testing.T) {
	c := chunk{typ: [4]byte{'I', 'D', 'A', 'T'}}
	if !c.critical() {
		t.Fatalf("IDAT should be critical")
	}
	c2 := chunk{typ: [4]byte{'t', 'E', 'X', 't'}}
	if c2.critical() {
		t.Fatalf("tEXt (lowercase first letter) should be ancillary, not critical")
	}
}

func TestMergeIDATConcatenatesInOrder(t *testing.T) {
	chunks := []chunk{
		{typ: [4]byte{'I', 'H', 'D', 'R'}, data: []byte("header")},
		{typ: [4]byte{'I', 'D', 'A', 'T'}, data: []byte("part1")},
		{typ: [4]byte{'I', 'D', 'A', 'T'}, data: []byte("part2")},
	}
	merged := mergeIDAT(chunks)
	if !bytes.Equal(merged, []byte("part1part2")) {
		t.Fatalf("mergeIDAT = %q, want %q", merged, "part1part2")
	}
}

func TestReplaceIDATSinglesInsertionPoint(t *testing.T) {
	chunks := []chunk{
		{typ: [4]byte{'I', 'H', 'D', 'R'}, data: []byte("h")},
		{typ: [4]byte{'I', 'D', 'A', 'T'}, data: []byte("old1")},
		{typ: [4]byte{'I', 'D', 'A', 'T'}, data: []byte("old2")},
		{typ: [4]byte{'I', 'E', 'N', 'D'}},
	}
	out := replaceIDAT(chunks, []byte("new"))
	if len(out) != 3 {
		t.Fatalf("got %d chunks, want 3 (IHDR, IDAT, IEND)", len(out))
	}
	if out[1].typ != ([4]byte{'I', 'D', 'A', 'T'}) || !bytes.Equal(out[1].data, []byte("new")) {
		t.Fatalf("replaced IDAT = %+v", out[1])
	}
}

func TestStripAncillaryKeepsCriticalAndTransparencyGamma(t *testing.T) {
	chunks := []chunk{
		{typ: [4]byte{'I', 'H', 'D', 'R'}, data: []byte("h")},
		{typ: [4]byte{'g', 'A', 'M', 'A'}, data: []byte("gamma")},
		{typ: [4]byte{'t', 'R', 'N', 'S'}, data: []byte("trns")},
		{typ: [4]byte{'t', 'E', 'X', 't'}, data: []byte("comment")},
		{typ: [4]byte{'t', 'I', 'M', 'E'}, data: []byte("time")},
		{typ: [4]byte{'P', 'L', 'T', 'E'}, data: []byte("palette")},
		{typ: [4]byte{'I', 'D', 'A', 'T'}, data: []byte("data")},
		{typ: [4]byte{'I', 'E', 'N', 'D'}},
	}

	out := stripAncillary(chunks)

	want := []string{"IHDR", "gAMA", "tRNS", "PLTE", "IDAT", "IEND"}
	if len(out) != len(want) {
		t.Fatalf("stripAncillary kept %d chunks, want %d: %+v", len(out), len(want), out)
	}
	for i, w := range want {
		if string(out[i].typ[:]) != w {
			t.Fatalf("chunk %d = %q, want %q", i, out[i].typ, w)
		}
	}
}

func TestStripAncillaryDropsUnknownAncillaryOnly(t *testing.T) {
	chunks := []chunk{
		{typ: [4]byte{'I', 'H', 'D', 'R'}},
		{typ: [4]byte{'h', 'I', 'S', 'T'}},
		{typ: [4]byte{'z', 'T', 'X', 't'}},
	}
	out := stripAncillary(chunks)
	if len(out) != 1 || out[0].typ != ([4]byte{'I', 'H', 'D', 'R'}) {
		t.Fatalf("stripAncillary should drop unknown ancillary chunks, got %+v", out)
	}
}

func TestReplaceIDATNoExistingIDAT(t *testing.T) {
	chunks := []chunk{{typ: [4]byte{'I', 'H', 'D', 'R'}, data: []byte("h")}}
	out := replaceIDAT(chunks, []byte("new"))
	if len(out) != 2 {
		t.Fatalf("got %d chunks, want 2", len(out))
	}
	if out[1].typ != ([4]byte{'I', 'D', 'A', 'T'}) {
		t.Fatalf("IDAT should be appended when none existed")
	}
}

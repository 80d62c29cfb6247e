package zopfli

import (
	"bytes"
	"compress/flate"
	"io"
	"testing"
)

func deflateRoundTrip(t *testing.T, data []byte, opts Options) {
	t.Helper()
	compressed, err := Deflate(data, opts)
	if err != nil {
		t.Fatalf("Deflate: %v", err)
	}
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decoding our own DEFLATE stream: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(data))
	}
}

func TestDeflateEmptyInput(t *testing.T) {
	deflateRoundTrip(t, nil, Options{})
}

func TestDeflateSmallText(t *testing.T) {
	deflateRoundTrip(t, []byte("the quick brown fox jumps over the lazy dog"), Options{NumIterations: 2})
}

func TestDeflateRepeatedContent(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefghij"), 500)
	deflateRoundTrip(t, data, Options{NumIterations: 2})
}

func TestDeflateBinaryData(t *testing.T) {
	data := make([]byte, 2000)
	for i := range data {
		data[i] = byte(i * 37 % 256)
	}
	deflateRoundTrip(t, data, Options{NumIterations: 1})
}

func TestDeflateWithBlockSplittingDisabled(t *testing.T) {
	disabled := false
	data := bytes.Repeat([]byte("split me please "), 200)
	deflateRoundTrip(t, data, Options{NumIterations: 2, BlockSplitting: &disabled})
}

func TestDeflateSingleByte(t *testing.T) {
	deflateRoundTrip(t, []byte{0x42}, Options{})
}

func TestOptionsIterationsDefaults(t *testing.T) {
	var o Options
	if got := o.iterations(1000); got != 60 {
		t.Fatalf("iterations(1000) = %d, want 60 (below default threshold)", got)
	}
	if got := o.iterations(300000); got != 20 {
		t.Fatalf("iterations(300000) = %d, want 20 (at/above default threshold)", got)
	}
	o.NumIterations = 5
	if got := o.iterations(300000); got != 5 {
		t.Fatalf("explicit NumIterations should override the default, got %d", got)
	}
}

func TestOptionsBlockSplittingDefaultsToEnabled(t *testing.T) {
	var o Options
	if !o.blockSplitting() {
		t.Fatalf("blockSplitting() should default to true")
	}
	disabled := false
	o.BlockSplitting = &disabled
	if o.blockSplitting() {
		t.Fatalf("blockSplitting() should honor an explicit false")
	}
}

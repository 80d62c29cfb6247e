package png

import (
	"bytes"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"
)

func TestParseHeader(t *testing.T) {
	data := make([]byte, 13)
	data[8] = 8 // bit depth
	data[9] = 2 // color type: truecolor
	data[12] = 0
	data[0], data[1], data[2], data[3] = 0, 0, 1, 0   // width 256
	data[4], data[5], data[6], data[7] = 0, 0, 0, 100 // height 100

	chunks := []chunk{{typ: [4]byte{'I', 'H', 'D', 'R'}, data: data}}
	h, err := parseHeader(chunks)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if h.width != 256 || h.height != 100 || h.bitDepth != 8 || h.colorType != 2 {
		t.Fatalf("parsed header = %+v", h)
	}
}

func TestParseHeaderMissingIHDR(t *testing.T) {
	_, err := parseHeader(nil)
	if err != errNotPNG {
		t.Fatalf("err = %v, want errNotPNG", err)
	}
}

func TestChannelsFor(t *testing.T) {
	cases := map[uint8]int{0: 1, 2: 3, 3: 1, 4: 2, 6: 4}
	for ct, want := range cases {
		got, err := channelsFor(ct)
		if err != nil {
			t.Fatalf("colorType %d: %v", ct, err)
		}
		if got != want {
			t.Fatalf("channelsFor(%d) = %d, want %d", ct, got, want)
		}
	}
	if _, err := channelsFor(5); err != errUnsupported {
		t.Fatalf("colorType 5 should be unsupported, got %v", err)
	}
}

func TestBytesPerPixel(t *testing.T) {
	h := header{bitDepth: 8, colorType: 2} // truecolor, 8-bit: 3 channels * 8 bits = 24 bits = 3 bytes
	bpp, err := bytesPerPixel(h)
	if err != nil || bpp != 3 {
		t.Fatalf("bytesPerPixel = %d, %v, want 3", bpp, err)
	}

	h2 := header{bitDepth: 1, colorType: 3} // indexed, 1-bit: rounds up to 1 byte
	bpp2, err := bytesPerPixel(h2)
	if err != nil || bpp2 != 1 {
		t.Fatalf("bytesPerPixel(1-bit indexed) = %d, %v, want 1", bpp2, err)
	}
}

func TestScanlineBytes(t *testing.T) {
	h := header{bitDepth: 8, colorType: 2, width: 4} // 4 pixels * 3 channels * 8 bits = 96 bits = 12 bytes
	n, err := scanlineBytes(h)
	if err != nil || n != 12 {
		t.Fatalf("scanlineBytes = %d, %v, want 12", n, err)
	}
}

func TestExceedsResolutionDefault(t *testing.T) {
	h := header{width: 1000, height: 1000}
	if exceedsResolution(h, 0) {
		t.Fatalf("a 1000x1000 image should not exceed the default cap")
	}
}

func TestExceedsResolutionCustomCap(t *testing.T) {
	h := header{width: 100, height: 100}
	if !exceedsResolution(h, 5000) {
		t.Fatalf("100x100 (10000px) should exceed a 5000px cap")
	}
	if exceedsResolution(h, 20000) {
		t.Fatalf("100x100 (10000px) should not exceed a 20000px cap")
	}
}

func TestVerifyLosslessIdenticalImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	var buf1, buf2 bytes.Buffer
	if err := stdpng.Encode(&buf1, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := stdpng.Encode(&buf2, img); err != nil {
		t.Fatalf("encode: %v", err)
	}

	ok, err := verifyLossless(buf1.Bytes(), buf2.Bytes())
	if err != nil {
		t.Fatalf("verifyLossless: %v", err)
	}
	if !ok {
		t.Fatalf("identically-encoded images should verify as lossless-equal")
	}
}

func TestVerifyLosslessDifferentImages(t *testing.T) {
	img1 := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img2 := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img2.Set(0, 0, color.RGBA{255, 0, 0, 255})

	var buf1, buf2 bytes.Buffer
	stdpng.Encode(&buf1, img1)
	stdpng.Encode(&buf2, img2)

	ok, err := verifyLossless(buf1.Bytes(), buf2.Bytes())
	if err != nil {
		t.Fatalf("verifyLossless: %v", err)
	}
	if ok {
		t.Fatalf("images with a differing pixel should not verify as equal")
	}
}

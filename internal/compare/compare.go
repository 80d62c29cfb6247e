// Package compare implements the candidate comparator: given a source
// image's bytes and its format, it invokes the appropriate backend (the
// zopfli-backed PNG recompressor for PNG, or an external subprocess for
// JPEG/GIF) and decides whether the result is worth keeping.
package compare

import (
	"bytes"
	"errors"

	"github.com/flaca-project/flaca/internal/ferr"
	"github.com/flaca-project/flaca/internal/png"
)

// Format identifies which backend a candidate's bytes should run through.
type Format int

const (
	Unknown Format = iota
	PNG
	JPEG
	GIF
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	case GIF:
		return "gif"
	default:
		return "unknown"
	}
}

// Sniff identifies a format from its leading bytes, the same way an image
// re-compressor has to when it's handed a bare byte slice rather than a
// trusted extension.
func Sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return JPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	default:
		return Unknown
	}
}

// Options bundles every backend's tuning knobs plus the candidate
// comparator's own acceptance policy.
type Options struct {
	PNG            png.Options
	JPEGPath       string // path to a jpegtran-equivalent trellis-quantizing binary
	GIFPath        string // path to gifsicle or an equivalent level-3 optimizer
	VerifyLossless bool

	// DisablePNG/DisableJPEG/DisableGIF mirror the CLI's
	// --no-png/--no-jpeg/--no-gif flags: a disabled format is reported as
	// Skipped rather than even sniffed against its backend.
	DisablePNG, DisableJPEG, DisableGIF bool
}

func (o Options) disabled(f Format) bool {
	switch f {
	case PNG:
		return o.DisablePNG
	case JPEG:
		return o.DisableJPEG
	case GIF:
		return o.DisableGIF
	default:
		return false
	}
}

// Recompress runs original through the backend matching its sniffed format
// and returns the candidate only when it is strictly smaller than original
// (nil otherwise), never a result larger than or equal to what was handed
// in — a recompressor that can only
// shrink files is one callers never need to double-check.
//
// ok reports whether a strictly smaller candidate was produced; when ok is
// false and err is nil, the caller should leave the source file untouched
// because no candidate improved on it. When err is non-nil it is always a
// *ferr.Error, classifying why (oversize, unreadable, disabled, ...) so the
// caller's per-file state machine can report the right Skipped reason.
func Recompress(original []byte, opts Options) (candidate []byte, ok bool, err error) {
	format := Sniff(original)

	if format == Unknown {
		return nil, false, ferr.New(ferr.InvalidImageType, "", nil)
	}
	if opts.disabled(format) {
		return nil, false, ferr.New(ferr.Disabled, "", nil)
	}

	var out []byte
	var backendErr error
	switch format {
	case PNG:
		pngOpts := opts.PNG
		pngOpts.VerifyLossless = opts.VerifyLossless
		out, backendErr = png.Recompress(original, pngOpts)
	case JPEG:
		out, backendErr = recompressJPEG(original, opts.JPEGPath)
	case GIF:
		out, backendErr = recompressGIF(original, opts.GIFPath)
	}

	if backendErr != nil {
		switch {
		case errors.Is(backendErr, png.ErrOversize):
			return nil, false, ferr.New(ferr.Oversize, "", backendErr)
		case errors.Is(backendErr, png.ErrVerifyFailed):
			return nil, false, ferr.New(ferr.VerifyFail, "", backendErr)
		case format == PNG && png.IsDecodeError(backendErr):
			// A malformed or unsupported source image is a skip, not a
			// run-stopping error: one bad file shouldn't abort a batch of
			// thousands of others.
			return nil, false, ferr.New(ferr.ParseFail, "", backendErr)
		default:
			// Anything else is the backend encoder itself failing; the
			// source is left untouched and the failure is reported rather
			// than silently swallowed.
			return nil, false, ferr.New(ferr.EncodeFail, "", backendErr)
		}
	}

	if len(out) == 0 || len(out) >= len(original) {
		return nil, false, nil
	}
	return out, true, nil
}

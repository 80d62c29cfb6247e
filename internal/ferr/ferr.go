// Package ferr defines the closed set of errors the recompression pipeline
// can report, as a Go error type rather than free-form wrapped errors, so
// callers (the CLI's exit code, the job summary's failure counts) can
// switch on a fixed, known vocabulary instead of pattern-matching strings.
package ferr

import "fmt"

// Code is one of the fixed set of reasons a file was skipped or a run
// failed.
type Code int

const (
	_ Code = iota
	EmptyFile          // the input file has zero length
	InvalidImageType   // not a recognized JPEG/PNG/GIF
	Killed             // interrupted before the file finished processing
	NoImages           // no input paths resolved to any image
	ParseFail          // the image container is malformed
	ReadFail           // unable to read the source file
	TmpDir             // unable to create or write a temp file
	WriteFail          // unable to replace the source file
	NotSmaller         // recompressed output was not smaller than the original
	VerifyFail         // recompressed output failed lossless verification
	Oversize           // image's pixel count exceeds the configured resolution cap
	Symlink            // symlink skipped per --no-symlinks policy
	Disabled           // format disabled via --no-gif/--no-jpeg/--no-png
	EncodeFail         // the backend encoder itself failed; source left untouched
)

func (c Code) String() string {
	switch c {
	case EmptyFile:
		return "the image is empty"
	case InvalidImageType:
		return "the file is not a JPEG, PNG, or GIF"
	case Killed:
		return "processing was interrupted"
	case NoImages:
		return "no images were found"
	case ParseFail:
		return "the image is malformed"
	case ReadFail:
		return "unable to read the image"
	case TmpDir:
		return "unable to manage temporary storage"
	case WriteFail:
		return "unable to save the image"
	case NotSmaller:
		return "recompressed output was not smaller"
	case VerifyFail:
		return "recompressed output did not verify as lossless"
	case Oversize:
		return "image exceeds the configured resolution cap"
	case Symlink:
		return "symlink skipped"
	case Disabled:
		return "format disabled"
	case EncodeFail:
		return "recompression failed"
	default:
		return "unknown error"
	}
}

// Error pairs a Code with the path it concerns, so a single typed error
// carries everything job-level reporting needs.
type Error struct {
	Code Code
	Path string
	Err  error // underlying cause, if any; may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error for path with the given code and, optionally, an
// underlying cause.
func New(code Code, path string, cause error) *Error {
	return &Error{Code: code, Path: path, Err: cause}
}

package compare

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// recompressJPEG shells out to a jpegtran-equivalent trellis-quantizing
// re-compressor (mozjpeg's jpegtran, or upstream jpegtran with
// --optimize/--progressive) and returns its stdout. This is deliberately a
// thin byte-in/byte-out contract, not a reimplementation: spec.md §1 puts
// the JPEG backend's internals explicitly out of scope.
//
// An empty path disables the backend (returns nil, nil, which Recompress's
// size check then treats as "no improvement").
func recompressJPEG(data []byte, path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return runFilter(path, []string{"-copy", "none", "-optimize", "-progressive"}, data)
}

// recompressGIF shells out to gifsicle (or an equivalent) at its highest
// optimization level. Per spec.md §4.14, GIF work is serialized to one
// reserved worker lane by the caller (gifsicle's own encoder is not
// reentrant); this function itself is stateless and safe to call from
// whichever single goroutine owns that lane.
func recompressGIF(data []byte, path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return runFilter(path, []string{"--optimize=3"}, data)
}

// runFilter execs name, feeding data on stdin and collecting stdout,
// the shape every external byte-in/byte-out backend in this package shares.
func runFilter(name string, args []string, data []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(data)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

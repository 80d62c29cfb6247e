// Package atomicfile replaces a file's contents without ever leaving it
// half-written: the new content lands in a sibling temp file first, which is
// fsynced and then renamed over the original, so a crash or kill mid-write
// can only ever leave the old file or the new one, never a mix of both.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Replace atomically overwrites path with data, preserving path's existing
// mode and (on POSIX) ownership. It refuses to replace path with a result
// that is empty or not strictly smaller than what's already there, mirroring
// the conservative "only keep a re-compression if it actually won" rule a
// batch image re-compressor needs to avoid ever growing a file it touched.
//
// When preserveTimes is set (the --preserve-times CLI flag), the new file's
// atime and mtime are both set to the original's mtime after the rename;
// the original's atime is not carried over. A failure of that step is
// ignored: it produces neither a warning nor an error.
func Replace(path string, data []byte, preserveTimes bool) error {
	if len(data) == 0 {
		return fmt.Errorf("atomicfile: refusing to replace %s with empty content", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("atomicfile: stat %s: %w", path, err)
	}
	if int64(len(data)) >= info.Size() {
		return fmt.Errorf("atomicfile: replacement for %s is not smaller (%d >= %d)", path, len(data), info.Size())
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".flaca-*")
	if err != nil {
		return fmt.Errorf("atomicfile: create temp in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if err := writeAndSync(tmp, data, info.Mode()); err != nil {
		return err
	}

	if err := preserveOwnership(tmpPath, info); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomicfile: rename %s to %s: %w", tmpPath, path, err)
	}

	if preserveTimes {
		mtime := info.ModTime()
		_ = os.Chtimes(path, mtime, mtime)
	}

	return syncDir(dir)
}

func writeAndSync(f *os.File, data []byte, mode os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("atomicfile: write %s: %w", f.Name(), err)
	}
	if err := f.Chmod(mode); err != nil {
		f.Close()
		return fmt.Errorf("atomicfile: chmod %s: %w", f.Name(), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("atomicfile: fsync %s: %w", f.Name(), err)
	}
	return f.Close()
}

// syncDir fsyncs the containing directory so the rename itself is durable,
// not just the file content. Best-effort: some platforms (notably Windows)
// don't support opening a directory for fsync, so a failure here is
// swallowed rather than surfaced as a recompression failure.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	defer d.Close()
	_ = d.Sync()
	return nil
}

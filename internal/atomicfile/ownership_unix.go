//go:build unix

package atomicfile

import (
	"os"
	"syscall"
)

// preserveOwnership chowns the temp file to match path's original owner
// before the rename, so recompression run as root (common for batch jobs
// over a shared image directory) doesn't silently reassign ownership to
// whichever user ran the tool.
func preserveOwnership(path string, info os.FileInfo) error {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	err := os.Chown(path, int(stat.Uid), int(stat.Gid))
	if err != nil && !os.IsPermission(err) {
		return err
	}
	return nil
}

//go:build !unix

package atomicfile

import "os"

func preserveOwnership(path string, info os.FileInfo) error {
	return nil
}

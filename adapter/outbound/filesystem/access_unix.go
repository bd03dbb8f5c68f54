//go:build unix

package filesystem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// checkReadable requires list and traverse permission on dir
func checkReadable(dir string) error {
	if err := unix.Access(dir, unix.R_OK|unix.X_OK); err != nil {
		return fmt.Errorf("directory %s is not readable: %w", dir, err)
	}
	return nil
}

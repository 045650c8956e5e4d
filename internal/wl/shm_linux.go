// SPDX-License-Identifier: Unlicense OR MIT

package wl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CreateShmFile returns an anonymous zero-filled file of size bytes, for
// sharing pixels with the compositor through wl_shm. The caller owns the
// descriptor.
func CreateShmFile(size int) (int, error) {
	fd, err := unix.MemfdCreate("pregen-shm", unix.MFD_CLOEXEC)
	if err != nil {
		return -1, fmt.Errorf("wl: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("wl: ftruncate: %w", err)
	}
	return fd, nil
}

// SPDX-License-Identifier: Unlicense OR MIT

package wl

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// CreateShmFile returns an anonymous zero-filled file of size bytes, for
// sharing pixels with the compositor through wl_shm. The caller owns the
// descriptor.
func CreateShmFile(size int) (int, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	name := filepath.Join(dir, "pregen-shm-"+strconv.FormatInt(time.Now().UnixNano(), 36))
	fd, err := unix.Open(name, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_CLOEXEC, 0600)
	if err != nil {
		return -1, fmt.Errorf("wl: open %s: %w", name, err)
	}
	unix.Unlink(name)
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("wl: ftruncate: %w", err)
	}
	return fd, nil
}

// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd

package wl

import (
	"bytes"
	"testing"

	"golang.org/x/sys/unix"
)

func TestCreateShmFile(t *testing.T) {
	const size = 64 * 4 * 32
	fd, err := CreateShmFile(size)
	if err != nil {
		t.Fatal(err)
	}
	defer unix.Close(fd)
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		t.Fatal(err)
	}
	if st.Size != size {
		t.Errorf("size = %d; want %d", st.Size, size)
	}
	buf := make([]byte, 256)
	if _, err := unix.Pread(fd, buf, size-int64(len(buf))); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, make([]byte, len(buf))) {
		t.Error("shm file not zero-filled")
	}
}

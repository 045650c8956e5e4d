// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd

package wl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/unix"
)

func TestMessageEncoding(t *testing.T) {
	m := NewRequest(3, 2)
	m.PutUint32(7)
	m.PutString("ab")
	m.PutInt32(-1)
	b := m.Bytes()
	if len(b) != 24 {
		t.Fatalf("encoded %d bytes; want 24", len(b))
	}
	if got, want := order.Uint32(b[4:]), uint32(24<<16|2); got != want {
		t.Errorf("header word %#x; want %#x", got, want)
	}
	// "ab" with NUL and one byte of padding.
	if diff := cmp.Diff([]byte{'a', 'b', 0, 0}, b[16:20]); diff != "" {
		t.Errorf("string encoding (-want +got):\n%s", diff)
	}

	dec, n, err := parseMessage(b)
	if err != nil || n != len(b) {
		t.Fatalf("parseMessage = %d, %v", n, err)
	}
	if dec.Sender != 3 || dec.Opcode != 2 {
		t.Errorf("decoded sender %d opcode %d", dec.Sender, dec.Opcode)
	}
	if v := dec.Uint32(); v != 7 {
		t.Errorf("Uint32() = %d", v)
	}
	if s := dec.Text(); s != "ab" {
		t.Errorf("Text() = %q", s)
	}
	if v := dec.Int32(); v != -1 {
		t.Errorf("Int32() = %d", v)
	}
	if err := dec.Err(); err != nil {
		t.Error(err)
	}
}

func TestFixed(t *testing.T) {
	for _, v := range []float64{0, 1.5, -0.25, 1024.75, -300} {
		m := NewRequest(1, 0)
		m.PutFixed(v)
		dec, _, _ := parseMessage(m.Bytes())
		if got := dec.Fixed(); got != v {
			t.Errorf("fixed round trip of %v = %v", v, got)
		}
	}
}

func TestArrayPadding(t *testing.T) {
	m := NewRequest(1, 0)
	m.PutArray([]byte{1, 2, 3, 4, 5})
	m.PutUint32(9)
	dec, _, _ := parseMessage(m.Bytes())
	if diff := cmp.Diff([]byte{1, 2, 3, 4, 5}, dec.Array()); diff != "" {
		t.Errorf("Array mismatch (-want +got):\n%s", diff)
	}
	if v := dec.Uint32(); v != 9 {
		t.Errorf("value after array = %d", v)
	}
}

func TestShortMessage(t *testing.T) {
	m := NewRequest(1, 0)
	m.PutUint32(1)
	dec, _, _ := parseMessage(m.Bytes())
	dec.Uint32()
	if v := dec.Uint32(); v != 0 {
		t.Errorf("read past end returned %d", v)
	}
	if !errors.Is(dec.Err(), errShortMessage) {
		t.Errorf("Err() = %v", dec.Err())
	}
}

func TestParseIncomplete(t *testing.T) {
	m := NewRequest(5, 1)
	m.PutString("wl_compositor")
	b := m.Bytes()
	for _, cut := range []int{0, 4, headerSize, len(b) - 1} {
		if _, n, err := parseMessage(b[:cut]); n != 0 || err != nil {
			t.Errorf("parseMessage of %d bytes = %d, %v", cut, n, err)
		}
	}
	bad := NewRequest(5, 1).Bytes()
	order.PutUint32(bad[4:], 6<<16)
	if _, _, err := parseMessage(bad); err == nil {
		t.Error("invalid size accepted")
	}
}

func socketPair(t *testing.T) (*Conn, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	c := NewConn(fds[0])
	t.Cleanup(func() {
		c.Close()
		unix.Close(fds[1])
	})
	return c, fds[1]
}

func send(t *testing.T, fd int, m *Message) {
	t.Helper()
	var oob []byte
	if len(m.FDs()) > 0 {
		oob = unix.UnixRights(m.FDs()...)
	}
	if err := unix.Sendmsg(fd, m.Bytes(), oob, nil, 0); err != nil {
		t.Fatal(err)
	}
}

func TestDispatch(t *testing.T) {
	c, server := socketPair(t)
	if err := c.Dispatch(); err != nil {
		t.Fatalf("Dispatch without data: %v", err)
	}

	var got []string
	var keymapFD int
	id := c.NewID(func(m *Message) {
		switch m.Opcode {
		case 0:
			got = append(got, m.Text())
		case 1:
			keymapFD = m.FD()
		}
	})
	ev := NewRequest(id, 0)
	ev.PutString("hello")
	send(t, server, ev)

	var p [2]int
	if err := unix.Pipe(p[:]); err != nil {
		t.Fatal(err)
	}
	defer unix.Close(p[0])
	defer unix.Close(p[1])
	fdev := NewRequest(id, 1)
	fdev.PutFD(p[0])
	send(t, server, fdev)

	if err := c.Dispatch(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"hello"}, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if keymapFD <= 0 {
		t.Fatalf("no file descriptor received: %d", keymapFD)
	}
	unix.Close(keymapFD)

	del := NewRequest(DisplayID, displayEventDeleteID)
	del.PutUint32(id)
	send(t, server, del)
	send(t, server, ev)
	if err := c.Dispatch(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("event delivered to deleted object: %v", got)
	}
}

func TestProtocolError(t *testing.T) {
	c, server := socketPair(t)
	ev := NewRequest(DisplayID, displayEventError)
	ev.PutUint32(3)
	ev.PutUint32(1)
	ev.PutString("invalid surface")
	send(t, server, ev)
	err := c.Dispatch()
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("Dispatch = %v; want a protocol error", err)
	}
	want := &ProtocolError{Object: 3, Code: 1, Message: "invalid surface"}
	if diff := cmp.Diff(want, perr); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
	if err := c.Request(3, 0); err == nil {
		t.Error("request sent after a protocol error")
	}
}

func TestRoundtrip(t *testing.T) {
	c, server := socketPair(t)
	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 12)
		n, err := unix.Read(server, buf)
		if err != nil {
			done <- err
			return
		}
		req, _, err := parseMessage(buf[:n])
		if err != nil {
			done <- err
			return
		}
		if req.Sender != DisplayID || req.Opcode != displaySync {
			done <- errors.New("expected wl_display.sync")
			return
		}
		ev := NewRequest(req.Uint32(), callbackEventDone)
		ev.PutUint32(42)
		_, err = unix.Write(server, ev.Bytes())
		done <- err
	}()
	if err := c.Roundtrip(); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestClosedConnection(t *testing.T) {
	c, server := socketPair(t)
	unix.Shutdown(server, unix.SHUT_WR)
	if err := c.Dispatch(); !errors.Is(err, ErrClosed) {
		t.Errorf("Dispatch on closed connection = %v", err)
	}
}

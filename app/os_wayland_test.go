// SPDX-License-Identifier: Unlicense OR MIT

//go:build ((linux && !android) || freebsd) && !nowayland
// +build linux,!android freebsd
// +build !nowayland

package app

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/unix"

	"pregen.dev/internal/wl"
	"pregen.dev/io/event"
	"pregen.dev/io/key"
)

// newTestWayland returns a window on one end of a socket pair and the
// compositor end.
func newTestWayland(t *testing.T) (*waylandWindow, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	conn := wl.NewConn(fds[0])
	t.Cleanup(func() {
		conn.Close()
		unix.Close(fds[1])
	})
	w := &waylandWindow{
		conn:          conn,
		log:           newNopLogger(),
		globals:       make(map[string]wlGlobal),
		outputs:       make(map[uint32]int32),
		entered:       make(map[uint32]bool),
		width:         800,
		height:        600,
		scale:         1,
		cursorVisible: true,
		resizable:     true,
	}
	return w, fds[1]
}

// sendEvents writes events from the compositor end.
func sendEvents(t *testing.T, server int, msgs ...*wl.Message) {
	t.Helper()
	for _, m := range msgs {
		var oob []byte
		if fds := m.FDs(); len(fds) > 0 {
			oob = unix.UnixRights(fds...)
		}
		if err := unix.Sendmsg(server, m.Bytes(), oob, nil, 0); err != nil {
			t.Fatal(err)
		}
	}
}

// request is a decoded request whose arguments are 32-bit words.
type request struct {
	Object uint32
	Opcode uint16
	Args   []uint32
}

// readRequests reads the pending requests at the compositor end and
// returns them with the number of file descriptors passed along.
func readRequests(t *testing.T, server int) ([]request, int) {
	t.Helper()
	var data []byte
	nfds := 0
	buf := make([]byte, 4096)
	oob := make([]byte, unix.CmsgSpace(4*4))
	for {
		n, oobn, _, _, err := unix.Recvmsg(server, buf, oob, unix.MSG_DONTWAIT)
		if errors.Is(err, unix.EAGAIN) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if oobn > 0 {
			scms, err := unix.ParseSocketControlMessage(oob[:oobn])
			if err != nil {
				t.Fatal(err)
			}
			for i := range scms {
				fds, err := unix.ParseUnixRights(&scms[i])
				if err != nil {
					t.Fatal(err)
				}
				for _, fd := range fds {
					unix.Close(fd)
				}
				nfds += len(fds)
			}
		}
		data = append(data, buf[:n]...)
	}
	var reqs []request
	for len(data) >= 8 {
		word := binary.NativeEndian.Uint32(data[4:])
		size := int(word >> 16)
		r := request{Object: binary.NativeEndian.Uint32(data), Opcode: uint16(word)}
		for i := 8; i+4 <= size; i += 4 {
			r.Args = append(r.Args, binary.NativeEndian.Uint32(data[i:]))
		}
		reqs = append(reqs, r)
		data = data[size:]
	}
	return reqs, nfds
}

func keyboardEnter(kbd uint32) *wl.Message {
	m := wl.NewRequest(kbd, wl.KeyboardEventEnter)
	m.PutUint32(1) // serial
	m.PutUint32(3) // surface
	m.PutArray(nil)
	return m
}

func keyboardLeave(kbd uint32) *wl.Message {
	m := wl.NewRequest(kbd, wl.KeyboardEventLeave)
	m.PutUint32(2) // serial
	m.PutUint32(3) // surface
	return m
}

func keyboardKey(kbd, code, state uint32) *wl.Message {
	m := wl.NewRequest(kbd, wl.KeyboardEventKey)
	m.PutUint32(4) // serial
	m.PutUint32(0) // time
	m.PutUint32(code)
	m.PutUint32(state)
	return m
}

func TestWaylandKeyboard(t *testing.T) {
	w, server := newTestWayland(t)
	kbd := w.conn.NewID(w.handleKeyboard)
	const (
		keyW = 17
		keyA = 30
	)
	sendEvents(t, server,
		keyboardEnter(kbd),
		keyboardKey(kbd, keyW, wl.KeyboardKeyPressed),
		keyboardKey(kbd, keyW, wl.KeyboardKeyPressed),
		keyboardKey(kbd, keyA, wl.KeyboardKeyPressed),
		keyboardKey(kbd, keyW, 0),
		keyboardKey(kbd, keyW, 0),
		keyboardLeave(kbd),
		keyboardEnter(kbd),
		keyboardKey(kbd, keyA, wl.KeyboardKeyPressed),
	)
	got := w.Poll()
	want := []event.Event{
		event.FocusGained{},
		event.KeyboardInput{Key: key.W, Scancode: keyW, Action: event.Pressed},
		event.KeyboardInput{Key: key.A, Scancode: keyA, Action: event.Pressed},
		event.KeyboardInput{Key: key.W, Scancode: keyW, Action: event.Released},
		event.KeyboardInput{Key: key.W, Scancode: keyW, Action: event.Released},
		event.FocusLost{},
		event.FocusGained{},
		event.KeyboardInput{Key: key.A, Scancode: keyA, Action: event.Pressed},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Poll mismatch (-want +got):\n%s", diff)
	}
	if !w.IsFocused() {
		t.Error("IsFocused() false after keyboard enter")
	}
}

func TestWaylandKeymapClosed(t *testing.T) {
	w, server := newTestWayland(t)
	kbd := w.conn.NewID(w.handleKeyboard)
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		t.Fatal(err)
	}
	defer unix.Close(p[1])
	m := wl.NewRequest(kbd, wl.KeyboardEventKeymap)
	m.PutUint32(1) // xkb_v1
	m.PutFD(p[0])
	m.PutUint32(0)
	sendEvents(t, server, m)
	unix.Close(p[0])
	if evs := w.Poll(); len(evs) != 0 {
		t.Errorf("keymap produced events %v", evs)
	}
	// With every read end closed, writes fail.
	if _, err := unix.Write(p[1], []byte{0}); !errors.Is(err, unix.EPIPE) {
		t.Errorf("keymap descriptor left open: write returned %v", err)
	}
}

func TestWaylandBuffer(t *testing.T) {
	w, server := newTestWayland(t)
	w.shm = w.conn.NewID(nil)
	w.surface = w.conn.NewID(w.handleSurface)
	w.xdgSurface = w.conn.NewID(w.handleXdgSurface)
	w.toplevel = w.conn.NewID(w.handleToplevel)
	configure := func(serial uint32) *wl.Message {
		m := wl.NewRequest(w.xdgSurface, wl.XdgSurfaceEventConfigure)
		m.PutUint32(serial)
		return m
	}
	check := func(want []request, wantEvents []event.Event) {
		t.Helper()
		if diff := cmp.Diff(wantEvents, w.Poll()); diff != "" {
			t.Errorf("Poll mismatch (-want +got):\n%s", diff)
		}
		got, nfds := readRequests(t, server)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("requests mismatch (-want +got):\n%s", diff)
		}
		if nfds != 1 {
			t.Errorf("%d descriptors sent; want 1", nfds)
		}
	}

	// The initial configure maps the surface.
	sendEvents(t, server, configure(9))
	check([]request{
		{w.xdgSurface, wl.XdgSurfaceAckConfigure, []uint32{9}},
		{w.shm, wl.ShmCreatePool, []uint32{6, 800 * 4 * 600}},
		{6, wl.ShmPoolCreateBuffer, []uint32{7, 0, 800, 600, 800 * 4, wl.ShmFormatXRGB8888}},
		{6, wl.ShmPoolDestroy, nil},
		{w.surface, wl.SurfaceAttach, []uint32{7, 0, 0}},
		{w.surface, wl.SurfaceDamage, []uint32{0, 0, 800, 600}},
		{w.surface, wl.SurfaceCommit, nil},
	}, nil)

	// A compositor resize replaces the buffer.
	top := wl.NewRequest(w.toplevel, wl.ToplevelEventConfigure)
	top.PutInt32(1024)
	top.PutInt32(768)
	top.PutArray(nil)
	sendEvents(t, server, top, configure(10))
	check([]request{
		{w.xdgSurface, wl.XdgSurfaceAckConfigure, []uint32{10}},
		{w.shm, wl.ShmCreatePool, []uint32{8, 1024 * 4 * 768}},
		{8, wl.ShmPoolCreateBuffer, []uint32{9, 0, 1024, 768, 1024 * 4, wl.ShmFormatXRGB8888}},
		{8, wl.ShmPoolDestroy, nil},
		{w.surface, wl.SurfaceAttach, []uint32{9, 0, 0}},
		{w.surface, wl.SurfaceDamage, []uint32{0, 0, 1024, 768}},
		{7, wl.BufferDestroy, nil},
		{w.surface, wl.SurfaceCommit, nil},
	}, []event.Event{event.Resize{Width: 1024, Height: 768}})

	// Entering a scale 2 output doubles the buffer.
	w.outputs[50] = 2
	enter := wl.NewRequest(w.surface, wl.SurfaceEventEnter)
	enter.PutUint32(50)
	sendEvents(t, server, enter)
	check([]request{
		{w.surface, wl.SurfaceSetBufferScale, []uint32{2}},
		{w.shm, wl.ShmCreatePool, []uint32{10, 2048 * 4 * 1536}},
		{10, wl.ShmPoolCreateBuffer, []uint32{11, 0, 2048, 1536, 2048 * 4, wl.ShmFormatXRGB8888}},
		{10, wl.ShmPoolDestroy, nil},
		{w.surface, wl.SurfaceAttach, []uint32{11, 0, 0}},
		{w.surface, wl.SurfaceDamage, []uint32{0, 0, 1024, 768}},
		{9, wl.BufferDestroy, nil},
		{w.surface, wl.SurfaceCommit, nil},
	}, []event.Event{event.ScaleFactorChanged{ScaleX: 2, ScaleY: 2}})
}

func TestWaylandHandlesUnavailable(t *testing.T) {
	w, _ := newTestWayland(t)
	if _, err := w.WindowHandle(); !errors.Is(err, ErrHandleUnavailable) {
		t.Errorf("WindowHandle: %v", err)
	}
	if _, err := w.DisplayHandle(); !errors.Is(err, ErrHandleUnavailable) {
		t.Errorf("DisplayHandle: %v", err)
	}
}

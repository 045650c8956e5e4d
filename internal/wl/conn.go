// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd

// Package wl implements the client side of the Wayland wire protocol over
// a Unix domain socket.
package wl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Handler receives the events sent from an object.
type Handler func(m *Message)

// DisplayID is the object id of the wl_display singleton.
const DisplayID = 1

// wl_display opcodes.
const (
	displaySync        = 0
	displayGetRegistry = 1

	displayEventError    = 0
	displayEventDeleteID = 1
)

// wl_callback events.
const callbackEventDone = 0

// maxFDs is the most file descriptors accepted in one read.
const maxFDs = 28

// ProtocolError is a fatal error reported by the compositor.
type ProtocolError struct {
	Object  uint32
	Code    uint32
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wl: protocol error on object %d (code %d): %s", e.Object, e.Code, e.Message)
}

// ErrClosed is returned when the compositor closed the connection.
var ErrClosed = errors.New("wl: connection closed")

// Conn is a client connection to a compositor. It is not safe for
// concurrent use.
type Conn struct {
	fd   int
	path string

	nextID   uint32
	handlers map[uint32]Handler

	in    []byte
	inFDs []int
	buf   []byte
	oob   []byte

	err error
}

// SocketPath returns the compositor socket named by WAYLAND_DISPLAY,
// relative to XDG_RUNTIME_DIR unless absolute.
func SocketPath() (string, error) {
	name := os.Getenv("WAYLAND_DISPLAY")
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", errors.New("wl: XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(dir, name), nil
}

// Connect connects to the compositor named by the environment.
func Connect() (*Conn, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	return Dial(path)
}

// Dial connects to the compositor socket at path.
func Dial(path string) (*Conn, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("wl: socket: %w", err)
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("wl: connect %s: %w", path, err)
	}
	c := NewConn(fd)
	c.path = path
	return c, nil
}

// NewConn returns a connection over the connected socket fd. The
// connection takes ownership of fd.
func NewConn(fd int) *Conn {
	return &Conn{
		fd:       fd,
		nextID:   DisplayID + 1,
		handlers: make(map[uint32]Handler),
		buf:      make([]byte, 4096),
		oob:      make([]byte, unix.CmsgSpace(maxFDs*4)),
	}
}

// FD returns the socket file descriptor.
func (c *Conn) FD() int {
	return c.fd
}

// Path returns the socket path, if known.
func (c *Conn) Path() string {
	return c.path
}

// NewID allocates an object id and routes its events to h.
func (c *Conn) NewID(h Handler) uint32 {
	id := c.nextID
	c.nextID++
	if h != nil {
		c.handlers[id] = h
	}
	return id
}

// SetHandler routes the events of object id to h.
func (c *Conn) SetHandler(id uint32, h Handler) {
	c.handlers[id] = h
}

// Send writes a request with its file descriptors.
func (c *Conn) Send(m *Message) error {
	if c.err != nil {
		return c.err
	}
	var oob []byte
	if fds := m.FDs(); len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}
	if err := unix.Sendmsg(c.fd, m.Bytes(), oob, nil, unix.MSG_NOSIGNAL); err != nil {
		c.err = fmt.Errorf("wl: send: %w", err)
		return c.err
	}
	return nil
}

// GetRegistry sends wl_display.get_registry and routes the registry events
// to h.
func (c *Conn) GetRegistry(h Handler) (uint32, error) {
	id := c.NewID(h)
	m := NewRequest(DisplayID, displayGetRegistry)
	m.PutUint32(id)
	return id, c.Send(m)
}

// Roundtrip blocks until the compositor has processed all prior requests,
// dispatching the events received meanwhile.
func (c *Conn) Roundtrip() error {
	done := false
	id := c.NewID(func(m *Message) {
		if m.Opcode == callbackEventDone {
			done = true
		}
	})
	m := NewRequest(DisplayID, displaySync)
	m.PutUint32(id)
	if err := c.Send(m); err != nil {
		return err
	}
	for !done {
		if err := c.read(0); err != nil {
			if errors.Is(err, unix.EAGAIN) {
				continue
			}
			return err
		}
		if err := c.dispatchBuffered(); err != nil {
			return err
		}
	}
	return nil
}

// Dispatch reads the events available without blocking and calls their
// handlers.
func (c *Conn) Dispatch() error {
	for {
		err := c.read(unix.MSG_DONTWAIT)
		if errors.Is(err, unix.EAGAIN) {
			break
		}
		if err != nil {
			return err
		}
	}
	return c.dispatchBuffered()
}

// read performs one receive into the input buffer.
func (c *Conn) read(flags int) error {
	if c.err != nil {
		return c.err
	}
	n, oobn, _, _, err := unix.Recvmsg(c.fd, c.buf, c.oob, flags|unix.MSG_CMSG_CLOEXEC)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return unix.EAGAIN
		}
		c.err = fmt.Errorf("wl: receive: %w", err)
		return c.err
	}
	if oobn > 0 {
		scms, err := unix.ParseSocketControlMessage(c.oob[:oobn])
		if err != nil {
			c.err = fmt.Errorf("wl: control message: %w", err)
			return c.err
		}
		for i := range scms {
			fds, err := unix.ParseUnixRights(&scms[i])
			if err != nil {
				continue
			}
			c.inFDs = append(c.inFDs, fds...)
		}
	}
	if n == 0 {
		c.err = ErrClosed
		return c.err
	}
	c.in = append(c.in, c.buf[:n]...)
	return nil
}

func (c *Conn) dispatchBuffered() error {
	for {
		m, n, err := parseMessage(c.in)
		if err != nil {
			c.err = err
			return err
		}
		if n == 0 {
			break
		}
		c.in = c.in[n:]
		m.conn = c
		if m.Sender == DisplayID {
			if err := c.displayEvent(m); err != nil {
				return err
			}
			continue
		}
		if h, ok := c.handlers[m.Sender]; ok {
			h(m)
		}
	}
	if len(c.in) == 0 {
		c.in = c.in[:0:0]
	}
	return nil
}

func (c *Conn) displayEvent(m *Message) error {
	switch m.Opcode {
	case displayEventError:
		obj := m.Uint32()
		code := m.Uint32()
		perr := &ProtocolError{Object: obj, Code: code, Message: m.Text()}
		c.err = perr
		return perr
	case displayEventDeleteID:
		delete(c.handlers, m.Uint32())
	}
	return nil
}

// Close closes the connection and any unclaimed file descriptors.
func (c *Conn) Close() error {
	for _, fd := range c.inFDs {
		unix.Close(fd)
	}
	c.inFDs = nil
	if c.err == nil {
		c.err = ErrClosed
	}
	return unix.Close(c.fd)
}

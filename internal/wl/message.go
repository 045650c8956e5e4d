// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd

package wl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// headerSize is the size of the object id and the size/opcode word.
const headerSize = 8

var order = binary.NativeEndian

// errShortMessage is returned when decoding past the end of a message.
var errShortMessage = errors.New("wl: message too short")

// Message is a request being encoded or an event being decoded. Requests
// are built with the Put methods; events are read in argument order with
// the getters. A getter reading past the end records an error, available
// from Err, and returns a zero value.
type Message struct {
	// Sender is the object the message is addressed to or sent from.
	Sender uint32
	Opcode uint16

	data []byte
	fds  []int
	off  int
	err  error
	// conn supplies the file descriptors of received messages.
	conn *Conn
}

// NewRequest starts a request with the given opcode to object id.
func NewRequest(id uint32, opcode uint16) *Message {
	return &Message{Sender: id, Opcode: opcode}
}

func (m *Message) PutUint32(v uint32) {
	m.data = order.AppendUint32(m.data, v)
}

func (m *Message) PutInt32(v int32) {
	m.PutUint32(uint32(v))
}

// PutFixed encodes v as a 24.8 fixed point number.
func (m *Message) PutFixed(v float64) {
	m.PutInt32(int32(math.Round(v * 256)))
}

// PutString encodes s with its terminating NUL, padded to 32 bits.
func (m *Message) PutString(s string) {
	m.PutUint32(uint32(len(s) + 1))
	m.data = append(m.data, s...)
	m.data = append(m.data, 0)
	m.pad()
}

// PutArray encodes b with its length, padded to 32 bits.
func (m *Message) PutArray(b []byte) {
	m.PutUint32(uint32(len(b)))
	m.data = append(m.data, b...)
	m.pad()
}

// PutFD attaches a file descriptor. File descriptors travel out of band
// and take no space in the message body.
func (m *Message) PutFD(fd int) {
	m.fds = append(m.fds, fd)
}

func (m *Message) pad() {
	for len(m.data)%4 != 0 {
		m.data = append(m.data, 0)
	}
}

// Bytes returns the wire encoding of the message.
func (m *Message) Bytes() []byte {
	size := headerSize + len(m.data)
	buf := make([]byte, 0, size)
	buf = order.AppendUint32(buf, m.Sender)
	buf = order.AppendUint32(buf, uint32(size)<<16|uint32(m.Opcode))
	return append(buf, m.data...)
}

// FDs returns the attached file descriptors.
func (m *Message) FDs() []int {
	return m.fds
}

// Err returns the first decoding error.
func (m *Message) Err() error {
	return m.err
}

func (m *Message) Uint32() uint32 {
	if m.off+4 > len(m.data) {
		m.fail()
		return 0
	}
	v := order.Uint32(m.data[m.off:])
	m.off += 4
	return v
}

func (m *Message) Int32() int32 {
	return int32(m.Uint32())
}

// Fixed decodes a 24.8 fixed point number.
func (m *Message) Fixed() float64 {
	return float64(m.Int32()) / 256
}

// Text decodes a string. The empty string is returned for null strings.
func (m *Message) Text() string {
	b := m.Array()
	if len(b) == 0 {
		return ""
	}
	if b[len(b)-1] != 0 {
		m.fail()
		return ""
	}
	return string(b[:len(b)-1])
}

// Array decodes an array. The returned slice aliases the message.
func (m *Message) Array() []byte {
	n := int(m.Uint32())
	if m.err != nil {
		return nil
	}
	padded := (n + 3) &^ 3
	if n < 0 || m.off+padded > len(m.data) {
		m.fail()
		return nil
	}
	b := m.data[m.off : m.off+n]
	m.off += padded
	return b
}

// FD returns the next file descriptor received with the message. The
// caller owns it.
func (m *Message) FD() int {
	if m.conn == nil || len(m.conn.inFDs) == 0 {
		m.fail()
		return -1
	}
	fd := m.conn.inFDs[0]
	m.conn.inFDs = m.conn.inFDs[1:]
	return fd
}

func (m *Message) fail() {
	if m.err == nil {
		m.err = fmt.Errorf("%w: object %d opcode %d", errShortMessage, m.Sender, m.Opcode)
	}
}

// parseMessage decodes the message at the start of buf. It returns the
// number of bytes consumed, or 0 if buf holds an incomplete message.
func parseMessage(buf []byte) (*Message, int, error) {
	if len(buf) < headerSize {
		return nil, 0, nil
	}
	id := order.Uint32(buf)
	word := order.Uint32(buf[4:])
	size := int(word >> 16)
	if size < headerSize || size%4 != 0 {
		return nil, 0, fmt.Errorf("wl: invalid message size %d", size)
	}
	if len(buf) < size {
		return nil, 0, nil
	}
	data := make([]byte, size-headerSize)
	copy(data, buf[headerSize:size])
	return &Message{Sender: id, Opcode: uint16(word), data: data}, size, nil
}

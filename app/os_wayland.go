// SPDX-License-Identifier: Unlicense OR MIT

//go:build ((linux && !android) || freebsd) && !nowayland
// +build linux,!android freebsd
// +build !nowayland

package app

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"
	"golang.org/x/sys/unix"

	"pregen.dev/internal/keycode"
	"pregen.dev/internal/wl"
	"pregen.dev/io/event"
)

// wlGlobal is a global advertised by the compositor registry.
type wlGlobal struct {
	name    uint32
	version uint32
}

type waylandWindow struct {
	conn *wl.Conn
	log  *slog.Logger

	registry uint32
	globals  map[string]wlGlobal

	compositor  uint32
	shm         uint32
	wmBase      uint32
	seat        uint32
	decorations uint32
	constraints uint32
	relative    uint32
	shapes      uint32

	// outputs maps wl_output objects to their scale.
	outputs map[uint32]int32
	// entered is the set of outputs the surface is shown on.
	entered map[uint32]bool

	surface    uint32
	xdgSurface uint32
	toplevel   uint32
	decoration uint32
	// configured is set by the first xdg_surface.configure, after which
	// buffers may be attached.
	configured bool

	// buffer is the attached wl_buffer, sized bufferWidth by bufferHeight
	// physical pixels.
	buffer                    uint32
	bufferWidth, bufferHeight int32

	pointer       uint32
	keyboard      uint32
	shapeDevice   uint32
	lockedPointer uint32
	relPointer    uint32
	// pointerSerial is the serial of the last pointer enter, needed to
	// change the cursor.
	pointerSerial uint32

	pending []event.Event
	keys    keyTracker

	title string
	// width and height are the logical client area size.
	width, height int
	scale         int32

	// Toplevel state from the last xdg_toplevel.configure.
	configWidth, configHeight int32
	configMaximized           bool

	visible       bool
	focused       bool
	destroyed     bool
	lost          bool
	locked        bool
	cursorVisible bool
	resizable     bool
	maximized     bool
	pointerInside bool

	cursorX, cursorY float32
}

func init() {
	registerDriver(Wayland, newWaylandWindow)
}

func newWaylandWindow(opts *nativeOptions) (NativeWindow, error) {
	conn, err := wl.Connect()
	if err != nil {
		return nil, platformError(Wayland, "wl_display_connect", errnoCode(err), err)
	}
	w := &waylandWindow{
		conn:          conn,
		log:           opts.Logger,
		globals:       make(map[string]wlGlobal),
		outputs:       make(map[uint32]int32),
		entered:       make(map[uint32]bool),
		title:         opts.Title,
		width:         opts.Width,
		height:        opts.Height,
		scale:         1,
		cursorVisible: true,
		resizable:     true,
	}
	if err := w.init(); err != nil {
		conn.Close()
		return nil, err
	}
	w.log.Info("wayland window created", "socket", conn.Path(), "surface", w.surface)
	return w, nil
}

func errnoCode(err error) int {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}

func (w *waylandWindow) init() error {
	reg, err := w.conn.GetRegistry(w.handleRegistry)
	if err != nil {
		return platformError(Wayland, "wl_display_get_registry", errnoCode(err), err)
	}
	w.registry = reg
	if err := w.conn.Roundtrip(); err != nil {
		return platformError(Wayland, "wl_display_roundtrip", errnoCode(err), err)
	}
	required := []struct {
		iface   string
		version uint32
		id      *uint32
		h       wl.Handler
	}{
		{wl.Compositor, 4, &w.compositor, nil},
		{wl.WmBase, 1, &w.wmBase, w.handleWmBase},
	}
	for _, r := range required {
		id, err := w.bind(r.iface, r.version, r.h)
		if err != nil {
			return err
		}
		if id == 0 {
			return platformError(Wayland, "wl_registry_bind", 0, fmt.Errorf("compositor lacks %s", r.iface))
		}
		*r.id = id
	}
	optional := []struct {
		iface   string
		version uint32
		id      *uint32
		h       wl.Handler
	}{
		{wl.Shm, 1, &w.shm, nil},
		{wl.Seat, 5, &w.seat, w.handleSeat},
		{wl.DecorationManager, 1, &w.decorations, nil},
		{wl.PointerConstraints, 1, &w.constraints, nil},
		{wl.RelativePointerManager, 1, &w.relative, nil},
		{wl.CursorShapeManager, 1, &w.shapes, nil},
	}
	for _, o := range optional {
		id, err := w.bind(o.iface, o.version, o.h)
		if err != nil {
			return err
		}
		if id == 0 {
			w.log.Debug("wayland: optional global missing", "interface", o.iface)
		}
		*o.id = id
	}
	w.surface = w.conn.NewID(w.handleSurface)
	if err := w.conn.Request(w.compositor, wl.CompositorCreateSurface, w.surface); err != nil {
		return platformError(Wayland, "wl_compositor_create_surface", errnoCode(err), err)
	}
	// Receive the seat capabilities and output scales.
	if err := w.conn.Roundtrip(); err != nil {
		return platformError(Wayland, "wl_display_roundtrip", errnoCode(err), err)
	}
	return nil
}

// bind binds the advertised global iface, or returns 0 if it is missing.
func (w *waylandWindow) bind(iface string, version uint32, h wl.Handler) (uint32, error) {
	g, ok := w.globals[iface]
	if !ok {
		return 0, nil
	}
	id, err := w.conn.Bind(w.registry, g.name, iface, min(version, g.version), h)
	if err != nil {
		return 0, platformError(Wayland, "wl_registry_bind", errnoCode(err), err)
	}
	return id, nil
}

func (w *waylandWindow) handleRegistry(m *wl.Message) {
	switch m.Opcode {
	case wl.RegistryEventGlobal:
		name := m.Uint32()
		iface := m.Text()
		version := m.Uint32()
		if iface == wl.Output {
			// Outputs come and go; bind them as they appear.
			var id uint32
			id, _ = w.conn.Bind(w.registry, name, iface, min(version, 2), func(m *wl.Message) {
				w.handleOutput(id, m)
			})
			w.outputs[id] = 1
			return
		}
		w.globals[iface] = wlGlobal{name: name, version: version}
	case wl.RegistryEventGlobalRemove:
	}
}

func (w *waylandWindow) handleOutput(id uint32, m *wl.Message) {
	if m.Opcode != wl.OutputEventScale {
		return
	}
	w.outputs[id] = m.Int32()
	w.updateScale()
}

func (w *waylandWindow) handleSurface(m *wl.Message) {
	output := m.Uint32()
	switch m.Opcode {
	case wl.SurfaceEventEnter:
		w.entered[output] = true
	case wl.SurfaceEventLeave:
		delete(w.entered, output)
	}
	w.updateScale()
}

// updateScale applies the largest scale of the outputs showing the
// surface.
func (w *waylandWindow) updateScale() {
	scale := int32(1)
	for o := range w.entered {
		if s := w.outputs[o]; s > scale {
			scale = s
		}
	}
	if scale == w.scale {
		return
	}
	w.scale = scale
	w.request(w.surface, wl.SurfaceSetBufferScale, uint32(scale))
	if w.configured {
		w.attachBuffer()
		w.request(w.surface, wl.SurfaceCommit)
	}
	w.event(event.ScaleFactorChanged{ScaleX: float32(scale), ScaleY: float32(scale)})
}

// attachBuffer maps the surface with a black shared memory buffer of the
// window size in physical pixels. A buffer of that size already attached
// is kept. The caller commits the surface.
func (w *waylandWindow) attachBuffer() {
	if w.shm == 0 || !w.configured {
		return
	}
	width, height := int32(w.width)*w.scale, int32(w.height)*w.scale
	if width <= 0 || height <= 0 {
		return
	}
	if w.buffer != 0 && width == w.bufferWidth && height == w.bufferHeight {
		return
	}
	stride := width * 4
	fd, err := wl.CreateShmFile(int(stride * height))
	if err != nil {
		w.log.Error("wayland: buffer allocation failed", "error", err)
		return
	}
	defer unix.Close(fd)
	pool := w.conn.NewID(nil)
	m := wl.NewRequest(w.shm, wl.ShmCreatePool)
	m.PutUint32(pool)
	m.PutFD(fd)
	m.PutInt32(stride * height)
	if err := w.conn.Send(m); err != nil {
		w.log.Error("wayland: create_pool failed", "error", err)
		return
	}
	buffer := w.conn.NewID(nil)
	w.request(pool, wl.ShmPoolCreateBuffer, buffer, 0, uint32(width), uint32(height), uint32(stride), wl.ShmFormatXRGB8888)
	w.request(pool, wl.ShmPoolDestroy)
	w.request(w.surface, wl.SurfaceAttach, buffer, 0, 0)
	w.request(w.surface, wl.SurfaceDamage, 0, 0, uint32(w.width), uint32(w.height))
	w.request(w.buffer, wl.BufferDestroy)
	w.buffer, w.bufferWidth, w.bufferHeight = buffer, width, height
	trace(w.log, "wayland: buffer attached", "width", width, "height", height)
}

func (w *waylandWindow) handleWmBase(m *wl.Message) {
	if m.Opcode == wl.WmBaseEventPing {
		w.request(w.wmBase, wl.WmBasePong, m.Uint32())
	}
}

func (w *waylandWindow) handleSeat(m *wl.Message) {
	if m.Opcode != wl.SeatEventCapabilities {
		return
	}
	caps := m.Uint32()
	if caps&wl.SeatCapabilityPointer != 0 && w.pointer == 0 {
		w.pointer = w.conn.NewID(w.handlePointer)
		w.request(w.seat, wl.SeatGetPointer, w.pointer)
		if w.shapes != 0 {
			w.shapeDevice = w.conn.NewID(nil)
			w.request(w.shapes, wl.CursorShapeManagerGetPointer, w.shapeDevice, w.pointer)
		}
	}
	if caps&wl.SeatCapabilityKeyboard != 0 && w.keyboard == 0 {
		w.keyboard = w.conn.NewID(w.handleKeyboard)
		w.request(w.seat, wl.SeatGetKeyboard, w.keyboard)
	}
}

func (w *waylandWindow) handlePointer(m *wl.Message) {
	switch m.Opcode {
	case wl.PointerEventEnter:
		w.pointerSerial = m.Uint32()
		m.Uint32() // surface
		x, y := float32(m.Fixed()), float32(m.Fixed())
		w.pointerInside = true
		w.applyCursor()
		if !w.locked {
			w.cursorX, w.cursorY = x, y
			w.event(event.CursorPosition{X: x, Y: y})
		}
	case wl.PointerEventLeave:
		w.pointerInside = false
	case wl.PointerEventMotion:
		m.Uint32() // time
		x, y := float32(m.Fixed()), float32(m.Fixed())
		if w.locked {
			// Locked pointers report relative motion only.
			break
		}
		w.cursorX, w.cursorY = x, y
		w.event(event.CursorPosition{X: x, Y: y})
	case wl.PointerEventButton:
		m.Uint32() // serial
		m.Uint32() // time
		btn := m.Uint32()
		state := m.Uint32()
		w.event(event.MouseButton{
			Button: keycode.EvdevButton(btn),
			Action: event.ActionOf(state == wl.PointerButtonPressed),
		})
	case wl.PointerEventAxis:
		m.Uint32() // time
		axis := m.Uint32()
		// Ten units of axis motion make one wheel notch.
		notches := float32(m.Fixed()) / 10
		switch axis {
		case wl.PointerAxisVertical:
			w.event(event.MouseWheel{ScrollY: -notches})
		case wl.PointerAxisHorizontal:
			w.event(event.MouseWheel{ScrollX: notches})
		}
	}
}

func (w *waylandWindow) handleRelativePointer(m *wl.Message) {
	if m.Opcode != wl.RelativePointerEventRelativeMotion {
		return
	}
	m.Uint32() // utime_hi
	m.Uint32() // utime_lo
	dx, dy := float32(m.Fixed()), float32(m.Fixed())
	w.cursorX = clampf(w.cursorX+dx, 0, float32(w.width))
	w.cursorY = clampf(w.cursorY+dy, 0, float32(w.height))
	w.event(event.CursorPosition{X: w.cursorX, Y: w.cursorY})
}

func (w *waylandWindow) handleKeyboard(m *wl.Message) {
	switch m.Opcode {
	case wl.KeyboardEventKeymap:
		m.Uint32() // format
		// The keymap is not used; key codes are evdev codes.
		if fd := m.FD(); fd >= 0 {
			unix.Close(fd)
		}
	case wl.KeyboardEventEnter:
		w.focused = true
		w.keys.reset()
		w.event(event.FocusGained{})
	case wl.KeyboardEventLeave:
		w.focused = false
		w.keys.reset()
		w.event(event.FocusLost{})
	case wl.KeyboardEventKey:
		m.Uint32() // serial
		m.Uint32() // time
		code := m.Uint32()
		pressed := m.Uint32() == wl.KeyboardKeyPressed
		if pressed {
			if !w.keys.press(code) {
				return
			}
		} else {
			w.keys.release(code)
		}
		k, ok := keycode.Evdev(code)
		w.event(event.KeyboardInput{
			Key:      translateKey(w.log, Wayland, k, ok, code),
			Scancode: code,
			Action:   event.ActionOf(pressed),
		})
	}
}

func (w *waylandWindow) handleXdgSurface(m *wl.Message) {
	if m.Opcode != wl.XdgSurfaceEventConfigure {
		return
	}
	serial := m.Uint32()
	w.request(w.xdgSurface, wl.XdgSurfaceAckConfigure, serial)
	w.configured = true
	if w.configWidth > 0 && w.configHeight > 0 {
		width, height := int(w.configWidth), int(w.configHeight)
		if width != w.width || height != w.height {
			w.width, w.height = width, height
			w.event(event.Resize{Width: width, Height: height})
		}
	}
	if w.configMaximized && !w.maximized {
		w.event(event.Maximized{})
	}
	w.maximized = w.configMaximized
	w.attachBuffer()
	w.request(w.surface, wl.SurfaceCommit)
}

func (w *waylandWindow) handleToplevel(m *wl.Message) {
	switch m.Opcode {
	case wl.ToplevelEventConfigure:
		w.configWidth = m.Int32()
		w.configHeight = m.Int32()
		states := m.Array()
		w.configMaximized = false
		for i := 0; i+4 <= len(states); i += 4 {
			if binary.NativeEndian.Uint32(states[i:]) == wl.ToplevelStateMaximized {
				w.configMaximized = true
			}
		}
	case wl.ToplevelEventClose:
		w.event(event.CloseRequested{})
	}
}

func (w *waylandWindow) event(e event.Event) {
	w.pending = append(w.pending, e)
}

// request sends a request, logging failures. A failed connection is
// reported by the next Poll.
func (w *waylandWindow) request(id uint32, opcode uint16, args ...uint32) {
	if id == 0 {
		return
	}
	if err := w.conn.Request(id, opcode, args...); err != nil {
		w.log.Error("wayland: request failed", "object", id, "opcode", opcode, "error", err)
	}
}

// applyCursor hides or restores the cursor image over the surface.
func (w *waylandWindow) applyCursor() {
	if w.pointer == 0 || !w.pointerInside {
		return
	}
	if w.locked || !w.cursorVisible {
		w.request(w.pointer, wl.PointerSetCursor, w.pointerSerial, 0, 0, 0)
		return
	}
	if w.shapeDevice != 0 {
		w.request(w.shapeDevice, wl.CursorShapeDeviceSetShape, w.pointerSerial, wl.CursorShapeDefault)
		return
	}
	w.log.Debug("wayland: cursor shapes unsupported; cursor restored on next pointer enter")
}

func (w *waylandWindow) setSizeLimits() {
	var minW, minH, maxW, maxH uint32
	if !w.resizable {
		minW, minH = uint32(w.width), uint32(w.height)
		maxW, maxH = minW, minH
	}
	w.request(w.toplevel, wl.ToplevelSetMinSize, minW, minH)
	w.request(w.toplevel, wl.ToplevelSetMaxSize, maxW, maxH)
}

func (w *waylandWindow) Show() {
	if w.destroyed || w.visible {
		return
	}
	w.visible = true
	w.xdgSurface = w.conn.NewID(w.handleXdgSurface)
	w.request(w.wmBase, wl.WmBaseGetXdgSurface, w.xdgSurface, w.surface)
	w.toplevel = w.conn.NewID(w.handleToplevel)
	w.request(w.xdgSurface, wl.XdgSurfaceGetToplevel, w.toplevel)
	if w.decorations != 0 {
		w.decoration = w.conn.NewID(nil)
		w.request(w.decorations, wl.DecorationManagerGetToplevelDecoration, w.decoration, w.toplevel)
		w.request(w.decoration, wl.ToplevelDecorationSetMode, wl.DecorationModeServerSide)
	}
	w.sendTitle()
	w.setSizeLimits()
	w.request(w.surface, wl.SurfaceCommit)
	// Wait for the initial configure.
	if err := w.conn.Roundtrip(); err != nil {
		w.log.Error("wayland: roundtrip failed", "error", err)
	}
}

func (w *waylandWindow) Focus() {
	if w.destroyed {
		return
	}
	if !w.visible {
		w.Show()
		return
	}
	// Clients cannot take focus without an activation token.
	w.log.Debug("wayland: focus requests are not supported by the protocol")
}

func (w *waylandWindow) Shutdown() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	w.unlockPointer()
	if w.shapeDevice != 0 {
		w.request(w.shapeDevice, wl.CursorShapeDeviceDestroy)
	}
	if w.toplevel != 0 {
		w.request(w.toplevel, wl.ToplevelDestroy)
		w.request(w.xdgSurface, wl.XdgSurfaceDestroy)
	}
	w.request(w.buffer, wl.BufferDestroy)
	w.request(w.surface, wl.SurfaceDestroy)
	w.conn.Close()
	w.pending = nil
}

func (w *waylandWindow) IsFocused() bool {
	return w.focused
}

func (w *waylandWindow) LockCursor(lock bool) {
	if w.destroyed || lock == w.locked {
		return
	}
	w.locked = lock
	if !lock {
		w.unlockPointer()
		w.applyCursor()
		return
	}
	if w.constraints == 0 || w.pointer == 0 {
		w.log.Warn("wayland: pointer locking unsupported by the compositor")
	} else {
		w.lockedPointer = w.conn.NewID(nil)
		w.request(w.constraints, wl.PointerConstraintsLockPointer,
			w.lockedPointer, w.surface, w.pointer, 0, wl.LifetimePersistent)
	}
	if w.relative != 0 && w.pointer != 0 {
		w.relPointer = w.conn.NewID(w.handleRelativePointer)
		w.request(w.relative, wl.RelativePointerManagerGetRelativePointer, w.relPointer, w.pointer)
	}
	w.applyCursor()
}

func (w *waylandWindow) unlockPointer() {
	if w.lockedPointer != 0 {
		w.request(w.lockedPointer, wl.LockedPointerDestroy)
		w.lockedPointer = 0
	}
	if w.relPointer != 0 {
		w.request(w.relPointer, wl.RelativePointerDestroy)
		w.relPointer = 0
	}
}

func (w *waylandWindow) Poll() []event.Event {
	if w.destroyed {
		return nil
	}
	if !w.lost {
		if err := w.conn.Dispatch(); err != nil {
			w.lost = true
			w.log.Error("wayland: connection lost", "error", err)
			w.event(event.Destroyed{})
		}
	}
	evs := w.pending
	w.pending = nil
	return evs
}

func (w *waylandWindow) Resize(width, height int) {
	if w.destroyed {
		return
	}
	// Clients choose their size unless the compositor dictates one.
	w.width, w.height = width, height
	if w.toplevel != 0 {
		w.setSizeLimits()
		w.attachBuffer()
		w.request(w.surface, wl.SurfaceCommit)
	}
}

func (w *waylandWindow) Size() (int, int) {
	return w.width, w.height
}

func (w *waylandWindow) Clipboard() string {
	text, err := clipboard.ReadAll()
	if err != nil {
		w.log.Warn("wayland: clipboard read failed", "error", err)
		return ""
	}
	return text
}

func (w *waylandWindow) SetClipboard(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		w.log.Warn("wayland: clipboard write failed", "error", err)
	}
}

func (w *waylandWindow) ContentScale() (float32, float32) {
	return float32(w.scale), float32(w.scale)
}

func (w *waylandWindow) CursorPosition() (float32, float32) {
	if !w.locked && !w.pointerInside {
		return 0, 0
	}
	return w.cursorX, w.cursorY
}

func (w *waylandWindow) SetTitle(title string) {
	w.title = title
	if w.destroyed {
		return
	}
	w.sendTitle()
}

func (w *waylandWindow) sendTitle() {
	if w.toplevel == 0 {
		return
	}
	m := wl.NewRequest(w.toplevel, wl.ToplevelSetTitle)
	m.PutString(w.title)
	if err := w.conn.Send(m); err != nil {
		w.log.Error("wayland: set_title failed", "error", err)
	}
}

func (w *waylandWindow) SetResizable(resizable bool) {
	w.resizable = resizable
	if w.destroyed || w.toplevel == 0 {
		return
	}
	w.setSizeLimits()
	w.request(w.surface, wl.SurfaceCommit)
}

func (w *waylandWindow) SetCursorVisible(visible bool) {
	w.cursorVisible = visible
	if w.destroyed {
		return
	}
	w.applyCursor()
}

// SetCursorPosition moves the virtual cursor of a locked pointer. The
// compositor places the real cursor at the hint when the lock ends.
func (w *waylandWindow) SetCursorPosition(x, y float32) {
	if w.destroyed {
		return
	}
	w.cursorX, w.cursorY = x, y
	if w.lockedPointer == 0 {
		return
	}
	m := wl.NewRequest(w.lockedPointer, wl.LockedPointerSetCursorPositionHint)
	m.PutFixed(float64(x))
	m.PutFixed(float64(y))
	if err := w.conn.Send(m); err != nil {
		w.log.Error("wayland: cursor position hint failed", "error", err)
		return
	}
	// The hint is double-buffered surface state.
	w.request(w.surface, wl.SurfaceCommit)
}

// WindowHandle fails: the surface lives on a private protocol connection
// that no GPU API can create a surface from.
func (w *waylandWindow) WindowHandle() (WindowHandle, error) {
	if w.destroyed {
		return nil, ErrClosed
	}
	return nil, platformError(Wayland, "WindowHandle", 0, ErrHandleUnavailable)
}

func (w *waylandWindow) DisplayHandle() (DisplayHandle, error) {
	if w.destroyed {
		return nil, ErrClosed
	}
	return nil, platformError(Wayland, "DisplayHandle", 0, ErrHandleUnavailable)
}

// SPDX-License-Identifier: Unlicense OR MIT

//go:build ((linux && !android) || freebsd) && !nox11
// +build linux,!android freebsd
// +build !nox11

package app

import (
	"bufio"
	"image"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/atotto/clipboard"
	"golang.org/x/exp/slices"

	"pregen.dev/internal/keycode"
	"pregen.dev/io/event"
)

type x11Window struct {
	xu   *xgbutil.XUtil
	conn *xgb.Conn
	win  xproto.Window
	log  *slog.Logger

	atoms struct {
		protocols    xproto.Atom
		deleteWindow xproto.Atom
		wmState      xproto.Atom
	}
	// invisible is a blank cursor for hidden and locked cursors.
	invisible xproto.Cursor

	// held is a trailing KeyRelease kept back one poll to detect auto-repeat
	// pairs split across polls.
	held *xproto.KeyReleaseEvent
	keys keyTracker
	warp warpFilter

	scale float32
	// width and height are the client area size in physical pixels.
	width, height int

	visible       bool
	focused       bool
	destroyed     bool
	locked        bool
	cursorVisible bool
	resizable     bool
	minimized     bool
	maximized     bool
}

const x11EventMask = xproto.EventMaskKeyPress | xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion | xproto.EventMaskStructureNotify |
	xproto.EventMaskFocusChange | xproto.EventMaskPropertyChange

func init() {
	registerDriver(X11, newX11Window)
}

func newX11Window(opts *nativeOptions) (NativeWindow, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, platformError(X11, "XOpenDisplay", 0, err)
	}
	keybind.Initialize(xu)
	w := &x11Window{
		xu:            xu,
		conn:          xu.Conn(),
		log:           opts.Logger,
		scale:         1,
		cursorVisible: true,
		resizable:     true,
	}
	if res, err := xprop.PropValStr(xprop.GetProperty(xu, xu.RootWin(), "RESOURCE_MANAGER")); err == nil {
		if dpi, ok := xftDPI(res); ok {
			w.scale = dpi / 96
		}
	}
	w.width = int(math.Round(float64(opts.Width) * float64(w.scale)))
	w.height = int(math.Round(float64(opts.Height) * float64(w.scale)))
	if err := w.create(); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	w.log.Info("x11 window created", "window", w.win, "scale", w.scale)
	return w, nil
}

func (w *x11Window) create() error {
	screen := w.xu.Screen()
	wid, err := xproto.NewWindowId(w.conn)
	if err != nil {
		return platformError(X11, "NewWindowId", 0, err)
	}
	err = xproto.CreateWindowChecked(
		w.conn,
		screen.RootDepth,
		wid,
		w.xu.RootWin(),
		0, 0,
		uint16(max(w.width, 1)), uint16(max(w.height, 1)),
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		// Value list order follows the bit positions of the mask.
		[]uint32{screen.BlackPixel, x11EventMask},
	).Check()
	if err != nil {
		return platformError(X11, "XCreateWindow", 0, err)
	}
	w.win = wid
	if err := icccm.WmProtocolsSet(w.xu, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		return platformError(X11, "XSetWMProtocols", 0, err)
	}
	for _, a := range []struct {
		name string
		atom *xproto.Atom
	}{
		{"WM_PROTOCOLS", &w.atoms.protocols},
		{"WM_DELETE_WINDOW", &w.atoms.deleteWindow},
		{"_NET_WM_STATE", &w.atoms.wmState},
	} {
		atom, err := xprop.Atm(w.xu, a.name)
		if err != nil {
			return platformError(X11, "XInternAtom", 0, err)
		}
		*a.atom = atom
	}
	cursor, err := w.createInvisibleCursor()
	if err != nil {
		return platformError(X11, "XCreatePixmapCursor", 0, err)
	}
	w.invisible = cursor
	return nil
}

// createInvisibleCursor creates a cursor from an empty 1x1 bitmap.
func (w *x11Window) createInvisibleCursor() (xproto.Cursor, error) {
	pix, err := xproto.NewPixmapId(w.conn)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(w.conn, 1, pix, xproto.Drawable(w.win), 1, 1).Check(); err != nil {
		return 0, err
	}
	defer xproto.FreePixmap(w.conn, pix)
	cursor, err := xproto.NewCursorId(w.conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateCursorChecked(w.conn, cursor, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0).Check()
	return cursor, err
}

// xftDPI extracts the Xft.dpi value from an X resource database string.
func xftDPI(resources string) (float32, bool) {
	sc := bufio.NewScanner(strings.NewReader(resources))
	for sc.Scan() {
		name, value, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(name) != "Xft.dpi" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
		if err != nil || dpi <= 0 {
			return 0, false
		}
		return float32(dpi), true
	}
	return 0, false
}

func (w *x11Window) Show() {
	if w.destroyed || w.visible {
		return
	}
	w.visible = true
	xproto.MapWindow(w.conn, w.win)
	w.requestFocus()
}

func (w *x11Window) Focus() {
	if w.destroyed {
		return
	}
	if !w.visible {
		w.Show()
		return
	}
	w.requestFocus()
}

// requestFocus asks the window manager to activate the window. Without a
// window manager the input focus is set directly.
func (w *x11Window) requestFocus() {
	if err := ewmh.ActiveWindowReq(w.xu, w.win); err != nil {
		w.log.Debug("x11: _NET_ACTIVE_WINDOW request failed", "error", err)
		xproto.SetInputFocus(w.conn, xproto.InputFocusParent, w.win, xproto.TimeCurrentTime)
	}
}

func (w *x11Window) Shutdown() {
	if w.destroyed {
		return
	}
	w.destroyed = true
	if w.locked {
		xproto.UngrabPointer(w.conn, xproto.TimeCurrentTime)
	}
	xproto.FreeCursor(w.conn, w.invisible)
	xproto.DestroyWindow(w.conn, w.win)
	// Round trip to flush the requests before closing.
	xproto.GetInputFocus(w.conn).Reply()
	w.conn.Close()
}

func (w *x11Window) IsFocused() bool {
	return w.focused
}

func (w *x11Window) LockCursor(lock bool) {
	if w.destroyed {
		return
	}
	w.locked = lock
	w.updateCursor()
	if !lock {
		xproto.UngrabPointer(w.conn, xproto.TimeCurrentTime)
		return
	}
	if w.focused {
		w.grabPointer()
	}
}

// grabPointer confines the pointer to the window.
func (w *x11Window) grabPointer() {
	const mask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease | xproto.EventMaskPointerMotion
	reply, err := xproto.GrabPointer(w.conn, true, w.win, mask,
		xproto.GrabModeAsync, xproto.GrabModeAsync,
		w.win, w.invisible, xproto.TimeCurrentTime).Reply()
	if err != nil {
		w.log.Warn("x11: pointer grab failed", "error", err)
		return
	}
	if reply.Status != xproto.GrabStatusSuccess {
		w.log.Warn("x11: pointer grab refused", "status", reply.Status)
	}
}

func (w *x11Window) updateCursor() {
	var cursor xproto.Cursor // None, the parent's cursor
	if w.locked || !w.cursorVisible {
		cursor = w.invisible
	}
	xproto.ChangeWindowAttributes(w.conn, w.win, xproto.CwCursor, []uint32{uint32(cursor)})
}

func (w *x11Window) Poll() []event.Event {
	if w.destroyed {
		return nil
	}
	var raw []xgb.Event
	for {
		ev, xerr := w.conn.PollForEvent()
		if ev == nil && xerr == nil {
			break
		}
		if xerr != nil {
			w.log.Error("x11: protocol error", "error", xerr)
			continue
		}
		raw = append(raw, ev)
	}
	raw, w.held = filterRepeats(raw, w.held)
	var evs []event.Event
	for _, ev := range raw {
		evs = w.translate(evs, ev)
	}
	return evs
}

// filterRepeats drops the release and press pairs of auto-repeated keys,
// which share a keycode and timestamp. held is the release kept back by
// the previous call and is delivered unless a matching press follows it. A
// release ending raw is kept back and returned as the new held release.
func filterRepeats(raw []xgb.Event, held *xproto.KeyReleaseEvent) ([]xgb.Event, *xproto.KeyReleaseEvent) {
	if held != nil {
		raw = append([]xgb.Event{*held}, raw...)
	}
	var out []xgb.Event
	var next *xproto.KeyReleaseEvent
	for i := 0; i < len(raw); i++ {
		if rel, ok := raw[i].(xproto.KeyReleaseEvent); ok {
			if i+1 < len(raw) {
				if p, ok := raw[i+1].(xproto.KeyPressEvent); ok && p.Detail == rel.Detail && p.Time == rel.Time {
					i++
					continue
				}
			} else if held == nil || i > 0 {
				next = &rel
				continue
			}
		}
		out = append(out, raw[i])
	}
	return out, next
}

func (w *x11Window) translate(evs []event.Event, xev xgb.Event) []event.Event {
	switch e := xev.(type) {
	case xproto.KeyPressEvent:
		code := uint32(e.Detail)
		if !w.keys.press(code) {
			break
		}
		evs = append(evs, w.keyEvent(e.Detail, event.Pressed))
	case xproto.KeyReleaseEvent:
		w.keys.release(uint32(e.Detail))
		evs = append(evs, w.keyEvent(e.Detail, event.Released))
	case xproto.ButtonPressEvent:
		if e := wheelEvent(e.Detail); e != nil {
			evs = append(evs, e)
			break
		}
		evs = append(evs, event.MouseButton{Button: keycode.X11Button(byte(e.Detail)), Action: event.Pressed})
	case xproto.ButtonReleaseEvent:
		if e.Detail >= 4 && e.Detail <= 7 {
			break
		}
		evs = append(evs, event.MouseButton{Button: keycode.X11Button(byte(e.Detail)), Action: event.Released})
	case xproto.MotionNotifyEvent:
		x, y := float32(e.EventX)/w.scale, float32(e.EventY)/w.scale
		if w.warp.suppress(x, y) {
			break
		}
		evs = append(evs, event.CursorPosition{X: x, Y: y})
	case xproto.ConfigureNotifyEvent:
		if e.Window != w.win {
			break
		}
		width, height := int(e.Width), int(e.Height)
		if width == w.width && height == w.height {
			break
		}
		w.width, w.height = width, height
		lw, lh := w.Size()
		evs = append(evs, event.Resize{Width: lw, Height: lh})
	case xproto.FocusInEvent:
		// Grabs move the focus temporarily.
		if e.Mode == xproto.NotifyModeGrab || e.Mode == xproto.NotifyModeUngrab || e.Detail == xproto.NotifyDetailPointer {
			break
		}
		w.focused = true
		w.keys.reset()
		if w.locked {
			w.grabPointer()
		}
		evs = append(evs, event.FocusGained{})
	case xproto.FocusOutEvent:
		if e.Mode == xproto.NotifyModeGrab || e.Mode == xproto.NotifyModeUngrab || e.Detail == xproto.NotifyDetailPointer {
			break
		}
		w.focused = false
		w.keys.reset()
		if w.locked {
			xproto.UngrabPointer(w.conn, xproto.TimeCurrentTime)
		}
		evs = append(evs, event.FocusLost{})
	case xproto.ClientMessageEvent:
		if e.Type == w.atoms.protocols && e.Format == 32 && xproto.Atom(e.Data.Data32[0]) == w.atoms.deleteWindow {
			evs = append(evs, event.CloseRequested{})
		}
	case xproto.PropertyNotifyEvent:
		if e.Atom == w.atoms.wmState {
			evs = w.stateChanged(evs)
		}
	case xproto.DestroyNotifyEvent:
		if e.Window == w.win {
			evs = append(evs, event.Destroyed{})
		}
	}
	return evs
}

func (w *x11Window) keyEvent(code xproto.Keycode, action event.Action) event.Event {
	sym := keybind.KeysymGet(w.xu, code, 0)
	k, ok := keycode.X11(uint32(sym))
	return event.KeyboardInput{
		Key:      translateKey(w.log, X11, k, ok, uint32(sym)),
		Scancode: uint32(code),
		Action:   action,
	}
}

// wheelEvent converts the core protocol scroll buttons to a wheel event.
func wheelEvent(b xproto.Button) event.Event {
	switch b {
	case 4:
		return event.MouseWheel{ScrollY: 1}
	case 5:
		return event.MouseWheel{ScrollY: -1}
	case 6:
		return event.MouseWheel{ScrollX: -1}
	case 7:
		return event.MouseWheel{ScrollX: 1}
	}
	return nil
}

// stateChanged reports transitions into the hidden and maximized
// _NET_WM_STATE states.
func (w *x11Window) stateChanged(evs []event.Event) []event.Event {
	states, err := ewmh.WmStateGet(w.xu, w.win)
	if err != nil {
		return evs
	}
	minimized := slices.Contains(states, "_NET_WM_STATE_HIDDEN")
	maximized := slices.Contains(states, "_NET_WM_STATE_MAXIMIZED_VERT") &&
		slices.Contains(states, "_NET_WM_STATE_MAXIMIZED_HORZ")
	if minimized && !w.minimized {
		evs = append(evs, event.Minimized{})
	}
	if maximized && !w.maximized {
		evs = append(evs, event.Maximized{})
	}
	w.minimized, w.maximized = minimized, maximized
	return evs
}

func (w *x11Window) Resize(width, height int) {
	if w.destroyed {
		return
	}
	pw := uint32(math.Round(float64(width) * float64(w.scale)))
	ph := uint32(math.Round(float64(height) * float64(w.scale)))
	xproto.ConfigureWindow(w.conn, w.win, xproto.ConfigWindowWidth|xproto.ConfigWindowHeight, []uint32{pw, ph})
	if !w.resizable {
		w.setSizeHints(int(pw), int(ph))
	}
}

func (w *x11Window) Size() (int, int) {
	return int(math.Round(float64(w.width) / float64(w.scale))),
		int(math.Round(float64(w.height) / float64(w.scale)))
}

func (w *x11Window) Clipboard() string {
	text, err := clipboard.ReadAll()
	if err != nil {
		w.log.Warn("x11: clipboard read failed", "error", err)
		return ""
	}
	return text
}

func (w *x11Window) SetClipboard(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		w.log.Warn("x11: clipboard write failed", "error", err)
	}
}

func (w *x11Window) ContentScale() (float32, float32) {
	return w.scale, w.scale
}

func (w *x11Window) CursorPosition() (float32, float32) {
	if w.destroyed {
		return 0, 0
	}
	reply, err := xproto.QueryPointer(w.conn, w.win).Reply()
	if err != nil || !reply.SameScreen {
		return 0, 0
	}
	x, y := int(reply.WinX), int(reply.WinY)
	if x < 0 || y < 0 || x >= w.width || y >= w.height {
		return 0, 0
	}
	return float32(x) / w.scale, float32(y) / w.scale
}

func (w *x11Window) SetTitle(title string) {
	if w.destroyed {
		return
	}
	if err := icccm.WmNameSet(w.xu, w.win, title); err != nil {
		w.log.Warn("x11: WM_NAME not set", "error", err)
	}
	if err := ewmh.WmNameSet(w.xu, w.win, title); err != nil {
		w.log.Warn("x11: _NET_WM_NAME not set", "error", err)
	}
}

func (w *x11Window) SetResizable(resizable bool) {
	if w.destroyed {
		return
	}
	w.resizable = resizable
	if resizable {
		w.setSizeHints(0, 0)
		return
	}
	w.setSizeHints(w.width, w.height)
}

// setSizeHints fixes the window size to width×height, or lifts the
// restriction if both are zero.
func (w *x11Window) setSizeHints(width, height int) {
	hints := &icccm.NormalHints{}
	if width > 0 && height > 0 {
		hints.Flags = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		hints.MinWidth, hints.MaxWidth = uint(width), uint(width)
		hints.MinHeight, hints.MaxHeight = uint(height), uint(height)
	}
	if err := icccm.WmNormalHintsSet(w.xu, w.win, hints); err != nil {
		w.log.Warn("x11: WM_NORMAL_HINTS not set", "error", err)
	}
}

func (w *x11Window) SetCursorVisible(visible bool) {
	w.cursorVisible = visible
	if w.destroyed {
		return
	}
	w.updateCursor()
}

func (w *x11Window) SetCursorPosition(x, y float32) {
	if w.destroyed {
		return
	}
	w.warp.set(x, y)
	px := int16(math.Round(float64(x * w.scale)))
	py := int16(math.Round(float64(y * w.scale)))
	xproto.WarpPointer(w.conn, xproto.WindowNone, w.win, 0, 0, 0, 0, px, py)
}

func (w *x11Window) SetIcon(img image.Image) {
	if w.destroyed {
		return
	}
	data := argbIcon(scaleIcon(img, iconSizes...))
	if err := xprop.ChangeProp32(w.xu, w.win, "_NET_WM_ICON", "CARDINAL", data...); err != nil {
		w.log.Warn("x11: _NET_WM_ICON not set", "error", err)
	}
}

func (w *x11Window) WindowHandle() (WindowHandle, error) {
	if w.destroyed {
		return nil, ErrClosed
	}
	return X11WindowHandle{Window: uint32(w.win)}, nil
}

func (w *x11Window) DisplayHandle() (DisplayHandle, error) {
	if w.destroyed {
		return nil, ErrClosed
	}
	return X11DisplayHandle{Display: os.Getenv("DISPLAY"), Screen: w.conn.DefaultScreen}, nil
}

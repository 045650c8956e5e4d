// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd

package wl

// Interface names, as advertised by wl_registry.global.
const (
	Compositor             = "wl_compositor"
	Shm                    = "wl_shm"
	Seat                   = "wl_seat"
	Output                 = "wl_output"
	WmBase                 = "xdg_wm_base"
	DecorationManager      = "zxdg_decoration_manager_v1"
	PointerConstraints     = "zwp_pointer_constraints_v1"
	RelativePointerManager = "zwp_relative_pointer_manager_v1"
	CursorShapeManager     = "wp_cursor_shape_manager_v1"
)

// wl_registry
const (
	RegistryBind = 0

	RegistryEventGlobal       = 0
	RegistryEventGlobalRemove = 1
)

// wl_compositor
const (
	CompositorCreateSurface = 0
)

// wl_surface
const (
	SurfaceDestroy        = 0
	SurfaceAttach         = 1
	SurfaceDamage         = 2
	SurfaceCommit         = 6
	SurfaceSetBufferScale = 8

	SurfaceEventEnter = 0
	SurfaceEventLeave = 1
)

// wl_shm, wl_shm_pool and wl_buffer
const (
	ShmCreatePool = 0

	ShmFormatXRGB8888 = 1

	ShmPoolCreateBuffer = 0
	ShmPoolDestroy      = 1

	BufferDestroy = 0
)

// wl_seat
const (
	SeatGetPointer  = 0
	SeatGetKeyboard = 1

	SeatEventCapabilities = 0

	SeatCapabilityPointer  = 1
	SeatCapabilityKeyboard = 2
)

// wl_pointer
const (
	PointerSetCursor = 0

	PointerEventEnter  = 0
	PointerEventLeave  = 1
	PointerEventMotion = 2
	PointerEventButton = 3
	PointerEventAxis   = 4

	PointerAxisVertical   = 0
	PointerAxisHorizontal = 1

	PointerButtonPressed = 1
)

// wl_keyboard
const (
	KeyboardEventKeymap = 0
	KeyboardEventEnter  = 1
	KeyboardEventLeave  = 2
	KeyboardEventKey    = 3

	KeyboardKeyPressed = 1
)

// wl_output
const (
	OutputEventScale = 3
)

// xdg_wm_base
const (
	WmBaseGetXdgSurface = 2
	WmBasePong          = 3

	WmBaseEventPing = 0
)

// xdg_surface
const (
	XdgSurfaceDestroy      = 0
	XdgSurfaceGetToplevel  = 1
	XdgSurfaceAckConfigure = 4

	XdgSurfaceEventConfigure = 0
)

// xdg_toplevel
const (
	ToplevelDestroy    = 0
	ToplevelSetTitle   = 2
	ToplevelSetMaxSize = 7
	ToplevelSetMinSize = 8

	ToplevelEventConfigure = 0
	ToplevelEventClose     = 1

	ToplevelStateMaximized = 1
	ToplevelStateActivated = 4
)

// zxdg_decoration_manager_v1 and zxdg_toplevel_decoration_v1
const (
	DecorationManagerGetToplevelDecoration = 1

	ToplevelDecorationSetMode = 1

	DecorationModeServerSide = 2
)

// zwp_pointer_constraints_v1 and zwp_locked_pointer_v1
const (
	PointerConstraintsLockPointer = 1

	LifetimePersistent = 2

	LockedPointerDestroy               = 0
	LockedPointerSetCursorPositionHint = 1
)

// zwp_relative_pointer_manager_v1 and zwp_relative_pointer_v1
const (
	RelativePointerManagerGetRelativePointer = 1

	RelativePointerDestroy = 0

	RelativePointerEventRelativeMotion = 0
)

// wp_cursor_shape_manager_v1 and wp_cursor_shape_device_v1
const (
	CursorShapeManagerGetPointer = 1

	CursorShapeDeviceDestroy  = 0
	CursorShapeDeviceSetShape = 1

	CursorShapeDefault = 1
)

// Bind sends wl_registry.bind for the global name, implementing iface at
// version, and routes the new object's events to h.
func (c *Conn) Bind(registry, name uint32, iface string, version uint32, h Handler) (uint32, error) {
	id := c.NewID(h)
	m := NewRequest(registry, RegistryBind)
	m.PutUint32(name)
	m.PutString(iface)
	m.PutUint32(version)
	m.PutUint32(id)
	return id, c.Send(m)
}

// Request sends a request whose arguments are all 32-bit values, such as
// object ids and integers.
func (c *Conn) Request(id uint32, opcode uint16, args ...uint32) error {
	m := NewRequest(id, opcode)
	for _, a := range args {
		m.PutUint32(a)
	}
	return c.Send(m)
}

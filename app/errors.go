// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedBackend is returned when the selected backend is not
	// compiled in for the current platform.
	ErrUnsupportedBackend = errors.New("backend not supported on this platform")
	// ErrHandleUnavailable is returned by backends without native handles.
	ErrHandleUnavailable = errors.New("native handle unavailable")
	// ErrClosed is returned for handle requests on a closed window.
	ErrClosed = errors.New("window closed")
)

// PlatformError describes a failed native call. Errors during window
// construction are fatal for the caller; there is no degraded mode without
// a window.
type PlatformError struct {
	// Backend that issued the call.
	Backend Backend
	// Op names the native call, for example "XOpenDisplay" or
	// "CreateWindowEx".
	Op string
	// Code is the platform error code, or 0 if the platform reported none.
	Code int
	Err  error
}

func (e *PlatformError) Error() string {
	msg := fmt.Sprintf("%s: %s failed", e.Backend, e.Op)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

func platformError(b Backend, op string, code int, err error) error {
	return &PlatformError{Backend: b, Op: op, Code: code, Err: err}
}

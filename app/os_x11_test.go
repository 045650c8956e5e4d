// SPDX-License-Identifier: Unlicense OR MIT

//go:build ((linux && !android) || freebsd) && !nox11
// +build linux,!android freebsd
// +build !nox11

package app

import (
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/google/go-cmp/cmp"

	"pregen.dev/io/event"
)

func TestXftDPI(t *testing.T) {
	tests := []struct {
		res string
		dpi float32
		ok  bool
	}{
		{"Xft.dpi:\t144\n", 144, true},
		{"Xft.antialias:\t1\nXft.dpi: 96\nXft.hinting:\t1\n", 96, true},
		{"Xft.antialias:\t1\n", 0, false},
		{"Xft.dpi:\tlarge\n", 0, false},
		{"", 0, false},
	}
	for _, test := range tests {
		dpi, ok := xftDPI(test.res)
		if dpi != test.dpi || ok != test.ok {
			t.Errorf("xftDPI(%q) = %v, %v; want %v, %v", test.res, dpi, ok, test.dpi, test.ok)
		}
	}
}

func TestWheelEvent(t *testing.T) {
	tests := map[uint8]event.Event{
		4: event.MouseWheel{ScrollY: 1},
		5: event.MouseWheel{ScrollY: -1},
		6: event.MouseWheel{ScrollX: -1},
		7: event.MouseWheel{ScrollX: 1},
		1: nil,
	}
	for b, want := range tests {
		if got := wheelEvent(xproto.Button(b)); got != want {
			t.Errorf("wheelEvent(%d) = %v; want %v", b, got, want)
		}
	}
}

func TestFilterRepeats(t *testing.T) {
	press := func(code xproto.Keycode, time xproto.Timestamp) xgb.Event {
		return xproto.KeyPressEvent{Detail: code, Time: time}
	}
	release := func(code xproto.Keycode, time xproto.Timestamp) xproto.KeyReleaseEvent {
		return xproto.KeyReleaseEvent{Detail: code, Time: time}
	}
	focusOut := xproto.FocusOutEvent{Mode: xproto.NotifyModeNormal, Detail: xproto.NotifyDetailNonlinear}
	held := func(code xproto.Keycode, time xproto.Timestamp) *xproto.KeyReleaseEvent {
		r := release(code, time)
		return &r
	}

	tests := []struct {
		name     string
		held     *xproto.KeyReleaseEvent
		raw      []xgb.Event
		want     []xgb.Event
		wantHeld *xproto.KeyReleaseEvent
	}{
		{
			name: "repeat pair in one poll",
			raw:  []xgb.Event{press(38, 10), release(38, 20), press(38, 20), release(38, 30), press(38, 30)},
			want: []xgb.Event{press(38, 10)},
		},
		{
			name:     "trailing release kept back",
			raw:      []xgb.Event{press(38, 10), release(38, 20)},
			want:     []xgb.Event{press(38, 10)},
			wantHeld: held(38, 20),
		},
		{
			name: "repeat pair split across polls",
			held: held(38, 20),
			raw:  []xgb.Event{press(38, 20)},
			want: nil,
		},
		{
			name: "held release delivered",
			held: held(38, 20),
			raw:  nil,
			want: []xgb.Event{release(38, 20)},
		},
		{
			name: "held release before other key",
			held: held(38, 20),
			raw:  []xgb.Event{press(39, 20)},
			want: []xgb.Event{release(38, 20), press(39, 20)},
		},
		{
			name: "held release delivered before focus out",
			held: held(38, 20),
			raw:  []xgb.Event{focusOut},
			want: []xgb.Event{release(38, 20), focusOut},
		},
		{
			name:     "held release delivered and new one kept back",
			held:     held(38, 20),
			raw:      []xgb.Event{press(39, 25), release(39, 40)},
			want:     []xgb.Event{release(38, 20), press(39, 25)},
			wantHeld: held(39, 40),
		},
		{
			name: "release and press at different times",
			raw:  []xgb.Event{release(38, 20), press(38, 21), release(38, 22), focusOut},
			want: []xgb.Event{release(38, 20), press(38, 21), release(38, 22), focusOut},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, gotHeld := filterRepeats(tc.raw, tc.held)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantHeld, gotHeld); diff != "" {
				t.Errorf("held release mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

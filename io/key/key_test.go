// SPDX-License-Identifier: Unlicense OR MIT

package key

import "testing"

func TestOther(t *testing.T) {
	k := Other(0x1008ff13)
	code, ok := k.Code()
	if !ok || code != 0x1008ff13 {
		t.Errorf("Other(0x1008ff13).Code() = %#x, %v", code, ok)
	}
	if _, ok := W.Code(); ok {
		t.Errorf("W.Code() reported an Other key")
	}
	if Other(0) == Unknown {
		t.Errorf("Other(0) collides with Unknown")
	}
}

func TestStringParse(t *testing.T) {
	for k := Key(1); k < lastNamed; k++ {
		s := k.String()
		got, err := Parse(s)
		if err != nil {
			t.Errorf("Parse(%q): %v", s, err)
			continue
		}
		if got != k {
			t.Errorf("Parse(%q) = %v, want %v", s, got, k)
		}
	}
	k, err := Parse(Other(42).String())
	if err != nil || k != Other(42) {
		t.Errorf("Parse(Other) = %v, %v", k, err)
	}
	if k, err := Parse("lshift"); err != nil || k != LShift {
		t.Errorf("Parse(lshift) = %v, %v", k, err)
	}
	for _, bad := range []string{"", "Hyper", "Other(zz)", "Other(1"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded", bad)
		}
	}
}

func TestRanges(t *testing.T) {
	if k, ok := Letter('q'); !ok || k != Q {
		t.Errorf("Letter('q') = %v, %v", k, ok)
	}
	if k, ok := Letter('Z'); !ok || k != Z {
		t.Errorf("Letter('Z') = %v, %v", k, ok)
	}
	if _, ok := Letter('1'); ok {
		t.Errorf("Letter('1') succeeded")
	}
	if k, ok := Digit('7'); !ok || k != Num7 {
		t.Errorf("Digit('7') = %v, %v", k, ok)
	}
	if k, ok := Function(12); !ok || k != F12 {
		t.Errorf("Function(12) = %v, %v", k, ok)
	}
	if _, ok := Function(13); ok {
		t.Errorf("Function(13) succeeded")
	}
}

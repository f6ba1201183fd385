// SPDX-License-Identifier: Unlicense OR MIT

package pointer

import "testing"

func TestKindString(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		want string
	}{
		{Cancel, "Cancel"},
		{Press | Release, "Press|Release"},
		{CaptureLost, "CaptureLost"},
		{Leave | Suspended, "Leave|Suspended"},
	} {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("%d: got %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestKindEnds(t *testing.T) {
	for _, k := range []Kind{Cancel, Release, Leave, CaptureLost, Suspended} {
		if !k.Ends() {
			t.Errorf("%v does not end the pointer", k)
		}
	}
	for _, k := range []Kind{Press, Move, Enter, Scroll} {
		if k.Ends() {
			t.Errorf("%v ends the pointer", k)
		}
	}
}

func TestButtonsString(t *testing.T) {
	if got, want := (ButtonPrimary | ButtonTertiary).String(), "ButtonPrimary|ButtonTertiary"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

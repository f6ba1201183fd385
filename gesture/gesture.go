// SPDX-License-Identifier: Unlicense OR MIT

/*
Package gesture implements the interaction engine of the input router.

The router forwards the pointer events delivered to elements, and Tap
recognizes taps, double taps and holds among them. Pointers that move
further than the touch slop become manipulations and never tap.
*/
package gesture

import (
	"time"

	"golang.org/x/exp/slices"

	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

// Tap recognizes tap gestures and raises them as TapEvents on the
// element the pointer went down on.
type Tap struct {
	// Slop is the distance a pointer may travel and still tap. Zero
	// means DefaultSlop.
	Slop float32
	// HoldDuration is the press duration that turns a tap into a hold.
	// Zero means DefaultHoldDuration.
	HoldDuration time.Duration
	// DoubleTapDuration is the maximum delay between the taps of a
	// double tap. Zero means DefaultDoubleTapDuration.
	DoubleTapDuration time.Duration

	pointers []tapPointer
	// last is the last recognized tap, for double taps.
	last struct {
		valid  bool
		target event.Tag
		time   time.Duration
		pos    f32.Point
		count  int
	}
}

type tapPointer struct {
	id     pointer.ID
	target event.Tag
	start  pointer.Event
}

// TapEvent is a recognized tap.
type TapEvent struct {
	Kind      TapKind
	PointerID pointer.ID
	Source    pointer.Source
	Position  f32.Point
	// NumTaps is the number of taps in quick succession, including
	// this one.
	NumTaps int
}

type TapKind uint8

const (
	KindTap TapKind = iota
	// KindDoubleTap is reported for the second and later taps in
	// quick succession.
	KindDoubleTap
	// KindHold is reported when a pointer is released after
	// HoldDuration without moving.
	KindHold
)

const (
	DefaultSlop              = 10
	DefaultHoldDuration      = 800 * time.Millisecond
	DefaultDoubleTapDuration = 300 * time.Millisecond
)

// Pointer consumes a pointer event delivered to target and raises the
// recognized taps with r.
func (t *Tap) Pointer(target event.Tag, e pointer.Event, r event.Raiser) {
	i := slices.IndexFunc(t.pointers, func(p tapPointer) bool { return p.id == e.PointerID })
	switch e.Kind {
	case pointer.Press:
		if i != -1 || target == nil {
			return
		}
		if e.Source == pointer.Mouse && !e.Buttons.Contain(pointer.ButtonPrimary) {
			return
		}
		t.pointers = append(t.pointers, tapPointer{id: e.PointerID, target: target, start: e})
	case pointer.Move:
		if i == -1 {
			return
		}
		if !within(e.Position, t.pointers[i].start.Position, t.slop()) {
			// A manipulation, not a tap.
			t.drop(i)
		}
	case pointer.Release:
		if i == -1 {
			return
		}
		p := t.pointers[i]
		t.drop(i)
		t.recognize(p, e, r)
	case pointer.Cancel, pointer.CaptureLost, pointer.Suspended, pointer.Leave:
		if i != -1 {
			t.drop(i)
		}
	}
}

func (t *Tap) recognize(p tapPointer, e pointer.Event, r event.Raiser) {
	ev := TapEvent{
		Kind:      KindTap,
		PointerID: e.PointerID,
		Source:    e.Source,
		Position:  e.Position,
		NumTaps:   1,
	}
	if e.Time-p.start.Time >= t.holdDuration() {
		ev.Kind = KindHold
		t.last.valid = false
		r.Raise(p.target, ev, true)
		return
	}
	l := &t.last
	if l.valid && l.target == p.target && e.Time-l.time <= t.doubleTapDuration() && within(e.Position, l.pos, t.slop()) {
		ev.Kind = KindDoubleTap
		ev.NumTaps = l.count + 1
	}
	l.valid, l.target, l.time, l.pos, l.count = true, p.target, e.Time, e.Position, ev.NumTaps
	r.Raise(p.target, ev, true)
}

func (t *Tap) drop(i int) {
	t.pointers = slices.Delete(t.pointers, i, i+1)
}

// Pending reports whether pointer pid may still tap.
func (t *Tap) Pending(pid pointer.ID) bool {
	return slices.ContainsFunc(t.pointers, func(p tapPointer) bool { return p.id == pid })
}

func within(a, b f32.Point, dist float32) bool {
	d := a.Sub(b)
	return d.X*d.X+d.Y*d.Y <= dist*dist
}

func (t *Tap) slop() float32 {
	if t.Slop > 0 {
		return t.Slop
	}
	return DefaultSlop
}

func (t *Tap) holdDuration() time.Duration {
	if t.HoldDuration > 0 {
		return t.HoldDuration
	}
	return DefaultHoldDuration
}

func (t *Tap) doubleTapDuration() time.Duration {
	if t.DoubleTapDuration > 0 {
		return t.DoubleTapDuration
	}
	return DefaultDoubleTapDuration
}

func (TapEvent) ImplementsEvent() {}

func (k TapKind) String() string {
	switch k {
	case KindTap:
		return "Tap"
	case KindDoubleTap:
		return "DoubleTap"
	case KindHold:
		return "Hold"
	default:
		panic("invalid TapKind")
	}
}

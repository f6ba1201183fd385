// SPDX-License-Identifier: Unlicense OR MIT

// Package pointer contains the decoded platform pointer messages
// consumed by the input router, and the routed pointer events it
// raises on elements.
package pointer

import (
	"strings"
	"time"

	"gioui.org/manip/f32"
)

// Event is a decoded platform pointer message.
type Event struct {
	Kind   Kind
	Source Source
	// PointerID is the id for the pointer and can be used
	// to track a particular pointer from Press to
	// Release or Cancel. The manipulation engine uses the
	// same id as its contact id.
	PointerID ID
	// Time is when the event was received. The
	// timestamp is relative to an undefined base.
	Time time.Duration
	// Buttons are the set of pressed mouse buttons for this event.
	Buttons Buttons
	// Position is the coordinates of the event in window coordinates.
	Position f32.Point
	// Scroll is the scroll amount, if any.
	Scroll f32.Point
}

// RoutedEvent is raised on the element under a pointer and bubbles
// up the tree.
type RoutedEvent struct {
	Kind      Kind
	PointerID ID
	Source    Source
	Position  f32.Point
	// Handled is set by handlers to stop bubbling.
	Handled bool
}

type ID uint32

// Kind of an Event.
type Kind uint

// Source of an Event.
type Source uint8

// Buttons is a set of mouse buttons
type Buttons uint8

const (
	// A Cancel event is generated when the current gesture is
	// interrupted by other handlers or the system.
	Cancel Kind = 1 << iota
	// Press of a pointer.
	Press
	// Release of a pointer.
	Release
	// Move of a pointer.
	Move
	// Enter is raised when a pointer enters an element.
	Enter
	// Leave of a pointer, either from the window or from an element.
	Leave
	// Scroll of a pointer.
	Scroll
	// CaptureLost is generated when the element capturing
	// the pointer loses the capture.
	CaptureLost
	// Suspended is generated when the platform suspends delivery
	// for a pointer, typically because the manipulation engine
	// took it over.
	Suspended
)

const (
	// Mouse generated event.
	Mouse Source = iota
	// Touch generated event.
	Touch
	// Pen generated event.
	Pen
)

const (
	// ButtonPrimary is the primary button, usually the left button for a
	// right-handed user.
	ButtonPrimary Buttons = 1 << iota
	// ButtonSecondary is the secondary button, usually the right button for a
	// right-handed user.
	ButtonSecondary
	// ButtonTertiary is the tertiary button, usually the middle button.
	ButtonTertiary
)

// Ends reports whether k ends the association between a pointer
// and the elements tracking it.
func (k Kind) Ends() bool {
	return k&(Cancel|Release|Leave|CaptureLost|Suspended) != 0
}

func (t Kind) String() string {
	if t == Cancel {
		return "Cancel"
	}
	var buf strings.Builder
	for tt := Kind(1); tt > 0; tt <<= 1 {
		if t&tt > 0 {
			if buf.Len() > 0 {
				buf.WriteByte('|')
			}
			buf.WriteString((t & tt).string())
		}
	}
	return buf.String()
}

func (t Kind) string() string {
	switch t {
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Cancel:
		return "Cancel"
	case Move:
		return "Move"
	case Enter:
		return "Enter"
	case Leave:
		return "Leave"
	case Scroll:
		return "Scroll"
	case CaptureLost:
		return "CaptureLost"
	case Suspended:
		return "Suspended"
	default:
		panic("unknown Kind")
	}
}

func (s Source) String() string {
	switch s {
	case Mouse:
		return "Mouse"
	case Touch:
		return "Touch"
	case Pen:
		return "Pen"
	default:
		panic("unknown source")
	}
}

// Contain reports whether the set b contains
// all of the buttons.
func (b Buttons) Contain(buttons Buttons) bool {
	return b&buttons == buttons
}

func (b Buttons) String() string {
	var strs []string
	if b.Contain(ButtonPrimary) {
		strs = append(strs, "ButtonPrimary")
	}
	if b.Contain(ButtonSecondary) {
		strs = append(strs, "ButtonSecondary")
	}
	if b.Contain(ButtonTertiary) {
		strs = append(strs, "ButtonTertiary")
	}
	return strings.Join(strs, "|")
}

func (Event) ImplementsEvent() {}

func (*RoutedEvent) ImplementsEvent() {}

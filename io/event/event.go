// SPDX-License-Identifier: Unlicense OR MIT

// Package event contains types for event handling.
package event

// Tag is the stable identifier for an element of the visual tree.
// Tags are compared for identity; a Tag never owns the element it
// identifies.
type Tag interface{}

// Event is the marker interface for events.
type Event interface {
	ImplementsEvent()
}

// Raiser raises routed events on elements. A synchronous raise calls
// into application handlers before returning, and those handlers may
// modify the tree arbitrarily; callers must re-validate any element
// they hold across a synchronous Raise.
type Raiser interface {
	Raise(target Tag, e Event, sync bool)
}

// RaiserFunc adapts a function to the Raiser interface.
type RaiserFunc func(target Tag, e Event, sync bool)

func (f RaiserFunc) Raise(target Tag, e Event, sync bool) {
	f(target, e, sync)
}

// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

type raised struct {
	target event.Tag
	tap    TapEvent
}

func recorder(log *[]raised) event.Raiser {
	return event.RaiserFunc(func(target event.Tag, e event.Event, sync bool) {
		*log = append(*log, raised{target: target, tap: e.(TapEvent)})
	})
}

func touch(kind pointer.Kind, at time.Duration, x, y float32) pointer.Event {
	return pointer.Event{
		Kind:      kind,
		Source:    pointer.Touch,
		PointerID: 1,
		Time:      at,
		Position:  f32.Pt(x, y),
	}
}

func TestTap(t *testing.T) {
	var log []raised
	r := recorder(&log)
	var tap Tap
	tap.Pointer("button", touch(pointer.Press, 0, 10, 10), r)
	assert.True(t, tap.Pending(1))
	tap.Pointer("button", touch(pointer.Move, 10*time.Millisecond, 14, 12), r)
	tap.Pointer("button", touch(pointer.Release, 50*time.Millisecond, 14, 12), r)
	require.Len(t, log, 1)
	assert.Equal(t, "button", log[0].target)
	assert.Equal(t, KindTap, log[0].tap.Kind)
	assert.Equal(t, 1, log[0].tap.NumTaps)
	assert.False(t, tap.Pending(1))
}

func TestDoubleTap(t *testing.T) {
	var log []raised
	r := recorder(&log)
	var tap Tap
	tap.Pointer("button", touch(pointer.Press, 0, 10, 10), r)
	tap.Pointer("button", touch(pointer.Release, 50*time.Millisecond, 10, 10), r)
	tap.Pointer("button", touch(pointer.Press, 150*time.Millisecond, 12, 10), r)
	tap.Pointer("button", touch(pointer.Release, 200*time.Millisecond, 12, 10), r)
	require.Len(t, log, 2)
	assert.Equal(t, KindDoubleTap, log[1].tap.Kind)
	assert.Equal(t, 2, log[1].tap.NumTaps)

	// Too late for a third.
	tap.Pointer("button", touch(pointer.Press, time.Second, 12, 10), r)
	tap.Pointer("button", touch(pointer.Release, time.Second+10*time.Millisecond, 12, 10), r)
	require.Len(t, log, 3)
	assert.Equal(t, KindTap, log[2].tap.Kind)

	// A different target never double taps.
	tap.Pointer("other", touch(pointer.Press, time.Second+50*time.Millisecond, 12, 10), r)
	tap.Pointer("other", touch(pointer.Release, time.Second+60*time.Millisecond, 12, 10), r)
	require.Len(t, log, 4)
	assert.Equal(t, KindTap, log[3].tap.Kind)
	assert.Equal(t, "other", log[3].target)
}

func TestHold(t *testing.T) {
	var log []raised
	r := recorder(&log)
	tap := Tap{HoldDuration: 100 * time.Millisecond}
	tap.Pointer("button", touch(pointer.Press, 0, 10, 10), r)
	tap.Pointer("button", touch(pointer.Release, 100*time.Millisecond, 10, 10), r)
	require.Len(t, log, 1)
	assert.Equal(t, KindHold, log[0].tap.Kind)
}

func TestSlopTurnsIntoManipulation(t *testing.T) {
	var log []raised
	r := recorder(&log)
	var tap Tap
	tap.Pointer("list", touch(pointer.Press, 0, 10, 10), r)
	tap.Pointer("list", touch(pointer.Move, 10*time.Millisecond, 10, 40), r)
	assert.False(t, tap.Pending(1))
	tap.Pointer("list", touch(pointer.Release, 20*time.Millisecond, 10, 10), r)
	assert.Empty(t, log)
}

func TestTapInterrupted(t *testing.T) {
	for _, kind := range []pointer.Kind{pointer.Cancel, pointer.CaptureLost, pointer.Suspended, pointer.Leave} {
		var log []raised
		r := recorder(&log)
		var tap Tap
		tap.Pointer("button", touch(pointer.Press, 0, 10, 10), r)
		tap.Pointer("button", touch(kind, 10*time.Millisecond, 10, 10), r)
		tap.Pointer("button", touch(pointer.Release, 20*time.Millisecond, 10, 10), r)
		assert.Empty(t, log, "%v", kind)
	}
}

func TestMouseButtons(t *testing.T) {
	var log []raised
	r := recorder(&log)
	var tap Tap
	press := pointer.Event{Kind: pointer.Press, Source: pointer.Mouse, Buttons: pointer.ButtonSecondary}
	tap.Pointer("button", press, r)
	assert.False(t, tap.Pending(0))

	press.Buttons = pointer.ButtonPrimary
	tap.Pointer("button", press, r)
	assert.True(t, tap.Pending(0))
	tap.Pointer("button", pointer.Event{Kind: pointer.Release, Source: pointer.Mouse}, r)
	require.Len(t, log, 1)
	assert.Equal(t, pointer.Mouse, log[0].tap.Source)
}

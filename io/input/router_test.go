// SPDX-License-Identifier: Unlicense OR MIT

package input_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/manip"
	"gioui.org/manip/f32"
	"gioui.org/manip/gesture"
	"gioui.org/manip/internal/dmtest"
	"gioui.org/manip/io/event"
	"gioui.org/manip/io/input"
	"gioui.org/manip/io/pointer"
)

// recorder records raised events as "element:kind".
type recorder struct {
	events []string
	// handle, if set, is called for every routed event.
	handle func(target event.Tag, e *pointer.RoutedEvent)
}

func (r *recorder) Raise(target event.Tag, e event.Event, sync bool) {
	switch e := e.(type) {
	case *pointer.RoutedEvent:
		r.events = append(r.events, fmt.Sprintf("%v:%v", target, e.Kind))
		if r.handle != nil {
			r.handle(target, e)
		}
	case gesture.TapEvent:
		r.events = append(r.events, fmt.Sprintf("%v:%v", target, e.Kind))
	}
}

// of returns the recorded events of kind.
func (r *recorder) of(kind fmt.Stringer) []string {
	var evts []string
	for _, e := range r.events {
		if strings.HasSuffix(e, ":"+kind.String()) {
			evts = append(evts, e)
		}
	}
	return evts
}

type fixture struct {
	h                 *dmtest.Harness
	rec               *recorder
	tap               *gesture.Tap
	router            *input.Router
	sv, content, leaf *dmtest.Element
}

// newFixture builds a 100x100 scroller whose leaf covers its top left
// quarter.
func newFixture(t *testing.T, opts ...input.Option) *fixture {
	h := dmtest.NewHarness(t)
	sv, content, leaf := h.Scroller(nil, "sv")
	sv.Bounds = f32.Rect(0, 0, 100, 100)
	content.Bounds = f32.Rect(0, 0, 100, 100)
	leaf.Bounds = f32.Rect(0, 0, 50, 50)
	f := &fixture{
		h:       h,
		rec:     new(recorder),
		tap:     new(gesture.Tap),
		sv:      sv,
		content: content,
		leaf:    leaf,
	}
	all := []input.Option{
		input.WithLogger(testr.New(t)),
		input.WithInteractionEngine(f.tap),
	}
	f.router = input.NewRouter(h.Tree, f.rec, h.Manager, append(all, opts...)...)
	return f
}

func touch(kind pointer.Kind, pid pointer.ID, x, y float32) pointer.Event {
	return pointer.Event{
		Kind:      kind,
		Source:    pointer.Touch,
		PointerID: pid,
		Position:  f32.Pt(x, y),
	}
}

func mouse(kind pointer.Kind, x, y float32) pointer.Event {
	return pointer.Event{
		Kind:      kind,
		Source:    pointer.Mouse,
		PointerID: 1,
		Buttons:   pointer.ButtonPrimary,
		Position:  f32.Pt(x, y),
	}
}

func TestPressBubbles(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.router.Push(touch(pointer.Press, 1, 10, 10)))

	want := []string{"sv.leaf:Press", "sv.content:Press", "sv:Press", "root:Press"}
	if diff := cmp.Diff(want, f.rec.of(pointer.Press)); diff != "" {
		t.Errorf("press routing (-want +got):\n%s", diff)
	}
	want = []string{"sv.leaf:Enter", "sv.content:Enter", "sv:Enter", "root:Enter"}
	if diff := cmp.Diff(want, f.rec.of(pointer.Enter)); diff != "" {
		t.Errorf("enter (-want +got):\n%s", diff)
	}
	vp, ok := f.h.Manager.ViewportFor(f.sv, f.content)
	require.True(t, ok)
	assert.Equal(t, []pointer.ID{1}, vp.Contacts())
	assert.True(t, f.tap.Pending(1))
	e, ok := f.h.Manager.InteractionElement(1)
	assert.True(t, ok)
	assert.Equal(t, f.leaf, e)
}

func TestHandledStopsBubbling(t *testing.T) {
	f := newFixture(t)
	f.rec.handle = func(target event.Tag, e *pointer.RoutedEvent) {
		if target == f.content {
			e.Handled = true
		}
	}
	require.NoError(t, f.router.Push(touch(pointer.Press, 1, 10, 10)))
	assert.Equal(t, []string{"sv.leaf:Press", "sv.content:Press"}, f.rec.of(pointer.Press))
}

func TestPressHandlerRemovesElement(t *testing.T) {
	f := newFixture(t)
	f.rec.handle = func(target event.Tag, e *pointer.RoutedEvent) {
		if target == f.leaf && e.Kind == pointer.Press {
			require.NoError(t, f.router.ElementLeavingTree(f.leaf))
			f.h.Tree.Remove(f.leaf)
		}
	}
	require.NoError(t, f.router.Push(touch(pointer.Press, 1, 10, 10)))

	assert.Equal(t, []string{"sv.leaf:Press"}, f.rec.of(pointer.Press))
	assert.Empty(t, f.h.Manager.Viewports())
	assert.False(t, f.tap.Pending(1))
	_, ok := f.h.Manager.InteractionElement(1)
	assert.False(t, ok)
}

func TestReleaseCompletesManipulation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.router.Push(touch(pointer.Press, 1, 10, 10)))
	vp, ok := f.h.Manager.ViewportFor(f.sv, f.content)
	require.True(t, ok)
	require.NoError(t, f.router.Push(touch(pointer.Release, 1, 10, 10)))

	assert.Equal(t, []manip.State{manip.StateStarting, manip.StateCompleted}, f.sv.Container().States())
	assert.Empty(t, vp.Contacts())
	assert.Equal(t, []string{"sv.leaf:Release", "sv.content:Release", "sv:Release", "root:Release"}, f.rec.of(pointer.Release))
	// Released touch pointers leave.
	assert.Len(t, f.rec.of(pointer.Leave), 4)
	_, ok = f.h.Manager.InteractionElement(1)
	assert.False(t, ok)
}

func TestTap(t *testing.T) {
	f := newFixture(t)
	button := f.h.Tree.Add(f.h.Tree.Root, "button")
	button.Bounds = f32.Rect(200, 0, 250, 50)

	require.NoError(t, f.router.Push(touch(pointer.Press, 1, 210, 10)))
	assert.Empty(t, f.h.Manager.Viewports())
	require.NoError(t, f.router.Push(touch(pointer.Release, 1, 212, 11)))
	assert.Equal(t, []string{"button:Tap"}, f.rec.of(gesture.KindTap))
}

func TestFrameStartsManipulation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.router.Push(touch(pointer.Press, 1, 10, 10)))
	vp, ok := f.h.Manager.ViewportFor(f.sv, f.content)
	require.True(t, ok)

	f.h.Service(f.sv).Report(vp.ID(), manip.StatusEnabled, manip.StatusRunning)
	require.NoError(t, f.router.Frame())
	assert.Equal(t, manip.StateStarted, vp.State())

	// The pan moves beyond the tap slop.
	require.NoError(t, f.router.Push(touch(pointer.Move, 1, 10, 40)))
	assert.False(t, f.tap.Pending(1))
	require.NoError(t, f.router.Push(touch(pointer.Release, 1, 10, 40)))
	assert.Empty(t, f.rec.of(gesture.KindTap))
}

func TestCapture(t *testing.T) {
	f := newFixture(t)
	r := f.router
	assert.False(t, r.Capture(1, f.leaf), "no pointer")

	require.NoError(t, r.Push(mouse(pointer.Press, 10, 10)))
	assert.Empty(t, f.h.Manager.Viewports(), "mouse pointers never manipulate")
	require.True(t, r.Capture(1, f.leaf))
	c, ok := r.Captured(1)
	require.True(t, ok)
	assert.Equal(t, f.leaf, c)

	f.rec.events = nil
	require.NoError(t, r.Push(mouse(pointer.Move, 300, 300)))
	assert.Equal(t, []string{"sv.leaf:Leave", "sv.content:Leave", "sv:Leave", "root:Leave"}, f.rec.of(pointer.Leave))
	// Captured moves are routed from the capturing element.
	assert.Equal(t, []string{"sv.leaf:Move", "sv.content:Move", "sv:Move", "root:Move"}, f.rec.of(pointer.Move))

	f.rec.events = nil
	require.NoError(t, r.Push(mouse(pointer.Leave, 300, 300)))
	assert.Equal(t, []string{"sv.leaf:Leave"}, f.rec.of(pointer.Leave), "capture holder outside the entered elements")

	f.rec.events = nil
	require.NoError(t, r.Push(mouse(pointer.Release, 300, 300)))
	assert.Equal(t, []string{"sv.leaf:CaptureLost"}, f.rec.of(pointer.CaptureLost))
	_, ok = r.Captured(1)
	assert.False(t, ok)
}

func TestCaptureLeaveWhileOver(t *testing.T) {
	f := newFixture(t)
	r := f.router
	require.NoError(t, r.Push(touch(pointer.Press, 1, 10, 10)))
	require.True(t, r.Capture(1, f.leaf))

	f.rec.events = nil
	require.NoError(t, r.Push(touch(pointer.Leave, 1, 10, 10)))
	assert.Equal(t, []string{"sv.leaf:Leave", "sv.content:Leave", "sv:Leave", "root:Leave"}, f.rec.of(pointer.Leave))
}

func TestReleaseCapture(t *testing.T) {
	f := newFixture(t)
	r := f.router
	require.NoError(t, r.Push(touch(pointer.Press, 1, 10, 10)))
	vp, ok := f.h.Manager.ViewportFor(f.sv, f.content)
	require.True(t, ok)
	require.True(t, r.Capture(1, f.leaf))

	require.NoError(t, r.ReleaseCapture(1))
	assert.Equal(t, []string{"sv.leaf:CaptureLost"}, f.rec.of(pointer.CaptureLost))
	assert.Empty(t, vp.Contacts())
	assert.Equal(t, 1, f.h.Service(f.sv).Count("ReleaseContact"))
	assert.NoError(t, r.ReleaseCapture(1), "nothing captured")
}

func TestCancelAllPointers(t *testing.T) {
	f := newFixture(t)
	r := f.router
	require.NoError(t, r.Push(touch(pointer.Press, 1, 10, 10)))
	require.NoError(t, r.Push(touch(pointer.Press, 2, 20, 20)))
	vp, ok := f.h.Manager.ViewportFor(f.sv, f.content)
	require.True(t, ok)
	require.Equal(t, []pointer.ID{1, 2}, vp.Contacts())

	require.NoError(t, r.Push(pointer.Event{Kind: pointer.Cancel}))
	assert.Equal(t, []string{"sv.leaf:Cancel", "sv.leaf:Cancel"}, f.rec.of(pointer.Cancel))
	assert.Empty(t, vp.Contacts())
	assert.Equal(t, 2, f.h.Service(f.sv).Count("ReleaseContact"))
	assert.Equal(t, 1, f.sv.Container().Count(manip.StateCompleted))
	assert.False(t, f.tap.Pending(1))
	assert.False(t, f.tap.Pending(2))
}

func TestSuspended(t *testing.T) {
	f := newFixture(t)
	r := f.router
	require.NoError(t, r.Push(touch(pointer.Press, 1, 10, 10)))
	vp, ok := f.h.Manager.ViewportFor(f.sv, f.content)
	require.True(t, ok)

	require.NoError(t, r.Push(touch(pointer.Suspended, 1, 10, 10)))
	assert.False(t, f.tap.Pending(1))
	assert.Empty(t, vp.Contacts())
	assert.Zero(t, f.h.Service(f.sv).Count("ReleaseContact"), "the engine owns suspended contacts")
	require.NoError(t, r.Push(touch(pointer.Release, 1, 10, 10)))
	assert.Empty(t, f.rec.of(gesture.KindTap))
}

func TestManipulationHitTest(t *testing.T) {
	tests := []struct {
		name       string
		hitTest    bool
		source     pointer.Source
		outerBound bool
		innerBound bool
	}{
		{"disabled", false, pointer.Touch, true, true},
		{"touch", true, pointer.Touch, false, true},
		{"pen", true, pointer.Pen, true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, input.WithManipulationHitTest(tc.hitTest))
			inner, innerContent, innerLeaf := f.h.Scroller(f.leaf, "inner")
			for _, e := range []*dmtest.Element{inner, innerContent, innerLeaf} {
				e.Bounds = f32.Rect(0, 0, 50, 50)
			}
			e := touch(pointer.Press, 1, 10, 10)
			e.Source = tc.source
			require.NoError(t, f.router.Push(e))

			_, ok := f.h.Manager.ViewportFor(inner, innerContent)
			assert.Equal(t, tc.innerBound, ok)
			vp, ok := f.h.Manager.ViewportFor(f.sv, f.content)
			assert.Equal(t, tc.outerBound, ok && len(vp.Contacts()) > 0)
		})
	}
}

func TestFrameDropsRemovedElements(t *testing.T) {
	f := newFixture(t)
	r := f.router
	require.NoError(t, r.Push(touch(pointer.Press, 1, 10, 10)))
	require.True(t, r.Capture(1, f.leaf))

	require.NoError(t, r.ElementLeavingTree(f.sv))
	f.h.Tree.Remove(f.sv)
	require.NoError(t, r.Frame())
	_, ok := r.Captured(1)
	assert.False(t, ok)
	assert.Empty(t, f.h.Manager.Viewports())

	f.rec.events = nil
	require.NoError(t, r.Push(touch(pointer.Release, 1, 10, 10)))
	assert.Empty(t, f.rec.of(pointer.CaptureLost))
}

// SPDX-License-Identifier: Unlicense OR MIT

package dmtest

import (
	"sync/atomic"
	"testing"

	"github.com/go-logr/logr/testr"

	"gioui.org/manip"
)

// Declaration is a recorded compositor viewport declaration.
type Declaration struct {
	Viewport manip.ViewportID
	New      bool
}

// Compositor records declarations and tracks shared transforms. Tests
// advance Committed and Confirmed to simulate presented frames.
type Compositor struct {
	Declarations []Declaration
	Committed    uint64
	Confirmed    uint64
	// Shared holds the live shared transforms.
	Shared   map[manip.SharedTransform]manip.ContentID
	Released []manip.SharedTransform
	// Err, if set, is returned by CreateSharedTransform.
	Err error

	next manip.SharedTransform
}

func NewCompositor() *Compositor {
	return &Compositor{Shared: make(map[manip.SharedTransform]manip.ContentID)}
}

func (c *Compositor) DeclareNewViewport(id manip.ViewportID) {
	c.Declarations = append(c.Declarations, Declaration{Viewport: id, New: true})
}

func (c *Compositor) DeclareOldViewport(id manip.ViewportID) {
	c.Declarations = append(c.Declarations, Declaration{Viewport: id, New: false})
}

func (c *Compositor) CommittedBatch() uint64 {
	return c.Committed
}

func (c *Compositor) ConfirmedBatch() uint64 {
	return c.Confirmed
}

func (c *Compositor) CreateSharedTransform(id manip.ViewportID, content manip.ContentID, r manip.Relationship) (manip.SharedTransform, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	c.next++
	c.Shared[c.next] = content
	return c.next, nil
}

func (c *Compositor) ReleaseSharedTransform(t manip.SharedTransform) {
	delete(c.Shared, t)
	c.Released = append(c.Released, t)
}

// Present commits and confirms a frame.
func (c *Compositor) Present() {
	c.Committed++
	c.Confirmed = c.Committed
}

// Scheduler counts frame requests. It is safe for concurrent use.
type Scheduler struct {
	frames atomic.Int64
}

func (s *Scheduler) RequestAdditionalFrame() {
	s.frames.Add(1)
}

// Frames returns the number of requested frames.
func (s *Scheduler) Frames() int {
	return int(s.frames.Load())
}

// Harness wires a Manager to fresh fakes.
type Harness struct {
	Tree       *Tree
	Factory    *Factory
	Compositor *Compositor
	Scheduler  *Scheduler
	Manager    *manip.Manager
}

// NewHarness returns a Harness logging to t. Options are applied after
// the fakes are wired.
func NewHarness(t *testing.T, opts ...manip.Option) *Harness {
	h := &Harness{
		Tree:       NewTree(),
		Factory:    NewFactory(),
		Compositor: NewCompositor(),
		Scheduler:  new(Scheduler),
	}
	all := []manip.Option{
		manip.WithLogger(testr.NewWithOptions(t, testr.Options{Verbosity: 1})),
		manip.WithCompositor(h.Compositor),
		manip.WithScheduler(h.Scheduler),
	}
	h.Manager = manip.New(h.Tree, h.Factory, append(all, opts...)...)
	h.Factory.Sink = h.Manager
	return h
}

// Service returns the engine session of container, or nil.
func (h *Harness) Service(container *Element) *Service {
	return h.Factory.Services[container]
}

// Tick runs a frame and fails t on error.
func (h *Harness) Tick(t *testing.T) {
	t.Helper()
	if err := h.Manager.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if err := h.Manager.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

// Scroller builds root > scroller (container) > content > leaf and
// returns the container, its manipulated content and the leaf.
func (h *Harness) Scroller(parent *Element, name string) (*Element, *Element, *Element) {
	if parent == nil {
		parent = h.Tree.Root
	}
	sv, _ := h.Tree.AddContainer(parent, name)
	content := h.Tree.Add(sv, name+".content")
	leaf := h.Tree.Add(content, name+".leaf")
	return sv, content, leaf
}

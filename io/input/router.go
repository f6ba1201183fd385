// SPDX-License-Identifier: Unlicense OR MIT

package input

import (
	"errors"

	"github.com/go-logr/logr"
	"golang.org/x/exp/slices"

	"gioui.org/manip"
	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

// ContentRoot is the visual tree of a window as seen by the Router.
type ContentRoot interface {
	manip.Tree
	// HitTest returns the topmost element under p, or nil.
	HitTest(p f32.Point) event.Tag
}

// InteractionEngine recognizes gestures among the pointer events
// delivered to elements. [gioui.org/manip/gesture.Tap] is an
// implementation.
type InteractionEngine interface {
	Pointer(target event.Tag, e pointer.Event, r event.Raiser)
}

// Router routes pointer events from the platform to the elements of a
// ContentRoot and drives the manipulation Manager.
//
// All methods must be called from the UI goroutine. Event handlers run
// synchronously and may modify the tree; the Router re-validates every
// element it holds after raising an event.
type Router struct {
	root      ContentRoot
	raiser    event.Raiser
	manager   *manip.Manager
	engine    InteractionEngine
	log       logr.Logger
	dmHitTest bool
	pointers  []*pointerInfo
}

type pointerInfo struct {
	id      pointer.ID
	source  pointer.Source
	pressed bool
	// entered lists the elements the pointer is over, innermost
	// first.
	entered []event.Tag
	// handlers is the element chain the pointer went down on. Only
	// those elements see enter and leave while the pointer is pressed.
	handlers []event.Tag
	capture  event.Tag
	last     pointer.Event
}

// Option configures a Router.
type Option func(r *Router)

// WithLogger sets the logger of the Router.
func WithLogger(l logr.Logger) Option {
	return func(r *Router) {
		r.log = l
	}
}

// WithInteractionEngine sets the engine pointer events are forwarded to.
func WithInteractionEngine(e InteractionEngine) Option {
	return func(r *Router) {
		r.engine = e
	}
}

// WithManipulationHitTest makes touch presses bind only to the nearest
// manipulation viewport.
func WithManipulationHitTest(enable bool) Option {
	return func(r *Router) {
		r.dmHitTest = enable
	}
}

// NewRouter returns a Router raising events with raiser and driving m.
func NewRouter(root ContentRoot, raiser event.Raiser, m *manip.Manager, opts ...Option) *Router {
	r := &Router{
		root:    root,
		raiser:  raiser,
		manager: m,
		log:     logr.Discard(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Push routes a platform pointer event.
func (r *Router) Push(e pointer.Event) error {
	var err error
	switch e.Kind {
	case pointer.Cancel:
		err = r.cancel(e)
	case pointer.Press:
		err = r.press(e)
	case pointer.Move:
		r.move(e)
	case pointer.Release:
		err = r.release(e)
	case pointer.Leave:
		err = r.leave(e)
	case pointer.CaptureLost, pointer.Suspended:
		err = r.lost(e)
	case pointer.Scroll:
		r.scroll(e)
	}
	r.dropPointers()
	return err
}

func (r *Router) press(e pointer.Event) error {
	p := r.pointerOf(e)
	p.last = e
	p.pressed = true
	hit := r.root.HitTest(e.Position)
	p.handlers = r.chain(hit)
	r.enterLeave(p, e)
	if hit == nil || !r.alive(p) || !r.root.Live(hit) {
		return nil
	}
	r.route(hit, e)
	if !r.alive(p) || !r.root.Live(hit) {
		r.log.V(1).Info("press target gone after routing", "pointer", e.PointerID)
		return nil
	}
	// Mouse pointers never manipulate.
	if e.Source != pointer.Mouse {
		forHitTest := r.dmHitTest && e.Source == pointer.Touch
		if err := r.manager.InitializeContact(hit, e.PointerID, forHitTest); err != nil {
			return err
		}
	}
	if r.engine == nil || !r.root.Live(hit) {
		return nil
	}
	r.manager.SetInteractionElement(e.PointerID, hit)
	r.engine.Pointer(hit, e, r)
	return nil
}

func (r *Router) move(e pointer.Event) {
	p := r.pointerOf(e)
	p.last = e
	if e.Source == pointer.Mouse || p.pressed {
		r.enterLeave(p, e)
	}
	if !r.alive(p) {
		return
	}
	target := p.capture
	if target == nil {
		target = r.root.HitTest(e.Position)
	}
	if target != nil {
		r.route(target, e)
	}
	r.forward(e)
}

func (r *Router) release(e pointer.Event) error {
	p := r.pointerOf(e)
	p.last = e
	target := p.capture
	if target == nil {
		target = r.root.HitTest(e.Position)
	}
	if target != nil {
		r.route(target, e)
	}
	r.forward(e)
	r.manager.SetInteractionElement(e.PointerID, nil)
	err := r.manager.ReleaseContact(e.PointerID, pointer.Release)
	if !r.alive(p) {
		return err
	}
	p.pressed = false
	p.handlers = nil
	if c := p.capture; c != nil {
		p.capture = nil
		r.raise(c, pointer.CaptureLost, e)
	}
	if r.alive(p) && p.source != pointer.Mouse {
		r.enterLeave(p, e)
	}
	return err
}

// leave handles the pointer leaving the window.
func (r *Router) leave(e pointer.Event) error {
	p := r.pointerOf(e)
	p.last = e
	// && binds tighter than ||.
	if p.capture != nil && (p.capture != p.over() && p.over() == nil || !r.hasEntered(p, p.capture)) {
		// The capturing element is not among the entered ones and
		// would miss the leave.
		r.raise(p.capture, pointer.Leave, e)
	}
	if r.alive(p) {
		r.leaveAll(p, e)
	}
	return r.manager.ReleaseContact(e.PointerID, pointer.Leave)
}

func (r *Router) lost(e pointer.Event) error {
	p := r.pointerOf(e)
	p.last = e
	r.forward(e)
	r.manager.SetInteractionElement(e.PointerID, nil)
	if c := p.capture; c != nil {
		p.capture = nil
		r.raise(c, e.Kind, e)
	}
	if r.alive(p) {
		p.pressed = false
		p.handlers = nil
		if p.source != pointer.Mouse {
			r.leaveAll(p, e)
		}
	}
	return r.manager.ReleaseContact(e.PointerID, e.Kind)
}

// cancel cancels every pointer.
func (r *Router) cancel(e pointer.Event) error {
	var errs []error
	for _, p := range slices.Clone(r.pointers) {
		ce := p.last
		ce.Kind = pointer.Cancel
		ce.Time = e.Time
		target := p.capture
		if target == nil {
			target = p.over()
		}
		if target != nil {
			r.raise(target, pointer.Cancel, ce)
		}
		r.forward(ce)
		r.manager.SetInteractionElement(p.id, nil)
		if err := r.manager.ReleaseContact(p.id, pointer.Cancel); err != nil {
			errs = append(errs, err)
		}
	}
	r.pointers = nil
	return errors.Join(errs...)
}

func (r *Router) scroll(e pointer.Event) {
	if hit := r.root.HitTest(e.Position); hit != nil {
		r.route(hit, e)
	}
}

// forward passes e to the interaction engine if it tracks the pointer.
func (r *Router) forward(e pointer.Event) {
	if r.engine == nil {
		return
	}
	target, ok := r.manager.InteractionElement(e.PointerID)
	if !ok || !r.root.Live(target) {
		return
	}
	r.engine.Pointer(target, e, r)
}

// route raises e on target and bubbles it up the tree until a handler
// marks it handled or removes the element it is raised on.
func (r *Router) route(target event.Tag, e pointer.Event) {
	ev := &pointer.RoutedEvent{
		Kind:      e.Kind,
		PointerID: e.PointerID,
		Source:    e.Source,
		Position:  e.Position,
	}
	for t := target; t != nil && !ev.Handled; t = r.root.Parent(t) {
		if !r.root.Live(t) {
			return
		}
		r.raiser.Raise(t, ev, true)
		if !r.root.Live(t) {
			r.log.V(1).Info("element removed while routing", "kind", e.Kind, "pointer", e.PointerID)
			return
		}
	}
}

// raise raises a non-bubbling event of kind on target.
func (r *Router) raise(target event.Tag, kind pointer.Kind, e pointer.Event) {
	if !r.root.Live(target) {
		return
	}
	r.raiser.Raise(target, &pointer.RoutedEvent{
		Kind:      kind,
		PointerID: e.PointerID,
		Source:    e.Source,
		Position:  e.Position,
	}, true)
}

// Raise implements event.Raiser for the interaction engine. Events for
// elements no longer in the tree are dropped.
func (r *Router) Raise(target event.Tag, e event.Event, sync bool) {
	if target == nil || !r.root.Live(target) {
		return
	}
	r.raiser.Raise(target, e, sync)
}

// enterLeave updates the elements p is over and raises Leave and Enter
// on the difference.
func (r *Router) enterLeave(p *pointerInfo, e pointer.Event) {
	var hits []event.Tag
	if e.Source != pointer.Mouse && !p.pressed && e.Kind != pointer.Press {
		// Consider non-mouse pointers leaving when they're released.
	} else {
		for _, t := range r.chain(r.root.HitTest(e.Position)) {
			if p.pressed && !slices.Contains(p.handlers, t) {
				continue
			}
			hits = append(hits, t)
		}
	}
	old := p.entered
	p.entered = hits
	for _, t := range old {
		if !slices.Contains(hits, t) {
			r.raise(t, pointer.Leave, e)
		}
	}
	for _, t := range hits {
		if !slices.Contains(old, t) {
			r.raise(t, pointer.Enter, e)
		}
	}
}

func (r *Router) leaveAll(p *pointerInfo, e pointer.Event) {
	old := p.entered
	p.entered = nil
	for _, t := range old {
		r.raise(t, pointer.Leave, e)
	}
}

// chain returns e and its ancestors, innermost first.
func (r *Router) chain(e event.Tag) []event.Tag {
	var c []event.Tag
	for ; e != nil; e = r.root.Parent(e) {
		c = append(c, e)
	}
	return c
}

func (r *Router) hasEntered(p *pointerInfo, t event.Tag) bool {
	return slices.Contains(p.entered, t)
}

// over returns the innermost element p is over, or nil.
func (p *pointerInfo) over() event.Tag {
	if len(p.entered) == 0 {
		return nil
	}
	return p.entered[0]
}

func (r *Router) pointerOf(e pointer.Event) *pointerInfo {
	for _, p := range r.pointers {
		if p.id == e.PointerID {
			return p
		}
	}
	p := &pointerInfo{id: e.PointerID, source: e.Source}
	r.pointers = append(r.pointers, p)
	return p
}

// alive reports whether p survived the handlers called since it was
// looked up.
func (r *Router) alive(p *pointerInfo) bool {
	return slices.Contains(r.pointers, p)
}

func (r *Router) dropPointers() {
	r.pointers = slices.DeleteFunc(r.pointers, func(p *pointerInfo) bool {
		return !p.pressed && len(p.entered) == 0 && p.capture == nil
	})
}

// Capture directs the events of pointer pid to target until the pointer
// is released or ReleaseCapture is called. It reports whether the
// capture was taken; only pressed pointers can be captured.
func (r *Router) Capture(pid pointer.ID, target event.Tag) bool {
	for _, p := range r.pointers {
		if p.id != pid {
			continue
		}
		if !p.pressed || target == nil || !r.root.Live(target) {
			return false
		}
		p.capture = target
		return true
	}
	return false
}

// Captured returns the element capturing pid, if any.
func (r *Router) Captured(pid pointer.ID) (event.Tag, bool) {
	for _, p := range r.pointers {
		if p.id == pid && p.capture != nil {
			return p.capture, true
		}
	}
	return nil, false
}

// ReleaseCapture releases the capture of pid. The element that held it
// receives CaptureLost and any manipulation contact of pid is released.
func (r *Router) ReleaseCapture(pid pointer.ID) error {
	for _, p := range r.pointers {
		if p.id != pid || p.capture == nil {
			continue
		}
		c := p.capture
		p.capture = nil
		e := p.last
		e.PointerID = pid
		r.raise(c, pointer.CaptureLost, e)
		return r.manager.ReleaseContact(pid, pointer.CaptureLost)
	}
	return nil
}

// Frame runs the per tick pass: references to elements that left the
// tree are dropped and the manipulation Manager reconciles.
func (r *Router) Frame() error {
	dead := func(t event.Tag) bool { return !r.root.Live(t) }
	for _, p := range r.pointers {
		p.entered = slices.DeleteFunc(p.entered, dead)
		p.handlers = slices.DeleteFunc(p.handlers, dead)
		if p.capture != nil && !r.root.Live(p.capture) {
			p.capture = nil
		}
	}
	r.dropPointers()
	return r.manager.Tick()
}

// ElementLeavingTree releases the references to e and its descendants.
// It must be called before e is detached from its parent.
func (r *Router) ElementLeavingTree(e event.Tag) error {
	inside := func(t event.Tag) bool {
		for ; t != nil; t = r.root.Parent(t) {
			if t == e {
				return true
			}
		}
		return false
	}
	for _, p := range r.pointers {
		p.entered = slices.DeleteFunc(p.entered, inside)
		p.handlers = slices.DeleteFunc(p.handlers, inside)
		if p.capture != nil && inside(p.capture) {
			p.capture = nil
		}
	}
	r.dropPointers()
	return r.manager.ElementLeavingTree(e)
}

// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

// Manager owns the viewports, cross-slide viewports and contact
// bookkeeping of one content root, and reconciles them with the
// manipulation engine once per frame.
type Manager struct {
	tree       Tree
	services   serviceRegistry
	viewports  registry
	compositor Compositor
	scheduler  Scheduler
	cfg        Config
	log        logr.Logger

	crossSlides    []*CrossSlideViewport
	nextCrossSlide CrossSlideID
	nextContent    ContentID
	contacts       contactBook

	// inbox funnels engine notifications to the UI goroutine.
	inbox inbox
	// declarations are the pending compositor declarations.
	declarations []declaration
	// deferred are the secondary content handles waiting for the
	// compositor to present their last frame.
	deferred []deferredRelease

	// ticking is set while Tick runs.
	ticking bool
}

// inbox is the only Manager state touched off the UI goroutine.
type inbox struct {
	mu    sync.Mutex
	items []notification
}

type notification struct {
	id          ViewportID
	interaction bool
	old, new    Status
	itype       InteractionType
}

type declaration struct {
	id    ViewportID
	isNew bool
}

// New returns a Manager for the tree, creating engine sessions with
// services.
func New(tree Tree, services ServiceFactory, opts ...Option) *Manager {
	m := &Manager{
		tree:     tree,
		services: serviceRegistry{factory: services},
		cfg:      DefaultConfig(),
		log:      logr.Discard(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// OnViewportStatusChanged is called by the engine when the status of
// a viewport changes. It may be called from any goroutine; the change
// is processed by the next Tick.
func (m *Manager) OnViewportStatusChanged(id ViewportID, old, new Status) {
	m.inbox.push(notification{id: id, old: old, new: new})
	m.requestFrame()
}

// OnInteractionTypeChanged is called by the engine when an interaction
// begins, turns into a manipulation or ends. It may be called from any
// goroutine.
func (m *Manager) OnInteractionTypeChanged(id ViewportID, t InteractionType) {
	m.inbox.push(notification{id: id, interaction: true, itype: t})
	m.requestFrame()
}

func (b *inbox) push(n notification) {
	b.mu.Lock()
	b.items = append(b.items, n)
	b.mu.Unlock()
}

func (b *inbox) take() []notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items
	b.items = nil
	return items
}

// drainInbox moves the engine notifications to their viewport queues.
func (m *Manager) drainInbox() {
	for _, n := range m.inbox.take() {
		vp := m.viewports.get(n.id)
		if vp == nil || vp.unregistered {
			m.trace("dropped notification for stale viewport", "viewport", n.id)
			continue
		}
		if n.interaction {
			vp.interactions = append(vp.interactions, n.itype)
			continue
		}
		if n.old != vp.status {
			m.trace("status report out of sequence", "viewport", n.id, "reportedOld", n.old, "known", vp.status)
		}
		vp.statuses.Push(n.new)
		vp.status = n.new
		if m.ticking {
			vp.delayedStatusProcessing = true
		}
		m.trace("status queued", "viewport", n.id, "status", n.new, "pending", vp.statuses.Len())
	}
}

// Tick reconciles the queued engine notifications of every viewport,
// reports manipulation progress to containers and releases secondary
// content the compositor no longer presents. It must be called once
// per UI frame.
//
// Errors from one viewport do not stop the processing of others; all
// are returned joined.
func (m *Manager) Tick() error {
	if m.ticking {
		// A container callback pumped a frame. Leave the work to the
		// next one.
		m.drainInbox()
		m.requestFrame()
		return nil
	}
	m.ticking = true
	defer func() { m.ticking = false }()

	m.drainInbox()
	var errs []error
	if err := m.releaseDeferred(false, ViewportID{}); err != nil {
		errs = append(errs, err)
	}
	for _, id := range m.viewports.ids() {
		if err := m.processViewport(id); err != nil {
			errs = append(errs, fmt.Errorf("%v: %w", id, err))
		}
	}
	if err := m.unregisterPending(); err != nil {
		errs = append(errs, err)
	}
	m.flushDeclarations()
	if len(m.deferred) > 0 || m.inboxPending() {
		m.requestFrame()
	}
	return errors.Join(errs...)
}

func (m *Manager) inboxPending() bool {
	m.inbox.mu.Lock()
	defer m.inbox.mu.Unlock()
	return len(m.inbox.items) > 0
}

func (m *Manager) requestFrame() {
	if m.scheduler != nil {
		m.scheduler.RequestAdditionalFrame()
	}
}

// processViewport runs the per frame pass of one viewport.
func (m *Manager) processViewport(id ViewportID) error {
	m.processInteractions(id, preProcessing)
	if err := m.processStatuses(id); err != nil {
		return err
	}
	if vp := m.viewports.get(id); vp != nil && vp.startAbandoned() {
		// Released while the engine reported only inactive statuses.
		if err := m.completeManipulation(id, false); err != nil {
			return err
		}
	}
	if err := m.processChanges(id); err != nil {
		return err
	}
	m.processInteractions(id, postProcessing)
	if vp := m.viewports.get(id); vp != nil {
		if vp.delayedStatusProcessing && vp.statuses.Len() > 0 {
			m.requestFrame()
		}
		vp.delayedStatusProcessing = false
	}
	return nil
}

// unregisterPending unregisters the viewports marked for it once the
// engine has settled them.
func (m *Manager) unregisterPending() error {
	var errs []error
	for _, id := range m.viewports.ids() {
		vp := m.viewports.get(id)
		if vp == nil || !vp.needsUnregistration {
			continue
		}
		if vp.status.Active() || vp.statuses.Len() > 0 {
			continue
		}
		if err := m.unregisterViewport(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// containerOf returns the container callbacks of vp, or nil if the
// container left the tree.
func (m *Manager) containerOf(vp *Viewport) Container {
	if m.tree == nil || !m.tree.Live(vp.container) {
		return nil
	}
	return m.tree.Container(vp.container)
}

// alive resolves id, and returns nil if the viewport is unregistered or
// its element left the tree.
func (m *Manager) alive(id ViewportID) *Viewport {
	vp := m.viewports.get(id)
	if vp == nil || vp.unregistered || !m.tree.Live(vp.element) {
		return nil
	}
	return vp
}

// notify reports p to the container of viewport id. The container runs
// application code, so the viewport is re-resolved afterwards; notify
// returns nil if it is gone.
func (m *Manager) notify(id ViewportID, p Progress) *Viewport {
	vp := m.viewports.get(id)
	if vp == nil {
		return nil
	}
	vp.lastNotified = vp.current
	c := m.containerOf(vp)
	if c == nil {
		return m.alive(id)
	}
	m.trace("notify progress", "viewport", id, "state", p.State, "translation", p.Cumulative.Translation, "scale", p.Cumulative.Scale)
	el := vp.element
	c.NotifyManipulationProgress(el, p)
	return m.alive(id)
}

// notifyState is like notify, for interaction state changes.
func (m *Manager) notifyState(id ViewportID, s InteractionState) *Viewport {
	vp := m.viewports.get(id)
	if vp == nil {
		return nil
	}
	c := m.containerOf(vp)
	if c == nil {
		return m.alive(id)
	}
	el := vp.element
	c.NotifyManipulationStateChanged(el, s)
	return m.alive(id)
}

// declareNewViewport tells the compositor about the manipulation of vp,
// once per manipulation.
func (m *Manager) declareNewViewport(vp *Viewport) {
	if !m.cfg.CompositorAware || vp.hasNewManipulation {
		return
	}
	vp.compositorAware = true
	vp.hasNewManipulation = true
	vp.hasOldManipulation = false
	m.declarations = append(m.declarations, declaration{id: vp.id, isNew: true})
	m.tree.SetRequiresComposition(vp.element, true)
}

// declareOldViewport tells the compositor to stop tracking vp, once per
// declared manipulation.
func (m *Manager) declareOldViewport(vp *Viewport) {
	if !vp.hasNewManipulation || vp.hasOldManipulation {
		return
	}
	vp.hasOldManipulation = true
	vp.hasNewManipulation = false
	m.declarations = append(m.declarations, declaration{id: vp.id, isNew: false})
}

func (m *Manager) flushDeclarations() {
	decls := m.declarations
	m.declarations = nil
	if m.compositor == nil {
		return
	}
	for _, d := range decls {
		if d.isNew {
			m.compositor.DeclareNewViewport(d.id)
		} else {
			m.compositor.DeclareOldViewport(d.id)
		}
	}
}

func (m *Manager) trace(msg string, kv ...interface{}) {
	m.log.V(m.cfg.TraceLevel).Info(msg, kv...)
}

// isAncestor reports whether a is e or one of its ancestors.
func (m *Manager) isAncestor(a, e event.Tag) bool {
	if a == nil {
		return false
	}
	for ; e != nil; e = m.tree.Parent(e) {
		if e == a {
			return true
		}
	}
	return false
}

// Viewport returns the viewport for id, or nil if id is stale.
func (m *Manager) Viewport(id ViewportID) *Viewport {
	return m.viewports.get(id)
}

// ViewportFor returns the registered viewport of a container and
// manipulated element pair.
func (m *Manager) ViewportFor(container, element event.Tag) (*Viewport, bool) {
	vp := m.viewports.find(container, element)
	return vp, vp != nil
}

// Viewports returns the handles of the registered viewports, in
// registration order.
func (m *Manager) Viewports() []ViewportID {
	return m.viewports.ids()
}

// TrackedElement returns the element pid went down on.
func (m *Manager) TrackedElement(pid pointer.ID) (event.Tag, bool) {
	e, ok := m.contacts.tracked[pid]
	return e, ok
}

// InteractionElement returns the element the interaction engine tracks
// pid for.
func (m *Manager) InteractionElement(pid pointer.ID) (event.Tag, bool) {
	e, ok := m.contacts.interaction[pid]
	return e, ok
}

// SetInteractionElement records the element the interaction engine
// tracks pid for. A nil element clears it.
func (m *Manager) SetInteractionElement(pid pointer.ID, e event.Tag) {
	m.contacts.setInteraction(pid, e)
}

// CheckInvariants verifies the bookkeeping invariants of the Manager.
// It is meant to be called between frames, after Tick.
func (m *Manager) CheckInvariants() error {
	var errs []error
	type pair struct{ container, element event.Tag }
	seen := make(map[pair]ViewportID)
	for _, id := range m.viewports.ids() {
		vp := m.viewports.get(id)
		if vp.unregistered {
			errs = append(errs, fmt.Errorf("%v: unregistered viewport still registered", id))
		}
		settled := !vp.status.Active() && !vp.needsUnregistration && vp.state != StateStarting && !vp.completedSkipped
		if len(vp.contacts) > 0 && settled {
			errs = append(errs, fmt.Errorf("%v: contacts %v bound while %v in state %v", id, vp.contacts, vp.status, vp.state))
		}
		for _, pid := range vp.contacts {
			if !containsID(m.contacts.viewports[pid], id) {
				errs = append(errs, fmt.Errorf("%v: contact %d not in contact book", id, pid))
			}
		}
		if vp.needsUnregistration {
			continue
		}
		k := pair{vp.container, vp.element}
		if other, ok := seen[k]; ok {
			errs = append(errs, fmt.Errorf("%v: duplicates %v", id, other))
		}
		seen[k] = id
	}
	return errors.Join(errs...)
}

func containsID(ids []ViewportID, id ViewportID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

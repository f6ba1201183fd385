// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

// configKind selects one of the three configurations of a viewport.
type configKind uint8

const (
	configTouch configKind = iota
	configNonTouch
	configBringIntoView
)

// contactWalk is the state of one InitializeContact walk.
type contactWalk struct {
	pid        pointer.ID
	forHitTest bool
	// created lists the cross-slide viewports created by the walk.
	created       []CrossSlideID
	contactFailed bool
}

// InitializeContact binds pointer pid, which went down on hit, to the
// viewports of the manipulation containers above hit. If forHitTest is
// set, only the nearest viewport is bound.
//
// A contact the engine refuses is not an error; the walk stops and the
// cross-slide viewports it created are discarded.
func (m *Manager) InitializeContact(hit event.Tag, pid pointer.ID, forHitTest bool) error {
	if m.tree == nil || hit == nil || !m.tree.Live(hit) {
		return nil
	}
	m.contacts.track(pid, hit)
	w := &contactWalk{pid: pid, forHitTest: forHitTest}
	err := m.walkContact(w, hit)
	if err == nil && !w.contactFailed {
		err = m.startCrossSlideViewports(w)
	}
	if err != nil || w.contactFailed {
		if rerr := m.rollbackCrossSlides(w); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	return err
}

func (m *Manager) walkContact(w *contactWalk, hit event.Tag) error {
	inUse := true
	var child event.Tag
	for e := hit; e != nil; child, e = e, m.tree.Parent(e) {
		mode := m.tree.ManipulationMode(e)
		if m.cfg.CrossSlide {
			if c, ok := crossSlideConfiguration(mode, m.tree.Draggable(e)); ok {
				m.addCrossSlide(w, e, c)
			}
		}
		if child != nil && inUse && mode.Has(ModeSystem) && m.tree.Container(e) != nil {
			registered, failed, err := m.registerContact(w, e, child)
			if err != nil {
				return err
			}
			if failed {
				w.contactFailed = true
				m.trace("contact refused", "pointer", w.pid, "container", e)
				return nil
			}
			if registered && w.forHitTest {
				return nil
			}
		}
		if claimsManipulation(mode) {
			inUse = false
		}
	}
	return nil
}

// registerContact binds the walk's pointer to the viewport of element
// in container, creating the viewport if needed.
func (m *Manager) registerContact(w *contactWalk, container, element event.Tag) (registered, failed bool, err error) {
	c := m.tree.Container(container)
	if h, v := c.CanManipulateElements(); !h && !v {
		return false, false, nil
	}
	vp, err := m.ensureViewport(container, element)
	if err != nil || vp == nil {
		return false, false, err
	}
	id := vp.id
	if !vp.enabled {
		if err := m.enableViewport(vp); err != nil {
			return false, false, err
		}
	}
	// A mouse or keyboard manipulation switches to touch on its next
	// Running status.
	if !vp.touchConfigActivated && vp.touchConfig != 0 && !(vp.state.InProgress() && vp.nonTouchConfigActivated) {
		if _, err := m.activateConfiguration(vp, configTouch); err != nil {
			return false, false, err
		}
	}
	failure, err := vp.svc.SetContact(id, w.pid)
	if err != nil {
		return false, false, fmt.Errorf("manip: set contact: %w", err)
	}
	if failure {
		return false, true, nil
	}
	vp.addContact(w.pid)
	m.contacts.bind(w.pid, id)
	if vp.status == StatusInertia {
		vp.receivedContactInInertia = true
	}
	if w.forHitTest {
		vp.hasDMHitTestContact = true
	}
	m.trace("contact set", "viewport", id, "pointer", w.pid, "status", vp.status)
	if !vp.state.InProgress() {
		if err := m.startManipulation(id); err != nil {
			return true, false, err
		}
	}
	return true, false, nil
}

// ensureViewport returns the viewport of element in container, creating
// and registering it with the engine if needed. It returns nil if the
// container does not report element as manipulatable.
func (m *Manager) ensureViewport(container, element event.Tag) (*Viewport, error) {
	if vp := m.viewports.find(container, element); vp != nil {
		return vp, nil
	}
	if m.tree == nil || !m.tree.Live(container) || !m.tree.Live(element) {
		return nil, nil
	}
	c := m.tree.Container(container)
	if c == nil {
		return nil, nil
	}
	info, ok := c.ManipulationViewport(element)
	if !ok {
		return nil, nil
	}
	svc, err := m.services.ensure(container)
	if err != nil {
		return nil, err
	}
	vp := newViewport(container, element, svc)
	id := m.viewports.add(vp)
	if err := svc.RegisterViewport(id); err != nil {
		m.viewports.remove(id)
		return nil, fmt.Errorf("manip: register viewport: %w", err)
	}
	m.log.Info("viewport registered", "viewport", id, "container", container, "element", element)
	// Reconcile from the status the engine starts the viewport in.
	if st, err := svc.ViewportStatus(id); err != nil {
		m.log.Error(err, "viewport status", "viewport", id)
	} else {
		vp.status, vp.oldStatus = st, st
	}
	if err := m.applyConfiguration(vp, c, info); err != nil {
		return nil, err
	}
	c.SetManipulationHandlerWantsNotifications(element, true)
	return vp, nil
}

// applyConfiguration pushes the container's view of vp to the engine.
func (m *Manager) applyConfiguration(vp *Viewport, c Container, info ViewportInfo) error {
	id, svc := vp.id, vp.svc
	vp.touchConfig = info.TouchConfiguration
	vp.nonTouchConfig = info.NonTouchConfiguration
	vp.bringIntoViewConfig = info.BringIntoViewConfiguration
	var offset f32.Point
	cfgs := vp.configurations()
	for _, cfg := range slices.Clone(vp.addedConfigs) {
		if slices.Contains(cfgs, cfg) {
			continue
		}
		if err := svc.RemoveViewportConfiguration(id, cfg); err != nil {
			return fmt.Errorf("manip: remove configuration %v: %w", cfg, err)
		}
		i := slices.Index(vp.addedConfigs, cfg)
		vp.addedConfigs = slices.Delete(vp.addedConfigs, i, i+1)
	}
	for _, cfg := range cfgs {
		if slices.Contains(vp.addedConfigs, cfg) {
			continue
		}
		if err := svc.AddViewportConfiguration(id, cfg); err != nil {
			return fmt.Errorf("manip: add configuration %v: %w", cfg, err)
		}
		vp.addedConfigs = append(vp.addedConfigs, cfg)
	}
	if !info.Bounds.Empty() {
		if err := svc.SetViewportBounds(id, info.Bounds); err != nil {
			return fmt.Errorf("manip: set viewport bounds: %w", err)
		}
		vp.bounds = info.Bounds
		vp.hasValidBounds = true
	}
	if err := svc.SetViewportChaining(id, info.ChainedMotion); err != nil {
		return fmt.Errorf("manip: set chaining: %w", err)
	}
	vp.chainedMotion = info.ChainedMotion

	if content, ok := c.ManipulationPrimaryContent(vp.element); ok {
		if err := svc.SetContentBounds(id, content.Bounds); err != nil {
			return fmt.Errorf("manip: set content bounds: %w", err)
		}
		vp.contentBounds = content.Bounds
		if err := svc.SetContentAlignment(id, content.Alignment); err != nil {
			return fmt.Errorf("manip: set content alignment: %w", err)
		}
		vp.alignment = content.Alignment
		lo, hi := content.MinZoom, content.MaxZoom
		if lo <= 0 || hi < lo {
			lo, hi = 1, 1
		}
		if err := svc.SetPrimaryContentZoomBoundaries(id, lo, hi); err != nil {
			return fmt.Errorf("manip: set zoom boundaries: %w", err)
		}
		vp.minZoom, vp.maxZoom = lo, hi
		vp.translationAdjustment = content.TranslationAdjustment
		offset = content.Offset
	}
	vp.center = vp.bounds.Center().Sub(offset)
	for _, mo := range []Motion{MotionPanX, MotionPanY, MotionZoom} {
		sp, ok := c.ManipulationSnapPoints(vp.element, mo)
		if !ok {
			continue
		}
		if err := svc.SetPrimaryContentSnapPoints(id, mo, sp); err != nil {
			return fmt.Errorf("manip: set snap points %v: %w", mo, err)
		}
	}
	return nil
}

func (m *Manager) enableViewport(vp *Viewport) error {
	if err := vp.svc.EnableViewport(vp.id); err != nil {
		return fmt.Errorf("manip: enable viewport: %w", err)
	}
	vp.enabled = true
	return nil
}

// activateConfiguration switches vp to one of its configurations. The
// engine may refuse, in which case nothing is marked activated.
func (m *Manager) activateConfiguration(vp *Viewport, k configKind) (bool, error) {
	var c Configuration
	switch k {
	case configTouch:
		c = vp.touchConfig
	case configNonTouch:
		c = vp.nonTouchConfig
	case configBringIntoView:
		c = vp.bringIntoViewConfig
	}
	ok, err := vp.svc.ActivateViewportConfiguration(vp.id, c)
	if err != nil {
		return false, fmt.Errorf("manip: activate configuration %v: %w", c, err)
	}
	if !ok {
		m.trace("configuration not activated", "viewport", vp.id, "configuration", c)
		return false, nil
	}
	vp.touchConfigActivated = k == configTouch
	vp.nonTouchConfigActivated = k == configNonTouch
	vp.bringIntoViewConfigActivated = k == configBringIntoView
	return true, nil
}

// activateIdleConfiguration switches vp to its non-touch configuration
// while no contact drives it.
func (m *Manager) activateIdleConfiguration(vp *Viewport) error {
	if len(vp.contacts) > 0 || vp.nonTouchConfigActivated || vp.nonTouchConfig == 0 {
		return nil
	}
	if vp.unregistered || vp.needsUnregistration {
		return nil
	}
	_, err := m.activateConfiguration(vp, configNonTouch)
	return err
}

// startManipulation moves viewport id to Starting, with the engine's
// current transform as initial transform.
func (m *Manager) startManipulation(id ViewportID) error {
	vp := m.viewports.get(id)
	if vp == nil {
		return nil
	}
	t, err := vp.svc.PrimaryContentTransform(id)
	if err != nil {
		return fmt.Errorf("manip: primary content transform: %w", err)
	}
	m.startManipulationAt(vp, t)
	return nil
}

func (m *Manager) startManipulationAt(vp *Viewport, initial f32.Transform) *Viewport {
	m.declareNewViewport(vp)
	vp.initial = initial
	vp.current = initial
	vp.state = StateStarting
	vp.completedSkipped = false
	vp.startDeferredByChaining = false
	for _, c := range vp.allContents() {
		c.initial = c.current
	}
	return m.notify(vp.id, vp.progress(StateStarting))
}

// ReleaseContact unbinds pid from every viewport after the pointer went
// up, left, or was cancelled. The engine is told only about
// cancellations; it tracks regular releases itself.
func (m *Manager) ReleaseContact(pid pointer.ID, reason pointer.Kind) error {
	m.drainInbox()
	var errs []error
	for _, id := range m.contacts.viewportsFor(pid) {
		m.contacts.unbind(pid, id)
		vp := m.viewports.get(id)
		if vp == nil || !vp.removeContact(pid) {
			continue
		}
		if reason == pointer.Cancel || reason == pointer.CaptureLost {
			if err := vp.svc.ReleaseContact(id, pid); err != nil {
				errs = append(errs, fmt.Errorf("manip: release contact: %w", err))
				continue
			}
		}
		m.trace("contact released", "viewport", id, "pointer", pid, "reason", reason)
		if vp.startAbandoned() {
			if err := m.completeManipulation(id, false); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := m.discardCrossSlides(func(cs *CrossSlideViewport) bool { return cs.pointer == pid }); err != nil {
		errs = append(errs, err)
	}
	m.contacts.forget(pid)
	return errors.Join(errs...)
}

// startAbandoned reports whether vp lost its last contact before the
// engine became active for it, with no statuses left to reconcile.
func (vp *Viewport) startAbandoned() bool {
	return vp.state == StateStarting && len(vp.contacts) == 0 &&
		!vp.status.Active() && vp.statuses.Len() == 0 && !vp.startDeferredByChaining
}

// CompleteManipulation completes the manipulation of viewport id. It
// does nothing if no manipulation is in progress.
func (m *Manager) CompleteManipulation(id ViewportID) error {
	return m.completeManipulation(id, false)
}

func (m *Manager) completeManipulation(id ViewportID, keepContacts bool) error {
	vp := m.viewports.get(id)
	if vp == nil || !vp.state.InProgress() {
		return nil
	}
	return m.finishManipulation(id, keepContacts)
}

// finishManipulation reports the last delta, if any, and the completion
// of the manipulation of id.
func (m *Manager) finishManipulation(id ViewportID, keepContacts bool) error {
	vp := m.viewports.get(id)
	if vp == nil {
		return nil
	}
	if vp.state != StateStarting && !vp.unregistered {
		t, err := vp.svc.PrimaryContentTransform(id)
		if err != nil {
			return fmt.Errorf("manip: primary content transform: %w", err)
		}
		if !t.Equal(vp.lastNotified) {
			vp.current = t
			vp.state = StateLastDelta
			if vp = m.notify(id, vp.progress(StateLastDelta)); vp == nil {
				return nil
			}
		}
	}
	vp.state = StateCompleted
	vp.completedSkipped = false
	vp.completedDelayedByConstantVelocity = false
	vp.startDeferredByChaining = false
	vp.hasDMHitTestContact = false
	if !keepContacts {
		vp.receivedContactInInertia = false
	}
	if vp = m.notify(id, vp.progress(StateCompleted)); vp == nil {
		return nil
	}
	var errs []error
	if !keepContacts {
		for _, pid := range slices.Clone(vp.contacts) {
			if err := vp.svc.ReleaseContact(id, pid); err != nil {
				errs = append(errs, fmt.Errorf("manip: release contact: %w", err))
			}
			vp.removeContact(pid)
			m.contacts.unbind(pid, id)
		}
		if err := m.activateIdleConfiguration(vp); err != nil {
			errs = append(errs, err)
		}
	}
	m.declareOldViewport(vp)
	if vp.needsBringIntoViewport {
		vp.needsBringIntoViewport = false
		if c := m.containerOf(vp); c != nil {
			el := vp.element
			c.NotifyBringIntoViewportNeeded(el)
			if vp = m.alive(id); vp == nil {
				return errors.Join(errs...)
			}
		}
	}
	if err := m.completeParents(vp); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// completeParents completes the viewports above child whose completion
// was skipped while child was running.
func (m *Manager) completeParents(child *Viewport) error {
	container := child.container
	var errs []error
	for _, id := range m.viewports.ids() {
		p := m.viewports.get(id)
		if p == nil || p.id == child.id || !p.completedSkipped {
			continue
		}
		if p.status.Active() || !p.state.InProgress() || !m.isAncestor(p.element, container) {
			continue
		}
		if m.chainingChild(p, false) != nil {
			continue
		}
		m.trace("completing parent", "viewport", id, "child", child.id)
		if err := m.completeManipulation(id, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// UpdateViewport refreshes the engine configuration of the viewport of
// element in container after a layout change, and re-enables it.
func (m *Manager) UpdateViewport(container, element event.Tag) error {
	vp := m.viewports.find(container, element)
	if vp == nil {
		return nil
	}
	c := m.containerOf(vp)
	if c == nil {
		return nil
	}
	info, ok := c.ManipulationViewport(element)
	if !ok {
		return m.SetCanManipulate(container, element, false)
	}
	if err := m.applyConfiguration(vp, c, info); err != nil {
		return err
	}
	if t, ok := c.ManipulationPrimaryContentTransform(element); ok {
		switch {
		case vp.state.InProgress():
			vp.needsBringIntoViewport = true
		case !t.Equal(vp.current):
			if err := vp.svc.SetPrimaryContentTransform(vp.id, t); err != nil {
				return fmt.Errorf("manip: set primary content transform: %w", err)
			}
			vp.initial, vp.current, vp.lastNotified = t, t, t
		}
	}
	if !vp.state.InProgress() {
		if err := m.activateIdleConfiguration(vp); err != nil {
			return err
		}
	}
	if vp.enabled {
		vp.removedRunningStatuses++
	}
	return m.enableViewport(vp)
}

// BringIntoViewport moves bounds of the content of element into view.
func (m *Manager) BringIntoViewport(container, element event.Tag, bounds f32.Rectangle, animate bool) error {
	vp, err := m.ensureViewport(container, element)
	if err != nil || vp == nil {
		return err
	}
	if !vp.enabled {
		if err := m.enableViewport(vp); err != nil {
			return err
		}
	}
	switch {
	case animate:
		if !vp.state.InProgress() && !vp.bringIntoViewConfigActivated && vp.bringIntoViewConfig != 0 {
			if _, err := m.activateConfiguration(vp, configBringIntoView); err != nil {
				return err
			}
		}
	case !vp.state.InProgress():
		// The engine reports a Running status for the jump.
		vp.ignoredRunningStatuses++
	}
	if err := vp.svc.BringIntoViewport(vp.id, bounds, animate); err != nil {
		return fmt.Errorf("manip: bring into viewport: %w", err)
	}
	return nil
}

// SetCanManipulate reports a change in the manipulatability of element.
// A viewport that is no longer manipulatable is stopped, and
// unregistered once the engine reports it inactive.
func (m *Manager) SetCanManipulate(container, element event.Tag, can bool) error {
	vp := m.viewports.find(container, element)
	if vp == nil {
		return nil
	}
	if can {
		return m.UpdateViewport(container, element)
	}
	if vp.status.Active() || vp.statuses.Len() > 0 {
		vp.needsUnregistration = true
		m.requestFrame()
		if err := vp.svc.StopViewport(vp.id); err != nil {
			return fmt.Errorf("manip: stop viewport: %w", err)
		}
		return nil
	}
	return m.unregisterViewport(vp.id)
}

// unregisterViewport releases everything the engine and compositor hold
// for id. It does nothing for stale handles.
func (m *Manager) unregisterViewport(id ViewportID) error {
	vp := m.viewports.get(id)
	if vp == nil || vp.unregistered {
		return nil
	}
	var errs []error
	if err := m.releaseDeferred(true, id); err != nil {
		errs = append(errs, err)
	}
	for _, c := range vp.allContents() {
		if err := m.releaseContent(vp, c); err != nil {
			errs = append(errs, err)
		}
	}
	vp.contents, vp.clipContents = nil, nil
	for _, pid := range vp.contacts {
		m.contacts.unbind(pid, id)
	}
	vp.contacts = nil
	m.declareOldViewport(vp)
	if vp.enabled {
		if err := vp.svc.DisableViewport(id); err != nil {
			errs = append(errs, fmt.Errorf("manip: disable viewport: %w", err))
		}
		vp.enabled = false
	}
	for _, cfg := range vp.addedConfigs {
		if err := vp.svc.RemoveViewportConfiguration(id, cfg); err != nil {
			errs = append(errs, fmt.Errorf("manip: remove configuration %v: %w", cfg, err))
		}
	}
	vp.addedConfigs = nil
	if err := vp.svc.UnregisterViewport(id); err != nil {
		errs = append(errs, fmt.Errorf("manip: unregister viewport: %w", err))
	}
	vp.unregistered = true
	m.viewports.remove(id)
	m.tree.SetRequiresComposition(vp.element, false)
	if c := m.containerOf(vp); c != nil {
		c.SetManipulationHandlerWantsNotifications(vp.element, false)
	}
	m.log.Info("viewport unregistered", "viewport", id)
	return errors.Join(errs...)
}

// ContainerDestroyed releases the viewports and the engine session of a
// container.
func (m *Manager) ContainerDestroyed(container event.Tag) error {
	var errs []error
	for _, id := range m.viewports.ids() {
		if vp := m.viewports.get(id); vp != nil && vp.container == container {
			if err := m.unregisterViewport(id); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := m.discardCrossSlides(func(cs *CrossSlideViewport) bool {
		return cs.container == container || cs.element == container
	}); err != nil {
		errs = append(errs, err)
	}
	if err := m.services.release(container); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ElementLeavingTree releases everything bound to e or its descendants.
// It must be called before e is detached from its parent.
func (m *Manager) ElementLeavingTree(e event.Tag) error {
	if m.tree == nil || e == nil {
		return nil
	}
	inside := func(x event.Tag) bool { return m.isAncestor(e, x) }
	var errs []error
	for _, id := range m.viewports.ids() {
		vp := m.viewports.get(id)
		if vp == nil || !(inside(vp.container) || inside(vp.element)) {
			continue
		}
		if err := m.unregisterViewport(id); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.discardCrossSlides(func(cs *CrossSlideViewport) bool { return inside(cs.element) }); err != nil {
		errs = append(errs, err)
	}
	m.contacts.dropElements(inside)
	for _, c := range m.services.containers() {
		if !inside(c) {
			continue
		}
		if err := m.services.release(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CancelManipulations stops the manipulations of the viewports hosted by
// e and its ancestors. Viewports without an active manipulation are left
// alone.
func (m *Manager) CancelManipulations(e event.Tag) error {
	if m.tree == nil {
		return nil
	}
	var errs []error
	for a := e; a != nil; a = m.tree.Parent(a) {
		if m.tree.Container(a) == nil {
			continue
		}
		for _, id := range m.viewports.ids() {
			vp := m.viewports.get(id)
			if vp == nil || vp.container != a {
				continue
			}
			if !vp.state.InProgress() && len(vp.contacts) == 0 && !vp.status.Active() {
				continue
			}
			if err := m.cancelViewport(id); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) cancelViewport(id ViewportID) error {
	vp := m.viewports.get(id)
	m.log.Info("cancelling manipulation", "viewport", id, "status", vp.status, "state", vp.state)
	if err := vp.svc.DisableViewport(id); err != nil {
		return fmt.Errorf("manip: disable viewport: %w", err)
	}
	vp.enabled = false
	if err := vp.svc.ReleaseAllContacts(id); err != nil {
		return fmt.Errorf("manip: release all contacts: %w", err)
	}
	for _, pid := range vp.contacts {
		m.contacts.unbind(pid, id)
	}
	vp.contacts = nil
	vp.statuses.Clear()
	vp.oldStatus = StatusDisabled
	vp.status = StatusDisabled
	vp.receivedContactInInertia = false
	if err := m.completeManipulation(id, false); err != nil {
		return err
	}
	if vp = m.viewports.get(id); vp == nil {
		return nil
	}
	return m.enableViewport(vp)
}

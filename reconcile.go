// SPDX-License-Identifier: Unlicense OR MIT

package manip

import "fmt"

// processStatuses reconciles the queued statuses of viewport id, oldest
// first, and derives the manipulation state changes containers see.
func (m *Manager) processStatuses(id ViewportID) error {
	vp := m.viewports.get(id)
	if vp == nil || vp.statuses.Len() == 0 {
		return nil
	}
	queued := vp.statuses.Statuses()
	res := collapseTransitions(vp.oldStatus, queued, collapseInput{
		contactInInertia: vp.receivedContactInInertia,
		removedRunning:   vp.removedRunningStatuses,
		completedSkipped: vp.completedSkipped,
	})
	if n := len(queued) - len(res.statuses); n > 0 || res.dropOld {
		m.trace("statuses collapsed", "viewport", id, "from", queued, "to", res.statuses,
			"readyExcursions", res.readyExcursions, "inertiaRunnings", res.inertiaRunnings,
			"enableRuns", res.enableRuns, "dropOld", res.dropOld)
	}
	// Statuses reported by callouts below stay queued for the next pass.
	vp.statuses.drop(len(queued))
	resets := vp.statuses.resets
	vp.removedRunningStatuses = res.removedRunning
	prev := vp.oldStatus
	if res.dropOld {
		prev = vp.lastActive
		vp.completedSkipped = false
	}
	for _, s := range res.statuses {
		vp.oldStatus = s
		if s.Active() {
			vp.lastActive = s
		}
		ignored, err := m.processStatusUpdate(id, prev, s)
		if err != nil {
			return err
		}
		if vp = m.viewports.get(id); vp == nil {
			return nil
		}
		if vp.statuses.resets != resets {
			// The viewport was cancelled; the rest of the batch is stale.
			return nil
		}
		if !ignored {
			prev = s
		}
	}
	return nil
}

// processStatusUpdate handles one status transition. It reports whether
// the new status was ignored.
func (m *Manager) processStatusUpdate(id ViewportID, old, new Status) (bool, error) {
	vp := m.viewports.get(id)
	m.trace("status update", "viewport", id, "old", old, "new", new, "state", vp.state)
	if old == StatusAutoRunning || new == StatusAutoRunning {
		return false, m.processConstantVelocityStatus(id, old, new)
	}
	if new == StatusRunning && vp.ignoredRunningStatuses > 0 {
		vp.ignoredRunningStatuses--
		m.trace("running status ignored", "viewport", id, "remaining", vp.ignoredRunningStatuses)
		if vp.ignoredRunningStatuses == 0 {
			return true, m.refreshTransforms(vp)
		}
		return true, nil
	}
	switch {
	case !old.Active() && new.Active():
		return false, m.becomeActive(id, new)
	case old.Active() && new.Active():
		return false, m.stayActive(id, old, new)
	case old.Active() && !new.Active():
		return false, m.becomeInactive(id)
	}
	return false, nil
}

func (m *Manager) becomeActive(id ViewportID, s Status) error {
	vp := m.viewports.get(id)
	if err := m.switchToTouch(vp, s); err != nil {
		return err
	}
	if child := m.chainingChild(vp, true); child != nil {
		vp.startDeferredByChaining = true
		m.trace("start deferred by chaining", "viewport", id, "child", child.id)
		return nil
	}
	if !vp.state.InProgress() {
		if err := m.startManipulation(id); err != nil {
			return err
		}
		if vp = m.alive(id); vp == nil {
			return nil
		}
	}
	m.markStarted(vp)
	return nil
}

// switchToTouch activates the touch configuration of vp when a contact
// joined a manipulation started with mouse or keyboard.
func (m *Manager) switchToTouch(vp *Viewport, s Status) error {
	if s != StatusRunning || len(vp.contacts) == 0 || vp.touchConfigActivated || vp.touchConfig == 0 {
		return nil
	}
	m.trace("switching to touch configuration", "viewport", vp.id)
	_, err := m.activateConfiguration(vp, configTouch)
	return err
}

// markStarted moves a Starting viewport to Started.
func (m *Manager) markStarted(vp *Viewport) *Viewport {
	if vp.state != StateStarting {
		return vp
	}
	vp.state = StateStarted
	return m.notify(vp.id, vp.progress(StateStarted))
}

func (m *Manager) stayActive(id ViewportID, old, new Status) error {
	vp := m.viewports.get(id)
	if err := m.switchToTouch(vp, new); err != nil {
		return err
	}
	if old == StatusInertia && new == StatusRunning && vp.receivedContactInInertia {
		// A contact caught the content during inertia.
		vp.receivedContactInInertia = false
		if err := m.completeManipulation(id, true); err != nil {
			return err
		}
		if vp = m.alive(id); vp == nil {
			return nil
		}
		if err := m.startManipulation(id); err != nil {
			return err
		}
		if vp = m.alive(id); vp == nil {
			return nil
		}
	}
	m.markStarted(vp)
	return nil
}

func (m *Manager) becomeInactive(id ViewportID) error {
	vp := m.viewports.get(id)
	vp.startDeferredByChaining = false
	if !vp.state.InProgress() {
		return nil
	}
	if child := m.chainingChild(vp, false); child != nil {
		vp.completedSkipped = true
		m.trace("completion skipped by chaining", "viewport", id, "child", child.id)
		return nil
	}
	return m.completeManipulation(id, false)
}

// chainingChild returns a viewport below parent that chains motion to
// it and is manipulated. For starts, a child counts if it is active
// and has claimed the manipulation; otherwise it counts while Running.
func (m *Manager) chainingChild(parent *Viewport, forStart bool) *Viewport {
	if !m.cfg.Chaining {
		return nil
	}
	for _, id := range m.viewports.ids() {
		c := m.viewports.get(id)
		if c == nil || c == parent || !c.touchConfigActivated {
			continue
		}
		if !m.isAncestor(parent.element, c.container) {
			continue
		}
		chained, err := c.svc.ChainedMotionTypes(id)
		if err != nil {
			m.log.Error(err, "chained motion types", "viewport", id)
			continue
		}
		if chained&c.touchConfig.Motion()&parent.touchConfig.Motion() == 0 {
			continue
		}
		if forStart {
			if c.status.Active() && c.state.Claimed() {
				return c
			}
		} else if c.status == StatusRunning {
			return c
		}
	}
	return nil
}

// refreshTransforms re-reads the engine transform of an idle viewport.
func (m *Manager) refreshTransforms(vp *Viewport) error {
	t, err := vp.svc.PrimaryContentTransform(vp.id)
	if err != nil {
		return fmt.Errorf("manip: primary content transform: %w", err)
	}
	vp.current = t
	if !vp.state.InProgress() {
		vp.initial = t
		vp.lastNotified = t
	}
	return nil
}

// processChanges reports content movement of an active viewport.
func (m *Manager) processChanges(id ViewportID) error {
	vp := m.viewports.get(id)
	if vp == nil || !vp.status.Active() {
		return nil
	}
	switch {
	case vp.state == StateStarted, vp.state == StateDelta, vp.state == StateConstantVelocityScrollStarted:
	case vp.startDeferredByChaining:
	default:
		return nil
	}
	t, err := vp.svc.PrimaryContentTransform(id)
	if err != nil {
		return fmt.Errorf("manip: primary content transform: %w", err)
	}
	if t.Equal(vp.lastNotified) {
		return nil
	}
	if vp.startDeferredByChaining {
		if m.chainingChild(vp, true) != nil {
			return nil
		}
		if vp = m.startManipulationAt(vp, vp.current); vp == nil {
			return nil
		}
		if vp = m.markStarted(vp); vp == nil {
			return nil
		}
	}
	vp.current = t
	p := vp.progress(StateDelta)
	if vp.status == StatusInertia {
		end, ok, err := vp.svc.ContentInertiaEndTransform(id)
		if err != nil {
			return fmt.Errorf("manip: inertia end transform: %w", err)
		}
		p.InertiaEnd, p.InertiaEndValid = end.Offset(vp.translationAdjustment), ok
	}
	if vp.state != StateConstantVelocityScrollStarted {
		vp.state = StateDelta
	}
	if vp = m.notify(id, p); vp == nil {
		return nil
	}
	return m.updateSecondaryContent(vp)
}

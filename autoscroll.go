// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"fmt"

	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
)

// SetConstantVelocity scrolls the content of element at velocity, in
// pixels per frame. A zero velocity stops the scrolling.
func (m *Manager) SetConstantVelocity(container, element event.Tag, velocity f32.Point) error {
	if velocity == (f32.Point{}) {
		vp := m.viewports.find(container, element)
		if vp == nil {
			return nil
		}
		vp.velocity = velocity
		if err := vp.svc.StopAutoScroll(vp.id); err != nil {
			return fmt.Errorf("manip: stop auto scroll: %w", err)
		}
		return nil
	}
	vp, err := m.ensureViewport(container, element)
	if err != nil || vp == nil {
		return err
	}
	if !vp.enabled {
		if err := m.enableViewport(vp); err != nil {
			return err
		}
	}
	if !vp.state.InProgress() && !vp.bringIntoViewConfigActivated && vp.bringIntoViewConfig != 0 {
		if _, err := m.activateConfiguration(vp, configBringIntoView); err != nil {
			return err
		}
	}
	var mo Motion
	if velocity.X != 0 {
		mo |= MotionPanX
	}
	if velocity.Y != 0 {
		mo |= MotionPanY
	}
	vp.velocity = velocity
	if err := vp.svc.ActivateAutoScroll(vp.id, mo, velocity); err != nil {
		return fmt.Errorf("manip: activate auto scroll: %w", err)
	}
	return nil
}

// processConstantVelocityStatus handles the transitions into and out of
// AutoRunning. They never reach the touch manipulation states.
func (m *Manager) processConstantVelocityStatus(id ViewportID, old, new Status) error {
	vp := m.viewports.get(id)
	switch {
	case old != StatusAutoRunning && new == StatusAutoRunning:
		if vp.state.InProgress() {
			vp.completedDelayedByConstantVelocity = true
		}
		m.declareNewViewport(vp)
		vp.state = StateConstantVelocityScrollStarted
		m.notify(id, vp.progress(StateConstantVelocityScrollStarted))
	case old == StatusAutoRunning && new != StatusAutoRunning:
		vp.state = StateConstantVelocityScrollStopped
		if vp = m.notify(id, vp.progress(StateConstantVelocityScrollStopped)); vp == nil {
			return nil
		}
		if vp.completedDelayedByConstantVelocity {
			vp.completedDelayedByConstantVelocity = false
			return m.finishManipulation(id, false)
		}
		if !new.Active() {
			m.declareOldViewport(vp)
			return nil
		}
		if err := m.startManipulation(id); err != nil {
			return err
		}
		if vp = m.alive(id); vp != nil && new == StatusRunning {
			m.markStarted(vp)
		}
	}
	return nil
}

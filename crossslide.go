// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

// CrossSlideViewport lets an element that handles one axis, or starts
// drags, arbitrate a touch gesture with the viewports above it before
// any of them commits to a manipulation.
type CrossSlideViewport struct {
	id      CrossSlideID
	pointer pointer.ID
	element event.Tag
	// container is the nearest manipulation container above element.
	container event.Tag
	svc       Service

	config       Configuration
	parentConfig Configuration
	needsStart   bool
	registered   bool
}

func (cs *CrossSlideViewport) ID() CrossSlideID {
	return cs.id
}

func (cs *CrossSlideViewport) Pointer() pointer.ID {
	return cs.pointer
}

func (cs *CrossSlideViewport) Element() event.Tag {
	return cs.element
}

// Configuration returns the motions the element handles itself.
func (cs *CrossSlideViewport) Configuration() Configuration {
	return cs.config
}

// ParentConfiguration returns the combined configuration of the
// viewports above the element that the contact is bound to.
func (cs *CrossSlideViewport) ParentConfiguration() Configuration {
	return cs.parentConfig
}

// Registered reports whether the engine knows about cs.
func (cs *CrossSlideViewport) Registered() bool {
	return cs.registered
}

// CrossSlideViewports returns the cross-slide viewports of pointer pid,
// nearest first.
func (m *Manager) CrossSlideViewports(pid pointer.ID) []*CrossSlideViewport {
	var res []*CrossSlideViewport
	for _, cs := range m.crossSlides {
		if cs.pointer == pid {
			res = append(res, cs)
		}
	}
	return res
}

func (m *Manager) crossSlide(pid pointer.ID, e event.Tag) *CrossSlideViewport {
	for _, cs := range m.crossSlides {
		if cs.pointer == pid && cs.element == e {
			return cs
		}
	}
	return nil
}

// addCrossSlide registers, or extends, the cross-slide viewport of the
// walk's pointer on e.
func (m *Manager) addCrossSlide(w *contactWalk, e event.Tag, c Configuration) {
	if cs := m.crossSlide(w.pid, e); cs != nil {
		cs.config |= c
		return
	}
	m.nextCrossSlide++
	cs := &CrossSlideViewport{
		id:         m.nextCrossSlide,
		pointer:    w.pid,
		element:    e,
		config:     c,
		needsStart: true,
	}
	m.crossSlides = append(m.crossSlides, cs)
	w.created = append(w.created, cs.id)
}

// startCrossSlideViewports registers the pending cross-slide viewports
// of the walk's pointer with the engine session of their container.
func (m *Manager) startCrossSlideViewports(w *contactWalk) error {
	for _, cs := range m.CrossSlideViewports(w.pid) {
		if !cs.needsStart {
			continue
		}
		container := m.containerAbove(cs.element)
		if container == nil {
			// Nothing to arbitrate with.
			m.removeCrossSlide(cs.id)
			continue
		}
		svc, err := m.services.ensure(container)
		if err != nil {
			return err
		}
		cs.container, cs.svc = container, svc
		cs.parentConfig = m.parentConfiguration(w.pid, cs.element)
		if err := svc.RegisterCrossSlideViewport(cs.id, cs.config, cs.parentConfig); err != nil {
			return fmt.Errorf("manip: register cross-slide viewport: %w", err)
		}
		cs.registered = true
		cs.needsStart = false
		failure, err := svc.SetCrossSlideContact(cs.id, w.pid)
		if err != nil {
			return fmt.Errorf("manip: set cross-slide contact: %w", err)
		}
		if failure {
			w.contactFailed = true
			m.trace("cross-slide contact refused", "crossSlide", cs.id, "pointer", w.pid)
			return nil
		}
		m.trace("cross-slide viewport started", "crossSlide", cs.id, "pointer", w.pid, "configuration", cs.config, "parent", cs.parentConfig)
	}
	return nil
}

func (m *Manager) containerAbove(e event.Tag) event.Tag {
	for a := m.tree.Parent(e); a != nil; a = m.tree.Parent(a) {
		if m.tree.Container(a) != nil {
			return a
		}
	}
	return nil
}

// parentConfiguration combines the configurations pid is bound to above
// e.
func (m *Manager) parentConfiguration(pid pointer.ID, e event.Tag) Configuration {
	var c Configuration
	parent := m.tree.Parent(e)
	for _, cs := range m.crossSlides {
		if cs.pointer == pid && cs.element != e && m.isAncestor(cs.element, parent) {
			c |= cs.config
		}
	}
	for _, id := range m.contacts.viewportsFor(pid) {
		if vp := m.viewports.get(id); vp != nil && m.isAncestor(vp.element, parent) {
			c |= vp.touchConfig
		}
	}
	return c
}

// rollbackCrossSlides discards the cross-slide viewports created by a
// failed walk.
func (m *Manager) rollbackCrossSlides(w *contactWalk) error {
	if len(w.created) == 0 {
		return nil
	}
	m.log.Info("discarding cross-slide viewports", "pointer", w.pid, "count", len(w.created))
	return m.discardCrossSlides(func(cs *CrossSlideViewport) bool {
		return slices.Contains(w.created, cs.id)
	})
}

// CrossSlideContainerCompleted discards the cross-slide viewport of pid
// on element once the gesture is resolved.
func (m *Manager) CrossSlideContainerCompleted(element event.Tag, pid pointer.ID) error {
	return m.discardCrossSlides(func(cs *CrossSlideViewport) bool {
		return cs.pointer == pid && cs.element == element
	})
}

// discardCrossSlides releases and removes the cross-slide viewports
// matching drop.
func (m *Manager) discardCrossSlides(drop func(cs *CrossSlideViewport) bool) error {
	var errs []error
	for _, cs := range slices.Clone(m.crossSlides) {
		if !drop(cs) {
			continue
		}
		m.removeCrossSlide(cs.id)
		if !cs.registered {
			continue
		}
		cs.registered = false
		if err := cs.svc.ReleaseCrossSlideContacts(cs.id); err != nil {
			errs = append(errs, fmt.Errorf("manip: release cross-slide contacts: %w", err))
		}
		if err := cs.svc.UnregisterCrossSlideViewport(cs.id); err != nil {
			errs = append(errs, fmt.Errorf("manip: unregister cross-slide viewport: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) removeCrossSlide(id CrossSlideID) {
	i := slices.IndexFunc(m.crossSlides, func(cs *CrossSlideViewport) bool { return cs.id == id })
	if i != -1 {
		m.crossSlides = slices.Delete(m.crossSlides, i, i+1)
	}
}

// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
)

// Content is an element whose transform follows the primary content of
// a viewport, such as a sticky header.
type Content struct {
	element event.Tag
	kind    ContentType
	clip    bool
	// engineID is the engine handle of the content. It changes when the
	// relationship curve is replaced.
	engineID     ContentID
	shared       SharedTransform
	relationship *Relationship

	initial f32.Transform
	current f32.Transform
}

// Property is a transform component.
type Property uint8

const (
	PropertyTranslationX Property = iota
	PropertyTranslationY
	PropertyScale
)

// Relationship drives the Target property of secondary content from the
// Source property of the primary content.
type Relationship struct {
	Source, Target Property
	Curve          Curve
}

// Curve is a piecewise cubic function. Segments are sorted by Begin.
type Curve []CurveSegment

// CurveSegment is the polynomial
//
//	Constant + Linear*x + Quadratic*x² + Cubic*x³
//
// for x at or beyond Begin.
type CurveSegment struct {
	Begin                              float32
	Constant, Linear, Quadratic, Cubic float32
}

// Eval returns the value of c at x. Below the first segment the first
// segment applies; an empty curve is the identity.
func (c Curve) Eval(x float32) float32 {
	if len(c) == 0 {
		return x
	}
	s := c[0]
	for _, seg := range c[1:] {
		if x < seg.Begin {
			break
		}
		s = seg
	}
	return s.Constant + x*(s.Linear+x*(s.Quadratic+x*s.Cubic))
}

func (p Property) of(t f32.Transform) float32 {
	switch p {
	case PropertyTranslationX:
		return t.TranslationX
	case PropertyTranslationY:
		return t.TranslationY
	default:
		return t.UncompressedZoom
	}
}

// Apply returns the secondary content transform for a primary content
// transform.
func (r Relationship) Apply(primary f32.Transform) f32.Transform {
	v := r.Curve.Eval(r.Source.of(primary))
	t := f32.Identity()
	switch r.Target {
	case PropertyTranslationX:
		t.TranslationX = v
	case PropertyTranslationY:
		t.TranslationY = v
	default:
		t.UncompressedZoom, t.ZoomX, t.ZoomY = v, v, v
	}
	return t
}

func (c *Content) Element() event.Tag {
	return c.element
}

func (c *Content) Kind() ContentType {
	return c.kind
}

// Clip reports whether c is secondary clip content.
func (c *Content) Clip() bool {
	return c.clip
}

// EngineID returns the current engine handle of c.
func (c *Content) EngineID() ContentID {
	return c.engineID
}

func (c *Content) SharedTransform() SharedTransform {
	return c.shared
}

// Relationship returns the curve relationship of c, if any.
func (c *Content) Relationship() (Relationship, bool) {
	if c.relationship == nil {
		return Relationship{}, false
	}
	return *c.relationship, true
}

func (c *Content) Transform() f32.Transform {
	return c.current
}

// deferredRelease is a replaced content handle and shared transform,
// kept until the compositor has presented the batch that last used them.
type deferredRelease struct {
	viewport ViewportID
	svc      Service
	engineID ContentID
	shared   SharedTransform
	batch    uint64
}

func (vp *Viewport) allContents() []*Content {
	all := make([]*Content, 0, len(vp.contents)+len(vp.clipContents))
	all = append(all, vp.contents...)
	return append(all, vp.clipContents...)
}

// AddSecondaryContent attaches content to the viewport of element in
// container. A nil relationship makes the engine compute the content
// transform from kind.
func (m *Manager) AddSecondaryContent(container, element, content event.Tag, kind ContentType, rel *Relationship) error {
	return m.addContent(container, element, content, kind, rel, false)
}

// AddSecondaryClipContent is like AddSecondaryContent for content that
// clips the primary content.
func (m *Manager) AddSecondaryClipContent(container, element, content event.Tag, rel *Relationship) error {
	return m.addContent(container, element, content, ContentCustom, rel, true)
}

func (m *Manager) addContent(container, element, content event.Tag, kind ContentType, rel *Relationship, clip bool) error {
	vp, err := m.ensureViewport(container, element)
	if err != nil || vp == nil {
		return err
	}
	if _, ok := vp.content(content); ok {
		return nil
	}
	c := &Content{
		element: content,
		kind:    kind,
		clip:    clip,
		initial: f32.Identity(),
		current: f32.Identity(),
	}
	if rel != nil {
		r := *rel
		c.relationship = &r
	}
	if err := m.attachContent(vp, c); err != nil {
		return err
	}
	if clip {
		vp.clipContents = append(vp.clipContents, c)
	} else {
		vp.contents = append(vp.contents, c)
	}
	m.trace("secondary content added", "viewport", vp.id, "content", content, "engineID", c.engineID)
	return nil
}

// attachContent creates the engine handle and shared transform of c.
// On failure c is left unchanged.
func (m *Manager) attachContent(vp *Viewport, c *Content) error {
	m.nextContent++
	cid := m.nextContent
	if err := vp.svc.AddSecondaryContent(vp.id, cid, c.kind); err != nil {
		return fmt.Errorf("manip: add secondary content: %w", err)
	}
	var shared SharedTransform
	if c.relationship != nil && m.compositor != nil {
		st, err := m.compositor.CreateSharedTransform(vp.id, cid, *c.relationship)
		if err != nil {
			err = fmt.Errorf("manip: create shared transform: %w", err)
			if rerr := vp.svc.RemoveSecondaryContent(vp.id, cid); rerr != nil {
				err = errors.Join(err, fmt.Errorf("manip: remove secondary content: %w", rerr))
			}
			return err
		}
		shared = st
	}
	c.engineID = cid
	c.shared = shared
	if c.relationship != nil {
		c.current = c.relationship.Apply(vp.current)
	}
	return nil
}

// RemoveSecondaryContent detaches content from the viewport of element.
func (m *Manager) RemoveSecondaryContent(container, element, content event.Tag) error {
	vp := m.viewports.find(container, element)
	if vp == nil {
		return nil
	}
	c, ok := vp.content(content)
	if !ok {
		return nil
	}
	list := &vp.contents
	if c.clip {
		list = &vp.clipContents
	}
	if i := slices.Index(*list, c); i != -1 {
		*list = slices.Delete(*list, i, i+1)
	}
	return m.releaseContent(vp, c)
}

func (m *Manager) releaseContent(vp *Viewport, c *Content) error {
	var err error
	if rerr := vp.svc.RemoveSecondaryContent(vp.id, c.engineID); rerr != nil {
		err = fmt.Errorf("manip: remove secondary content: %w", rerr)
	}
	if c.shared != 0 && m.compositor != nil {
		m.compositor.ReleaseSharedTransform(c.shared)
	}
	c.shared = 0
	return err
}

// UpdateSecondaryContentRelationship replaces the curve relationship of
// content. The replaced engine handle and shared transform stay alive
// until the compositor confirms the frame that last used them.
func (m *Manager) UpdateSecondaryContentRelationship(container, element, content event.Tag, rel Relationship) error {
	vp := m.viewports.find(container, element)
	if vp == nil {
		return ErrUnregistered
	}
	c, ok := vp.content(content)
	if !ok {
		return fmt.Errorf("manip: update relationship: no secondary content %v", content)
	}
	if c.relationship == nil {
		c.relationship = &rel
		if m.compositor != nil {
			st, err := m.compositor.CreateSharedTransform(vp.id, c.engineID, rel)
			if err != nil {
				return fmt.Errorf("manip: create shared transform: %w", err)
			}
			c.shared = st
		}
		c.current = rel.Apply(vp.current)
		return nil
	}
	var batch uint64
	if m.compositor != nil {
		batch = m.compositor.CommittedBatch()
	}
	old := deferredRelease{
		viewport: vp.id,
		svc:      vp.svc,
		engineID: c.engineID,
		shared:   c.shared,
		batch:    batch,
	}
	prev := c.relationship
	c.relationship = &rel
	if err := m.attachContent(vp, c); err != nil {
		// The old handle stays in use.
		c.relationship = prev
		return err
	}
	m.deferred = append(m.deferred, old)
	m.trace("secondary content swapped", "viewport", vp.id, "content", content, "oldEngineID", old.engineID, "batch", batch)
	m.requestFrame()
	return nil
}

// releaseDeferred releases the replaced content whose batch the
// compositor has confirmed. With force, the records of viewport only are
// released regardless.
func (m *Manager) releaseDeferred(force bool, only ViewportID) error {
	if len(m.deferred) == 0 {
		return nil
	}
	var confirmed uint64
	if m.compositor != nil {
		confirmed = m.compositor.ConfirmedBatch()
	}
	var errs []error
	kept := m.deferred[:0]
	for _, d := range m.deferred {
		if !(force && d.viewport == only) && confirmed < d.batch {
			kept = append(kept, d)
			continue
		}
		if err := d.svc.RemoveSecondaryContent(d.viewport, d.engineID); err != nil {
			errs = append(errs, fmt.Errorf("manip: remove secondary content: %w", err))
		}
		if d.shared != 0 && m.compositor != nil {
			m.compositor.ReleaseSharedTransform(d.shared)
		}
		m.trace("deferred content released", "viewport", d.viewport, "engineID", d.engineID, "batch", d.batch)
	}
	m.deferred = kept
	return errors.Join(errs...)
}

// updateSecondaryContent moves the secondary content of vp along with
// its primary content.
func (m *Manager) updateSecondaryContent(vp *Viewport) error {
	for _, c := range vp.allContents() {
		if c.relationship != nil {
			c.current = c.relationship.Apply(vp.current)
			continue
		}
		t, err := vp.svc.SecondaryContentTransform(vp.id, c.engineID)
		if err != nil {
			return fmt.Errorf("manip: secondary content transform: %w", err)
		}
		c.current = t
	}
	return nil
}

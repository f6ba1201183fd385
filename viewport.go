// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"golang.org/x/exp/slices"

	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

// Viewport is the record of one manipulatable element: its engine
// configuration, the engine statuses not yet reconciled, its
// manipulation state and its cached transforms.
type Viewport struct {
	id ViewportID
	// container is not owned; resolve it through the Tree before use.
	container event.Tag
	// element is the manipulated primary content.
	element event.Tag
	svc     Service

	touchConfig         Configuration
	nonTouchConfig      Configuration
	bringIntoViewConfig Configuration
	// addedConfigs lists the configurations registered with the engine.
	addedConfigs  []Configuration
	chainedMotion Motion
	minZoom       float32
	maxZoom       float32
	bounds        f32.Rectangle
	contentBounds f32.Rectangle
	alignment     Alignment

	statuses StatusQueue
	// oldStatus is the last status processed by reconciliation.
	oldStatus Status
	// status is the last status reported by the engine.
	status Status
	// lastActive is the last active status processed.
	lastActive Status
	state      State

	contacts []pointer.ID

	initial      f32.Transform
	current      f32.Transform
	lastNotified f32.Transform
	// translationAdjustment is added to reported translations.
	translationAdjustment f32.Point
	// center is the viewport center in content coordinates.
	center f32.Point

	enabled bool
	// needsUnregistration is set for viewports that must be unregistered
	// once the engine reports them inactive.
	needsUnregistration bool
	unregistered        bool
	compositorAware     bool
	// hasNewManipulation and hasOldManipulation are the edges of the
	// compositor declaration.
	hasNewManipulation bool
	hasOldManipulation bool
	// completedSkipped is set if becoming inactive was not treated as a
	// completion because a chained child was still running.
	completedSkipped bool
	// completedDelayedByConstantVelocity is set if the completion
	// waits for a constant velocity pan to stop.
	completedDelayedByConstantVelocity bool
	// startDeferredByChaining is set if becoming active was not treated
	// as a start because a chained child already claimed it.
	startDeferredByChaining bool

	touchConfigActivated         bool
	nonTouchConfigActivated      bool
	bringIntoViewConfigActivated bool

	hasValidBounds                 bool
	hasDMHitTestContact            bool
	receivedContactInInertia       bool
	touchInteractionEndExpected    bool
	touchInteractionStartProcessed bool
	needsBringIntoViewport         bool

	// removedRunningStatuses counts idempotent enable calls whose
	// Running, Ready, Disabled, Enabled run is still expected.
	removedRunningStatuses int
	// ignoredRunningStatuses counts Running statuses caused by
	// synchronous bring into viewport calls, to be ignored.
	ignoredRunningStatuses int
	// delayedStatusProcessing is set if statuses arrived while a tick
	// was already running and are processed by the next one.
	delayedStatusProcessing bool

	velocity f32.Point

	contents     []*Content
	clipContents []*Content
	interactions []InteractionType
}

func newViewport(container, element event.Tag, svc Service) *Viewport {
	return &Viewport{
		container: container,
		element:   element,
		svc:       svc,
		oldStatus: StatusBuilding,
		status:    StatusBuilding,
		minZoom:   1,
		maxZoom:   1,

		initial:      f32.Identity(),
		current:      f32.Identity(),
		lastNotified: f32.Identity(),
	}
}

func (vp *Viewport) ID() ViewportID {
	return vp.id
}

// Container returns the manipulation container of vp.
func (vp *Viewport) Container() event.Tag {
	return vp.container
}

// Element returns the manipulated element of vp.
func (vp *Viewport) Element() event.Tag {
	return vp.element
}

// Status returns the last status the engine reported for vp.
func (vp *Viewport) Status() Status {
	return vp.status
}

func (vp *Viewport) State() State {
	return vp.state
}

// PendingStatuses returns the statuses not yet reconciled.
func (vp *Viewport) PendingStatuses() []Status {
	return vp.statuses.Statuses()
}

// Contacts returns the pointers bound to vp.
func (vp *Viewport) Contacts() []pointer.ID {
	return slices.Clone(vp.contacts)
}

func (vp *Viewport) HasContact(pid pointer.ID) bool {
	return slices.Contains(vp.contacts, pid)
}

// Transform returns the last known content transform.
func (vp *Viewport) Transform() f32.Transform {
	return vp.current
}

// InitialTransform returns the content transform at the start of the
// current or last manipulation.
func (vp *Viewport) InitialTransform() f32.Transform {
	return vp.initial
}

func (vp *Viewport) TouchConfigurationActivated() bool {
	return vp.touchConfigActivated
}

func (vp *Viewport) NonTouchConfigurationActivated() bool {
	return vp.nonTouchConfigActivated
}

func (vp *Viewport) BringIntoViewConfigurationActivated() bool {
	return vp.bringIntoViewConfigActivated
}

func (vp *Viewport) Unregistered() bool {
	return vp.unregistered
}

func (vp *Viewport) NeedsUnregistration() bool {
	return vp.needsUnregistration
}

// Contents returns the secondary content attached to vp.
func (vp *Viewport) Contents() []*Content {
	return slices.Clone(vp.contents)
}

// ClipContents returns the secondary clip content attached to vp.
func (vp *Viewport) ClipContents() []*Content {
	return slices.Clone(vp.clipContents)
}

func (vp *Viewport) addContact(pid pointer.ID) {
	if !slices.Contains(vp.contacts, pid) {
		vp.contacts = append(vp.contacts, pid)
	}
}

func (vp *Viewport) removeContact(pid pointer.ID) bool {
	i := slices.Index(vp.contacts, pid)
	if i == -1 {
		return false
	}
	vp.contacts = slices.Delete(vp.contacts, i, i+1)
	return true
}

// configurations returns the distinct non-empty configurations of vp.
func (vp *Viewport) configurations() []Configuration {
	var cfgs []Configuration
	for _, c := range []Configuration{vp.touchConfig, vp.nonTouchConfig, vp.bringIntoViewConfig} {
		if c != 0 && !slices.Contains(cfgs, c) {
			cfgs = append(cfgs, c)
		}
	}
	return cfgs
}

// cumulative returns the change since the manipulation started.
func (vp *Viewport) cumulative() f32.Delta {
	return vp.current.Since(vp.initial)
}

func (vp *Viewport) progress(s State) Progress {
	return Progress{
		State:                               s,
		Cumulative:                          vp.cumulative(),
		Transform:                           vp.current.Offset(vp.translationAdjustment),
		Center:                              vp.center,
		TouchConfigurationActivated:         vp.touchConfigActivated,
		BringIntoViewConfigurationActivated: vp.bringIntoViewConfigActivated,
		InInertia:                           vp.status == StatusInertia,
	}
}

// content returns the secondary content for element e.
func (vp *Viewport) content(e event.Tag) (*Content, bool) {
	for _, list := range [][]*Content{vp.contents, vp.clipContents} {
		for _, c := range list {
			if c.element == e {
				return c, true
			}
		}
	}
	return nil, false
}

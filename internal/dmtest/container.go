// SPDX-License-Identifier: Unlicense OR MIT

package dmtest

import (
	"gioui.org/manip"
	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
)

// TouchPan is the touch configuration of a default Container.
const TouchPan = manip.ConfigInteraction | manip.ConfigTranslationX | manip.ConfigTranslationY | manip.ConfigTranslationInertia

// Container is a scroll view like manipulation container that records
// what the Manager tells it.
type Container struct {
	Info       manip.ViewportInfo
	Content    manip.ContentInfo
	NoViewport bool
	NoContent  bool
	// LayoutTransform is the content transform layout asks for.
	LayoutTransform    f32.Transform
	HasLayoutTransform bool
	Horizontal         bool
	Vertical           bool
	SnapPoints         map[manip.Motion]manip.SnapPoints

	Progress           []Notification
	InteractionStates  []manip.InteractionState
	BringIntoViewports int
	Wants              map[event.Tag]bool

	// OnProgress, if set, runs after a progress notification is
	// recorded.
	OnProgress func(e event.Tag, p manip.Progress)
}

// Notification is a recorded progress notification.
type Notification struct {
	Element  event.Tag
	Progress manip.Progress
}

// NewContainer returns a Container for a vertically and horizontally
// pannable 100x100 viewport over 100x400 content.
func NewContainer() *Container {
	return &Container{
		Info: manip.ViewportInfo{
			Bounds:                     f32.Rect(0, 0, 100, 100),
			InputTransform:             f32.Identity(),
			TouchConfiguration:         TouchPan,
			NonTouchConfiguration:      manip.ConfigTranslationX | manip.ConfigTranslationY,
			BringIntoViewConfiguration: manip.ConfigTranslationX | manip.ConfigTranslationY,
			ChainedMotion:              manip.MotionPanX | manip.MotionPanY,
		},
		Content: manip.ContentInfo{
			Bounds:  f32.Rect(0, 0, 100, 400),
			MinZoom: 1,
			MaxZoom: 1,
		},
		Horizontal: true,
		Vertical:   true,
		Wants:      make(map[event.Tag]bool),
	}
}

// States returns the recorded progress states, oldest first.
func (c *Container) States() []manip.State {
	var states []manip.State
	for _, n := range c.Progress {
		states = append(states, n.Progress.State)
	}
	return states
}

// Count returns the number of recorded notifications for state s.
func (c *Container) Count(s manip.State) int {
	n := 0
	for _, p := range c.Progress {
		if p.Progress.State == s {
			n++
		}
	}
	return n
}

// Last returns the last recorded notification.
func (c *Container) Last() (Notification, bool) {
	if len(c.Progress) == 0 {
		return Notification{}, false
	}
	return c.Progress[len(c.Progress)-1], true
}

// Reset forgets the recorded notifications.
func (c *Container) Reset() {
	c.Progress = nil
	c.InteractionStates = nil
	c.BringIntoViewports = 0
}

func (c *Container) ManipulationViewport(e event.Tag) (manip.ViewportInfo, bool) {
	return c.Info, !c.NoViewport
}

func (c *Container) ManipulationPrimaryContent(e event.Tag) (manip.ContentInfo, bool) {
	return c.Content, !c.NoContent
}

func (c *Container) ManipulationPrimaryContentTransform(e event.Tag) (f32.Transform, bool) {
	return c.LayoutTransform, c.HasLayoutTransform
}

func (c *Container) CanManipulateElements() (bool, bool) {
	return c.Horizontal, c.Vertical
}

func (c *Container) ManipulationSnapPoints(e event.Tag, m manip.Motion) (manip.SnapPoints, bool) {
	sp, ok := c.SnapPoints[m]
	return sp, ok
}

func (c *Container) NotifyManipulationProgress(e event.Tag, p manip.Progress) {
	c.Progress = append(c.Progress, Notification{Element: e, Progress: p})
	if c.OnProgress != nil {
		c.OnProgress(e, p)
	}
}

func (c *Container) NotifyManipulationStateChanged(e event.Tag, s manip.InteractionState) {
	c.InteractionStates = append(c.InteractionStates, s)
}

func (c *Container) NotifyBringIntoViewportNeeded(e event.Tag) {
	c.BringIntoViewports++
}

func (c *Container) SetManipulationHandlerWantsNotifications(e event.Tag, wants bool) {
	c.Wants[e] = wants
}

// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"gioui.org/manip/f32"
	"gioui.org/manip/io/event"
	"gioui.org/manip/io/pointer"
)

// Tree gives the Manager access to the visual tree. Elements are
// identified by event.Tag and are never owned by the Manager.
type Tree interface {
	// Parent returns the parent of e, or nil for the root.
	Parent(e event.Tag) event.Tag
	// Live reports whether e is still part of the tree.
	Live(e event.Tag) bool
	// Container returns the manipulation container callbacks of e,
	// or nil if e is not a manipulation container.
	Container(e event.Tag) Container
	// ManipulationMode returns the manipulation mode of e.
	ManipulationMode(e event.Tag) Mode
	// Draggable reports whether e can start a drag and drop operation.
	Draggable(e event.Tag) bool
	// SetRequiresComposition marks e as needing (or no longer needing)
	// an independently composited transform.
	SetRequiresComposition(e event.Tag, requires bool)
}

// ViewportInfo is the viewport configuration a container reports for
// one of its manipulatable elements.
type ViewportInfo struct {
	Bounds f32.Rectangle
	// InputTransform maps window coordinates to viewport coordinates.
	InputTransform f32.Transform
	// TouchConfiguration is activated when a touch contact is set.
	TouchConfiguration Configuration
	// NonTouchConfiguration is activated for mouse and keyboard
	// driven movement.
	NonTouchConfiguration Configuration
	// BringIntoViewConfiguration is activated for programmatic and
	// constant velocity movement.
	BringIntoViewConfiguration Configuration
	// ChainedMotion is the set of motions handed to an ancestor
	// viewport once this one reaches its limits.
	ChainedMotion Motion
	// HorizontalOverpan and VerticalOverpan report whether the
	// content may be pulled past its bounds.
	HorizontalOverpan, VerticalOverpan bool
}

// ContentInfo describes the primary content of a viewport, as laid out.
type ContentInfo struct {
	Bounds           f32.Rectangle
	Alignment        Alignment
	MinZoom, MaxZoom float32
	// Offset is the layout offset of the content within the viewport.
	Offset f32.Point
	// TranslationAdjustment is added to engine translations before they
	// are reported to the container.
	TranslationAdjustment f32.Point
}

// SnapPoints along one motion.
type SnapPoints struct {
	// Mandatory snap points force the content to rest on a point.
	Mandatory bool
	// Single snap points stop inertia at the next point.
	Single bool
	// Either Points or Interval/Offset is used.
	Points           []float32
	Interval, Offset float32
}

// Progress is the manipulation progress reported to a container.
type Progress struct {
	State State
	// Cumulative is the change since the manipulation started.
	Cumulative f32.Delta
	Transform  f32.Transform
	// InertiaEnd is the transform the content will rest at once
	// inertia ends. It is valid only if InertiaEndValid is set.
	InertiaEnd      f32.Transform
	InertiaEndValid bool
	// Center is the viewport center in content coordinates.
	Center f32.Point

	TouchConfigurationActivated         bool
	BringIntoViewConfigurationActivated bool
	InInertia                           bool
}

// Container is implemented by the owning control of a manipulatable
// element, such as a scroll view. Notify methods call into application
// code and may re-enter the Manager.
type Container interface {
	ManipulationViewport(e event.Tag) (ViewportInfo, bool)
	ManipulationPrimaryContent(e event.Tag) (ContentInfo, bool)
	// ManipulationPrimaryContentTransform returns the content transform
	// that layout wants the engine to show.
	ManipulationPrimaryContentTransform(e event.Tag) (f32.Transform, bool)
	CanManipulateElements() (horizontal, vertical bool)
	ManipulationSnapPoints(e event.Tag, m Motion) (SnapPoints, bool)
	NotifyManipulationProgress(e event.Tag, p Progress)
	NotifyManipulationStateChanged(e event.Tag, s InteractionState)
	NotifyBringIntoViewportNeeded(e event.Tag)
	SetManipulationHandlerWantsNotifications(e event.Tag, wants bool)
}

// Service is a session with the external manipulation engine, bound to
// one manipulation container. Apart from SetContact and
// ActivateViewportConfiguration, any error is a hard failure.
type Service interface {
	EnsureManager(container event.Tag) error
	ActivateManager() error
	DeactivateManager() error

	RegisterViewport(id ViewportID) error
	UnregisterViewport(id ViewportID) error
	AddViewportConfiguration(id ViewportID, c Configuration) error
	RemoveViewportConfiguration(id ViewportID, c Configuration) error
	// ActivateViewportConfiguration reports activated false if the
	// engine refused c, for example because it was not added before
	// the viewport was sealed.
	ActivateViewportConfiguration(id ViewportID, c Configuration) (activated bool, err error)
	EnableViewport(id ViewportID) error
	DisableViewport(id ViewportID) error
	StopViewport(id ViewportID) error
	// SetContact reports contactFailure if the engine refused the
	// contact, for example because too many contacts are active.
	SetContact(id ViewportID, pid pointer.ID) (contactFailure bool, err error)
	ReleaseContact(id ViewportID, pid pointer.ID) error
	ReleaseAllContacts(id ViewportID) error
	ViewportStatus(id ViewportID) (Status, error)

	SetViewportBounds(id ViewportID, r f32.Rectangle) error
	SetContentBounds(id ViewportID, r f32.Rectangle) error
	SetContentAlignment(id ViewportID, a Alignment) error
	SetPrimaryContentZoomBoundaries(id ViewportID, min, max float32) error
	SetPrimaryContentSnapPoints(id ViewportID, m Motion, p SnapPoints) error
	SetViewportChaining(id ViewportID, m Motion) error
	ChainedMotionTypes(id ViewportID) (Motion, error)

	PrimaryContentTransform(id ViewportID) (f32.Transform, error)
	SecondaryContentTransform(id ViewportID, c ContentID) (f32.Transform, error)
	ContentInertiaEndTransform(id ViewportID) (t f32.Transform, ok bool, err error)
	BringIntoViewport(id ViewportID, r f32.Rectangle, animate bool) error
	SetPrimaryContentTransform(id ViewportID, t f32.Transform) error

	ActivateAutoScroll(id ViewportID, m Motion, velocity f32.Point) error
	StopAutoScroll(id ViewportID) error

	AddSecondaryContent(id ViewportID, c ContentID, t ContentType) error
	RemoveSecondaryContent(id ViewportID, c ContentID) error

	RegisterCrossSlideViewport(id CrossSlideID, c, parent Configuration) error
	UnregisterCrossSlideViewport(id CrossSlideID) error
	SetCrossSlideContact(id CrossSlideID, pid pointer.ID) (contactFailure bool, err error)
	ReleaseCrossSlideContacts(id CrossSlideID) error
}

// ServiceFactory creates engine sessions, one per container.
type ServiceFactory interface {
	NewService(container event.Tag) (Service, error)
}

// SharedTransform is a compositor handle for a transform shared
// between a viewport and its secondary content.
type SharedTransform uint64

// Compositor receives viewport declarations and hosts the transforms
// secondary content shares with primary content. Batch ids increase
// monotonically; a batch is confirmed once its frame is presented.
type Compositor interface {
	DeclareNewViewport(id ViewportID)
	DeclareOldViewport(id ViewportID)
	CommittedBatch() uint64
	ConfirmedBatch() uint64
	CreateSharedTransform(id ViewportID, c ContentID, r Relationship) (SharedTransform, error)
	ReleaseSharedTransform(t SharedTransform)
}

// Scheduler requests UI frames.
type Scheduler interface {
	RequestAdditionalFrame()
}

// SPDX-License-Identifier: Unlicense OR MIT

package manip

import "fmt"

// Status is a viewport status as reported by the manipulation engine.
type Status uint8

// State is the manipulation state of a viewport as seen by its
// container. It is derived from, but tracked independently of, the
// engine Status.
type State uint8

// InteractionType is an interaction notification reported by the
// engine alongside status changes.
type InteractionType uint8

// InteractionState is reported to containers through
// NotifyManipulationStateChanged.
type InteractionState uint8

const (
	StatusBuilding Status = iota
	StatusEnabled
	StatusDisabled
	StatusRunning
	StatusInertia
	StatusReady
	StatusSuspended
	// StatusAutoRunning is reported while the engine scrolls a
	// viewport at constant velocity.
	StatusAutoRunning
)

const (
	StateNone State = iota
	StateStarting
	StateStarted
	StateDelta
	StateLastDelta
	StateCompleted
	StateConstantVelocityScrollStarted
	StateConstantVelocityScrollStopped
)

const (
	InteractionBegin InteractionType = iota
	InteractionManipulation
	InteractionEnd
)

const (
	InteractionStarted InteractionState = iota
	InteractionEnded
)

// Active reports whether s is one of the statuses during which the
// engine drives the viewport content.
func (s Status) Active() bool {
	switch s {
	case StatusRunning, StatusInertia, StatusSuspended, StatusAutoRunning:
		return true
	}
	return false
}

func (s Status) String() string {
	switch s {
	case StatusBuilding:
		return "Building"
	case StatusEnabled:
		return "Enabled"
	case StatusDisabled:
		return "Disabled"
	case StatusRunning:
		return "Running"
	case StatusInertia:
		return "Inertia"
	case StatusReady:
		return "Ready"
	case StatusSuspended:
		return "Suspended"
	case StatusAutoRunning:
		return "AutoRunning"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// InProgress reports whether s is part of a touch manipulation that
// has started and not completed.
func (s State) InProgress() bool {
	return s >= StateStarting && s <= StateLastDelta
}

// Claimed reports whether s marks a manipulation that has been
// reported to a container as starting or moving.
func (s State) Claimed() bool {
	return s >= StateStarting && s <= StateDelta
}

func (s State) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateStarting:
		return "Starting"
	case StateStarted:
		return "Started"
	case StateDelta:
		return "Delta"
	case StateLastDelta:
		return "LastDelta"
	case StateCompleted:
		return "Completed"
	case StateConstantVelocityScrollStarted:
		return "ConstantVelocityScrollStarted"
	case StateConstantVelocityScrollStopped:
		return "ConstantVelocityScrollStopped"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

func (t InteractionType) String() string {
	switch t {
	case InteractionBegin:
		return "Begin"
	case InteractionManipulation:
		return "Manipulation"
	case InteractionEnd:
		return "End"
	default:
		return fmt.Sprintf("InteractionType(%d)", uint8(t))
	}
}

func (s InteractionState) String() string {
	switch s {
	case InteractionStarted:
		return "InteractionStarted"
	case InteractionEnded:
		return "InteractionEnded"
	default:
		return fmt.Sprintf("InteractionState(%d)", uint8(s))
	}
}

// SPDX-License-Identifier: Unlicense OR MIT

package manip

import "strings"

// Configuration is a set of manipulation capabilities that can be
// registered and activated on an engine viewport.
type Configuration uint16

// Motion is a set of content motion types.
type Motion uint8

// Mode is the manipulation mode an element declares.
type Mode uint16

// Alignment of content within a viewport.
type Alignment uint8

// ContentType classifies secondary content.
type ContentType uint8

const (
	ConfigInteraction Configuration = 1 << iota
	ConfigTranslationX
	ConfigTranslationY
	ConfigScaling
	ConfigTranslationInertia
	ConfigScalingInertia
	ConfigRailsX
	ConfigRailsY
)

const (
	MotionPanX Motion = 1 << iota
	MotionPanY
	MotionZoom

	MotionAll = MotionPanX | MotionPanY | MotionZoom
)

const (
	ModeNone Mode = 0
	ModeTranslateX Mode = 1 << (iota - 1)
	ModeTranslateY
	ModeTranslateRailsX
	ModeTranslateRailsY
	ModeRotate
	ModeScale
	ModeTranslateInertia
	ModeRotateInertia
	ModeScaleInertia
	// ModeSystem lets the manipulation engine handle the element.
	ModeSystem

	ModeAll = ModeTranslateX | ModeTranslateY | ModeTranslateRailsX | ModeTranslateRailsY |
		ModeRotate | ModeScale | ModeTranslateInertia | ModeRotateInertia | ModeScaleInertia
)

const (
	AlignNone Alignment = 0
	AlignHorizontalCenter Alignment = 1 << (iota - 1)
	AlignVerticalCenter
	AlignHorizontalEnd
	AlignVerticalEnd
)

const (
	ContentTopHeader ContentType = iota
	ContentLeftHeader
	ContentTopLeftHeader
	ContentCustom
	ContentDescendant
)

// Motion returns the motion types c allows.
func (c Configuration) Motion() Motion {
	var m Motion
	if c&ConfigTranslationX != 0 {
		m |= MotionPanX
	}
	if c&ConfigTranslationY != 0 {
		m |= MotionPanY
	}
	if c&ConfigScaling != 0 {
		m |= MotionZoom
	}
	return m
}

func (c Configuration) String() string {
	if c == 0 {
		return "None"
	}
	names := []string{"Interaction", "TranslationX", "TranslationY", "Scaling",
		"TranslationInertia", "ScalingInertia", "RailsX", "RailsY"}
	var parts []string
	for i, n := range names {
		if c&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "|")
}

func (m Motion) String() string {
	var parts []string
	if m&MotionPanX != 0 {
		parts = append(parts, "PanX")
	}
	if m&MotionPanY != 0 {
		parts = append(parts, "PanY")
	}
	if m&MotionZoom != 0 {
		parts = append(parts, "Zoom")
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// Has reports whether m includes all of flags.
func (m Mode) Has(flags Mode) bool {
	return m&flags == flags
}

// PartialAxis reports whether m is a custom manipulation mode that
// translates along exactly one axis and neither scales nor rotates.
// Elements with such modes let an ancestor viewport keep panning the
// other axis.
func (m Mode) PartialAxis() bool {
	if m.Has(ModeSystem) || m&(ModeScale|ModeRotate) != 0 {
		return false
	}
	x := m&(ModeTranslateX|ModeTranslateRailsX) != 0
	y := m&(ModeTranslateY|ModeTranslateRailsY) != 0
	return x != y
}

// Configuration returns the engine configuration equivalent to m.
func (m Mode) Configuration() Configuration {
	var c Configuration
	if m&(ModeTranslateX|ModeTranslateRailsX) != 0 {
		c |= ConfigTranslationX
	}
	if m&(ModeTranslateY|ModeTranslateRailsY) != 0 {
		c |= ConfigTranslationY
	}
	if m&ModeTranslateRailsX != 0 {
		c |= ConfigRailsX
	}
	if m&ModeTranslateRailsY != 0 {
		c |= ConfigRailsY
	}
	if m&ModeScale != 0 {
		c |= ConfigScaling
	}
	if m&ModeTranslateInertia != 0 {
		c |= ConfigTranslationInertia
	}
	if m&ModeScaleInertia != 0 {
		c |= ConfigScalingInertia
	}
	if c != 0 {
		c |= ConfigInteraction
	}
	return c
}

// crossSlideConfiguration returns the configuration of the cross-slide
// viewport an element with mode m registers, if any.
func crossSlideConfiguration(m Mode, draggable bool) (Configuration, bool) {
	var c Configuration
	if m.PartialAxis() {
		c = m.Configuration()
	}
	if draggable {
		c |= ConfigInteraction
	}
	return c, c != 0
}

// claimsManipulation reports whether an element with mode m handles
// manipulations itself, hiding the contact from ancestor viewports.
func claimsManipulation(m Mode) bool {
	return m != ModeNone && !m.Has(ModeSystem) && !m.PartialAxis()
}

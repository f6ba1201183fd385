// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartialAxis(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeNone, false},
		{ModeSystem, false},
		{ModeTranslateX, true},
		{ModeTranslateRailsY | ModeTranslateInertia, true},
		{ModeTranslateX | ModeTranslateY, false},
		{ModeTranslateX | ModeScale, false},
		{ModeTranslateY | ModeRotate, false},
		{ModeTranslateX | ModeSystem, false},
		{ModeScale, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.mode.PartialAxis(), "mode %b", tc.mode)
	}
}

func TestCrossSlideConfiguration(t *testing.T) {
	c, ok := crossSlideConfiguration(ModeTranslateY|ModeTranslateInertia, false)
	assert.True(t, ok)
	assert.Equal(t, ConfigInteraction|ConfigTranslationY|ConfigTranslationInertia, c)

	c, ok = crossSlideConfiguration(ModeSystem, true)
	assert.True(t, ok)
	assert.Equal(t, ConfigInteraction, c)

	_, ok = crossSlideConfiguration(ModeSystem, false)
	assert.False(t, ok)
	_, ok = crossSlideConfiguration(ModeAll, false)
	assert.False(t, ok)
}

func TestClaimsManipulation(t *testing.T) {
	assert.False(t, claimsManipulation(ModeNone))
	assert.False(t, claimsManipulation(ModeSystem))
	assert.False(t, claimsManipulation(ModeTranslateX))
	assert.True(t, claimsManipulation(ModeTranslateX|ModeTranslateY))
	assert.True(t, claimsManipulation(ModeScale))
}

func TestConfigurationMotion(t *testing.T) {
	assert.Equal(t, MotionPanX|MotionPanY, (ConfigInteraction | ConfigTranslationX | ConfigTranslationY).Motion())
	assert.Equal(t, MotionZoom, ConfigScaling.Motion())
	assert.Equal(t, Motion(0), ConfigInteraction.Motion())
	assert.Equal(t, "Interaction|TranslationY", (ConfigInteraction | ConfigTranslationY).String())
	assert.Equal(t, "None", Configuration(0).String())
	assert.Equal(t, "PanX|Zoom", (MotionPanX | MotionZoom).String())
}

func TestStateRanges(t *testing.T) {
	for s := StateNone; s <= StateConstantVelocityScrollStopped; s++ {
		inProgress := s == StateStarting || s == StateStarted || s == StateDelta || s == StateLastDelta
		assert.Equal(t, inProgress, s.InProgress(), "%v", s)
		if s.Claimed() {
			assert.True(t, s.InProgress(), "%v", s)
		}
	}
	assert.False(t, StateLastDelta.Claimed())
	assert.Equal(t, "State(200)", State(200).String())
}

// SPDX-License-Identifier: Unlicense OR MIT

package manip

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gioui.org/manip/f32"
)

func TestCurveEval(t *testing.T) {
	// A header that sticks once scrolled past -50.
	sticky := Curve{
		{Begin: -1e9, Constant: 50},
		{Begin: -50, Linear: -1},
	}
	tests := []struct {
		curve Curve
		x     float32
		want  float32
	}{
		{nil, 7, 7},
		{Curve{{Constant: 2, Linear: 3}}, 2, 8},
		{Curve{{Quadratic: 1}}, 3, 9},
		{Curve{{Cubic: 2}}, -2, -16},
		{Curve{{Begin: 10, Linear: 1}}, 0, 0},
		{sticky, -100, 50},
		{sticky, -50, 50},
		{sticky, -10, 10},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.curve.Eval(tc.x), "curve %v at %v", tc.curve, tc.x)
	}
}

func TestRelationshipApply(t *testing.T) {
	primary := f32.Identity()
	primary.TranslationX, primary.TranslationY = 10, -30

	r := Relationship{Source: PropertyTranslationY, Target: PropertyTranslationX, Curve: Curve{{Linear: 2}}}
	got := r.Apply(primary)
	assert.Equal(t, float32(-60), got.TranslationX)
	assert.Zero(t, got.TranslationY)

	primary.UncompressedZoom = 2
	zoom := Relationship{Source: PropertyScale, Target: PropertyScale}
	got = zoom.Apply(primary)
	assert.Equal(t, float32(2), got.ZoomX)
	assert.Equal(t, float32(2), got.ZoomY)
}

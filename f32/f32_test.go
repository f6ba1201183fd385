// SPDX-License-Identifier: Unlicense OR MIT

package f32

import (
	"testing"
)

func TestRectCanon(t *testing.T) {
	r := Rect(10, 20, 0, 5)
	if r.Min != Pt(0, 5) || r.Max != Pt(10, 20) {
		t.Errorf("Rect did not canonicalize: have %v", r)
	}
	if got, want := r.Center(), Pt(5, 12.5); got != want {
		t.Errorf("center mismatch: have %v, want %v", got, want)
	}
	if !Pt(0, 5).In(r) || Pt(10, 5).In(r) {
		t.Errorf("In is not half open for %v", r)
	}
}

func TestTransformSince(t *testing.T) {
	initial := Identity().Offset(Pt(-10, -20))
	cur := initial.Offset(Pt(-5, 3))
	cur.UncompressedZoom = 2
	d := cur.Since(initial)
	if !d.Translation.Near(Pt(-5, 3)) {
		t.Errorf("translation delta mismatch: have %v, want {-5 3}", d.Translation)
	}
	if d.Scale != 2 {
		t.Errorf("scale delta mismatch: have %v, want 2", d.Scale)
	}
	if d.IsZero() {
		t.Error("non-trivial delta reported as zero")
	}
	if !initial.Since(initial).IsZero() {
		t.Error("self delta is not zero")
	}
}

func TestTransformEqualTolerance(t *testing.T) {
	a := Identity().Offset(Pt(1, 1))
	b := a
	b.TranslationX += 1e-6
	if !a.Equal(b) {
		t.Errorf("transforms within tolerance compare unequal: %v %v", a, b)
	}
	b.ZoomY = 1.5
	if a.Equal(b) {
		t.Errorf("different zoom compares equal: %v %v", a, b)
	}
}

func TestTransformBounds(t *testing.T) {
	tr := Transform{TranslationX: 5, TranslationY: -5, UncompressedZoom: 2, ZoomX: 2, ZoomY: 2}
	got := tr.Bounds(Rect(0, 0, 10, 10))
	if want := Rect(5, -5, 25, 15); got != want {
		t.Errorf("bounds mismatch: have %v, want %v", got, want)
	}
}

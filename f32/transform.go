// SPDX-License-Identifier: Unlicense OR MIT

package f32

// Transform is the content transform reported by a manipulation
// engine: a translation followed by a zoom around the origin.
//
// The zero Transform is not the identity; use Identity.
type Transform struct {
	TranslationX, TranslationY float32
	// UncompressedZoom is the zoom factor before overpan
	// compression is applied.
	UncompressedZoom float32
	// ZoomX and ZoomY are the effective, possibly compressed,
	// zoom factors along each axis.
	ZoomX, ZoomY float32
}

// Delta is the cumulative change between two transforms.
type Delta struct {
	Translation Point
	// Scale is the cumulative zoom factor. A Delta without
	// zooming has Scale 1.
	Scale float32
}

// Identity returns the transform that leaves content unchanged.
func Identity() Transform {
	return Transform{UncompressedZoom: 1, ZoomX: 1, ZoomY: 1}
}

// Translation returns the translation part of t.
func (t Transform) Translation() Point {
	return Point{X: t.TranslationX, Y: t.TranslationY}
}

// Offset returns t translated by o.
func (t Transform) Offset(o Point) Transform {
	t.TranslationX += o.X
	t.TranslationY += o.Y
	return t
}

// Apply maps p through t.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: p.X*t.ZoomX + t.TranslationX,
		Y: p.Y*t.ZoomY + t.TranslationY,
	}
}

// Bounds maps r through t.
func (t Transform) Bounds(r Rectangle) Rectangle {
	return Rectangle{Min: t.Apply(r.Min), Max: t.Apply(r.Max)}.Canon()
}

// Equal reports whether t and t2 are equal within the engine tolerance.
func (t Transform) Equal(t2 Transform) bool {
	return near(t.TranslationX, t2.TranslationX) &&
		near(t.TranslationY, t2.TranslationY) &&
		near(t.UncompressedZoom, t2.UncompressedZoom) &&
		near(t.ZoomX, t2.ZoomX) &&
		near(t.ZoomY, t2.ZoomY)
}

// Since returns the cumulative change from initial to t.
func (t Transform) Since(initial Transform) Delta {
	d := Delta{
		Translation: t.Translation().Sub(initial.Translation()),
		Scale:       1,
	}
	if initial.UncompressedZoom != 0 {
		d.Scale = t.UncompressedZoom / initial.UncompressedZoom
	}
	return d
}

// IsZero reports whether d represents no change.
func (d Delta) IsZero() bool {
	return d.Translation.Near(Point{}) && near(d.Scale, 1)
}

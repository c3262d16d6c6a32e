package renderer

import (
	"image"
	"math"

	"github.com/genricoloni/coverring/internal/geometry"
)

// dirtyBuffer covers anti-aliasing bleed around the changed pixels
const dirtyBuffer = 2

// dirtyRect bounds the pixels that change when the fill moves from one
// perimeter length to another. It only handles moves inside one section or
// into the next one and reports false otherwise, leaving the caller to
// repaint the whole panel.
func (r *Renderer) dirtyRect(from, to float64) (image.Rectangle, bool) {
	s0, rem0, ok0 := r.geo.Locate(from)
	s1, rem1, ok1 := r.geo.Locate(to)
	if !ok0 || !ok1 {
		return image.Rectangle{}, false
	}

	switch s1 - s0 {
	case 0:
		return r.sectionDirty(s0, rem0, rem1), true
	case 1:
		tail := r.sectionDirty(s0, rem0, r.geo.Length(s0))
		head := r.sectionDirty(s1, 0, rem1)
		return tail.Union(head), true
	}
	return image.Rectangle{}, false
}

// sectionDirty bounds the change between two section-local lengths
func (r *Renderer) sectionDirty(s geometry.Segment, a, b float64) image.Rectangle {
	var rect image.Rectangle
	if s.Kind() == geometry.KindBar {
		rect = r.geo.BarRect(s, a, b).Inset(-dirtyBuffer)
	} else {
		rect = r.cornerDirty(s, a, b)
	}
	return rect.Intersect(r.geo.Bounds())
}

// cornerDirty converts both lengths to angles on the corner arc and bounds
// the two arc points, grown by the band thickness. Within one quadrant the
// arc between the points never leaves that box.
func (r *Renderer) cornerDirty(s geometry.Segment, a, b float64) image.Rectangle {
	arc := r.geo.CornerArc()
	radius := float64(r.geo.CornerRadius)
	c := r.geo.CornerCenter(s)
	turns := s.Corner().Turns()

	point := func(rem float64) (float64, float64) {
		angle := (1 - rem/arc) * math.Pi / 2
		// NE frame: x to the right, y up; image rows grow downwards.
		dx, dy := radius*math.Cos(angle), -radius*math.Sin(angle)
		for i := 0; i < turns; i++ {
			dx, dy = -dy, dx
		}
		return float64(c.X) + dx, float64(c.Y) + dy
	}

	x0, y0 := point(a)
	x1, y1 := point(b)
	grow := float64(r.geo.BorderThickness + dirtyBuffer)

	return image.Rect(
		int(math.Floor(math.Min(x0, x1)-grow)),
		int(math.Floor(math.Min(y0, y1)-grow)),
		int(math.Ceil(math.Max(x0, x1)+grow)),
		int(math.Ceil(math.Max(y0, y1)+grow)),
	)
}

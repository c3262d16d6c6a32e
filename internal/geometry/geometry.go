// Package geometry derives the perimeter layout of a square rounded-rectangle
// panel: nine ordered sections starting at the midpoint of the top edge and
// running clockwise.
package geometry

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalid is returned when panel dimensions cannot carry the requested
// corner radius and border thickness
var ErrInvalid = errors.New("invalid panel geometry")

// Geometry is the immutable layout for one panel size and corner radius
type Geometry struct {
	Width           int
	Height          int
	CornerRadius    int
	CornerDiameter  int
	BorderThickness int
	// Perimeter is the rounded pixel length of the outline
	Perimeter int
	// Boundaries holds the cumulative end of every section.
	// Boundaries[TopLeftHalf] == Perimeter.
	Boundaries [SegmentCount]float64
}

// Recompute builds the geometry for a panel. Width and height must leave at
// least one pixel of straight edge on every side of the corners, the radius
// must be positive and the border must fit inside the radius.
func Recompute(width, height, cornerRadius, borderThickness int) (Geometry, error) {
	if cornerRadius <= 0 {
		return Geometry{}, fmt.Errorf("%w: corner radius %d must be positive", ErrInvalid, cornerRadius)
	}
	if borderThickness <= 0 || borderThickness > cornerRadius {
		return Geometry{}, fmt.Errorf("%w: border thickness %d must be in [1,%d]", ErrInvalid, borderThickness, cornerRadius)
	}
	diameter := 2 * cornerRadius
	if width < diameter+2 || height < diameter+2 {
		return Geometry{}, fmt.Errorf("%w: panel %dx%d too small for corner diameter %d",
			ErrInvalid, width, height, diameter)
	}

	g := Geometry{
		Width:           width,
		Height:          height,
		CornerRadius:    cornerRadius,
		CornerDiameter:  diameter,
		BorderThickness: borderThickness,
	}

	r := float64(cornerRadius)
	exact := 2*float64(width) + 2*float64(height) - 8*r + 2*math.Pi*r
	g.Perimeter = int(math.Round(exact))

	var sum float64
	for s := TopRightHalf; s < SegmentCount; s++ {
		sum += g.rawLength(s)
		g.Boundaries[s] = sum
	}
	// Absorb the rounding of the total into the last half bar.
	g.Boundaries[TopLeftHalf] = float64(g.Perimeter)

	return g, nil
}

func (g Geometry) rawLength(s Segment) float64 {
	r := float64(g.CornerRadius)
	switch s {
	case TopRightHalf, TopLeftHalf:
		return float64(g.Width)/2 - r
	case RightSide, LeftSide:
		return float64(g.Height - g.CornerDiameter)
	case Bottom:
		return float64(g.Width - g.CornerDiameter)
	default:
		return g.CornerArc()
	}
}

// IsZero reports whether g is the degenerate value returned on failure
func (g Geometry) IsZero() bool {
	return g.Perimeter == 0
}

// Bounds is the panel rectangle in local pixel coordinates
func (g Geometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// CornerArc is the length of one quarter-circle corner
func (g Geometry) CornerArc() float64 {
	return math.Pi / 2 * float64(g.CornerRadius)
}

// Start returns the cumulative length at which s begins
func (g Geometry) Start(s Segment) float64 {
	if s <= TopRightHalf {
		return 0
	}
	return g.Boundaries[s-1]
}

// Length returns the length of section s
func (g Geometry) Length(s Segment) float64 {
	return g.Boundaries[s] - g.Start(s)
}

// SectionAt returns the first section whose boundary is at or beyond length.
// Lengths outside [0, Perimeter] report ok == false.
func (g Geometry) SectionAt(length float64) (s Segment, ok bool) {
	if g.IsZero() || math.IsNaN(length) || length < 0 || length > float64(g.Perimeter) {
		return 0, false
	}
	for s = TopRightHalf; s < SegmentCount; s++ {
		if g.Boundaries[s] >= length {
			return s, true
		}
	}
	return 0, false
}

// Locate splits a perimeter length into its section and the remainder
// inside that section
func (g Geometry) Locate(length float64) (s Segment, remainder float64, ok bool) {
	s, ok = g.SectionAt(length)
	if !ok {
		return 0, 0, false
	}
	return s, length - g.Start(s), true
}

// BarRect returns the band pixels of bar section s between the section-local
// lengths from and to. It returns an empty rectangle for corners.
func (g Geometry) BarRect(s Segment, from, to float64) image.Rectangle {
	if s.Kind() != KindBar {
		return image.Rectangle{}
	}
	if from > to {
		from, to = to, from
	}
	t := g.BorderThickness
	w, h, r := float64(g.Width), float64(g.Height), float64(g.CornerRadius)
	px := func(v float64) int { return int(math.Round(v)) }

	switch s {
	case TopRightHalf:
		return image.Rect(px(w/2+from), 0, px(w/2+to), t)
	case RightSide:
		return image.Rect(g.Width-t, px(r+from), g.Width, px(r+to))
	case Bottom:
		return image.Rect(px(w-r-to), g.Height-t, px(w-r-from), g.Height)
	case LeftSide:
		return image.Rect(0, px(h-r-to), t, px(h-r-from))
	case TopLeftHalf:
		return image.Rect(px(r+from), 0, px(r+to), t)
	}
	return image.Rectangle{}
}

// CornerBlock returns the radius-sized square holding corner section s
func (g Geometry) CornerBlock(s Segment) image.Rectangle {
	w, h, r := g.Width, g.Height, g.CornerRadius
	switch s.Corner() {
	case NE:
		return image.Rect(w-r, 0, w, r)
	case SE:
		return image.Rect(w-r, h-r, w, h)
	case SW:
		return image.Rect(0, h-r, r, h)
	case NW:
		return image.Rect(0, 0, r, r)
	}
	return image.Rectangle{}
}

// CornerCenter returns the centre of the circle the corner arc belongs to
func (g Geometry) CornerCenter(s Segment) image.Point {
	w, h, r := g.Width, g.Height, g.CornerRadius
	switch s.Corner() {
	case NE:
		return image.Pt(w-r, r)
	case SE:
		return image.Pt(w-r, h-r)
	case SW:
		return image.Pt(r, h-r)
	case NW:
		return image.Pt(r, r)
	}
	return image.Point{}
}

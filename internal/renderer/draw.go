package renderer

import (
	"image"
	"image/draw"

	"github.com/genricoloni/coverring/internal/geometry"
)

// sweepEpsilon absorbs the rounding left by subtracting cumulative
// boundaries, so a completed corner uses the cached full stencil
const sweepEpsilon = 1e-6

// redrawAll clears the panel and paints the track band plus every filled
// section
func (r *Renderer) redrawAll(dst draw.Image) {
	off := dst.Bounds().Min
	draw.Draw(dst, r.geo.Bounds().Add(off), image.Transparent, image.Point{}, draw.Src)

	cur, ok := r.geo.SectionAt(r.current)
	for s := geometry.TopRightHalf; s < geometry.SegmentCount; s++ {
		var amount float64
		switch {
		case !ok:
		case s < cur:
			amount = r.geo.Length(s)
		case s == cur:
			amount = r.current - r.geo.Start(s)
		}
		r.drawSection(dst, s, amount)
	}
}

// drawIncremental fills every section before the current one and draws the
// partial current section. It reports false if the fill cannot be placed
// on the perimeter.
func (r *Renderer) drawIncremental(dst draw.Image) bool {
	cur, rem, ok := r.geo.Locate(r.current)
	if !ok {
		return false
	}
	for s := geometry.TopRightHalf; s < cur; s++ {
		r.drawSection(dst, s, r.geo.Length(s))
	}
	r.drawSection(dst, cur, rem)
	return true
}

// drawSection repaints one section with amount pixels of it filled. Every
// pixel it touches is written with draw.Src, so repeating a call is
// harmless.
func (r *Renderer) drawSection(dst draw.Image, s geometry.Segment, amount float64) {
	if s.Kind() == geometry.KindCorner {
		sweep := amount / r.geo.CornerArc() * 90
		if sweep > 90-sweepEpsilon {
			sweep = 90
		}
		r.drawCorner(dst, s, sweep)
		return
	}

	off := dst.Bounds().Min
	draw.Draw(dst, r.geo.BarRect(s, 0, r.geo.Length(s)).Add(off), r.track, image.Point{}, draw.Src)
	if amount > 0 {
		draw.Draw(dst, r.geo.BarRect(s, 0, amount).Add(off), r.fill, image.Point{}, draw.Src)
	}
}

// drawCorner composes track and partial fill for one corner in the scratch
// buffer, then copies the block onto dst
func (r *Renderer) drawCorner(dst draw.Image, s geometry.Segment, sweep float64) {
	q := s.Corner()
	sb := r.scratch.Bounds()

	draw.Draw(r.scratch, sb, image.Transparent, image.Point{}, draw.Src)
	draw.DrawMask(r.scratch, sb, r.track, image.Point{}, r.masks.FullFor(q), image.Point{}, draw.Over)

	switch {
	case sweep >= 90:
		draw.DrawMask(r.scratch, sb, r.fill, image.Point{}, r.masks.FullFor(q), image.Point{}, draw.Over)
	case sweep > 0:
		draw.DrawMask(r.scratch, sb, r.fill, image.Point{}, r.masks.PartialFor(q, sweep), image.Point{}, draw.Over)
	}

	block := r.geo.CornerBlock(s).Add(dst.Bounds().Min)
	draw.Draw(dst, block, r.scratch, image.Point{}, draw.Src)
}

// Package renderer draws playback progress as a fill running clockwise
// around the rounded border of a square panel, starting at the middle of the
// top edge. It redraws incrementally and reports the smallest rectangle the
// host needs to repaint after each frame.
package renderer

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/genricoloni/coverring/internal/domain"
	"github.com/genricoloni/coverring/internal/geometry"
	"github.com/genricoloni/coverring/internal/mask"
	"go.uber.org/zap"
)

// State is the repaint state between two Render calls
type State int

const (
	// StateClean means the surface already shows the current fill
	StateClean State = iota
	// StateLocalDirty means the fill advanced inside one section or into the next
	StateLocalDirty
	// StateWholeDirty means the whole panel must be redrawn
	StateWholeDirty
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateLocalDirty:
		return "local-dirty"
	case StateWholeDirty:
		return "whole-dirty"
	}
	return "unknown"
}

// Style holds the colours of the border band
type Style struct {
	// Fill colours the elapsed part of the track
	Fill color.Color
	// Track colours the band that has not been reached yet
	Track color.Color
}

// Renderer owns the fill state of one indicator. It is driven from a single
// goroutine and is not safe for concurrent use.
type Renderer struct {
	logger *zap.Logger

	fill  *image.Uniform
	track *image.Uniform

	width, height, radius, thickness int
	stale                            bool

	geo     geometry.Geometry
	masks   *mask.Cache
	scratch *image.RGBA

	ratio   float64
	current float64
	last    float64
	state   State
}

// New creates a renderer for a panel. Geometry is validated lazily on the
// first Render, which draws nothing while the configuration is invalid.
func New(logger *zap.Logger, width, height, radius, thickness int, style Style) *Renderer {
	if style.Fill == nil {
		style.Fill = color.White
	}
	if style.Track == nil {
		style.Track = color.Transparent
	}
	return &Renderer{
		logger:    logger,
		fill:      image.NewUniform(style.Fill),
		track:     image.NewUniform(style.Track),
		width:     width,
		height:    height,
		radius:    radius,
		thickness: thickness,
		stale:     true,
		masks:     mask.NewCache(radius, thickness),
		state:     StateWholeDirty,
	}
}

// Resize records a new panel size; the next Render redraws everything
func (r *Renderer) Resize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.invalidate()
}

// SetCornerRadius records a new corner radius; the next Render redraws
// everything with freshly built corner stencils
func (r *Renderer) SetCornerRadius(radius int) {
	if radius == r.radius {
		return
	}
	r.radius = radius
	r.invalidate()
}

// SetBorderThickness records a new band width
func (r *Renderer) SetBorderThickness(thickness int) {
	if thickness == r.thickness {
		return
	}
	r.thickness = thickness
	r.invalidate()
}

// NewTrack empties the fill and drops cached stencils
func (r *Renderer) NewTrack() {
	r.ratio, r.current, r.last = 0, 0, 0
	r.masks.Invalidate()
	r.state = StateWholeDirty
}

func (r *Renderer) invalidate() {
	r.stale = true
	r.state = StateWholeDirty
}

// SetCompletion moves the fill to ratio of the perimeter. Ratios outside
// [0,1] are clamped and NaN counts as 0.
func (r *Renderer) SetCompletion(ratio float64) {
	switch {
	case math.IsNaN(ratio), ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	r.ratio = ratio

	if r.stale || r.geo.IsZero() {
		// Geometry is rebuilt on the next Render, which redraws everything.
		r.state = StateWholeDirty
		return
	}

	filled := ratio * float64(r.geo.Perimeter)
	if r.state == StateClean {
		r.last = r.current
	}

	switch {
	case filled < r.current:
		r.state = StateWholeDirty
	case r.state == StateWholeDirty:
	default:
		from, okFrom := r.geo.SectionAt(r.last)
		to, okTo := r.geo.SectionAt(filled)
		if !okFrom || !okTo || to-from > 1 {
			r.state = StateWholeDirty
		} else if filled != r.current {
			r.state = StateLocalDirty
		}
	}

	r.current = filled
}

// Render brings surface up to date with the current fill and returns the
// rectangle that changed, in surface coordinates. The panel is drawn with
// its top-left corner at surface.Bounds().Min.
func (r *Renderer) Render(surface draw.Image) domain.DirtyRect {
	if r.stale {
		r.rebuild()
	}
	if r.geo.IsZero() {
		return domain.DirtyRect{}
	}

	off := surface.Bounds().Min
	whole := domain.DirtyRect{Rectangle: r.geo.Bounds().Add(off), Whole: true}

	var dirty domain.DirtyRect
	switch r.state {
	case StateClean:
		return domain.DirtyRect{}

	case StateLocalDirty:
		rect, ok := r.dirtyRect(r.last, r.current)
		if !ok || !r.drawIncremental(surface) {
			r.logger.Debug("Falling back to whole panel redraw",
				zap.Float64("last", r.last),
				zap.Float64("current", r.current))
			r.redrawAll(surface)
			dirty = whole
			break
		}
		dirty = domain.DirtyRect{Rectangle: rect.Add(off)}

	default:
		r.redrawAll(surface)
		dirty = whole
	}

	r.last = r.current
	r.state = StateClean
	return dirty
}

func (r *Renderer) rebuild() {
	r.stale = false

	geo, err := geometry.Recompute(r.width, r.height, r.radius, r.thickness)
	if err != nil {
		r.geo = geometry.Geometry{}
		r.logger.Error("Refusing to render with invalid panel geometry", zap.Error(err))
		return
	}

	r.geo = geo
	if r.masks.Configure(geo.CornerRadius, geo.BorderThickness) {
		r.logger.Debug("Corner stencils invalidated",
			zap.Int("radius", geo.CornerRadius),
			zap.Int("thickness", geo.BorderThickness))
	}
	r.scratch = image.NewRGBA(image.Rect(0, 0, geo.CornerRadius, geo.CornerRadius))
	r.current = r.ratio * float64(geo.Perimeter)
	r.last = r.current
	r.state = StateWholeDirty

	r.logger.Debug("Panel geometry rebuilt",
		zap.Int("width", geo.Width),
		zap.Int("height", geo.Height),
		zap.Int("perimeter", geo.Perimeter))
}

// State returns the pending repaint state
func (r *Renderer) State() State {
	return r.state
}

// FilledLength returns the current fill in perimeter pixels
func (r *Renderer) FilledLength() float64 {
	return r.current
}

// Section returns the section the fill currently ends in
func (r *Renderer) Section() (geometry.Segment, bool) {
	return r.geo.SectionAt(r.current)
}

// Geometry returns the geometry of the last successful rebuild
func (r *Renderer) Geometry() geometry.Geometry {
	return r.geo
}

// Masks exposes the corner stencil cache
func (r *Renderer) Masks() *mask.Cache {
	return r.masks
}

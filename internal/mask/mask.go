// Package mask rasterizes the quarter-annulus stencils used to draw the
// rounded corners of the progress border.
//
// Every mask is built in the orientation of the top-right (NE) corner: a
// radius-sized square whose circle centre sits at its bottom-left pixel
// corner, swept clockwise from straight up to straight right. Other corners
// are obtained by rotating the stencil.
package mask

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/coverring/internal/geometry"
	"golang.org/x/image/vector"
)

const (
	// wedgePad grows the pie wedge past the outer radius so its curved edge
	// never clips anti-aliased pixels of the band
	wedgePad = 3

	// kappa places cubic control points for a quarter circle
	kappa = 0.5522847498
)

// BuildFull rasterizes the full 90° band between radius and
// radius-thickness
func BuildFull(radius, thickness int) *image.Alpha {
	dst := image.NewAlpha(image.Rect(0, 0, radius, radius))
	if radius <= 0 || thickness <= 0 {
		return dst
	}
	if thickness > radius {
		thickness = radius
	}

	cx, cy := float32(0), float32(radius)
	outer := float32(radius)
	inner := float32(radius - thickness)
	k := float32(kappa)

	z := vector.NewRasterizer(radius, radius)
	z.DrawOp = draw.Src
	z.MoveTo(cx, cy-outer)
	z.CubeTo(cx+k*outer, cy-outer, cx+outer, cy-k*outer, cx+outer, cy)
	z.LineTo(cx+inner, cy)
	z.CubeTo(cx+inner, cy-k*inner, cx+k*inner, cy-inner, cx, cy-inner)
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	return dst
}

// BuildPartial rasterizes the part of the full band covered by a clockwise
// sweep of the given degrees. A sweep of 0 yields an empty mask and a sweep
// of 90 or more is identical to BuildFull.
func BuildPartial(radius, thickness int, sweep float64) *image.Alpha {
	full := BuildFull(radius, thickness)
	if math.IsNaN(sweep) || sweep <= 0 {
		return image.NewAlpha(full.Rect)
	}
	return maskIn(full, wedge(radius, math.Min(sweep, 90)))
}

// wedge rasterizes a pie slice slightly larger than the corner so that
// intersecting it with the band keeps only the swept part
func wedge(radius int, sweep float64) *image.Alpha {
	dst := image.NewAlpha(image.Rect(0, 0, radius, radius))

	cx, cy := float64(0), float64(radius)
	rw := float64(radius + wedgePad)
	phi := sweep * math.Pi / 180
	k := 4.0 / 3.0 * math.Tan(phi/4) * rw
	sin, cos := math.Sincos(phi)

	x0, y0 := cx, cy-rw
	x3, y3 := cx+rw*sin, cy-rw*cos

	z := vector.NewRasterizer(radius, radius)
	z.DrawOp = draw.Src
	z.MoveTo(float32(cx), float32(cy))
	z.LineTo(float32(x0), float32(y0))
	z.CubeTo(
		float32(x0+k), float32(y0),
		float32(x3-k*cos), float32(y3-k*sin),
		float32(x3), float32(y3),
	)
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	return dst
}

// maskIn keeps src only where m covers it (Porter-Duff "in")
func maskIn(src, m *image.Alpha) *image.Alpha {
	dst := image.NewAlpha(src.Rect)
	for i, a := range src.Pix {
		dst.Pix[i] = uint8((uint16(a)*uint16(m.Pix[i]) + 127) / 255)
	}
	return dst
}

// Rotate turns a NE-oriented stencil into the orientation of quadrant q.
// The result keeps the coverage in its alpha channel.
func Rotate(m *image.Alpha, q geometry.Quadrant) *image.NRGBA {
	switch q.Turns() {
	case 1:
		return imaging.Rotate270(m)
	case 2:
		return imaging.Rotate180(m)
	case 3:
		return imaging.Rotate90(m)
	}
	return imaging.Clone(m)
}

// IsEmpty reports whether no pixel of m has coverage
func IsEmpty(m *image.Alpha) bool {
	for _, a := range m.Pix {
		if a != 0 {
			return false
		}
	}
	return true
}

package mask

import (
	"image"

	"github.com/genricoloni/coverring/internal/geometry"
)

// Key identifies the stencil a cache currently holds
type Key struct {
	Radius    int
	Thickness int
}

// Cache memoizes the full corner stencil and its four rotations for one
// Key. Partial stencils are never cached because the sweep changes on every
// frame. A Cache is owned by the render goroutine and is not safe for
// concurrent use.
type Cache struct {
	key     Key
	full    *image.Alpha
	rotated [geometry.NW + 1]*image.NRGBA
	builds  int
}

// NewCache returns an empty cache for the given key
func NewCache(radius, thickness int) *Cache {
	return &Cache{key: Key{Radius: radius, Thickness: thickness}}
}

// Key returns the radius and thickness the cache serves
func (c *Cache) Key() Key {
	return c.key
}

// Configure switches the cache to a new key, dropping stencils built for the
// old one. It reports whether anything was invalidated.
func (c *Cache) Configure(radius, thickness int) bool {
	k := Key{Radius: radius, Thickness: thickness}
	if k == c.key {
		return false
	}
	c.key = k
	c.Invalidate()
	return true
}

// Invalidate forgets every cached stencil
func (c *Cache) Invalidate() {
	c.full = nil
	c.rotated = [geometry.NW + 1]*image.NRGBA{}
}

// Builds counts how many times the full stencil has been rasterized
func (c *Cache) Builds() int {
	return c.builds
}

// FullCornerMask returns the cached NE-oriented full stencil
func (c *Cache) FullCornerMask() *image.Alpha {
	if c.full == nil {
		c.full = BuildFull(c.key.Radius, c.key.Thickness)
		c.builds++
	}
	return c.full
}

// PartialCornerMask rebuilds the NE-oriented stencil for a sweep in degrees
func (c *Cache) PartialCornerMask(sweep float64) *image.Alpha {
	return BuildPartial(c.key.Radius, c.key.Thickness, sweep)
}

// FullFor returns the full stencil rotated into quadrant q
func (c *Cache) FullFor(q geometry.Quadrant) *image.NRGBA {
	if q < geometry.NE || q > geometry.NW {
		q = geometry.NE
	}
	if c.rotated[q] == nil {
		c.rotated[q] = Rotate(c.FullCornerMask(), q)
	}
	return c.rotated[q]
}

// PartialFor returns a partial stencil rotated into quadrant q
func (c *Cache) PartialFor(q geometry.Quadrant, sweep float64) *image.NRGBA {
	return Rotate(c.PartialCornerMask(sweep), q)
}

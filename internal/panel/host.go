// Package panel hosts the square cover panel: an artwork layer, the overlay
// the progress renderer draws into, and the composed frame published to disk.
package panel

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/coverring/internal/domain"
	"github.com/genricoloni/coverring/internal/geometry"
	"github.com/genricoloni/coverring/internal/mask"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// FrameFilename is the name of the published frame inside the output dir
const FrameFilename = "panel.png"

// Host composes and publishes panel frames. It is owned by a single
// goroutine (the engine loop) and is not safe for concurrent use.
type Host struct {
	logger   *zap.Logger
	path     string
	size     int
	radius   int
	interval time.Duration
	now      func() time.Time

	artwork *image.RGBA
	overlay *image.RGBA
	frame   *image.RGBA

	pending     image.Rectangle
	lastPublish time.Time
	published   int
}

// NewHost creates the panel surfaces and makes sure the output directory
// exists
func NewHost(logger *zap.Logger, cfg domain.Config) (*Host, error) {
	size := cfg.GetPanelSize()
	if size <= 0 {
		return nil, fmt.Errorf("invalid panel size: %d", size)
	}

	dir := cfg.GetOutputDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	bounds := image.Rect(0, 0, size, size)
	return &Host{
		logger:   logger,
		path:     filepath.Join(dir, FrameFilename),
		size:     size,
		radius:   cfg.GetCornerRadius(),
		interval: cfg.GetPresentInterval(),
		now:      time.Now,
		artwork:  image.NewRGBA(bounds),
		overlay:  image.NewRGBA(bounds),
		frame:    image.NewRGBA(bounds),
	}, nil
}

// Overlay returns the layer owned by the progress renderer
func (h *Host) Overlay() draw.Image {
	return h.overlay
}

// Frame returns the last composed frame
func (h *Host) Frame() *image.RGBA {
	return h.frame
}

// Path returns where frames are published
func (h *Host) Path() string {
	return h.path
}

// Published returns how many frames have been written to disk
func (h *Host) Published() int {
	return h.published
}

// SetArtwork replaces the background layer and recomposes the whole frame.
// Artwork of another size is cropped to the panel; nil clears the layer.
func (h *Host) SetArtwork(img image.Image) {
	bounds := h.artwork.Bounds()
	draw.Draw(h.artwork, bounds, image.Transparent, image.Point{}, draw.Src)

	if img != nil && !img.Bounds().Empty() {
		src := img
		if b := img.Bounds(); b.Dx() != h.size || b.Dy() != h.size {
			src = imaging.Fill(img, h.size, h.size, imaging.Center, imaging.Lanczos)
		}
		h.clipCorners(src)
	}

	h.compose(bounds)
	h.pending = bounds
}

// clipCorners copies src into the artwork layer, leaving the area outside
// the rounded corners transparent
func (h *Host) clipCorners(src image.Image) {
	sb := src.Bounds()
	draw.Draw(h.artwork, h.artwork.Bounds(), src, sb.Min, draw.Src)

	g, err := geometry.Recompute(h.size, h.size, h.radius, h.radius)
	if err != nil {
		h.logger.Debug("Artwork corners left square", zap.Error(err))
		return
	}

	disc := mask.BuildFull(h.radius, h.radius)
	for _, s := range []geometry.Segment{geometry.CornerNE, geometry.CornerSE, geometry.CornerSW, geometry.CornerNW} {
		block := g.CornerBlock(s)
		draw.DrawMask(h.artwork, block, src, sb.Min.Add(block.Min), mask.Rotate(disc, s.Corner()), image.Point{}, draw.Src)
	}
}

// Present recomposes the dirty area and publishes the frame, unless the
// last frame went out less than the present interval ago. Held back areas
// accumulate until the next publish or Flush.
func (h *Host) Present(ctx context.Context, dirty domain.DirtyRect) error {
	area := dirty.Rectangle
	if dirty.Whole {
		area = h.frame.Bounds()
	}
	area = area.Intersect(h.frame.Bounds())
	if area.Empty() && h.pending.Empty() {
		return nil
	}

	h.compose(area)
	h.pending = h.pending.Union(area)

	if !h.lastPublish.IsZero() && h.now().Sub(h.lastPublish) < h.interval {
		return nil
	}
	return h.publish(ctx)
}

// Flush publishes any frame held back by throttling
func (h *Host) Flush(ctx context.Context) error {
	if h.pending.Empty() {
		return nil
	}
	return h.publish(ctx)
}

// compose rebuilds area of the frame from the artwork and overlay layers
func (h *Host) compose(area image.Rectangle) {
	draw.Draw(h.frame, area, h.artwork, area.Min, draw.Src)
	draw.Draw(h.frame, area, h.overlay, area.Min, draw.Over)
}

// publish writes the frame next to its destination and renames it into
// place so readers never see a partial file
func (h *Host) publish(ctx context.Context) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(h.path), ".panel-*.png")
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	if err = imaging.Encode(tmp, h.frame, imaging.PNG); err != nil {
		err = multierr.Append(fmt.Errorf("failed to encode frame: %w", err), tmp.Close())
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if err = os.Rename(tmp.Name(), h.path); err != nil {
		return fmt.Errorf("failed to publish frame: %w", err)
	}

	h.logger.Debug("Frame published",
		zap.String("path", h.path),
		zap.Stringer("area", h.pending))

	h.pending = image.Rectangle{}
	h.lastPublish = h.now()
	h.published++
	return nil
}

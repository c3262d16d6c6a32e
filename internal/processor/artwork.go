package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF format support
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const (
	defaultBlurRadius = 15.0
	coverSizeRatio    = 0.80 // Cover size as percentage of the panel side
)

// ProcessorConfig holds configuration for artwork processing
type ProcessorConfig struct {
	BlurRadius       float64
	CoverSizePercent float64 // Cover side as percentage of the panel side (0.0-1.0)
}

// ArtworkProcessor renders album art into the square panel background
type ArtworkProcessor struct {
	logger *zap.Logger
	config ProcessorConfig
}

// NewArtworkProcessor creates a new artwork processor
func NewArtworkProcessor(logger *zap.Logger) *ArtworkProcessor {
	return &ArtworkProcessor{
		logger: logger,
		config: ProcessorConfig{
			BlurRadius:       defaultBlurRadius,
			CoverSizePercent: coverSizeRatio,
		},
	}
}

// Process decodes imageData and renders it into a size x size image.
// "fill" crops the cover to the square, "blur" centres a sharp cover on a
// blurred copy of itself so the progress band never hides the artwork.
func (p *ArtworkProcessor) Process(ctx context.Context, imageData []byte, size int, mode string) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid panel size: %d", size)
	}

	// 1. Decode image from bytes
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Validate image dimensions to prevent division by zero
	bounds := img.Bounds()
	if bounds.Dy() == 0 || bounds.Dx() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	switch mode {
	case "fill":
		p.logger.Debug("Filling panel with cover", zap.Int("size", size))
		return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), nil
	case "blur":
		return p.blurred(img, size), nil
	default:
		p.logger.Warn("Unknown processing mode, falling back to fill", zap.String("mode", mode))
		return imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos), nil
	}
}

func (p *ArtworkProcessor) blurred(img image.Image, size int) *image.NRGBA {
	// 2. Create blurred background covering the whole panel
	p.logger.Debug("Creating blurred background", zap.Int("size", size))
	background := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
	background = imaging.Blur(background, p.config.BlurRadius)

	// 3. Fit the sharp cover inside the inset square, keeping its aspect ratio
	inset := max(1, int(float64(size)*p.config.CoverSizePercent))
	cover := imaging.Fit(img, inset, inset, imaging.Lanczos)
	cb := cover.Bounds()
	p.logger.Debug("Resizing centered cover", zap.Int("w", cb.Dx()), zap.Int("h", cb.Dy()))

	// 4. Composite: paste sharp cover at center of blurred background
	return imaging.Paste(background, cover, image.Pt((size-cb.Dx())/2, (size-cb.Dy())/2))
}

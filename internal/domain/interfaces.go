package domain

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"time"
)

// Monitor defines the interface for monitoring media playback events
// Implementations should handle D-Bus/MPRIS communication
type Monitor interface {
	// Start begins monitoring for media events
	// It should block until context is cancelled or an error occurs
	Start(ctx context.Context) error

	// Stop gracefully stops the monitor
	Stop(ctx context.Context) error

	// Events returns a read-only channel that emits MediaMetadata
	// when media playback state changes
	Events() <-chan MediaMetadata

	// Positions returns a read-only channel of authoritative position
	// samples, produced by polling and by Seeked signals
	Positions() <-chan PositionSample
}

// Processor defines the interface for artwork processing
// Implementations turn encoded album art into the panel background
type Processor interface {
	// Process decodes imageData and renders it into a size x size image
	// mode specifies the processing type (e.g., "blur", "fill")
	Process(ctx context.Context, imageData []byte, size int, mode string) (image.Image, error)
}

// Fetcher defines the interface for retrieving album artwork
type Fetcher interface {
	// Fetch downloads or reads image data from a URL or local path
	// Returns the raw image bytes or an error
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Panel is the host surface the progress border is drawn onto
type Panel interface {
	// Overlay is the layer owned by the progress renderer
	Overlay() draw.Image

	// SetArtwork replaces the background layer; nil clears it
	SetArtwork(img image.Image)

	// Present recomposes the dirty area and publishes the frame
	Present(ctx context.Context, dirty DirtyRect) error

	// Flush publishes any frame held back by throttling
	Flush(ctx context.Context) error
}

// Config defines the interface for application configuration
type Config interface {
	// GetMode returns the current artwork processing mode
	GetMode() string

	// GetOutputDir returns the directory the panel frame is written to
	GetOutputDir() string

	// GetPanelSize returns the side of the square panel in pixels
	GetPanelSize() int

	// GetCornerRadius returns the corner radius of the panel border
	GetCornerRadius() int

	// GetBorderThickness returns the width of the progress band
	GetBorderThickness() int

	// GetFrameInterval returns the animation tick period
	GetFrameInterval() time.Duration

	// GetPollInterval returns how often the player position is polled
	GetPollInterval() time.Duration

	// GetPresentInterval returns the minimum delay between published frames
	GetPresentInterval() time.Duration

	// GetFillColor returns the colour of the elapsed part of the band
	GetFillColor() color.Color

	// GetTrackColor returns the colour of the remaining part of the band
	GetTrackColor() color.Color
}

package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/genricoloni/coverring/internal/domain"
	"github.com/genricoloni/coverring/internal/geometry"
	"go.uber.org/zap"
)

const (
	defaultOutputDir       = "/tmp/coverring"
	defaultMode            = "blur"
	defaultPanelSize       = 432
	panelHeightRatio       = 0.40 // Panel size as percentage of screen height
	cornerRadiusRatio      = 0.06 // Corner radius as percentage of panel size
	minCornerRadius        = 4
	defaultBorderThickness = 6
	defaultFrameInterval   = 50 * time.Millisecond
	defaultPollInterval    = 15 * time.Second
	defaultPresentInterval = 250 * time.Millisecond
	defaultFillColor       = "#1DB954FF"
	defaultTrackColor      = "#FFFFFF40"
)

// Modes lists the supported artwork processing modes
var Modes = []string{"blur", "fill"}

// AppConfig holds application configuration
type AppConfig struct {
	logger          *zap.Logger
	outputDir       string
	mode            string
	panelSize       int
	cornerRadius    int
	borderThickness int
	frameInterval   time.Duration
	pollInterval    time.Duration
	presentInterval time.Duration
	fillColor       color.Color
	trackColor      color.Color
}

// NewAppConfig creates a new application configuration instance.
// The screen resolution only provides the default panel size.
func NewAppConfig(logger *zap.Logger, res *domain.ScreenResolution) (*AppConfig, error) {
	c := &AppConfig{logger: logger}

	// Read from environment variables or use defaults
	c.outputDir = expandPath(stringEnv("COVERRING_OUTPUT_DIR", defaultOutputDir))

	c.mode = stringEnv("COVERRING_MODE", defaultMode)
	if !validMode(c.mode) {
		logger.Warn("Unsupported mode, using default",
			zap.String("mode", c.mode),
			zap.String("default", defaultMode))
		c.mode = defaultMode
	}

	size := defaultPanelSize
	if res != nil && res.Height > 0 {
		size = int(float64(res.Height) * panelHeightRatio)
	}
	c.panelSize = c.intEnv("COVERRING_PANEL_SIZE", size)
	c.cornerRadius = c.intEnv("COVERRING_CORNER_RADIUS",
		max(minCornerRadius, int(float64(c.panelSize)*cornerRadiusRatio)))
	c.borderThickness = c.intEnv("COVERRING_BORDER_THICKNESS", defaultBorderThickness)

	c.frameInterval = c.durationEnv("COVERRING_FRAME_INTERVAL", defaultFrameInterval)
	c.pollInterval = c.durationEnv("COVERRING_POLL_INTERVAL", defaultPollInterval)
	c.presentInterval = c.durationEnv("COVERRING_PRESENT_INTERVAL", defaultPresentInterval)

	c.fillColor = c.colorEnv("COVERRING_FILL_COLOR", defaultFillColor)
	c.trackColor = c.colorEnv("COVERRING_TRACK_COLOR", defaultTrackColor)

	// A panel that cannot hold its corners is a configuration error
	if _, err := geometry.Recompute(c.panelSize, c.panelSize, c.cornerRadius, c.borderThickness); err != nil {
		return nil, fmt.Errorf("invalid panel configuration: %w", err)
	}

	logger.Info("Configuration loaded",
		zap.String("outputDir", c.outputDir),
		zap.String("mode", c.mode),
		zap.Int("panelSize", c.panelSize),
		zap.Int("cornerRadius", c.cornerRadius),
		zap.Int("borderThickness", c.borderThickness),
		zap.Duration("frameInterval", c.frameInterval),
		zap.Duration("pollInterval", c.pollInterval))

	return c, nil
}

// GetMode returns the current artwork processing mode
func (c *AppConfig) GetMode() string {
	return c.mode
}

// GetOutputDir returns the directory the panel frame is written to
func (c *AppConfig) GetOutputDir() string {
	return c.outputDir
}

// GetPanelSize returns the side of the square panel in pixels
func (c *AppConfig) GetPanelSize() int {
	return c.panelSize
}

// GetCornerRadius returns the corner radius of the panel border
func (c *AppConfig) GetCornerRadius() int {
	return c.cornerRadius
}

// GetBorderThickness returns the width of the progress band
func (c *AppConfig) GetBorderThickness() int {
	return c.borderThickness
}

// GetFrameInterval returns the animation tick period
func (c *AppConfig) GetFrameInterval() time.Duration {
	return c.frameInterval
}

// GetPollInterval returns how often the player position is polled
func (c *AppConfig) GetPollInterval() time.Duration {
	return c.pollInterval
}

// GetPresentInterval returns the minimum delay between published frames
func (c *AppConfig) GetPresentInterval() time.Duration {
	return c.presentInterval
}

// GetFillColor returns the colour of the elapsed part of the band
func (c *AppConfig) GetFillColor() color.Color {
	return c.fillColor
}

// GetTrackColor returns the colour of the remaining part of the band
func (c *AppConfig) GetTrackColor() color.Color {
	return c.trackColor
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

func validMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (c *AppConfig) intEnv(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		c.logger.Warn("Invalid integer setting, using default",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Int("default", def))
		return def
	}
	return v
}

func (c *AppConfig) durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		c.logger.Warn("Invalid duration setting, using default",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Duration("default", def))
		return def
	}
	return v
}

func (c *AppConfig) colorEnv(key, def string) color.Color {
	raw := os.Getenv(key)
	if raw != "" {
		if col, err := ParseHexColor(raw); err == nil {
			return col
		}
		c.logger.Warn("Invalid colour setting, using default",
			zap.String("key", key),
			zap.String("value", raw),
			zap.String("default", def))
	}
	col, _ := ParseHexColor(def)
	return col
}

// ParseHexColor parses "RGB", "RGBA", "RRGGBB" or "RRGGBBAA", with or
// without a leading '#', into a non-premultiplied colour
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")

	var digits []uint8
	for i := 0; i < len(hex); i++ {
		v, ok := hexDigit(hex[i])
		if !ok {
			return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
		}
		digits = append(digits, v)
	}

	switch len(digits) {
	case 3, 4:
		c := color.NRGBA{R: digits[0] * 17, G: digits[1] * 17, B: digits[2] * 17, A: 255}
		if len(digits) == 4 {
			c.A = digits[3] * 17
		}
		return c, nil
	case 6, 8:
		c := color.NRGBA{
			R: digits[0]<<4 | digits[1],
			G: digits[2]<<4 | digits[3],
			B: digits[4]<<4 | digits[5],
			A: 255,
		}
		if len(digits) == 8 {
			c.A = digits[6]<<4 | digits[7]
		}
		return c, nil
	}
	return color.NRGBA{}, fmt.Errorf("invalid hex colour %q", s)
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

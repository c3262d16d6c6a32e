package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/genricoloni/coverring/internal/domain"
	"github.com/genricoloni/coverring/internal/geometry"
	"go.uber.org/zap"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg, err := NewAppConfig(zap.NewNop(), &domain.ScreenResolution{Width: 1920, Height: 1080})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GetOutputDir() != defaultOutputDir {
		t.Errorf("output dir: want %s, got %s", defaultOutputDir, cfg.GetOutputDir())
	}
	if cfg.GetMode() != "blur" {
		t.Errorf("mode: want blur, got %s", cfg.GetMode())
	}
	if cfg.GetPanelSize() != 432 {
		t.Errorf("panel size: want 40%% of 1080, got %d", cfg.GetPanelSize())
	}
	if cfg.GetCornerRadius() != 25 {
		t.Errorf("corner radius: want 25, got %d", cfg.GetCornerRadius())
	}
	if cfg.GetFrameInterval() != 50*time.Millisecond {
		t.Errorf("frame interval: got %v", cfg.GetFrameInterval())
	}
	if cfg.GetPollInterval() != 15*time.Second {
		t.Errorf("poll interval: got %v", cfg.GetPollInterval())
	}
	if cfg.GetFillColor() != (color.NRGBA{R: 0x1D, G: 0xB9, B: 0x54, A: 0xFF}) {
		t.Errorf("fill colour: got %v", cfg.GetFillColor())
	}
}

func TestNewAppConfig_NoScreen(t *testing.T) {
	cfg, err := NewAppConfig(zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetPanelSize() != defaultPanelSize {
		t.Errorf("panel size: want %d, got %d", defaultPanelSize, cfg.GetPanelSize())
	}
}

func TestNewAppConfig_Environment(t *testing.T) {
	t.Setenv("COVERRING_OUTPUT_DIR", "~/panels")
	t.Setenv("COVERRING_MODE", "fill")
	t.Setenv("COVERRING_PANEL_SIZE", "300")
	t.Setenv("COVERRING_CORNER_RADIUS", "20")
	t.Setenv("COVERRING_BORDER_THICKNESS", "3")
	t.Setenv("COVERRING_FRAME_INTERVAL", "20ms")
	t.Setenv("COVERRING_POLL_INTERVAL", "oops")
	t.Setenv("COVERRING_TRACK_COLOR", "#00f8")

	cfg, err := NewAppConfig(zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "panels"); cfg.GetOutputDir() != want {
		t.Errorf("output dir: want %s, got %s", want, cfg.GetOutputDir())
	}
	if cfg.GetMode() != "fill" {
		t.Errorf("mode: want fill, got %s", cfg.GetMode())
	}
	if cfg.GetPanelSize() != 300 || cfg.GetCornerRadius() != 20 || cfg.GetBorderThickness() != 3 {
		t.Errorf("geometry not read from env: %d/%d/%d",
			cfg.GetPanelSize(), cfg.GetCornerRadius(), cfg.GetBorderThickness())
	}
	if cfg.GetFrameInterval() != 20*time.Millisecond {
		t.Errorf("frame interval: want 20ms, got %v", cfg.GetFrameInterval())
	}
	if cfg.GetPollInterval() != defaultPollInterval {
		t.Errorf("invalid poll interval must fall back, got %v", cfg.GetPollInterval())
	}
	if cfg.GetTrackColor() != (color.NRGBA{B: 0xFF, A: 0x88}) {
		t.Errorf("track colour: got %v", cfg.GetTrackColor())
	}
}

func TestNewAppConfig_InvalidMode(t *testing.T) {
	t.Setenv("COVERRING_MODE", "lyrics")
	cfg, err := NewAppConfig(zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetMode() != defaultMode {
		t.Errorf("unsupported mode must fall back, got %s", cfg.GetMode())
	}
}

func TestNewAppConfig_InvalidGeometry(t *testing.T) {
	t.Setenv("COVERRING_PANEL_SIZE", "40")
	t.Setenv("COVERRING_CORNER_RADIUS", "30")

	_, err := NewAppConfig(zap.NewNop(), nil)
	if !errors.Is(err, geometry.ErrInvalid) {
		t.Fatalf("expected geometry error, got %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "#fff", want: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{in: "0f08", want: color.NRGBA{G: 255, A: 136}},
		{in: "#1DB954", want: color.NRGBA{R: 0x1D, G: 0xB9, B: 0x54, A: 255}},
		{in: "11223344", want: color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
		{in: "#12345", wantErr: true},
		{in: "#ggg", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: want %v, got %v (err %v)", tt.in, tt.want, got, err)
		}
	}
}

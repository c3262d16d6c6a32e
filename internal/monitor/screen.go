package monitor

import (
	"github.com/genricoloni/coverring/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// NewScreenResolution reports the primary display size, which only sizes
// the panel by default. It returns nil on headless systems.
func NewScreenResolution(logger *zap.Logger) *domain.ScreenResolution {
	if screenshot.NumActiveDisplays() <= 0 {
		logger.Warn("No active displays detected, panel size falls back to its default")
		return nil
	}

	bounds := screenshot.GetDisplayBounds(0)
	if bounds.Empty() {
		logger.Warn("Primary display reports no size, panel size falls back to its default")
		return nil
	}

	res := &domain.ScreenResolution{Width: bounds.Dx(), Height: bounds.Dy()}
	logger.Info("Screen resolution detected",
		zap.Int("width", res.Width),
		zap.Int("height", res.Height))
	return res
}

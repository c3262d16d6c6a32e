//go:build linux

package monitor

import (
	"context"
	"time"

	"github.com/genricoloni/coverring/internal/domain"
	"go.uber.org/zap"
)

// queryPosition reads the Position property of a player
func (m *MprisMonitor) queryPosition(bus string) (time.Duration, bool) {
	variant, err := m.conn.GetProperty(bus, mprisPath, propPosition)
	if err != nil {
		m.logger.Debug("Position not available", zap.String("player", bus), zap.Error(err))
		return 0, false
	}
	return microseconds(variant.Value())
}

// pollPositions periodically samples the active player, since MPRIS does
// not signal position changes during normal playback
func (m *MprisMonitor) pollPositions(ctx context.Context) {
	defer m.wg.Done()

	if m.pollInterval <= 0 {
		m.logger.Warn("Position polling disabled", zap.Duration("interval", m.pollInterval))
		return
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pollActivePlayer()
		}
	}
}

// pollActivePlayer emits one position sample for the active player, if any
func (m *MprisMonitor) pollActivePlayer() {
	name, st, ok := m.players.current()
	if !ok {
		return
	}

	statusName, err := m.readStatus(st.bus)
	if err != nil {
		m.logger.Debug("Failed to poll playback status", zap.String("player", name), zap.Error(err))
		return
	}
	status := parseStatus(statusName)

	position, ok := m.queryPosition(st.bus)
	if !ok {
		return
	}
	m.players.setStatus(name, status)

	m.emitPosition(domain.PositionSample{
		Player:   name,
		Position: position,
		Length:   st.length,
		Status:   status,
	})
}

func (m *MprisMonitor) emitPosition(sample domain.PositionSample) {
	select {
	case m.positions <- sample:
	default:
		m.warnDropped("position")
	}
}

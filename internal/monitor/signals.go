//go:build linux

package monitor

import (
	"context"
	"strings"

	"github.com/genricoloni/coverring/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// dispatchSignals routes matched bus signals to their handlers until ctx
// is cancelled
func (m *MprisMonitor) dispatchSignals(ctx context.Context) {
	defer m.wg.Done()

	signals := make(chan *dbus.Signal, 10)
	m.conn.Signal(signals)

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("Signal dispatch stopped")
			return
		case sig := <-signals:
			if sig == nil {
				continue
			}
			switch sig.Name {
			case signalPropertiesChanged:
				m.handlePropertiesChanged(sig)
			case signalSeeked:
				m.handleSeeked(sig)
			case signalNameOwnerChanged:
				m.handleNameOwnerChanged(sig)
			}
		}
	}
}

// handlePropertiesChanged reacts to Metadata and PlaybackStatus changes.
// The body is (interface, changed properties, invalidated names); whatever
// the player left out is read back from it.
func (m *MprisMonitor) handlePropertiesChanged(sig *dbus.Signal) {
	if len(sig.Body) < 2 {
		return
	}
	if iface, _ := sig.Body[0].(string); iface != playerInterface {
		return
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	mdVariant, hasMetadata := changed["Metadata"]
	statusVariant, hasStatus := changed["PlaybackStatus"]
	if !hasMetadata && !hasStatus {
		return
	}

	var md map[string]dbus.Variant
	if hasMetadata {
		if md, ok = mdVariant.Value().(map[string]dbus.Variant); !ok {
			m.logger.Warn("Ignoring signal with malformed metadata", zap.String("sender", sig.Sender))
			return
		}
	} else {
		md, _, _ = m.readMetadata(sig.Sender)
	}

	var status string
	if hasStatus {
		if status, ok = statusVariant.Value().(string); !ok {
			m.logger.Warn("Ignoring signal with malformed status", zap.String("sender", sig.Sender))
			return
		}
	} else {
		status, _ = m.readStatus(sig.Sender)
	}

	m.publish(m.players.resolve(sig.Sender), sig.Sender, md, status)
}

// handleNameOwnerChanged follows players joining and leaving the bus.
// The body is (name, old owner, new owner); an empty owner means none.
func (m *MprisMonitor) handleNameOwnerChanged(sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}
	name, _ := sig.Body[0].(string)
	if !strings.HasPrefix(name, mprisPrefix) {
		return
	}
	oldOwner, _ := sig.Body[1].(string)
	newOwner, _ := sig.Body[2].(string)

	if oldOwner != "" {
		m.players.release(oldOwner, name, newOwner == "")
	}
	if newOwner == "" {
		m.logger.Info("MPRIS player left", zap.String("player", name))
		return
	}

	m.players.bind(newOwner, name)
	if oldOwner != "" {
		m.logger.Debug("MPRIS player changed owner",
			zap.String("player", name), zap.String("owner", newOwner))
		return
	}

	m.logger.Info("MPRIS player joined", zap.String("player", name), zap.String("owner", newOwner))
	if err := m.announcePlayer(name); err != nil {
		m.logger.Warn("Failed to read new player state",
			zap.String("player", name), zap.Error(err))
	}
}

// handleSeeked turns a Seeked signal into an authoritative position sample
func (m *MprisMonitor) handleSeeked(sig *dbus.Signal) {
	if len(sig.Body) < 1 {
		return
	}
	position, ok := microseconds(sig.Body[0])
	if !ok {
		m.logger.Debug("Invalid Seeked position, ignoring")
		return
	}

	name := m.players.resolve(sig.Sender)
	sample := domain.PositionSample{
		Player:   name,
		Position: position,
		Status:   domain.StatusPlaying,
		Seeked:   true,
	}
	if st, ok := m.players.lookup(name); ok {
		sample.Length = st.length
		sample.Status = st.status
	}

	m.logger.Debug("Player seeked", zap.String("player", name), zap.Duration("position", position))
	m.emitPosition(sample)
}

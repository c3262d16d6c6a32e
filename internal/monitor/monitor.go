//go:build linux

package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/coverring/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	mprisPrefix         = "org.mpris.MediaPlayer2."
	mprisPath           = "/org/mpris/MediaPlayer2"
	playerInterface     = "org.mpris.MediaPlayer2.Player"
	propertiesInterface = "org.freedesktop.DBus.Properties"
	busInterface        = "org.freedesktop.DBus"

	propMetadata = playerInterface + ".Metadata"
	propStatus   = playerInterface + ".PlaybackStatus"
	propPosition = playerInterface + ".Position"

	signalPropertiesChanged = propertiesInterface + ".PropertiesChanged"
	signalNameOwnerChanged  = busInterface + ".NameOwnerChanged"
	signalSeeked            = playerInterface + ".Seeked"

	// dropWarningInterval rate limits "channel full" warnings
	dropWarningInterval = 5 * time.Second
)

// subscription is a match rule the monitor installs on the bus.
// Only required rules make Start fail.
type subscription struct {
	member   string
	required bool
	options  []dbus.MatchOption
}

var subscriptions = []subscription{
	{
		member:   "PropertiesChanged",
		required: true,
		options: []dbus.MatchOption{
			dbus.WithMatchObjectPath(mprisPath),
			dbus.WithMatchInterface(propertiesInterface),
			dbus.WithMatchMember("PropertiesChanged"),
		},
	},
	{
		// Seeked is the only way to learn about jumps between two polls
		member: "Seeked",
		options: []dbus.MatchOption{
			dbus.WithMatchObjectPath(mprisPath),
			dbus.WithMatchInterface(playerInterface),
			dbus.WithMatchMember("Seeked"),
		},
	},
	{
		member: "NameOwnerChanged",
		options: []dbus.MatchOption{
			dbus.WithMatchInterface(busInterface),
			dbus.WithMatchMember("NameOwnerChanged"),
		},
	},
}

// MprisMonitor follows MPRIS players on the session bus. It emits track
// changes on Events and position samples of the active player on Positions.
type MprisMonitor struct {
	logger       *zap.Logger
	pollInterval time.Duration
	events       chan domain.MediaMetadata
	positions    chan domain.PositionSample
	players      *registry

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	conn    DBusClient
	wg      sync.WaitGroup // producers of events and positions

	dropMu   sync.Mutex
	lastDrop time.Time
}

// NewMprisMonitor creates a new MPRIS monitor instance
func NewMprisMonitor(logger *zap.Logger, cfg domain.Config) *MprisMonitor {
	return &MprisMonitor{
		logger:       logger,
		pollInterval: cfg.GetPollInterval(),
		events:       make(chan domain.MediaMetadata, 10),
		positions:    make(chan domain.PositionSample, 10),
		players:      newRegistry(),
	}
}

// Start connects to the session bus and blocks until ctx is cancelled or
// Stop is called
func (m *MprisMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.running, m.cancel = true, cancel
	m.mu.Unlock()

	conn, err := NewStdDBusClient()
	if err != nil {
		m.mu.Lock()
		m.running, m.cancel = false, nil
		m.mu.Unlock()
		cancel()
		m.logger.Error("Failed to connect to session bus", zap.Error(err))
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	if runCtx.Err() != nil {
		m.logger.Info("Monitor stopped while connecting")
		m.closeConn(conn)
		return runCtx.Err()
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	m.wg.Add(1)
	err = m.scanPlayers()
	m.wg.Done()
	if err != nil {
		m.logger.Warn("Failed to detect existing players", zap.Error(err))
	}

	if err := m.subscribe(conn); err != nil {
		return err
	}

	m.wg.Add(2)
	go m.dispatchSignals(runCtx)
	go m.pollPositions(runCtx)

	m.logger.Info("MPRIS monitor started", zap.Duration("pollInterval", m.pollInterval))
	<-runCtx.Done()
	m.logger.Info("MPRIS monitor stopped")
	return runCtx.Err()
}

func (m *MprisMonitor) subscribe(conn DBusClient) error {
	for _, s := range subscriptions {
		err := conn.AddMatchSignal(s.options...)
		switch {
		case err == nil:
			m.logger.Debug("Subscribed to signal", zap.String("member", s.member))
		case s.required:
			m.logger.Error("Failed to add match signal", zap.String("member", s.member), zap.Error(err))
			return fmt.Errorf("failed to add %s match signal: %w", s.member, err)
		default:
			m.logger.Warn("Signal unavailable, continuing without it",
				zap.String("member", s.member), zap.Error(err))
		}
	}
	return nil
}

// Stop cancels monitoring, waits for the producers and closes both channels
func (m *MprisMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	m.wg.Wait()
	close(m.events)
	close(m.positions)

	m.mu.Lock()
	if m.conn != nil {
		m.closeConn(m.conn)
	}
	m.mu.Unlock()

	m.logger.Info("MPRIS monitor shutdown complete")
	return nil
}

func (m *MprisMonitor) closeConn(conn DBusClient) {
	if err := conn.Close(); err != nil {
		m.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
	}
}

// Events returns a read-only channel that emits MediaMetadata
func (m *MprisMonitor) Events() <-chan domain.MediaMetadata {
	return m.events
}

// Positions returns a read-only channel of authoritative position samples
func (m *MprisMonitor) Positions() <-chan domain.PositionSample {
	return m.positions
}

// scanPlayers registers the players already on the bus and announces
// what each of them is playing
func (m *MprisMonitor) scanPlayers() error {
	names, err := m.conn.ListNames()
	if err != nil {
		return fmt.Errorf("failed to list bus names: %w", err)
	}

	found := 0
	for _, name := range names {
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}
		found++

		if unique, err := m.conn.GetNameOwner(name); err == nil {
			m.players.bind(unique, name)
		}
		if err := m.announcePlayer(name); err != nil {
			m.logger.Warn("Failed to read player state",
				zap.String("player", name), zap.Error(err))
		}
	}

	m.logger.Info("Player detection complete", zap.Int("count", found))
	return nil
}

// announcePlayer reads the full state of a player and emits it
func (m *MprisMonitor) announcePlayer(name string) error {
	md, ok, err := m.readMetadata(name)
	if err != nil {
		return err
	}
	if !ok {
		m.logger.Debug("Player has no track loaded", zap.String("player", name))
		return nil
	}

	status, err := m.readStatus(name)
	if err != nil {
		return err
	}

	m.publish(name, name, md, status)
	return nil
}

// readMetadata fetches the Metadata property. ok is false when the player
// returns something other than a dictionary, which happens when it has
// nothing loaded.
func (m *MprisMonitor) readMetadata(bus string) (map[string]dbus.Variant, bool, error) {
	v, err := m.conn.GetProperty(bus, mprisPath, propMetadata)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get metadata: %w", err)
	}
	md, ok := v.Value().(map[string]dbus.Variant)
	return md, ok, nil
}

func (m *MprisMonitor) readStatus(bus string) (string, error) {
	v, err := m.conn.GetProperty(bus, mprisPath, propStatus)
	if err != nil {
		return "", fmt.Errorf("failed to get playback status: %w", err)
	}
	status, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("invalid playback status format: %T", v.Value())
	}
	return status, nil
}

// publish completes a player report with its position, records it and
// emits it. Stale intermediate states are dropped when the engine lags.
func (m *MprisMonitor) publish(name, bus string, md map[string]dbus.Variant, status string) {
	meta := m.decodeMetadata(md, status)
	meta.Player = name
	meta.Position, _ = m.queryPosition(bus)
	m.players.update(name, bus, meta)

	select {
	case m.events <- meta:
		m.logger.Info("Media change detected",
			zap.String("player", name),
			zap.String("title", meta.Title),
			zap.String("artist", meta.Artist),
			zap.Duration("length", meta.Length),
			zap.String("status", string(meta.Status)))
	default:
		m.warnDropped("metadata")
	}
}

// warnDropped logs at most one warning per interval, so fast skipping
// does not flood the log
func (m *MprisMonitor) warnDropped(kind string) {
	m.dropMu.Lock()
	defer m.dropMu.Unlock()

	now := time.Now()
	if now.Sub(m.lastDrop) < dropWarningInterval {
		return
	}
	m.lastDrop = now
	m.logger.Warn("Monitor channel full, dropping update", zap.String("kind", kind))
}

//go:build linux

package monitor

import (
	"fmt"
	"time"

	"github.com/genricoloni/coverring/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// xesam / mpris metadata keys read by the monitor
const (
	keyTitle   = "xesam:title"
	keyArtist  = "xesam:artist"
	keyAlbum   = "xesam:album"
	keyArtURL  = "mpris:artUrl"
	keyTrackID = "mpris:trackid"
	keyLength  = "mpris:length"
)

// decodeMetadata turns an MPRIS metadata map and a PlaybackStatus string
// into a track description. Missing or mistyped fields stay zero.
func (m *MprisMonitor) decodeMetadata(md map[string]dbus.Variant, status string) domain.MediaMetadata {
	meta := domain.MediaMetadata{Status: parseStatus(status)}
	if md == nil {
		return meta
	}

	meta.Title = textField(md, keyTitle)
	meta.Album = textField(md, keyAlbum)
	meta.ArtUrl = textField(md, keyArtURL)
	meta.Artist = m.firstArtist(md)

	if meta.ArtUrl == "" {
		m.logger.Debug("Track has no artwork", zap.String("title", meta.Title))
	}

	// trackid is an object path, some players send a plain string
	switch id := valueOf(md, keyTrackID).(type) {
	case dbus.ObjectPath:
		meta.TrackID = string(id)
	case string:
		meta.TrackID = id
	}

	if raw := valueOf(md, keyLength); raw != nil {
		if length, ok := microseconds(raw); ok {
			meta.Length = length
		} else {
			m.logger.Debug("Ignoring track length",
				zap.String("type", fmt.Sprintf("%T", raw)))
		}
	}
	return meta
}

// firstArtist reads xesam:artist, a list by definition but a bare string
// for some players
func (m *MprisMonitor) firstArtist(md map[string]dbus.Variant) string {
	switch v := valueOf(md, keyArtist).(type) {
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case string:
		return v
	case nil:
	default:
		m.logger.Debug("Ignoring artist", zap.String("type", fmt.Sprintf("%T", v)))
	}
	return ""
}

func valueOf(md map[string]dbus.Variant, key string) interface{} {
	v, ok := md[key]
	if !ok {
		return nil
	}
	return v.Value()
}

func textField(md map[string]dbus.Variant, key string) string {
	s, _ := valueOf(md, key).(string)
	return s
}

func parseStatus(status string) domain.PlayerStatus {
	switch status {
	case "Playing":
		return domain.StatusPlaying
	case "Paused":
		return domain.StatusPaused
	}
	return domain.StatusStopped
}

// microseconds converts an MPRIS time value. MPRIS defines it as int64, but
// some players send unsigned or 32-bit integers.
func microseconds(v interface{}) (time.Duration, bool) {
	var us int64
	switch n := v.(type) {
	case int64:
		us = n
	case uint64:
		us = int64(n)
	case int32:
		us = int64(n)
	case uint32:
		us = int64(n)
	case int:
		us = int64(n)
	case float64:
		us = int64(n)
	default:
		return 0, false
	}
	if us < 0 {
		return 0, false
	}
	return time.Duration(us) * time.Microsecond, true
}

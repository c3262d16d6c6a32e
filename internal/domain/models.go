package domain

import (
	"image"
	"time"
)

// PlayerStatus represents the current state of the media player
type PlayerStatus string

const (
	// StatusPlaying indicates the media is currently playing
	StatusPlaying PlayerStatus = "Playing"
	// StatusPaused indicates the media is paused
	StatusPaused PlayerStatus = "Paused"
	// StatusStopped indicates the media is stopped
	StatusStopped PlayerStatus = "Stopped"
)

// MediaMetadata contains information about the currently playing media
type MediaMetadata struct {
	// Player is the well-known bus name of the reporting player
	Player string
	// TrackID is the mpris:trackid of the track, if the player sends one
	TrackID string
	// Title of the currently playing track
	Title string
	// Artist name
	Artist string
	// Album name
	Album string
	// ArtUrl is the URL or local path to the album artwork
	ArtUrl string
	// Length is the track duration, zero when unknown
	Length time.Duration
	// Position is the playback position when the event was built
	Position time.Duration
	// Status is the current playback status
	Status PlayerStatus
}

// SameTrack reports whether m and other describe the same track
func (m MediaMetadata) SameTrack(other MediaMetadata) bool {
	if m.TrackID != "" || other.TrackID != "" {
		return m.TrackID == other.TrackID
	}
	return m.Title == other.Title && m.Artist == other.Artist && m.Album == other.Album
}

// PositionSample is an authoritative position report from a player
type PositionSample struct {
	Player   string
	Position time.Duration
	Length   time.Duration
	Status   PlayerStatus
	// Seeked is set when the sample comes from a Seeked signal rather than
	// from periodic polling
	Seeked bool
}

// ScreenResolution holds the display dimensions
type ScreenResolution struct {
	Width  int
	Height int
}

// DirtyRect is the area of the panel that changed during a render, in panel
// pixel coordinates
type DirtyRect struct {
	image.Rectangle
	// Whole is set when the entire panel was redrawn
	Whole bool
}

//go:build linux

package monitor

import (
	"fmt"
	"testing"
	"time"

	"github.com/genricoloni/coverring/internal/domain"
	"github.com/godbus/dbus/v5"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

// TestHandlePropertiesChanged_HappyPath verifies the standard scenario: a valid signal produces a valid event.
func TestHandlePropertiesChanged_HappyPath(t *testing.T) {
	logger := zap.NewNop()
	mon := NewMprisMonitor(logger, testConfig{})
	mon.conn = &noopDBusClient{} // Prevent panic if code tries to call DBus
	mon.running = true
	mon.players.bind(":1.100", "org.mpris.MediaPlayer2.spotify")

	expectedTitle := "Bohemian Rhapsody"
	expectedArtist := "Queen"
	expectedArtUrl := "https://example.com/cover.jpg"

	// Simulate complete D-Bus signal
	signal := &dbus.Signal{
		Name:   "org.freedesktop.DBus.Properties.PropertiesChanged",
		Sender: ":1.100",
		Body: []interface{}{
			"org.mpris.MediaPlayer2.Player",
			map[string]dbus.Variant{
				"Metadata": dbus.MakeVariant(map[string]dbus.Variant{
					"xesam:title":  dbus.MakeVariant(expectedTitle),
					"xesam:artist": dbus.MakeVariant([]string{expectedArtist}),
					"mpris:artUrl": dbus.MakeVariant(expectedArtUrl),
				}),
				"PlaybackStatus": dbus.MakeVariant("Playing"),
			},
			[]string{},
		},
	}

	go mon.handlePropertiesChanged(signal)

	select {
	case event := <-mon.Events():
		if event.Title != expectedTitle {
			t.Errorf("Title: expected '%s', got '%s'", expectedTitle, event.Title)
		}
		if event.Artist != expectedArtist {
			t.Errorf("Artist: expected '%s', got '%s'", expectedArtist, event.Artist)
		}
		if event.Status != domain.StatusPlaying {
			t.Errorf("Status: expected Playing, got %v", event.Status)
		}
		if event.Player != "org.mpris.MediaPlayer2.spotify" {
			t.Errorf("Player: expected well-known name, got '%s'", event.Player)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout: Event was not emitted")
	}
}

// TestHandlePropertiesChanged_EdgeCases consolidates all invalid/ignored scenarios into a table test.
func TestHandlePropertiesChanged_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		signal *dbus.Signal
	}{
		{
			name: "Empty Body",
			signal: &dbus.Signal{
				Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
				Body: []interface{}{},
			},
		},
		{
			name: "Wrong Interface",
			signal: &dbus.Signal{
				Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
				Body: []interface{}{"org.mpris.MediaPlayer2", map[string]dbus.Variant{}, []string{}},
			},
		},
		{
			name: "Short Body",
			signal: &dbus.Signal{
				Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
				Body: []interface{}{"org.mpris.MediaPlayer2.Player"}, // Missing props
			},
		},
		{
			name: "Invalid Metadata Type (Int instead of Map)",
			signal: &dbus.Signal{
				Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
				Body: []interface{}{
					"org.mpris.MediaPlayer2.Player",
					map[string]dbus.Variant{"Metadata": dbus.MakeVariant(12345)},
					[]string{},
				},
			},
		},
		{
			name: "Invalid PlaybackStatus Type (Array instead of String)",
			signal: &dbus.Signal{
				Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
				Body: []interface{}{
					"org.mpris.MediaPlayer2.Player",
					map[string]dbus.Variant{"PlaybackStatus": dbus.MakeVariant([]string{"Playing"})},
					[]string{},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mon := NewMprisMonitor(zap.NewNop(), testConfig{})
			mon.conn = &noopDBusClient{}
			mon.running = true

			// Non-blocking call or goroutine
			mon.handlePropertiesChanged(tt.signal)

			select {
			case <-mon.Events():
				t.Error("Should NOT emit event for invalid input")
			case <-time.After(50 * time.Millisecond):
				// Pass
			}
		})
	}
}

// TestHandlePropertiesChanged_DataVariations tests valid parsing variations (Artist types, Status strings, etc.)
func TestHandlePropertiesChanged_DataVariations(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]dbus.Variant
		check func(*testing.T, domain.MediaMetadata)
	}{
		{
			name: "Artist as String (Non-compliant)",
			props: map[string]dbus.Variant{
				"Metadata": dbus.MakeVariant(map[string]dbus.Variant{
					"xesam:artist": dbus.MakeVariant("Single Artist"),
				}),
				"PlaybackStatus": dbus.MakeVariant("Playing"),
			},
			check: func(t *testing.T, e domain.MediaMetadata) {
				if e.Artist != "Single Artist" {
					t.Errorf("Expected 'Single Artist', got '%s'", e.Artist)
				}
			},
		},
		{
			name: "Empty Art URL",
			props: map[string]dbus.Variant{
				"Metadata": dbus.MakeVariant(map[string]dbus.Variant{
					"mpris:artUrl": dbus.MakeVariant(""),
					"xesam:title":  dbus.MakeVariant("Song"),
				}),
				"PlaybackStatus": dbus.MakeVariant("Playing"),
			},
			check: func(t *testing.T, e domain.MediaMetadata) {
				if e.ArtUrl != "" {
					t.Errorf("Expected empty ArtUrl, got '%s'", e.ArtUrl)
				}
			},
		},
		{
			name: "Status Paused",
			props: map[string]dbus.Variant{
				"PlaybackStatus": dbus.MakeVariant("Paused"),
			},
			check: func(t *testing.T, e domain.MediaMetadata) {
				if e.Status != domain.StatusPaused {
					t.Errorf("Expected Paused, got %v", e.Status)
				}
			},
		},
		{
			name: "Status Stopped",
			props: map[string]dbus.Variant{
				"PlaybackStatus": dbus.MakeVariant("Stopped"),
			},
			check: func(t *testing.T, e domain.MediaMetadata) {
				if e.Status != domain.StatusStopped {
					t.Errorf("Expected Stopped, got %v", e.Status)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mon := NewMprisMonitor(zap.NewNop(), testConfig{})
			mon.conn = &noopDBusClient{}
			mon.running = true

			signal := &dbus.Signal{
				Name:   "org.freedesktop.DBus.Properties.PropertiesChanged",
				Sender: ":1.99",
				Body:   []interface{}{"org.mpris.MediaPlayer2.Player", tt.props, []string{}},
			}

			go mon.handlePropertiesChanged(signal)

			select {
			case event := <-mon.Events():
				tt.check(t, event)
			case <-time.After(1 * time.Second):
				t.Fatal("Timeout waiting for event")
			}
		})
	}
}

// noopDBusClient is a stub to prevent panics during unit tests where
// we don't want to use full mocks but code calls GetProperty/ListNames.
type noopDBusClient struct{}

func (n *noopDBusClient) Close() error                             { return nil }
func (n *noopDBusClient) AddMatchSignal(...dbus.MatchOption) error { return nil }
func (n *noopDBusClient) Signal(chan<- *dbus.Signal)               {}
func (n *noopDBusClient) ListNames() ([]string, error)             { return []string{}, nil }
func (n *noopDBusClient) GetNameOwner(string) (string, error)      { return "", fmt.Errorf("noop") }
func (n *noopDBusClient) GetProperty(string, string, string) (dbus.Variant, error) {
	return dbus.MakeVariant(""), fmt.Errorf("noop")
}

// testConfig supplies the only setting the monitor reads
type testConfig struct {
	domain.Config
}

func (testConfig) GetPollInterval() time.Duration { return 10 * time.Millisecond }

// TestHandleNameOwnerChanged verifies player lifecycle tracking
func TestHandleNameOwnerChanged(t *testing.T) {
	const spotify = "org.mpris.MediaPlayer2.spotify"

	tests := []struct {
		name       string
		existing   map[string]string
		body       []interface{}
		wantOwners map[string]string
	}{
		{
			name:       "New Player Appears",
			body:       []interface{}{spotify, "", ":1.50"},
			wantOwners: map[string]string{":1.50": spotify},
		},
		{
			name:       "Player Disappears",
			existing:   map[string]string{":1.50": spotify},
			body:       []interface{}{spotify, ":1.50", ""},
			wantOwners: map[string]string{},
		},
		{
			name:       "Owner Transfer",
			existing:   map[string]string{":1.50": spotify},
			body:       []interface{}{spotify, ":1.50", ":1.51"},
			wantOwners: map[string]string{":1.51": spotify},
		},
		{
			name:       "Non-MPRIS Service Ignored",
			body:       []interface{}{"com.example.service", "", ":1.99"},
			wantOwners: map[string]string{},
		},
		{
			name:       "Short Body",
			body:       []interface{}{spotify, ""},
			wantOwners: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mon := NewMprisMonitor(zap.NewNop(), testConfig{})
			mon.conn = &noopDBusClient{} // new players are queried
			for unique, name := range tt.existing {
				mon.players.bind(unique, name)
			}

			mon.handleNameOwnerChanged(&dbus.Signal{
				Name: "org.freedesktop.DBus.NameOwnerChanged",
				Body: tt.body,
			})

			if diff := cmp.Diff(tt.wantOwners, mon.players.owners); diff != "" {
				t.Errorf("Owners mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleSeeked(t *testing.T) {
	mon := NewMprisMonitor(zap.NewNop(), testConfig{})
	mon.conn = &noopDBusClient{}
	mon.players.bind(":1.100", "org.mpris.MediaPlayer2.spotify")
	mon.players.update("org.mpris.MediaPlayer2.spotify", ":1.100", domain.MediaMetadata{
		Title:  "Song",
		Length: 200 * time.Second,
		Status: domain.StatusPaused,
	})

	mon.handleSeeked(&dbus.Signal{
		Name:   "org.mpris.MediaPlayer2.Player.Seeked",
		Sender: ":1.100",
		Body:   []interface{}{int64(42_000_000)},
	})

	select {
	case s := <-mon.Positions():
		want := domain.PositionSample{
			Player:   "org.mpris.MediaPlayer2.spotify",
			Position: 42 * time.Second,
			Length:   200 * time.Second,
			Status:   domain.StatusPaused,
			Seeked:   true,
		}
		if diff := cmp.Diff(want, s); diff != "" {
			t.Errorf("Sample mismatch (-want +got):\n%s", diff)
		}
	default:
		t.Fatal("Seeked signal did not produce a sample")
	}

	// Malformed bodies are ignored
	mon.handleSeeked(&dbus.Signal{Name: "org.mpris.MediaPlayer2.Player.Seeked", Body: []interface{}{"soon"}})
	mon.handleSeeked(&dbus.Signal{Name: "org.mpris.MediaPlayer2.Player.Seeked"})
	select {
	case s := <-mon.Positions():
		t.Errorf("unexpected sample %+v", s)
	default:
	}
}

func TestPollActivePlayer_NoPlayer(t *testing.T) {
	mon := NewMprisMonitor(zap.NewNop(), testConfig{})
	mon.conn = &noopDBusClient{}

	mon.pollActivePlayer()

	select {
	case s := <-mon.Positions():
		t.Errorf("unexpected sample %+v", s)
	default:
	}
}

//go:build linux

package monitor

import (
	"sync"
	"time"

	"github.com/genricoloni/coverring/internal/domain"
)

// playerState is what the monitor remembers about a player between signals
type playerState struct {
	bus    string // name used to query the player
	length time.Duration
	status domain.PlayerStatus
}

// registry tracks the MPRIS players on the bus and which of them drives
// the progress border
type registry struct {
	mu      sync.RWMutex
	owners  map[string]string // unique name (:1.45) -> well-known name
	players map[string]*playerState
	active  string
}

func newRegistry() *registry {
	return &registry{
		owners:  make(map[string]string),
		players: make(map[string]*playerState),
	}
}

// bind records that unique currently owns the well-known name
func (r *registry) bind(unique, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[unique] = name
}

// release forgets an owner. With gone set the player itself left the bus
// and its state is dropped as well.
func (r *registry) release(unique, name string, gone bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.owners, unique)
	if !gone {
		return
	}
	delete(r.players, name)
	if r.active == name {
		r.active = ""
	}
}

// resolve maps a signal sender to its well-known name, or returns it as is
func (r *registry) resolve(unique string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.owners[unique]; ok {
		return name
	}
	return unique
}

// update stores the state a player reported. A playing player, or the
// first one seen, becomes active.
func (r *registry) update(name, bus string, meta domain.MediaMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.players[name]
	if !ok {
		st = &playerState{}
		r.players[name] = st
	}
	st.bus = bus
	st.status = meta.Status
	// Status-only updates carry no track and must not wipe the length
	if meta.Length > 0 || meta.Title != "" || meta.TrackID != "" {
		st.length = meta.Length
	}

	if meta.Status == domain.StatusPlaying || r.active == "" {
		r.active = name
	}
}

func (r *registry) setStatus(name string, status domain.PlayerStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.players[name]; ok {
		st.status = status
	}
}

func (r *registry) lookup(name string) (playerState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.players[name]
	if !ok {
		return playerState{}, false
	}
	return *st, true
}

// current returns the active player and a copy of its state
func (r *registry) current() (string, playerState, bool) {
	r.mu.RLock()
	name := r.active
	r.mu.RUnlock()

	if name == "" {
		return "", playerState{}, false
	}
	st, ok := r.lookup(name)
	if !ok || st.bus == "" {
		return "", playerState{}, false
	}
	return name, st, true
}

func (r *registry) activeName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *registry) ownerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

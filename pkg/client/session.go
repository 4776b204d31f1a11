package client

import (
	"sync"
	"time"
)

// Session holds the client's identity and lifecycle state. It is
// shared read/write by the read loop, the keepalive loop, the
// reconnect supervisor and the command dispatcher, so every field is
// accessed through the mutex.
type Session struct {
	mu sync.Mutex

	handle   string
	realName string

	// Exactly one of currentChannel/currentPeer is the active send
	// target; setting one clears the other.
	currentChannel string
	currentPeer    string

	connected  bool
	registered bool
	userQuit   bool

	lastKeepaliveAt time.Time

	// epoch counts successful transport establishments. Loops stamp
	// themselves with the epoch they were started for and re-check it
	// before acting.
	epoch uint64
}

// NewSession creates a session for the given identity.
func NewSession(handle, realName string) *Session {
	return &Session{
		handle:   handle,
		realName: realName,
	}
}

// Handle returns the current nick.
func (s *Session) Handle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// SetHandle updates the nick optimistically after an identity-change
// request.
func (s *Session) SetHandle(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handle = handle
}

// RealName returns the display name. It never changes after creation.
func (s *Session) RealName() string {
	return s.realName
}

// SetChannel makes the channel the active target and clears any
// direct-message peer.
func (s *Session) SetChannel(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentChannel = channel
	s.currentPeer = ""
}

// ClearChannel drops the channel target, used after leaving.
func (s *Session) ClearChannel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentChannel = ""
}

// SetPeer makes the peer the active target and clears the channel.
func (s *Session) SetPeer(peer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPeer = peer
	s.currentChannel = ""
}

// Channel returns the current channel, if one is set.
func (s *Session) Channel() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentChannel, s.currentChannel != ""
}

// Peer returns the current direct-message peer, if one is set.
func (s *Session) Peer() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPeer, s.currentPeer != ""
}

// Target returns the active send target for free text: the peer when
// set, otherwise the channel.
func (s *Session) Target() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPeer != "" {
		return s.currentPeer, true
	}
	if s.currentChannel != "" {
		return s.currentChannel, true
	}
	return "", false
}

// BeginEpoch starts a new connection epoch: bumps the counter, resets
// the registration flag and marks the session connected. Returns the
// new epoch number.
func (s *Session) BeginEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.registered = false
	s.connected = true
	return s.epoch
}

// CurrentEpoch returns the epoch of the most recent establishment.
func (s *Session) CurrentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// EndEpoch marks the session disconnected, but only if the given
// epoch is still current. A stale loop from a superseded connection
// cannot flip the flag for its successor.
func (s *Session) EndEpoch(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	s.connected = false
	return true
}

// Connected reports whether the current epoch is live.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Registered reports whether the server acknowledged registration in
// the current epoch.
func (s *Session) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registered
}

// MarkRegistered flips the registration flag. It returns true only on
// the first call within an epoch; the flag is monotonic until the
// next BeginEpoch.
func (s *Session) MarkRegistered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registered {
		return false
	}
	s.registered = true
	return true
}

// UserQuit reports whether shutdown was user-initiated.
func (s *Session) UserQuit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userQuit
}

// MarkUserQuit records a user-initiated shutdown. Once set, transport
// failures no longer trigger reconnection.
func (s *Session) MarkUserQuit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userQuit = true
}

// TouchKeepalive records the time of the latest liveness probe.
func (s *Session) TouchKeepalive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastKeepaliveAt = time.Now()
}

// LastKeepaliveAt returns the timestamp of the latest liveness probe,
// zero if none was sent yet.
func (s *Session) LastKeepaliveAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastKeepaliveAt
}

package client

import "time"

// ConnState represents the connection status surfaced to the frontend.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateConnected
	StateDisconnected
	StateReconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// LineKind classifies a display line for the frontend.
type LineKind int

const (
	// KindStatus is client or server status traffic (numerics, state
	// changes, command feedback).
	KindStatus LineKind = iota
	// KindError is operator-facing input errors and usage hints.
	KindError
	// KindChannel is a message delivered to a channel or other target.
	KindChannel
	// KindPrivate is a direct message addressed to this client.
	KindPrivate
	// KindEcho is this client's own outgoing message.
	KindEcho
)

// Event is delivered on the client's event channel. The frontend is a
// thin collaborator: it renders events and feeds input back, nothing
// more.
type Event interface {
	event()
}

// LineEvent is a single display line.
type LineEvent struct {
	Kind   LineKind
	From   string // sender nick, empty for status lines
	Target string // channel or nick the line was addressed to
	Text   string
	Time   time.Time
}

// StateEvent reports a connection state change. Attempt counts
// reconnect tries within one outage.
type StateEvent struct {
	State   ConnState
	Attempt int
	Err     error
}

// QuitEvent signals that the client finished a user-initiated
// shutdown and the frontend should exit.
type QuitEvent struct{}

func (LineEvent) event()  {}
func (StateEvent) event() {}
func (QuitEvent) event()  {}

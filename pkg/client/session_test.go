package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTargetExclusivity(t *testing.T) {
	s := NewSession("alice", "Alice Example")

	_, ok := s.Target()
	assert.False(t, ok)

	s.SetChannel("#go")
	target, ok := s.Target()
	require.True(t, ok)
	assert.Equal(t, "#go", target)

	// Setting a peer displaces the channel.
	s.SetPeer("bob")
	target, ok = s.Target()
	require.True(t, ok)
	assert.Equal(t, "bob", target)
	_, hasChannel := s.Channel()
	assert.False(t, hasChannel)

	// And vice versa.
	s.SetChannel("#irc")
	_, hasPeer := s.Peer()
	assert.False(t, hasPeer)
}

func TestSessionRegisteredMonotonicPerEpoch(t *testing.T) {
	s := NewSession("alice", "Alice Example")

	s.BeginEpoch()
	assert.False(t, s.Registered())

	assert.True(t, s.MarkRegistered(), "first registration in an epoch flips the flag")
	assert.True(t, s.Registered())
	assert.False(t, s.MarkRegistered(), "second registration in the same epoch is a no-op")
	assert.True(t, s.Registered())

	// A new epoch resets the flag.
	s.BeginEpoch()
	assert.False(t, s.Registered())
	assert.True(t, s.MarkRegistered())
}

func TestSessionEndEpochRejectsStale(t *testing.T) {
	s := NewSession("alice", "Alice Example")

	first := s.BeginEpoch()
	second := s.BeginEpoch()
	require.Greater(t, second, first)
	assert.True(t, s.Connected())

	// A loop from the superseded epoch cannot disconnect the current
	// one.
	assert.False(t, s.EndEpoch(first))
	assert.True(t, s.Connected())

	assert.True(t, s.EndEpoch(second))
	assert.False(t, s.Connected())
}

func TestSessionKeepaliveTimestamp(t *testing.T) {
	s := NewSession("alice", "Alice Example")
	assert.True(t, s.LastKeepaliveAt().IsZero())

	s.TouchKeepalive()
	assert.False(t, s.LastKeepaliveAt().IsZero())
}

package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextLineEvent drains the event channel until a LineEvent arrives.
func nextLineEvent(t *testing.T, c *Client) LineEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events():
			if line, ok := ev.(LineEvent); ok {
				return line
			}
		case <-deadline:
			t.Fatal("no line event arrived")
		}
	}
}

func offlineClient(t *testing.T) *Client {
	t.Helper()
	c, _ := newTestClient(t, Options{})
	return c
}

func TestCommandUsageErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		usage string
	}{
		{"join without channel", "/join", "/join <#channel>"},
		{"msg without text", "/msg bob", "/msg <target> <text>"},
		{"msg without anything", "/msg", "/msg <target> <text>"},
		{"query without nick", "/query", "/query <nick>"},
		{"whois without nick", "/whois", "/whois <nick>"},
		{"nick without argument", "/nick", "/nick <newnick>"},
		{"raw without line", "/raw", "/raw <line>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := offlineClient(t)
			c.HandleInput(tt.input)

			ev := nextLineEvent(t, c)
			assert.Equal(t, KindError, ev.Kind)
			assert.Contains(t, ev.Text, tt.usage)
		})
	}
}

func TestUnknownCommandReported(t *testing.T) {
	c := offlineClient(t)
	c.HandleInput("/frobnicate now")

	ev := nextLineEvent(t, c)
	assert.Equal(t, KindError, ev.Kind)
	assert.Contains(t, ev.Text, "/frobnicate")
}

func TestFreeTextWithoutTargetReported(t *testing.T) {
	c := offlineClient(t)
	c.HandleInput("hello out there")

	ev := nextLineEvent(t, c)
	assert.Equal(t, KindError, ev.Kind)
	assert.Contains(t, ev.Text, "No active target")
}

func TestPartWithoutChannelReported(t *testing.T) {
	c := offlineClient(t)
	c.HandleInput("/part")

	ev := nextLineEvent(t, c)
	assert.Equal(t, KindError, ev.Kind)
}

func TestBlankInputIgnored(t *testing.T) {
	c := offlineClient(t)
	c.HandleInput("")
	c.HandleInput("   ")

	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected event: %#v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStatusCommandIsDisplayOnly(t *testing.T) {
	c := offlineClient(t)
	c.HandleInput("/status")

	ev := nextLineEvent(t, c)
	assert.Equal(t, KindStatus, ev.Kind)
	assert.Contains(t, ev.Text, "connected=false")
	assert.Contains(t, ev.Text, "registered=false")
	assert.Contains(t, ev.Text, "target=none")
	assert.Contains(t, ev.Text, "last-keepalive=never")
}

func TestFreeTextRoutingFollowsActiveTarget(t *testing.T) {
	c, conns := newTestClient(t, Options{})
	require.NoError(t, c.Connect())
	defer c.Quit()

	srv := acceptServer(t, conns)
	srv.expectRegistration("alice")

	c.HandleInput("/join #chan")
	assert.Equal(t, "JOIN #chan", srv.readLine())

	c.HandleInput("hello")
	assert.Equal(t, "PRIVMSG #chan :hello", srv.readLine())

	c.HandleInput("/query bob")
	c.HandleInput("hi")
	assert.Equal(t, "PRIVMSG bob :hi", srv.readLine())

	// The channel is no longer the implicit target.
	_, hasChannel := c.Session().Channel()
	assert.False(t, hasChannel)
}

func TestMsgDoesNotChangeActiveTarget(t *testing.T) {
	c, conns := newTestClient(t, Options{})
	require.NoError(t, c.Connect())
	defer c.Quit()

	srv := acceptServer(t, conns)
	srv.expectRegistration("alice")

	c.HandleInput("/join #chan")
	assert.Equal(t, "JOIN #chan", srv.readLine())

	c.HandleInput("/msg dave side conversation")
	assert.Equal(t, "PRIVMSG dave :side conversation", srv.readLine())

	target, ok := c.Session().Target()
	require.True(t, ok)
	assert.Equal(t, "#chan", target)
}

func TestNickUpdatesHandleOptimistically(t *testing.T) {
	c, conns := newTestClient(t, Options{})
	require.NoError(t, c.Connect())
	defer c.Quit()

	srv := acceptServer(t, conns)
	srv.expectRegistration("alice")

	c.HandleInput("/nick trillian")
	assert.Equal(t, "NICK trillian", srv.readLine())
	assert.Equal(t, "trillian", c.Session().Handle())
}

func TestRawSendsRemainderVerbatim(t *testing.T) {
	c, conns := newTestClient(t, Options{})
	require.NoError(t, c.Connect())
	defer c.Quit()

	srv := acceptServer(t, conns)
	srv.expectRegistration("alice")

	c.HandleInput("/raw MODE #chan +o bob")
	assert.Equal(t, "MODE #chan +o bob", srv.readLine())
}

func TestAwayAndBack(t *testing.T) {
	c, conns := newTestClient(t, Options{})
	require.NoError(t, c.Connect())
	defer c.Quit()

	srv := acceptServer(t, conns)
	srv.expectRegistration("alice")

	c.HandleInput("/away grabbing lunch")
	assert.Equal(t, "AWAY :grabbing lunch", srv.readLine())

	c.HandleInput("/back")
	assert.Equal(t, "AWAY", srv.readLine())
}

func TestPartLeavesChannel(t *testing.T) {
	c, conns := newTestClient(t, Options{})
	require.NoError(t, c.Connect())
	defer c.Quit()

	srv := acceptServer(t, conns)
	srv.expectRegistration("alice")

	c.HandleInput("/join #chan")
	assert.Equal(t, "JOIN #chan", srv.readLine())

	c.HandleInput("/part")
	assert.Equal(t, "PART #chan", srv.readLine())
	_, ok := c.Session().Channel()
	assert.False(t, ok)
}

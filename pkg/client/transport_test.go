package client

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportSendLineAppendsTerminator(t *testing.T) {
	cc, sc := net.Pipe()
	tr := NewTransport(cc, 1)
	defer tr.Close()

	go func() { tr.SendLine("NICK alice") }()

	sc.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(sc).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "NICK alice\r\n", line)
}

func TestTransportReadLineStripsTerminator(t *testing.T) {
	cc, sc := net.Pipe()
	tr := NewTransport(cc, 1)
	defer tr.Close()

	go sc.Write([]byte("PING :abc\r\nPONG :def\n"))

	line, err := tr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "PING :abc", line)

	// Bare LF is tolerated.
	line, err = tr.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "PONG :def", line)
}

func TestTransportSendAfterCloseFails(t *testing.T) {
	cc, _ := net.Pipe()
	tr := NewTransport(cc, 1)

	require.NoError(t, tr.Close())
	assert.ErrorIs(t, tr.SendLine("PRIVMSG #go :hello"), ErrNotConnected)

	// Close is idempotent.
	assert.NoError(t, tr.Close())
}

func TestParseServerAddressTCP(t *testing.T) {
	cfg, err := parseServerAddress("irc.example.net:6697")
	require.NoError(t, err)
	assert.Equal(t, "irc.example.net:6697", cfg.display)
	assert.NotNil(t, cfg.dial)
}

func TestParseServerAddressDefaultPort(t *testing.T) {
	cfg, err := parseServerAddress("irc.example.net")
	require.NoError(t, err)
	assert.Equal(t, "irc.example.net:6667", cfg.display)
}

func TestParseServerAddressWebSocket(t *testing.T) {
	cfg, err := parseServerAddress("ws://gateway.example.net")
	require.NoError(t, err)
	assert.Equal(t, "ws://gateway.example.net:8080", cfg.display)
	assert.NotNil(t, cfg.dial)
}

func TestParseServerAddressInvalid(t *testing.T) {
	_, err := parseServerAddress("")
	assert.Error(t, err)

	_, err = parseServerAddress("udp://irc.example.net")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestTransportConcurrentSendsDoNotInterleave(t *testing.T) {
	cc, sc := net.Pipe()
	tr := NewTransport(cc, 1)
	defer tr.Close()

	const senders = 8
	for i := 0; i < senders; i++ {
		go tr.SendLine(strings.Repeat("x", 64))
	}

	r := bufio.NewReader(sc)
	sc.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < senders; i++ {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("x", 64)+"\r\n", line)
	}
}

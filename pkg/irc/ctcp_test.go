package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCTCP(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantTag string
		wantArg string
		ok      bool
	}{
		{"version request", "\x01VERSION\x01", "VERSION", "", true},
		{"ping with token", "\x01PING 1700000000\x01", "PING", "1700000000", true},
		{"lowercase tag normalized", "\x01version\x01", "VERSION", "", true},
		{"arg with spaces", "\x01ACTION waves at everyone\x01", "ACTION", "waves at everyone", true},
		{"plain message", "hello there", "", "", false},
		{"leading delimiter only", "\x01VERSION", "", "", false},
		{"trailing delimiter only", "VERSION\x01", "", "", false},
		{"bare delimiters", "\x01\x01", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCTCP(tt.body)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantTag, got.Tag)
			assert.Equal(t, tt.wantArg, got.Arg)
		})
	}
}

func TestFormatCTCP(t *testing.T) {
	assert.Equal(t, "\x01VERSION ircling v1.0\x01", FormatCTCP("VERSION", "ircling v1.0"))
	assert.Equal(t, "\x01CLIENTINFO\x01", FormatCTCP("CLIENTINFO", ""))

	// Format output must parse back to the same payload.
	got, ok := ParseCTCP(FormatCTCP("PING", "12345"))
	require.True(t, ok)
	assert.Equal(t, "PING", got.Tag)
	assert.Equal(t, "12345", got.Arg)
}

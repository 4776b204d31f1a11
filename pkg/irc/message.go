package irc

import (
	"errors"
	"strings"
)

// Well-known commands the client reacts to. Numeric replies arrive as
// three-digit strings and are matched literally.
const (
	CmdPing    = "PING"
	CmdPong    = "PONG"
	CmdPrivmsg = "PRIVMSG"
	CmdNotice  = "NOTICE"
	CmdNick    = "NICK"
	CmdUser    = "USER"
	CmdJoin    = "JOIN"
	CmdPart    = "PART"
	CmdWhois   = "WHOIS"
	CmdAway    = "AWAY"
	CmdQuit    = "QUIT"

	// RplWelcome is the registration acknowledgment (001).
	RplWelcome = "001"
)

var (
	ErrEmptyLine  = errors.New("empty line")
	ErrMissingCmd = errors.New("line has no command")
)

// Message is a single inbound or outbound protocol line, decomposed
// per the `[:prefix] COMMAND params... [:trailing]` grammar. The line
// terminator is not part of the message; the transport owns it.
type Message struct {
	Prefix   string   // sender identity, without the leading ':'
	Command  string   // verb or three-digit numeric
	Params   []string // middle parameters, space-separated tokens
	Trailing string   // final parameter after " :", may contain spaces
	HasTrail bool     // distinguishes empty trailing from no trailing
}

// ParseMessage decodes one line. The caller strips CRLF first.
func ParseMessage(line string) (*Message, error) {
	if line == "" {
		return nil, ErrEmptyLine
	}

	m := &Message{}
	rest := line

	if strings.HasPrefix(rest, ":") {
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, ErrMissingCmd
		}
		m.Prefix = rest[1:sp]
		rest = rest[sp+1:]
	}

	if idx := strings.Index(rest, " :"); idx >= 0 {
		m.Trailing = rest[idx+2:]
		m.HasTrail = true
		rest = rest[:idx]
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, ErrMissingCmd
	}

	m.Command = strings.ToUpper(fields[0])
	m.Params = fields[1:]
	return m, nil
}

// String encodes the message back to wire form, without a terminator.
func (m *Message) String() string {
	var b strings.Builder
	if m.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}
	b.WriteString(m.Command)
	for _, p := range m.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	if m.HasTrail {
		b.WriteString(" :")
		b.WriteString(m.Trailing)
	}
	return b.String()
}

// Nick returns the sender's handle: the portion of the prefix before
// the user/host separator. Empty when the line has no prefix.
func (m *Message) Nick() string {
	if m.Prefix == "" {
		return ""
	}
	if idx := strings.IndexByte(m.Prefix, '!'); idx >= 0 {
		return m.Prefix[:idx]
	}
	return m.Prefix
}

// Arg returns the last parameter: trailing when present, otherwise the
// final middle parameter. PING/PONG tokens arrive either way depending
// on the server.
func (m *Message) Arg() string {
	if m.HasTrail {
		return m.Trailing
	}
	if len(m.Params) > 0 {
		return m.Params[len(m.Params)-1]
	}
	return ""
}

package irc

import "strings"

// ctcpDelim wraps a CTCP payload at both ends of a message body.
const ctcpDelim = '\x01'

// CTCP tags with scripted replies. Anything else is ignored.
const (
	TagVersion    = "VERSION"
	TagPing       = "PING"
	TagTime       = "TIME"
	TagFinger     = "FINGER"
	TagClientInfo = "CLIENTINFO"
)

// CTCP is a nested-protocol payload carried inside a message body.
type CTCP struct {
	Tag string // uppercase tag, e.g. "VERSION"
	Arg string // remainder after the tag, may be empty
}

// ParseCTCP decodes a delimiter-wrapped body. The second return is
// false when the body is a plain message.
func ParseCTCP(body string) (*CTCP, bool) {
	if len(body) < 2 || body[0] != ctcpDelim || body[len(body)-1] != ctcpDelim {
		return nil, false
	}
	inner := body[1 : len(body)-1]
	tag, arg, _ := strings.Cut(inner, " ")
	if tag == "" {
		return nil, false
	}
	return &CTCP{Tag: strings.ToUpper(tag), Arg: strings.TrimSpace(arg)}, true
}

// FormatCTCP wraps a payload for embedding in a message body.
func FormatCTCP(tag, arg string) string {
	var b strings.Builder
	b.WriteByte(ctcpDelim)
	b.WriteString(tag)
	if arg != "" {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	b.WriteByte(ctcpDelim)
	return b.String()
}

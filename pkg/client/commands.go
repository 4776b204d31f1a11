package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/ircling/ircling/pkg/irc"
)

// HandleInput processes one line of operator input. Lines starting
// with '/' are commands; everything else is free text routed to the
// active target.
func (c *Client) HandleInput(input string) {
	if strings.TrimSpace(input) == "" {
		return
	}

	if strings.HasPrefix(input, "/") {
		c.handleCommand(input)
		return
	}

	target, ok := c.session.Target()
	if !ok {
		c.errorf("No active target. Use /join <#channel> or /query <nick> first.")
		return
	}
	c.sendPrivmsg(target, input)
}

// sendPrivmsg delivers text to a target and echoes it locally. It
// never changes the active target.
func (c *Client) sendPrivmsg(target, text string) {
	if err := c.send(irc.CmdPrivmsg + " " + target + " :" + text); err != nil {
		c.errorf("Send failed: %v", err)
		return
	}
	c.emit(LineEvent{Kind: KindEcho, From: c.session.Handle(), Target: target, Text: text, Time: time.Now()})
}

func (c *Client) handleCommand(input string) {
	parts := strings.SplitN(input, " ", 3)
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "/join":
		if len(parts) < 2 || parts[1] == "" {
			c.usage("/join <#channel>")
			return
		}
		channel := parts[1]
		c.session.SetChannel(channel)
		c.send(irc.CmdJoin + " " + channel)

	case "/part":
		channel, ok := c.session.Channel()
		if !ok {
			c.errorf("Not in a channel.")
			return
		}
		c.send(irc.CmdPart + " " + channel)
		c.session.ClearChannel()

	case "/msg":
		if len(parts) < 3 {
			c.usage("/msg <target> <text>")
			return
		}
		c.sendPrivmsg(parts[1], parts[2])

	case "/query":
		if len(parts) < 2 || parts[1] == "" {
			c.usage("/query <nick>")
			return
		}
		c.session.SetPeer(parts[1])
		c.status("Private chat with " + parts[1])

	case "/whois":
		if len(parts) < 2 || parts[1] == "" {
			c.usage("/whois <nick>")
			return
		}
		c.send(irc.CmdWhois + " " + parts[1])

	case "/nick":
		if len(parts) < 2 || parts[1] == "" {
			c.usage("/nick <newnick>")
			return
		}
		c.send(irc.CmdNick + " " + parts[1])
		c.session.SetHandle(parts[1])

	case "/raw":
		rest := ""
		if strings.HasPrefix(input, "/raw ") {
			rest = input[len("/raw "):]
		}
		if rest == "" {
			c.usage("/raw <line>")
			return
		}
		c.send(rest)

	case "/away":
		text := "Away"
		if strings.HasPrefix(input, "/away ") {
			text = input[len("/away "):]
		}
		c.send(irc.CmdAway + " :" + text)
		c.status("Away status set")

	case "/back":
		c.send(irc.CmdAway)
		c.status("Away status cleared")

	case "/status":
		c.reportStatus()

	case "/quit":
		c.Quit()

	default:
		c.errorf("Unknown command: %s", parts[0])
	}
}

// reportStatus summarizes the session for the operator. Display only,
// no network effect.
func (c *Client) reportStatus() {
	target := "none"
	if t, ok := c.session.Target(); ok {
		target = t
	}

	keepalive := "never"
	if ka := c.session.LastKeepaliveAt(); !ka.IsZero() {
		keepalive = fmt.Sprintf("%s ago", time.Since(ka).Round(time.Second))
	}

	c.status(fmt.Sprintf("Status: connected=%v registered=%v target=%s last-keepalive=%s",
		c.session.Connected(), c.session.Registered(), target, keepalive))
}

func (c *Client) usage(u string) {
	c.errorf("Usage: %s", u)
}

package client

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ircling/ircling/pkg/irc"
)

const (
	// Version is reported in CTCP VERSION replies.
	Version = "ircling v1.0"

	// keepaliveToken tags this client's own liveness probes so their
	// echoes can be told apart from server challenges.
	keepaliveToken = "keepalive"

	fingerReply     = "ircling terminal client"
	clientInfoReply = "VERSION PING TIME FINGER CLIENTINFO"
)

// Options configures a Client. Zero durations fall back to defaults.
type Options struct {
	Addr     string // server address: host, host:port or ws://host:port
	Handle   string
	RealName string
	Channel  string // channel to join once registered, optional

	AutoReconnect     bool
	ReconnectDelay    time.Duration // delay before a reconnect attempt, default 5s
	KeepaliveInterval time.Duration // liveness probe period, default 60s
	RegistrationGrace time.Duration // optional wait before the handshake, default 0
	QuitMessage       string        // farewell text, default "Bye"
}

// epochLoops bundles the loops of one connection epoch so they can be
// joined before the next epoch starts.
type epochLoops struct {
	transport *Transport
	done      chan struct{}
	wg        sync.WaitGroup
}

// Client drives the connection lifecycle: handshake, liveness,
// dispatch and reconnection. Display output and operator input go
// through the event channel and HandleInput; the client itself never
// touches the terminal.
type Client struct {
	session *Session
	opts    Options
	dial    DialFunc
	display string

	mu           sync.Mutex
	loops        *epochLoops
	reconnecting bool

	events       chan Event
	shutdown     chan struct{}
	shutdownOnce sync.Once

	logger *log.Logger
}

// NewClient creates a client for the given options. It does not dial;
// call Connect to establish the first epoch.
func NewClient(opts Options) (*Client, error) {
	dialCfg, err := parseServerAddress(opts.Addr)
	if err != nil {
		return nil, err
	}

	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 5 * time.Second
	}
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = 60 * time.Second
	}
	if opts.QuitMessage == "" {
		opts.QuitMessage = "Bye"
	}

	c := &Client{
		session:  NewSession(opts.Handle, opts.RealName),
		opts:     opts,
		dial:     dialCfg.dial,
		display:  dialCfg.display,
		events:   make(chan Event, 256),
		shutdown: make(chan struct{}),
	}

	if opts.Channel != "" {
		c.session.SetChannel(opts.Channel)
	}

	return c, nil
}

// SetLogger sets a logger for debugging wire traffic and lifecycle
// events.
func (c *Client) SetLogger(logger *log.Logger) {
	c.logger = logger
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

// Session returns the shared session state.
func (c *Client) Session() *Session {
	return c.session
}

// Events returns the channel the frontend renders from.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Connect establishes a new connection epoch and starts its read and
// keepalive loops. The registration handshake runs asynchronously.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.loops != nil {
		c.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	c.mu.Unlock()

	c.emitState(StateConnecting, 0, nil)
	c.logf("Connecting to %s...", c.display)

	conn, err := c.dial()
	if err != nil {
		c.logf("Connection failed: %v", err)
		return fmt.Errorf("failed to connect to %s: %w", c.display, err)
	}

	epoch := c.session.BeginEpoch()
	loops := &epochLoops{
		transport: NewTransport(conn, epoch),
		done:      make(chan struct{}),
	}

	c.mu.Lock()
	c.loops = loops
	c.mu.Unlock()

	loops.wg.Add(2)
	go c.readLoop(loops)
	go c.keepaliveLoop(loops)
	go c.register(loops.transport)

	c.logf("Connected to %s (epoch %d)", c.display, epoch)
	c.emitState(StateConnected, 0, nil)
	c.status("Connected to " + c.display)
	return nil
}

// register sends the identity announcement for a fresh epoch. The
// grace period is configurable and defaults to zero; correctness must
// not depend on it.
func (c *Client) register(t *Transport) {
	if c.opts.RegistrationGrace > 0 {
		select {
		case <-c.shutdown:
			return
		case <-time.After(c.opts.RegistrationGrace):
		}
	}

	handle := c.session.Handle()
	if err := c.sendVia(t, irc.CmdNick+" "+handle); err != nil {
		return
	}
	c.sendVia(t, fmt.Sprintf("%s %s 0 * :%s", irc.CmdUser, handle, c.session.RealName()))
}

// sendVia writes through the given epoch's transport. Writes from a
// superseded epoch are rejected rather than sent on the wrong
// connection.
func (c *Client) sendVia(t *Transport, line string) error {
	if t.Epoch() != c.session.CurrentEpoch() {
		c.logf("Dropping stale-epoch send: %s", line)
		return ErrStaleEpoch
	}
	if err := t.SendLine(line); err != nil {
		c.logf("Send failed: %v", err)
		return err
	}
	c.logf("→ SEND: %s", line)
	return nil
}

// send writes through the current epoch's transport.
func (c *Client) send(line string) error {
	c.mu.Lock()
	loops := c.loops
	c.mu.Unlock()

	if loops == nil {
		return ErrNotConnected
	}
	return c.sendVia(loops.transport, line)
}

// readLoop consumes inbound lines until the transport fails, then
// hands off to the disconnect path.
func (c *Client) readLoop(loops *epochLoops) {
	defer loops.wg.Done()

	t := loops.transport
	for {
		line, err := t.ReadLine()
		if err != nil {
			c.logf("Read loop ended (epoch %d): %v", t.Epoch(), err)
			c.handleDisconnect(loops, err)
			return
		}
		c.handleLine(t, line)
	}
}

// keepaliveLoop sends periodic liveness probes while registered. One
// runs per epoch and exits when the epoch ends.
func (c *Client) keepaliveLoop(loops *epochLoops) {
	defer loops.wg.Done()

	ticker := time.NewTicker(c.opts.KeepaliveInterval)
	defer ticker.Stop()

	t := loops.transport
	for {
		select {
		case <-loops.done:
			return
		case <-ticker.C:
			if !c.session.Registered() || t.Epoch() != c.session.CurrentEpoch() {
				continue
			}
			if err := c.sendVia(t, irc.CmdPing+" "+keepaliveToken); err == nil {
				c.session.TouchKeepalive()
			}
		}
	}
}

// handleLine routes one inbound line. Malformed lines are dropped
// silently; only transport failures are fatal to an epoch.
func (c *Client) handleLine(t *Transport, line string) {
	if line == "" {
		return
	}
	c.logf("← RECV: %s", line)

	msg, err := irc.ParseMessage(line)
	if err != nil {
		c.logf("Dropping unparseable line: %v", err)
		return
	}

	switch msg.Command {
	case irc.CmdPing:
		// Liveness challenge: answer immediately, never display.
		c.sendVia(t, irc.CmdPong+" :"+msg.Arg())

	case irc.CmdPong:
		if msg.Arg() == keepaliveToken {
			// Echo of our own probe: internal traffic.
			c.session.TouchKeepalive()
			return
		}
		c.status(line)

	case irc.RplWelcome:
		c.handleWelcome(t, msg)

	case irc.CmdPrivmsg:
		c.handlePrivmsg(t, msg)

	default:
		c.status(line)
	}
}

// handleWelcome completes registration when the server's welcome
// names this client's handle. The registered flag flips at most once
// per epoch.
func (c *Client) handleWelcome(t *Transport, msg *irc.Message) {
	if len(msg.Params) == 0 || !strings.EqualFold(msg.Params[0], c.session.Handle()) {
		return
	}
	if !c.session.MarkRegistered() {
		return
	}

	c.logf("Registered as %s", c.session.Handle())
	c.status("Registered with " + c.display)

	if channel, ok := c.session.Channel(); ok {
		c.sendVia(t, irc.CmdJoin+" "+channel)
	}
}

// handlePrivmsg routes a message delivery: nested-protocol payloads go
// to the CTCP handler, direct messages capture the sender as the
// reply target, everything else displays under its destination.
func (c *Client) handlePrivmsg(t *Transport, msg *irc.Message) {
	if len(msg.Params) < 1 {
		return
	}

	var body string
	switch {
	case msg.HasTrail:
		body = msg.Trailing
	case len(msg.Params) >= 2:
		body = msg.Params[len(msg.Params)-1]
	default:
		return
	}

	sender := msg.Nick()
	target := msg.Params[0]

	if ct, ok := irc.ParseCTCP(body); ok {
		c.handleCTCP(t, sender, ct)
		return
	}

	if strings.EqualFold(target, c.session.Handle()) {
		c.session.SetPeer(sender)
		c.emit(LineEvent{Kind: KindPrivate, From: sender, Target: target, Text: body, Time: time.Now()})
		return
	}

	c.emit(LineEvent{Kind: KindChannel, From: sender, Target: target, Text: body, Time: time.Now()})
}

// handleCTCP produces the scripted reply for a recognized tag as a
// delimiter-wrapped notice to the sender. Unrecognized tags get no
// reply.
func (c *Client) handleCTCP(t *Transport, sender string, ct *irc.CTCP) {
	var reply string
	switch ct.Tag {
	case irc.TagVersion:
		reply = irc.FormatCTCP(irc.TagVersion, Version)
	case irc.TagPing:
		reply = irc.FormatCTCP(irc.TagPing, ct.Arg)
	case irc.TagTime:
		reply = irc.FormatCTCP(irc.TagTime, time.Now().Format(time.RFC1123))
	case irc.TagFinger:
		reply = irc.FormatCTCP(irc.TagFinger, fingerReply)
	case irc.TagClientInfo:
		reply = irc.FormatCTCP(irc.TagClientInfo, clientInfoReply)
	default:
		c.logf("Ignoring CTCP %s from %s", ct.Tag, sender)
		return
	}

	if sender == "" {
		return
	}

	c.status(fmt.Sprintf("CTCP %s request from %s", ct.Tag, sender))
	c.sendVia(t, irc.CmdNotice+" "+sender+" :"+reply)
}

// handleDisconnect tears the epoch down and, unless the user quit,
// hands the outage to the reconnect supervisor. Only the epoch that
// still owns the client slot runs the teardown; a superseded loop
// returns without touching shared state.
func (c *Client) handleDisconnect(loops *epochLoops, err error) {
	c.mu.Lock()
	if c.loops != loops {
		c.mu.Unlock()
		return
	}
	c.loops = nil
	c.mu.Unlock()

	t := loops.transport
	c.session.EndEpoch(t.Epoch())
	t.Close()
	close(loops.done)

	if c.session.UserQuit() {
		return
	}

	c.logf("Disconnected from %s: %v", c.display, err)
	c.emitState(StateDisconnected, 0, err)
	c.status("Disconnected from " + c.display)

	if c.opts.AutoReconnect {
		go c.superviseReconnect(loops)
	}
}

// superviseReconnect schedules reconnect attempts after an outage. At
// most one supervisor runs at a time, the pending wait is cancelled by
// a user quit, and the previous epoch's loops are joined before a new
// epoch starts.
func (c *Client) superviseReconnect(prev *epochLoops) {
	c.mu.Lock()
	if c.reconnecting {
		c.mu.Unlock()
		return
	}
	c.reconnecting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.reconnecting = false
		c.mu.Unlock()
	}()

	attempt := 1
	for {
		select {
		case <-c.shutdown:
			c.logf("Reconnect cancelled (shutdown)")
			return
		case <-time.After(c.opts.ReconnectDelay):
		}

		if c.session.UserQuit() {
			return
		}

		prev.wg.Wait()

		c.logf("Reconnect attempt %d to %s", attempt, c.display)
		c.emitState(StateReconnecting, attempt, nil)

		if err := c.Connect(); err != nil {
			c.status(fmt.Sprintf("Reconnect attempt %d failed: %v", attempt, err))
			attempt++
			continue
		}
		return
	}
}

// Quit performs a user-initiated shutdown: farewell, transport close,
// epoch join. Any pending reconnect is cancelled rather than raced.
func (c *Client) Quit() {
	c.session.MarkUserQuit()
	c.shutdownOnce.Do(func() { close(c.shutdown) })

	c.mu.Lock()
	loops := c.loops
	c.loops = nil
	c.mu.Unlock()

	if loops != nil {
		t := loops.transport
		// Best effort; the epoch is ending either way, and exit must
		// not hang on a dead peer.
		t.conn.SetWriteDeadline(time.Now().Add(time.Second))
		t.SendLine(irc.CmdQuit + " :" + c.opts.QuitMessage)
		c.session.EndEpoch(t.Epoch())
		t.Close()
		close(loops.done)
		loops.wg.Wait()
	}

	c.logf("Client stopped")
	c.emit(QuitEvent{})
}

func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		// Frontend fell behind; dropping beats blocking a loop.
	}
}

func (c *Client) emitState(state ConnState, attempt int, err error) {
	c.emit(StateEvent{State: state, Attempt: attempt, Err: err})
}

func (c *Client) status(text string) {
	c.emit(LineEvent{Kind: KindStatus, Text: text, Time: time.Now()})
}

func (c *Client) errorf(format string, args ...interface{}) {
	c.emit(LineEvent{Kind: KindError, Text: fmt.Sprintf(format, args...), Time: time.Now()})
}

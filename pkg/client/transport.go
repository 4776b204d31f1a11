package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotConnected = errors.New("transport is closed")
	ErrStaleEpoch   = errors.New("transport belongs to a superseded connection epoch")
)

// defaultPort is the plaintext IRC port used when the address carries
// none.
const defaultPort = "6667"

// Transport owns the byte stream for a single connection epoch. It is
// replaced wholesale on reconnect; no loop may hold one across an
// epoch boundary.
type Transport struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	epoch  uint64

	// sendMu serializes writes so concurrent senders never interleave
	// partial lines.
	sendMu sync.Mutex
	closed bool
}

// NewTransport wraps an established connection for the given epoch.
func NewTransport(conn net.Conn, epoch uint64) *Transport {
	return &Transport{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
		epoch:  epoch,
	}
}

// Epoch returns the connection epoch this transport belongs to.
func (t *Transport) Epoch() uint64 {
	return t.epoch
}

// ReadLine blocks until a full line arrives, returning it without the
// terminator. Reads tolerate bare LF as well as CRLF.
func (t *Transport) ReadLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SendLine appends the line terminator, writes and flushes. Sends on a
// closed transport report ErrNotConnected instead of touching the
// dead connection, guarding against races between a closing epoch and
// in-flight sends.
func (t *Transport) SendLine(line string) error {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	if t.closed {
		return ErrNotConnected
	}

	if _, err := t.writer.WriteString(line + "\r\n"); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	return nil
}

// Close shuts the stream down. Safe to call more than once; later
// sends fail with ErrNotConnected.
func (t *Transport) Close() error {
	t.sendMu.Lock()
	if t.closed {
		t.sendMu.Unlock()
		return nil
	}
	t.closed = true
	t.sendMu.Unlock()
	return t.conn.Close()
}

// DialFunc produces the connection for a new epoch. Tests substitute
// net.Pipe here.
type DialFunc func() (net.Conn, error)

type dialConfig struct {
	display string
	dial    DialFunc
}

// parseServerAddress turns a user-supplied address into a dialer.
// Plain host or host:port dials TCP; ws://host[:port] dials a
// WebSocket gateway and adapts it to a byte stream.
func parseServerAddress(raw string) (*dialConfig, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("server address is empty")
	}

	scheme := "tcp"
	hostPort := trimmed
	if strings.Contains(trimmed, "://") {
		u, err := url.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid server address %q: %w", raw, err)
		}
		if u.Scheme != "" {
			scheme = strings.ToLower(u.Scheme)
		}
		if u.Host != "" {
			hostPort = u.Host
		} else if u.Path != "" {
			hostPort = u.Path
		}
		hostPort = strings.TrimPrefix(hostPort, "//")
	}

	switch scheme {
	case "tcp", "":
		host, port, err := splitHostPortWithDefault(hostPort, defaultPort)
		if err != nil {
			return nil, err
		}

		address := net.JoinHostPort(host, port)
		dial := func() (net.Conn, error) {
			return net.DialTimeout("tcp", address, 10*time.Second)
		}

		return &dialConfig{display: address, dial: dial}, nil

	case "ws":
		host, port, err := splitHostPortWithDefault(hostPort, defaultWebSocketPort)
		if err != nil {
			return nil, err
		}

		address := net.JoinHostPort(host, port)
		dial := func() (net.Conn, error) {
			return DialWebSocket(address)
		}

		return &dialConfig{display: "ws://" + address, dial: dial}, nil

	default:
		return nil, fmt.Errorf("unsupported server scheme %q", scheme)
	}
}

func splitHostPortWithDefault(hostPort, fallback string) (string, string, error) {
	hostPort = strings.TrimSpace(hostPort)
	if hostPort == "" {
		return "", "", errors.New("missing host in server address")
	}

	host, port, err := net.SplitHostPort(hostPort)
	if err == nil {
		return host, port, nil
	}

	var addrErr *net.AddrError
	if errors.As(err, &addrErr) && strings.Contains(strings.ToLower(addrErr.Err), "missing port") {
		host = hostPort
		if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
			host = strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")
		}
		return host, fallback, nil
	}

	return "", "", err
}

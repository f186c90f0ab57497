package rcon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/craftops/craftctl/internal/debug"
)

var (
	// ErrAuthFailed means the server rejected the RCON password.
	ErrAuthFailed = errors.New("rcon: authentication failed")
	// ErrIDMismatch means the server answered with an unexpected request id.
	ErrIDMismatch = errors.New("rcon: response id mismatch")
)

// DefaultDialTimeout bounds the TCP connect plus auth handshake.
const DefaultDialTimeout = 5 * time.Second

// Options tunes connection establishment.
type Options struct {
	// DialTimeout bounds the TCP dial. Zero means DefaultDialTimeout.
	DialTimeout time.Duration
}

// Conn is one authenticated RCON connection. It is not safe for concurrent
// use; the executor opens a fresh connection per command attempt.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
	nextID int32
}

// Dial opens a TCP connection to addr and performs the authentication
// handshake. Connection-level failures and password rejection come back as
// distinct errors so callers can classify them. The connect plus handshake
// are bounded by the earlier of the ctx deadline and the dial timeout.
func Dial(ctx context.Context, addr, password string, opts Options) (*Conn, error) {
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	deadline := time.Now().Add(dialTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	debug.Logf("rcon: dialing %s (deadline: %v)\n", addr, time.Until(deadline))
	start := time.Now()
	dialer := net.Dialer{Deadline: deadline}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		debug.Logf("rcon: dial failed after %v: %v\n", time.Since(start), err)
		return nil, fmt.Errorf("rcon: connect to %s: %w", addr, err)
	}

	c := &Conn{
		conn:   netConn,
		reader: bufio.NewReader(netConn),
		nextID: 1,
	}

	// The whole handshake shares the dial deadline.
	if err := netConn.SetDeadline(deadline); err != nil {
		_ = netConn.Close()
		return nil, fmt.Errorf("rcon: set handshake deadline: %w", err)
	}
	if err := c.authenticate(password); err != nil {
		_ = netConn.Close()
		return nil, err
	}
	_ = netConn.SetDeadline(time.Time{})

	debug.Logf("rcon: authenticated to %s in %v\n", addr, time.Since(start))
	return c, nil
}

// authenticate sends the auth packet and waits for the verdict. The server
// signals a bad password by echoing request id -1. Some servers send an
// empty response-value packet before the auth response; skip it.
func (c *Conn) authenticate(password string) error {
	id := c.nextID
	c.nextID++

	if err := c.writePacket(packet{ID: id, Type: typeAuth, Payload: password}); err != nil {
		return fmt.Errorf("rcon: send auth: %w", err)
	}

	for {
		resp, err := readPacket(c.reader)
		if err != nil {
			return fmt.Errorf("rcon: read auth response: %w", err)
		}
		if resp.Type == typeResponseValue && resp.ID == id {
			continue
		}
		if resp.ID == -1 {
			return ErrAuthFailed
		}
		if resp.ID != id {
			return fmt.Errorf("%w: sent %d, got %d", ErrIDMismatch, id, resp.ID)
		}
		return nil
	}
}

// Execute runs one command as a single request/response round trip. Read and
// write deadlines are derived from ctx; on expiry the connection is left in
// an undefined state and must be discarded.
func (c *Conn) Execute(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetDeadline(deadline); err != nil {
			return "", fmt.Errorf("rcon: set deadline: %w", err)
		}
	}

	id := c.nextID
	c.nextID++

	if err := c.writePacket(packet{ID: id, Type: typeExecCommand, Payload: command}); err != nil {
		return "", fmt.Errorf("rcon: send command: %w", err)
	}

	resp, err := readPacket(c.reader)
	if err != nil {
		return "", fmt.Errorf("rcon: read response: %w", err)
	}
	if resp.ID != id {
		return "", fmt.Errorf("%w: sent %d, got %d", ErrIDMismatch, id, resp.ID)
	}
	return resp.Payload, nil
}

// Close closes the underlying TCP connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) writePacket(p packet) error {
	frame, err := p.marshal()
	if err != nil {
		return err
	}
	_, err = c.conn.Write(frame)
	return err
}

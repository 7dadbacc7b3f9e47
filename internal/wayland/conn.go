package wayland

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

const displayID = 1

// wl_display requests
const (
	displaySync        = 0
	displayGetRegistry = 1
)

// wl_display events
const (
	displayError    = 0
	displayDeleteID = 1
)

const callbackDone = 0

// ProtocolError is a fatal error reported by the compositor.
type ProtocolError struct {
	Object  uint32
	Code    uint32
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on object %d (code %d): %s", e.Object, e.Code, e.Message)
}

type eventHandler func(opcode uint16, d *decoder) error

// conn is a minimal client connection. Events are dispatched synchronously
// from roundtrip; there is no background reader.
type conn struct {
	sock     *net.UnixConn
	r        *bufio.Reader
	timeout  time.Duration
	nextID   uint32
	handlers map[uint32]eventHandler
}

func newConn(sock *net.UnixConn, timeout time.Duration) *conn {
	return &conn{
		sock:     sock,
		r:        bufio.NewReader(sock),
		timeout:  timeout,
		nextID:   displayID + 1,
		handlers: make(map[uint32]eventHandler),
	}
}

func (c *conn) Close() error {
	return c.sock.Close()
}

func (c *conn) newID() uint32 {
	id := c.nextID
	c.nextID++
	return id
}

// deadline returns the instant the next round-trip must finish by.
// The zero time means no deadline.
func (c *conn) deadline(ctx context.Context) time.Time {
	var d time.Time
	if c.timeout > 0 {
		d = time.Now().Add(c.timeout)
	}
	if cd, ok := ctx.Deadline(); ok && (d.IsZero() || cd.Before(d)) {
		d = cd
	}
	return d
}

func (c *conn) send(msgs ...*encoder) error {
	var out []byte
	for _, m := range msgs {
		out = append(out, m.bytes()...)
	}
	_, err := c.sock.Write(out)
	return err
}

func (c *conn) readMessage() (message, error) {
	var h [headerSize]byte
	if _, err := io.ReadFull(c.r, h[:]); err != nil {
		return message{}, err
	}
	sender, opcode, size, err := parseHeader(h[:])
	if err != nil {
		return message{}, err
	}
	body := make([]byte, size-headerSize)
	if _, err := io.ReadFull(c.r, body); err != nil {
		return message{}, err
	}
	return message{sender: sender, opcode: opcode, body: body}, nil
}

func (c *conn) dispatch(m message) error {
	d := &decoder{body: m.body}
	if m.sender == displayID {
		switch m.opcode {
		case displayError:
			e := &ProtocolError{Object: d.u32(), Code: d.u32(), Message: d.str()}
			if d.err != nil {
				return d.err
			}
			return e
		case displayDeleteID:
			delete(c.handlers, d.u32())
		}
		return d.err
	}
	h, ok := c.handlers[m.sender]
	if !ok {
		return nil
	}
	if err := h(m.opcode, d); err != nil {
		return err
	}
	return d.err
}

// roundtrip flushes the requests, then dispatches events until the
// compositor acknowledged a wl_display.sync sent after them.
func (c *conn) roundtrip(ctx context.Context, requests ...*encoder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.sock.SetDeadline(c.deadline(ctx)); err != nil {
		return err
	}

	cb := c.newID()
	done := false
	c.handlers[cb] = func(opcode uint16, d *decoder) error {
		if opcode == callbackDone {
			d.u32() // serial
			done = true
		}
		return nil
	}
	defer delete(c.handlers, cb)

	requests = append(requests, newMessage(displayID, displaySync).u32(cb))
	if err := c.send(requests...); err != nil {
		return err
	}
	for !done {
		m, err := c.readMessage()
		if err != nil {
			return err
		}
		if err := c.dispatch(m); err != nil {
			return err
		}
	}
	return nil
}

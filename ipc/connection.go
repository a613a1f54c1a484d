package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection is one host session. Handlers run on the Serve goroutine, one
// message at a time; Send may be called from them or from elsewhere.
type Connection struct {
	conn     net.Conn
	handlers map[string]Handler
	writeMu  sync.Mutex
	Player   string
}

func NewConnection(conn net.Conn, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{conn: conn, handlers: handlers}
}

// RegisterHandler must be called before Serve.
func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

// Send writes one message. Frames from concurrent callers never interleave.
func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *Connection) write(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteEnvelope(c.conn, env)
}

// Close ends the session; Serve returns once its pending read fails.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// Serve dispatches envelopes until the peer hangs up, a read or reply
// fails, or ctx is done. It owns the conn and closes it on return. A clean
// hang-up returns nil.
func (c *Connection) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()
	defer c.conn.Close()

	for {
		env, err := ReadEnvelope(c.conn)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
			slog.Info("connection closed", "player", c.Player)
			return nil
		default:
			return err
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "player", c.Player, "error", err)
			continue
		}
		if resp == nil {
			continue
		}
		if err := c.write(*resp); err != nil {
			return err
		}
		slog.Debug("sent response", "type", resp.Type, "player", c.Player)
	}
}

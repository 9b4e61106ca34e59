package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/wsprobe/internal/core"
)

var (
	_ core.Dialer = (*Dialer)(nil)
	_ core.Conn   = (*Conn)(nil)
)

// Dialer opens client connections with gorilla/websocket.
type Dialer struct {
	// HandshakeTimeout bounds the opening handshake.
	HandshakeTimeout time.Duration
	// CloseGrace is how long RequestClose waits for the peer's close frame
	// before dropping the socket.
	CloseGrace time.Duration
	// WriteTimeout bounds every single write.
	WriteTimeout time.Duration
}

func NewDialer(closeGrace time.Duration) *Dialer {
	if closeGrace <= 0 {
		closeGrace = time.Second
	}
	return &Dialer{
		HandshakeTimeout: 10 * time.Second,
		CloseGrace:       closeGrace,
		WriteTimeout:     5 * time.Second,
	}
}

func (d *Dialer) Dial(ctx context.Context, addr string) (core.Conn, error) {
	wd := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	ws, resp, err := wd.DialContext(ctx, addr, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return newConn(ws, d.CloseGrace, d.WriteTimeout), nil
}

// Conn wraps *websocket.Conn for text messages.
type Conn struct {
	ws           *websocket.Conn
	grace        time.Duration
	writeTimeout time.Duration
	em           ErrorMapper

	mu        sync.Mutex
	closing   bool
	closed    bool
	hardClose *time.Timer
}

func newConn(ws *websocket.Conn, grace, writeTimeout time.Duration) *Conn {
	return &Conn{
		ws:           ws,
		grace:        grace,
		writeTimeout: writeTimeout,
		em:           DefaultErrorMapper{},
	}
}

func (c *Conn) ReadText() ([]byte, error) {
	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			return nil, c.em.Map(err)
		}
		if mt != websocket.TextMessage {
			log.Debug().Str("module", "adapters.ws").Int("type", mt).Msg("skipping non-text frame")
			continue
		}
		return data, nil
	}
}

func (c *Conn) WriteText(data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// RequestClose sends a close frame. The reader sees the peer's answer as a
// clean close; without an answer the socket is dropped after the grace period.
// Calling it again, or after Close, does nothing.
func (c *Conn) RequestClose(code int, reason string) error {
	c.mu.Lock()
	if c.closing || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closing = true
	c.hardClose = time.AfterFunc(c.grace, func() { _ = c.Close() })
	c.mu.Unlock()

	msg := websocket.FormatCloseMessage(code, reason)
	return c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout))
}

func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.hardClose != nil {
		c.hardClose.Stop()
	}
	c.mu.Unlock()
	return c.ws.Close()
}

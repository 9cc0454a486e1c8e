package rtc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

const writeWait = 5 * time.Second

// signalConn is the client side of the signalling socket. Writes go through a
// bounded queue drained by writePump.
type signalConn struct {
	conn       *websocket.Conn
	send       chan []byte
	writerDone chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newSignalConn(conn *websocket.Conn, buffer int) *signalConn {
	if buffer <= 0 {
		buffer = 32
	}
	return &signalConn{conn: conn, send: make(chan []byte, buffer), writerDone: make(chan struct{})}
}

func (c *signalConn) TrySend(f []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *signalConn) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *signalConn) Close() {
	c.closeSend()
	_ = c.conn.Close()
}

// CloseGracefully lets writePump flush queued frames and send a close message
// before the socket is closed.
func (c *signalConn) CloseGracefully(ctx context.Context) {
	c.closeSend()
	select {
	case <-c.writerDone:
	case <-ctx.Done():
	}
	_ = c.conn.Close()
}

func (c *signalConn) writePump(ctx context.Context) {
	defer close(c.writerDone)
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "rtc.signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
				_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "rtc.signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "rtc.signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump hands every frame to handle and calls onDone with the read error
// once the socket stops.
func (c *signalConn) readPump(ctx context.Context, handle func([]byte), onDone func(error)) {
	var err error
	defer func() { onDone(err) }()
	for {
		if ctx.Err() != nil {
			return
		}
		var data []byte
		_, data, err = c.conn.ReadMessage()
		if err != nil {
			return
		}
		handle(data)
	}
}

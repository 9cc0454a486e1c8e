package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"github.com/dkeye/liveroom/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type feedFrame struct {
	Type     string        `json:"type"`
	Session  string        `json:"session,omitempty"`
	Snapshot core.Snapshot `json:"snapshot"`
}

// feedConn is one hosting-view WebSocket receiving state snapshots.
type feedConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *feedConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *feedConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// handleStateFeed streams snapshots to the client until it disconnects, a
// newer feed from the same client replaces it, or the server stops.
func (h *handlers) handleStateFeed(ctx context.Context, c *gin.Context, debounceAfter time.Duration) {
	uid := clientID(c)
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}
	conn := &feedConn{conn: ws, send: make(chan []byte, 16)}

	ctx, cancel := context.WithCancel(ctx)
	feedID := h.registry.BindFeed(uid, cancel)
	updates, unsubscribe := h.room.Watch()
	log.Info().Str("module", "adapters.http").Str("client", string(uid)).Uint64("feed", feedID).Msg("state feed opened")

	go func() {
		<-ctx.Done()
		unsubscribe()
		h.registry.UnbindFeed(uid, feedID)
		conn.Close()
		log.Info().Str("module", "adapters.http").Str("client", string(uid)).Uint64("feed", feedID).Msg("state feed closed")
	}()
	go writePump(ctx, conn)
	go readPump(conn, cancel)
	go h.forward(ctx, conn, updates, debounceAfter)
}

// forward coalesces bursts of snapshots and sends the latest one.
func (h *handlers) forward(ctx context.Context, conn *feedConn, updates <-chan core.Snapshot, after time.Duration) {
	var latest atomic.Pointer[core.Snapshot]
	push := func() {
		snap := latest.Load()
		if snap == nil || ctx.Err() != nil {
			return
		}
		session, _ := h.rooms.Current()
		b, err := json.Marshal(feedFrame{Type: "state", Session: session, Snapshot: *snap})
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("state feed marshal")
			return
		}
		if err := conn.TrySend(b); err != nil {
			log.Debug().Err(err).Str("module", "adapters.http").Msg("state feed send dropped")
		}
	}
	debounced := push
	if after > 0 {
		d := debounce.New(after)
		debounced = func() { d(push) }
	}

	for snap := range updates {
		latest.Store(&snap)
		debounced()
	}
}

func writePump(ctx context.Context, c *feedConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "adapters.http").Msg("state feed write error")
				return
			}
		}
	}
}

// readPump only watches for the client going away; the feed is one-way.
func readPump(c *feedConn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Package rtc is the real-time transport: JSON signalling over a WebSocket and
// one pion PeerConnection per joined room.
package rtc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/config"
	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
)

var ErrSessionActive = errors.New("a session is already active")

type Options struct {
	URL         string
	ICEServers  []string
	JoinTimeout time.Duration
	SendBuffer  int
	ReadLimit   int64
	PingPeriod  time.Duration
	// Name is announced on join when the parameters carry no identity.
	Name string
	Sink PacketSink
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URL:         cfg.Signal.URL,
		ICEServers:  cfg.Signal.ICEServers,
		JoinTimeout: cfg.Signal.JoinTimeout,
		SendBuffer:  cfg.Signal.SendBuffer,
		ReadLimit:   cfg.ReadLimit,
		PingPeriod:  cfg.PingPeriod,
	}
}

// Client admits one active Session at a time.
type Client struct {
	opts   Options
	dialer *websocket.Dialer

	joinMu sync.Mutex

	mu     sync.Mutex
	active *Session
}

var _ core.Transport = (*Client)(nil)

func NewClient(opts Options) *Client {
	dialer := *websocket.DefaultDialer
	if opts.JoinTimeout > 0 {
		dialer.HandshakeTimeout = opts.JoinTimeout
	}
	return &Client{opts: opts, dialer: &dialer}
}

func (c *Client) Join(ctx context.Context, params domain.ConnectionParameters) (core.TransportSession, error) {
	c.joinMu.Lock()
	defer c.joinMu.Unlock()

	c.mu.Lock()
	busy := c.active != nil
	c.mu.Unlock()
	if busy {
		return nil, ErrSessionActive
	}

	if c.opts.JoinTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.JoinTimeout)
		defer cancel()
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+params.AccessToken)
	ws, _, err := c.dialer.DialContext(ctx, c.opts.URL, header)
	if err != nil {
		return nil, fmt.Errorf("dial signal: %w", err)
	}
	if c.opts.ReadLimit > 0 {
		ws.SetReadLimit(c.opts.ReadLimit)
	}

	peer, err := newPeerConnection(webrtcConfig(c.opts.ICEServers), string(params.RoomID))
	if err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("webrtc new pc: %w", err)
	}

	s := newSession(c, params, newSignalConn(ws, c.opts.SendBuffer), peer)
	s.start()

	name := string(params.LocalIdentity)
	if name == "" {
		name = c.opts.Name
	}
	if err := s.sendJSON(joinMsg{Type: "join", Room: string(params.RoomID), AppID: params.ApplicationID, Name: name}); err != nil {
		s.stop(context.Background(), false)
		return nil, err
	}

	select {
	case err := <-s.joined:
		if err != nil {
			s.stop(context.Background(), false)
			return nil, err
		}
	case <-ctx.Done():
		s.stop(context.Background(), true)
		return nil, ctx.Err()
	}

	c.mu.Lock()
	c.active = s
	c.mu.Unlock()
	log.Info().Str("module", "rtc").Str("room", string(params.RoomID)).Msg("session active")
	return s, nil
}

// Active reports whether a session is joined.
func (c *Client) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

func (c *Client) release(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == s {
		c.active = nil
	}
}

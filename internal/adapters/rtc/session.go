package rtc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	fcore "github.com/frostbyte73/core"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrNoMedia       = errors.New("track has no media source")
)

const leaveFlushTimeout = 2 * time.Second

// Session is one joined room: a signalling socket plus a PeerConnection.
type Session struct {
	client *Client
	params domain.ConnectionParameters

	sig    *signalConn
	peer   *peerConnection
	events *eventQueue
	drains *drainManager

	ctx    context.Context
	cancel context.CancelFunc

	joinOnce sync.Once
	joined   chan error

	negMu   sync.Mutex
	answers chan webrtc.SessionDescription

	leaving  atomic.Bool
	lostOnce sync.Once
	left     fcore.Fuse
	stopOnce sync.Once
}

var _ core.TransportSession = (*Session)(nil)

func newSession(c *Client, params domain.ConnectionParameters, sig *signalConn, peer *peerConnection) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		client:  c,
		params:  params,
		sig:     sig,
		peer:    peer,
		events:  newEventQueue(),
		drains:  newDrainManager(c.opts.Sink),
		ctx:     ctx,
		cancel:  cancel,
		joined:  make(chan error, 1),
		answers: make(chan webrtc.SessionDescription, 1),
		left:    fcore.NewFuse(),
	}
}

func (s *Session) start() {
	s.peer.onICE = func(ci webrtc.ICECandidateInit) {
		s.sendJSON(newCandidateMsg(ci))
	}
	s.peer.onTrack = s.onTrack
	s.peer.onFailed = s.lost
	s.peer.Start()

	go s.sig.writePump(s.ctx)
	go s.sig.readPump(s.ctx, s.handleFrame, func(err error) {
		if err != nil {
			s.lost(fmt.Errorf("signal: %w", err))
		}
	})
	if s.client.opts.PingPeriod > 0 {
		go s.keepalive(s.client.opts.PingPeriod)
	}
}

func (s *Session) Events() <-chan core.RoomEvent { return s.events.Events() }

// Publish attaches all tracks and renegotiates once. On failure none of them stay attached.
func (s *Session) Publish(ctx context.Context, tracks ...core.LocalTrack) error {
	if s.left.IsBroken() {
		return ErrSessionClosed
	}
	s.negMu.Lock()
	defer s.negMu.Unlock()

	var added []string
	for _, t := range tracks {
		tl := t.TrackLocal()
		if tl == nil {
			s.detach(added)
			return fmt.Errorf("%s: %w", t.ID(), ErrNoMedia)
		}
		if s.peer.HasLocalTrack(t.ID()) {
			continue
		}
		if err := s.peer.AddLocalTrack(t.ID(), tl); err != nil {
			s.detach(added)
			return fmt.Errorf("add track %s: %w", t.ID(), err)
		}
		added = append(added, t.ID())
	}
	if len(added) == 0 {
		return nil
	}
	if err := s.negotiate(ctx); err != nil {
		s.detach(added)
		return err
	}
	log.Info().Str("module", "rtc").Str("room", string(s.params.RoomID)).Strs("tracks", added).Msg("published")
	return nil
}

func (s *Session) Unpublish(ctx context.Context, tracks ...core.LocalTrack) error {
	if s.left.IsBroken() {
		return ErrSessionClosed
	}
	s.negMu.Lock()
	defer s.negMu.Unlock()

	removed := 0
	for _, t := range tracks {
		if !s.peer.HasLocalTrack(t.ID()) {
			continue
		}
		if err := s.peer.RemoveLocalTrack(t.ID()); err != nil {
			return fmt.Errorf("remove track %s: %w", t.ID(), err)
		}
		removed++
	}
	if removed == 0 {
		return nil
	}
	return s.negotiate(ctx)
}

func (s *Session) detach(ids []string) {
	for _, id := range ids {
		if err := s.peer.RemoveLocalTrack(id); err != nil {
			log.Warn().Err(err).Str("module", "rtc").Str("track", id).Msg("detach failed")
		}
	}
}

// negotiate sends a local offer and waits for the server's answer. Callers hold negMu.
func (s *Session) negotiate(ctx context.Context) error {
	select {
	case <-s.answers:
	default:
	}
	offer, err := s.peer.CreateOffer(ctx)
	if err != nil {
		s.peer.Rollback()
		return fmt.Errorf("create offer: %w", err)
	}
	if err := s.sendJSON(sdpMsg{Type: "offer", SDP: offer.SDP}); err != nil {
		s.peer.Rollback()
		return err
	}
	select {
	case answer := <-s.answers:
		if err := s.peer.ApplyAnswer(answer); err != nil {
			return fmt.Errorf("apply answer: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.peer.Rollback()
		return ctx.Err()
	case <-s.left.Watch():
		return ErrSessionClosed
	}
}

// Leave is idempotent. It tells the server, closes media and ends Events.
func (s *Session) Leave(ctx context.Context) error {
	s.stop(ctx, true)
	return nil
}

func (s *Session) stop(ctx context.Context, announce bool) {
	s.stopOnce.Do(func() {
		s.leaving.Store(true)
		if announce {
			s.sendJSON(map[string]string{"type": "leave"})
		}
		flushCtx, cancel := context.WithTimeout(ctx, leaveFlushTimeout)
		s.sig.CloseGracefully(flushCtx)
		cancel()

		log.Debug().
			Str("module", "rtc").
			Int("drains", s.drains.Len()).
			Int("undelivered", s.events.Len()).
			Msg("stopping session")
		s.drains.StopAll()
		s.peer.Close()
		s.cancel()
		s.events.Close()
		s.left.Break()
		s.client.release(s)
		log.Info().Str("module", "rtc").Str("room", string(s.params.RoomID)).Msg("session closed")
	})
}

func (s *Session) sendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "rtc").Msg("sendJSON marshal")
		return err
	}
	if err := s.sig.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "rtc").Msg("sendJSON dropped")
		return err
	}
	return nil
}

// resolveJoin settles a pending Join. It reports false once Join is settled.
func (s *Session) resolveJoin(err error) bool {
	resolved := false
	s.joinOnce.Do(func() {
		s.joined <- err
		resolved = true
	})
	return resolved
}

// lost is reported once per session, never after Leave started.
func (s *Session) lost(err error) {
	if s.resolveJoin(err) || s.leaving.Load() {
		return
	}
	s.lostOnce.Do(func() {
		log.Warn().Err(err).Str("module", "rtc").Str("room", string(s.params.RoomID)).Msg("transport lost")
		s.events.Push(core.RoomEvent{Type: core.EventTransportLost, Err: err})
	})
}

func (s *Session) keepalive(period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			_ = s.sendJSON(map[string]string{"type": "ping"})
		}
	}
}

func (s *Session) onTrack(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	remote := domain.RemoteID(track.StreamID())
	kind := kindOf(track)
	published := func() {
		s.events.Push(core.RoomEvent{
			Type:     core.EventRemotePublished,
			RemoteID: remote,
			Kind:     kind,
			Track:    &remoteTrack{track: track, kind: kind},
		})
	}
	unpublished := func() {
		s.events.Push(core.RoomEvent{Type: core.EventRemoteUnpublished, RemoteID: remote, Kind: kind})
	}
	s.drains.Start(s.ctx, remote, kind, trackReader(track), published, unpublished)
}

package rtc

import (
	"context"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// peerConnection wraps the client's single PeerConnection for one session.
type peerConnection struct {
	pc   *webrtc.PeerConnection
	room string

	onICE    func(webrtc.ICECandidateInit)
	onTrack  func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)
	onFailed func(error)

	mu      sync.Mutex
	senders map[string]*webrtc.RTPSender
}

func webrtcConfig(iceServers []string) webrtc.Configuration {
	if len(iceServers) == 0 {
		iceServers = []string{"stun:stun.l.google.com:19302"}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: iceServers}},
	}
}

func newPeerConnection(cfg webrtc.Configuration, room string) (*peerConnection, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &peerConnection{pc: pc, room: room, senders: make(map[string]*webrtc.RTPSender)}, nil
}

func (c *peerConnection) Start() {
	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("room", c.room).Str("ice_state", s.String()).Msg("ICE state")
	})

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "rtc").Str("room", c.room).Str("peer_connection_state", s.String()).Msg("Peer state")
		if s == webrtc.PeerConnectionStateFailed && c.onFailed != nil {
			c.onFailed(fmt.Errorf("peer connection %s", s))
		}
	})

	c.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil && c.onICE != nil {
			c.onICE(cand.ToJSON())
		}
	})

	c.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Info().
			Str("module", "rtc").
			Str("room", c.room).
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")
		if c.onTrack != nil {
			c.onTrack(track, receiver)
		}
	})
}

func (c *peerConnection) ApplyOfferAndCreateAnswer(ctx context.Context, offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := c.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	return c.setLocalAndGather(ctx, answer)
}

// CreateOffer produces a full (gathered) local offer.
func (c *peerConnection) CreateOffer(ctx context.Context) (*webrtc.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	return c.setLocalAndGather(ctx, offer)
}

func (c *peerConnection) setLocalAndGather(ctx context.Context, desc webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	gatherComplete := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(desc); err != nil {
		return nil, err
	}
	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.pc.LocalDescription(), nil
}

func (c *peerConnection) ApplyAnswer(answer webrtc.SessionDescription) error {
	return c.pc.SetRemoteDescription(answer)
}

// Rollback returns the signalling state to stable after a failed local offer.
func (c *peerConnection) Rollback() {
	if c.pc.SignalingState() != webrtc.SignalingStateHaveLocalOffer {
		return
	}
	if err := c.pc.SetLocalDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeRollback}); err != nil {
		log.Warn().Err(err).Str("module", "rtc").Str("room", c.room).Msg("rollback failed")
	}
}

func (c *peerConnection) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

// AddLocalTrack attaches a local track; adding the same id twice is a no-op.
func (c *peerConnection) AddLocalTrack(id string, track webrtc.TrackLocal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.senders[id]; ok {
		return nil
	}
	sender, err := c.pc.AddTrack(track)
	if err != nil {
		return err
	}
	c.senders[id] = sender
	go drainRTCP(sender)
	return nil
}

// RemoveLocalTrack detaches a local track. Unknown ids are ignored.
func (c *peerConnection) RemoveLocalTrack(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	sender, ok := c.senders[id]
	if !ok {
		return nil
	}
	delete(c.senders, id)
	return c.pc.RemoveTrack(sender)
}

func (c *peerConnection) HasLocalTrack(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.senders[id]
	return ok
}

func (c *peerConnection) Close() {
	if err := c.pc.Close(); err != nil {
		log.Error().Err(err).Str("module", "rtc").Str("room", c.room).Msg("close error")
	} else {
		log.Info().Str("module", "rtc").Str("room", c.room).Msg("closed")
	}
}

// drainRTCP keeps interceptors running for an outgoing sender until it stops.
func drainRTCP(sender *webrtc.RTPSender) {
	buf := make([]byte, 1500)
	for {
		if _, _, err := sender.Read(buf); err != nil {
			return
		}
	}
}

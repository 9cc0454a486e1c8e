package rtc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
)

var ErrJoinRejected = errors.New("join rejected")

func (s *Session) handleFrame(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "room_state":
		s.handleRoomState(data)
	case "answer":
		s.handleAnswer(data)
	case "offer":
		go s.handleOffer(data)
	case "candidate":
		s.handleCandidate(data)
	case "member_left":
		s.handleMemberLeft(data)
	case "track_unpublished":
		s.handleTrackUnpublished(data)
	case "error":
		s.handleError(data)
	case "pong":
	default:
		log.Debug().Str("module", "rtc.signal").Str("type", env.Type).Msg("ignored signal")
	}
}

func (s *Session) handleRoomState(data []byte) {
	var p roomStateMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("bad room_state payload")
		return
	}
	if s.resolveJoin(nil) {
		log.Info().Str("module", "rtc.signal").Str("room", p.Room).Int("count", p.Count).Msg("joined")
	}
}

func (s *Session) handleError(data []byte) {
	var p errorMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("bad error payload")
		return
	}
	if s.resolveJoin(fmt.Errorf("%w: %s", ErrJoinRejected, p.Error)) {
		return
	}
	log.Warn().Str("module", "rtc.signal").Str("error", p.Error).Msg("server error")
}

func (s *Session) handleAnswer(data []byte) {
	var p sdpMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("bad answer payload")
		return
	}
	select {
	case s.answers <- webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: p.SDP}:
	default:
		log.Warn().Str("module", "rtc.signal").Msg("unexpected answer")
	}
}

// handleOffer answers a server-initiated renegotiation.
func (s *Session) handleOffer(data []byte) {
	var p sdpMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("bad offer payload")
		return
	}
	s.negMu.Lock()
	defer s.negMu.Unlock()
	if s.left.IsBroken() {
		return
	}

	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: p.SDP}
	answer, err := s.peer.ApplyOfferAndCreateAnswer(s.ctx, offer)
	if err != nil {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("webrtc apply offer")
		return
	}
	_ = s.sendJSON(sdpMsg{Type: "answer", SDP: answer.SDP})
}

func (s *Session) handleCandidate(data []byte) {
	var p candidateMsg
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("bad candidate payload")
		return
	}
	if err := s.peer.AddICECandidate(p.init()); err != nil {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("add ice candidate")
	}
}

func (s *Session) handleMemberLeft(data []byte) {
	var p memberLeftMsg
	if err := json.Unmarshal(data, &p); err != nil || p.User.ID == "" {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("bad member_left payload")
		return
	}
	remote := domain.RemoteID(p.User.ID)
	s.drains.StopRemote(remote)
	s.events.Push(core.RoomEvent{Type: core.EventRemoteLeft, RemoteID: remote})
}

func (s *Session) handleTrackUnpublished(data []byte) {
	var p trackUnpublishedMsg
	if err := json.Unmarshal(data, &p); err != nil || p.UID == "" {
		log.Error().Err(err).Str("module", "rtc.signal").Msg("bad track_unpublished payload")
		return
	}
	kind, ok := domain.ParseMediaKind(p.Kind)
	if !ok {
		log.Warn().Str("module", "rtc.signal").Str("kind", p.Kind).Msg("unknown track kind")
		return
	}
	remote := domain.RemoteID(p.UID)
	s.drains.Stop(remote, kind)
	s.events.Push(core.RoomEvent{Type: core.EventRemoteUnpublished, RemoteID: remote, Kind: kind})
}

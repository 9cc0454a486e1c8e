package core

import "github.com/dkeye/liveroom/internal/domain"

// ParticipantDTO is a read-only view for APIs (no transport handles).
type ParticipantDTO = domain.Participant

// StateDTO is the wire form of a ConnectionState.
type StateDTO struct {
	Phase  string `json:"phase"`
	Reason string `json:"reason,omitempty"`
}

func NewStateDTO(s domain.ConnectionState) StateDTO {
	dto := StateDTO{Phase: s.Phase.String()}
	if s.Reason != nil {
		dto.Reason = s.Reason.Error()
	}
	return dto
}

// Snapshot is everything the hosting view renders. It is rebuilt on every
// relevant event and never mutated after it is handed out.
type Snapshot struct {
	Attempt      uint64                 `json:"attempt"`
	Room         domain.RoomID          `json:"room,omitempty"`
	Role         string                 `json:"role"`
	State        domain.ConnectionState `json:"-"`
	StateDTO     StateDTO               `json:"state"`
	Participants []ParticipantDTO       `json:"participants"`
	LocalMedia   domain.LocalMediaState `json:"local_media"`
}

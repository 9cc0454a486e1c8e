package core

import (
	"sync"

	"github.com/dkeye/liveroom/internal/domain"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/rs/zerolog/log"
)

type participantEntry struct {
	audio RemoteTrack
	video RemoteTrack
	// flags can outlive handles when a transport reports a kind without a track
	hasAudio bool
	hasVideo bool
}

func (e *participantEntry) empty() bool {
	return !e.hasAudio && !e.hasVideo && e.audio == nil && e.video == nil
}

func (e *participantEntry) dto(id domain.RemoteID) ParticipantDTO {
	p := ParticipantDTO{RemoteID: id, HasAudio: e.hasAudio, HasVideo: e.hasVideo}
	if e.audio != nil {
		p.AudioTrackID = e.audio.ID()
	}
	if e.video != nil {
		p.VideoTrackID = e.video.ID()
	}
	return p
}

// ParticipantRegistry is a threadsafe set of remote participants kept in
// first-joined order. It never closes transport-owned handles.
type ParticipantRegistry struct {
	mu      sync.RWMutex
	entries *orderedmap.OrderedMap[domain.RemoteID, *participantEntry]
	// cached is rebuilt lazily after a mutation and shared between readers
	cached []ParticipantDTO
	dirty  bool
}

func NewParticipantRegistry() *ParticipantRegistry {
	return &ParticipantRegistry{
		entries: orderedmap.NewOrderedMap[domain.RemoteID, *participantEntry](),
		cached:  []ParticipantDTO{},
	}
}

// OnRemotePublished upserts the entry and sets only the published kind.
func (r *ParticipantRegistry) OnRemotePublished(id domain.RemoteID, kind domain.MediaKind, handle RemoteTrack) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries.Get(id)
	if !ok {
		e = &participantEntry{}
		r.entries.Set(id, e)
		log.Info().Str("module", "core.participants").Str("remote", string(id)).Msg("participant added")
	}
	switch kind {
	case domain.KindAudio:
		e.hasAudio = true
		e.audio = handle
	case domain.KindVideo:
		e.hasVideo = true
		e.video = handle
	}
	r.dirty = true
}

// OnRemoteUnpublished clears only the named kind. An entry left with nothing is removed.
func (r *ParticipantRegistry) OnRemoteUnpublished(id domain.RemoteID, kind domain.MediaKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries.Get(id)
	if !ok {
		return
	}
	switch kind {
	case domain.KindAudio:
		e.hasAudio = false
		e.audio = nil
	case domain.KindVideo:
		e.hasVideo = false
		e.video = nil
	}
	if e.empty() {
		r.entries.Delete(id)
		log.Info().Str("module", "core.participants").Str("remote", string(id)).Msg("participant removed, no media left")
	}
	r.dirty = true
}

// OnRemoteLeft removes the entry regardless of its media. Unknown ids are ignored.
func (r *ParticipantRegistry) OnRemoteLeft(id domain.RemoteID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries.Delete(id) {
		r.dirty = true
		log.Info().Str("module", "core.participants").Str("remote", string(id)).Msg("participant left")
	}
}

// Apply routes one transport event. It reports whether the event was a registry event.
func (r *ParticipantRegistry) Apply(ev RoomEvent) bool {
	switch ev.Type {
	case EventRemotePublished:
		r.OnRemotePublished(ev.RemoteID, ev.Kind, ev.Track)
	case EventRemoteUnpublished:
		r.OnRemoteUnpublished(ev.RemoteID, ev.Kind)
	case EventRemoteLeft:
		r.OnRemoteLeft(ev.RemoteID)
	default:
		return false
	}
	return true
}

func (r *ParticipantRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries.Len()
}

// Snapshot returns participants in first-joined order. The returned slice is
// shared and must not be modified.
func (r *ParticipantRegistry) Snapshot() []ParticipantDTO {
	r.mu.RLock()
	if !r.dirty {
		out := r.cached
		r.mu.RUnlock()
		return out
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirty {
		out := make([]ParticipantDTO, 0, r.entries.Len())
		for el := r.entries.Front(); el != nil; el = el.Next() {
			out = append(out, el.Value.dto(el.Key))
		}
		r.cached = out
		r.dirty = false
	}
	return r.cached
}

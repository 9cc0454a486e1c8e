package room

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
)

// pump drains one session's events in arrival order until the session closes
// them or the attempt ends.
func (c *Connection) pump(a *attempt, events <-chan core.RoomEvent) {
	for {
		select {
		case <-a.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handle(a, ev)
		}
	}
}

func (c *Connection) handle(a *attempt, ev core.RoomEvent) {
	if ev.Type == core.EventTransportLost {
		if a.State().Phase != domain.PhaseConnected {
			return
		}
		if a.transition(domain.Failed(&domain.TransportError{Op: "session", Err: ev.Err})) {
			c.notify()
		}
		return
	}
	if a.participants.Apply(ev) {
		log.Debug().
			Str("module", "room").
			Uint64("attempt", a.id).
			Str("event", ev.Type.String()).
			Str("remote", string(ev.RemoteID)).
			Msg("room event")
		if c.isCurrent(a) {
			c.notify()
		}
	}
}

// Snapshot is the read-only view of the current attempt.
func (c *Connection) Snapshot() core.Snapshot {
	a := c.current()
	if a == nil {
		return core.Snapshot{
			Attempt:      c.seq.Load(),
			Role:         domain.RoleViewer.String(),
			State:        domain.Idle,
			StateDTO:     core.NewStateDTO(domain.Idle),
			Participants: []core.ParticipantDTO{},
		}
	}
	st := a.State()
	return core.Snapshot{
		Attempt:      a.id,
		Room:         a.params.RoomID,
		Role:         a.role.String(),
		State:        st,
		StateDTO:     core.NewStateDTO(st),
		Participants: a.participants.Snapshot(),
		LocalMedia:   a.media.State(),
	}
}

// Watch subscribes to snapshots. The channel holds only the latest value, so a
// slow reader skips intermediate states. The returned func unsubscribes.
func (c *Connection) Watch() (<-chan core.Snapshot, func()) {
	ch := make(chan core.Snapshot, 1)
	c.wmu.Lock()
	c.wseq++
	id := c.wseq
	c.watchers[id] = ch
	ch <- c.Snapshot()
	c.wmu.Unlock()

	return ch, func() {
		c.wmu.Lock()
		defer c.wmu.Unlock()
		if _, ok := c.watchers[id]; ok {
			delete(c.watchers, id)
			close(ch)
		}
	}
}

func (c *Connection) notify() {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if len(c.watchers) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, ch := range c.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

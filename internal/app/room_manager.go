package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/app/room"
	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
)

// Membership receives fire-and-forget join/leave notifications for a session.
type Membership interface {
	JoinStream(ctx context.Context, sessionID string) error
	LeaveStream(ctx context.Context, sessionID string) error
}

// RoomManager is the scope that owns the transport client through its single
// Connection. Switching rooms always leaves the previous one first.
type RoomManager struct {
	conn    *room.Connection
	members Membership

	// switchMu serialises whole switches: leave notification, Open and join
	// notification of one switch never interleave with another.
	switchMu sync.Mutex

	mu      sync.Mutex
	session string
}

func NewRoomManager(conn *room.Connection, members Membership) *RoomManager {
	return &RoomManager{conn: conn, members: members}
}

func (m *RoomManager) Connection() *room.Connection { return m.conn }

// Switch connects to the room behind sessionID. Reconnecting to the same live
// target with the same role is a no-op. The session id is recorded only once
// the connection is open.
func (m *RoomManager) Switch(ctx context.Context, sessionID string, params domain.ConnectionParameters, role domain.Role) error {
	m.switchMu.Lock()
	defer m.switchMu.Unlock()

	prev := m.currentSession()
	if cur, curRole, ok := m.conn.Target(); ok && prev == sessionID && cur.SameTarget(params) && curRole == role &&
		m.conn.State().Phase == domain.PhaseConnected {
		return nil
	}
	if err := params.Validate(); err != nil {
		return err
	}

	if prev != "" && prev != sessionID {
		m.notifyLeave(ctx, prev)
		m.setSession("")
	}

	if err := m.conn.Open(ctx, params, role); err != nil {
		if prev == sessionID {
			m.notifyLeave(ctx, prev)
		}
		m.setSession("")
		return err
	}
	if prev != sessionID {
		m.notifyJoin(ctx, sessionID)
	}
	m.setSession(sessionID)
	log.Info().Str("module", "app.rooms").Str("session", sessionID).Str("role", role.String()).Msg("switched room")
	return nil
}

func (m *RoomManager) currentSession() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *RoomManager) setSession(id string) {
	m.mu.Lock()
	m.session = id
	m.mu.Unlock()
}

// Leave closes the connection and drops the backend membership. The first
// Close cancels an in-flight Switch; the second one, under the switch lock,
// catches a switch that opened before the first Close landed.
func (m *RoomManager) Leave(ctx context.Context) error {
	err := m.conn.Close(ctx)

	m.switchMu.Lock()
	defer m.switchMu.Unlock()
	if cerr := m.conn.Close(ctx); err == nil {
		err = cerr
	}
	prev := m.currentSession()
	m.setSession("")
	if prev != "" {
		m.notifyLeave(ctx, prev)
	}
	return err
}

// Current returns the backend session id and the connection snapshot.
func (m *RoomManager) Current() (string, core.Snapshot) {
	return m.currentSession(), m.conn.Snapshot()
}

func (m *RoomManager) notifyJoin(ctx context.Context, id string) {
	if m.members == nil {
		return
	}
	if err := m.members.JoinStream(context.WithoutCancel(ctx), id); err != nil {
		log.Warn().Err(err).Str("module", "app.rooms").Str("session", id).Msg("join notification failed")
	}
}

func (m *RoomManager) notifyLeave(ctx context.Context, id string) {
	if m.members == nil {
		return
	}
	if err := m.members.LeaveStream(context.WithoutCancel(ctx), id); err != nil {
		log.Warn().Err(err).Str("module", "app.rooms").Str("session", id).Msg("leave notification failed")
	}
}

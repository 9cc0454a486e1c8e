//go:generate mockgen -source=transport_iface.go -destination=mocks/mock_transport.go -package=mocks

package core

import (
	"context"

	"github.com/dkeye/liveroom/internal/domain"
)

// Transport opens sessions against the real-time media stack.
// An implementation admits at most one active session at a time.
type Transport interface {
	Join(ctx context.Context, params domain.ConnectionParameters) (TransportSession, error)
}

// TransportSession is the scoped handle of one joined room.
// Events is closed after Leave or when the session is lost.
type TransportSession interface {
	Events() <-chan RoomEvent
	// Publish makes all tracks available together.
	Publish(ctx context.Context, tracks ...LocalTrack) error
	Unpublish(ctx context.Context, tracks ...LocalTrack) error
	// Leave is idempotent.
	Leave(ctx context.Context) error
}

// RemoteTrack is an opaque handle to media flowing from a remote participant.
type RemoteTrack interface {
	ID() string
	Kind() domain.MediaKind
}

type EventType int

const (
	EventRemotePublished EventType = iota
	EventRemoteUnpublished
	EventRemoteLeft
	EventTransportLost
)

func (t EventType) String() string {
	switch t {
	case EventRemotePublished:
		return "remote_published"
	case EventRemoteUnpublished:
		return "remote_unpublished"
	case EventRemoteLeft:
		return "remote_left"
	case EventTransportLost:
		return "transport_lost"
	}
	return "unknown"
}

// RoomEvent is one inbound transport notification, delivered in arrival order.
type RoomEvent struct {
	Type     EventType
	RemoteID domain.RemoteID
	Kind     domain.MediaKind
	Track    RemoteTrack
	Err      error
}

//go:generate mockgen -source=media_iface.go -destination=mocks/mock_media.go -package=mocks

package core

import (
	"context"

	"github.com/dkeye/liveroom/internal/domain"
	"github.com/pion/webrtc/v4"
)

// LocalTrack is a live handle to one local capture. Its creator owns Stop.
type LocalTrack interface {
	ID() string
	Source() domain.TrackSource
	// SetEnabled mutes or unmutes without touching publication.
	SetEnabled(enabled bool)
	Enabled() bool
	// Stop releases the underlying device. Safe to call more than once.
	Stop() error
	// TrackLocal is what the transport publishes. May be nil for tracks
	// that never reach a real peer connection.
	TrackLocal() webrtc.TrackLocal
}

// Devices acquires capture tracks. Every call may block on OS permission prompts
// or, for the screen, on the share picker.
type Devices interface {
	AcquireMicrophone(ctx context.Context) (LocalTrack, error)
	AcquireCamera(ctx context.Context) (LocalTrack, error)
	AcquireScreen(ctx context.Context) (LocalTrack, error)
}

package room

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/app/media"
	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
)

const teardownTimeout = 5 * time.Second

// attempt is one open-to-close run. Nothing in it is reused by the next attempt.
type attempt struct {
	id     uint64
	params domain.ConnectionParameters
	role   domain.Role

	ctx    context.Context
	cancel context.CancelFunc
	// done is closed when Open settles.
	done chan struct{}

	media        *media.Controller
	participants *core.ParticipantRegistry

	mu        sync.Mutex
	state     domain.ConnectionState
	session   core.TransportSession
	published map[domain.TrackSource]bool
	torn      bool

	// swap serialises camera and screen publication changes.
	swap sync.Mutex
	// cameraBeforeShare records whether the camera was published when the
	// current screen share began. Guarded by swap.
	cameraBeforeShare bool

	teardownOnce sync.Once
}

func newAttempt(id uint64, params domain.ConnectionParameters, role domain.Role, devices core.Devices) *attempt {
	ctx, cancel := context.WithCancel(context.Background())
	return &attempt{
		id:           id,
		params:       params,
		role:         role,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		media:        media.NewController(devices),
		participants: core.NewParticipantRegistry(),
		state:        domain.Connecting(),
		published:    make(map[domain.TrackSource]bool),
	}
}

func (a *attempt) State() domain.ConnectionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// transition applies a forward-only state change.
func (a *attempt) transition(to domain.ConnectionState) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.torn || !a.state.CanTransition(to.Phase) {
		return false
	}
	a.state = to
	log.Info().Str("module", "room").Uint64("attempt", a.id).Str("state", to.String()).Msg("state changed")
	return true
}

func (a *attempt) Session() core.TransportSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// adoptSession attaches a joined session. A session that arrives after
// teardown is left right away and false is returned.
func (a *attempt) adoptSession(s core.TransportSession) bool {
	a.mu.Lock()
	if a.torn {
		a.mu.Unlock()
		leaveSession(a.id, s)
		return false
	}
	a.session = s
	a.mu.Unlock()
	return true
}

func (a *attempt) setPublished(src domain.TrackSource, on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.published[src] = on
}

func (a *attempt) isPublished(src domain.TrackSource) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.published[src]
}

// teardown runs once and cannot be cancelled: release local tracks, unpublish
// the screen if it is live, leave the session.
func (a *attempt) teardown() {
	a.teardownOnce.Do(func() {
		a.cancel()
		screen := a.media.Screen()
		a.media.ReleaseAll()

		a.mu.Lock()
		a.torn = true
		s := a.session
		screenLive := a.published[domain.SourceScreen]
		clear(a.published)
		a.mu.Unlock()

		if s == nil {
			return
		}
		if screenLive && screen != nil {
			ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
			if err := s.Unpublish(ctx, screen); err != nil {
				log.Warn().Err(err).Str("module", "room").Uint64("attempt", a.id).Msg("screen unpublish on teardown failed")
			}
			cancel()
		}
		leaveSession(a.id, s)
	})
}

func leaveSession(id uint64, s core.TransportSession) {
	ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()
	if err := s.Leave(ctx); err != nil {
		log.Warn().Err(err).Str("module", "room").Uint64("attempt", id).Msg("leave failed")
		return
	}
	log.Info().Str("module", "room").Uint64("attempt", id).Msg("left session")
}

// opContext is cancelled when either the caller's ctx or the attempt ends.
func (a *attempt) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(a.ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

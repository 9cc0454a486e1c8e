// Package room drives one user's participation in a live room: joining the
// transport, publishing local media for presenters, folding inbound events into
// a participant registry and tearing everything down on close.
package room

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
)

// Connection owns at most one attempt at a time. Open and Close are
// serialised; the previous attempt is fully torn down before the next joins.
type Connection struct {
	transport core.Transport
	devices   core.Devices

	lifecycle sync.Mutex

	mu  sync.RWMutex
	cur *attempt
	seq atomic.Uint64

	screenBusy atomic.Bool

	wmu      sync.Mutex
	watchers map[uint64]chan core.Snapshot
	wseq     uint64
}

func New(transport core.Transport, devices core.Devices) *Connection {
	return &Connection{
		transport: transport,
		devices:   devices,
		watchers:  make(map[uint64]chan core.Snapshot),
	}
}

// Open starts a fresh attempt. Incomplete parameters fail with *domain.ConfigError
// before the transport is touched and without changing state.
func (c *Connection) Open(ctx context.Context, params domain.ConnectionParameters, role domain.Role) error {
	if err := params.Validate(); err != nil {
		log.Warn().Err(err).Str("module", "room").Msg("open rejected")
		return err
	}

	c.lifecycle.Lock()
	if prev := c.detach(nil); prev != nil {
		c.closeAttempt(ctx, prev)
	}
	a := newAttempt(c.seq.Add(1), params, role, c.devices)
	c.mu.Lock()
	c.cur = a
	c.mu.Unlock()
	c.lifecycle.Unlock()

	log.Info().
		Str("module", "room").
		Uint64("attempt", a.id).
		Str("room", string(params.RoomID)).
		Str("role", role.String()).
		Msg("opening")
	c.notify()

	defer close(a.done)
	err := c.run(ctx, a)
	c.notify()
	return err
}

func (c *Connection) run(ctx context.Context, a *attempt) error {
	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	sess, err := c.transport.Join(opCtx, a.params)
	if sess != nil && a.adoptSession(sess) {
		go c.pump(a, sess.Events())
	}
	if c.stale(ctx, a) {
		return c.abandon(ctx, a)
	}
	if err != nil {
		terr := &domain.TransportError{Op: "join", Err: err}
		a.transition(domain.Failed(terr))
		return terr
	}

	if a.role != domain.RolePresenter {
		a.transition(domain.Connected())
		return nil
	}

	audio, video, err := a.media.AcquireCameraAndMic(opCtx)
	if c.stale(ctx, a) {
		return c.abandon(ctx, a)
	}
	if err != nil {
		a.transition(domain.Failed(err))
		return err
	}

	err = sess.Publish(opCtx, audio, video)
	if c.stale(ctx, a) {
		return c.abandon(ctx, a)
	}
	if err != nil {
		a.media.ReleaseAll()
		terr := &domain.TransportError{Op: "publish", Err: err}
		a.transition(domain.Failed(terr))
		return terr
	}
	a.setPublished(domain.SourceMicrophone, true)
	a.setPublished(domain.SourceCamera, true)
	a.transition(domain.Connected())
	return nil
}

// stale reports whether results of a suspended step must be discarded.
func (c *Connection) stale(ctx context.Context, a *attempt) bool {
	return !c.isCurrent(a) || a.ctx.Err() != nil || ctx.Err() != nil
}

// abandon releases whatever a stale attempt holds. A caller cancellation on a
// still current attempt detaches it too.
func (c *Connection) abandon(ctx context.Context, a *attempt) error {
	detached := c.detach(a) != nil
	a.teardown()
	log.Info().Str("module", "room").Uint64("attempt", a.id).Msg("stale attempt released")
	if detached && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
	}
	return domain.ErrCancelled
}

// Close tears down the current attempt and resolves once local devices are
// released and the session is left. Calling it again is a no-op.
func (c *Connection) Close(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	a := c.detach(nil)
	if a == nil {
		return nil
	}
	c.closeAttempt(ctx, a)
	c.notify()
	return nil
}

func (c *Connection) closeAttempt(ctx context.Context, a *attempt) {
	a.cancel()
	select {
	case <-a.done:
	default:
		select {
		case <-a.done:
		case <-ctx.Done():
			log.Warn().Str("module", "room").Uint64("attempt", a.id).Msg("open still in flight, tearing down anyway")
		}
	}
	a.teardown()
	log.Info().Str("module", "room").Uint64("attempt", a.id).Int("participants", a.participants.Len()).Msg("closed")
}

// detach clears the current attempt. With a non-nil want it only detaches that one.
func (c *Connection) detach(want *attempt) *attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := c.cur
	if a == nil || (want != nil && a != want) {
		return nil
	}
	c.cur = nil
	return a
}

func (c *Connection) current() *attempt {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

func (c *Connection) isCurrent(a *attempt) bool {
	return c.current() == a
}

// State is Idle when no attempt is current.
func (c *Connection) State() domain.ConnectionState {
	if a := c.current(); a != nil {
		return a.State()
	}
	return domain.Idle
}

// Target returns the parameters and role of the current attempt.
func (c *Connection) Target() (domain.ConnectionParameters, domain.Role, bool) {
	a := c.current()
	if a == nil {
		return domain.ConnectionParameters{}, domain.RoleViewer, false
	}
	return a.params, a.role, true
}

// Attempt returns the id of the latest attempt, zero before the first Open.
func (c *Connection) Attempt() uint64 {
	return c.seq.Load()
}

package room

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/domain"
)

const republishTimeout = 10 * time.Second

// ToggleLocalAudio flips the microphone mute flag. Without a track it does nothing.
func (c *Connection) ToggleLocalAudio() error {
	a := c.current()
	if a == nil {
		return nil
	}
	if enabled, ok := a.media.ToggleAudio(); ok {
		log.Info().Str("module", "room").Uint64("attempt", a.id).Bool("enabled", enabled).Msg("audio toggled")
		c.notify()
	}
	return nil
}

// ToggleLocalVideo flips the camera mute flag. Without a track it does nothing.
// Enabling a camera left unpublished by a screen share publishes it again.
func (c *Connection) ToggleLocalVideo() error {
	a := c.current()
	if a == nil {
		return nil
	}
	enabled, ok := a.media.ToggleVideo()
	if !ok {
		return nil
	}
	log.Info().Str("module", "room").Uint64("attempt", a.id).Bool("enabled", enabled).Msg("video toggled")
	var err error
	if enabled {
		err = c.restoreCamera(a)
	}
	c.notify()
	return err
}

// restoreCamera publishes an enabled camera that is not on air while no
// screen share holds its slot.
func (c *Connection) restoreCamera(a *attempt) error {
	a.swap.Lock()
	defer a.swap.Unlock()

	sess := a.Session()
	camera := a.media.Video()
	if sess == nil || camera == nil || a.State().Phase != domain.PhaseConnected {
		return nil
	}
	if a.isPublished(domain.SourceCamera) || a.isPublished(domain.SourceScreen) || !a.media.State().VideoEnabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, republishTimeout)
	defer cancel()
	if err := sess.Publish(ctx, camera); err != nil {
		if a.ctx.Err() != nil {
			return domain.ErrCancelled
		}
		return &domain.TransportError{Op: "publish", Err: err}
	}
	if a.ctx.Err() != nil {
		return domain.ErrCancelled
	}
	a.setPublished(domain.SourceCamera, true)
	log.Info().Str("module", "room").Uint64("attempt", a.id).Msg("camera republished")
	return nil
}

// ToggleScreenShare swaps the published camera for a screen capture or back.
// A call made while another is in flight fails with domain.ErrBusy. A call
// overtaken by Close returns domain.ErrCancelled.
func (c *Connection) ToggleScreenShare(ctx context.Context) error {
	if !c.screenBusy.CompareAndSwap(false, true) {
		return domain.ErrBusy
	}
	defer c.screenBusy.Store(false)

	a := c.current()
	if a == nil || a.Session() == nil || a.State().Phase != domain.PhaseConnected {
		return domain.ErrNotConnected
	}
	if a.role != domain.RolePresenter {
		return domain.ErrNotPresenter
	}

	opCtx, cancel := a.opContext(ctx)
	defer cancel()

	a.swap.Lock()
	var err error
	if a.isPublished(domain.SourceScreen) {
		err = c.stopScreenShare(opCtx, a)
	} else {
		err = c.startScreenShare(opCtx, a)
	}
	a.swap.Unlock()

	if a.ctx.Err() != nil {
		log.Debug().Str("module", "room").Uint64("attempt", a.id).Msg("screen share toggle overtaken by close")
		return domain.ErrCancelled
	}
	c.notify()
	if err != nil {
		log.Warn().Err(err).Str("module", "room").Uint64("attempt", a.id).Msg("screen share toggle failed")
	}
	return err
}

// startScreenShare runs with a.swap held.
func (c *Connection) startScreenShare(ctx context.Context, a *attempt) error {
	sess := a.Session()
	screen, err := a.media.AcquireScreen(ctx)
	if a.ctx.Err() != nil {
		return domain.ErrCancelled
	}
	if err != nil {
		return err
	}

	camera := a.media.Video()
	cameraLive := camera != nil && a.isPublished(domain.SourceCamera)
	if cameraLive {
		err := sess.Unpublish(ctx, camera)
		if a.ctx.Err() != nil {
			return domain.ErrCancelled
		}
		if err != nil {
			a.media.ReleaseScreen()
			return &domain.TransportError{Op: "unpublish", Err: err}
		}
		a.setPublished(domain.SourceCamera, false)
	}

	err = sess.Publish(ctx, screen)
	if a.ctx.Err() != nil {
		return domain.ErrCancelled
	}
	if err != nil {
		a.media.ReleaseScreen()
		if cameraLive {
			if perr := sess.Publish(ctx, camera); perr != nil {
				if a.ctx.Err() != nil {
					return domain.ErrCancelled
				}
				log.Error().Err(perr).Str("module", "room").Uint64("attempt", a.id).Msg("camera restore failed")
			} else {
				a.setPublished(domain.SourceCamera, true)
			}
		}
		return &domain.TransportError{Op: "publish", Err: err}
	}
	a.cameraBeforeShare = cameraLive
	a.setPublished(domain.SourceScreen, true)
	a.media.SetScreenSharing(true)
	log.Info().Str("module", "room").Uint64("attempt", a.id).Bool("camera_was_live", cameraLive).Msg("screen share started")
	return nil
}

// stopScreenShare runs with a.swap held. The camera goes back on air if it
// was published when the share began, muted or not, or if it has been
// enabled since.
func (c *Connection) stopScreenShare(ctx context.Context, a *attempt) error {
	sess := a.Session()
	if screen := a.media.Screen(); screen != nil {
		err := sess.Unpublish(ctx, screen)
		if a.ctx.Err() != nil {
			return domain.ErrCancelled
		}
		if err != nil {
			return &domain.TransportError{Op: "unpublish", Err: err}
		}
	}
	a.setPublished(domain.SourceScreen, false)
	a.media.ReleaseScreen()

	restore := a.cameraBeforeShare || a.media.State().VideoEnabled
	a.cameraBeforeShare = false
	camera := a.media.Video()
	if camera != nil && restore {
		err := sess.Publish(ctx, camera)
		if a.ctx.Err() != nil {
			return domain.ErrCancelled
		}
		if err != nil {
			return &domain.TransportError{Op: "publish", Err: err}
		}
		a.setPublished(domain.SourceCamera, true)
	}
	log.Info().Str("module", "room").Uint64("attempt", a.id).Msg("screen share stopped")
	return nil
}

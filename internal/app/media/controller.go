// Package media owns local capture tracks on behalf of one connection attempt.
package media

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
)

// Controller is the only owner of the local tracks it creates. Every track is
// stopped exactly once: by ReleaseScreen, by ReleaseAll, or immediately when it
// arrives after the controller was released.
type Controller struct {
	devices core.Devices

	mu            sync.Mutex
	audio         core.LocalTrack
	video         core.LocalTrack
	screen        core.LocalTrack
	audioEnabled  bool
	videoEnabled  bool
	screenSharing bool
	released      bool
}

func NewController(devices core.Devices) *Controller {
	return &Controller{devices: devices}
}

// AcquireCameraAndMic opens microphone and camera together. On partial failure
// the device that did open is released before the error is returned.
func (c *Controller) AcquireCameraAndMic(ctx context.Context) (audio, video core.LocalTrack, err error) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil, nil, domain.ErrReleased
	}
	if c.audio != nil && c.video != nil {
		audio, video = c.audio, c.video
		c.mu.Unlock()
		return audio, video, nil
	}
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := c.devices.AcquireMicrophone(gctx)
		if err != nil {
			return &domain.DeviceError{Source: domain.SourceMicrophone, Err: err}
		}
		audio = t
		return nil
	})
	g.Go(func() error {
		t, err := c.devices.AcquireCamera(gctx)
		if err != nil {
			return &domain.DeviceError{Source: domain.SourceCamera, Err: err}
		}
		video = t
		return nil
	})
	if err := g.Wait(); err != nil {
		stopTrack(audio)
		stopTrack(video)
		log.Warn().Err(err).Str("module", "media").Msg("camera/microphone acquisition failed")
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		stopTrack(audio)
		stopTrack(video)
		return nil, nil, domain.ErrReleased
	}
	audio.SetEnabled(true)
	video.SetEnabled(true)
	c.audio, c.video = audio, video
	c.audioEnabled, c.videoEnabled = true, true
	log.Info().Str("module", "media").Str("audio", audio.ID()).Str("video", video.ID()).Msg("camera and microphone acquired")
	return audio, video, nil
}

// AcquireScreen opens a screen capture. A failure (including a cancelled
// picker) leaves the controller exactly as it was.
func (c *Controller) AcquireScreen(ctx context.Context) (core.LocalTrack, error) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil, domain.ErrReleased
	}
	if c.screen != nil {
		t := c.screen
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	t, err := c.devices.AcquireScreen(ctx)
	if err != nil {
		return nil, &domain.DeviceError{Source: domain.SourceScreen, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		stopTrack(t)
		return nil, domain.ErrReleased
	}
	if c.screen != nil {
		stopTrack(t)
		return c.screen, nil
	}
	c.screen = t
	log.Info().Str("module", "media").Str("screen", t.ID()).Msg("screen acquired")
	return t, nil
}

// SetScreenSharing records whether the screen track is the one being published.
func (c *Controller) SetScreenSharing(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screenSharing = on && c.screen != nil
}

// ReleaseScreen stops the screen track, if any.
func (c *Controller) ReleaseScreen() {
	c.mu.Lock()
	t := c.screen
	c.screen = nil
	c.screenSharing = false
	c.mu.Unlock()
	stopTrack(t)
}

// SetAudioEnabled mutes or unmutes the microphone. It reports false when there is no track.
func (c *Controller) SetAudioEnabled(enabled bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.audio == nil {
		return false
	}
	c.audio.SetEnabled(enabled)
	c.audioEnabled = enabled
	return true
}

// SetVideoEnabled mutes or unmutes the camera. It reports false when there is no track.
func (c *Controller) SetVideoEnabled(enabled bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.video == nil {
		return false
	}
	c.video.SetEnabled(enabled)
	c.videoEnabled = enabled
	return true
}

// ToggleAudio flips the microphone flag atomically.
func (c *Controller) ToggleAudio() (enabled, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.audio == nil {
		return false, false
	}
	c.audioEnabled = !c.audioEnabled
	c.audio.SetEnabled(c.audioEnabled)
	return c.audioEnabled, true
}

// ToggleVideo flips the camera flag atomically.
func (c *Controller) ToggleVideo() (enabled, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.video == nil {
		return false, false
	}
	c.videoEnabled = !c.videoEnabled
	c.video.SetEnabled(c.videoEnabled)
	return c.videoEnabled, true
}

func (c *Controller) Audio() core.LocalTrack {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audio
}

func (c *Controller) Video() core.LocalTrack {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.video
}

func (c *Controller) Screen() core.LocalTrack {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

func (c *Controller) State() domain.LocalMediaState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.LocalMediaState{
		AudioEnabled:   c.audioEnabled,
		VideoEnabled:   c.videoEnabled,
		ScreenSharing:  c.screenSharing,
		HasAudioTrack:  c.audio != nil,
		HasVideoTrack:  c.video != nil,
		HasScreenTrack: c.screen != nil,
	}
}

// ReleaseAll stops every held track and resets flags. Idempotent; afterwards
// the controller refuses new acquisitions.
func (c *Controller) ReleaseAll() {
	c.mu.Lock()
	tracks := []core.LocalTrack{c.audio, c.video, c.screen}
	c.audio, c.video, c.screen = nil, nil, nil
	c.audioEnabled, c.videoEnabled, c.screenSharing = false, false, false
	already := c.released
	c.released = true
	c.mu.Unlock()

	for _, t := range tracks {
		stopTrack(t)
	}
	if !already {
		log.Info().Str("module", "media").Msg("local media released")
	}
}

// stopTrack logs and swallows stop errors; teardown never fails.
func stopTrack(t core.LocalTrack) {
	if t == nil {
		return
	}
	if err := t.Stop(); err != nil {
		log.Error().Err(err).Str("module", "media").Str("track", t.ID()).Msg("track stop failed")
	}
}

// Package devices captures the local microphone, camera and screen through
// pion/mediadevices and exposes them as publishable RTP tracks.
package devices

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/liveroom/internal/config"
	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
	"github.com/google/uuid"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/opus"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	_ "github.com/pion/mediadevices/pkg/driver/camera"     // registers camera adapters
	_ "github.com/pion/mediadevices/pkg/driver/microphone" // registers microphone adapters
	_ "github.com/pion/mediadevices/pkg/driver/screen"     // registers screen adapters
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const defaultMTU = 1200

var ErrNoDevice = errors.New("no capture device available")

var (
	videoCodec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}
	audioCodec = webrtc.RTPCodecCapability{
		MimeType:    webrtc.MimeTypeOpus,
		ClockRate:   48000,
		Channels:    2,
		SDPFmtpLine: "minptime=10;useinbandfec=1",
	}
)

// openFunc opens the device behind a track source. It may block on a
// permission prompt or the screen picker.
type openFunc func(source domain.TrackSource) (capture, error)

// Devices implements core.Devices.
type Devices struct {
	cfg  config.DevicesConfig
	open openFunc
}

var _ core.Devices = (*Devices)(nil)

// New builds the codec selector and returns capture devices using it.
func New(cfg config.DevicesConfig) (*Devices, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, fmt.Errorf("vp8 params: %w", err)
	}
	if cfg.VideoBitrate > 0 {
		vpxParams.BitRate = cfg.VideoBitrate
	}
	vpxParams.RateControlEndUsage = vpx.RateControlVBR

	opusParams, err := opus.NewParams()
	if err != nil {
		return nil, fmt.Errorf("opus params: %w", err)
	}

	selector := mediadevices.NewCodecSelector(
		mediadevices.WithVideoEncoders(&vpxParams),
		mediadevices.WithAudioEncoders(&opusParams),
	)
	m := &mediaOpener{cfg: cfg, selector: selector}
	return newDevices(cfg, m.open), nil
}

func newDevices(cfg config.DevicesConfig, open openFunc) *Devices {
	if cfg.MTU <= 0 {
		cfg.MTU = defaultMTU
	}
	return &Devices{cfg: cfg, open: open}
}

func (d *Devices) AcquireMicrophone(ctx context.Context) (core.LocalTrack, error) {
	return d.acquire(ctx, domain.SourceMicrophone)
}

func (d *Devices) AcquireCamera(ctx context.Context) (core.LocalTrack, error) {
	return d.acquire(ctx, domain.SourceCamera)
}

func (d *Devices) AcquireScreen(ctx context.Context) (core.LocalTrack, error) {
	return d.acquire(ctx, domain.SourceScreen)
}

type acquired struct {
	track *localTrack
	err   error
}

// acquire returns when the device opens or ctx ends. A device that opens
// after ctx ended is stopped right away.
func (d *Devices) acquire(ctx context.Context, source domain.TrackSource) (core.LocalTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan acquired, 1)
	go func() {
		t, err := d.start(source)
		ch <- acquired{track: t, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		log.Info().Str("module", "devices").Str("source", source.String()).Str("track", r.track.ID()).Msg("device acquired")
		return r.track, nil
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.track != nil {
				log.Debug().Str("module", "devices").Str("source", source.String()).Msg("late device, stopping")
				_ = r.track.Stop()
			}
		}()
		return nil, ctx.Err()
	}
}

func (d *Devices) start(source domain.TrackSource) (*localTrack, error) {
	dev, err := d.open(source)
	if err != nil {
		return nil, err
	}

	codec := videoCodec
	if source.Kind() == domain.KindAudio {
		codec = audioCodec
	}
	out, err := webrtc.NewTrackLocalStaticRTP(codec, source.String(), "liveroom-"+dev.ID())
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("local %s track: %w", source, err)
	}

	reader, err := dev.Open(codecName(codec.MimeType), uuid.New().ID(), d.cfg.MTU)
	if err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("rtp reader for %s: %w", source, err)
	}
	return startTrack(source, dev, reader, out, out), nil
}

// codecName is the part of a MIME type mediadevices matches encoders on.
func codecName(mime string) string {
	if _, name, ok := strings.Cut(mime, "/"); ok {
		return name
	}
	return mime
}

type mediaOpener struct {
	cfg      config.DevicesConfig
	selector *mediadevices.CodecSelector
}

func (m *mediaOpener) open(source domain.TrackSource) (capture, error) {
	var (
		stream mediadevices.MediaStream
		err    error
	)
	switch source {
	case domain.SourceMicrophone:
		stream, err = mediadevices.GetUserMedia(mediadevices.MediaStreamConstraints{
			Audio: func(c *mediadevices.MediaTrackConstraints) {},
			Codec: m.selector,
		})
	case domain.SourceCamera:
		stream, err = mediadevices.GetUserMedia(mediadevices.MediaStreamConstraints{
			Video: m.videoConstraints,
			Codec: m.selector,
		})
	case domain.SourceScreen:
		stream, err = mediadevices.GetDisplayMedia(mediadevices.MediaStreamConstraints{
			Video: func(c *mediadevices.MediaTrackConstraints) {
				if m.cfg.FrameRate > 0 {
					c.FrameRate = prop.Float(m.cfg.FrameRate)
				}
			},
			Codec: m.selector,
		})
	}
	if err != nil {
		return nil, err
	}

	var tracks []mediadevices.Track
	if source.Kind() == domain.KindAudio {
		tracks = stream.GetAudioTracks()
	} else {
		tracks = stream.GetVideoTracks()
	}
	if len(tracks) == 0 {
		return nil, ErrNoDevice
	}
	for _, extra := range tracks[1:] {
		_ = extra.Close()
	}
	return &mediaCapture{track: tracks[0]}, nil
}

func (m *mediaOpener) videoConstraints(c *mediadevices.MediaTrackConstraints) {
	if m.cfg.Width > 0 {
		c.Width = prop.Int(m.cfg.Width)
	}
	if m.cfg.Height > 0 {
		c.Height = prop.Int(m.cfg.Height)
	}
	if m.cfg.FrameRate > 0 {
		c.FrameRate = prop.Float(m.cfg.FrameRate)
	}
}

type mediaCapture struct {
	track mediadevices.Track
}

func (c *mediaCapture) ID() string   { return c.track.ID() }
func (c *mediaCapture) Close() error { return c.track.Close() }

func (c *mediaCapture) Open(codec string, ssrc uint32, mtu int) (packetReader, error) {
	r, err := c.track.NewRTPReader(codec, ssrc, mtu)
	if err != nil {
		return nil, err
	}
	return r, nil
}

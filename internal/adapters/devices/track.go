package devices

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/dkeye/liveroom/internal/domain"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type trackState int32

const (
	trackOk trackState = iota
	trackMuted
	trackStopped
)

// packetReader yields encoded RTP packets from a capture source.
type packetReader interface {
	Read() ([]*rtp.Packet, func(), error)
	Close() error
}

// capture is one opened device.
type capture interface {
	ID() string
	Open(codec string, ssrc uint32, mtu int) (packetReader, error)
	Close() error
}

type rtpWriter interface {
	WriteRTP(p *rtp.Packet) error
}

// localTrack forwards a capture into a TrackLocalStaticRTP. Muted tracks keep
// reading the device and drop packets.
type localTrack struct {
	id     string
	source domain.TrackSource
	dev    capture
	reader packetReader
	out    *webrtc.TrackLocalStaticRTP
	sink   rtpWriter

	state atomic.Int32 // trackOk by default

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

func startTrack(source domain.TrackSource, dev capture, reader packetReader, out *webrtc.TrackLocalStaticRTP, sink rtpWriter) *localTrack {
	ctx, cancel := context.WithCancel(context.Background())
	t := &localTrack{
		id:     dev.ID(),
		source: source,
		dev:    dev,
		reader: reader,
		out:    out,
		sink:   sink,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go t.pump(ctx)
	return t
}

func (t *localTrack) ID() string                 { return t.id }
func (t *localTrack) Source() domain.TrackSource { return t.source }

func (t *localTrack) TrackLocal() webrtc.TrackLocal {
	if t.out == nil {
		return nil
	}
	return t.out
}

func (t *localTrack) getState() trackState {
	return trackState(t.state.Load())
}

func (t *localTrack) SetEnabled(enabled bool) {
	next := trackMuted
	if enabled {
		next = trackOk
	}
	for {
		cur := t.state.Load()
		if trackState(cur) == trackStopped {
			return
		}
		if t.state.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}

func (t *localTrack) Enabled() bool {
	return t.getState() == trackOk
}

// Stop closes the reader and the device, then waits for the pump.
func (t *localTrack) Stop() error {
	t.stopOnce.Do(func() {
		t.state.Store(int32(trackStopped))
		t.cancel()
		rerr := t.reader.Close()
		derr := t.dev.Close()
		<-t.done
		t.stopErr = errors.Join(rerr, derr)
		log.Info().Str("module", "devices").Str("track", t.id).Str("source", t.source.String()).Msg("track stopped")
	})
	return t.stopErr
}

func (t *localTrack) pump(ctx context.Context) {
	defer close(t.done)
	logger := log.With().Str("module", "devices").Str("track", t.id).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		pkts, release, err := t.reader.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) && t.getState() != trackStopped {
				logger.Error().Err(err).Msg("capture read error, stopping pump")
			}
			return
		}
		t.forward(pkts, &logger)
		if release != nil {
			release()
		}
	}
}

func (t *localTrack) forward(pkts []*rtp.Packet, logger *zerolog.Logger) {
	switch t.getState() {
	case trackStopped, trackMuted:
		return
	}
	for _, pkt := range pkts {
		if pkt == nil {
			continue
		}
		if err := t.sink.WriteRTP(pkt); err != nil {
			logger.Debug().Err(err).Msg("write RTP failed")
		}
	}
}

package rtc

import (
	"context"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/domain"
)

// PacketSink receives remote RTP packets. A nil sink discards them.
type PacketSink func(remote domain.RemoteID, kind domain.MediaKind, pkt *rtp.Packet)

// remoteTrack is the handle kept by the participant registry.
type remoteTrack struct {
	track *webrtc.TrackRemote
	kind  domain.MediaKind
}

func (t *remoteTrack) ID() string             { return t.track.ID() }
func (t *remoteTrack) Kind() domain.MediaKind { return t.kind }

func kindOf(track *webrtc.TrackRemote) domain.MediaKind {
	if track.Kind() == webrtc.RTPCodecTypeAudio {
		return domain.KindAudio
	}
	return domain.KindVideo
}

type drainKey struct {
	remote domain.RemoteID
	kind   domain.MediaKind
}

// rtpReader yields the next packet of a remote track.
type rtpReader func() (*rtp.Packet, error)

func trackReader(track *webrtc.TrackRemote) rtpReader {
	return func() (*rtp.Packet, error) {
		pkt, _, err := track.ReadRTP()
		return pkt, err
	}
}

type drain struct {
	read   rtpReader
	cancel context.CancelFunc
	onEnd  func()
}

// drainManager runs one read loop per remote track so receive buffers keep
// moving. A loop that ends by itself reports the track as gone.
type drainManager struct {
	sink PacketSink

	mu     sync.Mutex
	drains map[drainKey]*drain
}

func newDrainManager(sink PacketSink) *drainManager {
	return &drainManager{sink: sink, drains: make(map[drainKey]*drain)}
}

// Start replaces any loop for the same remote and kind. onStart runs once the
// new loop is registered and onEnd only if the loop ends while still
// registered; both run under the manager lock, so a replaced loop can never
// report its end after the replacement announced itself.
func (m *drainManager) Start(ctx context.Context, remote domain.RemoteID, kind domain.MediaKind, read rtpReader, onStart, onEnd func()) {
	key := drainKey{remote: remote, kind: kind}
	logger := log.With().
		Str("module", "rtc.drain").
		Str("remote", string(remote)).
		Str("kind", key.kind.String()).
		Logger()

	drainCtx, cancel := context.WithCancel(ctx)
	d := &drain{read: read, cancel: cancel, onEnd: onEnd}

	m.mu.Lock()
	if old, ok := m.drains[key]; ok {
		logger.Info().Msg("replacing existing drain")
		old.cancel()
	}
	m.drains[key] = d
	if onStart != nil {
		onStart()
	}
	m.mu.Unlock()

	go m.loop(drainCtx, key, d, &logger)
}

func (m *drainManager) loop(ctx context.Context, key drainKey, d *drain, logger *zerolog.Logger) {
	defer d.cancel()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		pkt, err := d.read()
		if err != nil {
			logger.Info().Err(err).Msg("remote track ended")
			m.remove(key, d)
			return
		}
		if m.sink != nil {
			m.sink(key.remote, key.kind, pkt)
		}
	}
}

// remove drops d and reports its end if it was still the registered loop for key.
func (m *drainManager) remove(key drainKey, d *drain) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drains[key] != d {
		return false
	}
	delete(m.drains, key)
	if d.onEnd != nil {
		d.onEnd()
	}
	return true
}

// Stop forgets one loop without reporting it as ended.
func (m *drainManager) Stop(remote domain.RemoteID, kind domain.MediaKind) {
	key := drainKey{remote: remote, kind: kind}
	m.mu.Lock()
	d, ok := m.drains[key]
	delete(m.drains, key)
	m.mu.Unlock()
	if ok {
		d.cancel()
	}
}

func (m *drainManager) StopRemote(remote domain.RemoteID) {
	m.Stop(remote, domain.KindAudio)
	m.Stop(remote, domain.KindVideo)
}

func (m *drainManager) StopAll() {
	m.mu.Lock()
	drains := m.drains
	m.drains = make(map[drainKey]*drain)
	m.mu.Unlock()
	for _, d := range drains {
		d.cancel()
	}
}

func (m *drainManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.drains)
}

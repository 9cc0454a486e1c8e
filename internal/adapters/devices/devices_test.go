package devices

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dkeye/liveroom/internal/config"
	"github.com/dkeye/liveroom/internal/domain"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	pkts      chan []*rtp.Packet
	closeOnce sync.Once
	closed    chan struct{}
	released  atomic.Int32
}

func newFakeReader() *fakeReader {
	return &fakeReader{pkts: make(chan []*rtp.Packet), closed: make(chan struct{})}
}

func (r *fakeReader) Read() ([]*rtp.Packet, func(), error) {
	select {
	case p := <-r.pkts:
		return p, func() { r.released.Add(1) }, nil
	case <-r.closed:
		return nil, nil, io.EOF
	}
}

func (r *fakeReader) Close() error {
	r.closeOnce.Do(func() { close(r.closed) })
	return nil
}

type fakeCapture struct {
	id     string
	reader *fakeReader
	codec  string
	closes atomic.Int32
}

func (c *fakeCapture) ID() string { return c.id }

func (c *fakeCapture) Open(codec string, _ uint32, _ int) (packetReader, error) {
	c.codec = codec
	return c.reader, nil
}

func (c *fakeCapture) Close() error {
	c.closes.Add(1)
	return nil
}

type recordingSink struct {
	mu   sync.Mutex
	seqs []uint16
}

func (s *recordingSink) WriteRTP(p *rtp.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs = append(s.seqs, p.SequenceNumber)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seqs)
}

func packet(seq uint16) []*rtp.Packet {
	return []*rtp.Packet{{Header: rtp.Header{SequenceNumber: seq}}}
}

func TestTrackForwardsOnlyWhenEnabled(t *testing.T) {
	reader := newFakeReader()
	dev := &fakeCapture{id: "cam", reader: reader}
	sink := &recordingSink{}
	tr := startTrack(domain.SourceCamera, dev, reader, nil, sink)
	defer tr.Stop()

	require.True(t, tr.Enabled())
	reader.pkts <- packet(1)
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)

	tr.SetEnabled(false)
	require.False(t, tr.Enabled())
	reader.pkts <- packet(2)
	require.Eventually(t, func() bool { return reader.released.Load() == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, sink.count())

	tr.SetEnabled(true)
	reader.pkts <- packet(3)
	require.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)
	sink.mu.Lock()
	require.Equal(t, []uint16{1, 3}, sink.seqs)
	sink.mu.Unlock()
}

func TestTrackStopIsIdempotent(t *testing.T) {
	reader := newFakeReader()
	dev := &fakeCapture{id: "mic", reader: reader}
	tr := startTrack(domain.SourceMicrophone, dev, reader, nil, &recordingSink{})

	require.NoError(t, tr.Stop())
	require.NoError(t, tr.Stop())
	require.Equal(t, int32(1), dev.closes.Load())

	tr.SetEnabled(true)
	require.False(t, tr.Enabled())
	require.Nil(t, tr.TrackLocal())
}

func TestAcquireBuildsPublishableTrack(t *testing.T) {
	reader := newFakeReader()
	dev := &fakeCapture{id: "mic-1", reader: reader}
	d := newDevices(config.DevicesConfig{}, func(source domain.TrackSource) (capture, error) {
		require.Equal(t, domain.SourceMicrophone, source)
		return dev, nil
	})

	tr, err := d.AcquireMicrophone(context.Background())
	require.NoError(t, err)
	defer tr.Stop()

	require.Equal(t, "mic-1", tr.ID())
	require.Equal(t, domain.SourceMicrophone, tr.Source())
	require.Equal(t, "opus", dev.codec)
	require.NotNil(t, tr.TrackLocal())
	require.Equal(t, "audio", tr.TrackLocal().Kind().String())
}

func TestAcquireReportsOpenError(t *testing.T) {
	denied := errors.New("permission denied")
	d := newDevices(config.DevicesConfig{}, func(domain.TrackSource) (capture, error) {
		return nil, denied
	})

	_, err := d.AcquireCamera(context.Background())
	require.ErrorIs(t, err, denied)
}

func TestAcquireCancelledStopsLateDevice(t *testing.T) {
	reader := newFakeReader()
	dev := &fakeCapture{id: "screen", reader: reader}
	entered := make(chan struct{})
	release := make(chan struct{})
	d := newDevices(config.DevicesConfig{}, func(domain.TrackSource) (capture, error) {
		close(entered)
		<-release
		return dev, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := d.AcquireScreen(ctx)
		errc <- err
	}()
	<-entered
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return dev.closes.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCodecName(t *testing.T) {
	require.Equal(t, "VP8", codecName("video/VP8"))
	require.Equal(t, "opus", codecName("audio/opus"))
	require.Equal(t, "raw", codecName("raw"))
}

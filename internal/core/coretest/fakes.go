// Package coretest provides in-memory fakes for transport and devices.
package coretest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
	"github.com/pion/webrtc/v4"
)

var trackSeq atomic.Uint64

// Track is a LocalTrack that records its lifecycle.
type Track struct {
	id      string
	source  domain.TrackSource
	enabled atomic.Bool
	stops   atomic.Int32
}

func NewTrack(source domain.TrackSource) *Track {
	t := &Track{id: fmt.Sprintf("%s-%d", source, trackSeq.Add(1)), source: source}
	t.enabled.Store(true)
	return t
}

func (t *Track) ID() string                    { return t.id }
func (t *Track) Source() domain.TrackSource    { return t.source }
func (t *Track) SetEnabled(enabled bool)       { t.enabled.Store(enabled) }
func (t *Track) Enabled() bool                 { return t.enabled.Load() }
func (t *Track) TrackLocal() webrtc.TrackLocal { return nil }
func (t *Track) Stops() int                    { return int(t.stops.Load()) }
func (t *Track) Stopped() bool                 { return t.stops.Load() > 0 }

func (t *Track) Stop() error {
	t.stops.Add(1)
	return nil
}

// Gate blocks a fake call until Release. A nil gate never blocks.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func NewGate() *Gate {
	return &Gate{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

// Entered is signalled when the guarded call starts waiting.
func (g *Gate) Entered() <-chan struct{} { return g.entered }

func (g *Gate) Release() { g.once.Do(func() { close(g.release) }) }

// wait ignores ctx on purpose so tests can model transports that do not honour cancellation.
func (g *Gate) wait() {
	if g == nil {
		return
	}
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
}

// Devices hands out fake tracks and keeps every one it created.
type Devices struct {
	mu sync.Mutex

	MicErr    error
	CameraErr error
	ScreenErr error

	MicGate    *Gate
	CameraGate *Gate
	ScreenGate *Gate

	created []*Track
}

func (d *Devices) acquire(source domain.TrackSource, gate *Gate, err error) (core.LocalTrack, error) {
	gate.wait()
	if err != nil {
		return nil, err
	}
	t := NewTrack(source)
	d.mu.Lock()
	d.created = append(d.created, t)
	d.mu.Unlock()
	return t, nil
}

func (d *Devices) AcquireMicrophone(context.Context) (core.LocalTrack, error) {
	d.mu.Lock()
	gate, err := d.MicGate, d.MicErr
	d.mu.Unlock()
	return d.acquire(domain.SourceMicrophone, gate, err)
}

func (d *Devices) AcquireCamera(context.Context) (core.LocalTrack, error) {
	d.mu.Lock()
	gate, err := d.CameraGate, d.CameraErr
	d.mu.Unlock()
	return d.acquire(domain.SourceCamera, gate, err)
}

func (d *Devices) AcquireScreen(context.Context) (core.LocalTrack, error) {
	d.mu.Lock()
	gate, err := d.ScreenGate, d.ScreenErr
	d.mu.Unlock()
	return d.acquire(domain.SourceScreen, gate, err)
}

func (d *Devices) SetScreenGate(g *Gate) {
	d.mu.Lock()
	d.ScreenGate = g
	d.mu.Unlock()
}

func (d *Devices) SetScreenErr(err error) {
	d.mu.Lock()
	d.ScreenErr = err
	d.mu.Unlock()
}

// Created returns every track handed out so far.
func (d *Devices) Created() []*Track {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Track(nil), d.created...)
}

// Live returns tracks that were never stopped.
func (d *Devices) Live() []*Track {
	var out []*Track
	for _, t := range d.Created() {
		if !t.Stopped() {
			out = append(out, t)
		}
	}
	return out
}

var ErrSessionActive = errors.New("fake transport: session already active")

// Transport is a single-session fake.
type Transport struct {
	mu sync.Mutex

	JoinErr  error
	JoinGate *Gate
	// PublishErr applies to sessions created after it is set.
	PublishErr error

	joins    int
	active   *Session
	sessions []*Session
}

func (t *Transport) Join(ctx context.Context, params domain.ConnectionParameters) (core.TransportSession, error) {
	t.mu.Lock()
	t.joins++
	gate, joinErr := t.JoinGate, t.JoinErr
	t.mu.Unlock()

	gate.wait()
	if joinErr != nil {
		return nil, joinErr
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil && !t.active.Left() {
		return nil, ErrSessionActive
	}
	s := &Session{
		Params:     params,
		events:     make(chan core.RoomEvent, 64),
		published:  make(map[string]core.LocalTrack),
		PublishErr: t.PublishErr,
	}
	t.active = s
	t.sessions = append(t.sessions, s)
	return s, nil
}

func (t *Transport) Joins() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.joins
}

func (t *Transport) Sessions() []*Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Session(nil), t.sessions...)
}

// Last returns the most recent session or nil.
func (t *Transport) Last() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sessions) == 0 {
		return nil
	}
	return t.sessions[len(t.sessions)-1]
}

// Session records publication state.
type Session struct {
	Params domain.ConnectionParameters

	mu           sync.Mutex
	events       chan core.RoomEvent
	published    map[string]core.LocalTrack
	PublishErr   error
	UnpublishErr error
	PublishGate  *Gate
	publishes    int
	leaves       int
	left         bool
}

func (s *Session) Events() <-chan core.RoomEvent { return s.events }

// Emit delivers an inbound event as the transport would.
func (s *Session) Emit(ev core.RoomEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.left {
		return
	}
	s.events <- ev
}

func (s *Session) Publish(_ context.Context, tracks ...core.LocalTrack) error {
	s.mu.Lock()
	gate, err := s.PublishGate, s.PublishErr
	s.publishes++
	s.mu.Unlock()

	gate.wait()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.left {
		return errors.New("fake session: left")
	}
	for _, tr := range tracks {
		s.published[tr.ID()] = tr
	}
	return nil
}

func (s *Session) Unpublish(_ context.Context, tracks ...core.LocalTrack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UnpublishErr != nil {
		return s.UnpublishErr
	}
	for _, tr := range tracks {
		delete(s.published, tr.ID())
	}
	return nil
}

func (s *Session) Leave(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves++
	if !s.left {
		s.left = true
		close(s.events)
	}
	return nil
}

func (s *Session) SetPublishErr(err error) {
	s.mu.Lock()
	s.PublishErr = err
	s.mu.Unlock()
}

func (s *Session) SetUnpublishErr(err error) {
	s.mu.Lock()
	s.UnpublishErr = err
	s.mu.Unlock()
}

func (s *Session) SetPublishGate(g *Gate) {
	s.mu.Lock()
	s.PublishGate = g
	s.mu.Unlock()
}

// Published returns the sources currently published.
func (s *Session) Published() map[domain.TrackSource]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.TrackSource]int)
	for _, tr := range s.published {
		out[tr.Source()]++
	}
	return out
}

func (s *Session) IsPublished(tr core.LocalTrack) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.published[tr.ID()]
	return ok
}

func (s *Session) Left() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.left
}

func (s *Session) Leaves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaves
}

// RemoteTrack is a fake remote handle.
type RemoteTrack struct {
	TrackID   string
	TrackKind domain.MediaKind
}

func (r RemoteTrack) ID() string             { return r.TrackID }
func (r RemoteTrack) Kind() domain.MediaKind { return r.TrackKind }

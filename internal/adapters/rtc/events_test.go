package rtc

import (
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
)

func TestEventQueueKeepsOrderWithoutBlockingPush(t *testing.T) {
	q := newEventQueue()
	defer q.Close()

	for i := 0; i < 100; i++ {
		q.Push(core.RoomEvent{Type: core.EventRemoteLeft, RemoteID: domain.RemoteID(string(rune('a' + i%26)))})
	}
	for i := 0; i < 100; i++ {
		select {
		case ev := <-q.Events():
			require.Equal(t, domain.RemoteID(string(rune('a'+i%26))), ev.RemoteID)
		case <-time.After(time.Second):
			t.Fatalf("event %d not delivered", i)
		}
	}
}

func TestEventQueueCloseEndsEvents(t *testing.T) {
	q := newEventQueue()
	q.Push(core.RoomEvent{Type: core.EventTransportLost})
	q.Close()
	q.Push(core.RoomEvent{Type: core.EventRemoteLeft})

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-q.Events():
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestCandidateMsgKeepsMidAndIndex(t *testing.T) {
	mid := "0"
	idx := uint16(1)
	m := newCandidateMsg(webrtc.ICECandidateInit{Candidate: "candidate:1 1 udp 1 10.0.0.1 5000 typ host", SDPMid: &mid, SDPMLineIndex: &idx})
	require.Equal(t, "candidate", m.Type)
	ci := m.init()
	require.Equal(t, "0", *ci.SDPMid)
	require.Equal(t, uint16(1), *ci.SDPMLineIndex)
}

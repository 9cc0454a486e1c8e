package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/liveroom/internal/domain"
)

func TestStreamDataParams(t *testing.T) {
	d := domain.StreamData{AppID: "app", ChannelName: "ch", Token: "tok", UID: "7"}
	p := d.Params()
	require.Equal(t, domain.RoomID("ch"), p.RoomID)
	require.Equal(t, "tok", p.AccessToken)
	require.Equal(t, "app", p.ApplicationID)
	require.Equal(t, domain.RemoteID("7"), p.LocalIdentity)
	require.NoError(t, p.Validate())
}

func TestElapsed(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := domain.StreamDetails{Status: domain.StatusLive, StartedAt: start}

	require.Equal(t, 90*time.Second, s.Elapsed(start.Add(90*time.Second+400*time.Millisecond)))
	require.Zero(t, s.Elapsed(start.Add(-time.Minute)))

	s.Status = domain.StatusCompleted
	require.Zero(t, s.Elapsed(start.Add(time.Hour)))
}

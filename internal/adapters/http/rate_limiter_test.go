package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterSlidingWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	require.True(t, rl.Allow("a"))
	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"))

	now = now.Add(500 * time.Millisecond)
	require.False(t, rl.Allow("a"))

	now = now.Add(600 * time.Millisecond)
	require.True(t, rl.Allow("a"))
}

func TestRateLimiterForget(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(1, time.Second)
	rl.now = func() time.Time { return now }

	require.True(t, rl.Allow("a"))
	require.Zero(t, rl.Forget())

	now = now.Add(2 * time.Second)
	require.Equal(t, 1, rl.Forget())
	require.True(t, rl.Allow("a"))
}

package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/liveroom/internal/app"
	"github.com/dkeye/liveroom/internal/domain"
)

func TestRegistryUsers(t *testing.T) {
	r := app.NewRegistry()
	u := r.GetOrCreateUser("ct-1")
	require.Equal(t, "guest", u.Username)
	require.Same(t, u, r.GetOrCreateUser("ct-1"))

	require.NoError(t, r.UpdateUsername("ct-1", "ana"))
	require.Equal(t, "ana", r.GetOrCreateUser("ct-1").Username)
	require.ErrorIs(t, r.UpdateUsername("ct-1", ""), domain.ErrUsernameEmpty)
}

func TestRegistryOneFeedPerClient(t *testing.T) {
	r := app.NewRegistry()
	ctx1, cancel1 := context.WithCancel(context.Background())
	first := r.BindFeed("ct-1", cancel1)

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	second := r.BindFeed("ct-1", cancel2)

	require.Error(t, ctx1.Err())
	require.NoError(t, ctx2.Err())

	require.False(t, r.UnbindFeed("ct-1", first))
	require.True(t, r.HasFeed("ct-1"))
	require.True(t, r.UnbindFeed("ct-1", second))
	require.False(t, r.HasFeed("ct-1"))
	require.False(t, r.Cancel("ct-1"))
}

func TestRegistryCancelAll(t *testing.T) {
	r := app.NewRegistry()
	ctxA, cancelA := context.WithCancel(context.Background())
	ctxB, cancelB := context.WithCancel(context.Background())
	r.BindFeed("a", cancelA)
	r.BindFeed("b", cancelB)

	require.Equal(t, 2, r.CancelAll())
	require.Error(t, ctxA.Err())
	require.Error(t, ctxB.Err())
	require.False(t, r.HasFeed("a"))
}

package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/liveroom/internal/adapters/backend"
	"github.com/dkeye/liveroom/internal/config"
	"github.com/dkeye/liveroom/internal/domain"
)

type recorded struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]string
}

func newServer(t *testing.T, handler http.HandlerFunc) (*backend.Client, func() []recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	c := backend.New(config.BackendConfig{URL: srv.URL + "/api/", Token: "secret"})
	return c, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestStreamDetailsNormalisesObjectTrainer(t *testing.T) {
	c, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "live",
			"streamData": {"appId": "app", "channelName": "ch-1", "token": "tok", "uid": 42},
			"participants": [{"_id": "u1"}, "u2"],
			"sessionData": {
				"title": "Morning HIIT",
				"startedAt": "2026-03-01T10:00:00Z",
				"trainer": {"_id": "t1", "firstName": "Ana", "lastName": "Ruiz"}
			}
		}`))
	})

	d, err := c.StreamDetails(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "s1", d.SessionID)
	require.Equal(t, domain.StatusLive, d.Status)
	require.Equal(t, "Morning HIIT", d.Title)
	require.Equal(t, domain.Trainer{ID: "t1", Name: "Ana Ruiz"}, d.Trainer)
	require.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), d.StartedAt.UTC())
	require.Equal(t, []string{"u1", "u2"}, d.Participants)

	require.NotNil(t, d.StreamData)
	p := d.StreamData.Params()
	require.NoError(t, p.Validate())
	require.Equal(t, domain.RemoteID("42"), p.LocalIdentity)

	got := calls()
	require.Len(t, got, 1)
	require.Equal(t, "/api/stream/s1", got[0].Path)
	require.Equal(t, "Bearer secret", got[0].Auth)
}

func TestStreamDetailsNormalisesStringTrainer(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "scheduled", "trainer": "Coach Bo"}`))
	})

	d, err := c.StreamDetails(context.Background(), "s2")
	require.NoError(t, err)
	require.Equal(t, domain.StatusScheduled, d.Status)
	require.Equal(t, domain.Trainer{Name: "Coach Bo"}, d.Trainer)
	require.Nil(t, d.StreamData)
	require.False(t, d.IsLive())
}

func TestStreamDetailsMissingTrainer(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ended"}`))
	})

	d, err := c.StreamDetails(context.Background(), "s3")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, d.Status)
	require.Equal(t, "Unknown", d.Trainer.Name)
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "session not found"}`))
	})

	_, err := c.StreamDetails(context.Background(), "nope")
	var ae *backend.APIError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusNotFound, ae.Status)
	require.Equal(t, "session not found", ae.Message)
	require.True(t, backend.IsNotFound(err))
}

func TestMembershipAndRelayCalls(t *testing.T) {
	c, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	require.NoError(t, c.JoinStream(ctx, "s1"))
	require.NoError(t, c.SendChat(ctx, "s1", "  hello  "))
	require.NoError(t, c.SendReaction(ctx, "s1", "fire"))
	require.NoError(t, c.StartStream(ctx, "s1"))
	require.NoError(t, c.EndStream(ctx, "s1"))
	require.NoError(t, c.LeaveStream(ctx, "s1"))
	require.ErrorIs(t, c.SendChat(ctx, "s1", "   "), backend.ErrEmptyMessage)

	got := calls()
	require.Len(t, got, 6)
	paths := make([]string, 0, len(got))
	for _, r := range got {
		require.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.Path)
	}
	require.Equal(t, []string{
		"/api/stream/s1/join",
		"/api/stream/s1/message",
		"/api/stream/s1/reaction",
		"/api/stream/s1/start",
		"/api/stream/s1/end",
		"/api/stream/s1/leave",
	}, paths)
	require.Equal(t, map[string]string{"message": "hello"}, got[1].Body)
	require.Equal(t, map[string]string{"type": "fire"}, got[2].Body)
}

func TestParticipantsAcceptsWrappedList(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"participants": [{"id": "a"}, {"_id": "b", "name": "Bo"}, ""]}`))
	})

	ids, err := c.Participants(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)
}

package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/liveroom/internal/adapters/backend"
	router "github.com/dkeye/liveroom/internal/adapters/http"
	"github.com/dkeye/liveroom/internal/app"
	"github.com/dkeye/liveroom/internal/app/room"
	"github.com/dkeye/liveroom/internal/config"
	"github.com/dkeye/liveroom/internal/core/coretest"
	"github.com/dkeye/liveroom/internal/domain"
)

type fakeBackend struct {
	mu        sync.Mutex
	details   map[string]domain.StreamDetails
	chats     []string
	reactions []string
	started   []string
	ended     []string
}

func (b *fakeBackend) StreamDetails(_ context.Context, id string) (domain.StreamDetails, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.details[id]
	if !ok {
		return domain.StreamDetails{}, &backend.APIError{Status: http.StatusNotFound, Message: "not found"}
	}
	return d, nil
}

func (b *fakeBackend) StartStream(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = append(b.started, id)
	return nil
}

func (b *fakeBackend) EndStream(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ended = append(b.ended, id)
	return nil
}

func (b *fakeBackend) SendChat(_ context.Context, _, msg string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chats = append(b.chats, msg)
	return nil
}

func (b *fakeBackend) SendReaction(_ context.Context, _, kind string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reactions = append(b.reactions, kind)
	return nil
}

type stateBody struct {
	Session  string `json:"session"`
	Snapshot struct {
		State struct {
			Phase  string `json:"phase"`
			Reason string `json:"reason"`
		} `json:"state"`
		Role       string `json:"role"`
		LocalMedia struct {
			AudioEnabled  bool `json:"audio_enabled"`
			VideoEnabled  bool `json:"video_enabled"`
			ScreenSharing bool `json:"screen_sharing"`
		} `json:"local_media"`
	} `json:"snapshot"`
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type fixture struct {
	engine    *gin.Engine
	backend   *fakeBackend
	transport *coretest.Transport
	rooms     *app.RoomManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	be := &fakeBackend{details: map[string]domain.StreamDetails{
		"live": {
			SessionID:  "live",
			Status:     domain.StatusLive,
			StreamData: &domain.StreamData{AppID: "app", ChannelName: "room-1", Token: "tok"},
		},
		"later": {SessionID: "later", Status: domain.StatusScheduled},
		"broken": {
			SessionID:  "broken",
			Status:     domain.StatusLive,
			StreamData: &domain.StreamData{AppID: "app", ChannelName: "room-2"},
		},
	}}
	tr := &coretest.Transport{}
	rooms := app.NewRoomManager(room.New(tr, &coretest.Devices{}), nil)

	cfg := &config.Config{Mode: "test", Secret: "secret"}
	cfg.Chat = config.ChatConfig{Limit: 2, Interval: time.Minute, MaxLen: 20}
	cfg.Feed = config.FeedConfig{Debounce: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	t.Cleanup(func() { _ = rooms.Leave(context.Background()) })

	engine := router.SetupRouter(ctx, cfg, router.Deps{
		Rooms:    rooms,
		Backend:  be,
		Registry: app.NewRegistry(),
	})
	return &fixture{engine: engine, backend: be, transport: tr, rooms: rooms}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "ct", Value: "client-1"})
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthAndClientCookie(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Set-Cookie"), "ct=")

	w = f.do(t, http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"id":"client-1"`)
}

func TestConnectPresenterToLiveSession(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/sessions/live/connect", `{"role":"presenter"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[stateBody](t, w)
	require.Equal(t, "live", body.Session)
	require.Equal(t, "connected", body.Snapshot.State.Phase)
	require.Equal(t, "presenter", body.Snapshot.Role)
	require.True(t, body.Snapshot.LocalMedia.AudioEnabled)
	require.True(t, body.Snapshot.LocalMedia.VideoEnabled)
	require.Equal(t, 1, f.transport.Joins())

	w = f.do(t, http.MethodPost, "/api/media/audio", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, decode[stateBody](t, w).Snapshot.LocalMedia.AudioEnabled)

	w = f.do(t, http.MethodPost, "/api/media/screen", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, decode[stateBody](t, w).Snapshot.LocalMedia.ScreenSharing)

	w = f.do(t, http.MethodPost, "/api/leave", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[stateBody](t, w)
	require.Empty(t, body.Session)
	require.Equal(t, "idle", body.Snapshot.State.Phase)
}

func TestConnectWithoutBodyJoinsAsViewer(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/sessions/live/connect", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "viewer", decode[stateBody](t, w).Snapshot.Role)
}

func TestConnectRequiresLiveSession(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/sessions/later/connect", `{"role":"viewer"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "not_live", decode[errorBody](t, w).Kind)
	require.Zero(t, f.transport.Joins())
}

func TestConnectMisconfigured(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/sessions/broken/connect", `{"role":"viewer"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	require.Equal(t, "misconfigured", body.Kind)
	require.Contains(t, body.Error, "access token")
	require.Zero(t, f.transport.Joins())
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/sessions/nope/stream", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "backend", decode[errorBody](t, w).Kind)
}

func TestScreenShareRequiresConnection(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/media/screen", "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "none", decode[errorBody](t, w).Kind)
}

func TestChatIsRateLimited(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/sessions/live/chat", `{"message":"  "}`).Code)
	require.Equal(t, http.StatusBadRequest,
		f.do(t, http.MethodPost, "/api/sessions/live/chat", `{"message":"this message is far too long"}`).Code)

	require.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/sessions/live/chat", `{"message":" hi "}`).Code)
	require.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, "/api/sessions/live/reactions", `{"type":"clap"}`).Code)
	w := f.do(t, http.MethodPost, "/api/sessions/live/chat", `{"message":"again"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "rate_limited", decode[errorBody](t, w).Kind)

	f.backend.mu.Lock()
	defer f.backend.mu.Unlock()
	require.Equal(t, []string{"hi"}, f.backend.chats)
	require.Equal(t, []string{"clap"}, f.backend.reactions)
}

func TestEndStreamLeavesCurrentRoom(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/sessions/live/connect", `{}`).Code)

	require.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/api/sessions/live/end", "").Code)
	id, snap := f.rooms.Current()
	require.Empty(t, id)
	require.Equal(t, domain.PhaseIdle, snap.State.Phase)
	require.True(t, f.transport.Last().Left())
}

func TestRenameUser(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPut, "/api/me", `{"username":"coach"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"username":"coach"`)

	w = f.do(t, http.MethodPut, "/api/me", `{"username":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStateFeedStreamsSnapshots(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/state"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()

	readFrame := func() (string, string) {
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame struct {
			Type     string `json:"type"`
			Snapshot struct {
				State struct {
					Phase string `json:"phase"`
				} `json:"state"`
			} `json:"snapshot"`
		}
		require.NoError(t, ws.ReadJSON(&frame))
		return frame.Type, frame.Snapshot.State.Phase
	}

	typ, phase := readFrame()
	require.Equal(t, "state", typ)
	require.Equal(t, "idle", phase)

	resp, err := http.Post(srv.URL+"/api/sessions/live/connect", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for phase != "connected" {
		_, phase = readFrame()
	}
}

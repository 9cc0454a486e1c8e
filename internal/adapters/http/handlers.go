package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dkeye/liveroom/internal/adapters/backend"
	"github.com/dkeye/liveroom/internal/app"
	"github.com/dkeye/liveroom/internal/core"
	"github.com/dkeye/liveroom/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Backend is the part of the streaming backend the hosting view reaches through us.
type Backend interface {
	StreamDetails(ctx context.Context, sessionID string) (domain.StreamDetails, error)
	StartStream(ctx context.Context, sessionID string) error
	EndStream(ctx context.Context, sessionID string) error
	SendChat(ctx context.Context, sessionID, message string) error
	SendReaction(ctx context.Context, sessionID, kind string) error
}

// Room is the live connection the media commands and the state feed act on.
type Room interface {
	ToggleLocalAudio() error
	ToggleLocalVideo() error
	ToggleScreenShare(ctx context.Context) error
	Watch() (<-chan core.Snapshot, func())
}

type stateResponse struct {
	Session  string        `json:"session,omitempty"`
	Snapshot core.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type handlers struct {
	rooms    *app.RoomManager
	room     Room
	backend  Backend
	registry *app.Registry
	policy   app.Policy
	limiter  *RateLimiter
	maxChat  int
}

func clientID(c *gin.Context) domain.UserID {
	return domain.UserID(c.GetString("client_token"))
}

func (h *handlers) state(c *gin.Context) {
	id, snap := h.rooms.Current()
	c.JSON(http.StatusOK, stateResponse{Session: id, Snapshot: snap})
}

func (h *handlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.GetOrCreateUser(clientID(c)))
}

func (h *handlers) rename(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}
	uid := clientID(c)
	if err := h.registry.UpdateUsername(uid, strings.TrimSpace(req.Username)); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}
	c.JSON(http.StatusOK, h.registry.GetOrCreateUser(uid))
}

func (h *handlers) streamDetails(c *gin.Context) {
	details, err := h.backend.StreamDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *handlers) connect(c *gin.Context) {
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}

	sessionID := c.Param("id")
	details, err := h.backend.StreamDetails(c.Request.Context(), sessionID)
	if err != nil {
		h.backendError(c, err)
		return
	}
	if !details.IsLive() {
		c.JSON(http.StatusConflict, errorResponse{Error: "session is " + string(details.Status), Kind: "not_live"})
		return
	}
	if details.StreamData == nil {
		c.JSON(http.StatusConflict, errorResponse{Error: "session has no stream data", Kind: "not_live"})
		return
	}

	params := details.StreamData.Params()
	if params.LocalIdentity == "" {
		params.LocalIdentity = h.registry.GetOrCreateUser(clientID(c)).Identity()
	}
	role := domain.ParseRole(req.Role)
	log.Info().
		Str("module", "adapters.http").
		Str("session", sessionID).
		Str("role", role.String()).
		Msg("connect requested")

	if err := h.rooms.Switch(c.Request.Context(), sessionID, params, role); err != nil {
		h.roomError(c, err)
		return
	}
	h.state(c)
}

func (h *handlers) leave(c *gin.Context) {
	if err := h.rooms.Leave(c.Request.Context()); err != nil {
		h.roomError(c, err)
		return
	}
	h.state(c)
}

func (h *handlers) toggleAudio(c *gin.Context) {
	if err := h.room.ToggleLocalAudio(); err != nil {
		h.roomError(c, err)
		return
	}
	h.state(c)
}

func (h *handlers) toggleVideo(c *gin.Context) {
	if err := h.room.ToggleLocalVideo(); err != nil {
		h.roomError(c, err)
		return
	}
	h.state(c)
}

func (h *handlers) toggleScreen(c *gin.Context) {
	if err := h.room.ToggleScreenShare(c.Request.Context()); err != nil {
		h.roomError(c, err)
		return
	}
	h.state(c)
}

func (h *handlers) chat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" || (h.maxChat > 0 && len(msg) > h.maxChat) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "message is empty or too long", Kind: "bad_request"})
		return
	}
	if !h.limiter.Allow(clientID(c)) {
		c.JSON(http.StatusTooManyRequests, errorResponse{Error: "slow down", Kind: "rate_limited"})
		return
	}
	if err := h.backend.SendChat(c.Request.Context(), c.Param("id"), msg); err != nil {
		h.backendError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *handlers) reaction(c *gin.Context) {
	var req struct {
		Type string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Type) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "reaction type required", Kind: "bad_request"})
		return
	}
	if !h.limiter.Allow(clientID(c)) {
		c.JSON(http.StatusTooManyRequests, errorResponse{Error: "slow down", Kind: "rate_limited"})
		return
	}
	if err := h.backend.SendReaction(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Type)); err != nil {
		h.backendError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *handlers) startStream(c *gin.Context) {
	if err := h.backend.StartStream(c.Request.Context(), c.Param("id")); err != nil {
		h.backendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) endStream(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.backend.EndStream(c.Request.Context(), sessionID); err != nil {
		h.backendError(c, err)
		return
	}
	if cur, _ := h.rooms.Current(); cur == sessionID {
		if err := h.rooms.Leave(c.Request.Context()); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("session", sessionID).Msg("leave after end failed")
		}
	}
	c.Status(http.StatusNoContent)
}

// roomError renders a connection failure with its notice kind.
func (h *handlers) roomError(c *gin.Context, err error) {
	notice := h.policy.Classify(err)
	status := http.StatusInternalServerError
	switch notice {
	case app.NoticeMisconfigured:
		status = http.StatusBadRequest
	case app.NoticePermission:
		status = http.StatusForbidden
	case app.NoticeNetwork:
		status = http.StatusBadGateway
	case app.NoticeBusy:
		status = http.StatusConflict
	default:
		if errors.Is(err, domain.ErrNotConnected) || errors.Is(err, domain.ErrNotPresenter) ||
			errors.Is(err, domain.ErrCancelled) {
			status = http.StatusConflict
		}
	}
	log.Warn().Err(err).Str("module", "adapters.http").Str("notice", notice.String()).Msg("room command failed")
	c.JSON(status, errorResponse{Error: err.Error(), Kind: notice.String()})
}

func (h *handlers) backendError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	if backend.IsNotFound(err) {
		status = http.StatusNotFound
	}
	log.Warn().Err(err).Str("module", "adapters.http").Msg("backend call failed")
	c.JSON(status, errorResponse{Error: err.Error(), Kind: "backend"})
}

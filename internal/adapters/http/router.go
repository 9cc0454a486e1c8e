package http

import (
	"context"
	"time"

	"github.com/dkeye/liveroom/internal/app"
	"github.com/dkeye/liveroom/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Deps are the application services the hosting-view API is built on.
type Deps struct {
	Rooms    *app.RoomManager
	Room     Room
	Backend  Backend
	Registry *app.Registry
	Policy   app.Policy
}

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("LiveroomSessions", store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}

	room := deps.Room
	if room == nil && deps.Rooms != nil {
		room = deps.Rooms.Connection()
	}
	policy := deps.Policy
	if policy == nil {
		policy = app.SimplePolicy{}
	}
	h := &handlers{
		rooms:    deps.Rooms,
		room:     room,
		backend:  deps.Backend,
		registry: deps.Registry,
		policy:   policy,
		limiter:  NewRateLimiter(cfg.Chat.Limit, cfg.Chat.Interval),
		maxChat:  cfg.Chat.MaxLen,
	}

	go h.pruneLimiter(ctx, cfg.Chat.Interval)

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	api.GET("/me", h.me)
	api.PUT("/me", h.rename)
	api.GET("/state", h.state)
	api.POST("/leave", h.leave)

	media := api.Group("/media")
	media.POST("/audio", h.toggleAudio)
	media.POST("/video", h.toggleVideo)
	media.POST("/screen", h.toggleScreen)

	sess := api.Group("/sessions/:id")
	sess.GET("/stream", h.streamDetails)
	sess.POST("/connect", h.connect)
	sess.POST("/chat", h.chat)
	sess.POST("/reactions", h.reaction)
	sess.POST("/start", h.startStream)
	sess.POST("/end", h.endStream)

	api.GET("/ws/state", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws state endpoint hit")
		h.handleStateFeed(ctx, c, cfg.Feed.Debounce)
	})

	return r
}

func (h *handlers) pruneLimiter(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := h.limiter.Forget(); n > 0 {
				log.Debug().Str("module", "adapters.http").Int("clients", n).Msg("rate limiter pruned")
			}
		}
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/liveroom/internal/adapters/backend"
	"github.com/dkeye/liveroom/internal/adapters/devices"
	router "github.com/dkeye/liveroom/internal/adapters/http"
	"github.com/dkeye/liveroom/internal/adapters/rtc"
	"github.com/dkeye/liveroom/internal/app"
	"github.com/dkeye/liveroom/internal/app/room"
	"github.com/dkeye/liveroom/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	capture, err := devices.New(cfg.Devices)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up capture devices")
	}
	transport := rtc.NewClient(rtc.OptionsFromConfig(cfg))
	streams := backend.New(cfg.Backend)

	conn := room.New(transport, capture)
	manager := app.NewRoomManager(conn, streams)
	reg := app.NewRegistry()

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Rooms:    manager,
		Room:     conn,
		Backend:  streams,
		Registry: reg,
		Policy:   app.SimplePolicy{},
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("liveroom started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if n := reg.CancelAll(); n > 0 {
		log.Info().Int("feeds", n).Msg("state feeds closed")
	}
	if err := manager.Leave(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("leave on shutdown")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

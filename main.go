package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/game2048/internal/auth"
	"github.com/robalobadob/game2048/internal/config"
	"github.com/robalobadob/game2048/internal/httpserver"
	"github.com/robalobadob/game2048/internal/live"
	"github.com/robalobadob/game2048/internal/service"
	"github.com/robalobadob/game2048/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	setupLogging(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, db, dialect, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	if db != nil {
		defer db.Close()
	}

	if rdb := openRedis(ctx, cfg); rdb != nil {
		defer rdb.Close()
		st = store.NewRedisCache(st, rdb, cfg.CacheTTL)
	}

	hub := live.NewHub(cfg.ClientOrigin)
	go hub.Run(ctx)

	deps := httpserver.Deps{
		Games: service.New(st, service.Options{Notifier: hub, MaxBoardSize: cfg.MaxBoardSize}),
		Live:  hub,
	}
	if db != nil {
		deps.Users = auth.NewUsers(db, dialect)
		deps.Signer = auth.NewSigner(cfg.JWTSecret, time.Duration(cfg.JWTExpiresDays)*24*time.Hour)
		if cfg.Production && cfg.JWTSecret == "dev_secret_change_me" {
			log.Warn().Msg("JWT_SECRET is the development default")
		}
	}

	srv := httpserver.New(cfg, deps)
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("starting game2048 server")
		errc <- srv.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogFormat == "pretty" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ikiguide/ikiguide/internal/config"
	"github.com/ikiguide/ikiguide/internal/email"
	"github.com/ikiguide/ikiguide/internal/ikigai"
	"github.com/ikiguide/ikiguide/internal/logger"
	"github.com/ikiguide/ikiguide/internal/server"
	"github.com/ikiguide/ikiguide/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize logger")
	}

	ctx := context.Background()

	var store session.Store
	if cfg.Session.RedisURL != "" {
		store, err = session.NewRedisStore(ctx, cfg.Session.RedisURL, cfg.Session.TTL())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		logger.Info().Msg("using redis session store")
	} else {
		store = session.NewMemoryStore(cfg.Session.TTL(), cfg.Session.MaxConcurrent)
		logger.Info().Msg("using in-memory session store")
	}
	defer store.Close()

	var generator ikigai.Generator
	if cfg.Model.APIKey != "" || cfg.Model.Provider == "ollama" {
		generator, err = ikigai.NewModelGenerator(ctx, cfg.Model)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create chat model")
		}
	} else {
		logger.Warn().Msg("no model credentials configured, results generation disabled")
	}

	var sender email.Sender
	if cfg.Email.Configured() {
		sender, err = email.NewGraphSender(cfg.Email)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create email sender")
		}
	} else {
		logger.Warn().Msg("email not configured, results email disabled")
	}

	srv := server.New(cfg, store, generator, sender)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown did not complete cleanly")
		}
	}
}

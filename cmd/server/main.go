package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/polite-betrayal/adjudicator/internal/auth"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/config"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/handler"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/logger"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/repository/postgres"
	redisrepo "github.com/freeeve/polite-betrayal/adjudicator/internal/repository/redis"
	"github.com/freeeve/polite-betrayal/adjudicator/internal/service"
)

func main() {
	logger.Init()
	cfg := config.Load()
	log.Info().Str("port", cfg.Port).Int("maxYears", cfg.MaxYears).Msg("Config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	if err := redisClient.EnableExpiryEvents(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to set Redis keyspace notifications (deadlines fall back to polling)")
	}

	// Repos
	gameRepo := postgres.NewGameRepo(db)
	phaseRepo := postgres.NewPhaseRepo(db)

	seats := auth.NewSeatManager(cfg.JWTSecret, 0)
	wsHub := handler.NewHub()

	// Services
	defaults := service.GameDefaults{
		MovementDuration: cfg.MovementDuration,
		RetreatDuration:  cfg.RetreatDuration,
		BuildDuration:    cfg.BuildDuration,
		MaxYears:         cfg.MaxYears,
	}
	gameSvc := service.NewGameService(gameRepo, phaseRepo, redisClient, seats, defaults)
	phaseSvc := service.NewPhaseService(gameRepo, phaseRepo, redisClient, wsHub)
	orderSvc := service.NewOrderService(gameRepo, phaseRepo, redisClient, phaseSvc, wsHub)
	timerListener := service.NewTimerListener(redisClient.Underlying(), phaseSvc, phaseRepo)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handler.NewRouter(handler.Services{
			Games:  gameSvc,
			Orders: orderSvc,
			Phases: phaseSvc,
			Seats:  seats,
			Hub:    wsHub,
		}, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Rehydrate Redis from Postgres after a restart
	if err := phaseSvc.RecoverActiveGames(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to recover active games (non-fatal)")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		timerListener.Start(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}

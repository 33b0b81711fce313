// main.go - Entry point for the user service

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-user-service/auth"
	"go-user-service/config"
	"go-user-service/database"
	"go-user-service/handlers"
	"go-user-service/logger"
	"go-user-service/mqtt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run())
}

func run() int {
	// STEP 1: Load configuration and establish connections
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Error().Err(err).Msg("config error")
		return 1
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.DBPath)
	if err != nil {
		log.Error().Err(err).Str("db_path", cfg.DBPath).Msg("DB connection error")
		return 1
	}
	defer func() { _ = database.Close(db) }()

	if err := database.CreateDefaultAdmin(context.Background(), db, cfg, log); err != nil {
		log.Error().Err(err).Msg("default admin seed failed")
		return 1
	}

	var events handlers.EventPublisher
	if cfg.MQTTBroker != "" {
		pub, err := mqtt.Connect(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopicPrefix)
		if err != nil {
			log.Error().Err(err).Str("broker", cfg.MQTTBroker).Msg("MQTT connection error")
			return 1
		}
		defer pub.Close()
		events = pub
		log.Info().Str("broker", cfg.MQTTBroker).Msg("publishing account events")
	}

	// STEP 2: Build the router
	store := database.NewUserStore(db)
	tokens := auth.NewService(store, auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL))
	h := handlers.New(store, tokens, events, store, log)
	router := handlers.NewRouter(h)

	// STEP 3: Serve until a signal arrives, then drain
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	code := serve(srv, cfg.ShutdownTimeout, log)

	// STEP 4: Let pending account events reach the broker before it is disconnected
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := h.Drain(ctx); err != nil {
		log.Warn().Err(err).Msg("account events still pending at shutdown")
	}
	return code
}

func serve(srv *http.Server, timeout time.Duration, log zerolog.Logger) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server crashed")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}

	log.Info().Msg("shutdown complete")
	return 0
}

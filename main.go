package main

import (
	"context"
	"embed"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scubot/tidechart/pkg/config"
	"github.com/scubot/tidechart/pkg/handlers"
	"github.com/scubot/tidechart/pkg/metrics"
	"github.com/scubot/tidechart/pkg/tides"
)

//go:embed static
var content embed.FS

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatal(err.Error())
	}

	logger, err := newLogger(env.Debug)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := tides.New(env, logger)
	if err != nil {
		logger.Fatal("failed to set up", zap.Error(err))
	}
	defer app.Directory.Close()

	// The directory loads in the background; until then lookups by ID or place fail
	// with not found and /healthz reports unavailable.
	go func() {
		if err := app.Directory.Load(ctx); err != nil {
			logger.Error("failed to load stations", zap.Error(err))
		}
		app.Directory.Refresh(ctx, env.RefreshInterval)
	}()

	server, err := handlers.New(app.Service, app.Directory, content, handlers.Options{
		Prefix:        env.Prefix,
		DaysAdvance:   env.DaysAdvance,
		ViewCapacity:  env.ViewCapacity,
		ViewTTL:       env.ViewTTL,
		SessionKey:    env.SessionHashKey(),
		EncryptionKey: env.SessionBlockKey(),
		Logger:        logger.Named("http"),
	})
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	r := mux.NewRouter().StrictSlash(true)
	r.Use(metrics.LatencyHandler)
	r.Handle("/metrics", promhttp.Handler())
	s := r
	if env.Prefix != "/" {
		s = r.PathPrefix(env.Prefix).Subrouter()
	}
	server.Register(s)

	srv := &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			logger.Error("failed to shut down", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", srv.Addr), zap.String("prefix", env.Prefix))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}

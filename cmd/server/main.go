package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dineup/api/internal/config"
	"github.com/dineup/api/internal/database"
	"github.com/dineup/api/internal/router"
	"github.com/dineup/api/internal/ws"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})

	if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		logrus.WithError(err).Fatal("migrations failed")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer pool.Close()

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.New(cfg, queries, pool, hub),
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown error")
	}
}

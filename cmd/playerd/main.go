// Command playerd serves experience playback to browsers.
//
// Configuration is read from PLAYBACK_* environment variables and an
// optional .env file in the working directory; see package config.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hupe1980/playback"
	"github.com/hupe1980/playback/config"
	"github.com/hupe1980/playback/internal/server"
	"github.com/hupe1980/playback/logging"
	"github.com/hupe1980/playback/metrics"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	zl, err := logging.NewZap(logging.ZapConfig{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := logging.NewZapAdapter(zl)

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	collector := metrics.New(func(o *metrics.Options) { o.RuntimeCollectors = cfg.RuntimeMetrics })
	player, err := playback.New(func(o *playback.Options) {
		o.DataServiceURL = cfg.DataServiceURL
		o.DataServiceToken = cfg.DataServiceToken
		o.DataServiceTimeout = cfg.DataServiceTimeout
		o.Metrics = collector
		o.Logger = logger
	})
	if err != nil {
		zl.Fatal("init player", zap.Error(err))
	}

	srv := server.New(player.Engine(), func(o *server.Options) {
		o.AllowedOrigins = cfg.AllowedOrigins()
		o.RateLimit = cfg.RateLimit
		o.RatePeriod = cfg.RatePeriod
		o.MaxMessageSize = cfg.WSMaxMessageSize
		o.Metrics = collector
		o.Logger = logger
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("playerd listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zl.Error("http server shutdown", zap.Error(err))
	}
	if err := srv.Close(ctx); err != nil {
		zl.Error("session shutdown", zap.Error(err))
	}
	zl.Info("playerd stopped")
}

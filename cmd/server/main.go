package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gitea.jw6.us/james/rescal/internal/config"
	httpserver "gitea.jw6.us/james/rescal/internal/http"
	"gitea.jw6.us/james/rescal/internal/http/ratelimit"
	"gitea.jw6.us/james/rescal/internal/logging"
	"gitea.jw6.us/james/rescal/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	listen := flag.String("listen", "", "listen address, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Info("starting rescal server", zap.String("timezone", cfg.Location().String()))
	if cfg.GeneratedSecret {
		logger.Warn("no session secret configured; sessions will not survive a restart")
	}
	if len(cfg.TrustedProxies) == 0 {
		logger.Warn("no trusted proxies configured; forwarding headers from any client are believed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := session.NewManager(cfg, logger.Named("session"))
	if err := sessions.Start(ctx); err != nil {
		logger.Fatal("failed to start session sweeper", zap.Error(err))
	}

	apiLimiter := ratelimit.New(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst, 5*time.Minute, httpserver.SessionKey, cfg.TrustedProxies)
	go apiLimiter.Run(ctx)

	r := httpserver.NewRouter(cfg, sessions, apiLimiter, logger.Named("http"))

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notes-sync-server/internal/app"
	"notes-sync-server/internal/config"
	"notes-sync-server/internal/handler"
	"notes-sync-server/internal/logger"
	"notes-sync-server/internal/metrics"
	"notes-sync-server/internal/websocket"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("notes-sync-server", cfg.Logging.Level, cfg.Logging.Format)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	a, err := app.New(context.Background(), cfg, log, m)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize services")
	}
	defer a.Close()

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnections,
		cfg.WebSocket.MaxMessageSize,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
		log,
	)
	go wsManager.Run()
	a.Store.Subscribe(wsManager.BroadcastNotes)

	rateLimit := 0
	if cfg.RateLimit.Enabled {
		rateLimit = cfg.RateLimit.RequestsPerMinute
	}

	r := handler.NewRouter(handler.RouterConfig{
		Notes:              handler.NewNoteHandler(a.Store),
		Import:             handler.NewImportHandler(a.Bootstrap),
		WebSocket:          handler.NewWebSocketHandler(wsManager, a.Store, cfg.WebSocket.ReadBufferSize, cfg.WebSocket.WriteBufferSize, log),
		Health:             handler.NewHealthHandler(a.Store),
		Metrics:            promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RateLimitPerMinute: rateLimit,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		AllowedMethods:     cfg.CORS.AllowedMethods,
		AllowedHeaders:     cfg.CORS.AllowedHeaders,
		Logger:             log,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if _, err := a.Store.FetchAll(ctx); err != nil {
		log.WithError(err).Warn("initial load of notes failed")
	}
	if cfg.Bootstrap.OnStart {
		go a.Bootstrap.RunOnce(ctx)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"addr":     addr,
			"env":      cfg.Server.Env,
			"database": cfg.Database.Name,
		}).Info("starting notes sync server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return
	}

	log.Info("server stopped gracefully")
}

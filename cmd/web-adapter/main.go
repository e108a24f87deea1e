package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"blogsearch/internal/config"
	"blogsearch/internal/kakao"
	"blogsearch/internal/logger"
	"blogsearch/internal/render"
	"blogsearch/internal/router"
)

func main() {
	configPath := flag.String("config", "", "path to blogsearch.yaml (default $"+config.EnvConfigPath+" or ./blogsearch.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("[CONFIG ERROR] cannot start")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.JSON, os.Stderr)

	client, err := kakao.New(cfg.Upstream, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create search client")
	}
	rnd, err := render.New()
	if err != nil {
		log.WithError(err).Fatal("failed to load templates")
	}

	srv := &router.Server{
		Log:      log,
		Searcher: client,
		Render:   rnd,
		Timeout:  cfg.Upstream.Timeout + time.Second,
	}

	addr := cfg.WebAdapter.Address()
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.WithField("upstream", client.Endpoint()).Infof("🌐 Web Adapter started on %s", cfg.WebAdapter.FullURL())
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("failed to start web server")
	}
	log.Info("web adapter stopped")
}

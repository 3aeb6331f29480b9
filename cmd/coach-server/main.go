package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/karu-dev/pawn-tutor/internal/coachbuilder"
	appcfg "github.com/karu-dev/pawn-tutor/internal/config"
	"github.com/karu-dev/pawn-tutor/internal/httpapi"
	"github.com/karu-dev/pawn-tutor/internal/obslog"
	"go.uber.org/zap"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	deps, err := coachbuilder.New(cfg, logger)
	if err != nil {
		logger.Fatal("coach init error", zap.Error(err))
	}
	defer func() { _ = deps.Close() }()

	srv, err := httpapi.NewServer(deps.Service, deps.Renderer, logger)
	if err != nil {
		logger.Fatal("http server init error", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.HTTPAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		if err := srv.Shutdown(); err != nil {
			logger.Warn("http shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			logger.Fatal("http server error", zap.Error(err))
		}
	}
}

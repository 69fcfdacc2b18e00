package main

import (
	"context"
	"log"

	"github.com/signetlabs/chase/internal/config"
	"github.com/signetlabs/chase/pkg/lifecycle"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	if err := server.Start(); err != nil {
		log.Fatal("server start failed: ", err)
	}

	sig := lifecycle.AwaitSignal(context.Background())
	server.infra.Logger.Info("signal received", "signal", sig)

	if err := server.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		server.infra.Logger.Error("shutdown incomplete", "error", err)
	}
	server.infra.Logger.Info("chase stopped")
}

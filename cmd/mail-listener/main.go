package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"docucontrol/internal/config"
	"docucontrol/internal/listener"
	"docucontrol/internal/logger"
	"docucontrol/internal/lookup"
	"docucontrol/internal/mailer"
	"docucontrol/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logs, err := logger.Init(cfg)
	must(err)
	defer logs.Close()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	m, err := mailer.New(cfg)
	must(err)

	svc := listener.NewService(db, cfg, lookup.Default(), m)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

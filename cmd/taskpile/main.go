// Package main is the entry point for the taskpile CLI.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"taskpile/internal/backend/clickup"
	"taskpile/internal/cli"
	"taskpile/internal/commands"
	"taskpile/internal/config"
	"taskpile/internal/service"
)

func main() {
	// .env in the working directory may hold the API token; a missing
	// file is fine.
	_ = godotenv.Load()

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		log := logrus.New()
		log.SetOutput(io.Discard)
		if cfg.Debug {
			log.SetOutput(os.Stderr)
			log.SetLevel(logrus.DebugLevel)
		}
		return clickup.New(cfg, log)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

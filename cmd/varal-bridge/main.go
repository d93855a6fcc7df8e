package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/varal/internal/bridge"
	"github.com/five82/varal/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "bridge config file (optional, defaults to ./bridge.yaml or ./configs/bridge.yaml)")
	flag.Parse()

	cfg, err := bridge.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "varal-bridge: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Console: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "varal-bridge: %v\n", err)
		return 1
	}
	defer func() { _ = log.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := bridge.Run(ctx, cfg, log); err != nil {
		log.Errorw("bridge failed", "error", err)
		return 1
	}
	return 0
}

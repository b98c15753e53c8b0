package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/orbitwire-hq/orbitwire-aggregator/internal/app"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/config"
	"github.com/orbitwire-hq/orbitwire-aggregator/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "aggregator: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	once := flag.Bool("once", false, "run a single aggregation pass and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.Init(cfg.LogLevel)
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}

	if *once {
		entry, err := a.Scheduler().RunAggregation(ctx)
		if err != nil {
			return err
		}
		log.InfoObj("one-shot aggregation finished", "run_result", entry)
		return nil
	}

	return a.Run(ctx)
}

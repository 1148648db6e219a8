// Command dashboard-sim runs the dashboard loop against a desktop window
// instead of the panel hardware. The left mouse button stands in for touch.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/granholm/presto-ha-nordpool/internal/app"
	"github.com/granholm/presto-ha-nordpool/internal/clock"
	"github.com/granholm/presto-ha-nordpool/internal/config"
	"github.com/granholm/presto-ha-nordpool/internal/device/sim"
	"github.com/granholm/presto-ha-nordpool/internal/ha"
)

func main() {
	cfgPath := flag.String("config", "examples/config-sim.yaml", "Path to YAML config")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	panel := sim.New()
	client := ha.NewClient(cfg.Sensor.Host, cfg.Sensor.Token, cfg.Sensor.EntityID)
	loop := app.New(cfg, panel, clock.SystemSource{}, client)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		defer stop()
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[Main] loop failed: %v", err)
		}
	}()

	// The window must own the main goroutine.
	if err := panel.Run(ctx); err != nil {
		log.Fatalf("Window failed: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/granholm/presto-ha-nordpool/internal/app"
	"github.com/granholm/presto-ha-nordpool/internal/clock"
	"github.com/granholm/presto-ha-nordpool/internal/config"
	"github.com/granholm/presto-ha-nordpool/internal/device/pi"
	"github.com/granholm/presto-ha-nordpool/internal/ha"
	"github.com/granholm/presto-ha-nordpool/internal/timesync"
)

func main() {
	cfgPath := flag.String("config", "examples/config.yaml", "Path to YAML config")
	flag.Parse()

	// .env is optional; it typically carries HA_TOKEN so the token stays
	// out of the config file.
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	panel, err := pi.Open(cfg.Panel)
	if err != nil {
		log.Fatalf("Failed to open panel: %v", err)
	}
	defer panel.Close()

	// The panel has no RTC, so the wall clock comes from NTP. A failed sync
	// is survivable; the dashboard just shows whatever the system clock says.
	if err := app.ShowStatus(panel, "Syncing time via NTP..."); err != nil {
		log.Printf("[Main] status screen: %v", err)
	}
	src := clock.Source(clock.SystemSource{})
	if offset, err := timesync.NewSyncer(cfg.Clock.NTPServer).Sync(); err != nil {
		log.Printf("[Main] NTP sync failed: %v", err)
		if err := app.ShowStatus(panel, "NTP sync failed - time may be wrong"); err != nil {
			log.Printf("[Main] status screen: %v", err)
		}
		time.Sleep(3 * time.Second)
	} else {
		src = clock.OffsetSource{Offset: offset}
	}

	client := ha.NewClient(cfg.Sensor.Host, cfg.Sensor.Token, cfg.Sensor.EntityID)
	loop := app.New(cfg, panel, src, client)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("[Main] dashboard starting (entity=%s, refresh=%s)", cfg.Sensor.EntityID, cfg.Refresh.Interval())
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Loop failed: %v", err)
	}
	log.Printf("[Main] shutting down")
}

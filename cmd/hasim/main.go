// Command hasim serves a Home Assistant style states API with a synthetic
// Nord Pool price curve, so the dashboard can be developed without a real
// Home Assistant install.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/granholm/presto-ha-nordpool/internal/hasim"
)

func main() {
	port := flag.String("port", "8123", "Listen port")
	token := flag.String("token", "sim-token", "Bearer token required by the API")
	entity := flag.String("entity", "sensor.nordpool", "Entity id to serve")
	offset := flag.Float64("offset", 2, "UTC offset hours for generated slots")
	publish := flag.Int("publish-hour", 13, "Local hour after which tomorrow's prices appear (0 serves them from midnight)")
	replayPath := flag.String("replay", "", "Optional sensor state JSON to serve verbatim")
	flag.Parse()

	opts := hasim.Options{
		Token:       *token,
		EntityID:    *entity,
		OffsetHours: *offset,
		PublishHour: *publish,
	}
	if *replayPath != "" {
		state, err := hasim.LoadReplay(*replayPath)
		if err != nil {
			log.Fatalf("Failed to load replay: %v", err)
		}
		opts.Replay = state
		log.Printf("[Main] replaying %s (%d slots today)", *replayPath, len(state.RawToday))
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := hasim.NewServer(opts)
	addr := fmt.Sprintf(":%s", *port)
	log.Printf("Starting Home Assistant simulator on %s (entity=%s)", addr, *entity)
	if err := srv.Router().Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// Command preview renders one dashboard frame to a PNG, using the synthetic
// price curve. Useful for checking layout changes without hardware.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/granholm/presto-ha-nordpool/internal/chart"
	"github.com/granholm/presto-ha-nordpool/internal/clock"
	"github.com/granholm/presto-ha-nordpool/internal/hasim"
	"github.com/granholm/presto-ha-nordpool/internal/render"
)

func main() {
	out := flag.String("out", "results/dashboard.png", "Output PNG path")
	at := flag.String("at", "", "Local time HH:MM to render (default: now)")
	offset := flag.Float64("offset", 2, "UTC offset hours")
	lowMax := flag.Float64("low", 8, "Upper bound of the low price tier")
	midMax := flag.Float64("mid", 15, "Upper bound of the mid price tier")
	failure := flag.Bool("error", false, "Render the fetch error screen instead")
	flag.Parse()

	frame := render.NewFrame()
	if *failure {
		render.Error(frame, `Get "http://ha.local:8123/api/states/sensor.nordpool": connection refused`)
	} else {
		drawDashboard(frame, *at, *offset, *lowMax, *midMax)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer f.Close()
	if err := png.Encode(f, frame.Image()); err != nil {
		log.Fatalf("Failed to encode PNG: %v", err)
	}
	fmt.Printf("Wrote %s\n", *out)
}

func drawDashboard(frame *render.Frame, at string, offset, lowMax, midMax float64) {
	zone := time.FixedZone("local", int(offset*3600))
	now := time.Now().In(zone)
	if at != "" {
		t, err := time.Parse("15:04", at)
		if err != nil {
			log.Fatalf("Bad -at value %q: %v", at, err)
		}
		now = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, zone)
	}

	var gen hasim.Generator
	today := gen.Day(now)
	avg, min, max := hasim.Stats(today)
	window := chart.Build(today, now.Hour(), now.Minute(), 4, 20)

	current := 0.0
	if window.HasNow() {
		current = window.Slots[window.NowOffset].Value
	}

	render.Dashboard(frame, render.View{
		Clock:        clock.HHMM(now.Hour(), now.Minute()),
		CurrentPrice: current,
		Average:      avg,
		Min:          min,
		Max:          max,
		Window:       window,
		LowMax:       lowMax,
		MidMax:       midMax,
	})
}

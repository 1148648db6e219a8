// Package hasim is a small stand-in for a Home Assistant instance exposing
// a Nordpool price sensor. It serves the same /api/states/<entity_id> shape
// the real API does, from either a synthetic price curve or a replayed
// sensor snapshot, so the dashboard can run against localhost.
package hasim

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/granholm/presto-ha-nordpool/internal/model"
)

// Tomorrow's prices appear once the local clock passes this hour, matching
// the early-afternoon publication of day-ahead prices.
const defaultPublishHour = 13

// Options configures the simulator.
type Options struct {
	Token       string
	EntityID    string
	OffsetHours float64

	// PublishHour is the local hour after which tomorrow's prices are
	// served. Zero publishes them from midnight; negative selects the
	// default.
	PublishHour int

	// Replay, when set, is served verbatim instead of the synthetic curve.
	Replay *model.SensorState

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Server handles the states API for exactly one entity.
type Server struct {
	token       string
	entityID    string
	zone        *time.Location
	publishHour int
	replay      *model.SensorState
	now         func() time.Time
	gen         Generator
}

func NewServer(opts Options) *Server {
	publishHour := opts.PublishHour
	if publishHour < 0 {
		publishHour = defaultPublishHour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		token:       opts.Token,
		entityID:    opts.EntityID,
		zone:        time.FixedZone("panel", int(opts.OffsetHours*3600)),
		publishHour: publishHour,
		replay:      opts.Replay,
		now:         now,
	}
}

// Router builds the gin engine with the simulator's routes.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(CORS())
	router.Use(ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/api/states/:entity_id", s.GetState)
	return router
}

// GetState handles GET /api/states/:entity_id the way Home Assistant does:
// bearer auth first, then entity lookup, then the state body.
func (s *Server) GetState(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	if auth != "Bearer "+s.token {
		log.Printf("[HASim] 401 for %s (bad or missing bearer token)", c.Param("entity_id"))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid authentication."})
		return
	}
	entity := c.Param("entity_id")
	if entity != s.entityID {
		log.Printf("[HASim] 404 for unknown entity %s", entity)
		c.JSON(http.StatusNotFound, gin.H{"message": "Entity not found."})
		return
	}

	now := s.now().In(s.zone)
	st := s.stateFor(now)

	attrs := gin.H{
		"current_price": st.CurrentPrice,
		"average":       st.Average,
		"min":           st.Min,
		"max":           st.Max,
		"raw_today":     st.RawToday,
		"unit":          "c/kWh",
	}
	if st.RawTomorrow != nil {
		attrs["raw_tomorrow"] = st.RawTomorrow
	}

	c.JSON(http.StatusOK, gin.H{
		"entity_id":    s.entityID,
		"state":        fmt.Sprintf("%.2f", st.CurrentPrice),
		"attributes":   attrs,
		"last_updated": now.Format(time.RFC3339),
	})
}

// stateFor assembles the sensor snapshot served for the given local time.
func (s *Server) stateFor(now time.Time) *model.SensorState {
	if s.replay != nil {
		return s.replay
	}

	today := s.gen.Day(now)
	var tomorrow model.PriceSeries
	if now.Hour() >= s.publishHour {
		tomorrow = s.gen.Day(now.AddDate(0, 0, 1))
	}

	avg, min, max := Stats(today)
	return &model.SensorState{
		EntityID:     s.entityID,
		CurrentPrice: currentValue(today, now.Hour(), now.Minute()),
		Average:      avg,
		Min:          min,
		Max:          max,
		RawToday:     today,
		RawTomorrow:  tomorrow,
	}
}

// LoadReplay reads a sensor snapshot from a JSON file. The file holds the
// flattened state shape (current_price, average, min, max, raw_today,
// raw_tomorrow), handy for replaying a day captured from a real instance.
func LoadReplay(path string) (*model.SensorState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var st model.SensorState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("parse replay %s: %w", path, err)
	}
	if len(st.RawToday) == 0 {
		return nil, fmt.Errorf("replay %s has no raw_today slots", path)
	}
	for i, slot := range st.RawToday {
		if strings.TrimSpace(slot.Start) == "" {
			return nil, fmt.Errorf("replay %s: raw_today[%d] has an empty start", path, i)
		}
	}
	return &st, nil
}

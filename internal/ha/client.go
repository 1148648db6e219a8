// Package ha fetches the electricity price sensor from a Home Assistant
// instance over its REST states API.
package ha

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/granholm/presto-ha-nordpool/internal/model"
)

// Client fetches one configured sensor entity from Home Assistant.
type Client struct {
	Host     string
	Token    string
	EntityID string
	Client   *http.Client
}

// NewClient creates a Home Assistant client for the given entity. The
// request timeout bounds each fetch attempt; the refresh scheduler decides
// when to retry a failed one.
func NewClient(host, token, entityID string) *Client {
	return &Client{
		Host:     strings.TrimRight(host, "/"),
		Token:    token,
		EntityID: entityID,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Error represents a failed exchange with the Home Assistant API.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// stateResponse mirrors the /api/states/<entity_id> body. Attribute fields
// are pointers so a missing field is distinguishable from a zero value; any
// missing field fails the whole fetch.
type stateResponse struct {
	EntityID   string          `json:"entity_id"`
	State      string          `json:"state"`
	Attributes stateAttributes `json:"attributes"`
}

type stateAttributes struct {
	CurrentPrice *float64   `json:"current_price"`
	Average      *float64   `json:"average"`
	Min          *float64   `json:"min"`
	Max          *float64   `json:"max"`
	RawToday     []wireSlot `json:"raw_today"`
	RawTomorrow  []wireSlot `json:"raw_tomorrow"`
}

type wireSlot struct {
	Start *string  `json:"start"`
	Value *float64 `json:"value"`
}

// Fetch retrieves the sensor state. Every failure mode, transport error,
// non-200 status, or a payload missing required attributes, is reported as
// an error so the caller can fall back to its cached data.
func (c *Client) Fetch() (*model.SensorState, error) {
	if c.Token == "" {
		return nil, &Error{
			StatusCode: 0,
			Code:       "MISSING_TOKEN",
			Message:    "bearer token is required",
		}
	}
	if c.EntityID == "" {
		return nil, fmt.Errorf("entity id is required")
	}

	u, err := url.Parse(c.Host + "/api/states/" + c.EntityID)
	if err != nil {
		return nil, fmt.Errorf("invalid host URL: %w", err)
	}

	log.Printf("[HomeAssistant] Request: GET %s", u.Path)

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		log.Printf("[HomeAssistant] Request failed: %v (duration: %v)", err, duration)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[HomeAssistant] Response: %d %s (duration: %v, entity=%s)",
		resp.StatusCode, resp.Status, duration, c.EntityID)

	switch resp.StatusCode {
	case http.StatusOK:
		// Success, continue
	case http.StatusUnauthorized:
		log.Printf("[HomeAssistant] Error: 401 Unauthorized - invalid bearer token (entity=%s)", c.EntityID)
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "Unauthorized: invalid bearer token",
		}
	case http.StatusNotFound:
		log.Printf("[HomeAssistant] Error: 404 Not Found (entity=%s)", c.EntityID)
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Code:       "ENTITY_NOT_FOUND",
			Message:    fmt.Sprintf("entity %s not found", c.EntityID),
		}
	default:
		log.Printf("[HomeAssistant] Error: %d %s (entity=%s)", resp.StatusCode, resp.Status, c.EntityID)
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	var body stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("[HomeAssistant] Error decoding response: %v (entity=%s)", err, c.EntityID)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	state, err := body.toSensorState()
	if err != nil {
		log.Printf("[HomeAssistant] Error: malformed payload: %v (entity=%s)", err, c.EntityID)
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Code:       "MALFORMED_PAYLOAD",
			Message:    err.Error(),
		}
	}

	log.Printf("[HomeAssistant] Success: Received %d today + %d tomorrow slots (entity=%s)",
		len(state.RawToday), len(state.RawTomorrow), c.EntityID)

	return state, nil
}

func (r *stateResponse) toSensorState() (*model.SensorState, error) {
	a := r.Attributes
	if a.CurrentPrice == nil {
		return nil, fmt.Errorf("attributes.current_price is missing")
	}
	if a.Average == nil {
		return nil, fmt.Errorf("attributes.average is missing")
	}
	if a.Min == nil {
		return nil, fmt.Errorf("attributes.min is missing")
	}
	if a.Max == nil {
		return nil, fmt.Errorf("attributes.max is missing")
	}
	if a.RawToday == nil {
		return nil, fmt.Errorf("attributes.raw_today is missing")
	}

	today, err := toSeries(a.RawToday, "raw_today")
	if err != nil {
		return nil, err
	}
	tomorrow, err := toSeries(a.RawTomorrow, "raw_tomorrow")
	if err != nil {
		return nil, err
	}

	return &model.SensorState{
		EntityID:     r.EntityID,
		CurrentPrice: *a.CurrentPrice,
		Average:      *a.Average,
		Min:          *a.Min,
		Max:          *a.Max,
		RawToday:     today,
		RawTomorrow:  tomorrow,
	}, nil
}

func toSeries(slots []wireSlot, field string) (model.PriceSeries, error) {
	if slots == nil {
		return nil, nil
	}
	series := make(model.PriceSeries, 0, len(slots))
	for i, s := range slots {
		if s.Start == nil {
			return nil, fmt.Errorf("attributes.%s[%d].start is missing", field, i)
		}
		if s.Value == nil {
			return nil, fmt.Errorf("attributes.%s[%d].value is missing", field, i)
		}
		series = append(series, model.PriceSlot{Start: *s.Start, Value: *s.Value})
	}
	return series, nil
}

package hasim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granholm/presto-ha-nordpool/internal/ha"
	"github.com/granholm/presto-ha-nordpool/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newSim(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Token == "" {
		opts.Token = "sim-token"
	}
	if opts.EntityID == "" {
		opts.EntityID = "sensor.nordpool"
	}
	srv := httptest.NewServer(NewServer(opts).Router())
	t.Cleanup(srv.Close)
	return srv
}

func fixedNow(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 1, 15, hour, 7, 0, 0, time.UTC)
	}
}

func TestGetStateRoundTripsThroughClient(t *testing.T) {
	srv := newSim(t, Options{OffsetHours: 2, Now: fixedNow(8)})

	client := ha.NewClient(srv.URL, "sim-token", "sensor.nordpool")
	state, err := client.Fetch()
	require.NoError(t, err)

	assert.Equal(t, "sensor.nordpool", state.EntityID)
	require.Len(t, state.RawToday, 96)
	assert.Greater(t, state.CurrentPrice, 0.0)
	assert.LessOrEqual(t, state.Min, state.Average)
	assert.LessOrEqual(t, state.Average, state.Max)

	// Quarter-hour spacing in the configured zone.
	h, m, err := state.RawToday[1].Clock()
	require.NoError(t, err)
	assert.Equal(t, 0, h)
	assert.Equal(t, 15, m)
}

func TestGetStateRejectsBadToken(t *testing.T) {
	srv := newSim(t, Options{})

	client := ha.NewClient(srv.URL, "wrong", "sensor.nordpool")
	_, err := client.Fetch()
	require.Error(t, err)

	var haErr *ha.Error
	require.ErrorAs(t, err, &haErr)
	assert.Equal(t, "UNAUTHORIZED", haErr.Code)
}

func TestGetStateUnknownEntity(t *testing.T) {
	srv := newSim(t, Options{})

	client := ha.NewClient(srv.URL, "sim-token", "sensor.other")
	_, err := client.Fetch()

	var haErr *ha.Error
	require.ErrorAs(t, err, &haErr)
	assert.Equal(t, "ENTITY_NOT_FOUND", haErr.Code)
}

func TestTomorrowPublishesAfterHour(t *testing.T) {
	morning := newSim(t, Options{PublishHour: 13, Now: fixedNow(9)})
	client := ha.NewClient(morning.URL, "sim-token", "sensor.nordpool")
	state, err := client.Fetch()
	require.NoError(t, err)
	assert.Empty(t, state.RawTomorrow, "not published before the publish hour")

	afternoon := newSim(t, Options{PublishHour: 13, Now: fixedNow(14)})
	client = ha.NewClient(afternoon.URL, "sim-token", "sensor.nordpool")
	state, err = client.Fetch()
	require.NoError(t, err)
	assert.Len(t, state.RawTomorrow, 96)
}

func TestTomorrowPublishHourZeroAndDefault(t *testing.T) {
	// Hour zero is a real setting: tomorrow is visible from midnight on.
	midnight := newSim(t, Options{PublishHour: 0, Now: fixedNow(9)})
	client := ha.NewClient(midnight.URL, "sim-token", "sensor.nordpool")
	state, err := client.Fetch()
	require.NoError(t, err)
	assert.Len(t, state.RawTomorrow, 96)

	// Negative falls back to the default afternoon hour.
	def := newSim(t, Options{PublishHour: -1, Now: fixedNow(9)})
	client = ha.NewClient(def.URL, "sim-token", "sensor.nordpool")
	state, err = client.Fetch()
	require.NoError(t, err)
	assert.Empty(t, state.RawTomorrow)
}

func TestReplayServedVerbatim(t *testing.T) {
	replay := &model.SensorState{
		CurrentPrice: 7.5,
		Average:      6.0,
		Min:          2.0,
		Max:          19.0,
		RawToday: model.PriceSeries{
			{Start: "2025-01-15T00:00:00+01:00", Value: 2.0},
			{Start: "2025-01-15T00:15:00+01:00", Value: 19.0},
		},
	}
	srv := newSim(t, Options{Replay: replay})

	client := ha.NewClient(srv.URL, "sim-token", "sensor.nordpool")
	state, err := client.Fetch()
	require.NoError(t, err)
	assert.Equal(t, 7.5, state.CurrentPrice)
	assert.Equal(t, replay.RawToday, state.RawToday)
	assert.Empty(t, state.RawTomorrow)
}

func TestCORSPreflight(t *testing.T) {
	srv := newSim(t, Options{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/states/sensor.nordpool", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	srv := newSim(t, Options{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGeneratorDeterministicDay(t *testing.T) {
	var g Generator
	date := time.Date(2025, 1, 15, 10, 30, 0, 0, time.FixedZone("panel", 2*3600))

	a := g.Day(date)
	b := g.Day(date)
	require.Len(t, a, 96)
	assert.Equal(t, a, b, "same date yields the same series")

	// Covers midnight to 23:45 in order.
	h, m, err := a[0].Clock()
	require.NoError(t, err)
	assert.Equal(t, 0, h+m)
	h, m, err = a[95].Clock()
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 45, m)

	// The curve spans enough range to exercise all three price tiers.
	_, min, max := Stats(a)
	assert.Less(t, min, 8.0)
	assert.Greater(t, max, 8.0)
	for _, s := range a {
		assert.Greater(t, s.Value, 0.0)
	}
}

func TestStats(t *testing.T) {
	series := model.PriceSeries{
		{Start: "2025-01-15T00:00:00+01:00", Value: 4.0},
		{Start: "2025-01-15T00:15:00+01:00", Value: 10.0},
		{Start: "2025-01-15T00:30:00+01:00", Value: 1.0},
	}
	avg, min, max := Stats(series)
	assert.Equal(t, 5.0, avg)
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 10.0, max)

	avg, min, max = Stats(nil)
	assert.Zero(t, avg)
	assert.Zero(t, min)
	assert.Zero(t, max)
}

func TestCurrentValueBuckets(t *testing.T) {
	series := model.PriceSeries{
		{Start: "2025-01-15T14:00:00+01:00", Value: 11.0},
		{Start: "2025-01-15T14:15:00+01:00", Value: 12.0},
	}
	assert.Equal(t, 11.0, currentValue(series, 14, 7))
	assert.Equal(t, 12.0, currentValue(series, 14, 29))
	assert.Equal(t, 11.0, currentValue(series, 3, 0), "miss falls back to the first slot")
	assert.Zero(t, currentValue(nil, 14, 7))
}

func TestLoadReplay(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "day.json")
	body, err := json.Marshal(model.SensorState{
		CurrentPrice: 7.5,
		Average:      6.0,
		Min:          2.0,
		Max:          19.0,
		RawToday: model.PriceSeries{
			{Start: "2025-01-15T00:00:00+01:00", Value: 2.0},
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(good, body, 0o644))

	st, err := LoadReplay(good)
	require.NoError(t, err)
	assert.Equal(t, 7.5, st.CurrentPrice)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"raw_today": []}`), 0o644))
	_, err = LoadReplay(empty)
	assert.Error(t, err)

	_, err = LoadReplay(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

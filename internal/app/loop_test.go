package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granholm/presto-ha-nordpool/internal/config"
	"github.com/granholm/presto-ha-nordpool/internal/model"
	"github.com/granholm/presto-ha-nordpool/internal/render"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) NowUTC() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakePanel struct {
	pushes   int
	last     *image.RGBA
	sets     []bool
	pressed  bool
	pressErr error
	pushErr  error
}

func (p *fakePanel) Push(img *image.RGBA) error {
	p.pushes++
	cp := image.NewRGBA(img.Rect)
	copy(cp.Pix, img.Pix)
	p.last = cp
	return p.pushErr
}

func (p *fakePanel) Pressed() (bool, error) { return p.pressed, p.pressErr }

func (p *fakePanel) Set(on bool) error {
	p.sets = append(p.sets, on)
	return nil
}

type fakeFetcher struct {
	state *model.SensorState
	err   error
	calls int
}

func (f *fakeFetcher) Fetch() (*model.SensorState, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Sensor:  config.SensorConfig{Host: "http://ha.local:8123", Token: "token", EntityID: "sensor.nordpool"},
		Clock:   config.ClockConfig{UTCOffsetHours: 1, NTPServer: "pool.ntp.org"},
		Power:   config.PowerConfig{QuietStartHour: 23, QuietEndHour: 7, WakeSeconds: 300},
		Refresh: config.RefreshConfig{IntervalSeconds: 900, CooldownSeconds: 10},
		Chart:   config.ChartConfig{PastSlots: 4, FutureSlots: 20, LowMax: 8, MidMax: 15},
	}
}

// dayState is a full quarter-hour day in the +01:00 zone matching the test
// config's UTC offset.
func dayState() *model.SensorState {
	series := make(model.PriceSeries, 0, 96)
	for h := 0; h < 24; h++ {
		for q := 0; q < 4; q++ {
			series = append(series, model.PriceSlot{
				Start: fmt.Sprintf("2025-01-15T%02d:%02d:00+01:00", h, q*15),
				Value: 5.0,
			})
		}
	}
	return &model.SensorState{
		EntityID:     "sensor.nordpool",
		CurrentPrice: 6.42,
		Average:      5.0,
		Min:          2.1,
		Max:          9.9,
		RawToday:     series,
	}
}

func hasColor(img *image.RGBA, c color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				return true
			}
		}
	}
	return false
}

func TestTickRedrawsWhenLit(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 12, 7, 30, 0, time.UTC)} // 13:07 local
	panel := &fakePanel{}
	fetcher := &fakeFetcher{state: dayState()}
	l := New(testConfig(), panel, clk, fetcher)

	cooldown := l.tick()

	assert.False(t, cooldown)
	assert.Equal(t, 1, fetcher.calls)
	require.Equal(t, 1, panel.pushes)
	assert.True(t, hasColor(panel.last, render.ColorCyan), "clock text should be drawn")
	assert.True(t, hasColor(panel.last, render.ColorLow), "bars should be drawn")

	// A minute later the data is still fresh: redraw from cache, no fetch.
	clk.advance(time.Minute)
	cooldown = l.tick()

	assert.False(t, cooldown)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 2, panel.pushes)
}

func TestTickRefetchesAfterInterval(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}
	panel := &fakePanel{}
	fetcher := &fakeFetcher{state: dayState()}
	l := New(testConfig(), panel, clk, fetcher)

	l.tick()
	clk.advance(15 * time.Minute)
	l.tick()

	assert.Equal(t, 2, fetcher.calls)
}

func TestTickFetchFailureCoolsDownThenRecovers(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 12, 7, 0, 0, time.UTC)}
	panel := &fakePanel{}
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	l := New(testConfig(), panel, clk, fetcher)

	cooldown := l.tick()

	assert.True(t, cooldown)
	assert.Equal(t, 1, fetcher.calls)
	require.Equal(t, 1, panel.pushes)
	assert.True(t, hasColor(panel.last, render.ColorHigh), "error screen should be drawn")

	// The next tick retries immediately because no fetch ever succeeded.
	fetcher.err = nil
	fetcher.state = dayState()
	clk.advance(10 * time.Second)
	cooldown = l.tick()

	assert.False(t, cooldown)
	assert.Equal(t, 2, fetcher.calls)
	assert.Equal(t, 2, panel.pushes)
	assert.True(t, hasColor(panel.last, render.ColorLow), "recovery should redraw the dashboard")
}

func TestTickFetchFailureWithDarkScreenSkipsErrorScreen(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 22, 0, 0, 0, time.UTC)} // 23:00 local, quiet
	panel := &fakePanel{}
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	l := New(testConfig(), panel, clk, fetcher)

	// Past the boot wake window the screen is dark; failures stay silent.
	clk.advance(6 * time.Minute)
	cooldown := l.tick()

	assert.True(t, cooldown)
	assert.Equal(t, 1, fetcher.calls)
	assert.Zero(t, panel.pushes)
	assert.Equal(t, []bool{false}, panel.sets)
}

func TestTickQuietHoursCycle(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 22, 0, 0, 0, time.UTC)} // 23:00 local
	panel := &fakePanel{}
	fetcher := &fakeFetcher{state: dayState()}
	l := New(testConfig(), panel, clk, fetcher)

	// Boot wake window: lit, drawing.
	l.tick()
	assert.Equal(t, 1, panel.pushes)
	assert.Empty(t, panel.sets)

	// Wake window expires: dark, no redraws.
	clk.advance(6 * time.Minute)
	l.tick()
	assert.Equal(t, 1, panel.pushes)
	assert.Equal(t, []bool{false}, panel.sets)

	// Touch relights and redraws from cache.
	clk.advance(time.Minute)
	panel.pressed = true
	l.tick()
	assert.Equal(t, 2, panel.pushes)
	assert.Equal(t, []bool{false, true}, panel.sets)

	// Release; five minutes after the touch it goes dark again.
	panel.pressed = false
	clk.advance(5 * time.Minute)
	l.tick()
	assert.Equal(t, []bool{false, true, false}, panel.sets)
	assert.Equal(t, 2, panel.pushes)
}

func TestTickMorningRelight(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 2, 0, 0, 0, time.UTC)} // 03:00 local
	panel := &fakePanel{}
	fetcher := &fakeFetcher{state: dayState()}
	l := New(testConfig(), panel, clk, fetcher)

	clk.advance(6 * time.Minute) // boot window over, dark
	l.tick()
	require.Equal(t, []bool{false}, panel.sets)

	clk.advance(4 * time.Hour) // 07:06 local, quiet hours over
	l.tick()
	assert.Equal(t, []bool{false, true}, panel.sets)
	assert.NotZero(t, panel.pushes)
}

func TestTickTouchErrorIsNotFatal(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}
	panel := &fakePanel{pressErr: errors.New("i2c read failed")}
	fetcher := &fakeFetcher{state: dayState()}
	l := New(testConfig(), panel, clk, fetcher)

	cooldown := l.tick()

	assert.False(t, cooldown)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1, panel.pushes)
}

func TestRunStopsOnCancel(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 12, 7, 30, 0, time.UTC)}
	panel := &fakePanel{}
	fetcher := &fakeFetcher{state: dayState()}
	l := New(testConfig(), panel, clk, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	var slept []time.Duration
	l.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		clk.advance(d)
		if len(slept) == 3 {
			cancel()
		}
		return ctx.Err()
	}

	err := l.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, slept, 3)
	assert.Equal(t, 30*time.Second, slept[0], "should sleep to the minute boundary")
	assert.Equal(t, time.Minute, slept[1])
	require.NotEmpty(t, panel.sets)
	assert.True(t, panel.sets[0], "backlight should be forced on at start")
}

func TestRunSleepsCooldownAfterFailure(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 12, 7, 30, 0, time.UTC)}
	panel := &fakePanel{}
	fetcher := &fakeFetcher{err: errors.New("timeout")}
	l := New(testConfig(), panel, clk, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	var slept []time.Duration
	l.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		cancel()
		return ctx.Err()
	}

	err := l.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, slept, 1)
	assert.Equal(t, 10*time.Second, slept[0])
}

func TestUntilNextMinute(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 15, 12, 0, 7, 0, time.UTC)}
	l := New(testConfig(), &fakePanel{}, clk, &fakeFetcher{})

	assert.Equal(t, 53*time.Second, l.untilNextMinute())

	clk.t = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Minute, l.untilNextMinute())
}

func TestShowStatus(t *testing.T) {
	panel := &fakePanel{}

	err := ShowStatus(panel, "Syncing time via NTP...")

	require.NoError(t, err)
	require.Equal(t, 1, panel.pushes)
	assert.True(t, hasColor(panel.last, render.ColorHigh))
}

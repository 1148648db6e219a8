package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Sensor  SensorConfig  `yaml:"sensor"`
	Clock   ClockConfig   `yaml:"clock"`
	Power   PowerConfig   `yaml:"power"`
	Refresh RefreshConfig `yaml:"refresh"`
	Chart   ChartConfig   `yaml:"chart"`
	Panel   PanelConfig   `yaml:"panel"`
}

// SensorConfig points at the Home Assistant instance serving the price
// sensor. Token can also come from the HA_TOKEN environment variable, which
// takes precedence so the YAML file can stay secret-free.
type SensorConfig struct {
	Host     string `yaml:"host"`
	Token    string `yaml:"token"`
	EntityID string `yaml:"entity_id"`
}

type ClockConfig struct {
	// Fixed local offset from UTC in hours, e.g. 2 for EET or 3 for EEST.
	// DST changes require editing this value.
	UTCOffsetHours float64 `yaml:"utc_offset_hours"`
	NTPServer      string  `yaml:"ntp_server"`
}

type PowerConfig struct {
	QuietStartHour int `yaml:"quiet_start_hour"`
	QuietEndHour   int `yaml:"quiet_end_hour"`
	WakeSeconds    int `yaml:"wake_seconds"`
}

type RefreshConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	CooldownSeconds int `yaml:"cooldown_seconds"`
}

type ChartConfig struct {
	PastSlots   int     `yaml:"past_slots"`
	FutureSlots int     `yaml:"future_slots"`
	LowMax      float64 `yaml:"low_max"`
	MidMax      float64 `yaml:"mid_max"`
}

// PanelConfig names the hardware attachment points. Only the build that
// drives a real panel reads it.
type PanelConfig struct {
	SPIDev       string `yaml:"spi_dev"`
	DCPin        string `yaml:"dc_pin"`
	ResetPin     string `yaml:"reset_pin"`
	BacklightPin string `yaml:"backlight_pin"`
	I2CBus       string `yaml:"i2c_bus"`
	TouchAddr    uint16 `yaml:"touch_addr"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	// HA_TOKEN in the environment wins over the file so deployments can
	// keep the long-lived token out of version control.
	if tok := os.Getenv("HA_TOKEN"); tok != "" {
		c.Sensor.Token = tok
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads config without defaults or validation.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// applyDefaults fills unset fields so configs can stay concise. A zero
// value is treated as unset for every field below.
func (c *Config) applyDefaults() {
	if c.Sensor.EntityID == "" {
		c.Sensor.EntityID = "sensor.nordpool"
	}
	if c.Clock.NTPServer == "" {
		c.Clock.NTPServer = "pool.ntp.org"
	}
	if c.Power.WakeSeconds == 0 {
		c.Power.WakeSeconds = 300
	}
	if c.Refresh.IntervalSeconds == 0 {
		c.Refresh.IntervalSeconds = 900
	}
	if c.Refresh.CooldownSeconds == 0 {
		c.Refresh.CooldownSeconds = 10
	}
	if c.Chart.PastSlots == 0 {
		c.Chart.PastSlots = 4
	}
	if c.Chart.FutureSlots == 0 {
		c.Chart.FutureSlots = 20
	}
	if c.Chart.LowMax == 0 {
		c.Chart.LowMax = 8.0
	}
	if c.Chart.MidMax == 0 {
		c.Chart.MidMax = 15.0
	}
	if c.Panel.SPIDev == "" {
		c.Panel.SPIDev = "SPI0.0"
	}
	if c.Panel.DCPin == "" {
		c.Panel.DCPin = "GPIO25"
	}
	if c.Panel.ResetPin == "" {
		c.Panel.ResetPin = "GPIO27"
	}
	if c.Panel.BacklightPin == "" {
		c.Panel.BacklightPin = "GPIO18"
	}
	if c.Panel.I2CBus == "" {
		c.Panel.I2CBus = "1"
	}
	if c.Panel.TouchAddr == 0 {
		c.Panel.TouchAddr = 0x38
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Sensor.Host == "" {
		return errors.New("sensor.host is required")
	}
	if c.Sensor.Token == "" {
		return errors.New("sensor.token is required (or set HA_TOKEN)")
	}
	if c.Clock.UTCOffsetHours < -12 || c.Clock.UTCOffsetHours > 14 {
		return fmt.Errorf("clock.utc_offset_hours %v out of range [-12, 14]", c.Clock.UTCOffsetHours)
	}
	if err := validHour("power.quiet_start_hour", c.Power.QuietStartHour); err != nil {
		return err
	}
	if err := validHour("power.quiet_end_hour", c.Power.QuietEndHour); err != nil {
		return err
	}
	if c.Power.WakeSeconds <= 0 {
		return errors.New("power.wake_seconds must be positive")
	}
	if c.Refresh.IntervalSeconds <= 0 {
		return errors.New("refresh.interval_seconds must be positive")
	}
	if c.Refresh.CooldownSeconds <= 0 {
		return errors.New("refresh.cooldown_seconds must be positive")
	}
	if c.Chart.PastSlots < 0 || c.Chart.FutureSlots < 0 {
		return errors.New("chart slot counts must not be negative")
	}
	if c.Chart.LowMax > c.Chart.MidMax {
		return fmt.Errorf("chart.low_max %v exceeds chart.mid_max %v", c.Chart.LowMax, c.Chart.MidMax)
	}
	return nil
}

func validHour(key string, h int) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("%s %d out of range [0, 23]", key, h)
	}
	return nil
}

func (r RefreshConfig) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

func (r RefreshConfig) Cooldown() time.Duration {
	return time.Duration(r.CooldownSeconds) * time.Second
}

func (p PowerConfig) WakeDuration() time.Duration {
	return time.Duration(p.WakeSeconds) * time.Second
}

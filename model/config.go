package model

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTickFrequency is used when the configuration does not set one.
	DefaultTickFrequency = 8000
	// MaxChannels is the number of slots in one output frame.
	MaxChannels = 64
)

// Config holds the configuration of a single dimmer worker.
type Config struct {
	// Tick frequency of the synthesis engine in Hz
	TickFrequency int `yaml:"tick-frequency,omitempty"`
	// List of dimmed output channels driven by the worker
	Channels []Channel `yaml:"channels"`
}

// TickPeriod returns the duration of a single tick.
func (c Config) TickPeriod() time.Duration {
	return time.Second / time.Duration(c.TickFrequency)
}

// ChannelByID returns the channel with given ID.
// Return false if not found.
func (c Config) ChannelByID(id string) (Channel, bool) {
	for _, ch := range c.Channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return Channel{}, false
}

// SetDefaults fills empty fields with their default value.
func (c *Config) SetDefaults() {
	if c.TickFrequency == 0 {
		c.TickFrequency = DefaultTickFrequency
	}
	for i, ch := range c.Channels {
		if ch.Waveform == "" {
			c.Channels[i].Waveform = WaveformTypeBresenham
		}
		if ch.Trigger.Mode == "" {
			c.Channels[i].Trigger.Mode = TriggerModeCycles
			if ch.Trigger.Cycles == 0 {
				c.Channels[i].Trigger.Cycles = 1
			}
		}
	}
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c Config) Validate() error {
	if c.TickFrequency <= 0 {
		return errors.Wrapf(ValidationError, "tick-frequency must be > 0, got %d", c.TickFrequency)
	}
	if len(c.Channels) == 0 {
		return errors.Wrap(ValidationError, "at least one channel is required")
	}
	if len(c.Channels) > MaxChannels {
		return errors.Wrapf(ValidationError, "at most %d channels are supported, got %d", MaxChannels, len(c.Channels))
	}
	for i, ch := range c.Channels {
		if err := ch.Validate(); err != nil {
			return maskAny(err)
		}
		for _, other := range c.Channels[:i] {
			if other.ID == ch.ID {
				return errors.Wrapf(ValidationError, "duplicate channel ID '%s'", ch.ID)
			}
			if other.Pin == ch.Pin {
				return errors.Wrapf(ValidationError, "pin %d used by channels '%s' and '%s'", ch.Pin, other.ID, ch.ID)
			}
		}
	}
	return nil
}

// LoadConfig reads a worker configuration from the file at the given path,
// applies defaults and validates it.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config '%s'", path)
	}
	var conf Config
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config '%s'", path)
	}
	conf.SetDefaults()
	if err := conf.Validate(); err != nil {
		return Config{}, maskAny(err)
	}
	return conf, nil
}

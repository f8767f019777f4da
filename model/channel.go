package model

import (
	"time"

	"github.com/pkg/errors"
)

// WaveformType identifies the pulse distribution strategy of a channel.
type WaveformType string

const (
	// WaveformTypeBresenham spreads the ON ticks of a duty value evenly
	// across the refresh cycle.
	WaveformTypeBresenham WaveformType = "bresenham"
	// WaveformTypeSinglePulse emits one contiguous ON pulse per refresh
	// cycle, like a classic software PWM.
	WaveformTypeSinglePulse WaveformType = "singlepulse"
)

// Validate the given type, returning nil on ok,
// or an error upon validation issues.
func (t WaveformType) Validate() error {
	switch t {
	case WaveformTypeBresenham, WaveformTypeSinglePulse:
		return nil
	default:
		return errors.Wrapf(ValidationError, "invalid waveform type '%s'", string(t))
	}
}

// TriggerMode identifies how a channel decides when to advance its
// brightness ramp.
type TriggerMode string

const (
	// TriggerModeCycles advances the ramp after a number of completed
	// refresh cycles.
	TriggerModeCycles TriggerMode = "cycles"
	// TriggerModeTime advances the ramp after a wall clock interval.
	TriggerModeTime TriggerMode = "time"
)

// Validate the given mode, returning nil on ok,
// or an error upon validation issues.
func (m TriggerMode) Validate() error {
	switch m {
	case TriggerModeCycles, TriggerModeTime:
		return nil
	default:
		return errors.Wrapf(ValidationError, "invalid trigger mode '%s'", string(m))
	}
}

// Trigger holds the ramp advance policy of a single channel.
type Trigger struct {
	// Mode of the trigger
	Mode TriggerMode `yaml:"mode"`
	// Number of completed refresh cycles between ramp steps (cycles mode)
	Cycles uint32 `yaml:"cycles,omitempty"`
	// Wall clock interval between ramp steps (time mode)
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Validate the given trigger, returning nil on ok,
// or an error upon validation issues.
func (t Trigger) Validate() error {
	if err := t.Mode.Validate(); err != nil {
		return maskAny(err)
	}
	switch t.Mode {
	case TriggerModeCycles:
		if t.Cycles == 0 {
			return errors.Wrap(ValidationError, "cycles must be > 0 in cycles mode")
		}
	case TriggerModeTime:
		if t.Interval <= 0 {
			return errors.Wrap(ValidationError, "interval must be > 0 in time mode")
		}
	}
	return nil
}

// Channel holds the configuration of a single dimmed output.
type Channel struct {
	// Unique identifier of the channel
	ID string `yaml:"id"`
	// Brightness resolution in bits. The fully-ON duty value is 2^bits - 1.
	Bits uint8 `yaml:"bits"`
	// Lowest duty value at which the pulse distribution is dense enough
	// to avoid visible flicker.
	MinFlickerFree uint16 `yaml:"min-flicker-free"`
	// Hardware pin (BCM number or gpiochip line offset) driven by this channel
	Pin int `yaml:"pin"`
	// Waveform strategy of the channel
	Waveform WaveformType `yaml:"waveform,omitempty"`
	// Ramp advance policy of the channel
	Trigger Trigger `yaml:"trigger"`
}

const (
	// MinBits is the lowest supported brightness resolution.
	MinBits = 1
	// MaxBits is the highest supported brightness resolution.
	// Duty values must fit in 16 bits.
	MaxBits = 15
)

// Period returns the fully-ON duty value of the channel (2^bits - 1).
// All duty values of the channel are bounded to [0, Period].
func (c Channel) Period() uint16 {
	return (uint16(1) << c.Bits) - 1
}

// Validate the given channel, returning nil on ok,
// or an error upon validation issues.
func (c Channel) Validate() error {
	if c.ID == "" {
		return errors.Wrap(ValidationError, "ID is empty")
	}
	if c.Bits < MinBits || c.Bits > MaxBits {
		return errors.Wrapf(ValidationError, "bits must be in [%d..%d] in channel '%s', got %d", MinBits, MaxBits, c.ID, c.Bits)
	}
	if c.Period() == 0 {
		return errors.Wrapf(ValidationError, "period is zero in channel '%s'", c.ID)
	}
	if c.MinFlickerFree > c.Period() {
		return errors.Wrapf(ValidationError, "min-flicker-free must be in [0..%d] in channel '%s', got %d", c.Period(), c.ID, c.MinFlickerFree)
	}
	if c.Pin < 0 {
		return errors.Wrapf(ValidationError, "pin must be >= 0 in channel '%s', got %d", c.ID, c.Pin)
	}
	if err := c.Waveform.Validate(); err != nil {
		return maskAny(err)
	}
	if err := c.Trigger.Validate(); err != nil {
		return maskAny(err)
	}
	return nil
}

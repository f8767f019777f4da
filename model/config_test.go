package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChannel(id string, pin int) Channel {
	return Channel{
		ID:             id,
		Bits:           8,
		MinFlickerFree: 4,
		Pin:            pin,
		Waveform:       WaveformTypeBresenham,
		Trigger:        Trigger{Mode: TriggerModeCycles, Cycles: 1},
	}
}

func TestChannelPeriod(t *testing.T) {
	a := assert.New(t)

	a.Equal(uint16(1), Channel{Bits: 1}.Period())
	a.Equal(uint16(255), Channel{Bits: 8}.Period())
	a.Equal(uint16(4095), Channel{Bits: 12}.Period())
	a.Equal(uint16(32767), Channel{Bits: 15}.Period())
}

func TestChannelValidate(t *testing.T) {
	a := assert.New(t)

	a.NoError(validChannel("led1", 17).Validate())

	ch := validChannel("", 17)
	a.True(errors.Is(ch.Validate(), ValidationError))

	ch = validChannel("led1", 17)
	ch.Bits = 0
	a.True(errors.Is(ch.Validate(), ValidationError))

	ch = validChannel("led1", 17)
	ch.Bits = 16
	a.True(errors.Is(ch.Validate(), ValidationError))

	ch = validChannel("led1", 17)
	ch.MinFlickerFree = 300
	a.True(errors.Is(ch.Validate(), ValidationError))

	ch = validChannel("led1", 17)
	ch.Pin = -1
	a.True(errors.Is(ch.Validate(), ValidationError))

	ch = validChannel("led1", 17)
	ch.Waveform = "sawtooth"
	a.True(errors.Is(ch.Validate(), ValidationError))

	ch = validChannel("led1", 17)
	ch.Trigger = Trigger{Mode: TriggerModeCycles}
	a.True(errors.Is(ch.Validate(), ValidationError))

	ch = validChannel("led1", 17)
	ch.Trigger = Trigger{Mode: TriggerModeTime}
	a.True(errors.Is(ch.Validate(), ValidationError))
}

func TestConfigValidate(t *testing.T) {
	a := assert.New(t)

	conf := Config{
		TickFrequency: 8000,
		Channels:      []Channel{validChannel("led1", 17), validChannel("led2", 18)},
	}
	a.NoError(conf.Validate())

	conf.Channels = nil
	a.True(errors.Is(conf.Validate(), ValidationError))

	conf.Channels = []Channel{validChannel("led1", 17), validChannel("led1", 18)}
	a.True(errors.Is(conf.Validate(), ValidationError), "duplicate IDs must be rejected")

	conf.Channels = []Channel{validChannel("led1", 17), validChannel("led2", 17)}
	a.True(errors.Is(conf.Validate(), ValidationError), "duplicate pins must be rejected")

	conf = Config{Channels: []Channel{validChannel("led1", 17)}}
	a.True(errors.Is(conf.Validate(), ValidationError), "zero tick frequency must be rejected")
}

func TestSetDefaults(t *testing.T) {
	a := assert.New(t)

	conf := Config{
		Channels: []Channel{{ID: "led1", Bits: 8, Pin: 17}},
	}
	conf.SetDefaults()
	a.Equal(DefaultTickFrequency, conf.TickFrequency)
	a.Equal(WaveformTypeBresenham, conf.Channels[0].Waveform)
	a.Equal(TriggerModeCycles, conf.Channels[0].Trigger.Mode)
	a.Equal(uint32(1), conf.Channels[0].Trigger.Cycles)
	a.NoError(conf.Validate())
}

func TestTickPeriod(t *testing.T) {
	a := assert.New(t)

	a.Equal(time.Millisecond, Config{TickFrequency: 1000}.TickPeriod())
	a.Equal(time.Microsecond*125, Config{TickFrequency: 8000}.TickPeriod())
}

func TestLoadConfig(t *testing.T) {
	a := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "channels.yaml")
	content := `
tick-frequency: 4000
channels:
  - id: porch
    bits: 10
    min-flicker-free: 8
    pin: 17
  - id: hallway
    bits: 8
    pin: 18
    waveform: singlepulse
    trigger:
      mode: time
      interval: 25ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	conf, err := LoadConfig(path)
	require.NoError(t, err)
	a.Equal(4000, conf.TickFrequency)
	require.Len(t, conf.Channels, 2)

	porch, found := conf.ChannelByID("porch")
	a.True(found)
	a.Equal(uint16(1023), porch.Period())
	a.Equal(WaveformTypeBresenham, porch.Waveform)
	a.Equal(TriggerModeCycles, porch.Trigger.Mode)

	hallway, found := conf.ChannelByID("hallway")
	a.True(found)
	a.Equal(WaveformTypeSinglePulse, hallway.Waveform)
	a.Equal(TriggerModeTime, hallway.Trigger.Mode)
	a.Equal(time.Millisecond*25, hallway.Trigger.Interval)

	_, found = conf.ChannelByID("missing")
	a.False(found)
}

func TestLoadConfigErrors(t *testing.T) {
	a := assert.New(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	a.Error(err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channels: {not a list}"), 0644))
	_, err = LoadConfig(path)
	a.Error(err)

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channels:\n  - id: x\n    bits: 42\n    pin: 1\n"), 0644))
	_, err = LoadConfig(path)
	a.True(errors.Is(err, ValidationError))
}

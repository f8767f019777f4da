// Copyright 2025 The GlowGrid Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/glowgrid/DimmerWorker/model"
)

// Output applies one combined ON/OFF frame to the physical outputs in a
// single bulk operation. Bit i of the frame drives channel i.
type Output interface {
	WriteFrame(frame uint64) error
}

// ChannelConfig holds the immutable synthesis parameters of one channel.
type ChannelConfig struct {
	// Unique identifier of the channel
	ID string
	// Fully-ON duty value; all duty values are bounded to [0, Period]
	Period uint16
	// Pulse distribution strategy of the channel
	Strategy WaveformStrategy
}

// NewChannelConfig builds the synthesis parameters for the given channel.
func NewChannelConfig(ch model.Channel) (ChannelConfig, error) {
	if err := ch.Validate(); err != nil {
		return ChannelConfig{}, maskAny(err)
	}
	strategy, err := StrategyFor(ch.Waveform)
	if err != nil {
		return ChannelConfig{}, maskAny(err)
	}
	return ChannelConfig{
		ID:       ch.ID,
		Period:   ch.Period(),
		Strategy: strategy,
	}, nil
}

// channel is the runtime synthesis state of one output. It is owned
// exclusively by the engine; the control loop never touches it.
type channel struct {
	config ChannelConfig

	// Duty value currently being rendered; captured from the register
	// only at refresh cycle boundaries.
	loadedDuty uint16
	// Running remainder of the pulse distribution, in [0, period)
	accumulator uint16
	// Position within the current refresh cycle, in [0, period)
	progress uint16

	cyclesMetric prometheus.Counter
}

// Engine is the pulse-train synthesis engine. Tick is invoked once per
// tick by the tick source and must complete before the next tick fires;
// it performs a bounded amount of integer work per channel and exactly
// one bulk output write.
type Engine struct {
	log      zerolog.Logger
	register *Register
	output   Output
	channels []channel
}

// New creates a synthesis engine for the given channels.
// The register must have one slot per channel.
func New(configs []ChannelConfig, register *Register, output Output, log zerolog.Logger) (*Engine, error) {
	if len(configs) == 0 {
		return nil, errors.Wrap(model.ValidationError, "at least one channel is required")
	}
	if len(configs) > model.MaxChannels {
		return nil, errors.Wrapf(model.ValidationError, "at most %d channels fit in one output frame, got %d", model.MaxChannels, len(configs))
	}
	if register.ChannelCount() != len(configs) {
		return nil, errors.Wrapf(model.ValidationError, "register has %d slots for %d channels", register.ChannelCount(), len(configs))
	}
	channels := make([]channel, len(configs))
	for i, c := range configs {
		if c.Period == 0 {
			return nil, errors.Wrapf(model.ValidationError, "period is zero in channel '%s'", c.ID)
		}
		if c.Strategy == nil {
			return nil, errors.Wrapf(model.ValidationError, "no strategy in channel '%s'", c.ID)
		}
		channels[i] = channel{
			config:       c,
			cyclesMetric: refreshCyclesTotal.WithLabelValues(c.ID),
		}
	}
	return &Engine{
		log:      log.With().Str("component", "engine").Logger(),
		register: register,
		output:   output,
		channels: channels,
	}, nil
}

// ChannelCount returns the number of channels driven by the engine.
func (e *Engine) ChannelCount() int {
	return len(e.channels)
}

// Tick runs one synthesis step for every channel and applies the
// combined result to the output in a single bulk write.
func (e *Engine) Tick() {
	var frame uint64
	for i := range e.channels {
		c := &e.channels[i]
		if c.progress == 0 {
			// Refresh cycle boundary: the only point at which a new
			// duty value is observed.
			duty := e.register.beginCycle(i)
			if duty > c.config.Period {
				// Upstream contract violation; clamp to keep the
				// accumulator arithmetic in range.
				duty = c.config.Period
			}
			c.loadedDuty = duty
			c.accumulator = 0
			c.cyclesMetric.Inc()
		}
		if c.loadedDuty != 0 {
			on, acc := c.config.Strategy.Pulse(c.progress, c.accumulator, c.loadedDuty, c.config.Period)
			c.accumulator = acc
			if on {
				frame |= 1 << uint(i)
			}
		}
		c.progress++
		if c.progress == c.config.Period {
			c.progress = 0
		}
	}
	ticksTotal.Inc()
	if err := e.output.WriteFrame(frame); err != nil {
		outputErrorsTotal.Inc()
		e.log.Debug().Err(err).Msg("WriteFrame failed")
	}
}

var maskAny = errors.WithStack

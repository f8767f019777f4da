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

package dimmer

import (
	"context"
	"time"

	pubsub "github.com/mattn/go-pubsub"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/glowgrid/DimmerWorker/model"
	"github.com/glowgrid/DimmerWorker/service/engine"
)

// Controller is the dimming controller: the non-real-time loop that
// ramps the requested duty level of every channel up and down and
// writes it into the shared duty register.
type Controller interface {
	// Run the controller until the given context is canceled.
	Run(ctx context.Context) error
}

// DutyChange is published on the event bus after a duty write.
type DutyChange struct {
	// Unique identifier of the channel
	ChannelID string `json:"channel"`
	// Index of the channel in the worker configuration
	Channel int `json:"index"`
	// Duty value written to the shared register
	Duty uint16 `json:"duty"`
}

type Config struct {
	// Interval at which the trigger policies are polled.
	// Coarser polling only coarsens ramp timing, never correctness.
	PollInterval time.Duration
	// Correction maps linear ramp steps to perceptual duty values.
	// Quadratic is used when nil.
	Correction CorrectionFunc
}

type Dependencies struct {
	Log      zerolog.Logger
	Register *engine.Register
	// Events receives a DutyChange after every duty write. May be nil.
	Events *pubsub.PubSub
}

// rampDirection is the state of the per-channel ramp state machine.
// There is no terminal state; the ramp runs indefinitely.
type rampDirection uint8

const (
	rampingUp rampDirection = iota
	rampingDown
)

// ramp is the controller-side state of one channel. It never touches
// the engine's synthesis state; the shared register is the only
// crossing point.
type ramp struct {
	config  model.Channel
	period  uint16
	correct CorrectionFunc

	state rampDirection
	// Linear step count, pre-correction, in [0, period]
	step uint16
	// Cycle count at the last ramp step (cycles trigger)
	lastCycles uint32
	// Wall clock time of the last ramp step (time trigger)
	lastStep time.Time
	// Last duty value written, or -1 before the first write
	lastWritten int32

	writesMetric prometheus.Counter
	flipsMetric  prometheus.Counter
}

type controller struct {
	Config
	Dependencies
	channels []ramp
}

// NewController creates a dimming controller for the given channels.
// The register must have one slot per channel.
func NewController(conf Config, channels []model.Channel, deps Dependencies) (Controller, error) {
	if conf.PollInterval <= 0 {
		return nil, errors.Errorf("poll interval must be > 0, got %s", conf.PollInterval)
	}
	if conf.Correction == nil {
		conf.Correction = Quadratic
	}
	if deps.Register.ChannelCount() != len(channels) {
		return nil, errors.Wrapf(model.ValidationError, "register has %d slots for %d channels", deps.Register.ChannelCount(), len(channels))
	}
	deps.Log = deps.Log.With().Str("component", "dimmer").Logger()
	ramps := make([]ramp, len(channels))
	for i, ch := range channels {
		if err := ch.Validate(); err != nil {
			return nil, errors.WithStack(err)
		}
		ramps[i] = ramp{
			config:       ch,
			period:       ch.Period(),
			correct:      conf.Correction,
			state:        rampingUp,
			lastWritten:  -1,
			writesMetric: dutyWritesTotal.WithLabelValues(ch.ID),
			flipsMetric:  directionFlipsTotal.WithLabelValues(ch.ID),
		}
	}
	return &controller{
		Config:       conf,
		Dependencies: deps,
		channels:     ramps,
	}, nil
}

// Run the controller until the given context is canceled.
func (c *controller) Run(ctx context.Context) error {
	c.Log.Debug().
		Int("channels", len(c.channels)).
		Str("poll-interval", c.PollInterval.String()).
		Msg("dimming controller started")
	t := time.NewTicker(c.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			// Context canceled
			return nil
		case now := <-t.C:
			for i := range c.channels {
				c.stepChannel(i, now)
			}
		}
	}
}

// stepChannel advances the ramp of one channel when its trigger policy
// fires, and writes the corrected duty value into the register when it
// changed.
func (c *controller) stepChannel(i int, now time.Time) {
	r := &c.channels[i]
	if !r.triggered(c.Register, i, now) {
		return
	}

	switch r.state {
	case rampingUp:
		if r.step < r.period {
			r.step++
		}
	case rampingDown:
		if r.step > 0 {
			r.step--
		}
	}

	corrected := r.correct(r.step, r.config)
	if corrected < r.config.MinFlickerFree {
		corrected = r.config.MinFlickerFree
	}
	if corrected > r.period {
		corrected = r.period
	}

	switch {
	case r.state == rampingUp && corrected >= r.period:
		r.state = rampingDown
		r.flipsMetric.Inc()
	case r.state == rampingDown && corrected <= r.config.MinFlickerFree:
		r.state = rampingUp
		r.flipsMetric.Inc()
	}

	if int32(corrected) == r.lastWritten {
		// Unchanged; skip the critical section entirely.
		return
	}
	written := c.Register.WriteDuty(i, corrected)
	r.lastWritten = int32(written)
	r.writesMetric.Inc()
	requestedDutyGauge.WithLabelValues(r.config.ID).Set(float64(written))
	if c.Events != nil {
		c.Events.Pub(DutyChange{
			ChannelID: r.config.ID,
			Channel:   i,
			Duty:      written,
		})
	}
}

// triggered reports whether the ramp of the given channel should
// advance now, per its trigger policy.
func (r *ramp) triggered(reg *engine.Register, i int, now time.Time) bool {
	switch r.config.Trigger.Mode {
	case model.TriggerModeCycles:
		cycles := reg.CompletedCycles(i)
		// Wrap-safe: unsigned subtraction handles counter overflow.
		if cycles-r.lastCycles >= r.config.Trigger.Cycles {
			r.lastCycles = cycles
			return true
		}
	case model.TriggerModeTime:
		if r.lastStep.IsZero() || now.Sub(r.lastStep) >= r.config.Trigger.Interval {
			r.lastStep = now
			return true
		}
	}
	return false
}

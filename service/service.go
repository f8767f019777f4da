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

package service

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	aggregateErrors "github.com/ewoutp/go-aggregate-error"
	pubsub "github.com/mattn/go-pubsub"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/glowgrid/DimmerWorker/model"
	"github.com/glowgrid/DimmerWorker/service/bridge"
	"github.com/glowgrid/DimmerWorker/service/dimmer"
	"github.com/glowgrid/DimmerWorker/service/engine"
	"github.com/glowgrid/DimmerWorker/service/mqtt"
	"github.com/glowgrid/DimmerWorker/service/reporter"
	"github.com/glowgrid/DimmerWorker/service/ticker"
)

// Service is a running dimmer worker: the synthesis engine on its tick
// source, the dimming controller and the optional MQTT reporter,
// sharing one duty register.
type Service interface {
	// Run the worker until the given context is canceled.
	Run(ctx context.Context) error
	// Status returns a read-only snapshot of the worker.
	Status() model.WorkerStatus
}

type Config struct {
	ProgramVersion string
	Worker         model.Config
	// TopicPrefix of MQTT publications; actuals reporting is disabled
	// when empty or when no MQTT service is given.
	TopicPrefix string
	// ReportInterval between full status publications
	ReportInterval time.Duration
}

type Dependencies struct {
	Log    zerolog.Logger
	Bridge bridge.API
	// Mqtt may be nil; actuals reporting is disabled without it.
	Mqtt mqtt.Service
}

type service struct {
	Config
	Dependencies

	register   *engine.Register
	engine     *engine.Engine
	source     ticker.Source
	controller dimmer.Controller
	reporter   reporter.Reporter
	events     *pubsub.PubSub
	startedAt  time.Time
}

// NewService creates a Service instance and returns it.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Log = deps.Log.With().Str("component", "service").Logger()
	worker := conf.Worker
	if err := worker.Validate(); err != nil {
		return nil, maskAny(err)
	}
	if deps.Bridge.ChannelCount() < len(worker.Channels) {
		return nil, errors.Wrapf(model.ValidationError, "bridge has %d outputs for %d channels", deps.Bridge.ChannelCount(), len(worker.Channels))
	}

	configs := make([]engine.ChannelConfig, len(worker.Channels))
	periods := make([]uint16, len(worker.Channels))
	for i, ch := range worker.Channels {
		cc, err := engine.NewChannelConfig(ch)
		if err != nil {
			return nil, maskAny(err)
		}
		configs[i] = cc
		periods[i] = cc.Period
	}

	register := engine.NewRegister(periods)
	eng, err := engine.New(configs, register, deps.Bridge, deps.Log)
	if err != nil {
		return nil, maskAny(err)
	}
	source, err := ticker.NewSource(worker.TickPeriod(), eng.Tick, deps.Log)
	if err != nil {
		return nil, maskAny(err)
	}

	events := pubsub.New()
	pollInterval := worker.TickPeriod()
	if pollInterval < time.Millisecond {
		// The control loop has no reason to poll faster than this;
		// coarser polling only coarsens ramp timing.
		pollInterval = time.Millisecond
	}
	controller, err := dimmer.NewController(dimmer.Config{
		PollInterval: pollInterval,
	}, worker.Channels, dimmer.Dependencies{
		Log:      deps.Log,
		Register: register,
		Events:   events,
	})
	if err != nil {
		return nil, maskAny(err)
	}

	s := &service{
		Config:       conf,
		Dependencies: deps,
		register:     register,
		engine:       eng,
		source:       source,
		controller:   controller,
		events:       events,
		startedAt:    time.Now(),
	}

	if deps.Mqtt != nil && conf.TopicPrefix != "" {
		interval := conf.ReportInterval
		if interval <= 0 {
			interval = time.Second * 5
		}
		rep, err := reporter.New(reporter.Config{
			TopicPrefix: conf.TopicPrefix,
			Interval:    interval,
		}, reporter.Dependencies{
			Log:    deps.Log,
			Mqtt:   deps.Mqtt,
			Status: s,
			Events: events,
		})
		if err != nil {
			return nil, maskAny(err)
		}
		s.reporter = rep
	}

	return s, nil
}

// Run the worker until the given context is canceled.
// On the way out all outputs are forced OFF.
func (s *service) Run(ctx context.Context) error {
	log := s.Log
	log.Info().
		Int("channels", len(s.Worker.Channels)).
		Int("tick-frequency", s.Worker.TickFrequency).
		Msg("dimmer worker starting")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.source.Run(ctx) })
	g.Go(func() error { return s.controller.Run(ctx) })
	if s.reporter != nil {
		g.Go(func() error { return s.reporter.Run(ctx) })
	}
	err := g.Wait()

	var ae aggregateErrors.AggregateError
	ae.Add(err)
	ae.Add(s.Bridge.Close())
	if s.Mqtt != nil {
		ae.Add(s.Mqtt.Close())
	}
	log.Info().Msg("dimmer worker stopped")
	return ae.AsError()
}

// Status returns a read-only snapshot of the worker, assembled from
// the shared duty register.
func (s *service) Status() model.WorkerStatus {
	channels := make([]model.ChannelStatus, len(s.Worker.Channels))
	for i, ch := range s.Worker.Channels {
		channels[i] = model.ChannelStatus{
			ID:              ch.ID,
			Duty:            s.register.Duty(i),
			Period:          ch.Period(),
			MinFlickerFree:  ch.MinFlickerFree,
			Waveform:        ch.Waveform,
			CompletedCycles: s.register.CompletedCycles(i),
		}
	}
	return model.WorkerStatus{
		Version:        s.ProgramVersion,
		Started:        humanize.Time(s.startedAt),
		TickFrequency:  s.Worker.TickFrequency,
		DeadlineMisses: s.source.DeadlineMisses(),
		Channels:       channels,
	}
}

var maskAny = errors.WithStack

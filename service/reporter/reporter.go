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

package reporter

import (
	"context"
	"time"

	pubsub "github.com/mattn/go-pubsub"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/glowgrid/DimmerWorker/model"
	"github.com/glowgrid/DimmerWorker/pkg/util"
	"github.com/glowgrid/DimmerWorker/service/dimmer"
	"github.com/glowgrid/DimmerWorker/service/mqtt"
)

// Reporter publishes read-only channel actuals over MQTT: the full
// worker status at a fixed interval, and individual duty changes as
// they happen. It only ever reads the shared register, through the
// status API; it never writes duty values.
type Reporter interface {
	// Run the reporter until the given context is canceled.
	Run(ctx context.Context) error
}

// StatusAPI provides the read-only worker snapshot.
type StatusAPI interface {
	Status() model.WorkerStatus
}

type Config struct {
	// TopicPrefix of all published topics
	TopicPrefix string
	// Interval between full status publications
	Interval time.Duration
}

type Dependencies struct {
	Log    zerolog.Logger
	Mqtt   mqtt.Service
	Status StatusAPI
	// Events delivers DutyChange messages from the controller. May be nil.
	Events *pubsub.PubSub
}

// New creates a reporter with the given configuration.
func New(conf Config, deps Dependencies) (Reporter, error) {
	if conf.TopicPrefix == "" {
		return nil, errors.New("topic prefix is empty")
	}
	if conf.Interval <= 0 {
		return nil, errors.Errorf("interval must be > 0, got %s", conf.Interval)
	}
	if deps.Mqtt == nil {
		return nil, errors.New("mqtt service is nil")
	}
	if deps.Status == nil {
		return nil, errors.New("status API is nil")
	}
	deps.Log = deps.Log.With().Str("component", "reporter").Logger()
	return &reporter{
		Config:       conf,
		Dependencies: deps,
	}, nil
}

type reporter struct {
	Config
	Dependencies
}

// Run the reporter until the given context is canceled.
func (r *reporter) Run(ctx context.Context) error {
	if r.Events != nil {
		onChange := func(dc dimmer.DutyChange) {
			topic := r.TopicPrefix + "/channel/" + dc.ChannelID + "/duty"
			if err := r.Mqtt.Publish(ctx, dc, topic, mqtt.QosDefault); err != nil {
				r.Log.Debug().Err(err).Str("topic", topic).Msg("duty change publish failed")
			}
		}
		r.Events.Sub(onChange)
		defer r.Events.Leave(onChange)
	}

	return util.UntilCanceled(ctx, r.Log, "status publish", r.Interval, func() error {
		status := r.Status.Status()
		topic := r.TopicPrefix + "/status"
		if err := r.Mqtt.Publish(ctx, status, topic, mqtt.QosDefault); err != nil {
			return maskAny(err)
		}
		statusPublishesTotal.Inc()
		return nil
	})
}

var maskAny = errors.WithStack

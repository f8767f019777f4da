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

package ticker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Callback is invoked once per tick.
// It must complete before the next tick fires.
type Callback func()

// Source fires a registered callback at a fixed, known period.
type Source interface {
	// Run fires the callback until the given context is canceled.
	Run(ctx context.Context) error
	// Period returns the fixed tick period.
	Period() time.Duration
	// DeadlineMisses returns the number of ticks whose callback ran
	// past the next tick boundary.
	DeadlineMisses() uint64
}

// NewSource creates a tick source with the given period.
// A callback overrunning its tick budget is counted, not treated as an
// error: the hard bound on channel count and resolution versus tick
// frequency has to hold by construction.
func NewSource(period time.Duration, cb Callback, log zerolog.Logger) (Source, error) {
	if period <= 0 {
		return nil, errors.Errorf("tick period must be > 0, got %s", period)
	}
	if cb == nil {
		return nil, errors.New("callback is nil")
	}
	return &timeSource{
		log:    log.With().Str("component", "ticker").Logger(),
		period: period,
		cb:     cb,
	}, nil
}

type timeSource struct {
	log    zerolog.Logger
	period time.Duration
	cb     Callback
	misses uint64
}

// Period returns the fixed tick period.
func (s *timeSource) Period() time.Duration {
	return s.period
}

// DeadlineMisses returns the number of over-budget ticks so far.
func (s *timeSource) DeadlineMisses() uint64 {
	return atomic.LoadUint64(&s.misses)
}

// Run fires the callback until the given context is canceled.
func (s *timeSource) Run(ctx context.Context) error {
	s.log.Debug().Str("period", s.period.String()).Msg("tick source armed")
	t := time.NewTicker(s.period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			// Context canceled
			return nil
		case <-t.C:
			start := time.Now()
			s.cb()
			elapsed := time.Since(start)
			tickDuration.Observe(elapsed.Seconds())
			if elapsed > s.period {
				missed := atomic.AddUint64(&s.misses, 1)
				deadlineMissesTotal.Inc()
				if missed == 1 {
					s.log.Warn().
						Str("elapsed", elapsed.String()).
						Str("period", s.period.String()).
						Msg("tick handler overran its budget")
				}
			}
		}
	}
}

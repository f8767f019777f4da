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
	"time"
)

// Manual is a tick source driven explicitly by the caller.
// It is used by tests and harnesses that need exact tick counts.
type Manual struct {
	period time.Duration
	cb     Callback
}

// NewManual creates a manual tick source with the given nominal period.
func NewManual(period time.Duration, cb Callback) *Manual {
	return &Manual{
		period: period,
		cb:     cb,
	}
}

// Fire invokes the callback the given number of times.
func (m *Manual) Fire(ticks int) {
	for i := 0; i < ticks; i++ {
		m.cb()
	}
}

// Period returns the nominal tick period.
func (m *Manual) Period() time.Duration {
	return m.period
}

// DeadlineMisses always returns 0; manual ticks have no deadline.
func (m *Manual) DeadlineMisses() uint64 {
	return 0
}

// Run blocks until the given context is canceled.
// Ticks are fired by the caller, not by Run.
func (m *Manual) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

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
	"github.com/glowgrid/DimmerWorker/model"
)

// bresenham spreads the duty's ON ticks evenly across the refresh cycle,
// the same distribution principle as rasterizing a line of slope
// duty/period. Even at low duty values the perceived pulse rate stays far
// above the refresh rate, unlike a single contiguous pulse per cycle.
type bresenham struct{}

func (bresenham) Name() string {
	return string(model.WaveformTypeBresenham)
}

func (bresenham) Pulse(progress, acc, duty, period uint16) (bool, uint16) {
	if duty == period {
		// Fully ON: every tick of the cycle fires.
		return true, 0
	}
	if acc == 0 {
		// A zero accumulator marks the cycle start or an exact wrap;
		// the pulse fires and the accumulator reloads. Keying this on
		// the accumulator rather than the cycle position matters when
		// duty and period share a factor: the wrap lands on zero
		// mid-cycle and the next pulse must still fire.
		return true, duty
	}
	// acc < period and duty <= period, so the sum fits in 16 bits
	// for any resolution up to 15 bits.
	newAcc := acc + duty
	if newAcc >= period {
		newAcc -= period
	}
	// A wrap of the accumulator marks the next evenly spread pulse.
	return newAcc < acc && newAcc != 0, newAcc
}

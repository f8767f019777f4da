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

	"github.com/glowgrid/DimmerWorker/model"
)

// WaveformStrategy decides, per tick, whether a channel output is ON.
// Implementations use integer arithmetic only; Pulse runs inside the
// tick handler and must stay within the tick budget.
type WaveformStrategy interface {
	// Name of the strategy.
	Name() string
	// Pulse computes the ON/OFF decision for one tick.
	// progress is the position within the current refresh cycle,
	// acc the strategy's running accumulator; the returned value
	// replaces it. The caller guarantees 0 < duty <= period.
	Pulse(progress, acc, duty, period uint16) (on bool, newAcc uint16)
}

// StrategyFor returns the strategy implementing the given waveform type.
func StrategyFor(t model.WaveformType) (WaveformStrategy, error) {
	switch t {
	case model.WaveformTypeBresenham:
		return bresenham{}, nil
	case model.WaveformTypeSinglePulse:
		return singlePulse{}, nil
	default:
		return nil, errors.Wrapf(model.ValidationError, "unknown waveform type '%s'", string(t))
	}
}

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

// singlePulse emits one contiguous ON run of duty ticks at the start of
// every refresh cycle, like a classic software PWM. Its perceived pulse
// rate equals the refresh rate, so low duty values may flicker; it is
// kept as the baseline to compare the bresenham strategy against.
type singlePulse struct{}

func (singlePulse) Name() string {
	return string(model.WaveformTypeSinglePulse)
}

func (singlePulse) Pulse(progress, acc, duty, period uint16) (bool, uint16) {
	return progress < duty, 0
}

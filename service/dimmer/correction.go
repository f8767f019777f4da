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
	"github.com/glowgrid/DimmerWorker/model"
)

// CorrectionFunc maps a linear ramp step to a perceptual duty value,
// so that a constant-rate ramp is perceived as a constant-rate
// brightness change. It is a replaceable policy of the controller,
// not a contract of the synthesis engine.
type CorrectionFunc func(step uint16, ch model.Channel) uint16

// Quadratic approximates inverse gamma with step*(step+1) >> bits.
// It maps 0 to 0 and period to period, using integer arithmetic only.
func Quadratic(step uint16, ch model.Channel) uint16 {
	return uint16((uint32(step) * (uint32(step) + 1)) >> ch.Bits)
}

// Linear applies no perceptual correction.
func Linear(step uint16, ch model.Channel) uint16 {
	return step
}

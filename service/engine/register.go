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
	"github.com/glowgrid/DimmerWorker/pkg/util"
)

// Register is the shared duty register: one slot per channel holding the
// requested duty value, written by the dimming controller and observed by
// the synthesis engine at refresh cycle boundaries only. It also carries
// the per-channel completed-cycle counters flowing the other way.
//
// Every slot access crosses the boundary between the tick handler and the
// control loop, so each slot is guarded by its own short critical section.
// Values must never tear; a partially written duty is a correctness bug.
type Register struct {
	slots []registerSlot
}

type registerSlot struct {
	lock            util.SpinLock
	period          uint16
	requestedDuty   uint16
	completedCycles uint32
}

// NewRegister creates a zero-initialized register with one slot per
// channel. The given periods bound the duty value of each slot.
func NewRegister(periods []uint16) *Register {
	slots := make([]registerSlot, len(periods))
	for i, p := range periods {
		slots[i].period = p
	}
	return &Register{slots: slots}
}

// ChannelCount returns the number of slots.
func (r *Register) ChannelCount() int {
	return len(r.slots)
}

// WriteDuty stores a new requested duty value for the given channel,
// clamped to [0, period]. Returns the value actually stored.
func (r *Register) WriteDuty(channel int, value uint16) uint16 {
	s := &r.slots[channel]
	if value > s.period {
		value = s.period
	}
	s.lock.Do(func() {
		s.requestedDuty = value
	})
	return value
}

// Duty returns the currently requested duty value of the given channel.
func (r *Register) Duty(channel int) uint16 {
	s := &r.slots[channel]
	var value uint16
	s.lock.Do(func() {
		value = s.requestedDuty
	})
	return value
}

// CompletedCycles returns the number of refresh cycles the engine has
// started for the given channel. The counter wraps on overflow.
func (r *Register) CompletedCycles(channel int) uint32 {
	s := &r.slots[channel]
	var value uint32
	s.lock.Do(func() {
		value = s.completedCycles
	})
	return value
}

// beginCycle is called by the engine on the first tick of a refresh
// cycle. It captures the requested duty value and counts the cycle,
// in a single critical section.
func (r *Register) beginCycle(channel int) uint16 {
	s := &r.slots[channel]
	var duty uint16
	s.lock.Do(func() {
		duty = s.requestedDuty
		s.completedCycles++
	})
	return duty
}

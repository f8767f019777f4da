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
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowgrid/DimmerWorker/model"
)

type captureOutput struct {
	frames []uint64
}

func (o *captureOutput) WriteFrame(frame uint64) error {
	o.frames = append(o.frames, frame)
	return nil
}

func (o *captureOutput) onTicks(channel int) int {
	count := 0
	for _, f := range o.frames {
		if f&(uint64(1)<<uint(channel)) != 0 {
			count++
		}
	}
	return count
}

func newTestEngine(t *testing.T, bits uint8, channels int) (*Engine, *Register, *captureOutput) {
	t.Helper()
	configs := make([]ChannelConfig, channels)
	periods := make([]uint16, channels)
	for i := range configs {
		cc, err := NewChannelConfig(model.Channel{
			ID:       fmt.Sprintf("test-%s-%d", t.Name(), i),
			Bits:     bits,
			Pin:      i,
			Waveform: model.WaveformTypeBresenham,
			Trigger:  model.Trigger{Mode: model.TriggerModeCycles, Cycles: 1},
		})
		require.NoError(t, err)
		configs[i] = cc
		periods[i] = cc.Period
	}
	register := NewRegister(periods)
	output := &captureOutput{}
	eng, err := New(configs, register, output, zerolog.Nop())
	require.NoError(t, err)
	return eng, register, output
}

func TestEnginePulseCount(t *testing.T) {
	// Bits 4 and 8 give composite periods (15, 255), so duty values
	// sharing a factor with the period are covered as well; bits 5
	// gives a prime period.
	for _, bits := range []uint8{4, 5, 8} {
		period := (uint16(1) << bits) - 1
		for duty := uint16(1); duty < period; duty++ {
			eng, register, output := newTestEngine(t, bits, 1)
			register.WriteDuty(0, duty)
			for i := 0; i < int(period); i++ {
				eng.Tick()
			}
			if got := output.onTicks(0); got != int(duty) {
				t.Fatalf("bits %d duty %d: got %d ON ticks over one cycle", bits, duty, got)
			}
		}
	}
}

func TestEngineFullAndEmpty(t *testing.T) {
	a := assert.New(t)

	eng, register, output := newTestEngine(t, 4, 2)
	period := int((uint16(1) << 4) - 1)
	// Channel 0 stays at duty 0, channel 1 is fully ON.
	register.WriteDuty(1, uint16(period))
	for i := 0; i < period; i++ {
		eng.Tick()
	}
	a.Equal(0, output.onTicks(0))
	a.Equal(period, output.onTicks(1))
}

func TestEngineBoundaryLoad(t *testing.T) {
	a := assert.New(t)

	eng, register, output := newTestEngine(t, 4, 1)
	period := int((uint16(1) << 4) - 1)
	register.WriteDuty(0, 5)

	// Change the requested duty mid-cycle; the running cycle must
	// still render the previously loaded value.
	for i := 0; i < period; i++ {
		if i == 3 {
			register.WriteDuty(0, 12)
		}
		eng.Tick()
	}
	a.Equal(5, output.onTicks(0))

	// The next cycle picks up the new value at its boundary.
	output.frames = nil
	for i := 0; i < period; i++ {
		eng.Tick()
	}
	a.Equal(12, output.onTicks(0))
}

func TestEngineCompletedCycles(t *testing.T) {
	a := assert.New(t)

	eng, register, _ := newTestEngine(t, 3, 1)
	period := int((uint16(1) << 3) - 1)

	a.Equal(uint32(0), register.CompletedCycles(0))
	eng.Tick()
	a.Equal(uint32(1), register.CompletedCycles(0))
	for i := 1; i < period; i++ {
		eng.Tick()
	}
	// Still within the first cycle's count until the next boundary tick.
	a.Equal(uint32(1), register.CompletedCycles(0))
	eng.Tick()
	a.Equal(uint32(2), register.CompletedCycles(0))

	for cycles := 2; cycles < 10; cycles++ {
		for i := 0; i < period; i++ {
			eng.Tick()
		}
		a.Equal(uint32(cycles+1), register.CompletedCycles(0))
	}
}

func TestEngineClampsForeignDuty(t *testing.T) {
	a := assert.New(t)

	// A register slot with a larger period than the channel simulates
	// an upstream contract violation: the engine must clamp instead of
	// overflowing its accumulator.
	cc, err := NewChannelConfig(model.Channel{
		ID:       "test-clamp",
		Bits:     4,
		Waveform: model.WaveformTypeBresenham,
		Trigger:  model.Trigger{Mode: model.TriggerModeCycles, Cycles: 1},
	})
	require.NoError(t, err)
	register := NewRegister([]uint16{1000})
	output := &captureOutput{}
	eng, err := New([]ChannelConfig{cc}, register, output, zerolog.Nop())
	require.NoError(t, err)

	register.WriteDuty(0, 500)
	period := int(cc.Period)
	for i := 0; i < period; i++ {
		eng.Tick()
	}
	// Clamped to fully ON.
	a.Equal(period, output.onTicks(0))
}

func TestEngineIndependentChannels(t *testing.T) {
	a := assert.New(t)

	eng, register, output := newTestEngine(t, 4, 3)
	period := int((uint16(1) << 4) - 1)
	register.WriteDuty(0, 3)
	register.WriteDuty(1, 9)
	register.WriteDuty(2, 14)
	for i := 0; i < period*4; i++ {
		eng.Tick()
	}
	a.Equal(3*4, output.onTicks(0))
	a.Equal(9*4, output.onTicks(1))
	a.Equal(14*4, output.onTicks(2))
}

func TestEngineValidation(t *testing.T) {
	a := assert.New(t)

	_, err := New(nil, NewRegister(nil), &captureOutput{}, zerolog.Nop())
	a.Error(err)

	cc, err := NewChannelConfig(model.Channel{
		ID:       "test-valid",
		Bits:     4,
		Waveform: model.WaveformTypeBresenham,
		Trigger:  model.Trigger{Mode: model.TriggerModeCycles, Cycles: 1},
	})
	a.NoError(err)
	_, err = New([]ChannelConfig{cc}, NewRegister([]uint16{15, 15}), &captureOutput{}, zerolog.Nop())
	a.Error(err)
}

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

package bridge

import (
	"sync"

	"github.com/ecc1/gpio"
	aggregateErrors "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
)

type piBridge struct {
	mutex sync.Mutex
	pins  []gpio.OutputPin
	last  uint64
	valid bool
}

// NewRaspberryPiBridge implements the bridge on memory mapped
// Raspberry Pi GPIO pins, one pin per channel.
func NewRaspberryPiBridge(pins []int, activeLow bool) (API, error) {
	outputs := make([]gpio.OutputPin, len(pins))
	for i, pinNumber := range pins {
		initialValue := false
		pin, err := gpio.Output(pinNumber, activeLow, initialValue)
		if err != nil {
			return nil, errors.Wrapf(err, "Output[%d] failed", pinNumber)
		}
		outputs[i] = pin
	}
	return &piBridge{
		pins: outputs,
	}, nil
}

// ChannelCount returns the number of configured output pins.
func (p *piBridge) ChannelCount() int {
	return len(p.pins)
}

// WriteFrame applies the given frame to the pins.
// The pi GPIO interface is per-pin, so only pins whose bit changed
// since the last frame are touched; that keeps the work per tick
// proportional to the number of edges, not channels.
func (p *piBridge) WriteFrame(frame uint64) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	changed := frame ^ p.last
	if p.valid && changed == 0 {
		return nil
	}
	for i, pin := range p.pins {
		bit := uint64(1) << uint(i)
		if p.valid && changed&bit == 0 {
			continue
		}
		if err := pin.Write(frame&bit != 0); err != nil {
			frameWriteErrorsTotal.Inc()
			return errors.Wrapf(err, "Write[%d] failed", i)
		}
	}
	p.last = frame
	p.valid = true
	frameWritesTotal.Inc()
	return nil
}

// Close forces all outputs OFF.
func (p *piBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var ae aggregateErrors.AggregateError
	for i, pin := range p.pins {
		if err := pin.Write(false); err != nil {
			ae.Add(errors.Wrapf(err, "Write[%d] failed", i))
		}
	}
	p.last = 0
	p.valid = true
	return ae.AsError()
}

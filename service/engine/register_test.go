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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterClampsDuty(t *testing.T) {
	a := assert.New(t)

	r := NewRegister([]uint16{15, 255})
	a.Equal(2, r.ChannelCount())

	a.Equal(uint16(15), r.WriteDuty(0, 200))
	a.Equal(uint16(15), r.Duty(0))
	a.Equal(uint16(200), r.WriteDuty(1, 200))
	a.Equal(uint16(200), r.Duty(1))
	a.Equal(uint16(0), r.WriteDuty(0, 0))
	a.Equal(uint16(0), r.Duty(0))
}

func TestRegisterCycleCapture(t *testing.T) {
	a := assert.New(t)

	r := NewRegister([]uint16{4095})
	r.WriteDuty(0, 1234)
	a.Equal(uint16(1234), r.beginCycle(0))
	a.Equal(uint32(1), r.CompletedCycles(0))
	a.Equal(uint16(1234), r.beginCycle(0))
	a.Equal(uint32(2), r.CompletedCycles(0))
}

// TestRegisterNoTornValues drives concurrent writers against a reader
// polling the same multi-byte slot. Every observed value must be one
// that some writer submitted in full; a mixed high/low byte pattern is
// a torn read.
func TestRegisterNoTornValues(t *testing.T) {
	r := NewRegister([]uint16{0x7FFF})

	// Values whose high and low bytes never coincide, so a torn
	// read/write is detectable.
	written := []uint16{0x00FF, 0x7F00, 0x0F0F, 0x70F0}
	valid := map[uint16]bool{0: true}
	for _, v := range written {
		valid[v] = true
	}

	const iterations = 20000
	var writers sync.WaitGroup
	var readers sync.WaitGroup
	stop := make(chan struct{})

	for w := 0; w < 2; w++ {
		writers.Add(1)
		go func(offset int) {
			defer writers.Done()
			for i := 0; i < iterations; i++ {
				r.WriteDuty(0, written[(i+offset)%len(written)])
			}
		}(w * 2)
	}

	read := func(f func() uint16) {
		defer readers.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if got := f(); !valid[got] {
				t.Errorf("torn value observed: %#04x", got)
				return
			}
		}
	}
	readers.Add(2)
	go read(func() uint16 { return r.beginCycle(0) })
	go read(func() uint16 { return r.Duty(0) })

	writers.Wait()
	close(stop)
	readers.Wait()
}

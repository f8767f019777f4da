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

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

type cdevBridge struct {
	mutex  sync.Mutex
	lines  *gpiocdev.Lines
	values []int
}

// NewGpiocdevBridge implements the bridge on the Linux GPIO character
// device. All lines are requested as one bundle, so a frame is applied
// with a single kernel call: a true bulk write.
func NewGpiocdevBridge(chip string, offsets []int) (API, error) {
	initial := make([]int, len(offsets))
	lines, err := gpiocdev.RequestLines(chip, offsets, gpiocdev.AsOutput(initial...))
	if err != nil {
		return nil, errors.Wrapf(err, "RequestLines on '%s' failed", chip)
	}
	return &cdevBridge{
		lines:  lines,
		values: make([]int, len(offsets)),
	}, nil
}

// ChannelCount returns the number of requested lines.
func (b *cdevBridge) ChannelCount() int {
	return len(b.values)
}

// WriteFrame applies the given frame to all lines in one call.
func (b *cdevBridge) WriteFrame(frame uint64) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for i := range b.values {
		if frame&(uint64(1)<<uint(i)) != 0 {
			b.values[i] = 1
		} else {
			b.values[i] = 0
		}
	}
	if err := b.lines.SetValues(b.values); err != nil {
		frameWriteErrorsTotal.Inc()
		return errors.Wrap(err, "SetValues failed")
	}
	frameWritesTotal.Inc()
	return nil
}

// Close forces all lines OFF and releases them.
func (b *cdevBridge) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for i := range b.values {
		b.values[i] = 0
	}
	if err := b.lines.SetValues(b.values); err != nil {
		return errors.Wrap(err, "SetValues failed")
	}
	return errors.WithStack(b.lines.Close())
}

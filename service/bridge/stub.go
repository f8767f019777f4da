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
)

// Stub implements the bridge without hardware. It records the most
// recent frames, which makes it usable both for development on a
// machine without GPIO and as a capture target in tests.
type Stub struct {
	mutex    sync.Mutex
	channels int
	frames   []uint64
	closed   bool
}

const stubFrameHistory = 4096

// NewStubBridge creates a bridge stub for the given number of channels.
func NewStubBridge(channels int) *Stub {
	return &Stub{
		channels: channels,
	}
}

// ChannelCount returns the configured number of channels.
func (s *Stub) ChannelCount() int {
	return s.channels
}

// WriteFrame records the given frame.
func (s *Stub) WriteFrame(frame uint64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.frames) == stubFrameHistory {
		s.frames = s.frames[1:]
	}
	s.frames = append(s.frames, frame)
	frameWritesTotal.Inc()
	return nil
}

// Close marks the stub closed; the last frame is forced OFF.
func (s *Stub) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.frames = append(s.frames, 0)
	s.closed = true
	return nil
}

// LastFrame returns the most recently written frame.
func (s *Stub) LastFrame() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.frames) == 0 {
		return 0
	}
	return s.frames[len(s.frames)-1]
}

// Frames returns a copy of the recorded frame history.
func (s *Stub) Frames() []uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := make([]uint64, len(s.frames))
	copy(result, s.frames)
	return result
}

// Reset discards the recorded frame history.
func (s *Stub) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.frames = nil
}

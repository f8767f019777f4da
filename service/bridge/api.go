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

// API of the bridge: the hardware layer that applies a combined ON/OFF
// frame for all channels to the physical output pins in one bulk
// operation, so that no partial state is ever visible on shared ports.
type API interface {
	// ChannelCount returns the number of configured output pins.
	ChannelCount() int
	// WriteFrame applies the combined ON/OFF decisions for all
	// channels. Bit i of the frame drives pin i.
	WriteFrame(frame uint64) error
	// Close forces all outputs OFF and releases the hardware.
	Close() error
}

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

package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowgrid/DimmerWorker/model"
	"github.com/glowgrid/DimmerWorker/service/bridge"
)

func testWorkerConfig() model.Config {
	return model.Config{
		TickFrequency: 2000,
		Channels: []model.Channel{
			{
				ID:             "ceiling",
				Bits:           8,
				MinFlickerFree: 4,
				Pin:            17,
				Waveform:       model.WaveformTypeBresenham,
				Trigger:        model.Trigger{Mode: model.TriggerModeCycles, Cycles: 1},
			},
			{
				ID:             "shelf",
				Bits:           6,
				MinFlickerFree: 2,
				Pin:            18,
				Waveform:       model.WaveformTypeSinglePulse,
				Trigger:        model.Trigger{Mode: model.TriggerModeTime, Interval: time.Millisecond * 2},
			},
		},
	}
}

func TestNewServiceValidation(t *testing.T) {
	log := zerolog.Nop()

	conf := testWorkerConfig()
	conf.Channels[0].Bits = 0
	_, err := NewService(Config{Worker: conf}, Dependencies{
		Log:    log,
		Bridge: bridge.NewStubBridge(8),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ValidationError))

	// Bridge with fewer outputs than channels.
	_, err = NewService(Config{Worker: testWorkerConfig()}, Dependencies{
		Log:    log,
		Bridge: bridge.NewStubBridge(1),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ValidationError))
}

func TestServiceRun(t *testing.T) {
	stub := bridge.NewStubBridge(8)
	svc, err := NewService(Config{
		ProgramVersion: "test",
		Worker:         testWorkerConfig(),
	}, Dependencies{
		Log:    zerolog.Nop(),
		Bridge: stub,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*100)
	defer cancel()
	require.NoError(t, svc.Run(ctx))

	frames := stub.Frames()
	require.NotEmpty(t, frames, "engine should have written frames while running")
	// Shutdown forces all outputs OFF.
	assert.Equal(t, uint64(0), stub.LastFrame())
}

func TestServiceStatus(t *testing.T) {
	worker := testWorkerConfig()
	svc, err := NewService(Config{
		ProgramVersion: "1.2.3",
		Worker:         worker,
	}, Dependencies{
		Log:    zerolog.Nop(),
		Bridge: bridge.NewStubBridge(8),
	})
	require.NoError(t, err)

	status := svc.Status()
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, worker.TickFrequency, status.TickFrequency)
	require.Len(t, status.Channels, len(worker.Channels))
	for i, ch := range worker.Channels {
		assert.Equal(t, ch.ID, status.Channels[i].ID)
		assert.Equal(t, ch.Period(), status.Channels[i].Period)
		assert.Equal(t, ch.MinFlickerFree, status.Channels[i].MinFlickerFree)
		assert.Equal(t, ch.Waveform, status.Channels[i].Waveform)
	}
}

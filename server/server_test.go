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

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowgrid/DimmerWorker/model"
)

type fixedStatusAPI struct {
	status model.WorkerStatus
}

func (a fixedStatusAPI) Status() model.WorkerStatus {
	return a.status
}

func newTestServer(api API) *server {
	s, _ := NewServer(Config{Host: "localhost", Port: 0}, api, zerolog.Nop())
	return s.(*server)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(fixedStatusAPI{})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, s.handleHealth(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleStatus(t *testing.T) {
	status := model.WorkerStatus{
		Version:       "test",
		TickFrequency: 8000,
		Channels: []model.ChannelStatus{
			{ID: "ceiling", Duty: 7, Period: 255, MinFlickerFree: 4, Waveform: model.WaveformTypeBresenham, CompletedCycles: 42},
		},
	}
	s := newTestServer(fixedStatusAPI{status: status})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, s.handleStatus(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.WorkerStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, status, got)
}

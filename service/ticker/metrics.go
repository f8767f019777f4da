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

package ticker

import (
	"github.com/glowgrid/DimmerWorker/pkg/metrics"
)

const (
	subSystem = "ticker"
)

var (
	// Duration of the per-tick callback
	tickDuration = metrics.MustRegisterHistogram(subSystem,
		"tick_duration_seconds",
		"Duration of the per-tick callback",
		[]float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005})

	// Number of ticks whose callback overran the tick period
	deadlineMissesTotal = metrics.MustRegisterCounter(subSystem,
		"deadline_misses_total",
		"Number of ticks whose callback overran the tick period")
)

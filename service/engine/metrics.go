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
	"github.com/glowgrid/DimmerWorker/pkg/metrics"
)

const (
	subSystem = "engine"
)

var (
	// Total number of ticks processed
	ticksTotal = metrics.MustRegisterCounter(subSystem,
		"ticks_total",
		"Total number of ticks processed")

	// Number of completed refresh cycles per channel
	refreshCyclesTotal = metrics.MustRegisterCounterVec(subSystem,
		"refresh_cycles_total",
		"Number of started refresh cycles per channel",
		"id")

	// Number of failed bulk output writes
	outputErrorsTotal = metrics.MustRegisterCounter(subSystem,
		"output_errors_total",
		"Number of failed bulk output writes")
)

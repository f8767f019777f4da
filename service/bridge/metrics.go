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
	"github.com/glowgrid/DimmerWorker/pkg/metrics"
)

const (
	subSystem = "bridge"
)

var (
	// Number of frames applied to the outputs
	frameWritesTotal = metrics.MustRegisterCounter(subSystem,
		"frame_writes_total",
		"Number of frames applied to the outputs")

	// Number of failed frame writes
	frameWriteErrorsTotal = metrics.MustRegisterCounter(subSystem,
		"frame_write_errors_total",
		"Number of failed frame writes")
)

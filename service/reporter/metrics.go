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

package reporter

import (
	"github.com/glowgrid/DimmerWorker/pkg/metrics"
)

const (
	subSystem = "reporter"
)

var (
	// Number of full status publications
	statusPublishesTotal = metrics.MustRegisterCounter(subSystem,
		"status_publishes_total",
		"Number of full status publications")
)

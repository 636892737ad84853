// Copyright 2022 Sogang University
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

package grid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fractalgrid",
		Name:      "records_total",
		Help:      "Units of load recorded, by operation",
	}, []string{"op"})

	invalidCoordinatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fractalgrid",
		Name:      "invalid_coordinates_total",
		Help:      "Records rejected for coordinates outside the grid",
	})

	splitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fractalgrid",
		Name:      "splits_total",
		Help:      "Leaves subdivided on the write path",
	})

	mergesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fractalgrid",
		Name:      "merges_total",
		Help:      "Quadruplets of leaves merged by rebalance sweeps",
	})

	decaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fractalgrid",
		Name:      "decays_total",
		Help:      "Decay sweeps applied",
	})

	leavesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fractalgrid",
		Name:      "leaves",
		Help:      "Current number of leaves",
	})

	depthGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fractalgrid",
		Name:      "depth",
		Help:      "Maximum level of any leaf as of the last rebalance sweep",
	})

	rebalanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fractalgrid",
		Name:      "rebalance_duration_seconds",
		Help:      "Time to execute a rebalance sweep",
		Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})
)

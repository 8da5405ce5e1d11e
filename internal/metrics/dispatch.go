// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var DispatchErrorsCounter prometheus.Counter
var DispatchHistogram *prometheus.HistogramVec

// DispatchErrorsCounterName is the prometheus metric for tracking events that failed after every retry
var DispatchErrorsCounterName = "ff_dispatch_errors_total"

// DispatchHistogramName is the prometheus metric for tracking event processing time, by event type
var DispatchHistogramName = "ff_dispatch_seconds"

func InitDispatchMetrics() {
	DispatchErrorsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: DispatchErrorsCounterName,
		Help: "Number of events that could not be processed",
	})
	DispatchHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    DispatchHistogramName,
		Help:    "Histogram of event processing time, including persistence",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})
}

func RegisterDispatchMetrics() {
	registry.MustRegister(DispatchErrorsCounter)
	registry.MustRegister(DispatchHistogram)
}

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

var ClaimSuccessCounter *prometheus.CounterVec
var ClaimFailureCounter *prometheus.CounterVec
var ClaimReleaseCounter *prometheus.CounterVec
var ClaimForceReleaseCounter *prometheus.CounterVec
var ClaimReducedCounter prometheus.Counter

// ClaimSuccessCounterName is the prometheus metric for tracking the total number of claims made, by strategy
var ClaimSuccessCounterName = "ff_claim_success_total"

// ClaimFailureCounterName is the prometheus metric for tracking the total number of refused claims, by reason code
var ClaimFailureCounterName = "ff_claim_failure_total"

// ClaimReleaseCounterName is the prometheus metric for tracking the total number of releases
var ClaimReleaseCounterName = "ff_claim_release_total"

// ClaimForceReleaseCounterName is the prometheus metric for tracking the total number of force-releases
var ClaimForceReleaseCounterName = "ff_claim_forcerelease_total"

// ClaimReducedCounterName is the prometheus metric for tracking claims that lost tokens to a ledger change
var ClaimReducedCounterName = "ff_claim_reduced_total"

func InitClaimMetrics() {
	ClaimSuccessCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ClaimSuccessCounterName,
		Help: "Number of successful claims",
	}, []string{"strategy"})
	ClaimFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ClaimFailureCounterName,
		Help: "Number of refused claims",
	}, []string{"reason"})
	ClaimReleaseCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ClaimReleaseCounterName,
		Help: "Number of claim releases",
	}, []string{"known"})
	ClaimForceReleaseCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: ClaimForceReleaseCounterName,
		Help: "Number of claim force-releases",
	}, []string{"known"})
	ClaimReducedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: ClaimReducedCounterName,
		Help: "Number of claims reduced by tokens leaving the pool",
	})
}

func RegisterClaimMetrics() {
	registry.MustRegister(ClaimSuccessCounter)
	registry.MustRegister(ClaimFailureCounter)
	registry.MustRegister(ClaimReleaseCounter)
	registry.MustRegister(ClaimForceReleaseCounter)
	registry.MustRegister(ClaimReducedCounter)
}

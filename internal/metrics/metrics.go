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
	"strconv"
	"sync"
	"time"

	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

var mutex = &sync.Mutex{}

type Manager interface {
	ClaimSucceeded(strategy string)
	ClaimFailed(reason string)
	ReleaseProcessed(known bool)
	ForceReleaseProcessed(known bool)
	ClaimsReduced(count int)
	LedgerTokens(produced, consumed int)
	DispatchFailed()
	EventProcessed(eventType fftypes.EventType, start time.Time)
	IsMetricsEnabled() bool
}

type metricsManager struct {
	metricsEnabled bool
}

// NewMetricsManager returns a manager that records to the shared registry, or does nothing
// when metrics are disabled
func NewMetricsManager() Manager {
	mm := &metricsManager{
		metricsEnabled: config.GetBool(config.MetricsEnabled),
	}
	if mm.metricsEnabled {
		Registry()
	}
	return mm
}

func (mm *metricsManager) IsMetricsEnabled() bool {
	return mm.metricsEnabled
}

func (mm *metricsManager) ClaimSucceeded(strategy string) {
	if mm.metricsEnabled {
		ClaimSuccessCounter.WithLabelValues(strategy).Inc()
	}
}

func (mm *metricsManager) ClaimFailed(reason string) {
	if mm.metricsEnabled {
		ClaimFailureCounter.WithLabelValues(reason).Inc()
	}
}

func (mm *metricsManager) ReleaseProcessed(known bool) {
	if mm.metricsEnabled {
		ClaimReleaseCounter.WithLabelValues(strconv.FormatBool(known)).Inc()
	}
}

func (mm *metricsManager) ForceReleaseProcessed(known bool) {
	if mm.metricsEnabled {
		ClaimForceReleaseCounter.WithLabelValues(strconv.FormatBool(known)).Inc()
	}
}

func (mm *metricsManager) ClaimsReduced(count int) {
	if mm.metricsEnabled && count > 0 {
		ClaimReducedCounter.Add(float64(count))
	}
}

func (mm *metricsManager) LedgerTokens(produced, consumed int) {
	if mm.metricsEnabled {
		LedgerTokensCounter.WithLabelValues(LedgerDirectionProduced).Add(float64(produced))
		LedgerTokensCounter.WithLabelValues(LedgerDirectionConsumed).Add(float64(consumed))
	}
}

func (mm *metricsManager) DispatchFailed() {
	if mm.metricsEnabled {
		DispatchErrorsCounter.Inc()
	}
}

func (mm *metricsManager) EventProcessed(eventType fftypes.EventType, start time.Time) {
	if mm.metricsEnabled {
		DispatchHistogram.WithLabelValues(string(eventType)).Observe(time.Since(start).Seconds())
	}
}

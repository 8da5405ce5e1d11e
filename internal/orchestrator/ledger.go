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

package orchestrator

import (
	"context"

	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// SubmitLedgerChanges applies one set of ledger changes, which may span pools. Each pool
// commits its part independently, so on error the caller resubmits the whole set.
func (or *orchestrator) SubmitLedgerChanges(ctx context.Context, id string, produced, consumed []*fftypes.CachedToken) error {
	for _, tokens := range [][]*fftypes.CachedToken{produced, consumed} {
		for _, t := range tokens {
			if err := t.Pool.Validate(ctx); err != nil {
				return err
			}
		}
	}
	if id == "" {
		id = fftypes.NewUUID().String()
	}
	for _, change := range fftypes.SplitLedgerChanges(id, produced, consumed) {
		if _, err := or.dispatcher.Dispatch(ctx, change); err != nil {
			return err
		}
	}
	return nil
}

// GetBalance rejects a bad tag expression up front, rather than returning a balance record carrying the reason
func (or *orchestrator) GetBalance(ctx context.Context, q *fftypes.BalanceQuery) (*fftypes.Record, error) {
	if _, err := or.strategy.NewQuery(ctx, q.OwnerHash, q.TagRegex); err != nil {
		return nil, err
	}
	return or.dispatcher.Dispatch(ctx, q)
}

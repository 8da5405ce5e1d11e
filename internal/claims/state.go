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

package claims

import (
	"context"

	"github.com/kaleido-io/firefly-tokenclaims/internal/claimledger"
	"github.com/kaleido-io/firefly-tokenclaims/internal/selection"
	"github.com/kaleido-io/firefly-tokenclaims/internal/tokencache"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/discovery"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// Deps are the collaborators the handlers read from. Neither holds any state for a pool.
type Deps struct {
	Discovery discovery.Plugin
	Strategy  selection.Strategy
}

// PoolState is everything known about one pool. It is owned exclusively by the
// processor for that pool, so nothing in here is locked.
type PoolState struct {
	Pool   fftypes.PoolKey
	Cache  *tokencache.TokenCache
	Ledger *claimledger.ClaimLedger
}

func NewPoolState(ctx context.Context, pool fftypes.PoolKey, tokens []*fftypes.CachedToken, claims []*fftypes.Claim) (*PoolState, error) {
	ledger, err := claimledger.New(ctx, pool, claims...)
	if err != nil {
		return nil, err
	}
	return &PoolState{
		Pool:   pool,
		Cache:  tokencache.New(pool, tokens...),
		Ledger: ledger,
	}, nil
}

// Effect is the complete set of changes caused by one event. It is computed without
// modifying anything, so that it can be committed to the database before it is applied.
type Effect struct {
	NewClaim      *fftypes.Claim
	RemovedClaim  string
	AddedTokens   []*fftypes.CachedToken
	RemovedTokens []fftypes.TokenRef
	// PrunedClaims are the claims that lose tokens because of RemovedTokens
	PrunedClaims []*claimledger.PrunedClaim
	Record       *fftypes.Record

	// UnknownClaim is set on a release or force release for a claim that does not exist
	UnknownClaim bool
	// FailureCode is the message code behind a claim_failure record
	FailureCode string
}

// Apply makes the in-memory changes described by the effect. It must only be called once
// the same changes have been committed.
func (e *Effect) Apply(ctx context.Context, state *PoolState) ([]*claimledger.PrunedClaim, error) {
	if e.RemovedClaim != "" {
		state.Ledger.RemoveClaim(ctx, e.RemovedClaim)
	}
	state.Cache.Add(e.AddedTokens...)
	var pruned []*claimledger.PrunedClaim
	if len(e.RemovedTokens) > 0 {
		state.Cache.RemoveAll(e.RemovedTokens...)
		pruned = state.Ledger.TokensRemovedFromCache(e.RemovedTokens)
	}
	if e.NewClaim != nil {
		if err := state.Ledger.AddNewClaim(ctx, e.NewClaim); err != nil {
			return pruned, err
		}
	}
	return pruned, nil
}

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

package claimledger

import (
	"context"
	"sort"

	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// PrunedClaim describes a claim that lost tokens, because the ledger reported
// them consumed while the claim still held them
type PrunedClaim struct {
	ClaimID   string                 `json:"claimId"`
	Removed   []fftypes.TokenRef     `json:"removed"`
	Remaining []*fftypes.CachedToken `json:"remaining"`
}

// ClaimLedger is the outstanding reservations for one pool, and the only place
// that answers whether a token is promised to an in-flight request.
// Like the token cache it relies on the dispatcher for single writer access.
type ClaimLedger struct {
	pool    fftypes.PoolKey
	claims  map[string]*fftypes.Claim
	claimed map[fftypes.TokenRef]string
}

// New builds a ledger from previously persisted claims
func New(ctx context.Context, pool fftypes.PoolKey, claims ...*fftypes.Claim) (*ClaimLedger, error) {
	cl := &ClaimLedger{
		pool:    pool,
		claims:  make(map[string]*fftypes.Claim),
		claimed: make(map[fftypes.TokenRef]string),
	}
	for _, c := range claims {
		if err := cl.AddNewClaim(ctx, c); err != nil {
			return nil, err
		}
	}
	return cl, nil
}

func (cl *ClaimLedger) Pool() fftypes.PoolKey {
	return cl.pool
}

// ClaimedTokens is the union of the tokens reserved by every active claim
func (cl *ClaimLedger) ClaimedTokens() map[fftypes.TokenRef]bool {
	refs := make(map[fftypes.TokenRef]bool, len(cl.claimed))
	for r := range cl.claimed {
		refs[r] = true
	}
	return refs
}

func (cl *ClaimLedger) IsTokenClaimed(ref fftypes.TokenRef) bool {
	_, ok := cl.claimed[ref]
	return ok
}

// ClaimantOf returns the id of the claim holding a token, or the empty string
func (cl *ClaimLedger) ClaimantOf(ref fftypes.TokenRef) string {
	return cl.claimed[ref]
}

func (cl *ClaimLedger) ClaimExists(id string) bool {
	_, ok := cl.claims[id]
	return ok
}

func (cl *ClaimLedger) GetClaim(id string) *fftypes.Claim {
	return cl.claims[id]
}

func (cl *ClaimLedger) Len() int {
	return len(cl.claims)
}

// Claims returns the active claims ordered by id
func (cl *ClaimLedger) Claims() []*fftypes.Claim {
	claims := make([]*fftypes.Claim, 0, len(cl.claims))
	for _, c := range cl.claims {
		claims = append(claims, c)
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].ID < claims[j].ID })
	return claims
}

// AddNewClaim inserts a claim. An existing id is rejected rather than overwritten,
// as is any claim that would reserve a token some other claim already holds.
func (cl *ClaimLedger) AddNewClaim(ctx context.Context, claim *fftypes.Claim) error {
	if claim.ID == "" {
		return i18n.NewError(ctx, i18n.MsgMissingClaimID)
	}
	if cl.ClaimExists(claim.ID) {
		return i18n.NewError(ctx, i18n.MsgClaimExists, claim.ID, cl.pool)
	}
	for _, t := range claim.Tokens {
		if holder, ok := cl.claimed[t.Ref]; ok {
			return i18n.NewError(ctx, i18n.MsgTokenAlreadyClaimed, t.Ref, holder)
		}
	}
	cl.claims[claim.ID] = claim
	for _, t := range claim.Tokens {
		cl.claimed[t.Ref] = claim.ID
	}
	return nil
}

// RemoveClaim drops the bookkeeping for a claim. An unknown id is not an error,
// but is logged and reported through the return value.
func (cl *ClaimLedger) RemoveClaim(ctx context.Context, id string) bool {
	claim, ok := cl.claims[id]
	if !ok {
		log.L(ctx).Warnf("Claim '%s' not found in pool %s", id, cl.pool)
		return false
	}
	for _, t := range claim.Tokens {
		delete(cl.claimed, t.Ref)
	}
	delete(cl.claims, id)
	return true
}

// ClaimsHolding previews the effect of TokensRemovedFromCache without changing anything
func (cl *ClaimLedger) ClaimsHolding(refs []fftypes.TokenRef) []*PrunedClaim {
	removedByClaim := make(map[string][]fftypes.TokenRef)
	for _, r := range refs {
		if id, ok := cl.claimed[r]; ok {
			removedByClaim[id] = append(removedByClaim[id], r)
		}
	}
	pruned := make([]*PrunedClaim, 0, len(removedByClaim))
	for id, removed := range removedByClaim {
		drop := make(map[fftypes.TokenRef]bool, len(removed))
		for _, r := range removed {
			drop[r] = true
		}
		remaining := make([]*fftypes.CachedToken, 0, len(cl.claims[id].Tokens))
		for _, t := range cl.claims[id].Tokens {
			if !drop[t.Ref] {
				remaining = append(remaining, t)
			}
		}
		pruned = append(pruned, &PrunedClaim{
			ClaimID:   id,
			Removed:   fftypes.SortTokenRefs(removed),
			Remaining: remaining,
		})
	}
	sort.Slice(pruned, func(i, j int) bool { return pruned[i].ClaimID < pruned[j].ClaimID })
	return pruned
}

// TokensRemovedFromCache must be called whenever tokens leave the cache because the
// ledger consumed them. Each ref is dropped from any claim holding it. The claim itself
// stays in place, with whatever it has left, and is returned so the caller can report it.
func (cl *ClaimLedger) TokensRemovedFromCache(refs []fftypes.TokenRef) []*PrunedClaim {
	pruned := cl.ClaimsHolding(refs)
	for _, p := range pruned {
		prev := cl.claims[p.ClaimID]
		// Claims are shared with records, so replace rather than modify
		cl.claims[p.ClaimID] = &fftypes.Claim{
			ID:        prev.ID,
			Pool:      prev.Pool,
			Requested: prev.Requested,
			Tokens:    p.Remaining,
			Created:   prev.Created,
		}
		for _, r := range p.Removed {
			delete(cl.claimed, r)
		}
	}
	return pruned
}

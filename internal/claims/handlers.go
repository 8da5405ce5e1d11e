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
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/internal/selection"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/discovery"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

// Handle computes the effect of one event on the state of its pool. Nothing is modified.
//
// Business outcomes, such as insufficient funds, are records on the effect. A returned
// error is an infrastructure failure, and the whole event can be retried.
func Handle(ctx context.Context, deps *Deps, state *PoolState, event fftypes.Event) (*Effect, error) {
	switch e := event.(type) {
	case *fftypes.ClaimQuery:
		return handleClaimQuery(ctx, deps, state, e)
	case *fftypes.ClaimRelease:
		return handleClaimRelease(ctx, state, e), nil
	case *fftypes.ForceClaimRelease:
		return handleForceClaimRelease(ctx, state, e), nil
	case *fftypes.LedgerChange:
		return handleLedgerChange(ctx, state, e), nil
	case *fftypes.BalanceQuery:
		return handleBalanceQuery(ctx, deps, state, e)
	default:
		return nil, i18n.NewError(ctx, i18n.MsgUnknownEventType, event)
	}
}

func newRecord(event fftypes.Event, recordType fftypes.RecordType) *fftypes.Record {
	return &fftypes.Record{
		ID:        fftypes.NewUUID(),
		Type:      recordType,
		EventType: event.EventType(),
		RequestID: event.RequestID(),
		Pool:      event.Pool(),
		Created:   fftypes.Now(),
	}
}

func claimFailure(ctx context.Context, e *fftypes.ClaimQuery, selected *fftypes.Decimal, key i18n.MessageKey, inserts ...interface{}) *Effect {
	return claimFailureReason(ctx, e, selected, key, i18n.ExpandWithCode(ctx, key, inserts...))
}

func claimFailureReason(ctx context.Context, e *fftypes.ClaimQuery, selected *fftypes.Decimal, key i18n.MessageKey, reason string) *Effect {
	rec := newRecord(e, fftypes.RecordTypeClaimFailure)
	rec.ClaimID = e.ClaimID
	rec.Amount = selected
	rec.Reason = reason
	log.L(ctx).Infof("Claim '%s' failed: %s", e.ClaimID, rec.Reason)
	return &Effect{Record: rec, FailureCode: string(key)}
}

func claimSuccess(e *fftypes.ClaimQuery, tokens []*fftypes.CachedToken) *fftypes.Record {
	rec := newRecord(e, fftypes.RecordTypeClaimSuccess)
	rec.ClaimID = e.ClaimID
	rec.Tokens = tokens
	total := fftypes.TokenTotal(tokens)
	rec.Amount = &total
	return rec
}

func handleClaimQuery(ctx context.Context, deps *Deps, state *PoolState, e *fftypes.ClaimQuery) (*Effect, error) {
	if e.ClaimID == "" {
		return claimFailure(ctx, e, nil, i18n.MsgMissingClaimID), nil
	}
	if !e.Amount.IsPositive() {
		return claimFailure(ctx, e, nil, i18n.MsgInvalidClaimAmount, e.Amount.String()), nil
	}
	q, err := deps.Strategy.NewQuery(ctx, e.OwnerHash, e.TagRegex)
	if err != nil {
		return claimFailureReason(ctx, e, nil, i18n.MsgInvalidTagRegex, err.Error()), nil
	}

	// A redelivered query must not reserve a second set of tokens for the same request
	if existing := state.Ledger.GetClaim(e.ClaimID); existing != nil {
		log.L(ctx).Infof("Claim '%s' already exists with %d tokens", e.ClaimID, len(existing.Tokens))
		return &Effect{Record: claimSuccess(e, existing.Tokens)}, nil
	}

	candidates, err := deps.Discovery.FindAvailableTokens(ctx, &discovery.TokenQuery{
		Pool:      e.PoolKey,
		OwnerHash: e.OwnerHash,
		TagRegex:  e.TagRegex,
	})
	if err != nil {
		return nil, err
	}

	var selected []*fftypes.CachedToken
	total := *fftypes.NewDecimal(0)
	seen := make(map[fftypes.TokenRef]bool)
	deps.Strategy.Filter(selection.FromSlice(candidates), q)(func(t *fftypes.CachedToken) bool {
		// The target is checked before taking the next token, so the final token
		// can take the total beyond the target. The caller returns the change.
		if total.Cmp(e.Amount) >= 0 {
			return false
		}
		if seen[t.Ref] || t.Pool != e.PoolKey || state.Ledger.IsTokenClaimed(t.Ref) {
			return true
		}
		seen[t.Ref] = true
		selected = append(selected, t)
		total = total.Add(t.Amount)
		return true
	})

	if total.Cmp(e.Amount) < 0 {
		return claimFailure(ctx, e, &total, i18n.MsgInsufficientFunds, total.String(), e.Amount.String()), nil
	}

	claim := &fftypes.Claim{
		ID:        e.ClaimID,
		Pool:      e.PoolKey,
		Requested: e.Amount,
		Tokens:    selected,
		Created:   fftypes.Now(),
	}
	log.L(ctx).Infof("Claim '%s' selected %d tokens totalling %s for %s requested", e.ClaimID, len(selected), total, e.Amount)
	return &Effect{
		NewClaim: claim,
		Record:   claimSuccess(e, selected),
	}, nil
}

// prunedOthers previews the claims, other than the one named, that hold any of the refs
func prunedOthers(state *PoolState, refs []fftypes.TokenRef, except string) []*claimledger.PrunedClaim {
	var pruned []*claimledger.PrunedClaim
	for _, p := range state.Ledger.ClaimsHolding(refs) {
		if p.ClaimID != except {
			pruned = append(pruned, p)
		}
	}
	return pruned
}

func handleClaimRelease(ctx context.Context, state *PoolState, e *fftypes.ClaimRelease) *Effect {
	rec := newRecord(e, fftypes.RecordTypeReleaseAck)
	rec.ClaimID = e.ClaimID
	if !state.Ledger.ClaimExists(e.ClaimID) {
		log.L(ctx).Warnf("Release for unknown claim '%s' in pool %s", e.ClaimID, e.PoolKey)
		return &Effect{Record: rec, UnknownClaim: true}
	}
	return &Effect{
		RemovedClaim:  e.ClaimID,
		RemovedTokens: e.UsedTokens,
		PrunedClaims:  prunedOthers(state, e.UsedTokens, e.ClaimID),
		Record:        rec,
	}
}

func handleForceClaimRelease(ctx context.Context, state *PoolState, e *fftypes.ForceClaimRelease) *Effect {
	if !state.Ledger.ClaimExists(e.ClaimID) {
		log.L(ctx).Warnf("Force release for unknown claim '%s' in pool %s", e.ClaimID, e.PoolKey)
		return &Effect{UnknownClaim: true}
	}
	return &Effect{RemovedClaim: e.ClaimID}
}

func poolTokens(ctx context.Context, pool fftypes.PoolKey, tokens []*fftypes.CachedToken) []*fftypes.CachedToken {
	matched := make([]*fftypes.CachedToken, 0, len(tokens))
	for _, t := range tokens {
		if t.Pool != pool {
			log.L(ctx).Warnf("Ignoring token %s for pool %s in change for pool %s", t.Ref, t.Pool, pool)
			continue
		}
		matched = append(matched, t)
	}
	return matched
}

func handleLedgerChange(ctx context.Context, state *PoolState, e *fftypes.LedgerChange) *Effect {
	produced := poolTokens(ctx, e.PoolKey, e.Produced)
	consumedRefs := fftypes.TokenRefs(poolTokens(ctx, e.PoolKey, e.Consumed))
	log.L(ctx).Debugf("Ledger change '%s' produced=%d consumed=%d", e.ID, len(produced), len(consumedRefs))
	return &Effect{
		AddedTokens:   produced,
		RemovedTokens: consumedRefs,
		PrunedClaims:  prunedOthers(state, consumedRefs, ""),
	}
}

func handleBalanceQuery(ctx context.Context, deps *Deps, state *PoolState, e *fftypes.BalanceQuery) (*Effect, error) {
	rec := newRecord(e, fftypes.RecordTypeBalance)
	q, err := deps.Strategy.NewQuery(ctx, e.OwnerHash, e.TagRegex)
	if err != nil {
		rec.Reason = err.Error()
		return &Effect{Record: rec}, nil
	}

	candidates, err := deps.Discovery.FindAvailableTokens(ctx, &discovery.TokenQuery{
		Pool:      e.PoolKey,
		OwnerHash: e.OwnerHash,
		TagRegex:  e.TagRegex,
	})
	if err != nil {
		return nil, err
	}

	claimed := state.Ledger.ClaimedTokens()
	seen := make(map[fftypes.TokenRef]bool)
	total := *fftypes.NewDecimal(0)
	for _, t := range candidates {
		if seen[t.Ref] || t.Pool != e.PoolKey || claimed[t.Ref] || !q.Matches(t) {
			continue
		}
		seen[t.Ref] = true
		total = total.Add(t.Amount)
	}
	rec.Amount = &total
	return &Effect{Record: rec}, nil
}

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
	"fmt"
	"testing"

	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/selection"
	"github.com/kaleido-io/firefly-tokenclaims/mocks/discoverymocks"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/discovery"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testPool = fftypes.PoolKey{TokenType: "cash", IssuerHash: "issuer1", Notary: "notary1", Symbol: "GBP"}

func tok(txID string, amount int64) *fftypes.CachedToken {
	return &fftypes.CachedToken{
		Ref:       fftypes.TokenRef{TxID: txID},
		OwnerHash: "owner1",
		Tag:       "gold",
		Amount:    *fftypes.NewDecimal(amount),
		Pool:      testPool,
	}
}

// newTestHandlers wires a discovery mock that serves whatever is in the pool cache,
// as the SQL discovery does for the persisted tokens
func newTestHandlers(t *testing.T, strategy string, tokens ...*fftypes.CachedToken) (*Deps, *PoolState, *discoverymocks.Plugin) {
	config.Reset()
	s, err := selection.New(context.Background(), strategy)
	assert.NoError(t, err)
	state, err := NewPoolState(context.Background(), testPool, tokens, nil)
	assert.NoError(t, err)
	mdi := &discoverymocks.Plugin{}
	mdi.On("FindAvailableTokens", mock.Anything, mock.MatchedBy(func(q *discovery.TokenQuery) bool {
		return q.Pool == testPool
	})).Return(func(ctx context.Context, q *discovery.TokenQuery) []*fftypes.CachedToken {
		return state.Cache.Tokens()
	}, nil).Maybe()
	return &Deps{Discovery: mdi, Strategy: s}, state, mdi
}

func claimQuery(id string, amount int64) *fftypes.ClaimQuery {
	return &fftypes.ClaimQuery{ClaimID: id, PoolKey: testPool, OwnerHash: "owner1", Amount: *fftypes.NewDecimal(amount)}
}

func handleAndApply(t *testing.T, deps *Deps, state *PoolState, event fftypes.Event) *Effect {
	eff, err := Handle(context.Background(), deps, state, event)
	assert.NoError(t, err)
	_, err = eff.Apply(context.Background(), state)
	assert.NoError(t, err)
	return eff
}

func balance(t *testing.T, deps *Deps, state *PoolState) string {
	eff := handleAndApply(t, deps, state, &fftypes.BalanceQuery{ID: fftypes.ShortID(), PoolKey: testPool, OwnerHash: "owner1"})
	assert.Equal(t, fftypes.RecordTypeBalance, eff.Record.Type)
	return eff.Record.Amount.String()
}

func txIDs(tokens []*fftypes.CachedToken) []string {
	ids := make([]string, len(tokens))
	for i, t := range tokens {
		ids[i] = t.Ref.TxID
	}
	return ids
}

func TestClaimThenClaimRemainder(t *testing.T) {
	a, b, c := tok("a", 5), tok("b", 7), tok("c", 3)
	deps, state, _ := newTestHandlers(t, selection.StrategyDiscovery, a, b, c)

	eff := handleAndApply(t, deps, state, claimQuery("claim1", 10))
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, eff.Record.Type)
	assert.Equal(t, []string{"a", "b"}, txIDs(eff.Record.Tokens))
	assert.Equal(t, "12", eff.Record.Amount.String())
	assert.Equal(t, "claim1", eff.Record.ClaimID)
	assert.Equal(t, fftypes.EventTypeClaimQuery, eff.Record.EventType)
	assert.NotNil(t, eff.Record.ID)
	assert.Equal(t, "10", eff.NewClaim.Requested.String())
	// Claiming never touches the cache
	assert.Equal(t, 3, state.Cache.Len())

	eff = handleAndApply(t, deps, state, claimQuery("claim2", 3))
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, eff.Record.Type)
	assert.Equal(t, []string{"c"}, txIDs(eff.Record.Tokens))

	assert.Equal(t, "0", balance(t, deps, state))
}

func TestClaimAllOrNothing(t *testing.T) {
	a, b, c := tok("a", 5), tok("b", 7), tok("c", 3)
	deps, state, _ := newTestHandlers(t, selection.StrategyDiscovery, a, b, c)
	handleAndApply(t, deps, state, claimQuery("claim1", 10))

	claimsBefore := state.Ledger.Claims()
	claimedBefore := state.Ledger.ClaimedTokens()
	cacheBefore := state.Cache.Tokens()

	eff := handleAndApply(t, deps, state, claimQuery("claim2", 4))
	assert.Equal(t, fftypes.RecordTypeClaimFailure, eff.Record.Type)
	assert.Regexp(t, "FF10203.*3.*4", eff.Record.Reason)
	assert.Equal(t, "3", eff.Record.Amount.String())
	assert.Equal(t, "FF10203", eff.FailureCode)
	assert.Nil(t, eff.NewClaim)

	assert.Equal(t, claimsBefore, state.Ledger.Claims())
	assert.Equal(t, claimedBefore, state.Ledger.ClaimedTokens())
	assert.Equal(t, cacheBefore, state.Cache.Tokens())
	assert.False(t, state.Ledger.ClaimExists("claim2"))
}

func TestClaimOvershootsTarget(t *testing.T) {
	deps, state, _ := newTestHandlers(t, selection.StrategySmallest, tok("a", 7), tok("b", 5), tok("c", 3))
	eff := handleAndApply(t, deps, state, claimQuery("claim1", 4))
	assert.Equal(t, []string{"c", "b"}, txIDs(eff.Record.Tokens))
	assert.Equal(t, "8", eff.Record.Amount.String())
}

func TestClaimExactlyStopsSelecting(t *testing.T) {
	deps, state, _ := newTestHandlers(t, selection.StrategySmallest, tok("a", 3), tok("b", 5))
	eff := handleAndApply(t, deps, state, claimQuery("claim1", 3))
	assert.Equal(t, []string{"a"}, txIDs(eff.Record.Tokens))
	assert.False(t, state.Ledger.IsTokenClaimed(fftypes.TokenRef{TxID: "b"}))
}

func TestClaimSkipsForeignAndDuplicateTokens(t *testing.T) {
	config.Reset()
	s, _ := selection.New(context.Background(), selection.StrategyDiscovery)
	state, _ := NewPoolState(context.Background(), testPool, nil, nil)
	foreign := tok("x", 100)
	foreign.Pool = fftypes.PoolKey{TokenType: "cash", Symbol: "USD"}
	a := tok("a", 2)
	mdi := &discoverymocks.Plugin{}
	mdi.On("FindAvailableTokens", mock.Anything, mock.Anything).Return([]*fftypes.CachedToken{foreign, a, a}, nil)
	eff, err := Handle(context.Background(), &Deps{Discovery: mdi, Strategy: s}, state, claimQuery("claim1", 3))
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimFailure, eff.Record.Type)
	assert.Equal(t, "2", eff.Record.Amount.String())
	mdi.AssertExpectations(t)
}

func TestClaimFiltersOwnerAndTag(t *testing.T) {
	other := tok("other", 50)
	other.OwnerHash = "owner2"
	silver := tok("silver", 50)
	silver.Tag = "silver"
	deps, state, _ := newTestHandlers(t, selection.StrategyLargest, other, silver, tok("a", 1))
	q := claimQuery("claim1", 1)
	q.TagRegex = "^gold$"
	eff := handleAndApply(t, deps, state, q)
	assert.Equal(t, []string{"a"}, txIDs(eff.Record.Tokens))
}

func TestClaimValidation(t *testing.T) {
	deps, state, mdi := newTestHandlers(t, selection.StrategySmallest, tok("a", 5))
	mdi.ExpectedCalls = nil

	eff, err := Handle(context.Background(), deps, state, claimQuery("claim1", 0))
	assert.NoError(t, err)
	assert.Equal(t, fftypes.RecordTypeClaimFailure, eff.Record.Type)
	assert.Regexp(t, "FF10204", eff.Record.Reason)

	eff, err = Handle(context.Background(), deps, state, claimQuery("claim1", -1))
	assert.NoError(t, err)
	assert.Regexp(t, "FF10204", eff.Record.Reason)

	eff, err = Handle(context.Background(), deps, state, claimQuery("", 1))
	assert.NoError(t, err)
	assert.Regexp(t, "FF10205", eff.Record.Reason)

	q := claimQuery("claim1", 1)
	q.TagRegex = "(("
	eff, err = Handle(context.Background(), deps, state, q)
	assert.NoError(t, err)
	assert.Regexp(t, "FF10210", eff.Record.Reason)
	assert.Equal(t, "FF10210", eff.FailureCode)
	assert.Nil(t, eff.NewClaim)

	mdi.AssertNotCalled(t, "FindAvailableTokens", mock.Anything, mock.Anything)
	assert.Equal(t, 0, state.Ledger.Len())
}

func TestClaimDuplicateReturnsPrior(t *testing.T) {
	deps, state, _ := newTestHandlers(t, selection.StrategySmallest, tok("a", 5), tok("b", 7))
	first := handleAndApply(t, deps, state, claimQuery("claim1", 5))

	eff, err := Handle(context.Background(), deps, state, claimQuery("claim1", 5))
	assert.NoError(t, err)
	assert.Nil(t, eff.NewClaim)
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, eff.Record.Type)
	assert.Equal(t, txIDs(first.Record.Tokens), txIDs(eff.Record.Tokens))
	assert.False(t, state.Ledger.IsTokenClaimed(fftypes.TokenRef{TxID: "b"}))
}

func TestClaimDiscoveryFails(t *testing.T) {
	config.Reset()
	s, _ := selection.New(context.Background(), selection.StrategySmallest)
	state, _ := NewPoolState(context.Background(), testPool, nil, nil)
	mdi := &discoverymocks.Plugin{}
	mdi.On("FindAvailableTokens", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("pop"))
	deps := &Deps{Discovery: mdi, Strategy: s}

	eff, err := Handle(context.Background(), deps, state, claimQuery("claim1", 1))
	assert.Regexp(t, "pop", err)
	assert.Nil(t, eff)

	eff, err = Handle(context.Background(), deps, state, &fftypes.BalanceQuery{ID: "b1", PoolKey: testPool})
	assert.Regexp(t, "pop", err)
	assert.Nil(t, eff)
}

func TestReleaseConsumes(t *testing.T) {
	a, b, c := tok("a", 5), tok("b", 7), tok("c", 3)
	deps, state, _ := newTestHandlers(t, selection.StrategyDiscovery, a, b, c)
	handleAndApply(t, deps, state, claimQuery("claim1", 10))

	eff := handleAndApply(t, deps, state, &fftypes.ClaimRelease{
		ClaimID:    "claim1",
		PoolKey:    testPool,
		UsedTokens: []fftypes.TokenRef{a.Ref, b.Ref},
	})
	assert.Equal(t, fftypes.RecordTypeReleaseAck, eff.Record.Type)
	assert.Equal(t, "claim1", eff.Record.ClaimID)
	assert.Empty(t, eff.Record.Tokens)
	assert.Nil(t, eff.Record.Amount)
	assert.False(t, eff.UnknownClaim)
	assert.Empty(t, eff.PrunedClaims)

	assert.False(t, state.Ledger.ClaimExists("claim1"))
	assert.False(t, state.Cache.Contains(a.Ref))
	assert.False(t, state.Cache.Contains(b.Ref))
	assert.True(t, state.Cache.Contains(c.Ref))
	assert.Equal(t, "3", balance(t, deps, state))
}

func TestReleaseThenBalanceZero(t *testing.T) {
	c := tok("c", 3)
	deps, state, _ := newTestHandlers(t, selection.StrategySmallest, c)
	eff := handleAndApply(t, deps, state, claimQuery("claim1", 3))
	assert.Equal(t, []string{"c"}, txIDs(eff.Record.Tokens))

	handleAndApply(t, deps, state, &fftypes.ClaimRelease{ClaimID: "claim1", PoolKey: testPool, UsedTokens: []fftypes.TokenRef{c.Ref}})
	assert.Equal(t, 0, state.Cache.Len())
	assert.Equal(t, "0", balance(t, deps, state))
}

func TestReleasePrunesOtherHolders(t *testing.T) {
	a, b := tok("a", 5), tok("b", 7)
	deps, state, _ := newTestHandlers(t, selection.StrategyDiscovery, a, b)
	handleAndApply(t, deps, state, claimQuery("claim1", 5))
	handleAndApply(t, deps, state, claimQuery("claim2", 7))

	// The holder of claim1 reports spending a token reserved by claim2
	eff := handleAndApply(t, deps, state, &fftypes.ClaimRelease{ClaimID: "claim1", PoolKey: testPool, UsedTokens: []fftypes.TokenRef{a.Ref, b.Ref}})
	assert.Len(t, eff.PrunedClaims, 1)
	assert.Equal(t, "claim2", eff.PrunedClaims[0].ClaimID)
	assert.False(t, state.Ledger.IsTokenClaimed(b.Ref))
	assert.True(t, state.Ledger.ClaimExists("claim2"))
}

func TestReleaseUnknownIsNoop(t *testing.T) {
	deps, state, _ := newTestHandlers(t, selection.StrategySmallest, tok("a", 5))
	eff := handleAndApply(t, deps, state, &fftypes.ClaimRelease{ClaimID: "nope", PoolKey: testPool, UsedTokens: []fftypes.TokenRef{{TxID: "a"}}})
	assert.True(t, eff.UnknownClaim)
	assert.Equal(t, fftypes.RecordTypeReleaseAck, eff.Record.Type)
	assert.Empty(t, eff.RemovedTokens)
	assert.Equal(t, 1, state.Cache.Len())

	eff = handleAndApply(t, deps, state, &fftypes.ForceClaimRelease{ClaimID: "nope", PoolKey: testPool})
	assert.True(t, eff.UnknownClaim)
	assert.Equal(t, &Effect{UnknownClaim: true}, eff)
}

func TestForceReleaseFrees(t *testing.T) {
	a, b := tok("a", 5), tok("b", 7)
	deps, state, _ := newTestHandlers(t, selection.StrategySmallest, a, b)
	handleAndApply(t, deps, state, claimQuery("claim1", 12))
	assert.Equal(t, "0", balance(t, deps, state))

	eff := handleAndApply(t, deps, state, &fftypes.ForceClaimRelease{ClaimID: "claim1", PoolKey: testPool})
	assert.Nil(t, eff.Record)
	assert.Equal(t, "claim1", eff.RemovedClaim)
	assert.Empty(t, eff.RemovedTokens)
	assert.False(t, state.Ledger.ClaimExists("claim1"))
	assert.True(t, state.Cache.Contains(a.Ref))
	assert.True(t, state.Cache.Contains(b.Ref))

	// The same tokens can be claimed again
	eff = handleAndApply(t, deps, state, claimQuery("claim2", 12))
	assert.Equal(t, fftypes.RecordTypeClaimSuccess, eff.Record.Type)
	assert.Equal(t, []string{"a", "b"}, txIDs(eff.Record.Tokens))
}

func TestLedgerChangeEviction(t *testing.T) {
	a, b, c := tok("a", 5), tok("b", 7), tok("c", 3)
	deps, state, _ := newTestHandlers(t, selection.StrategyDiscovery, a, b)
	handleAndApply(t, deps, state, claimQuery("claim1", 10))

	eff, err := Handle(context.Background(), deps, state, &fftypes.LedgerChange{
		ID:       "tx99",
		PoolKey:  testPool,
		Produced: []*fftypes.CachedToken{c},
		Consumed: []*fftypes.CachedToken{b, tok("unknown", 1)},
	})
	assert.NoError(t, err)
	assert.Nil(t, eff.Record)
	assert.Len(t, eff.PrunedClaims, 1)
	assert.Equal(t, "claim1", eff.PrunedClaims[0].ClaimID)

	pruned, err := eff.Apply(context.Background(), state)
	assert.NoError(t, err)
	assert.Equal(t, eff.PrunedClaims, pruned)

	assert.False(t, state.Ledger.IsTokenClaimed(b.Ref))
	assert.False(t, state.Cache.Contains(b.Ref))
	assert.True(t, state.Cache.Contains(c.Ref))
	// The reduced claim remains, holding what it has left
	assert.True(t, state.Ledger.ClaimExists("claim1"))
	assert.Equal(t, "5", state.Ledger.GetClaim("claim1").Total().String())
	assert.Equal(t, "3", balance(t, deps, state))
}

func TestLedgerChangeUnclaimedAndForeign(t *testing.T) {
	a := tok("a", 5)
	foreign := tok("f", 9)
	foreign.Pool = fftypes.PoolKey{TokenType: "cash", Symbol: "USD"}
	deps, state, _ := newTestHandlers(t, selection.StrategyDiscovery, a)

	eff := handleAndApply(t, deps, state, &fftypes.LedgerChange{
		ID:       "tx1",
		PoolKey:  testPool,
		Produced: []*fftypes.CachedToken{foreign},
		Consumed: []*fftypes.CachedToken{a},
	})
	assert.Empty(t, eff.PrunedClaims)
	assert.Empty(t, eff.AddedTokens)
	assert.Equal(t, 0, state.Cache.Len())
	assert.False(t, state.Ledger.IsTokenClaimed(a.Ref))
}

func TestLedgerChangeProducedAndConsumed(t *testing.T) {
	deps, state, _ := newTestHandlers(t, selection.StrategyDiscovery)
	a := tok("a", 5)
	handleAndApply(t, deps, state, &fftypes.LedgerChange{ID: "tx1", PoolKey: testPool, Produced: []*fftypes.CachedToken{a}, Consumed: []*fftypes.CachedToken{a}})
	assert.False(t, state.Cache.Contains(a.Ref))
}

func TestBalanceExcludesClaims(t *testing.T) {
	silver := tok("s", 100)
	silver.Tag = "silver"
	deps, state, _ := newTestHandlers(t, selection.StrategySmallest, tok("a", 5), tok("b", 7), tok("c", 3), silver)
	assert.Equal(t, "115", balance(t, deps, state))

	handleAndApply(t, deps, state, claimQuery("claim1", 4))
	assert.Equal(t, "107", balance(t, deps, state))

	eff := handleAndApply(t, deps, state, &fftypes.BalanceQuery{ID: "b1", PoolKey: testPool, TagRegex: "gold"})
	assert.Equal(t, "7", eff.Record.Amount.String())
	assert.Equal(t, "b1", eff.Record.RequestID)
	assert.Nil(t, eff.NewClaim)
	assert.Empty(t, eff.RemovedTokens)
}

func TestBalanceBadRegex(t *testing.T) {
	deps, state, mdi := newTestHandlers(t, selection.StrategySmallest)
	mdi.ExpectedCalls = nil
	eff, err := Handle(context.Background(), deps, state, &fftypes.BalanceQuery{ID: "b1", PoolKey: testPool, TagRegex: "["})
	assert.NoError(t, err)
	assert.Regexp(t, "FF10210", eff.Record.Reason)
	assert.Nil(t, eff.Record.Amount)
}

func TestNoDoubleReservation(t *testing.T) {
	var tokens []*fftypes.CachedToken
	for i := 0; i < 20; i++ {
		tokens = append(tokens, tok(fmt.Sprintf("t%02d", i), int64(i%7+1)))
	}
	deps, state, _ := newTestHandlers(t, selection.StrategyLargest, tokens...)
	for i := 0; i < 15; i++ {
		handleAndApply(t, deps, state, claimQuery(fmt.Sprintf("claim%d", i), int64(i%5+2)))
		if i%4 == 3 {
			handleAndApply(t, deps, state, &fftypes.ForceClaimRelease{ClaimID: fmt.Sprintf("claim%d", i-2), PoolKey: testPool})
		}
	}
	owner := map[fftypes.TokenRef]string{}
	for _, c := range state.Ledger.Claims() {
		for _, r := range c.Refs() {
			prev, dup := owner[r]
			assert.False(t, dup, "token %s held by %s and %s", r, prev, c.ID)
			owner[r] = c.ID
		}
	}
	assert.Equal(t, len(owner), len(state.Ledger.ClaimedTokens()))
}

func TestUnknownEventType(t *testing.T) {
	deps, state, _ := newTestHandlers(t, selection.StrategySmallest)
	_, err := Handle(context.Background(), deps, state, nil)
	assert.Regexp(t, "FF10220", err)
}

func TestApplyConflictingClaim(t *testing.T) {
	a := tok("a", 5)
	_, state, _ := newTestHandlers(t, selection.StrategySmallest, a)
	eff := &Effect{NewClaim: &fftypes.Claim{ID: "c1", Pool: testPool, Tokens: []*fftypes.CachedToken{a}}}
	_, err := eff.Apply(context.Background(), state)
	assert.NoError(t, err)
	eff = &Effect{NewClaim: &fftypes.Claim{ID: "c2", Pool: testPool, Tokens: []*fftypes.CachedToken{a}}}
	_, err = eff.Apply(context.Background(), state)
	assert.Regexp(t, "FF10202", err)
}

func TestNewPoolStateConflict(t *testing.T) {
	a := tok("a", 5)
	_, err := NewPoolState(context.Background(), testPool, nil, []*fftypes.Claim{
		{ID: "c1", Tokens: []*fftypes.CachedToken{a}},
		{ID: "c2", Tokens: []*fftypes.CachedToken{a}},
	})
	assert.Regexp(t, "FF10202", err)
}
